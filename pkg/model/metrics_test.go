package model_test

import (
	"math"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"tabprep/pkg/model"
)

func TestClassificationMetrics(t *testing.T) {
	convey.Convey("Given predictions for a binary problem", t, func() {
		yTrue := []int{1, 1, 0, 0, 1}
		yPred := []int{1, 0, 1, 0, 1}

		convey.Convey("Then accuracy counts the matches", func() {
			convey.So(model.Accuracy(yTrue, yPred), convey.ShouldEqual, 0.6)
			convey.So(model.Accuracy(yTrue, yPred[:2]), convey.ShouldEqual, 0.0)
		})

		convey.Convey("Then precision and recall score the positive label", func() {
			prec, rec, f1 := model.PrecisionRecallF1(yTrue, yPred, 1)
			convey.So(prec, convey.ShouldAlmostEqual, 2.0/3.0, 1e-12)
			convey.So(rec, convey.ShouldAlmostEqual, 2.0/3.0, 1e-12)
			convey.So(f1, convey.ShouldAlmostEqual, 2.0/3.0, 1e-12)
		})

		convey.Convey("Then a label never predicted scores zero", func() {
			prec, rec, f1 := model.PrecisionRecallF1(yTrue, yPred, 7)
			convey.So(prec+rec+f1, convey.ShouldEqual, 0.0)
		})
	})

	convey.Convey("Given class probabilities", t, func() {
		proba := [][]float64{{0.5, 0.5}, {0, 1}}
		loss := model.LogLoss([]int{3, 5}, proba, []int{3, 5})
		convey.So(loss, convey.ShouldAlmostEqual, (math.Log(2)-math.Log(1-1e-15))/2, 1e-9)
	})
}
