package model_test

import (
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"tabprep/pkg/model"
)

type fixedScores map[string]int

func (f fixedScores) FScore() (map[string]int, error) { return f, nil }

func TestFeatureSelector(t *testing.T) {
	convey.Convey("Given a feature selector declared with four features", t, func() {
		sel := model.NewFeatureSelector(4,
			model.WithNEstimators(15),
			model.WithLearningRate(0.3),
			model.WithBoostRandomState(7),
		)
		convey.So(sel.NFeatures(), convey.ShouldEqual, 4)

		convey.Convey("When importances are requested before fit", func() {
			_, err := sel.FeatureImportances()

			convey.Convey("Then the score lookup fails", func() {
				convey.So(errors.Is(err, model.ErrNotFitted), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When fitted on data where only feature 2 matters", func() {
			n := 80
			X := make([][]float64, n)
			y := make([]int, n)
			for i := 0; i < n; i++ {
				X[i] = []float64{1, 2, float64(i), 3}
				if i >= n/2 {
					y[i] = 1
				}
			}
			convey.So(sel.Fit(X, y), convey.ShouldBeNil)
			imp, err := sel.FeatureImportances()

			convey.Convey("Then the vector has the declared length with only index 2 set", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(imp, convey.ShouldHaveLength, 4)
				convey.So(imp[0], convey.ShouldEqual, 0.0)
				convey.So(imp[1], convey.ShouldEqual, 0.0)
				convey.So(imp[2], convey.ShouldBeGreaterThan, 0)
				convey.So(imp[3], convey.ShouldEqual, 0.0)
			})

			convey.Convey("Then it matches the booster's fscore", func() {
				fscore, _ := sel.FScore()
				convey.So(imp[2], convey.ShouldEqual, float64(fscore["f2"]))
			})

			convey.Convey("Then shrinking the declared count below a used feature fails", func() {
				sel.SetNFeatures(2)
				_, err := sel.FeatureImportances()
				convey.So(errors.Is(err, model.ErrFeatureIndex), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When fitted on constant features", func() {
			X := [][]float64{{1, 1, 1, 1}, {1, 1, 1, 1}, {1, 1, 1, 1}, {1, 1, 1, 1}}
			convey.So(sel.Fit(X, []int{0, 1, 0, 1}), convey.ShouldBeNil)
			imp, err := sel.FeatureImportances()

			convey.Convey("Then no split is recorded and the vector is all zeros", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(imp, convey.ShouldResemble, []float64{0, 0, 0, 0})
			})
		})
	})

	convey.Convey("Given raw split counts", t, func() {
		convey.Convey("Then they are laid out by feature index", func() {
			imp, err := model.ImportancesFromFScore(fixedScores{"f0": 3, "f4": 1}, 5)
			convey.So(err, convey.ShouldBeNil)
			convey.So(imp, convey.ShouldResemble, []float64{3, 0, 0, 0, 1})
		})

		convey.Convey("Then malformed keys and bad counts are rejected", func() {
			_, err := model.ImportancesFromFScore(fixedScores{"age": 3}, 5)
			convey.So(errors.Is(err, model.ErrFeatureIndex), convey.ShouldBeTrue)

			_, err = model.ImportancesFromFScore(fixedScores{}, 0)
			convey.So(errors.Is(err, model.ErrFeatureCount), convey.ShouldBeTrue)
		})
	})
}
