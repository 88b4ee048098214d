package model_test

import (
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"tabprep/pkg/model"
)

func TestDecisionTreeAndForest(t *testing.T) {
	convey.Convey("Given a threshold problem", t, func() {
		X, y := thresholdData(60)

		convey.Convey("When a decision tree is fitted", func() {
			tree := model.NewDecisionTreeClassifier(model.WithMaxDepth(3), model.WithRandomState(1))
			convey.So(tree.Fit(X, y), convey.ShouldBeNil)

			convey.Convey("Then it predicts the training labels and counts its split", func() {
				pred, err := tree.Predict(X)
				convey.So(err, convey.ShouldBeNil)
				convey.So(model.Accuracy(y, pred), convey.ShouldEqual, 1.0)

				fscore, err := tree.FScore()
				convey.So(err, convey.ShouldBeNil)
				convey.So(fscore["f0"], convey.ShouldBeGreaterThanOrEqualTo, 1)
				convey.So(tree.NFeatures(), convey.ShouldEqual, 2)
			})

			convey.Convey("Then it survives a gob round trip", func() {
				data, err := tree.MarshalBinary()
				convey.So(err, convey.ShouldBeNil)
				restored := model.NewDecisionTreeClassifier()
				convey.So(restored.UnmarshalBinary(data), convey.ShouldBeNil)
				pred, err := restored.Predict(X)
				convey.So(err, convey.ShouldBeNil)
				convey.So(pred, convey.ShouldResemble, y)
			})
		})

		convey.Convey("When a random forest is fitted", func() {
			rf := model.NewRandomForest(model.WithTreeCount(5), model.WithForestMaxDepth(3), model.WithForestRandomState(2))
			convey.So(rf.Fit(X, y), convey.ShouldBeNil)

			convey.Convey("Then importances sum the split counts of its trees", func() {
				imp, err := model.ImportancesFromFScore(rf, 2)
				convey.So(err, convey.ShouldBeNil)
				convey.So(imp[0], convey.ShouldBeGreaterThanOrEqualTo, 5)
				convey.So(imp[1], convey.ShouldEqual, 0.0)
			})

			convey.Convey("Then the vote recovers the labels", func() {
				pred, err := rf.Predict(X)
				convey.So(err, convey.ShouldBeNil)
				convey.So(model.Accuracy(y, pred), convey.ShouldBeGreaterThanOrEqualTo, 0.95)
			})
		})

		convey.Convey("When nothing is fitted", func() {
			_, err := model.NewRandomForest().Predict(X)
			convey.So(errors.Is(err, model.ErrNotFitted), convey.ShouldBeTrue)
			_, err = model.NewDecisionTreeClassifier().FScore()
			convey.So(errors.Is(err, model.ErrNotFitted), convey.ShouldBeTrue)
		})
	})
}
