package model_test

import (
	"errors"
	"math"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"tabprep/pkg/model"
)

// thresholdData puts class 1 above x0 = 0.5; x1 is constant.
func thresholdData(n int) ([][]float64, []int) {
	X := make([][]float64, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		x0 := float64(i) / float64(n)
		X[i] = []float64{x0, 7}
		if x0 >= 0.5 {
			y[i] = 1
		}
	}
	return X, y
}

func TestGradientBoostingClassifier(t *testing.T) {
	convey.Convey("Given a binary problem split on the first feature", t, func() {
		X, y := thresholdData(100)
		clf := model.NewGradientBoostingClassifier(
			model.WithNEstimators(20),
			model.WithLearningRate(0.3),
			model.WithBoostRandomState(1),
		)

		convey.Convey("When predicting before fit", func() {
			_, err := clf.Predict(X)

			convey.Convey("Then it reports the model is not fitted", func() {
				convey.So(errors.Is(err, model.ErrNotFitted), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When fitted", func() {
			convey.So(clf.Fit(X, y), convey.ShouldBeNil)

			convey.Convey("Then it separates the training data", func() {
				pred, err := clf.Predict(X)
				convey.So(err, convey.ShouldBeNil)
				convey.So(model.Accuracy(y, pred), convey.ShouldEqual, 1.0)
			})

			convey.Convey("Then probabilities sum to one per row", func() {
				proba, err := clf.PredictProba(X[:5])
				convey.So(err, convey.ShouldBeNil)
				for _, p := range proba {
					convey.So(p, convey.ShouldHaveLength, 2)
					convey.So(p[0]+p[1], convey.ShouldAlmostEqual, 1.0, 1e-9)
				}
			})

			convey.Convey("Then only the informative feature is split on", func() {
				fscore, err := clf.FScore()
				convey.So(err, convey.ShouldBeNil)
				convey.So(fscore, convey.ShouldContainKey, "f0")
				convey.So(fscore, convey.ShouldNotContainKey, "f1")

				b, err := clf.Booster()
				convey.So(err, convey.ShouldBeNil)
				convey.So(b.NumTrees(), convey.ShouldEqual, 20)
				convey.So(b.Gain()["f0"], convey.ShouldBeGreaterThan, 0)

				gains, err := b.GainsByIndex(3)
				convey.So(err, convey.ShouldBeNil)
				convey.So(gains, convey.ShouldHaveLength, 3)
				convey.So(gains[0], convey.ShouldEqual, b.Gain()["f0"])
				convey.So(gains[1], convey.ShouldEqual, 0.0)

				_, err = b.GainsByIndex(0)
				convey.So(errors.Is(err, model.ErrFeatureCount), convey.ShouldBeTrue)
			})

			convey.Convey("Then rows of the wrong width are rejected", func() {
				_, err := clf.Predict([][]float64{{0.1}})
				convey.So(errors.Is(err, model.ErrShapeMismatch), convey.ShouldBeTrue)
			})

			convey.Convey("Then a gob round trip keeps the predictions", func() {
				data, err := clf.MarshalBinary()
				convey.So(err, convey.ShouldBeNil)

				restored := model.NewGradientBoostingClassifier()
				convey.So(restored.UnmarshalBinary(data), convey.ShouldBeNil)
				convey.So(restored.NEstimators, convey.ShouldEqual, 20)

				want, _ := clf.PredictProba(X)
				got, err := restored.PredictProba(X)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldResemble, want)
			})
		})
	})

	convey.Convey("Given three classes along one axis", t, func() {
		n := 90
		X := make([][]float64, n)
		y := make([]int, n)
		for i := 0; i < n; i++ {
			X[i] = []float64{float64(i)}
			y[i] = 10 + i/30
		}
		clf := model.NewGradientBoostingClassifier(
			model.WithNEstimators(30),
			model.WithLearningRate(0.3),
			model.WithBoostRandomState(1),
		)
		convey.So(clf.Fit(X, y), convey.ShouldBeNil)

		convey.Convey("Then it grows one tree per class per round", func() {
			b, err := clf.Booster()
			convey.So(err, convey.ShouldBeNil)
			convey.So(b.NumTrees(), convey.ShouldEqual, 90)
			convey.So(clf.Classes(), convey.ShouldResemble, []int{10, 11, 12})
		})

		convey.Convey("Then it predicts the original labels", func() {
			pred, err := clf.Predict(X)
			convey.So(err, convey.ShouldBeNil)
			convey.So(model.Accuracy(y, pred), convey.ShouldBeGreaterThanOrEqualTo, 0.95)
		})
	})

	convey.Convey("Given training data with missing values", t, func() {
		X, y := thresholdData(100)
		for i := 0; i < len(X); i += 10 {
			X[i][0] = math.NaN()
		}
		clf := model.NewGradientBoostingClassifier(model.WithNEstimators(10), model.WithBoostRandomState(3))

		convey.Convey("Then fit and predict succeed", func() {
			convey.So(clf.Fit(X, y), convey.ShouldBeNil)
			pred, err := clf.Predict([][]float64{{math.NaN(), 7}, {0.9, 7}})
			convey.So(err, convey.ShouldBeNil)
			convey.So(pred[1], convey.ShouldEqual, 1)
		})
	})

	convey.Convey("Given malformed input", t, func() {
		clf := model.NewGradientBoostingClassifier()

		convey.Convey("Then empty, mismatched and ragged data are rejected", func() {
			convey.So(errors.Is(clf.Fit(nil, nil), model.ErrEmptyInput), convey.ShouldBeTrue)
			convey.So(errors.Is(clf.Fit([][]float64{{1}}, []int{1, 0}), model.ErrShapeMismatch), convey.ShouldBeTrue)
			convey.So(errors.Is(clf.Fit([][]float64{{1}, {1, 2}}, []int{1, 0}), model.ErrRaggedInput), convey.ShouldBeTrue)
		})
	})
}
