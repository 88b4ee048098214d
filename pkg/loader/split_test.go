package loader

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestTrainTestSplit(t *testing.T) {
	convey.Convey("Given ten labelled rows", t, func() {
		X := make([][]float64, 10)
		y := make([]int, 10)
		for i := range X {
			X[i] = []float64{float64(i)}
			y[i] = i
		}

		convey.Convey("When split with a 30% test ratio", func() {
			XTrain, XTest, yTrain, yTest := TrainTestSplit(X, y, 0.3, 42)

			convey.Convey("Then sizes add up and rows keep their labels", func() {
				convey.So(XTest, convey.ShouldHaveLength, 3)
				convey.So(XTrain, convey.ShouldHaveLength, 7)
				for i := range XTest {
					convey.So(int(XTest[i][0]), convey.ShouldEqual, yTest[i])
				}
				for i := range XTrain {
					convey.So(int(XTrain[i][0]), convey.ShouldEqual, yTrain[i])
				}
			})

			convey.Convey("Then the same seed gives the same split", func() {
				_, _, _, again := TrainTestSplit(X, y, 0.3, 42)
				convey.So(again, convey.ShouldResemble, yTest)
			})
		})
	})
}
