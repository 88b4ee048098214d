package stats

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestSummaries(t *testing.T) {
	convey.Convey("Given a small sample", t, func() {
		x := []float64{4, 1, 3, 2, 0}

		convey.Convey("Then the summaries match hand computed values", func() {
			convey.So(Mean(x), convey.ShouldEqual, 2.0)
			convey.So(Median(x), convey.ShouldEqual, 2.0)
			convey.So(Variance(x), convey.ShouldEqual, 2.0)
			convey.So(Std(x), convey.ShouldAlmostEqual, 1.41421356, 1e-6)
			lo, hi := MinMax(x)
			convey.So(lo, convey.ShouldEqual, 0.0)
			convey.So(hi, convey.ShouldEqual, 4.0)
			convey.So(CountZero(x), convey.ShouldEqual, 1)
		})

		convey.Convey("Then an even count averages the middle pair", func() {
			convey.So(Median(x[:4]), convey.ShouldEqual, 2.5)
		})

		convey.Convey("Then Median leaves the input untouched", func() {
			_ = Median(x)
			convey.So(x, convey.ShouldResemble, []float64{4, 1, 3, 2, 0})
		})
	})

	convey.Convey("Given an empty sample", t, func() {
		convey.So(Mean(nil), convey.ShouldEqual, 0.0)
		convey.So(Median(nil), convey.ShouldEqual, 0.0)
		convey.So(Std(nil), convey.ShouldEqual, 0.0)
		lo, hi := MinMax(nil)
		convey.So(lo+hi, convey.ShouldEqual, 0.0)
	})
}
