package report

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestFeatureScores(t *testing.T) {
	convey.Convey("Given names and scores", t, func() {
		names := []string{"age", "gender_MALE", "days_to_christmas_day"}

		convey.Convey("Then they are paired and selection is marked", func() {
			fs, err := NewFeatureScores(names, []float64{3, 0, 5}, nil, []int{2})
			convey.So(err, convey.ShouldBeNil)
			convey.So(fs[2], convey.ShouldResemble, FeatureScore{Index: 2, Name: "days_to_christmas_day", FScore: 5, Selected: true})
			convey.So(fs[0].Selected, convey.ShouldBeFalse)

			ranked := Ranked(fs)
			convey.So(ranked[0].Name, convey.ShouldEqual, "days_to_christmas_day")
			convey.So(ranked[2].Name, convey.ShouldEqual, "gender_MALE")
			convey.So(fs[0].Name, convey.ShouldEqual, "age")
		})

		convey.Convey("Then mismatched lengths fail", func() {
			_, err := NewFeatureScores(names, []float64{1}, nil, nil)
			convey.So(errors.Is(err, ErrLengthMismatch), convey.ShouldBeTrue)
			_, err = NewFeatureScores(names, []float64{1, 2, 3}, []float64{1}, nil)
			convey.So(errors.Is(err, ErrLengthMismatch), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a score vector", t, func() {
		s := Summarize([]float64{0, 2, 4, 0})
		convey.So(s.Mean, convey.ShouldEqual, 1.5)
		convey.So(s.Min, convey.ShouldEqual, 0.0)
		convey.So(s.Max, convey.ShouldEqual, 4.0)
		convey.So(s.Zero, convey.ShouldEqual, 2)
		convey.So(s.Std, convey.ShouldBeGreaterThan, 0)
		convey.So(Summarize(nil), convey.ShouldResemble, Summary{})
	})
}

func TestWriteYAML(t *testing.T) {
	convey.Convey("Given an importance report", t, func() {
		dir := t.TempDir()
		fs, _ := NewFeatureScores([]string{"a", "b"}, []float64{4, 1}, []float64{0.5, 0.25}, []int{0})
		r := &Importance{
			RunID:     "run-1",
			Model:     "boost",
			Label:     "booked",
			Rows:      10,
			Threshold: "mean",
			Summary:   Summarize([]float64{4, 1}),
			Holdout:   &Holdout{Rows: 2, Accuracy: 1},
			Features:  fs,
		}

		convey.Convey("When written and read back", func() {
			path := filepath.Join(dir, "report.yaml")
			convey.So(r.WriteYAML(path), convey.ShouldBeNil)
			raw, _ := os.ReadFile(path)
			got, err := ReadYAML(path)

			convey.Convey("Then it uses snake_case keys and keeps the content", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(raw), convey.ShouldContainSubstring, "run_id: run-1")
				convey.So(got, convey.ShouldResemble, r)
			})
		})

		convey.Convey("When the target directory is missing", func() {
			err := r.WriteYAML(filepath.Join(dir, "nope", "report.yaml"))
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestPlotImportances(t *testing.T) {
	convey.Convey("Given feature scores", t, func() {
		fs, _ := NewFeatureScores([]string{"a", "b", "c"}, []float64{3, 0, 5}, nil, nil)
		path := filepath.Join(t.TempDir(), "importance.png")

		convey.Convey("Then a chart image is saved", func() {
			convey.So(PlotImportances(path, "importance", fs), convey.ShouldBeNil)
			info, err := os.Stat(path)
			convey.So(err, convey.ShouldBeNil)
			convey.So(info.Size(), convey.ShouldBeGreaterThan, 0)
		})

		convey.Convey("Then an empty list is refused", func() {
			convey.So(PlotImportances(path, "importance", nil), convey.ShouldNotBeNil)
		})
	})
}
