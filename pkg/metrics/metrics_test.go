package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a custom registry and options", func() {
			registry := prometheus.NewRegistry()
			m := NewManager(
				WithRegistry(registry),
				WithNamespace("test"),
				WithSubsystem("prep"),
				WithHistogramBuckets([]float64{0.1, 1}),
			)

			Convey("Then metrics are registered on it", func() {
				So(m.Registry(), ShouldEqual, registry)
				m.RecordRows(1)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				So(families[0].GetName(), ShouldStartWith, "test_prep_")
			})
		})

		Convey("When two managers are created with defaults", func() {
			Convey("Then they do not collide", func() {
				So(func() {
					NewManager()
					NewManager()
				}, ShouldNotPanic)
			})
		})
	})
}

func TestRecording(t *testing.T) {
	Convey("Given a manager", t, func() {
		m := NewManager()

		Convey("When steps finish", func() {
			m.RecordRows(10)
			m.StepDone("onehot", 10, 4, 20*time.Millisecond, nil)
			m.StepDone("onehot", 10, -1, time.Millisecond, nil)
			m.StepDone("holidays", 10, 0, time.Millisecond, errors.New("bad date"))

			Convey("Then counters reflect them", func() {
				So(testutil.ToFloat64(m.rowsProcessed), ShouldEqual, 10.0)
				So(testutil.ToFloat64(m.columnsAdded.WithLabelValues("onehot")), ShouldEqual, 4.0)
				So(testutil.ToFloat64(m.stepErrors.WithLabelValues("holidays")), ShouldEqual, 1.0)
				So(testutil.CollectAndCount(m.stepDuration), ShouldEqual, 2)
			})
		})

		Convey("When a fit finishes", func() {
			m.RecordFit(time.Second, 30)

			Convey("Then rounds are counted", func() {
				So(testutil.ToFloat64(m.boostingRounds), ShouldEqual, 30.0)
				So(testutil.CollectAndCount(m.fitDuration), ShouldEqual, 1)
			})
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given recorded metrics", t, func() {
		m := NewManager()
		m.RecordRows(3)

		Convey("When written to a textfile", func() {
			path := filepath.Join(t.TempDir(), "tabprep.prom")
			err := m.WriteTextfile(path)

			Convey("Then the file holds the exposition format", func() {
				So(err, ShouldBeNil)
				raw, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(raw), ShouldContainSubstring, "tabprep_rows_processed_total 3")
			})
		})

		Convey("When the directory does not exist", func() {
			err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))

			Convey("Then a wrapped error is returned", func() {
				So(errors.Is(err, ErrWriteTextfile), ShouldBeTrue)
				So(strings.Contains(err.Error(), "missing"), ShouldBeTrue)
			})
		})
	})
}
