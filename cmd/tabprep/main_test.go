package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"tabprep/pkg/data"
	"tabprep/pkg/report"
)

var genders = []string{"MALE", "FEMALE", "-unknown-"}
var methods = []string{"basic", "facebook", "google"}

// writeUsers writes n account rows from 2015; booked is 1 for MALE rows.
func writeUsers(t *testing.T, dir string, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("id,gender,signup_method,year_account_created,month_account_created,day_account_created,booked\n")
	for i := 0; i < n; i++ {
		g := genders[i%len(genders)]
		booked := 0
		if g == "MALE" {
			booked = 1
		}
		fmt.Fprintf(&b, "%d,%s,%s,2015,%d,%d,%d\n", i, g, methods[(i/3)%len(methods)], 1+i%12, 1+i%28, booked)
	}
	path := filepath.Join(dir, "users.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("write users: %v", err)
	}
	return path
}

func execute(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := (&app{}).rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func clearEnv() {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "TABPREP_") {
			_ = os.Unsetenv(strings.SplitN(kv, "=", 2)[0])
		}
	}
}

func TestPrepCommand(t *testing.T) {
	convey.Convey("Given a users CSV", t, func() {
		clearEnv()
		dir := t.TempDir()
		input := writeUsers(t, dir, 30)

		convey.Convey("When prep encodes and adds holidays", func() {
			output := filepath.Join(dir, "prepared.csv")
			metricsFile := filepath.Join(dir, "tabprep.prom")
			_, logs, err := execute("prep", "-i", input, "-o", output, "-c", "gender,signup_method", "--metrics-file", metricsFile)

			convey.Convey("Then the written table has indicator and holiday columns", func() {
				convey.So(err, convey.ShouldBeNil)
				df, err := data.LoadCSV(output)
				convey.So(err, convey.ShouldBeNil)
				convey.So(df.Nrow(), convey.ShouldEqual, 30)
				names := df.Names()
				convey.So(names, convey.ShouldContain, "gender_MALE")
				convey.So(names, convey.ShouldContain, "signup_method_google")
				convey.So(names, convey.ShouldContain, "days_to_new_years_day")
				convey.So(names, convey.ShouldNotContain, "gender")
				convey.So(logs, convey.ShouldContainSubstring, "table prepared")
			})

			convey.Convey("Then metrics are written to the textfile", func() {
				raw, err := os.ReadFile(metricsFile)
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(raw), convey.ShouldContainSubstring, "tabprep_rows_processed_total 30")
				convey.So(string(raw), convey.ShouldContainSubstring, `tabprep_columns_added_total{step="holidays"}`)
			})
		})

		convey.Convey("When no output is given", func() {
			out, _, err := execute("prep", "-i", input, "--no-holidays", "-c", "gender", "--encoding", "label")

			convey.Convey("Then CSV goes to stdout", func() {
				convey.So(err, convey.ShouldBeNil)
				header := strings.SplitN(out, "\n", 2)[0]
				convey.So(header, convey.ShouldEqual, "id,gender,signup_method,year_account_created,month_account_created,day_account_created,booked")
			})
		})

		convey.Convey("When a categorical column does not exist", func() {
			_, _, err := execute("prep", "-i", input, "-c", "language")
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "language")
		})
	})
}

func TestImportanceCommand(t *testing.T) {
	convey.Convey("Given a users CSV", t, func() {
		clearEnv()
		dir := t.TempDir()
		input := writeUsers(t, dir, 60)
		reportPath := filepath.Join(dir, "report.yaml")
		plotPath := filepath.Join(dir, "importance.png")
		selectedPath := filepath.Join(dir, "selected.csv")

		convey.Convey("When importance runs with prep and a holdout", func() {
			out, _, err := execute("importance", "-i", input, "--prep", "-c", "gender,signup_method",
				"-l", "booked", "--n-estimators", "5", "--test-ratio", "0.25", "--seed", "1",
				"--report", reportPath, "--plot", plotPath, "--selected", selectedPath)

			convey.Convey("Then the only informative feature carries every split", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "gender_MALE")

				doc, err := report.ReadYAML(reportPath)
				convey.So(err, convey.ShouldBeNil)
				convey.So(doc.Model, convey.ShouldEqual, "boost")
				convey.So(doc.RunID, convey.ShouldNotBeEmpty)
				convey.So(doc.Rows, convey.ShouldEqual, 60)
				convey.So(doc.Holdout, convey.ShouldNotBeNil)
				convey.So(doc.Holdout.Rows, convey.ShouldEqual, 15)

				top := report.Ranked(doc.Features)[0]
				convey.So(top.Name, convey.ShouldEqual, "gender_MALE")
				convey.So(top.FScore, convey.ShouldEqual, 5.0)
				convey.So(top.Selected, convey.ShouldBeTrue)
			})

			convey.Convey("Then the plot and the selected columns are written", func() {
				_, err := os.Stat(plotPath)
				convey.So(err, convey.ShouldBeNil)
				sel, err := data.LoadCSV(selectedPath)
				convey.So(err, convey.ShouldBeNil)
				convey.So(sel.Names(), convey.ShouldResemble, []string{"gender_MALE", "booked"})
			})
		})

		convey.Convey("When the forest model is asked for", func() {
			_, _, err := execute("importance", "-i", input, "--prep", "-c", "gender,signup_method",
				"-l", "booked", "--model", "forest", "--n-estimators", "4", "--max-depth", "2", "--report", reportPath)

			convey.Convey("Then a forest report is written", func() {
				convey.So(err, convey.ShouldBeNil)
				doc, err := report.ReadYAML(reportPath)
				convey.So(err, convey.ShouldBeNil)
				convey.So(doc.Model, convey.ShouldEqual, "forest")
				convey.So(doc.Trees, convey.ShouldEqual, 4)
				convey.So(doc.Summary.Max, convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When no label is configured", func() {
			_, _, err := execute("importance", "-i", input)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When a string column is left unencoded", func() {
			_, _, err := execute("importance", "-i", input, "-l", "booked")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestHolidaysCommand(t *testing.T) {
	convey.Convey("Given the holidays command", t, func() {
		clearEnv()

		convey.Convey("When 2015 is listed", func() {
			out, _, err := execute("holidays", "--year", "2015")

			convey.Convey("Then each holiday shows its column", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "2015-01-01")
				convey.So(out, convey.ShouldContainSubstring, "days_to_new_years_day")
				convey.So(out, convey.ShouldContainSubstring, "days_to_independence_day_observed")
				convey.So(out, convey.ShouldContainSubstring, "days_to_washingtons_birthday")
			})
		})

		convey.Convey("When observed days are excluded", func() {
			out, _, err := execute("holidays", "--year", "2015", "--observed=false")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldNotContainSubstring, "(Observed)")
		})

		convey.Convey("When the config is invalid", func() {
			_, _, err := execute("holidays", "--log-format", "xml")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
