package main

import (
	"github.com/spf13/cobra"

	"tabprep/pkg/config"
)

// flagValues holds every flag that can override a config key. A flag only
// wins when it was set on the command line.
type flagValues struct {
	logLevel    string
	logFormat   string
	metricsFile string

	input       string
	output      string
	categorical []string
	encoding    string
	dummyNA     bool
	noHolidays  bool

	label       string
	model       string
	threshold   string
	testRatio   float64
	report      string
	plot        string
	selected    string
	prep        bool
	nEstimators int
	maxDepth    int
	eta         float64
	seed        int64
}

func (f *flagValues) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("log-format") {
		cfg.LogFormat = f.logFormat
	}
	if changed("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}
	if changed("input") {
		cfg.Input = f.input
	}
	if changed("output") {
		cfg.Output = f.output
	}
	if changed("categorical") {
		cfg.Categorical = f.categorical
	}
	if changed("encoding") {
		cfg.Encoding = f.encoding
	}
	if changed("dummy-na") {
		cfg.DummyNA = f.dummyNA
	}
	if changed("no-holidays") {
		cfg.Holidays.Enabled = !f.noHolidays
	}
	if changed("label") {
		cfg.Label = f.label
	}
	if changed("model") {
		cfg.Model = f.model
	}
	if changed("threshold") {
		cfg.SelectThreshold = f.threshold
	}
	if changed("test-ratio") {
		cfg.TestRatio = f.testRatio
	}
	if changed("report") {
		cfg.Report = f.report
	}
	if changed("plot") {
		cfg.Plot = f.plot
	}
	if changed("selected") {
		cfg.Selected = f.selected
	}
	if changed("n-estimators") {
		cfg.Boost.NEstimators = f.nEstimators
	}
	if changed("max-depth") {
		cfg.Boost.MaxDepth = f.maxDepth
	}
	if changed("learning-rate") {
		cfg.Boost.LearningRate = f.eta
	}
	if changed("seed") {
		cfg.Boost.RandomState = f.seed
	}
}

func (a *app) inputFlags(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&a.flags.input, "input", "i", "", "input CSV (default stdin)")
	fs.StringSliceVarP(&a.flags.categorical, "categorical", "c", nil, "categorical columns to encode")
	fs.StringVar(&a.flags.encoding, "encoding", "", "onehot, label or freq")
	fs.BoolVar(&a.flags.dummyNA, "dummy-na", false, "add a <column>_nan indicator for missing categories")
	fs.BoolVar(&a.flags.noHolidays, "no-holidays", false, "skip holiday distance features")
}
