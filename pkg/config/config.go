// Package config holds the settings of a batch preparation run.
package config

import (
	"fmt"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Input and Output are CSV paths.
	Input  string `koanf:"input"`
	Output string `koanf:"output"`

	// Categorical lists the columns to encode.
	Categorical []string `koanf:"categorical"`
	// Encoding is onehot, label or freq.
	Encoding string `koanf:"encoding"`
	// DummyNA adds a <column>_nan indicator when one-hot encoding.
	DummyNA bool `koanf:"dummy_na"`

	Holidays HolidayConfig `koanf:"holidays"`

	// Label is the target column used when fitting.
	Label string `koanf:"label"`
	// Model is boost or forest.
	Model string `koanf:"model"`

	Boost BoostConfig `koanf:"boost"`

	// SelectThreshold is handed to SelectFromModel ("mean", "0.5*median", "3").
	SelectThreshold string `koanf:"select_threshold"`
	// TestRatio is the holdout share used to score the fitted model.
	TestRatio float64 `koanf:"test_ratio"`

	Report      string `koanf:"report"`
	Plot        string `koanf:"plot"`
	Selected    string `koanf:"selected"`
	MetricsFile string `koanf:"metrics_file"`
}

// HolidayConfig configures the holiday distance features.
type HolidayConfig struct {
	Enabled    bool   `koanf:"enabled"`
	YearField  string `koanf:"year_field"`
	MonthField string `koanf:"month_field"`
	DayField   string `koanf:"day_field"`
	Prefix     string `koanf:"prefix"`
}

// BoostConfig mirrors the gradient boosting hyperparameters.
type BoostConfig struct {
	NEstimators     int     `koanf:"n_estimators"`
	LearningRate    float64 `koanf:"learning_rate"`
	MaxDepth        int     `koanf:"max_depth"`
	MinChildWeight  float64 `koanf:"min_child_weight"`
	Lambda          float64 `koanf:"lambda"`
	Gamma           float64 `koanf:"gamma"`
	Subsample       float64 `koanf:"subsample"`
	ColsampleByTree float64 `koanf:"colsample_bytree"`
	RandomState     int64   `koanf:"random_state"`
}

// New returns a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Encoding:  "onehot",
		Holidays: HolidayConfig{
			Enabled:    true,
			YearField:  "year_account_created",
			MonthField: "month_account_created",
			DayField:   "day_account_created",
			Prefix:     "days_to_",
		},
		Model: "boost",
		Boost: BoostConfig{
			NEstimators:     100,
			LearningRate:    0.1,
			MaxDepth:        3,
			MinChildWeight:  1,
			Lambda:          1,
			Gamma:           0,
			Subsample:       1,
			ColsampleByTree: 1,
			RandomState:     42,
		},
		SelectThreshold: "mean",
		TestRatio:       0.2,
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	switch c.Encoding {
	case "onehot", "label", "freq":
	default:
		return fmt.Errorf("%w: encoding %q", ErrInvalidConfig, c.Encoding)
	}
	switch c.Model {
	case "boost", "forest":
	default:
		return fmt.Errorf("%w: model %q", ErrInvalidConfig, c.Model)
	}
	if c.TestRatio < 0 || c.TestRatio >= 1 {
		return fmt.Errorf("%w: test_ratio %v not in [0, 1)", ErrInvalidConfig, c.TestRatio)
	}
	if c.Holidays.Enabled && (c.Holidays.YearField == "" || c.Holidays.MonthField == "" || c.Holidays.DayField == "") {
		return fmt.Errorf("%w: holiday date fields must not be empty", ErrInvalidConfig)
	}
	return c.Boost.validate()
}

func (b BoostConfig) validate() error {
	switch {
	case b.NEstimators <= 0:
		return fmt.Errorf("%w: boost.n_estimators must be positive", ErrInvalidConfig)
	case b.LearningRate <= 0:
		return fmt.Errorf("%w: boost.learning_rate must be positive", ErrInvalidConfig)
	case b.MaxDepth < 0:
		return fmt.Errorf("%w: boost.max_depth must not be negative", ErrInvalidConfig)
	case b.Lambda < 0 || b.Gamma < 0 || b.MinChildWeight < 0:
		return fmt.Errorf("%w: boost regularization must not be negative", ErrInvalidConfig)
	case b.Subsample <= 0 || b.Subsample > 1:
		return fmt.Errorf("%w: boost.subsample %v not in (0, 1]", ErrInvalidConfig, b.Subsample)
	case b.ColsampleByTree <= 0 || b.ColsampleByTree > 1:
		return fmt.Errorf("%w: boost.colsample_bytree %v not in (0, 1]", ErrInvalidConfig, b.ColsampleByTree)
	}
	return nil
}
