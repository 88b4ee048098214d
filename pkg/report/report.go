// Package report writes the artifacts of an importance run: a YAML summary
// and a bar chart of the per-feature scores.
package report

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"sigs.k8s.io/yaml"

	"tabprep/pkg/stats"
)

var ErrLengthMismatch = errors.New("report: names and scores differ in length")

// FeatureScore is one feature's importance.
type FeatureScore struct {
	Index    int     `json:"index"`
	Name     string  `json:"name"`
	FScore   float64 `json:"fscore"`
	Gain     float64 `json:"gain,omitempty"`
	Selected bool    `json:"selected"`
}

// Summary describes the spread of the importance vector.
type Summary struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Zero int     `json:"zero"`
}

// Holdout is the model's score on held-out rows.
type Holdout struct {
	Rows      int     `json:"rows"`
	Accuracy  float64 `json:"accuracy"`
	LogLoss   float64 `json:"log_loss,omitempty"`
	// Precision, Recall and F1 treat the larger label as positive and are
	// only set for binary problems.
	Precision float64 `json:"precision,omitempty"`
	Recall    float64 `json:"recall,omitempty"`
	F1        float64 `json:"f1,omitempty"`
}

// Importance is the document written by the importance command.
type Importance struct {
	RunID     string         `json:"run_id"`
	Input     string         `json:"input,omitempty"`
	Model     string         `json:"model"`
	Label     string         `json:"label"`
	Rows      int            `json:"rows"`
	Trees     int            `json:"trees,omitempty"`
	Threshold string         `json:"threshold"`
	Summary   Summary        `json:"summary"`
	Holdout   *Holdout       `json:"holdout,omitempty"`
	Features  []FeatureScore `json:"features"`
}

// NewFeatureScores pairs names with scores. Gains may be nil.
func NewFeatureScores(names []string, fscores, gains []float64, selected []int) ([]FeatureScore, error) {
	if len(names) != len(fscores) || (gains != nil && len(gains) != len(fscores)) {
		return nil, fmt.Errorf("%w: %d names, %d scores", ErrLengthMismatch, len(names), len(fscores))
	}
	keep := make(map[int]bool, len(selected))
	for _, i := range selected {
		keep[i] = true
	}
	out := make([]FeatureScore, len(names))
	for i, n := range names {
		out[i] = FeatureScore{Index: i, Name: n, FScore: fscores[i], Selected: keep[i]}
		if gains != nil {
			out[i].Gain = gains[i]
		}
	}
	return out, nil
}

// Summarize computes the Summary of scores.
func Summarize(scores []float64) Summary {
	if len(scores) == 0 {
		return Summary{}
	}
	lo, hi := stats.MinMax(scores)
	return Summary{
		Mean: stats.Mean(scores),
		Std:  stats.Std(scores),
		Min:  lo,
		Max:  hi,
		Zero: stats.CountZero(scores),
	}
}

// Ranked returns the features sorted by descending fscore, ties by index.
func Ranked(features []FeatureScore) []FeatureScore {
	out := append([]FeatureScore(nil), features...)
	sort.SliceStable(out, func(a, b int) bool { return out[a].FScore > out[b].FScore })
	return out
}

// WriteYAML writes r to path.
func (r *Importance) WriteYAML(path string) error {
	raw, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}

// ReadYAML loads a report written by WriteYAML.
func ReadYAML(path string) (*Importance, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	var r Importance
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("report: unmarshal: %w", err)
	}
	return &r, nil
}
