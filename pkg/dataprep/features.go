package dataprep

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/stat"

	"tabprep/pkg/stats"
)

// ImportanceProvider is a fitted model exposing one score per feature.
type ImportanceProvider interface {
	FeatureImportances() ([]float64, error)
}

// SelectFromModel returns the indices of the features whose importance is
// at least the threshold. threshold is "mean", "median", "<scale>*mean",
// "<scale>*median" or a number; empty means "mean".
func SelectFromModel(p ImportanceProvider, threshold string) ([]int, error) {
	importances, err := p.FeatureImportances()
	if err != nil {
		return nil, err
	}
	cut, err := resolveThreshold(importances, threshold)
	if err != nil {
		return nil, err
	}
	var keep []int
	for i, v := range importances {
		if v >= cut {
			keep = append(keep, i)
		}
	}
	return keep, nil
}

func resolveThreshold(importances []float64, threshold string) (float64, error) {
	t := strings.ToLower(strings.TrimSpace(threshold))
	if t == "" {
		t = "mean"
	}
	scale := 1.0
	if i := strings.Index(t, "*"); i >= 0 {
		f, err := strconv.ParseFloat(strings.TrimSpace(t[:i]), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidThreshold, threshold)
		}
		scale = f
		t = strings.TrimSpace(t[i+1:])
	}
	switch t {
	case "mean":
		return scale * stat.Mean(importances, nil), nil
	case "median":
		return scale * stats.Median(importances), nil
	}
	if scale != 1.0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidThreshold, threshold)
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidThreshold, threshold)
	}
	return f, nil
}

// FeatureSelect selects columns by indices.
func FeatureSelect(X [][]float64, indices []int) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i, row := range X {
		selected := make([]float64, len(indices))
		for j, idx := range indices {
			if idx < 0 || idx >= len(row) {
				return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, idx)
			}
			selected[j] = row[idx]
		}
		out[i] = selected
	}
	return out, nil
}

// SelectColumns keeps the named columns of df, in the given order.
func SelectColumns(df dataframe.DataFrame, names []string) (dataframe.DataFrame, error) {
	for _, n := range names {
		if !hasColumn(df, n) {
			return df, fmt.Errorf("%w: %q", ErrColumnNotFound, n)
		}
	}
	out := df.Select(names)
	if out.Err != nil {
		return df, out.Err
	}
	return out, nil
}
