package model

import (
	"fmt"
	"strconv"
	"strings"
)

// SplitCounter is implemented by fitted tree models that can report how
// many times each feature was used to split ("fscore").
type SplitCounter interface {
	FScore() (map[string]int, error)
}

// FeatureSelector is a GradientBoostingClassifier that also knows how many
// features it was declared with, so it can report a fixed-length
// importance vector suitable for SelectFromModel-style filtering.
type FeatureSelector struct {
	*GradientBoostingClassifier

	nFeatures int
}

// NewFeatureSelector wraps a new classifier built from opts.
func NewFeatureSelector(nFeatures int, opts ...BoostOption) *FeatureSelector {
	return &FeatureSelector{
		GradientBoostingClassifier: NewGradientBoostingClassifier(opts...),
		nFeatures:                  nFeatures,
	}
}

// NFeatures is the declared length of the importance vector.
func (s *FeatureSelector) NFeatures() int { return s.nFeatures }

// SetNFeatures changes the declared feature count.
func (s *FeatureSelector) SetNFeatures(n int) { s.nFeatures = n }

// FeatureImportances returns the fscore of every feature, indexed by
// feature position. Features never split on score zero.
func (s *FeatureSelector) FeatureImportances() ([]float64, error) {
	return ImportancesFromFScore(s.GradientBoostingClassifier, s.nFeatures)
}

// ImportancesFromFScore lays the "f<index>" keyed scores of m out as a
// vector of length n.
func ImportancesFromFScore(m SplitCounter, n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrFeatureCount, n)
	}
	fscores, err := m.FScore()
	if err != nil {
		return nil, err
	}
	return byFeatureIndex(fscores, n)
}

// GainsByIndex lays the average split gain per feature out as a vector of
// length n. Features never split on have gain zero.
func (b *Booster) GainsByIndex(n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrFeatureCount, n)
	}
	return byFeatureIndex(b.Gain(), n)
}

func byFeatureIndex[V int | float64](scores map[string]V, n int) ([]float64, error) {
	out := make([]float64, n)
	for k, v := range scores {
		idx, err := parseFeatureKey(k)
		if err != nil {
			return nil, err
		}
		if idx >= n {
			return nil, fmt.Errorf("%w: %s with %d features", ErrFeatureIndex, k, n)
		}
		out[idx] = float64(v)
	}
	return out, nil
}

func parseFeatureKey(k string) (int, error) {
	if !strings.HasPrefix(k, "f") {
		return 0, fmt.Errorf("%w: malformed key %q", ErrFeatureIndex, k)
	}
	idx, err := strconv.Atoi(k[1:])
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("%w: malformed key %q", ErrFeatureIndex, k)
	}
	return idx, nil
}
