package model

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// RandomForest is a bagged ensemble of DecisionTreeClassifier.
type RandomForest struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int
	Bootstrap       bool
	RandomState     int64

	Trees []*DecisionTreeClassifier
}

// RandomForestOption configures a RandomForest.
type RandomForestOption func(*RandomForest)

func WithTreeCount(n int) RandomForestOption  { return func(rf *RandomForest) { rf.NEstimators = n } }
func WithBootstrap(b bool) RandomForestOption { return func(rf *RandomForest) { rf.Bootstrap = b } }
func WithForestMaxDepth(d int) RandomForestOption {
	return func(rf *RandomForest) { rf.MaxDepth = d }
}
func WithForestMaxFeatures(k int) RandomForestOption {
	return func(rf *RandomForest) { rf.MaxFeatures = k }
}
func WithForestRandomState(seed int64) RandomForestOption {
	return func(rf *RandomForest) { rf.RandomState = seed }
}

// NewRandomForest returns a 100-tree bootstrapped forest.
func NewRandomForest(opts ...RandomForestOption) *RandomForest {
	rf := &RandomForest{
		NEstimators:     100,
		MinSamplesSplit: 2,
		Bootstrap:       true,
		RandomState:     time.Now().UnixNano(),
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

// Fit grows every tree concurrently. Tree k is seeded with RandomState+k,
// so a fixed RandomState gives the same forest.
func (rf *RandomForest) Fit(X [][]float64, y []int) error {
	if _, err := validateXY(X, y); err != nil {
		return fmt.Errorf("randomforest: %w", err)
	}
	if rf.NEstimators < 1 {
		return fmt.Errorf("randomforest: %w: n_estimators %d", ErrInvalidParam, rf.NEstimators)
	}

	trees := make([]*DecisionTreeClassifier, rf.NEstimators)
	errs := make([]error, rf.NEstimators)
	var wg sync.WaitGroup
	for k := range trees {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			seed := rf.RandomState + int64(k)
			tree := NewDecisionTreeClassifier(
				WithMaxDepth(rf.MaxDepth),
				WithMinSamplesSplit(rf.MinSamplesSplit),
				WithMaxFeatures(rf.MaxFeatures),
				WithRandomState(seed),
			)
			errs[k] = tree.FitIndices(X, y, rf.sample(len(X), seed))
			trees[k] = tree
		}(k)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	rf.Trees = trees
	return nil
}

// sample draws the row indices a tree is trained on.
func (rf *RandomForest) sample(n int, seed int64) []int {
	idx := make([]int, n)
	if !rf.Bootstrap {
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	r := rand.New(rand.NewSource(seed))
	for i := range idx {
		idx[i] = r.Intn(n)
	}
	return idx
}

// Predict returns the majority vote of all trees. Ties go to the smallest
// label.
func (rf *RandomForest) Predict(X [][]float64) ([]int, error) {
	if len(rf.Trees) == 0 {
		return nil, fmt.Errorf("randomforest: %w", ErrNotFitted)
	}
	if err := rf.Trees[0].checkWidth(X); err != nil {
		return nil, err
	}

	votes := make([][]int, len(rf.Trees))
	var wg sync.WaitGroup
	for k, tree := range rf.Trees {
		wg.Add(1)
		go func(k int, t *DecisionTreeClassifier) {
			defer wg.Done()
			votes[k] = t.mustPredict(X)
		}(k, tree)
	}
	wg.Wait()

	out := make([]int, len(X))
	counts := make(map[int]int)
	for i := range X {
		clear(counts)
		for k := range votes {
			counts[votes[k][i]]++
		}
		best, most := 0, -1
		for cls, c := range counts {
			if c > most || (c == most && cls < best) {
				best, most = cls, c
			}
		}
		out[i] = best
	}
	return out, nil
}

// FScore sums the split counts of every tree in the forest.
func (rf *RandomForest) FScore() (map[string]int, error) {
	if len(rf.Trees) == 0 {
		return nil, fmt.Errorf("randomforest: %w", ErrNotFitted)
	}
	scores := make(map[string]int)
	for _, t := range rf.Trees {
		s, err := t.FScore()
		if err != nil {
			return nil, err
		}
		for k, v := range s {
			scores[k] += v
		}
	}
	return scores, nil
}

// Classes returns the sorted labels seen by any tree.
func (rf *RandomForest) Classes() []int {
	var all []int
	for _, t := range rf.Trees {
		all = append(all, t.classes...)
	}
	return uniqueSorted(all)
}
