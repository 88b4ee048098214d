package model

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"
)

// BoostParams holds the hyperparameters of a GradientBoostingClassifier.
// Names follow the XGBoost parameters they mirror.
type BoostParams struct {
	NEstimators     int     // boosting rounds
	LearningRate    float64 // eta, shrinkage applied to every leaf
	MaxDepth        int     // 0 => no limit
	MinChildWeight  float64 // minimum hessian sum in a child
	Lambda          float64 // L2 regularisation on leaf weights
	Gamma           float64 // minimum loss reduction to make a split
	Subsample       float64 // row fraction sampled per round
	ColsampleByTree float64 // feature fraction sampled per tree
	BaseScore       float64 // initial prediction (probability) for binary problems
	RandomState     int64
}

// GradientBoostingClassifier is a gradient-boosted tree classifier using
// second-order (gradient + hessian) split finding. Binary problems use the
// logistic loss; more than two classes grow one tree per class per round
// over the softmax loss.
type GradientBoostingClassifier struct {
	BoostParams

	booster *Booster
}

// Booster is the fitted tree ensemble.
type Booster struct {
	// Rounds holds one tree per output group per boosting round.
	Rounds     [][]*boostNode
	NFeatures  int
	Classes    []int // sorted class labels; index = class id
	BaseMargin float64
}

// BoostOption functional config for GradientBoostingClassifier.
type BoostOption func(*GradientBoostingClassifier)

func WithNEstimators(n int) BoostOption {
	return func(c *GradientBoostingClassifier) { c.NEstimators = n }
}
func WithLearningRate(eta float64) BoostOption {
	return func(c *GradientBoostingClassifier) { c.LearningRate = eta }
}
func WithBoostMaxDepth(d int) BoostOption {
	return func(c *GradientBoostingClassifier) { c.MaxDepth = d }
}
func WithMinChildWeight(w float64) BoostOption {
	return func(c *GradientBoostingClassifier) { c.MinChildWeight = w }
}
func WithLambda(l float64) BoostOption { return func(c *GradientBoostingClassifier) { c.Lambda = l } }
func WithGamma(g float64) BoostOption  { return func(c *GradientBoostingClassifier) { c.Gamma = g } }
func WithSubsample(r float64) BoostOption {
	return func(c *GradientBoostingClassifier) { c.Subsample = r }
}
func WithColsampleByTree(r float64) BoostOption {
	return func(c *GradientBoostingClassifier) { c.ColsampleByTree = r }
}
func WithBoostRandomState(seed int64) BoostOption {
	return func(c *GradientBoostingClassifier) { c.RandomState = seed }
}

// WithBoostParams replaces every hyperparameter at once.
func WithBoostParams(p BoostParams) BoostOption {
	return func(c *GradientBoostingClassifier) { c.BoostParams = p }
}

// DefaultBoostParams returns the classic XGBClassifier defaults.
func DefaultBoostParams() BoostParams {
	return BoostParams{
		NEstimators:     100,
		LearningRate:    0.1,
		MaxDepth:        3,
		MinChildWeight:  1,
		Lambda:          1,
		Gamma:           0,
		Subsample:       1,
		ColsampleByTree: 1,
		BaseScore:       0.5,
		RandomState:     time.Now().UnixNano(),
	}
}

// NewGradientBoostingClassifier returns a classifier with XGBoost-like defaults.
func NewGradientBoostingClassifier(opts ...BoostOption) *GradientBoostingClassifier {
	c := &GradientBoostingClassifier{BoostParams: DefaultBoostParams()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fit trains the ensemble on X (n x p) and integer class labels y.
// Missing values must be math.NaN(); every split learns which side they go to.
func (c *GradientBoostingClassifier) Fit(X [][]float64, y []int) error {
	p, err := validateXY(X, y)
	if err != nil {
		return err
	}
	n := len(X)

	classes := uniqueSorted(y)
	classIdx := make(map[int]int, len(classes))
	for i, cl := range classes {
		classIdx[cl] = i
	}
	target := make([]int, n)
	for i, lab := range y {
		target[i] = classIdx[lab]
	}

	groups := 1
	if len(classes) > 2 {
		groups = len(classes)
	}

	baseMargin := 0.0
	if groups == 1 && c.BaseScore > 0 && c.BaseScore < 1 {
		baseMargin = logit(c.BaseScore)
	}

	margins := make([][]float64, n)
	for i := range margins {
		margins[i] = make([]float64, groups)
		for k := range margins[i] {
			margins[i][k] = baseMargin
		}
	}

	grad := make([][]float64, groups)
	hess := make([][]float64, groups)
	for k := 0; k < groups; k++ {
		grad[k] = make([]float64, n)
		hess[k] = make([]float64, n)
	}

	rnd := rand.New(rand.NewSource(c.RandomState))
	params := treeParams{
		maxDepth:       c.MaxDepth,
		minChildWeight: c.MinChildWeight,
		lambda:         c.Lambda,
		gamma:          c.Gamma,
		eta:            c.LearningRate,
	}

	booster := &Booster{
		Rounds:     make([][]*boostNode, 0, c.NEstimators),
		NFeatures:  p,
		Classes:    classes,
		BaseMargin: baseMargin,
	}

	col := make([]float64, n)
	for round := 0; round < c.NEstimators; round++ {
		if groups == 1 {
			for i := range margins {
				col[i] = margins[i][0]
			}
			logisticGradients(col, target, grad[0], hess[0])
		} else {
			softmaxGradients(margins, target, grad, hess)
		}

		rows := sampleIndices(rnd, n, c.Subsample)
		feats := sampleIndices(rnd, p, c.ColsampleByTree)

		trees := make([]*boostNode, groups)
		for k := 0; k < groups; k++ {
			b := &treeBuilder{params: params, X: X, grad: grad[k], hess: hess[k], features: feats}
			trees[k] = b.build(rows, 0)
		}
		for i, x := range X {
			for k, t := range trees {
				margins[i][k] += t.predict(x)
			}
		}
		booster.Rounds = append(booster.Rounds, trees)
	}

	c.booster = booster
	return nil
}

// Booster returns the fitted ensemble or ErrNotFitted.
func (c *GradientBoostingClassifier) Booster() (*Booster, error) {
	if c.booster == nil {
		return nil, ErrNotFitted
	}
	return c.booster, nil
}

// PredictProba returns per-class probabilities aligned with Classes().
func (c *GradientBoostingClassifier) PredictProba(X [][]float64) ([][]float64, error) {
	b, err := c.Booster()
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	for i, x := range X {
		if len(x) != b.NFeatures {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrShapeMismatch, i, len(x), b.NFeatures)
		}
		out[i] = b.proba(x)
	}
	return out, nil
}

// Predict returns the most probable class label for every row of X.
func (c *GradientBoostingClassifier) Predict(X [][]float64) ([]int, error) {
	probs, err := c.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(probs))
	for i, p := range probs {
		out[i] = c.booster.Classes[argmaxFloat(p)]
	}
	return out, nil
}

// Classes returns the sorted class labels seen during Fit.
func (c *GradientBoostingClassifier) Classes() []int {
	if c.booster == nil {
		return nil
	}
	return c.booster.Classes
}

// FScore delegates to the fitted booster.
func (c *GradientBoostingClassifier) FScore() (map[string]int, error) {
	b, err := c.Booster()
	if err != nil {
		return nil, err
	}
	return b.FScore(), nil
}

func (b *Booster) margins(x []float64) []float64 {
	groups := 1
	if len(b.Rounds) > 0 {
		groups = len(b.Rounds[0])
	} else if len(b.Classes) > 2 {
		groups = len(b.Classes)
	}
	m := make([]float64, groups)
	for k := range m {
		m[k] = b.BaseMargin
	}
	for _, trees := range b.Rounds {
		for k, t := range trees {
			m[k] += t.predict(x)
		}
	}
	return m
}

func (b *Booster) proba(x []float64) []float64 {
	m := b.margins(x)
	if len(m) == 1 {
		p1 := sigmoid(m[0])
		if len(b.Classes) < 2 {
			return []float64{1}
		}
		return []float64{1 - p1, p1}
	}
	out := make([]float64, len(m))
	softmaxInto(m, out)
	return out
}

// FScore counts, per feature, how many split nodes use it across all trees.
// Keys are "f<index>"; features never split on are absent.
func (b *Booster) FScore() map[string]int {
	scores := make(map[string]int)
	for _, trees := range b.Rounds {
		for _, t := range trees {
			t.walkSplits(func(n *boostNode) {
				scores[featureKey(n.Feature)]++
			})
		}
	}
	return scores
}

// Gain returns the average loss reduction of the splits on each feature.
func (b *Booster) Gain() map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, trees := range b.Rounds {
		for _, t := range trees {
			t.walkSplits(func(n *boostNode) {
				k := featureKey(n.Feature)
				sums[k] += n.Gain
				counts[k]++
			})
		}
	}
	for k, s := range sums {
		sums[k] = s / float64(counts[k])
	}
	return sums
}

// NumTrees is the total number of trees in the ensemble.
func (b *Booster) NumTrees() int {
	n := 0
	for _, trees := range b.Rounds {
		n += len(trees)
	}
	return n
}

func featureKey(f int) string { return fmt.Sprintf("f%d", f) }

// boostSnapshot is the gob payload of a fitted classifier.
type boostSnapshot struct {
	Params  BoostParams
	Booster *Booster
}

// MarshalBinary implements encoding.BinaryMarshaler using gob.
func (c *GradientBoostingClassifier) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(boostSnapshot{Params: c.BoostParams, Booster: c.booster}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using gob.
func (c *GradientBoostingClassifier) UnmarshalBinary(data []byte) error {
	var snap boostSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return err
	}
	c.BoostParams = snap.Params
	c.booster = snap.Booster
	return nil
}

// ---------------------------
// shared helpers
// ---------------------------

// validateXY checks shapes and returns the feature count.
func validateXY(X [][]float64, y []int) (int, error) {
	if len(X) == 0 {
		return 0, ErrEmptyInput
	}
	if len(y) != len(X) {
		return 0, fmt.Errorf("%w: %d rows, %d labels", ErrShapeMismatch, len(X), len(y))
	}
	p := len(X[0])
	for i := range X {
		if len(X[i]) != p {
			return 0, fmt.Errorf("%w: row %d", ErrRaggedInput, i)
		}
	}
	return p, nil
}

func uniqueSorted(y []int) []int {
	seen := make(map[int]struct{})
	out := make([]int, 0)
	for _, v := range y {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

// sampleIndices draws round(frac*n) distinct indices in ascending order.
// frac outside (0, 1) keeps everything.
func sampleIndices(rnd *rand.Rand, n int, frac float64) []int {
	if frac <= 0 || frac >= 1 {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	k := int(math.Max(1, math.Round(frac*float64(n))))
	idx := rnd.Perm(n)[:k]
	sort.Ints(idx)
	return idx
}
