package model

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"
)

// TreeParams holds the hyperparameters of a DecisionTreeClassifier.
type TreeParams struct {
	MaxDepth            int     // root depth = 0; 0 => no limit
	MinSamplesSplit     int     // minimum samples to attempt a split
	MinSamplesLeaf      int     // minimum samples in each child
	Criterion           string  // "gini" (default) or "entropy"
	MaxFeatures         int     // features sampled per node; 0 => all
	MinImpurityDecrease float64 // a split must beat this to be kept
	RandomState         int64   // seed for feature subsampling
}

// DecisionTreeClassifier is a CART-style classifier. Missing values
// (math.NaN()) are sent down the side each split learned during Fit.
type DecisionTreeClassifier struct {
	TreeParams

	root      *dtNode
	classes   []int // sorted class labels; Probas are aligned with them
	nFeatures int
}

// dtNode is a split or a leaf. Exported fields keep it gob-encodable.
type dtNode struct {
	IsLeaf      bool
	Feature     int
	Threshold   float64 // x <= Threshold goes left
	DefaultLeft bool    // side taken by a missing value
	Left        *dtNode
	Right       *dtNode

	N      int
	Probas []float64
}

// Option configures a DecisionTreeClassifier.
type Option func(*DecisionTreeClassifier)

func WithMaxDepth(d int) Option { return func(t *DecisionTreeClassifier) { t.MaxDepth = d } }
func WithMinSamplesSplit(n int) Option {
	return func(t *DecisionTreeClassifier) { t.MinSamplesSplit = n }
}
func WithMinSamplesLeaf(n int) Option {
	return func(t *DecisionTreeClassifier) { t.MinSamplesLeaf = n }
}
func WithCriterion(c string) Option { return func(t *DecisionTreeClassifier) { t.Criterion = c } }
func WithMaxFeatures(k int) Option  { return func(t *DecisionTreeClassifier) { t.MaxFeatures = k } }
func WithMinImpurityDecrease(v float64) Option {
	return func(t *DecisionTreeClassifier) { t.MinImpurityDecrease = v }
}
func WithRandomState(seed int64) Option {
	return func(t *DecisionTreeClassifier) { t.RandomState = seed }
}

// NewDecisionTreeClassifier grows unbounded gini trees unless told otherwise.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	d := &DecisionTreeClassifier{TreeParams: TreeParams{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Criterion:       "gini",
		RandomState:     time.Now().UnixNano(),
	}}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Fit grows the tree on every row of X.
func (t *DecisionTreeClassifier) Fit(X [][]float64, y []int) error {
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	return t.FitIndices(X, y, idx)
}

// FitIndices trains on the rows of X named by idx. Indices may repeat,
// which is how bootstrap samples are drawn without copying X.
func (t *DecisionTreeClassifier) FitIndices(X [][]float64, y []int, idx []int) error {
	p, err := validateXY(X, y)
	if err != nil {
		return fmt.Errorf("dtree: %w", err)
	}
	if len(idx) == 0 {
		return fmt.Errorf("dtree: %w", ErrEmptyInput)
	}

	labels := make([]int, len(idx))
	for k, i := range idx {
		labels[k] = y[i]
	}
	t.classes = uniqueSorted(labels)
	t.nFeatures = p

	b := &cartBuilder{
		params:   t.TreeParams,
		X:        X,
		classOf:  make(map[int]int, len(idx)),
		nClasses: len(t.classes),
		rnd:      rand.New(rand.NewSource(t.RandomState)),
	}
	pos := make(map[int]int, len(t.classes))
	for k, c := range t.classes {
		pos[c] = k
	}
	for _, i := range idx {
		b.classOf[i] = pos[y[i]]
	}
	if t.Criterion == "entropy" {
		b.impurity = entropyFromCounts
	} else {
		b.impurity = giniFromCounts
	}
	t.root = b.build(idx, 0, p)
	return nil
}

// Predict returns predicted class labels.
func (t *DecisionTreeClassifier) Predict(X [][]float64) ([]int, error) {
	if t.root == nil {
		return nil, fmt.Errorf("dtree: %w", ErrNotFitted)
	}
	if err := t.checkWidth(X); err != nil {
		return nil, err
	}
	return t.mustPredict(X), nil
}

// PredictProba returns per-class probabilities aligned with the sorted
// class labels.
func (t *DecisionTreeClassifier) PredictProba(X [][]float64) ([][]float64, error) {
	if t.root == nil {
		return nil, fmt.Errorf("dtree: %w", ErrNotFitted)
	}
	if err := t.checkWidth(X); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	for i := range X {
		out[i] = append([]float64(nil), t.root.leaf(X[i]).Probas...)
	}
	return out, nil
}

// Classes returns the sorted labels seen in Fit.
func (t *DecisionTreeClassifier) Classes() []int { return append([]int(nil), t.classes...) }

// FScore counts the split nodes per feature, keyed "f<index>".
func (t *DecisionTreeClassifier) FScore() (map[string]int, error) {
	if t.root == nil {
		return nil, fmt.Errorf("dtree: %w", ErrNotFitted)
	}
	scores := make(map[string]int)
	var walk func(n *dtNode)
	walk = func(n *dtNode) {
		if n == nil || n.IsLeaf {
			return
		}
		scores[featureKey(n.Feature)]++
		walk(n.Left)
		walk(n.Right)
	}
	walk(t.root)
	return scores, nil
}

// NFeatures is the feature count seen during Fit.
func (t *DecisionTreeClassifier) NFeatures() int { return t.nFeatures }

type treeSnapshot struct {
	Params    TreeParams
	Classes   []int
	NFeatures int
	Root      *dtNode
}

// MarshalBinary implements encoding.BinaryMarshaler using gob.
func (t *DecisionTreeClassifier) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	snap := treeSnapshot{Params: t.TreeParams, Classes: t.classes, NFeatures: t.nFeatures, Root: t.root}
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, fmt.Errorf("dtree: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using gob.
func (t *DecisionTreeClassifier) UnmarshalBinary(data []byte) error {
	var snap treeSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return fmt.Errorf("dtree: decode: %w", err)
	}
	t.TreeParams = snap.Params
	t.classes = snap.Classes
	t.nFeatures = snap.NFeatures
	t.root = snap.Root
	return nil
}

func (t *DecisionTreeClassifier) checkWidth(X [][]float64) error {
	for i, row := range X {
		if len(row) != t.nFeatures {
			return fmt.Errorf("dtree: %w: row %d has %d features, want %d", ErrShapeMismatch, i, len(row), t.nFeatures)
		}
	}
	return nil
}

// mustPredict predicts with a tree known to be fitted.
func (t *DecisionTreeClassifier) mustPredict(X [][]float64) []int {
	out := make([]int, len(X))
	for i := range X {
		out[i] = t.classes[argmaxFloat(t.root.leaf(X[i]).Probas)]
	}
	return out
}

// leaf walks the tree for one row.
func (n *dtNode) leaf(x []float64) *dtNode {
	for !n.IsLeaf {
		v := x[n.Feature]
		switch {
		case math.IsNaN(v):
			if n.DefaultLeft {
				n = n.Left
			} else {
				n = n.Right
			}
		case v <= n.Threshold:
			n = n.Left
		default:
			n = n.Right
		}
	}
	return n
}

// cartBuilder grows one tree. classOf maps a row index to its class position.
type cartBuilder struct {
	params   TreeParams
	X        [][]float64
	classOf  map[int]int
	nClasses int
	impurity func(counts []int) float64
	rnd      *rand.Rand
}

type cartSplit struct {
	gain        float64
	feature     int
	threshold   float64
	defaultLeft bool
	leftIdx     []int
	rightIdx    []int
}

func (b *cartBuilder) counts(idx []int) []int {
	c := make([]int, b.nClasses)
	for _, i := range idx {
		c[b.classOf[i]]++
	}
	return c
}

func (b *cartBuilder) build(idx []int, depth, p int) *dtNode {
	counts := b.counts(idx)
	node := &dtNode{N: len(idx), Probas: countsToProbas(counts)}
	if isPure(counts) ||
		len(idx) < b.params.MinSamplesSplit ||
		(b.params.MaxDepth > 0 && depth >= b.params.MaxDepth) {
		node.IsLeaf = true
		return node
	}

	features := make([]int, p)
	for j := range features {
		features[j] = j
	}
	if b.params.MaxFeatures > 0 && b.params.MaxFeatures < p {
		b.rnd.Shuffle(p, func(i, j int) { features[i], features[j] = features[j], features[i] })
		features = features[:b.params.MaxFeatures]
		sort.Ints(features)
	}

	parent := b.impurity(counts)
	results := make([]cartSplit, len(features))
	var wg sync.WaitGroup
	for pos, f := range features {
		wg.Add(1)
		go func(pos, f int) {
			defer wg.Done()
			results[pos] = b.bestSplitForFeature(idx, f, parent)
		}(pos, f)
	}
	wg.Wait()

	best := cartSplit{feature: -1}
	for _, r := range results {
		if r.feature >= 0 && r.gain > best.gain {
			best = r
		}
	}
	if best.feature == -1 || best.gain <= b.params.MinImpurityDecrease {
		node.IsLeaf = true
		return node
	}

	node.Feature = best.feature
	node.Threshold = best.threshold
	node.DefaultLeft = best.defaultLeft
	node.Probas = nil
	node.Left = b.build(best.leftIdx, depth+1, p)
	node.Right = b.build(best.rightIdx, depth+1, p)
	return node
}

// bestSplitForFeature scans the sorted values of f once, moving class
// counts from right to left, and tries missing values on both sides.
func (b *cartBuilder) bestSplitForFeature(idx []int, f int, parent float64) cartSplit {
	result := cartSplit{feature: -1}

	valid := make([]pair, 0, len(idx))
	var nans []int
	for _, i := range idx {
		v := b.X[i][f]
		if math.IsNaN(v) {
			nans = append(nans, i)
			continue
		}
		valid = append(valid, pair{v, i})
	}
	if len(valid) < 2 {
		return result
	}
	sort.Slice(valid, func(a, c int) bool { return valid[a].v < valid[c].v })

	nanCounts := b.counts(nans)
	left := make([]int, b.nClasses)
	right := b.counts(indicesFromPairs(valid))
	directions := []bool{false}
	if len(nans) > 0 {
		directions = []bool{true, false}
	}
	total := float64(len(idx))
	minLeaf := b.params.MinSamplesLeaf

	bestPos := -1
	for s := 1; s < len(valid); s++ {
		c := b.classOf[valid[s-1].i]
		left[c]++
		right[c]--
		if valid[s].v == valid[s-1].v {
			continue
		}
		for _, nanLeft := range directions {
			nL, nR := s, len(valid)-s
			lc, rc := left, right
			if nanLeft {
				nL += len(nans)
				lc = addCounts(left, nanCounts)
			} else {
				nR += len(nans)
				rc = addCounts(right, nanCounts)
			}
			if nL < minLeaf || nR < minLeaf {
				continue
			}
			weighted := float64(nL)/total*b.impurity(lc) + float64(nR)/total*b.impurity(rc)
			if gain := parent - weighted; gain > result.gain {
				result.gain = gain
				result.feature = f
				result.threshold = (valid[s-1].v + valid[s].v) / 2.0
				result.defaultLeft = nanLeft
				bestPos = s
			}
		}
	}
	if bestPos < 0 {
		return cartSplit{feature: -1}
	}

	result.leftIdx = indicesFromPairs(valid[:bestPos])
	result.rightIdx = indicesFromPairs(valid[bestPos:])
	if result.defaultLeft {
		result.leftIdx = append(result.leftIdx, nans...)
	} else {
		result.rightIdx = append(result.rightIdx, nans...)
	}
	return result
}

// pair is a feature value and the row it came from.
type pair struct {
	v float64
	i int
}

func indicesFromPairs(pairs []pair) []int {
	out := make([]int, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.i)
	}
	return out
}

func addCounts(a, b []int) []int {
	out := make([]int, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

func giniFromCounts(counts []int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 1.0
	for _, c := range counts {
		p := float64(c) / n
		res -= p * p
	}
	return res
}

func entropyFromCounts(counts []int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		res -= p * math.Log2(p)
	}
	return res
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func countsToProbas(counts []int) []float64 {
	n := 0
	for _, c := range counts {
		n += c
	}
	p := make([]float64, len(counts))
	if n == 0 {
		return p
	}
	for i := range counts {
		p[i] = float64(counts[i]) / float64(n)
	}
	return p
}

func argmaxFloat(arr []float64) int {
	best := 0
	for i := 1; i < len(arr); i++ {
		if arr[i] > arr[best] {
			best = i
		}
	}
	return best
}
