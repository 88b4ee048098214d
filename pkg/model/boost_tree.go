package model

import (
	"math"
	"sort"
	"sync"
)

// minSplitImprovement filters out float noise when comparing split gains.
const minSplitImprovement = 1e-10

// boostNode is a node of a gradient-boosted regression tree.
// Fields are exported so the ensemble can be gob-encoded.
type boostNode struct {
	Leaf        bool
	Feature     int
	Threshold   float64 // x <= Threshold => Left
	DefaultLeft bool    // branch taken by missing (NaN) values
	Gain        float64 // loss reduction of this split
	Cover       float64 // hessian sum of the samples reaching this node
	Left        *boostNode
	Right       *boostNode

	// leaf data, already scaled by the learning rate
	Value float64
}

// treeParams is the subset of booster settings a single tree needs.
type treeParams struct {
	maxDepth       int
	minChildWeight float64
	lambda         float64
	gamma          float64
	eta            float64
}

// treeBuilder grows one regression tree on a fixed set of gradients.
type treeBuilder struct {
	params   treeParams
	X        [][]float64
	grad     []float64
	hess     []float64
	features []int
}

// boostSplit holds the outcome of the split search for one feature.
type boostSplit struct {
	gain        float64
	feature     int
	threshold   float64
	defaultLeft bool
	leftIdx     []int
	rightIdx    []int
}

func (b *treeBuilder) leafWeight(g, h float64) float64 {
	return -g / (h + b.params.lambda)
}

func (b *treeBuilder) score(g, h float64) float64 {
	return g * g / (h + b.params.lambda)
}

func (b *treeBuilder) build(idx []int, depth int) *boostNode {
	var g, h float64
	for _, i := range idx {
		g += b.grad[i]
		h += b.hess[i]
	}
	node := &boostNode{Cover: h}

	if (b.params.maxDepth > 0 && depth >= b.params.maxDepth) || len(idx) < 2 {
		node.Leaf = true
		node.Value = b.params.eta * b.leafWeight(g, h)
		return node
	}

	// Each feature is searched on its own goroutine; results land in a slice
	// indexed by position so ties resolve to the lowest feature deterministically.
	results := make([]boostSplit, len(b.features))
	var wg sync.WaitGroup
	for pos, f := range b.features {
		wg.Add(1)
		go func(pos, f int) {
			defer wg.Done()
			results[pos] = b.bestSplitForFeature(idx, f, g, h)
		}(pos, f)
	}
	wg.Wait()

	best := boostSplit{feature: -1}
	for _, r := range results {
		if r.feature >= 0 && r.gain > best.gain {
			best = r
		}
	}

	if best.feature == -1 || best.gain <= minSplitImprovement {
		node.Leaf = true
		node.Value = b.params.eta * b.leafWeight(g, h)
		return node
	}

	node.Feature = best.feature
	node.Threshold = best.threshold
	node.DefaultLeft = best.defaultLeft
	node.Gain = best.gain
	node.Left = b.build(best.leftIdx, depth+1)
	node.Right = b.build(best.rightIdx, depth+1)
	return node
}

// bestSplitForFeature scans sorted thresholds of feature f, trying missing
// values on both sides when there are any.
func (b *treeBuilder) bestSplitForFeature(idx []int, f int, gTotal, hTotal float64) boostSplit {
	result := boostSplit{feature: -1}

	valid := make([]pair, 0, len(idx))
	var nans []int
	var gNaN, hNaN float64
	for _, i := range idx {
		v := b.X[i][f]
		if math.IsNaN(v) {
			nans = append(nans, i)
			gNaN += b.grad[i]
			hNaN += b.hess[i]
			continue
		}
		valid = append(valid, pair{v, i})
	}
	if len(valid) < 2 {
		return result
	}
	sort.Slice(valid, func(a, c int) bool { return valid[a].v < valid[c].v })

	parent := b.score(gTotal, hTotal)
	directions := []bool{true}
	if len(nans) > 0 {
		directions = []bool{true, false}
	}

	var gl, hl float64
	bestPos := -1
	for s := 1; s < len(valid); s++ {
		gl += b.grad[valid[s-1].i]
		hl += b.hess[valid[s-1].i]
		if valid[s].v == valid[s-1].v {
			continue
		}
		for _, nanLeft := range directions {
			gL, hL := gl, hl
			if nanLeft {
				gL += gNaN
				hL += hNaN
			}
			gR, hR := gTotal-gL, hTotal-hL
			if hL < b.params.minChildWeight || hR < b.params.minChildWeight {
				continue
			}
			gain := 0.5*(b.score(gL, hL)+b.score(gR, hR)-parent) - b.params.gamma
			if gain > result.gain {
				result.gain = gain
				result.feature = f
				result.threshold = (valid[s-1].v + valid[s].v) / 2.0
				result.defaultLeft = nanLeft
				bestPos = s
			}
		}
	}
	if bestPos < 0 {
		return boostSplit{feature: -1}
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

// predict walks the tree for one row.
func (n *boostNode) predict(x []float64) float64 {
	node := n
	for !node.Leaf {
		v := x[node.Feature]
		switch {
		case math.IsNaN(v):
			if node.DefaultLeft {
				node = node.Left
			} else {
				node = node.Right
			}
		case v <= node.Threshold:
			node = node.Left
		default:
			node = node.Right
		}
	}
	return node.Value
}

// walkSplits calls fn for every internal node.
func (n *boostNode) walkSplits(fn func(*boostNode)) {
	if n == nil || n.Leaf {
		return
	}
	fn(n)
	n.Left.walkSplits(fn)
	n.Right.walkSplits(fn)
}
