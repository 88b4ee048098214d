package model

import "math"

// hessEps keeps leaf weights finite when probabilities saturate.
const hessEps = 1e-16

func sigmoid(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }

// softmaxInto writes softmax(margins) into out.
func softmaxInto(margins, out []float64) {
	maxM := margins[0]
	for _, m := range margins[1:] {
		if m > maxM {
			maxM = m
		}
	}
	sum := 0.0
	for k, m := range margins {
		out[k] = math.Exp(m - maxM)
		sum += out[k]
	}
	for k := range out {
		out[k] /= sum
	}
}

// logisticGradients fills grad/hess for binary:logistic given margins and 0/1 targets.
func logisticGradients(margins []float64, target []int, grad, hess []float64) {
	for i, m := range margins {
		p := sigmoid(m)
		grad[i] = p - float64(target[i])
		hess[i] = math.Max(p*(1-p), hessEps)
	}
}

// softmaxGradients fills per-class grad/hess for multi:softprob.
// margins is n x K, target holds class indexes, grad/hess are K x n.
func softmaxGradients(margins [][]float64, target []int, grad, hess [][]float64) {
	k := len(grad)
	p := make([]float64, k)
	for i, row := range margins {
		softmaxInto(row, p)
		for c := 0; c < k; c++ {
			y := 0.0
			if target[i] == c {
				y = 1
			}
			grad[c][i] = p[c] - y
			hess[c][i] = math.Max(2*p[c]*(1-p[c]), hessEps)
		}
	}
}

// logit is the inverse of sigmoid, used to turn base_score into a margin.
func logit(p float64) float64 { return math.Log(p / (1 - p)) }
