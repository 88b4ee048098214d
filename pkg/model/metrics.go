package model

import "math"

// Accuracy is the fraction of matching labels.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0
	}
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}

// LogLoss is the mean negative log-likelihood of the true labels under
// proba, whose columns are aligned with classes.
func LogLoss(yTrue []int, proba [][]float64, classes []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	idx := make(map[int]int, len(classes))
	for i, c := range classes {
		idx[c] = i
	}
	s := 0.0
	for i, y := range yTrue {
		p := 1e-15
		if k, ok := idx[y]; ok && k < len(proba[i]) {
			p = math.Min(math.Max(proba[i][k], 1e-15), 1-1e-15)
		}
		s -= math.Log(p)
	}
	return s / float64(len(yTrue))
}

// PrecisionRecallF1 scores predictions of the positive label against the
// rest. Undefined ratios are 0.
func PrecisionRecallF1(yTrue, yPred []int, positive int) (prec, rec, f1 float64) {
	var tp, fp, fn float64
	for i := range yTrue {
		switch hitTrue, hitPred := yTrue[i] == positive, yPred[i] == positive; {
		case hitTrue && hitPred:
			tp++
		case hitPred:
			fp++
		case hitTrue:
			fn++
		}
	}
	if tp > 0 {
		prec = tp / (tp + fp)
		rec = tp / (tp + fn)
		f1 = 2 * prec * rec / (prec + rec)
	}
	return prec, rec, f1
}
