package ml

import "math"

// gbmParams mirror the fixed training configuration: 200 shallow trees with
// a conservative learning rate, binary logistic objective.
type gbmParams struct {
	trees        int
	maxDepth     int
	learningRate float64
}

func defaultGBMParams() gbmParams {
	return gbmParams{trees: 200, maxDepth: 6, learningRate: 0.1}
}

// boostedModel is a gradient-boosted logistic classifier over a fixed
// column order. Importance holds the per-feature share of total split gain,
// normalized to sum to one.
type boostedModel struct {
	bias       float64
	trees      []*regressionTree
	importance []float64
	params     gbmParams
}

// trainBoosted fits the ensemble on rows X, 0/1 targets y, and per-sample
// weights w. Each round fits a regression tree to the logistic residuals
// and applies a Newton leaf step scaled by the learning rate.
func trainBoosted(X [][]float64, y, w []float64, p gbmParams) *boostedModel {
	n := len(X)
	m := &boostedModel{params: p, importance: make([]float64, len(X[0]))}

	// Initial score is the log odds of the weighted positive rate, clamped
	// away from the degenerate single-class extremes.
	var sumW, sumWY float64
	for i := range y {
		sumW += w[i]
		sumWY += w[i] * y[i]
	}
	p0 := clamp(sumWY/sumW, 1e-4, 1-1e-4)
	m.bias = math.Log(p0 / (1 - p0))

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = m.bias
	}

	residuals := make([]float64, n)
	hessians := make([]float64, n)
	tp := treeParams{maxDepth: p.maxDepth, minLeafWeight: 1e-9}

	for round := 0; round < p.trees; round++ {
		for i := 0; i < n; i++ {
			prob := sigmoid(scores[i])
			residuals[i] = y[i] - prob
			hessians[i] = prob * (1 - prob)
		}

		tree := fitTree(X, residuals, w, hessians, tp)
		for i := 0; i < n; i++ {
			scores[i] += p.learningRate * tree.predict(X[i])
		}
		for f, g := range tree.gains {
			m.importance[f] += g
		}
		m.trees = append(m.trees, tree)
	}

	normalize(m.importance)
	return m
}

// rawScore returns the uncalibrated log-odds score for one row.
func (m *boostedModel) rawScore(x []float64) float64 {
	score := m.bias
	for _, tree := range m.trees {
		score += m.params.learningRate * tree.predict(x)
	}
	return score
}

// predictProba returns the positive-class probability for one row.
func (m *boostedModel) predictProba(x []float64) float64 {
	return sigmoid(m.rawScore(x))
}

// accuracy scores the model on labeled rows at the 0.5 threshold.
func (m *boostedModel) accuracy(X [][]float64, y []float64) float64 {
	if len(X) == 0 {
		return 0
	}
	correct := 0
	for i, x := range X {
		pred := 0.0
		if m.predictProba(x) >= 0.5 {
			pred = 1
		}
		if pred == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(X))
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func normalize(v []float64) {
	var total float64
	for _, x := range v {
		total += x
	}
	if total <= 0 {
		return
	}
	for i := range v {
		v[i] /= total
	}
}
