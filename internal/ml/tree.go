// Package ml implements the win-prediction model: a gradient-boosted
// ensemble of shallow regression trees with Platt-calibrated probabilities,
// plus the deterministic insight layers built on top of it (performance
// insights, mood tags, win drivers, skill focus).
package ml

import "sort"

// treeNode is one node of a weighted regression tree. Leaves carry the
// Newton-step value added to the ensemble score.
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     float64
	leaf      bool
}

// regressionTree fits weighted squared error on gradient residuals. Splits
// are exhaustive over midpoints of the sorted distinct feature values.
type regressionTree struct {
	root *treeNode
	// gain accumulated per feature during fitting, for importances.
	gains []float64
}

type treeParams struct {
	maxDepth      int
	minLeafWeight float64
}

// fitTree grows a tree on residuals r with sample weights w, then assigns
// each leaf the Newton value sum(w*r)/sum(w*h) where h is the per-sample
// hessian of the logistic loss.
func fitTree(X [][]float64, r, w, h []float64, p treeParams) *regressionTree {
	t := &regressionTree{gains: make([]float64, len(X[0]))}
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	t.root = t.grow(X, r, w, h, idx, p.maxDepth, p)
	return t
}

func (t *regressionTree) grow(X [][]float64, r, w, h []float64, idx []int, depth int, p treeParams) *treeNode {
	if depth == 0 || len(idx) < 2 {
		return leafNode(r, w, h, idx)
	}

	feature, threshold, gain := bestSplit(X, r, w, idx, p)
	if gain <= 0 {
		return leafNode(r, w, h, idx)
	}
	t.gains[feature] += gain

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      t.grow(X, r, w, h, left, depth-1, p),
		right:     t.grow(X, r, w, h, right, depth-1, p),
	}
}

func leafNode(r, w, h []float64, idx []int) *treeNode {
	var num, den float64
	for _, i := range idx {
		num += w[i] * r[i]
		den += w[i] * h[i]
	}
	// Hessian can vanish when predictions saturate; the epsilon keeps the
	// step bounded instead of exploding.
	return &treeNode{leaf: true, value: num / (den + 1e-9)}
}

// bestSplit returns the split with the largest weighted SSE reduction.
func bestSplit(X [][]float64, r, w []float64, idx []int, p treeParams) (feature int, threshold, gain float64) {
	feature = -1

	totalSSE, totalWeight := weightedSSE(r, w, idx)
	if totalWeight <= 0 {
		return -1, 0, 0
	}

	nFeatures := len(X[0])
	order := make([]int, len(idx))

	for f := 0; f < nFeatures; f++ {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool { return X[order[a]][f] < X[order[b]][f] })

		var sumW, sumWR, sumWR2 float64
		rightW, rightWR, rightWR2 := sums(r, w, order)

		for k := 0; k < len(order)-1; k++ {
			i := order[k]
			sumW += w[i]
			sumWR += w[i] * r[i]
			sumWR2 += w[i] * r[i] * r[i]

			if X[order[k]][f] == X[order[k+1]][f] {
				continue
			}
			leftW := sumW
			rw := rightW - sumW
			if leftW < p.minLeafWeight || rw < p.minLeafWeight {
				continue
			}

			leftSSE := sumWR2 - sumWR*sumWR/leftW
			rightSSE := (rightWR2 - sumWR2) - (rightWR-sumWR)*(rightWR-sumWR)/rw
			if g := totalSSE - leftSSE - rightSSE; g > gain {
				gain = g
				feature = f
				threshold = (X[order[k]][f] + X[order[k+1]][f]) / 2
			}
		}
	}
	return feature, threshold, gain
}

func sums(r, w []float64, idx []int) (sumW, sumWR, sumWR2 float64) {
	for _, i := range idx {
		sumW += w[i]
		sumWR += w[i] * r[i]
		sumWR2 += w[i] * r[i] * r[i]
	}
	return sumW, sumWR, sumWR2
}

func weightedSSE(r, w []float64, idx []int) (sse, totalWeight float64) {
	sumW, sumWR, sumWR2 := sums(r, w, idx)
	if sumW <= 0 {
		return 0, 0
	}
	return sumWR2 - sumWR*sumWR/sumW, sumW
}

func (t *regressionTree) predict(x []float64) float64 {
	node := t.root
	for !node.leaf {
		if x[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}
