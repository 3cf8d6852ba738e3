package ml

import (
	"errors"
	"math"
)

// errTooFewPerClass aborts calibration when a class cannot populate every
// fold; the caller falls back to the uncalibrated ensemble.
var errTooFewPerClass = errors.New("ml: too few samples per class for calibration folds")

const calibrationFolds = 3

// sigmoidCalibrator maps a raw log-odds score s to a calibrated probability
// sigmoid(a*s + b) (Platt scaling).
type sigmoidCalibrator struct {
	a, b float64
}

func (c sigmoidCalibrator) calibrate(score float64) float64 {
	return sigmoid(c.a*score + c.b)
}

// fitSigmoid fits the Platt parameters by gradient descent on the weighted
// log loss, using Platt's smoothed targets to avoid overconfident mapping
// on tiny holdout folds.
func fitSigmoid(scores, y, w []float64) sigmoidCalibrator {
	var pos, neg float64
	for _, label := range y {
		if label == 1 {
			pos++
		} else {
			neg++
		}
	}
	tPos := (pos + 1) / (pos + 2)
	tNeg := 1 / (neg + 2)

	a, b := 1.0, 0.0
	const lr = 0.01
	const iterations = 2000

	for iter := 0; iter < iterations; iter++ {
		var gradA, gradB, totalW float64
		for i, s := range scores {
			target := tNeg
			if y[i] == 1 {
				target = tPos
			}
			p := sigmoid(a*s + b)
			diff := w[i] * (p - target)
			gradA += diff * s
			gradB += diff
			totalW += w[i]
		}
		if totalW == 0 {
			break
		}
		a -= lr * gradA / totalW
		b -= lr * gradB / totalW
	}

	if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return sigmoidCalibrator{a: 1, b: 0}
	}
	return sigmoidCalibrator{a: a, b: b}
}

type calibratedMember struct {
	model *boostedModel
	cal   sigmoidCalibrator
}

// calibratedModel averages the calibrated probabilities of one member per
// cross-validation fold, each trained on the other folds and calibrated on
// its own holdout.
type calibratedModel struct {
	members []calibratedMember
}

// trainCalibrated runs stratified k-fold calibration. Every fold needs at
// least one sample of each class in its holdout, which requires at least
// calibrationFolds samples per class overall.
func trainCalibrated(X [][]float64, y, w []float64, params gbmParams) (*calibratedModel, error) {
	var posIdx, negIdx []int
	for i, label := range y {
		if label == 1 {
			posIdx = append(posIdx, i)
		} else {
			negIdx = append(negIdx, i)
		}
	}
	if len(posIdx) < calibrationFolds || len(negIdx) < calibrationFolds {
		return nil, errTooFewPerClass
	}

	folds := stratifiedFolds(posIdx, negIdx, calibrationFolds)
	cm := &calibratedModel{}

	for _, holdout := range folds {
		inHoldout := make(map[int]bool, len(holdout))
		for _, i := range holdout {
			inHoldout[i] = true
		}

		var trainX [][]float64
		var trainY, trainW []float64
		for i := range X {
			if inHoldout[i] {
				continue
			}
			trainX = append(trainX, X[i])
			trainY = append(trainY, y[i])
			trainW = append(trainW, w[i])
		}

		member := calibratedMember{model: trainBoosted(trainX, trainY, trainW, params)}

		scores := make([]float64, len(holdout))
		holdY := make([]float64, len(holdout))
		holdW := make([]float64, len(holdout))
		for k, i := range holdout {
			scores[k] = member.model.rawScore(X[i])
			holdY[k] = y[i]
			holdW[k] = w[i]
		}
		member.cal = fitSigmoid(scores, holdY, holdW)
		cm.members = append(cm.members, member)
	}
	return cm, nil
}

// stratifiedFolds deals each class round-robin into k folds so every fold
// sees both outcomes.
func stratifiedFolds(posIdx, negIdx []int, k int) [][]int {
	folds := make([][]int, k)
	for j, i := range posIdx {
		folds[j%k] = append(folds[j%k], i)
	}
	for j, i := range negIdx {
		folds[j%k] = append(folds[j%k], i)
	}
	return folds
}

func (cm *calibratedModel) predictProba(x []float64) float64 {
	var total float64
	for _, member := range cm.members {
		total += member.cal.calibrate(member.model.rawScore(x))
	}
	return total / float64(len(cm.members))
}

func (cm *calibratedModel) accuracy(X [][]float64, y []float64) float64 {
	if len(X) == 0 {
		return 0
	}
	correct := 0
	for i, x := range X {
		pred := 0.0
		if cm.predictProba(x) >= 0.5 {
			pred = 1
		}
		if pred == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(X))
}
