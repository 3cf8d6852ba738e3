package ml

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/riftlens/analysis-api/internal/features"
	"github.com/riftlens/analysis-api/internal/models"
)

// ErrInsufficientData is returned when the player has too few matches to
// train on. Callers surface it as a partial result, not a failure.
var ErrInsufficientData = errors.New("not enough data (need at least 5 matches)")

// MinTrainingRows is the smallest row table Train accepts.
const MinTrainingRows = 5

// Model is a per-request win-prediction model. It is not safe for
// concurrent use; each analysis run owns its own instance.
type Model struct {
	base       *boostedModel
	calibrated *calibratedModel
	trained    bool

	cacheKey string
	metrics  *models.TrainingMetrics

	log *zap.SugaredLogger
}

// New returns an untrained model.
func New(log *zap.SugaredLogger) *Model {
	return &Model{log: log}
}

// Trained reports whether Train has completed successfully.
func (m *Model) Trained() bool { return m.trained }

// Metrics returns the metrics from the last training run, or nil.
func (m *Model) Metrics() *models.TrainingMetrics { return m.metrics }

// cacheKeyFor fingerprints the row table cheaply: row count, newest and
// oldest creation timestamps, and the win sum catch any append, trim, or
// outcome change without hashing full payloads.
func cacheKeyFor(table []features.Row) string {
	if len(table) == 0 {
		return ""
	}
	wins := 0
	for _, row := range table {
		if row.Win {
			wins++
		}
	}
	return fmt.Sprintf("%d|%d|%d|%d",
		len(table),
		table[0].GameCreation,
		table[len(table)-1].GameCreation,
		wins)
}

// recencyWeights implements the fixed recency schedule: the latest match
// weighs 4, the next four weigh 2, everything older weighs 1.
func recencyWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		switch {
		case i == 0:
			w[i] = 4
		case i < 5:
			w[i] = 2
		default:
			w[i] = 1
		}
	}
	return w
}

// Train fits the model on the row table (newest first). Identical data
// short-circuits to the cached metrics. Calibration failure is not an
// error; the model silently falls back to uncalibrated probabilities.
func (m *Model) Train(table []features.Row) (*models.TrainingMetrics, error) {
	if len(table) < MinTrainingRows {
		return nil, ErrInsufficientData
	}

	key := cacheKeyFor(table)
	if key != "" && key == m.cacheKey && m.metrics != nil {
		m.log.Infow("skipping model training, data unchanged", "cache_key", key)
		return m.metrics, nil
	}
	m.log.Infow("training model", "cache_key", key, "rows", len(table))

	matrix := features.Prepare(table, true)
	y := features.Labels(table)
	weights := recencyWeights(len(table))
	params := defaultGBMParams()

	m.base = trainBoosted(matrix.Rows, y, weights, params)

	calibrated, err := trainCalibrated(matrix.Rows, y, weights, params)
	if err != nil {
		m.log.Debugw("probability calibration skipped", "reason", err)
		m.calibrated = nil
	} else {
		m.calibrated = calibrated
	}

	m.trained = true
	m.cacheKey = key
	m.metrics = m.calculateMetrics(table, matrix.Rows, y)
	return m.metrics, nil
}

func (m *Model) calculateMetrics(table []features.Row, X [][]float64, y []float64) *models.TrainingMetrics {
	importance := make(map[string]float64, len(features.Predictive))
	ranked := make([]models.FeatureImportance, 0, len(features.Predictive))
	for i, feature := range features.Predictive {
		importance[feature] = m.base.importance[i]
		ranked = append(ranked, models.FeatureImportance{Feature: feature, Importance: m.base.importance[i]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Importance > ranked[j].Importance })

	categories := make([]models.CategoryImportance, 0, 4)
	for _, cat := range features.Categories() {
		var total float64
		for _, feature := range cat.Features {
			total += importance[feature]
		}
		categories = append(categories, models.CategoryImportance{Category: cat.Name, Importance: total})
	}
	sort.SliceStable(categories, func(i, j int) bool { return categories[i].Importance > categories[j].Importance })

	wins, losses := 0, 0
	for _, row := range table {
		if row.Win {
			wins++
		} else {
			losses++
		}
	}

	insights := make(map[string]models.PerformanceInsight)
	var differentiators []models.Differentiator
	if wins > 0 && losses > 0 {
		for _, feature := range features.Predictive {
			avgWin := finiteOrZero(meanWhere(table, feature, true))
			avgLoss := finiteOrZero(meanWhere(table, feature, false))
			diff := avgWin - avgLoss
			pct := 0.0
			if avgLoss != 0 {
				pct = finiteOrZero(diff / avgLoss * 100)
			}
			insights[feature] = models.PerformanceInsight{
				AvgWhenWinning:    avgWin,
				AvgWhenLosing:     avgLoss,
				Difference:        diff,
				PercentDifference: pct,
			}
		}

		for feature, insight := range insights {
			differentiators = append(differentiators, models.Differentiator{Feature: feature, Insight: insight})
		}
		sort.SliceStable(differentiators, func(i, j int) bool {
			return math.Abs(differentiators[i].Insight.PercentDifference) >
				math.Abs(differentiators[j].Insight.PercentDifference)
		})
		if len(differentiators) > 10 {
			differentiators = differentiators[:10]
		}
	}

	accuracy := 0.0
	if m.calibrated != nil {
		accuracy = m.calibrated.accuracy(X, y)
	} else {
		accuracy = m.base.accuracy(X, y)
	}

	return &models.TrainingMetrics{
		FeatureImportance:   ranked,
		CategoryImportance:  categories,
		PerformanceInsights: insights,
		TopDifferentiators:  differentiators,
		Accuracy:            accuracy,
		TotalMatches:        len(table),
		Wins:                wins,
		Losses:              losses,
		ConsistencyScore:    consistencyScore(table),
	}
}

// consistencyScore maps the coefficient of variation of gold per minute to
// a 0-100 scale: zero variance scores 100, CV of 0.5 or worse scores 0.
func consistencyScore(table []features.Row) float64 {
	gpm := make([]float64, 0, len(table))
	for _, row := range table {
		gpm = append(gpm, finiteOrZero(row.Values["goldPerMinute"]))
	}
	if len(gpm) < 2 {
		return 0
	}
	mean := stat.Mean(gpm, nil)
	if mean <= 0 {
		return 0
	}
	cv := stat.StdDev(gpm, nil) / mean
	return finiteOrZero(clamp((1-cv*2)*100, 0, 100))
}

func meanWhere(table []features.Row, feature string, win bool) float64 {
	var sum float64
	var n int
	for _, row := range table {
		if row.Win != win {
			continue
		}
		sum += row.Values[feature]
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// WeightedAverages computes recency-weighted means over the full catalog.
func (m *Model) WeightedAverages(table []features.Row) map[string]float64 {
	if len(table) == 0 {
		return map[string]float64{}
	}
	weights := recencyWeights(len(table))

	out := make(map[string]float64, len(features.Predictive)+len(features.Display))
	column := make([]float64, len(table))
	for _, feature := range features.Combined() {
		for i, row := range table {
			column[i] = finiteOrZero(row.Values[feature])
		}
		out[feature] = finiteOrZero(stat.Mean(column, weights))
	}
	return out
}

// PredictWinProbability scores a stats map and returns a percentage.
// An untrained model always answers 50.
func (m *Model) PredictWinProbability(stats map[string]float64) float64 {
	if !m.trained {
		return 50.0
	}
	x := features.PrepareRow(stats, true)

	var proba float64
	if m.calibrated != nil {
		proba = m.calibrated.predictProba(x)
	} else {
		proba = m.base.predictProba(x)
	}
	return finiteOrZero(proba * 100)
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
