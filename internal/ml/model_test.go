package ml

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/riftlens/analysis-api/internal/features"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func makeRow(creation int64, win bool, vals map[string]float64) features.Row {
	values := make(map[string]float64, len(vals))
	for k, v := range vals {
		values[k] = v
	}
	return features.Row{
		MatchID:      "NA1_test",
		GameCreation: creation,
		GameDuration: 1800,
		Win:          win,
		Values:       values,
	}
}

// makeTable builds n alternating win/loss rows where winners hold a clear
// early gold lead.
func makeTable(n int) []features.Row {
	table := make([]features.Row, 0, n)
	for i := 0; i < n; i++ {
		win := i%2 == 0
		lead := -400.0
		if win {
			lead = 600.0
		}
		table = append(table, makeRow(int64(1000-i), win, map[string]float64{
			"earlyLaningPhaseGoldExpAdvantage": lead,
			"wardsPlaced":                      float64(8 + i),
			"goldPerMinute":                    400 + float64(i*10),
			"kda":                              3,
		}))
	}
	return table
}

func TestTrainInsufficientData(t *testing.T) {
	m := New(testLogger())
	_, err := m.Train(makeTable(4))
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("err = %v, want ErrInsufficientData", err)
	}
	if m.Trained() {
		t.Error("model should not be trained")
	}
}

func TestTrainMinimumRows(t *testing.T) {
	m := New(testLogger())
	metrics, err := m.Train(makeTable(5))
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if !m.Trained() {
		t.Fatal("model not marked trained")
	}
	if metrics.TotalMatches != 5 || metrics.Wins != 3 || metrics.Losses != 2 {
		t.Errorf("totals = %d/%d/%d, want 5/3/2", metrics.TotalMatches, metrics.Wins, metrics.Losses)
	}
	if metrics.Accuracy < 0 || metrics.Accuracy > 1 {
		t.Errorf("accuracy = %v out of range", metrics.Accuracy)
	}

	var importanceSum float64
	for _, fi := range metrics.FeatureImportance {
		if fi.Importance < 0 {
			t.Errorf("negative importance for %s", fi.Feature)
		}
		importanceSum += fi.Importance
	}
	if importanceSum > 0 && math.Abs(importanceSum-1) > 1e-6 {
		t.Errorf("importance sum = %v, want 1", importanceSum)
	}
	if metrics.ConsistencyScore < 0 || metrics.ConsistencyScore > 100 {
		t.Errorf("consistency = %v out of range", metrics.ConsistencyScore)
	}
}

func TestTrainCacheHit(t *testing.T) {
	m := New(testLogger())
	table := makeTable(8)

	first, err := m.Train(table)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	second, err := m.Train(table)
	if err != nil {
		t.Fatalf("retrain: %v", err)
	}
	if first != second {
		t.Error("identical data should return the cached metrics")
	}

	// Flipping one outcome changes the win sum and must force a retrain.
	table[3].Win = !table[3].Win
	third, err := m.Train(table)
	if err != nil {
		t.Fatalf("retrain after flip: %v", err)
	}
	if third == second {
		t.Error("changed data should not hit the cache")
	}
}

func TestPredictUntrainedIsFifty(t *testing.T) {
	m := New(testLogger())
	if got := m.PredictWinProbability(map[string]float64{"wardsPlaced": 10}); got != 50.0 {
		t.Errorf("untrained prediction = %v, want 50.0", got)
	}
}

func TestPredictTrainedIsFinitePercent(t *testing.T) {
	m := New(testLogger())
	if _, err := m.Train(makeTable(12)); err != nil {
		t.Fatalf("Train: %v", err)
	}
	got := m.PredictWinProbability(map[string]float64{
		"earlyLaningPhaseGoldExpAdvantage": 600,
		"wardsPlaced":                      10,
	})
	if math.IsNaN(got) || got < 0 || got > 100 {
		t.Errorf("prediction = %v out of range", got)
	}
}

func TestWeightedAveragesSingleRow(t *testing.T) {
	m := New(testLogger())
	table := []features.Row{makeRow(1, true, map[string]float64{"wardsPlaced": 12})}
	avgs := m.WeightedAverages(table)
	if avgs["wardsPlaced"] != 12 {
		t.Errorf("wardsPlaced = %v, want 12", avgs["wardsPlaced"])
	}
	if avgs["goldPerMinute"] != 0 {
		t.Errorf("missing feature = %v, want 0", avgs["goldPerMinute"])
	}
}

func TestWeightedAveragesRecencySchedule(t *testing.T) {
	m := New(testLogger())
	var table []features.Row
	vals := []float64{10, 20, 30, 40, 50, 60}
	for i, v := range vals {
		table = append(table, makeRow(int64(100-i), true, map[string]float64{"wardsPlaced": v}))
	}

	// Weights 4,2,2,2,2,1 over values 10..60.
	want := (4*10.0 + 2*20 + 2*30 + 2*40 + 2*50 + 1*60) / 13.0
	got := m.WeightedAverages(table)["wardsPlaced"]
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("weighted average = %v, want %v", got, want)
	}
}

func TestWeightedAveragesNonFiniteZeroed(t *testing.T) {
	m := New(testLogger())
	table := []features.Row{makeRow(1, true, map[string]float64{"combatEfficiency": math.Inf(1)})}
	if got := m.WeightedAverages(table)["combatEfficiency"]; got != 0 {
		t.Errorf("non-finite average = %v, want 0", got)
	}
}

func TestBoostedModelSeparableData(t *testing.T) {
	// Single informative column, perfectly separable.
	var X [][]float64
	var y, w []float64
	for i := 0; i < 20; i++ {
		label := 0.0
		value := -1.0 - float64(i%5)
		if i%2 == 0 {
			label = 1
			value = 1.0 + float64(i%5)
		}
		X = append(X, []float64{value, 0})
		y = append(y, label)
		w = append(w, 1)
	}

	model := trainBoosted(X, y, w, gbmParams{trees: 50, maxDepth: 3, learningRate: 0.1})
	if acc := model.accuracy(X, y); acc != 1.0 {
		t.Errorf("accuracy = %v, want 1.0", acc)
	}
	if p := model.predictProba([]float64{3, 0}); p < 0.8 {
		t.Errorf("positive side proba = %v, want > 0.8", p)
	}
	if p := model.predictProba([]float64{-3, 0}); p > 0.2 {
		t.Errorf("negative side proba = %v, want < 0.2", p)
	}
	if model.importance[0] < 0.99 {
		t.Errorf("importance = %v, want nearly all on column 0", model.importance)
	}
}

func TestCalibrationRequiresThreePerClass(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {-1}, {-2}}
	y := []float64{1, 1, 1, 0, 0}
	w := []float64{1, 1, 1, 1, 1}
	if _, err := trainCalibrated(X, y, w, gbmParams{trees: 5, maxDepth: 2, learningRate: 0.1}); err == nil {
		t.Fatal("expected calibration error with two negatives")
	}
}

func TestRecencyWeights(t *testing.T) {
	got := recencyWeights(7)
	want := []float64{4, 2, 2, 2, 2, 1, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("weights = %v, want %v", got, want)
		}
	}
}
