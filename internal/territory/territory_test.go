package territory

import (
	"math"
	"testing"

	"github.com/riftlens/analysis-api/internal/models"
)

func frameAt(participantID int, x, y float64) models.TimelineFrame {
	return models.TimelineFrame{
		ParticipantFrames: map[string]models.ParticipantFrame{
			"1": {Position: models.Position{X: x, Y: y}},
		},
	}
}

func timelineOf(frames ...models.TimelineFrame) *models.Timeline {
	return &models.Timeline{Info: models.TimelineInfo{Frames: frames}}
}

func TestComputeNilTimeline(t *testing.T) {
	if got := Compute(nil, 1, 100); !got.IsZero() {
		t.Errorf("Compute(nil) = %+v, want zeros", got)
	}
}

func TestComputeSkipsZeroPositions(t *testing.T) {
	tl := timelineOf(
		frameAt(1, 0, 0),
		frameAt(1, 0, 0),
	)
	if got := Compute(tl, 1, 100); !got.IsZero() {
		t.Errorf("all (0,0) frames = %+v, want zeros", got)
	}
}

func TestComputeBlueSide(t *testing.T) {
	tl := timelineOf(
		// Deep in the red jungle: enemy territory, enemy jungle, not river.
		frameAt(1, 11000, 11000),
		// Own base corner: nothing.
		frameAt(1, 1000, 1000),
		// Mid lane center: river band, not enemy territory.
		frameAt(1, 7250, 7250),
		// Invalid frame, skipped.
		frameAt(1, 0, 0),
	)

	got := Compute(tl, 1, 100)

	if math.Abs(got.TimeInEnemyTerritoryPct-100.0/3) > 1e-9 {
		t.Errorf("enemy territory = %v, want 33.3", got.TimeInEnemyTerritoryPct)
	}
	if math.Abs(got.JungleInvasionPct-100.0/3) > 1e-9 {
		t.Errorf("jungle invasion = %v, want 33.3", got.JungleInvasionPct)
	}
	// Frames 1 and 3 sit on the diagonal inside the river box; the base
	// corner fails the box check.
	if math.Abs(got.RiverControlPct-200.0/3) > 1e-9 {
		t.Errorf("river control = %v, want 66.7", got.RiverControlPct)
	}

	// Forward distances: (22000-14500)/100=75, 0, 0; mean 25, scaled /1.45.
	want := 25.0 / 1.45
	if math.Abs(got.ForwardPositioningScore-want) > 1e-9 {
		t.Errorf("forward = %v, want %v", got.ForwardPositioningScore, want)
	}
}

func TestComputeRedSideMirrors(t *testing.T) {
	// The same deep position reads as home turf for red and enemy turf for
	// blue.
	tl := timelineOf(frameAt(1, 11000, 11000))
	red := Compute(tl, 1, 200)
	if red.TimeInEnemyTerritoryPct != 0 || red.JungleInvasionPct != 0 {
		t.Errorf("red side at home = %+v, want no enemy presence", red)
	}

	tl = timelineOf(frameAt(1, 3000, 3000))
	red = Compute(tl, 1, 200)
	if red.TimeInEnemyTerritoryPct != 100 {
		t.Errorf("red side in blue base = %+v, want 100%% enemy territory", red)
	}
	if red.JungleInvasionPct != 100 {
		t.Errorf("red side jungle invasion = %v, want 100", red.JungleInvasionPct)
	}
}

func TestComputeForwardScoreCapped(t *testing.T) {
	// Physically impossible far corner, forces the cap.
	tl := timelineOf(frameAt(1, 14500, 14500))
	got := Compute(tl, 1, 100)
	if got.ForwardPositioningScore != 100 {
		t.Errorf("forward = %v, want capped at 100", got.ForwardPositioningScore)
	}
}

func TestAggregateDropsNoSignalMatches(t *testing.T) {
	metrics := []models.TerritoryMetrics{
		{TimeInEnemyTerritoryPct: 40, RiverControlPct: 20, ForwardPositioningScore: 50, JungleInvasionPct: 10},
		{}, // failed timeline fetch
		{TimeInEnemyTerritoryPct: 20, RiverControlPct: 10, ForwardPositioningScore: 30, JungleInvasionPct: 0},
	}
	got := Aggregate(metrics)
	if got.TimeInEnemyTerritoryPct != 30 || got.RiverControlPct != 15 {
		t.Errorf("aggregate = %+v", got)
	}
	if got.ForwardPositioningScore != 40 || got.JungleInvasionPct != 5 {
		t.Errorf("aggregate = %+v", got)
	}
}

func TestAggregateAllEmpty(t *testing.T) {
	if got := Aggregate([]models.TerritoryMetrics{{}, {}}); !got.IsZero() {
		t.Errorf("aggregate of empties = %+v, want zeros", got)
	}
}

func TestSeriesDeltas(t *testing.T) {
	tl := &models.Timeline{Info: models.TimelineInfo{Frames: []models.TimelineFrame{
		{
			Timestamp: 60000,
			ParticipantFrames: map[string]models.ParticipantFrame{
				"1": {TotalGold: 500, XP: 300},
				"6": {TotalGold: 400, XP: 250},
			},
		},
		{
			Timestamp: 120000,
			ParticipantFrames: map[string]models.ParticipantFrame{
				"1": {TotalGold: 900, XP: 700},
				"6": {TotalGold: 1000, XP: 800},
			},
		},
	}}}

	points := CollectSeries(tl, 1, 6)
	if len(points) != 2 {
		t.Fatalf("points = %d, want 2", len(points))
	}

	first := points[0]
	if first.Minute != 1 {
		t.Errorf("minute = %d, want 1", first.Minute)
	}
	if first.AvgGold != 450 || first.GoldDelta != 50 {
		t.Errorf("avg/delta gold = %v/%v, want 450/50", first.AvgGold, first.GoldDelta)
	}
	if !first.HasEnemy || first.LaneGoldDelta != 100 || first.LaneXPDelta != 50 {
		t.Errorf("enemy comparison = %+v", first)
	}

	second := points[1]
	if second.LaneGoldDelta != -100 {
		t.Errorf("lane gold delta = %v, want -100", second.LaneGoldDelta)
	}
}

func TestSeriesWithoutEnemy(t *testing.T) {
	tl := &models.Timeline{Info: models.TimelineInfo{Frames: []models.TimelineFrame{
		{
			Timestamp: 60000,
			ParticipantFrames: map[string]models.ParticipantFrame{
				"1": {TotalGold: 500, XP: 300},
			},
		},
	}}}

	points := CollectSeries(tl, 1, 0)
	if len(points) != 1 || points[0].HasEnemy {
		t.Errorf("points = %+v, want one without enemy data", points)
	}
}

func TestSeriesRestartable(t *testing.T) {
	tl := timelineOf(frameAt(1, 7250, 7250))
	seq := Series(tl, 1, 0)

	count := 0
	for range seq {
		count++
	}
	for range seq {
		count++
	}
	if count != 2 {
		t.Errorf("two passes yielded %d points, want 2", count)
	}
}
