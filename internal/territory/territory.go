// Package territory derives spatial-control metrics from match timelines,
// the map-control analogue of possession stats in football: how much time a
// player spends past the halfway diagonal, in the river, and inside the
// enemy jungle.
package territory

import (
	"strconv"

	"github.com/riftlens/analysis-api/internal/models"
)

// Summoner's Rift is roughly 14500x14500 units with bases on the bottom-left
// (blue) and top-right (red) corners, so the halfway line is the x+y
// diagonal through the center.
const (
	mapCenterX = 7250
	mapCenterY = 7250

	// Crossing the diagonal needs a margin before it counts as enemy
	// territory.
	territoryMargin = 1000

	enemyJungleXBlue = 9500
	enemyJungleXRed  = 5000

	// River band: within 2500 units of the y=x diagonal, inside the box
	// that excludes both base corners.
	riverHalfWidth = 2500
	riverBoxMin    = 2500
	riverBoxMax    = 12000
)

// Compute walks the timeline frames for one participant and returns their
// territorial metrics. Frames at (0,0) carry no position data and are
// skipped; a timeline with no usable frame yields all zeros.
func Compute(timeline *models.Timeline, participantID, teamID int) models.TerritoryMetrics {
	if timeline == nil || len(timeline.Info.Frames) == 0 {
		return models.TerritoryMetrics{}
	}

	blueSide := teamID == 100
	key := strconv.Itoa(participantID)

	var totalFrames, enemyFrames, riverFrames, jungleFrames int
	var forwardSum float64

	for _, frame := range timeline.Info.Frames {
		pf, ok := frame.ParticipantFrames[key]
		if !ok {
			continue
		}
		x, y := pf.Position.X, pf.Position.Y
		if x == 0 && y == 0 {
			continue
		}
		totalFrames++

		var inEnemyTerritory, inEnemyJungle bool
		var forward float64
		if blueSide {
			inEnemyTerritory = x+y > mapCenterX+mapCenterY+territoryMargin
			inEnemyJungle = x > enemyJungleXBlue && y > mapCenterY
			forward = (x + y - (mapCenterX + mapCenterY)) / 100
		} else {
			inEnemyTerritory = x+y < mapCenterX+mapCenterY-territoryMargin
			inEnemyJungle = x < enemyJungleXRed && y < mapCenterY
			forward = ((mapCenterX + mapCenterY) - (x + y)) / 100
		}
		if forward < 0 {
			forward = 0
		}
		forwardSum += forward

		dist := x - y
		if dist < 0 {
			dist = -dist
		}
		inRiver := dist/1.414 < riverHalfWidth &&
			x > riverBoxMin && x < riverBoxMax &&
			y > riverBoxMin && y < riverBoxMax

		if inEnemyTerritory {
			enemyFrames++
		}
		if inRiver {
			riverFrames++
		}
		if inEnemyJungle {
			jungleFrames++
		}
	}

	if totalFrames == 0 {
		return models.TerritoryMetrics{}
	}

	n := float64(totalFrames)
	// The corner-to-corner diagonal is about 145 units on the /100 scale,
	// so dividing the mean by 1.45 lands forward positioning on 0-100.
	forwardScore := forwardSum / n / 1.45
	if forwardScore > 100 {
		forwardScore = 100
	}

	return models.TerritoryMetrics{
		TimeInEnemyTerritoryPct: float64(enemyFrames) / n * 100,
		ForwardPositioningScore: forwardScore,
		JungleInvasionPct:       float64(jungleFrames) / n * 100,
		RiverControlPct:         float64(riverFrames) / n * 100,
	}
}

// Aggregate means the per-match metrics, dropping matches that produced no
// positional signal at all so one missing timeline cannot drag every
// average toward zero.
func Aggregate(metrics []models.TerritoryMetrics) models.TerritoryMetrics {
	var valid []models.TerritoryMetrics
	for _, m := range metrics {
		if !m.IsZero() {
			valid = append(valid, m)
		}
	}
	if len(valid) == 0 {
		return models.TerritoryMetrics{}
	}

	var agg models.TerritoryMetrics
	for _, m := range valid {
		agg.TimeInEnemyTerritoryPct += m.TimeInEnemyTerritoryPct
		agg.ForwardPositioningScore += m.ForwardPositioningScore
		agg.JungleInvasionPct += m.JungleInvasionPct
		agg.RiverControlPct += m.RiverControlPct
	}
	n := float64(len(valid))
	agg.TimeInEnemyTerritoryPct /= n
	agg.ForwardPositioningScore /= n
	agg.JungleInvasionPct /= n
	agg.RiverControlPct /= n
	return agg
}
