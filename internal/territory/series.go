package territory

import (
	"iter"
	"strconv"

	"github.com/riftlens/analysis-api/internal/models"
)

// Series yields one per-minute point comparing the participant's economy to
// the match average and, when an enemy laner id is given (non-zero), to
// them directly. The sequence is lazy and restartable; frames without the
// participant are skipped.
func Series(timeline *models.Timeline, participantID, enemyParticipantID int) iter.Seq[models.TimelinePoint] {
	return func(yield func(models.TimelinePoint) bool) {
		if timeline == nil {
			return
		}
		key := strconv.Itoa(participantID)
		enemyKey := ""
		if enemyParticipantID != 0 {
			enemyKey = strconv.Itoa(enemyParticipantID)
		}

		for _, frame := range timeline.Info.Frames {
			if len(frame.ParticipantFrames) == 0 {
				continue
			}
			mine, ok := frame.ParticipantFrames[key]
			if !ok {
				continue
			}

			var totalGold, totalXP float64
			count := 0
			for p := 1; p <= 10; p++ {
				pf, ok := frame.ParticipantFrames[strconv.Itoa(p)]
				if !ok {
					continue
				}
				totalGold += pf.TotalGold
				totalXP += pf.XP
				count++
			}
			if count == 0 {
				count = 1
			}
			avgGold := totalGold / float64(count)
			avgXP := totalXP / float64(count)

			point := models.TimelinePoint{
				Minute:    int(float64(frame.Timestamp)/60000 + 0.5),
				GoldDelta: mine.TotalGold - avgGold,
				XPDelta:   mine.XP - avgXP,
				MyGold:    mine.TotalGold,
				AvgGold:   avgGold,
				MyXP:      mine.XP,
				AvgXP:     avgXP,
			}

			if enemyKey != "" {
				if enemy, ok := frame.ParticipantFrames[enemyKey]; ok {
					point.HasEnemy = true
					point.EnemyGold = enemy.TotalGold
					point.EnemyXP = enemy.XP
					point.LaneGoldDelta = mine.TotalGold - enemy.TotalGold
					point.LaneXPDelta = mine.XP - enemy.XP
				}
			}

			if !yield(point) {
				return
			}
		}
	}
}

// CollectSeries materializes the series for the JSON payload.
func CollectSeries(timeline *models.Timeline, participantID, enemyParticipantID int) []models.TimelinePoint {
	var points []models.TimelinePoint
	for point := range Series(timeline, participantID, enemyParticipantID) {
		points = append(points, point)
	}
	return points
}
