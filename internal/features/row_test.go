package features

import (
	"math"
	"reflect"
	"testing"

	"github.com/riftlens/analysis-api/internal/models"
)

func testRecord(champion string, stats, challenges models.StatBag) models.ParticipantRecord {
	raw := &models.RawMatch{
		Metadata: models.MatchMetadata{MatchID: "NA1_100"},
		Info: models.MatchInfo{
			GameCreation: 1700000000000,
			GameDuration: 1800,
			QueueID:      420,
			Participants: []models.RawParticipant{
				{
					ParticipantID: 1, PUUID: "me", TeamID: 100,
					ChampionName: champion, Win: true,
					Stats: stats, Challenges: challenges,
				},
				{
					ParticipantID: 6, PUUID: "enemy", TeamID: 200,
					ChampionName: "Ezreal",
					Stats: models.StatBag{
						"spell1Casts": 5, "spell2Casts": 5,
						"spell3Casts": 5, "spell4Casts": 5,
					},
				},
			},
		},
	}
	return models.NewParticipantRecord(raw, &raw.Info.Participants[0])
}

func TestBuildRowPredictiveComplete(t *testing.T) {
	rec := testRecord("Lux", models.StatBag{
		"kills": 8, "deaths": 2, "assists": 6,
		"wardsPlaced": 12, "goldEarned": 12000,
		"spell1Casts": 10, "spell3Casts": 10, "spell4Casts": 5,
	}, models.StatBag{
		"skillshotsHit":              10,
		"laneMinionsFirst10Minutes":  74,
		"maxCsAdvantageOnLaneOpponent": 18,
	})

	row := BuildRow(rec)

	for _, feature := range Predictive {
		v, ok := row.Values[feature]
		if !ok {
			t.Fatalf("missing predictive feature %q", feature)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("feature %q is not finite: %v", feature, v)
		}
	}

	if got := row.Values["wardsPlaced"]; got != 12 {
		t.Errorf("wardsPlaced = %v, want 12", got)
	}
	if got := row.Values["maxCsAdvantageOnLaneOpponent"]; got != 18 {
		t.Errorf("maxCsAdvantageOnLaneOpponent = %v, want 18", got)
	}
	if got := row.Values["kda"]; got != 7 {
		t.Errorf("kda = %v, want 7", got)
	}
}

func TestBuildRowSkillshotHitRate(t *testing.T) {
	tests := []struct {
		name       string
		champion   string
		stats      models.StatBag
		challenges models.StatBag
		wantRate   float64
		wantCasts  float64
	}{
		{
			name:     "lux counts q e r only",
			champion: "Lux",
			stats: models.StatBag{
				"spell1Casts": 10, "spell2Casts": 40,
				"spell3Casts": 10, "spell4Casts": 5,
			},
			challenges: models.StatBag{"skillshotsHit": 10},
			wantRate:   40,
			wantCasts:  25,
		},
		{
			name:     "unknown champion counts all slots",
			champion: "Garen",
			stats: models.StatBag{
				"spell1Casts": 10, "spell2Casts": 10,
				"spell3Casts": 10, "spell4Casts": 10,
			},
			challenges: models.StatBag{"skillshotsHit": 10},
			wantRate:   25,
			wantCasts:  40,
		},
		{
			name:       "multi hit data capped at 100",
			champion:   "Lux",
			stats:      models.StatBag{"spell1Casts": 10},
			challenges: models.StatBag{"skillshotsHit": 50},
			wantRate:   100,
			wantCasts:  10,
		},
		{
			name:       "zero casts",
			champion:   "Lux",
			stats:      models.StatBag{},
			challenges: models.StatBag{"skillshotsHit": 3},
			wantRate:   0,
			wantCasts:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := BuildRow(testRecord(tt.champion, tt.stats, tt.challenges))
			if got := row.Values["skillshotHitRate"]; got != tt.wantRate {
				t.Errorf("skillshotHitRate = %v, want %v", got, tt.wantRate)
			}
			if row.MySkillshotCasts != tt.wantCasts {
				t.Errorf("MySkillshotCasts = %v, want %v", row.MySkillshotCasts, tt.wantCasts)
			}
		})
	}
}

func TestBuildRowDodgeRate(t *testing.T) {
	// Enemy Ezreal casts 5 of each of his four skillshot slots.
	rec := testRecord("Lux", models.StatBag{}, models.StatBag{"skillshotsDodged": 5})
	row := BuildRow(rec)

	if row.EnemySkillshotCasts != 20 {
		t.Fatalf("EnemySkillshotCasts = %v, want 20", row.EnemySkillshotCasts)
	}
	if got := row.Values["skillshotDodgeRate"]; got != 25 {
		t.Errorf("skillshotDodgeRate = %v, want 25", got)
	}
}

func TestBuildRowDodgeRateNoEnemyCasts(t *testing.T) {
	raw := &models.RawMatch{
		Info: models.MatchInfo{
			GameDuration: 1200,
			Participants: []models.RawParticipant{
				{PUUID: "me", TeamID: 100, ChampionName: "Lux",
					Challenges: models.StatBag{"skillshotsDodged": 4}},
				{PUUID: "enemy", TeamID: 200, ChampionName: "MasterYi"},
			},
		},
	}
	row := BuildRow(models.NewParticipantRecord(raw, &raw.Info.Participants[0]))
	if got := row.Values["skillshotDodgeRate"]; got != 0 {
		t.Errorf("skillshotDodgeRate = %v, want 0", got)
	}
}

func TestBuildRowGoldPerMinuteFallback(t *testing.T) {
	rec := testRecord("Lux", models.StatBag{"goldEarned": 9000}, models.StatBag{})
	row := BuildRow(rec)
	// 9000 gold over a 30 minute game.
	if got := row.Values["goldPerMinute"]; got != 300 {
		t.Errorf("goldPerMinute = %v, want 300", got)
	}
}

func TestBuildRowComposites(t *testing.T) {
	rec := testRecord("Lux", models.StatBag{
		"visionScore": 40, "wardsKilled": 6, "goldEarned": 10000,
		"totalDamageDealtToChampions": 30000,
	}, models.StatBag{
		"damagePerMinute": 800, "soloKills": 2,
		"controlWardsPlaced":      4,
		"enemyJungleMonsterKills": 6,
		"epicMonsterSteals":       1,
	})
	row := BuildRow(rec)

	wantAggression := math.Min(800.0/1000, 1.2)*100*0.7 + math.Min(2.0/5, 1.5)*100*0.3
	if got := row.Values["aggressionScore"]; math.Abs(got-wantAggression) > 1e-9 {
		t.Errorf("aggressionScore = %v, want %v", got, wantAggression)
	}
	if got := row.Values["visionDominance"]; got != 40*1.5+4*5+6*2 {
		t.Errorf("visionDominance = %v", got)
	}
	if got := row.Values["jungleInvasionPressure"]; got != 6*2+1*50 {
		t.Errorf("jungleInvasionPressure = %v", got)
	}
	// 30000 dmg / 10000 gold = 3.0 per gold, capped at the 2.0 benchmark.
	if got := row.Values["combatEfficiency"]; got != 100 {
		t.Errorf("combatEfficiency = %v, want 100", got)
	}
}

func TestBuildTableOrdersNewestFirst(t *testing.T) {
	old := testRecord("Lux", models.StatBag{}, models.StatBag{})
	old.GameCreation = 1
	old.MatchID = "NA1_1"
	recent := testRecord("Lux", models.StatBag{}, models.StatBag{})
	recent.GameCreation = 2
	recent.MatchID = "NA1_2"

	table := BuildTable([]models.ParticipantRecord{old, recent})
	got := []string{table[0].MatchID, table[1].MatchID}
	if !reflect.DeepEqual(got, []string{"NA1_2", "NA1_1"}) {
		t.Errorf("table order = %v", got)
	}
}

func TestPrepareEmptyTable(t *testing.T) {
	m := Prepare(nil, true)
	if !reflect.DeepEqual(m.Columns, Predictive) {
		t.Errorf("columns = %v", m.Columns)
	}
	if len(m.Rows) != 0 {
		t.Errorf("rows = %d, want 0", len(m.Rows))
	}
}

func TestPrepareRowColumnOrder(t *testing.T) {
	stats := map[string]float64{
		"wardsPlaced":      7,
		"turretPlatesTaken": 3,
		"combatEfficiency": math.NaN(),
	}
	vec := PrepareRow(stats, false)
	cols := Combined()
	if len(vec) != len(cols) {
		t.Fatalf("len = %d, want %d", len(vec), len(cols))
	}
	for i, col := range cols {
		switch col {
		case "wardsPlaced":
			if vec[i] != 7 {
				t.Errorf("wardsPlaced = %v", vec[i])
			}
		case "turretPlatesTaken":
			if vec[i] != 3 {
				t.Errorf("turretPlatesTaken = %v", vec[i])
			}
		case "combatEfficiency":
			if vec[i] != 0 {
				t.Errorf("NaN not zeroed: %v", vec[i])
			}
		}
	}
}

func TestSkillshotLetters(t *testing.T) {
	if got := SkillshotLetters("Lux"); !reflect.DeepEqual(got, []string{"Q", "E", "R"}) {
		t.Errorf("Lux letters = %v", got)
	}
	if got := SkillshotLetters("Garen"); !reflect.DeepEqual(got, []string{"Q", "W", "E", "R"}) {
		t.Errorf("fallback letters = %v", got)
	}
	if got := SlotConfig([]string{"Q", "E"}); got != "[Q, E]" {
		t.Errorf("SlotConfig = %q", got)
	}
}
