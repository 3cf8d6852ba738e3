package features

import (
	"math"
	"sort"
	"strings"

	"github.com/riftlens/analysis-api/internal/models"
)

// Row is one match flattened to the catalog's numeric features plus the
// bookkeeping the pipeline needs downstream. Values holds every catalog
// feature, derived ratios and composites included; a missing or degenerate
// stat reads as zero, never NaN.
type Row struct {
	MatchID      string
	GameCreation int64 // epoch millis
	GameDuration int64 // seconds
	QueueID      int
	Win          bool
	ChampionName string

	SkillshotSlots      []string
	MySkillshotCasts    float64
	EnemySkillshotCasts float64

	Values map[string]float64
}

// computed features are filled in after the lookup pass rather than read
// from the bags.
var computedFeatures = map[string]bool{
	"kda":               true,
	"skillshotHitRate":  true,
	"skillshotDodgeRate": true,
	"skillshotsHit":     true,
	"skillshotsDodged":  true,
	"spell1Casts":       true,
	"spell2Casts":       true,
	"spell3Casts":       true,
	"spell4Casts":       true,
}

// recordFields maps catalog features onto the typed columns of the stored
// record. Typed columns win over the stat bags so that values normalized at
// ingestion (gold per minute in particular) are the ones the model sees.
var recordFields = map[string]func(models.ParticipantRecord) float64{
	"kills":                       func(r models.ParticipantRecord) float64 { return float64(r.Kills) },
	"deaths":                      func(r models.ParticipantRecord) float64 { return float64(r.Deaths) },
	"assists":                     func(r models.ParticipantRecord) float64 { return float64(r.Assists) },
	"goldPerMinute":               func(r models.ParticipantRecord) float64 { return r.GoldPerMinute },
	"totalMinionsKilled":          func(r models.ParticipantRecord) float64 { return float64(r.TotalMinionsKilled) },
	"visionScore":                 func(r models.ParticipantRecord) float64 { return r.VisionScore },
	"totalDamageDealtToChampions": func(r models.ParticipantRecord) float64 { return float64(r.DamageDealtToChampions) },
}

// BuildRow flattens one stored record into a feature row. Every catalog
// feature resolves through the layered lookup chain: typed record column,
// then the top-level stat bag, then the challenge bag, then zero.
func BuildRow(rec models.ParticipantRecord) Row {
	values := make(map[string]float64, len(Predictive)+len(Display))

	for _, feature := range Combined() {
		if computedFeatures[feature] {
			continue
		}
		values[feature] = lookup(rec, feature)
	}

	values["skillshotsHit"] = rec.Challenges.Get("skillshotsHit")
	values["skillshotsDodged"] = rec.Challenges.Get("skillshotsDodged")
	values["spell1Casts"] = rec.Stats.Get("spell1Casts")
	values["spell2Casts"] = rec.Stats.Get("spell2Casts")
	values["spell3Casts"] = rec.Stats.Get("spell3Casts")
	values["spell4Casts"] = rec.Stats.Get("spell4Casts")

	myCasts := SkillshotCasts(rec.Stats, rec.ChampionName)
	if myCasts > 0 {
		values["skillshotHitRate"] = math.Min(values["skillshotsHit"]/myCasts*100, 100)
	} else {
		values["skillshotHitRate"] = 0
	}

	// Dodge-rate denominator: total skillshot casts across the enemy team,
	// falling back to all enemy ability casts when none of them is in the
	// skillshot table.
	enemyCasts, enemyCastsAll := enemySkillshotCasts(rec)
	denominator := enemyCasts
	if denominator == 0 {
		denominator = enemyCastsAll
	}
	if denominator > 0 {
		values["skillshotDodgeRate"] = values["skillshotsDodged"] / denominator * 100
	} else {
		values["skillshotDodgeRate"] = 0
	}

	k, d, a := float64(rec.Kills), float64(rec.Deaths), float64(rec.Assists)
	if d > 0 {
		values["kda"] = (k + a) / d
	} else {
		values["kda"] = k + a
	}

	if values["goldPerMinute"] == 0 {
		minutes := float64(rec.GameDuration) / 60
		if minutes <= 0 {
			minutes = 1
		}
		values["goldPerMinute"] = rec.Stats.Get("goldEarned") / minutes
	}

	addComposites(rec, values)

	for key, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			values[key] = 0
		}
	}

	return Row{
		MatchID:      rec.MatchID,
		GameCreation: rec.GameCreation,
		GameDuration: rec.GameDuration,
		QueueID:      rec.QueueID,
		Win:          rec.Win,
		ChampionName: rec.ChampionName,

		SkillshotSlots:      SkillshotLetters(rec.ChampionName),
		MySkillshotCasts:    myCasts,
		EnemySkillshotCasts: denominator,

		Values: values,
	}
}

// BuildTable flattens the records into rows ordered newest first.
func BuildTable(recs []models.ParticipantRecord) []Row {
	rows := make([]Row, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, BuildRow(rec))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].GameCreation > rows[j].GameCreation
	})
	return rows
}

func lookup(rec models.ParticipantRecord, feature string) float64 {
	if get, ok := recordFields[feature]; ok {
		if v := get(rec); v != 0 {
			return v
		}
	}
	if rec.Stats.Has(feature) {
		return rec.Stats.Get(feature)
	}
	return rec.Challenges.Get(feature)
}

func enemySkillshotCasts(rec models.ParticipantRecord) (refined, all float64) {
	if rec.Raw == nil {
		return 0, 0
	}
	for i := range rec.Raw.Info.Participants {
		p := &rec.Raw.Info.Participants[i]
		if p.TeamID == rec.TeamID {
			continue
		}
		refined += SkillshotCasts(p.Stats, p.ChampionName)
		all += totalAbilityCasts(p.Stats)
	}
	return refined, all
}

func addComposites(rec models.ParticipantRecord, values map[string]float64) {
	// Aggression: damage output and solo kills mixed 70/30, each scored
	// against a fixed benchmark, capped at 100.
	dpmScore := math.Min(values["damagePerMinute"]/1000, 1.2) * 100
	soloScore := math.Min(values["soloKills"]/5, 1.5) * 100
	values["aggressionScore"] = math.Min(dpmScore*0.7+soloScore*0.3, 100)

	values["visionDominance"] = values["visionScore"]*1.5 +
		values["controlWardsPlaced"]*5 +
		values["wardsKilled"]*2

	values["jungleInvasionPressure"] = rec.Challenges.Get("enemyJungleMonsterKills")*2 +
		rec.Challenges.Get("epicMonsterSteals")*50

	// Combat efficiency: damage per gold against a 2.0 benchmark.
	goldEarned := rec.Stats.Get("goldEarned")
	if goldEarned > 0 {
		efficiency := values["totalDamageDealtToChampions"] / goldEarned / 2 * 100
		values["combatEfficiency"] = math.Min(100, math.Max(0, efficiency))
	} else {
		values["combatEfficiency"] = 0
	}
}

// SlotConfig renders the skillshot slots for UI display, e.g. "[Q, E]".
func SlotConfig(slots []string) string {
	return "[" + strings.Join(slots, ", ") + "]"
}
