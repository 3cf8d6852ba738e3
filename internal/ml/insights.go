package ml

import (
	"sort"
	"strings"
	"unicode"

	"github.com/riftlens/analysis-api/internal/features"
	"github.com/riftlens/analysis-api/internal/models"
)

// driverNames maps features to UI labels for win drivers.
var driverNames = map[string]string{
	"visionScore":                      "Vision Control",
	"goldPerMinute":                    "Economy",
	"damageDealtToChampions":           "Combat Output",
	"killParticipation":                "Teamfighting",
	"towerDamageDealt":                 "Objective Pressure",
	"totalMinionsKilled":               "Farming",
	"xpPerMinute":                      "Experience Gain",
	"earlyLaningPhaseGoldExpAdvantage": "Early Gold Lead",
	"laningPhaseGoldExpAdvantage":      "Mid-Game Gold Lead",
	"maxCsAdvantageOnLaneOpponent":     "CS Dominance",
	"maxLevelLeadLaneOpponent":         "Level Advantage",
	"visionScoreAdvantageLaneOpponent": "Vision Gap",
	"laneMinionsFirst10Minutes":        "Early Farming",
	"turretPlatesTaken":                "Tower Aggression",
	"skillshotHitRate":                 "Skill Accuracy",
	"skillshotDodgeRate":               "Dodge Skill",
	"wardsPlaced":                      "Warding Habit",
	"controlWardsPlaced":               "Control Ward Usage",
	"controlWardTimeCoverageInRiverOrEnemyHalf": "Deep Vision",
	"enemyMissingPings":                "Map Awareness",
	"soloKills":                        "Solo Kill Pressure",
	"aggressionScore":                  "Aggression",
	"visionDominance":                  "Vision Dominance",
	"jungleInvasionPressure":           "Invasion Pressure",
}

// focusAdvice maps features to a title and improvement suggestion.
var focusAdvice = map[string]struct{ title, desc string }{
	"visionScore":                      {"Vision Control", "Place more wards and clear enemy vision."},
	"visionScoreAdvantageLaneOpponent": {"Vision Gap", "Your opponent is out-visioning you."},
	"wardsPlaced":                      {"Wards Placed", "Use your trinket more often."},
	"controlWardsPlaced":               {"Control Wards", "Buy and place pink wards to deny vision."},
	"controlWardTimeCoverageInRiverOrEnemyHalf": {"Deep Vision", "Place control wards further up for better info."},

	"goldPerMinute":                    {"Farming & Economy", "Improve CSing and look for more resource efficient rotations."},
	"totalMinionsKilled":               {"CS Numbers", "Focus on last hitting minions."},
	"laneMinionsFirst10Minutes":        {"Early Farm (10m)", "Practice last hitting in the early laning phase."},
	"earlyLaningPhaseGoldExpAdvantage": {"Early Gold Lead", "Work on winning the first 8 minutes of lane."},
	"laningPhaseGoldExpAdvantage":      {"Lane Gold Lead", "Focus on building a lead by 14 minutes."},
	"maxCsAdvantageOnLaneOpponent":     {"CS Gap", "Deny enemy CS while securing your own."},
	"turretPlatesTaken":                {"Turret Plates", "Push for plates when opponents recall or roam."},

	"killParticipation":        {"Map Presence", "Roam more often to assist your team."},
	"damageDealtToChampions":   {"Damage Output", "Look for more safe trading opportunities."},
	"kda":                      {"Survival", "Play safer and avoid unnecessary deaths."},
	"skillshotHitRate":         {"Skill Accuracy", "Practice hitting your skillshots consistently."},
	"skillshotDodgeRate":       {"Dodge Skill", "Focus on sidestepping enemy abilities."},
	"maxLevelLeadLaneOpponent": {"Level Lead", "Soak XP and deny enemy recall timings."},

	"enemyMissingPings": {"Missing Pings", "Ping missing when your laner roams."},
	"onMyWayPings":      {"Roam Communication", "Ping on my way when moving to help."},
	"assistMePings":     {"Help Requests", "Ask for help before getting dove."},
	"getBackPings":      {"Danger Pings", "Warn teammates of incoming danger."},
}

// rawStatMap remaps lead features to their absolute counterparts when both
// sides have the raw stat, so the UI compares "240 CS vs 210 CS" instead of
// two opaque advantage deltas.
var rawStatMap = map[string]string{
	"visionScoreAdvantageLaneOpponent": "visionScore",
	"maxCsAdvantageOnLaneOpponent":     "totalMinionsKilled",
	"earlyLaningPhaseGoldExpAdvantage": "goldPerMinute",
	"laningPhaseGoldExpAdvantage":      "goldPerMinute",
	"maxLevelLeadLaneOpponent":         "xpPerMinute",
}

// priorityWeights bias the ranking toward combat and economy over vision
// and ping habits.
var priorityWeights = map[string]float64{
	"damageDealtToChampions":           1.5,
	"goldPerMinute":                    1.5,
	"soloKills":                        1.5,
	"aggressionScore":                  1.5,
	"totalMinionsKilled":               1.4,
	"turretPlatesTaken":                1.4,
	"earlyLaningPhaseGoldExpAdvantage": 1.4,
	"laningPhaseGoldExpAdvantage":      1.4,
	"maxCsAdvantageOnLaneOpponent":     1.4,
	"killParticipation":                1.3,

	"visionScore":        0.6,
	"wardsPlaced":        0.5,
	"controlWardsPlaced": 0.5,
	"enemyMissingPings":  0.4,
	"onMyWayPings":       0.4,
	"assistMePings":      0.4,
	"getBackPings":       0.4,
}

func priorityWeight(feature string) float64 {
	if w, ok := priorityWeights[feature]; ok {
		return w
	}
	return 1.0
}

// comparison is a feature's value measured against its baseline.
type comparison struct {
	feature         string
	value           float64
	baseline        float64
	displayValue    float64
	displayBaseline float64
	diffPct         float64
	source          string
}

// compare resolves the baseline for one feature. Enemy stats are strict:
// when present, a feature they do not carry is skipped entirely rather than
// compared against the win-average fallback.
func compare(feature string, stats, enemy map[string]float64, insights map[string]models.PerformanceInsight) (comparison, bool) {
	val, ok := stats[feature]
	if !ok {
		return comparison{}, false
	}

	c := comparison{feature: feature, value: val, source: "avg"}
	if enemy != nil {
		baseline, ok := enemy[feature]
		if !ok {
			return comparison{}, false
		}
		c.baseline = baseline
		c.source = "enemy"
	} else if insight, ok := insights[feature]; ok {
		c.baseline = insight.AvgWhenWinning
	} else {
		return comparison{}, false
	}

	c.displayValue = c.value
	c.displayBaseline = c.baseline

	if rawKey, ok := rawStatMap[feature]; ok {
		rawVal, haveMine := stats[rawKey]
		rawBase, haveTheirs := enemy[rawKey]
		if haveMine && enemy != nil && haveTheirs {
			c.displayValue = rawVal
			c.displayBaseline = rawBase
			c.value = rawVal
			c.baseline = rawBase
		}
	}
	return c, true
}

// WinDrivers ranks the areas where the stats beat the baseline. The enemy
// laner's averages take precedence over the player's own winning averages.
// Only gaps above 5% qualify; the top three by priority-weighted gap win.
func (m *Model) WinDrivers(stats, enemy map[string]float64) []models.WinDriver {
	if !m.trained || m.metrics == nil {
		return nil
	}

	var drivers []models.WinDriver
	for _, feature := range features.Predictive {
		c, ok := compare(feature, stats, enemy, m.metrics.PerformanceInsights)
		if !ok {
			continue
		}

		c.diffPct = relativeDiff(c.value, c.baseline)
		if c.diffPct <= 0.05 {
			continue
		}

		impact := "Low"
		if c.diffPct > 0.15 {
			impact = "Medium"
		}
		if c.diffPct > 0.4 {
			impact = "High"
		}

		name, ok := driverNames[feature]
		if !ok {
			name = humanize(feature)
		}
		drivers = append(drivers, models.WinDriver{
			Name:     name,
			Impact:   impact,
			Value:    c.displayValue,
			Baseline: c.displayBaseline,
			DiffPct:  c.diffPct,
			Feature:  feature,
			Source:   c.source,
		})
	}

	sort.SliceStable(drivers, func(i, j int) bool {
		return drivers[i].DiffPct*priorityWeight(drivers[i].Feature) >
			drivers[j].DiffPct*priorityWeight(drivers[j].Feature)
	})
	if len(drivers) > 3 {
		drivers = drivers[:3]
	}
	return drivers
}

// SkillFocus ranks the areas significantly below the baseline. The enemy
// baseline uses a tighter threshold (10% behind) than the win-average
// fallback (15%) since losing to your direct opponent matters more.
func (m *Model) SkillFocus(stats, enemy map[string]float64) []models.SkillFocusItem {
	if !m.trained || m.metrics == nil {
		return nil
	}

	var items []models.SkillFocusItem
	for _, feature := range features.Predictive {
		c, ok := compare(feature, stats, enemy, m.metrics.PerformanceInsights)
		if !ok {
			continue
		}

		denom := c.baseline
		if denom < 0 {
			denom = -denom
		}
		if denom == 0 {
			denom = 1.0
		}
		diff := (c.value - c.baseline) / denom

		threshold := -0.15
		if c.source == "enemy" {
			threshold = -0.1
		}
		if diff >= threshold {
			continue
		}

		title, desc := humanize(feature), "Improve your "+humanize(feature)+"."
		if advice, ok := focusAdvice[feature]; ok {
			title, desc = advice.title, advice.desc
		}
		items = append(items, models.SkillFocusItem{
			Title:       title,
			Description: desc,
			Current:     c.displayValue,
			Target:      c.displayBaseline,
			Diff:        diff,
			Feature:     feature,
			Source:      c.source,
		})
	}

	// Most negative weighted gap first.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Diff*priorityWeight(items[i].Feature) <
			items[j].Diff*priorityWeight(items[j].Feature)
	})
	if len(items) > 3 {
		items = items[:3]
	}
	return items
}

// relativeDiff is (val-baseline)/|baseline|, with the zero baseline mapped
// to the sign of the value.
func relativeDiff(val, baseline float64) float64 {
	if baseline == 0 {
		switch {
		case val > 0:
			return 1.0
		case val < 0:
			return -1.0
		default:
			return 0
		}
	}
	if baseline < 0 {
		return (val - baseline) / -baseline
	}
	return (val - baseline) / baseline
}

// humanize splits a camelCase feature name into title-cased words, dropping
// the LaneOpponent suffix.
func humanize(feature string) string {
	feature = strings.ReplaceAll(feature, "LaneOpponent", "")
	var b strings.Builder
	for i, r := range feature {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) || (unicode.IsDigit(r) && !unicode.IsDigit(rune(feature[i-1]))) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
