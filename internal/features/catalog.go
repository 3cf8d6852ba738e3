// Package features turns raw match records into the flat numeric rows the
// win-prediction model consumes. The catalog splits statistics into two
// disjoint sets: predictive features are measurable before or independently
// of the match outcome (early-game leads, habitual rates), while display
// features are inflated by winning itself and would let a model trivially
// learn "winners have more kills". Only predictive features are ever fed to
// training; display features are computed for UI context.
package features

// Predictive lists the features used for model training.
var Predictive = []string{
	// Early game leads, measured at 8-14 min before the game is decided.
	"earlyLaningPhaseGoldExpAdvantage",
	"laningPhaseGoldExpAdvantage",
	"maxCsAdvantageOnLaneOpponent",
	"maxLevelLeadLaneOpponent",
	"visionScoreAdvantageLaneOpponent",

	// Early game efficiency, before snowball effects.
	"laneMinionsFirst10Minutes",
	"turretPlatesTaken",
	"skillshotsEarlyGame",

	// Mechanical skill ratios.
	"skillshotHitRate",
	"skillshotDodgeRate",

	// Vision habits: wards go down whether winning or losing.
	"wardsPlaced",
	"controlWardsPlaced",
	"detectorWardsPlaced",
	"controlWardTimeCoverageInRiverOrEnemyHalf",

	// Communication habits.
	"enemyMissingPings",
	"onMyWayPings",
	"assistMePings",
	"getBackPings",

	// Context the player cannot control.
	"hadAfkTeammate",
}

// Display lists outcome-correlated features shown in the UI but excluded
// from training.
var Display = []string{
	// Combat
	"kills", "deaths", "assists", "kda",
	"killParticipation", "soloKills",
	"totalDamageDealtToChampions", "damagePerMinute",
	"teamDamagePercentage", "damageTakenOnTeamPercentage",
	"totalDamageTaken", "totalHeal", "timeCCingOthers",

	// Economy
	"goldPerMinute", "totalMinionsKilled", "neutralMinionsKilled",

	// Objectives
	"damageDealtToObjectives",
	"turretTakedowns", "dragonTakedowns", "baronTakedowns",
	"dragonKills", "baronKills",
	"objectivesStolen", "epicMonsterSteals",

	// Vision totals
	"visionScore", "visionScorePerMinute", "wardsKilled",

	// Mechanical totals and cast slots
	"skillshotsHit", "skillshotsDodged",
	"spell1Casts", "spell2Casts", "spell3Casts", "spell4Casts",

	// Jungle
	"junglerKillsEarlyJungle",
	"killsOnLanersEarlyJungleAsJungler",
	"epicMonsterKillsNearEnemyJungler",

	// Pings that could go either way
	"allInPings", "commandPings", "holdPings",
	"needVisionPings", "pushPings", "visionClearedPings",

	// Composite metrics
	"aggressionScore", "visionDominance", "jungleInvasionPressure", "combatEfficiency",
}

// Combined returns predictive followed by display features, the fixed
// column order of the full matrix.
func Combined() []string {
	out := make([]string, 0, len(Predictive)+len(Display))
	out = append(out, Predictive...)
	out = append(out, Display...)
	return out
}

// Category is a UI-facing grouping of predictive features.
type Category struct {
	Name     string
	Features []string
}

// Categories groups the predictive features that carry UI labels, in
// display order. Used to aggregate per-category importance.
func Categories() []Category {
	return []Category{
		{Name: "Early Game Leads", Features: []string{
			"earlyLaningPhaseGoldExpAdvantage",
			"laningPhaseGoldExpAdvantage",
			"maxCsAdvantageOnLaneOpponent",
			"maxLevelLeadLaneOpponent",
			"visionScoreAdvantageLaneOpponent",
		}},
		{Name: "Early Game Efficiency", Features: []string{
			"laneMinionsFirst10Minutes",
			"turretPlatesTaken",
		}},
		{Name: "Vision Habits", Features: []string{
			"wardsPlaced",
			"controlWardsPlaced",
			"detectorWardsPlaced",
			"controlWardTimeCoverageInRiverOrEnemyHalf",
		}},
		{Name: "Communication Habits", Features: []string{
			"enemyMissingPings",
			"onMyWayPings",
			"assistMePings",
			"getBackPings",
		}},
	}
}
