package ml

import (
	"fmt"

	"github.com/riftlens/analysis-api/internal/features"
	"github.com/riftlens/analysis-api/internal/models"
)

// moodWindow is how many of the most recent matches feed the mood rules.
const moodWindow = 3

// moodStats aggregates the recent window. Means unless noted.
type moodStats struct {
	kda              float64
	winRate          float64 // percent
	deaths           float64
	kills            float64
	assists          float64
	vision           float64
	killPart         float64 // fraction
	damageShare      float64 // fraction
	damageTakenShare float64 // fraction
	soloKills        float64
	goldPerMin       float64
	csDiff           float64
	objDamage        float64
	earlyGoldAdv     float64
	laneMinions      float64
	missingPings     float64
	controlWards     float64
	totalHeal        float64
	timeCCing        float64
	objectivesStolen float64 // sum
	afkGames         float64 // sum
}

func aggregateRecent(table []features.Row) moodStats {
	recent := table
	if len(recent) > moodWindow {
		recent = recent[:moodWindow]
	}

	mean := func(feature string) float64 {
		var sum float64
		for _, row := range recent {
			sum += row.Values[feature]
		}
		return sum / float64(len(recent))
	}
	sum := func(feature string) float64 {
		var total float64
		for _, row := range recent {
			total += row.Values[feature]
		}
		return total
	}

	winRate := 0.0
	for _, row := range recent {
		if row.Win {
			winRate++
		}
	}
	winRate = winRate / float64(len(recent)) * 100

	return moodStats{
		kda:              mean("kda"),
		winRate:          winRate,
		deaths:           mean("deaths"),
		kills:            mean("kills"),
		assists:          mean("assists"),
		vision:           mean("visionScore"),
		killPart:         mean("killParticipation"),
		damageShare:      mean("teamDamagePercentage"),
		damageTakenShare: mean("damageTakenOnTeamPercentage"),
		soloKills:        mean("soloKills"),
		goldPerMin:       mean("goldPerMinute"),
		csDiff:           mean("maxCsAdvantageOnLaneOpponent"),
		objDamage:        mean("damageDealtToObjectives"),
		earlyGoldAdv:     mean("earlyLaningPhaseGoldExpAdvantage"),
		laneMinions:      mean("laneMinionsFirst10Minutes"),
		missingPings:     mean("enemyMissingPings"),
		controlWards:     mean("controlWardsPlaced"),
		totalHeal:        mean("totalHeal"),
		timeCCing:        mean("timeCCingOthers"),
		objectivesStolen: sum("objectivesStolen"),
		afkGames:         sum("hadAfkTeammate"),
	}
}

// moodRule is one pattern over the recent window. exclusiveWith names an
// earlier rule that suppresses this one when it already fired, keeping
// mutually exclusive pairs (e.g. winning hard vs winning comfortably) from
// stacking.
type moodRule struct {
	title         string
	icon          string
	color         string
	exclusiveWith string
	match         func(s moodStats) bool
	describe      func(s moodStats) (description, advice string)
}

var moodRules = []moodRule{
	{
		title: "Smurf Detected", icon: "crown", color: "text-yellow-400",
		match: func(s moodStats) bool { return s.winRate == 100 && s.kda > 5.0 },
		describe: func(s moodStats) (string, string) {
			return fmt.Sprintf("Clean sweep! %d%% WR and %.1f KDA last 3 matches. Are you boosting this account?", int(s.winRate), s.kda),
				"Touch grass. Seriously."
		},
	},
	{
		title: "Locked In", icon: "flame", color: "text-orange-500",
		exclusiveWith: "Smurf Detected",
		match:         func(s moodStats) bool { return s.winRate >= 66 && s.kda > 3.5 },
		describe: func(s moodStats) (string, string) {
			return fmt.Sprintf("You're sweating with a %d%% WR and %.1f KDA last 3 matches.", int(s.winRate), s.kda),
				"Stop tryharding in normals."
		},
	},
	{
		title: "Gray Screen Simulator", icon: "skull", color: "text-gray-500",
		match: func(s moodStats) bool { return s.deaths > 9 },
		describe: func(s moodStats) (string, string) {
			return fmt.Sprintf("Averaging %.1f deaths last 3 matches. Your team hates you.", s.deaths),
				"Uninstall or play Yuumi."
		},
	},
	{
		title: "Tilt Queue?", icon: "heart-crack", color: "text-red-500",
		exclusiveWith: "Gray Screen Simulator",
		match:         func(s moodStats) bool { return s.deaths > 7 && s.winRate < 34 },
		describe: func(s moodStats) (string, string) {
			return fmt.Sprintf("Losing (%d%% WR) and feeding (%.1f deaths) last 3 matches.", int(s.winRate), s.deaths),
				"Alt+F4 is a valid combo."
		},
	},
	{
		title: "Loser's Queue Victim", icon: "umbrella", color: "text-blue-400",
		match: func(s moodStats) bool { return s.winRate <= 33 && s.kda > 3.0 && s.damageShare > 0.25 },
		describe: func(s moodStats) (string, string) {
			return fmt.Sprintf("Playing perfectly (%.1f KDA) but Riot hates you personally last 3 matches.", s.kda),
				"Cry about it on Reddit."
		},
	},
	{
		title: "Backpack Enjoyer", icon: "baby", color: "text-pink-400",
		match: func(s moodStats) bool { return s.winRate >= 66 && s.kda < 2.0 && s.damageShare < 0.15 },
		describe: func(s moodStats) (string, string) {
			return fmt.Sprintf("Winning while doing nothing (%.1f%% dmg) last 3 matches.", s.damageShare*100),
				"Say 'gg ez' after getting carried."
		},
	},
	{
		title: "4v5 Warrior", icon: "user-x", color: "text-red-400",
		match: func(s moodStats) bool { return s.afkGames > 0 },
		describe: func(s moodStats) (string, string) {
			return fmt.Sprintf("Had an AFK in %d games. Riot's matchmaking at its finest last 3 matches.", int(s.afkGames)),
				"Scream into a pillow."
		},
	},
	{
		title: "Main Character Syndrome", icon: "swords", color: "text-orange-600",
		match: func(s moodStats) bool { return s.soloKills > 2 },
		describe: func(s moodStats) (string, string) {
			return fmt.Sprintf("You ignore the team and 1v1 everyone (%.1f solo kills) last 3 matches.", s.soloKills),
				"It's a team game, genius."
		},
	},
	{
		title: "Lane Kingdom", icon: "castle", color: "text-purple-500",
		match: func(s moodStats) bool { return s.csDiff > 20 },
		describe: func(s moodStats) (string, string) {
			return fmt.Sprintf("Bullying your laner (+%.0f CS diff) last 3 matches. They reported you.", s.csDiff),
				"Stop torturing them and end."
		},
	},
	{
		title: "PvE Player", icon: "wheat", color: "text-green-400",
		match: func(s moodStats) bool { return s.laneMinions > 80 },
		describe: func(s moodStats) (string, string) {
			return "You're playing Stardew Valley while your team fights last 3 matches.",
				"Minions don't give LP."
		},
	},
	{
		title: "Ward Bot", icon: "eye", color: "text-cyan-400",
		match: func(s moodStats) bool { return s.vision > 50 },
		describe: func(s moodStats) (string, string) {
			return fmt.Sprintf("Vision score %.1f. You're basically a walking ward last 3 matches.", s.vision),
				"Try doing damage next time."
		},
	},
	{
		title: "Lee Sin Cosplay", icon: "eye-off", color: "text-gray-400",
		exclusiveWith: "Ward Bot",
		match:         func(s moodStats) bool { return s.vision < 10 && s.controlWards < 0.5 },
		describe: func(s moodStats) (string, string) {
			return fmt.Sprintf("Vision score %.1f. You play with your monitor off last 3 matches.", s.vision),
				"Buy a ward, you cheapskate."
		},
	},
	{
		title: "Yasuo Main Energy", icon: "coins", color: "text-yellow-600",
		match: func(s moodStats) bool { return s.kills > 8 && s.deaths > 8 },
		describe: func(s moodStats) (string, string) {
			return fmt.Sprintf("Feeding (%.1f) and killing (%.1f). Complete coinflip last 3 matches.", s.deaths, s.kills),
				"Stop diving under tower."
		},
	},
	{
		title: "Unkillable Demon King", icon: "shield", color: "text-indigo-400",
		match: func(s moodStats) bool { return s.damageTakenShare > 0.30 && s.deaths < 6 },
		describe: func(s moodStats) (string, string) {
			return fmt.Sprintf("Tanking %.1f%% of damage. They can't kill you last 3 matches.", s.damageTakenShare*100),
				"Spam mastery emote while tanking."
		},
	},
	{
		title: "Damage Sponge", icon: "target", color: "text-red-300",
		exclusiveWith: "Unkillable Demon King",
		match:         func(s moodStats) bool { return s.damageTakenShare > 0.30 && s.deaths >= 6 },
		describe: func(s moodStats) (string, string) {
			return fmt.Sprintf("Taking %.1f%% damage by face-checking last 3 matches.", s.damageTakenShare*100),
				"Learn to dodge."
		},
	},
	{
		title: "1v9 Machine", icon: "sword", color: "text-red-600",
		match: func(s moodStats) bool { return s.damageShare > 0.35 },
		describe: func(s moodStats) (string, string) {
			return fmt.Sprintf("Doing %.1f%% of team damage. Your team is useless last 3 matches.", s.damageShare*100),
				"Don't break your back carrying."
		},
	},
	{
		title: "Objective Obsessed", icon: "target", color: "text-emerald-500",
		match: func(s moodStats) bool { return s.objDamage > 20000 },
		describe: func(s moodStats) (string, string) {
			return fmt.Sprintf("%.1fk obj damage. You hit dragons more than champions last 3 matches.", s.objDamage/1000),
				"Champions give gold too."
		},
	},
	{
		title: "Capitalist Pig", icon: "banknote", color: "text-yellow-300",
		match: func(s moodStats) bool { return s.goldPerMin > 500 },
		describe: func(s moodStats) (string, string) {
			return fmt.Sprintf("Hoarding %.0f Gold/Min. Share with the poor last 3 matches.", s.goldPerMin),
				"Full build at 20 min? Touch grass."
		},
	},
	{
		title: "Toxic Pinger", icon: "help-circle", color: "text-yellow-500",
		match: func(s moodStats) bool { return s.missingPings > 15 },
		describe: func(s moodStats) (string, string) {
			return fmt.Sprintf("Spamming '?' %.1f times/game. We know you're flaming last 3 matches.", s.missingPings),
				"Unbind your ping key."
		},
	},
	{
		title: "KDA Player", icon: "heart-handshake", color: "text-teal-300",
		match: func(s moodStats) bool { return s.damageShare < 0.10 && s.assists > 8 },
		describe: func(s moodStats) (string, string) {
			return fmt.Sprintf("Only %.1f%% dmg. Scared to fight last 3 matches?", s.damageShare*100),
				"Right-click the enemy champions."
		},
	},
	{
		title: "Burglar", icon: "ghost", color: "text-purple-600",
		match: func(s moodStats) bool { return s.objectivesStolen > 0 },
		describe: func(s moodStats) (string, string) {
			return "Stole an objective. Probably luck last 3 matches.",
				"Don't push your luck."
		},
	},
	{
		title: "Participation Trophy", icon: "users", color: "text-cyan-500",
		match: func(s moodStats) bool { return s.killPart > 0.70 },
		describe: func(s moodStats) (string, string) {
			return fmt.Sprintf("%.0f%% KP. You're just following your team around last 3 matches.", s.killPart*100),
				"Try doing something on your own."
		},
	},
	{
		title: "AFK Splitpusher", icon: "move-horizontal", color: "text-gray-300",
		exclusiveWith: "Participation Trophy",
		match:         func(s moodStats) bool { return s.killPart < 0.25 && s.winRate > 50 },
		describe: func(s moodStats) (string, string) {
			return fmt.Sprintf("Winning with %.0f%% KP. Playing single player last 3 matches.", s.killPart*100),
				"Group up or get reported."
		},
	},
	{
		title: "Lane Liability", icon: "trending-down", color: "text-red-400",
		match: func(s moodStats) bool { return s.earlyGoldAdv < -500 },
		describe: func(s moodStats) (string, string) {
			return "Losing lane by 500+ gold. You are the reason we lose last 3 matches.",
				"Learn to lane or play support."
		},
	},
	{
		title: "Professional Choker", icon: "frown", color: "text-blue-500",
		match: func(s moodStats) bool { return s.earlyGoldAdv > 300 && s.winRate < 34 },
		describe: func(s moodStats) (string, string) {
			return "You win lane hard, then throw the game harder last 3 matches.",
				"Stop 1v5ing and group."
		},
	},
	{
		title: "Lucky Charm", icon: "sparkles", color: "text-green-500",
		match: func(s moodStats) bool { return s.earlyGoldAdv < -300 && s.winRate > 66 },
		describe: func(s moodStats) (string, string) {
			return "Got rolled in lane but got carried last 3 matches.",
				"Better lucky than good."
		},
	},
	{
		title: "The Fun Police", icon: "hand", color: "text-indigo-500",
		match: func(s moodStats) bool { return s.timeCCing > 30 },
		describe: func(s moodStats) (string, string) {
			return "You don't let anyone play the game (>30s CC) last 3 matches.",
				"Your opponents hate you. Good."
		},
	},
	{
		title: "Hospital Bed", icon: "heart-pulse", color: "text-red-300",
		match: func(s moodStats) bool { return s.totalHeal > 15000 },
		describe: func(s moodStats) (string, string) {
			return "Healing numbers go brrr last 3 matches.",
				"You can't heal stupidity."
		},
	},
}

// AnalyzeMood runs the rule table over the most recent matches and returns
// the matching tags, deduplicated by title, or the fallback tag when
// nothing fires.
func AnalyzeMood(table []features.Row) []models.MoodTag {
	if len(table) == 0 {
		return nil
	}
	s := aggregateRecent(table)

	fired := make(map[string]bool, len(moodRules))
	var moods []models.MoodTag
	for _, rule := range moodRules {
		if rule.exclusiveWith != "" && fired[rule.exclusiveWith] {
			continue
		}
		if !rule.match(s) {
			continue
		}
		if fired[rule.title] {
			continue
		}
		fired[rule.title] = true

		description, advice := rule.describe(s)
		moods = append(moods, models.MoodTag{
			Title:       rule.title,
			Icon:        rule.icon,
			Color:       rule.color,
			Description: description,
			Advice:      advice,
		})
	}

	if len(moods) == 0 {
		moods = append(moods, models.MoodTag{
			Title:       "NPC Energy",
			Icon:        "bot",
			Color:       "text-gray-400",
			Description: "You exist. That's about it last 3 matches.",
			Advice:      "Do something. Anything.",
		})
	}
	return moods
}
