package models

// FeatureImportance is one model feature with its fitted importance share.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// CategoryImportance sums member-feature importances per UI category.
type CategoryImportance struct {
	Category   string  `json:"category"`
	Importance float64 `json:"importance"`
}

// PerformanceInsight compares a feature's mean between won and lost matches.
type PerformanceInsight struct {
	AvgWhenWinning    float64 `json:"avg_when_winning"`
	AvgWhenLosing     float64 `json:"avg_when_losing"`
	Difference        float64 `json:"difference"`
	PercentDifference float64 `json:"percent_difference"`
}

// Differentiator pairs a feature with its win/loss insight, used for the
// top-10 ranking by absolute percent difference.
type Differentiator struct {
	Feature string             `json:"feature"`
	Insight PerformanceInsight `json:"insight"`
}

// TrainingMetrics is the cached result of one model training run.
type TrainingMetrics struct {
	FeatureImportance   []FeatureImportance           `json:"feature_importance"`
	CategoryImportance  []CategoryImportance          `json:"category_importance"`
	PerformanceInsights map[string]PerformanceInsight `json:"performance_insights"`
	TopDifferentiators  []Differentiator              `json:"top_differentiators"`
	Accuracy            float64                       `json:"accuracy"`
	TotalMatches        int                           `json:"total_matches"`
	Wins                int                           `json:"wins"`
	Losses              int                           `json:"losses"`
	ConsistencyScore    float64                       `json:"consistency_score"`
}

// MoodTag is one deterministic performance-pattern tag over recent matches.
type MoodTag struct {
	Title       string `json:"title"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Description string `json:"description"`
	Advice      string `json:"advice"`
}

// WinDriver is one area where the player outperformed the baseline.
type WinDriver struct {
	Name     string  `json:"name"`
	Impact   string  `json:"impact"` // Low, Medium, High
	Value    float64 `json:"value"`
	Baseline float64 `json:"baseline"`
	DiffPct  float64 `json:"diff_pct"`
	Feature  string  `json:"feature"`
	Source   string  `json:"source"` // "enemy" or "avg"
}

// SkillFocusItem is one area significantly below the baseline.
type SkillFocusItem struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Current     float64 `json:"current"`
	Target      float64 `json:"target"`
	Diff        float64 `json:"diff"`
	Feature     string  `json:"feature"`
	Source      string  `json:"source"`
}

// TerritoryMetrics are spatial-control scalars for one match (or the mean
// across matches).
type TerritoryMetrics struct {
	TimeInEnemyTerritoryPct float64 `json:"time_in_enemy_territory_pct"`
	ForwardPositioningScore float64 `json:"forward_positioning_score"`
	JungleInvasionPct       float64 `json:"jungle_invasion_pct"`
	RiverControlPct         float64 `json:"river_control_pct"`
}

// IsZero reports whether the match produced no positional signal at all.
func (t TerritoryMetrics) IsZero() bool {
	return t.TimeInEnemyTerritoryPct == 0 && t.RiverControlPct == 0
}

// TimelinePoint is one per-minute snapshot of the player's economy against
// the match average and, when a lane opponent is known, against them.
type TimelinePoint struct {
	Minute    int     `json:"minute"`
	GoldDelta float64 `json:"goldDelta"`
	XPDelta   float64 `json:"xpDelta"`
	MyGold    float64 `json:"myGold"`
	AvgGold   float64 `json:"avgGold"`
	MyXP      float64 `json:"myXp"`
	AvgXP     float64 `json:"avgXp"`

	HasEnemy      bool    `json:"hasEnemy"`
	EnemyGold     float64 `json:"enemyGold,omitempty"`
	EnemyXP       float64 `json:"enemyXp,omitempty"`
	LaneGoldDelta float64 `json:"laneGoldDelta,omitempty"`
	LaneXPDelta   float64 `json:"laneXpDelta,omitempty"`
}

// RankedInfo is the player's solo-queue standing.
type RankedInfo struct {
	Tier       string `json:"tier"`
	Rank       string `json:"rank"`
	LP         int    `json:"lp"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	HotStreak  bool   `json:"hotStreak"`
	Veteran    bool   `json:"veteran"`
	FreshBlood bool   `json:"freshBlood"`
}

// AnalysisResult is the final payload of one analyze request.
type AnalysisResult struct {
	Status            string                `json:"status"`
	Message           string                `json:"message,omitempty"`
	User              *User                 `json:"user"`
	Metrics           *TrainingMetrics      `json:"metrics,omitempty"`
	WinProbability    float64               `json:"win_probability"`
	PlayerMoods       []MoodTag             `json:"player_moods,omitempty"`
	WeightedAverages  map[string]float64    `json:"weighted_averages,omitempty"`
	LastMatchStats    map[string]float64    `json:"last_match_stats,omitempty"`
	EnemyStats        map[string]float64    `json:"enemy_stats,omitempty"`
	EnemyChampion     string                `json:"enemy_champion,omitempty"`
	WinDrivers        []WinDriver           `json:"win_drivers,omitempty"`
	SkillFocus        []SkillFocusItem      `json:"skill_focus,omitempty"`
	TimelineSeries    []TimelinePoint       `json:"match_timeline_series,omitempty"`
	PerformanceTrends []map[string]float64  `json:"performance_trends,omitempty"`
	WinRate           float64               `json:"win_rate"`
	TotalMatches      int                   `json:"total_matches"`
	Territory         *TerritoryMetrics     `json:"territory_metrics,omitempty"`
	Ranked            *RankedInfo           `json:"ranked_data,omitempty"`
}

// ProgressEvent is one NDJSON line on the analyze stream.
type ProgressEvent struct {
	Type    string          `json:"type"` // progress, error, result
	Message string          `json:"message,omitempty"`
	Percent int             `json:"percent,omitempty"`
	Data    *AnalysisResult `json:"data,omitempty"`
}
