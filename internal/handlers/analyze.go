package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/riftlens/analysis-api/internal/features"
	"github.com/riftlens/analysis-api/internal/ingest"
	"github.com/riftlens/analysis-api/internal/ml"
	"github.com/riftlens/analysis-api/internal/models"
	"github.com/riftlens/analysis-api/internal/riot"
	"github.com/riftlens/analysis-api/internal/territory"
)

type AnalyzeRequest struct {
	RiotID string `json:"riot_id" validate:"required"`
	Region string `json:"region"`
}

func resultCacheKey(puuid string) string {
	return "analysis:" + puuid
}

// Analyze runs the full pipeline for one player and streams NDJSON progress
// events followed by a single result (or error) event.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	gameName, tagLine, ok := strings.Cut(req.RiotID, "#")
	if !ok || gameName == "" || tagLine == "" {
		h.errorResponse(w, http.StatusBadRequest, "riot_id must be in gameName#tagLine form")
		return
	}
	region := req.Region
	if region == "" {
		region = h.settings.RiotRegion
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.errorResponse(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	emit := func(ev models.ProgressEvent) {
		if err := enc.Encode(ev); err != nil {
			h.logger.Warnw("failed to write stream event", "error", err)
			return
		}
		flusher.Flush()
	}

	h.runAnalysis(r.Context(), emit, gameName, tagLine, region)
}

func (h *Handler) runAnalysis(ctx context.Context, emit func(models.ProgressEvent), gameName, tagLine, region string) {
	log := h.logger.With("analysis_id", uuid.New().String(), "riot_id", gameName+"#"+tagLine)

	progress := func(pct int, msg string) {
		emit(models.ProgressEvent{Type: "progress", Message: msg, Percent: pct})
	}
	fail := func(msg string) {
		analysesTotal.WithLabelValues("error").Inc()
		emit(models.ProgressEvent{Type: "error", Message: msg})
	}

	progress(5, "Finding user account...")
	user, err := h.ingest.ResolveUser(ctx, gameName, tagLine, region)
	if err != nil {
		log.Errorw("user resolution failed", "error", err)
		fail("Server error: " + err.Error())
		return
	}
	if user == nil {
		fail("User not found")
		return
	}

	progress(8, "Fetching ranked info...")
	ranked := h.fetchRankedInfo(ctx, user.PUUID)

	if result := h.cachedResult(ctx, user.PUUID); result != nil {
		result.Ranked = ranked
		progress(100, "Using cached analysis")
		analysesTotal.WithLabelValues("cached").Inc()
		emit(models.ProgressEvent{Type: "result", Data: result})
		return
	}

	err = h.ingest.IngestMatchHistory(ctx, user, h.settings.MatchCount, func(p ingest.Progress) {
		pct := 10
		if p.Total > 0 {
			// Map match ingestion onto the 10-70% band of overall progress.
			pct = 10 + int(float64(p.Current)/float64(p.Total)*60)
		}
		progress(pct, p.Status)
	})
	if err != nil {
		log.Errorw("match ingestion failed", "puuid", user.PUUID, "error", err)
		fail("Server error: " + err.Error())
		return
	}

	progress(72, "Loading match data...")
	records, err := h.store.LoadPlayerRecords(ctx, user.PUUID, 50)
	if err != nil {
		log.Errorw("loading records failed", "puuid", user.PUUID, "error", err)
		fail("Server error: " + err.Error())
		return
	}
	table := features.BuildTable(records)

	progress(75, "Training AI model...")
	model := ml.New(h.logger)
	trainStart := time.Now()
	metrics, err := model.Train(table)
	if err != nil {
		if errors.Is(err, ml.ErrInsufficientData) {
			analysesTotal.WithLabelValues("partial").Inc()
			emit(models.ProgressEvent{Type: "result", Data: &models.AnalysisResult{
				Status:         "partial",
				Message:        err.Error(),
				User:           user,
				WinProbability: 50.0,
				TotalMatches:   len(table),
				Ranked:         ranked,
			}})
			return
		}
		fail("Server error: " + err.Error())
		return
	}
	modelTrainingDuration.Observe(time.Since(trainStart).Seconds())

	progress(78, "Calculating performance metrics...")
	weighted := model.WeightedAverages(table)
	lastStats := table[0].Values

	progress(80, "Analyzing player mood...")
	moods := ml.AnalyzeMood(table)

	wins := 0
	for _, row := range table {
		if row.Win {
			wins++
		}
	}
	winRate := float64(wins) / float64(len(table)) * 100

	progress(83, "Analyzing territorial control...")
	territoryMetrics := h.analyzeTerritory(ctx, records)

	progress(88, "Calculating win probability...")
	modelProbability := model.PredictWinProbability(lastStats)
	blend := h.settings.BlendModelWeight
	winProbability := winRate*(1-blend) + modelProbability*blend

	progress(90, "Comparing with opponent...")
	var enemyStats map[string]float64
	enemyChampion := ""
	enemyParticipantID := 0
	lastRecord := records[0]
	if lastRecord.Raw != nil {
		if enemy := lastRecord.Raw.EnemyLaner(lastRecord.TeamID, lastRecord.TeamPosition); enemy != nil {
			enemyParticipantID = enemy.ParticipantID
			enemyChampion = enemy.ChampionName
			enemyStats = buildEnemyStats(enemy, float64(lastRecord.GameDuration)/60)
		}
	}

	progress(92, "Analyzing win factors...")
	winDrivers := model.WinDrivers(lastStats, enemyStats)
	skillFocus := model.SkillFocus(lastStats, enemyStats)

	progress(95, "Fetching match timeline...")
	var series []models.TimelinePoint
	timeline, err := h.riot.GetTimeline(ctx, lastRecord.MatchID)
	if err != nil {
		log.Warnw("timeline fetch failed", "match_id", lastRecord.MatchID, "error", err)
	} else {
		series = territory.CollectSeries(timeline, lastRecord.ParticipantID, enemyParticipantID)
	}

	progress(98, "Preparing results...")
	result := &models.AnalysisResult{
		Status:            "success",
		User:              user,
		Metrics:           metrics,
		WinProbability:    winProbability,
		PlayerMoods:       moods,
		WeightedAverages:  weighted,
		LastMatchStats:    lastStats,
		EnemyStats:        enemyStats,
		EnemyChampion:     enemyChampion,
		WinDrivers:        winDrivers,
		SkillFocus:        skillFocus,
		TimelineSeries:    series,
		PerformanceTrends: performanceTrends(table),
		WinRate:           winRate,
		TotalMatches:      len(table),
		Territory:         &territoryMetrics,
		Ranked:            ranked,
	}

	h.cacheResult(ctx, user.PUUID, result)
	analysesTotal.WithLabelValues("success").Inc()
	emit(models.ProgressEvent{Type: "result", Data: result})
}

func (h *Handler) fetchRankedInfo(ctx context.Context, puuid string) *models.RankedInfo {
	entries, err := h.riot.GetLeagueEntries(ctx, puuid)
	if err != nil {
		h.logger.Warnw("league entries fetch failed", "puuid", puuid, "error", err)
		return nil
	}
	solo := riot.SoloQueueEntry(entries)
	if solo == nil {
		return nil
	}
	return &models.RankedInfo{
		Tier:       solo.Tier,
		Rank:       solo.Rank,
		LP:         solo.LeaguePoints,
		Wins:       solo.Wins,
		Losses:     solo.Losses,
		HotStreak:  solo.HotStreak,
		Veteran:    solo.Veteran,
		FreshBlood: solo.FreshBlood,
	}
}

func (h *Handler) cachedResult(ctx context.Context, puuid string) *models.AnalysisResult {
	data, err := h.redis.Get(ctx, resultCacheKey(puuid)).Bytes()
	if err != nil {
		return nil
	}
	var result models.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		h.logger.Warnw("dropping undecodable cached analysis", "puuid", puuid, "error", err)
		h.redis.Del(ctx, resultCacheKey(puuid))
		return nil
	}
	return &result
}

func (h *Handler) cacheResult(ctx context.Context, puuid string, result *models.AnalysisResult) {
	data, err := json.Marshal(result)
	if err != nil {
		h.logger.Errorw("failed to marshal analysis for cache", "error", err)
		return
	}
	if err := h.redis.Set(ctx, resultCacheKey(puuid), data, h.settings.ResultCacheTTL).Err(); err != nil {
		h.logger.Warnw("failed to cache analysis", "puuid", puuid, "error", err)
	}
}

// analyzeTerritory fetches timelines for the most recent matches and
// aggregates their territorial metrics. Fetch failures leave a zero entry,
// which the aggregation drops.
func (h *Handler) analyzeTerritory(ctx context.Context, records []models.ParticipantRecord) models.TerritoryMetrics {
	limit := h.settings.TimelineMatches
	if limit > len(records) {
		limit = len(records)
	}

	metrics := make([]models.TerritoryMetrics, 0, limit)
	for _, rec := range records[:limit] {
		timeline, err := h.riot.GetTimeline(ctx, rec.MatchID)
		if err != nil {
			h.logger.Warnw("territory timeline fetch failed", "match_id", rec.MatchID, "error", err)
			metrics = append(metrics, models.TerritoryMetrics{})
			continue
		}
		metrics = append(metrics, territory.Compute(timeline, rec.ParticipantID, rec.TeamID))
	}
	return territory.Aggregate(metrics)
}

// trendColumns are the per-match series the UI charts over time.
var trendColumns = []string{
	"kda", "visionScore", "killParticipation", "win", "gameCreation",
	"aggressionScore", "visionDominance", "jungleInvasionPressure",
	"goldPerMinute", "damagePerMinute",
}

func performanceTrends(table []features.Row) []map[string]float64 {
	trends := make([]map[string]float64, 0, len(table))
	for _, row := range table {
		point := make(map[string]float64, len(trendColumns))
		for _, col := range trendColumns {
			switch col {
			case "win":
				if row.Win {
					point[col] = 1
				} else {
					point[col] = 0
				}
			case "gameCreation":
				point[col] = float64(row.GameCreation)
			default:
				point[col] = row.Values[col]
			}
		}
		trends = append(trends, point)
	}
	return trends
}

// buildEnemyStats flattens the lane opponent's raw participant entry into
// the stats map the insight comparisons consume. Rates that depend on game
// length divide by minutes, never by zero.
func buildEnemyStats(enemy *models.RawParticipant, durationMinutes float64) map[string]float64 {
	if durationMinutes <= 0 {
		durationMinutes = 1
	}
	stats := enemy.Stats
	challenges := enemy.Challenges

	deaths := stats.Get("deaths")
	kdaDenom := deaths
	if kdaDenom == 0 {
		kdaDenom = 1
	}

	return map[string]float64{
		"visionScore":            stats.Get("visionScore"),
		"goldPerMinute":          stats.Get("goldEarned") / durationMinutes,
		"damageDealtToChampions": stats.Get("totalDamageDealtToChampions"),
		"totalMinionsKilled":     stats.Get("totalMinionsKilled") + stats.Get("neutralMinionsKilled"),
		"towerDamageDealt":       stats.Get("damageDealtToTurrets"),
		"xpPerMinute":            stats.Get("champExperience") / durationMinutes,
		"soloKills":              challenges.Get("soloKills"),
		"killParticipation":      challenges.Get("killParticipation"),
		"skillshotHitRate":       challenges.Get("skillshotsHit"),
		"wardsPlaced":            stats.Get("wardsPlaced"),
		"controlWardsPlaced":     stats.Get("detectorWardsPlaced"),
		"detectorWardsPlaced":    stats.Get("detectorWardsPlaced"),

		"kills":           stats.Get("kills"),
		"deaths":          deaths,
		"assists":         stats.Get("assists"),
		"kda":             (stats.Get("kills") + stats.Get("assists")) / kdaDenom,
		"damagePerMinute": stats.Get("totalDamageDealtToChampions") / durationMinutes,

		"enemyMissingPings":  stats.Get("enemyMissingPings"),
		"onMyWayPings":       stats.Get("onMyWayPings"),
		"assistMePings":      stats.Get("assistMePings"),
		"getBackPings":       stats.Get("getBackPings"),
		"allInPings":         stats.Get("allInPings"),
		"commandPings":       stats.Get("commandPings"),
		"pushPings":          stats.Get("pushPings"),
		"visionClearedPings": stats.Get("visionClearedPings"),
		"needVisionPings":    stats.Get("needVisionPings"),
		"holdPings":          stats.Get("holdPings"),

		"laneMinionsFirst10Minutes": challenges.Get("laneMinionsFirst10Minutes"),
		"turretPlatesTaken":         challenges.Get("turretPlatesTaken"),
		"skillshotsDodged":          challenges.Get("skillshotsDodged"),
		"skillshotsHit":             challenges.Get("skillshotsHit"),

		"earlyLaningPhaseGoldExpAdvantage": challenges.Get("earlyLaningPhaseGoldExpAdvantage"),
		"laningPhaseGoldExpAdvantage":      challenges.Get("laningPhaseGoldExpAdvantage"),
		"maxCsAdvantageOnLaneOpponent":     challenges.Get("maxCsAdvantageOnLaneOpponent"),
		"maxLevelLeadLaneOpponent":         challenges.Get("maxLevelLeadLaneOpponent"),
		"visionScoreAdvantageLaneOpponent": challenges.Get("visionScoreAdvantageLaneOpponent"),
		"controlWardTimeCoverageInRiverOrEnemyHalf": challenges.Get("controlWardTimeCoverageInRiverOrEnemyHalf"),
	}
}

// DeleteLastMatch removes the player's newest stored match so the next
// analysis re-ingests it, and drops any cached result.
func (h *Handler) DeleteLastMatch(w http.ResponseWriter, r *http.Request) {
	gameName := chi.URLParam(r, "gameName")
	tagLine := chi.URLParam(r, "tagLine")
	region := r.URL.Query().Get("region")
	if region == "" {
		region = h.settings.RiotRegion
	}

	user, err := h.ingest.ResolveUser(r.Context(), gameName, tagLine, region)
	if err != nil {
		h.logger.Errorw("user resolution failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "failed to resolve user")
		return
	}
	if user == nil {
		h.errorResponse(w, http.StatusNotFound, "user not found")
		return
	}

	matchID, err := h.store.DeleteLatestMatch(r.Context(), user.PUUID)
	if err != nil {
		h.logger.Errorw("delete latest match failed", "puuid", user.PUUID, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "failed to delete match")
		return
	}
	if matchID == "" {
		h.errorResponse(w, http.StatusNotFound, "no stored matches")
		return
	}

	if err := h.redis.Del(r.Context(), resultCacheKey(user.PUUID)).Err(); err != nil {
		h.logger.Warnw("failed to invalidate cached analysis", "puuid", user.PUUID, "error", err)
	}

	remaining, err := h.store.CountPlayerMatches(r.Context(), user.PUUID)
	if err != nil {
		h.logger.Warnw("counting remaining matches failed", "puuid", user.PUUID, "error", err)
	}

	h.jsonResponse(w, http.StatusOK, map[string]any{
		"deleted":           matchID,
		"remaining_matches": remaining,
	})
}
