// Package handlers wires the HTTP surface: the streaming analyze endpoint,
// player maintenance routes, and the health probes.
package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/riftlens/analysis-api/internal/config"
	"github.com/riftlens/analysis-api/internal/ingest"
	"github.com/riftlens/analysis-api/internal/models"
	"github.com/riftlens/analysis-api/internal/riot"
)

// Storage is the slice of the persistence layer the handlers need.
type Storage interface {
	Ping(ctx context.Context) error
	LoadPlayerRecords(ctx context.Context, puuid string, limit int) ([]models.ParticipantRecord, error)
	DeleteLatestMatch(ctx context.Context, puuid string) (string, error)
	CountPlayerMatches(ctx context.Context, puuid string) (int, error)
}

// TimelineAPI is the slice of the Riot client used after ingestion.
type TimelineAPI interface {
	GetTimeline(ctx context.Context, matchID string) (*models.Timeline, error)
	GetLeagueEntries(ctx context.Context, puuid string) ([]riot.LeagueEntry, error)
}

// Ingestor resolves accounts and pulls match history.
type Ingestor interface {
	ResolveUser(ctx context.Context, gameName, tagLine, region string) (*models.User, error)
	IngestMatchHistory(ctx context.Context, user *models.User, count int, report func(ingest.Progress)) error
}

type Config struct {
	Store    Storage
	Riot     TimelineAPI
	Ingest   Ingestor
	Redis    *redis.Client
	Logger   *zap.Logger
	Settings *config.Config
}

type Handler struct {
	store     Storage
	riot      TimelineAPI
	ingest    Ingestor
	redis     *redis.Client
	logger    *zap.SugaredLogger
	validator *validator.Validate
	settings  *config.Config
}

func New(cfg Config) *Handler {
	return &Handler{
		store:     cfg.Store,
		riot:      cfg.Riot,
		ingest:    cfg.Ingest,
		redis:     cfg.Redis,
		logger:    cfg.Logger.Sugar(),
		validator: validator.New(),
		settings:  cfg.Settings,
	}
}
