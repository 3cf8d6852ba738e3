// Package ingest resolves Riot accounts and pulls match history into the
// store, reporting progress as it goes. API fetches run in parallel under a
// concurrency cap; database writes stay sequential.
package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/riftlens/analysis-api/internal/models"
	"github.com/riftlens/analysis-api/internal/riot"
)

// RiotAPI is the slice of the Riot client the ingestion flow needs.
type RiotAPI interface {
	GetAccountByRiotID(ctx context.Context, gameName, tagLine string) (*riot.Account, error)
	GetSummonerByPUUID(ctx context.Context, puuid string) (*riot.Summoner, error)
	GetMatchIDs(ctx context.Context, puuid string, count int) ([]string, error)
	GetMatch(ctx context.Context, matchID string) (*models.RawMatch, error)
}

// MatchStore is the slice of the persistence layer the ingestion flow needs.
type MatchStore interface {
	GetUserByRiotID(ctx context.Context, gameName, tagLine, region string) (*models.User, error)
	UpsertUser(ctx context.Context, u *models.User) error
	ExistingMatchIDs(ctx context.Context, matchIDs []string) (map[string]bool, error)
	SaveMatch(ctx context.Context, m *models.RawMatch) error
}

// Progress is one ingestion status update.
type Progress struct {
	Current int
	Total   int
	Status  string
}

type Service struct {
	riot        RiotAPI
	store       MatchStore
	log         *zap.SugaredLogger
	concurrency int
}

func NewService(riotAPI RiotAPI, store MatchStore, log *zap.SugaredLogger, concurrency int) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{riot: riotAPI, store: store, log: log, concurrency: concurrency}
}

// ResolveUser returns the tracked user for a Riot ID, creating it from the
// Riot API on first sight. Returns nil without error when the account does
// not exist.
func (s *Service) ResolveUser(ctx context.Context, gameName, tagLine, region string) (*models.User, error) {
	user, err := s.store.GetUserByRiotID(ctx, gameName, tagLine, region)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	account, err := s.riot.GetAccountByRiotID(ctx, gameName, tagLine)
	if err != nil {
		if riot.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve account %s#%s: %w", gameName, tagLine, err)
	}

	user = &models.User{
		PUUID:    account.PUUID,
		GameName: account.GameName,
		TagLine:  account.TagLine,
		Region:   region,
	}

	summoner, err := s.riot.GetSummonerByPUUID(ctx, account.PUUID)
	if err != nil {
		// Profile decoration only; the analysis works without it.
		s.log.Warnw("summoner lookup failed", "puuid", account.PUUID, "error", err)
	} else {
		user.ProfileIconID = summoner.ProfileIconID
		user.SummonerLevel = summoner.SummonerLevel
	}

	if err := s.store.UpsertUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

type fetchResult struct {
	matchID string
	match   *models.RawMatch
	err     error
}

// IngestMatchHistory pulls the player's recent matches into the store,
// skipping those already cached. The report callback receives every status
// change; pass nil to ingest silently.
func (s *Service) IngestMatchHistory(ctx context.Context, user *models.User, count int, report func(Progress)) error {
	if report == nil {
		report = func(Progress) {}
	}

	matchIDs, err := s.riot.GetMatchIDs(ctx, user.PUUID, count)
	if err != nil {
		return fmt.Errorf("fetch match ids: %w", err)
	}

	total := len(matchIDs)
	if total == 0 {
		report(Progress{Status: "No matches found"})
		return nil
	}
	report(Progress{Total: total, Status: fmt.Sprintf("Found %d matches, checking cache...", total)})

	existing, err := s.store.ExistingMatchIDs(ctx, matchIDs)
	if err != nil {
		return err
	}

	var newIDs []string
	for _, id := range matchIDs {
		if !existing[id] {
			newIDs = append(newIDs, id)
		}
	}
	cached := total - len(newIDs)

	if cached > 0 {
		report(Progress{Current: cached, Total: total,
			Status: fmt.Sprintf("%d matches cached, fetching %d new...", cached, len(newIDs))})
	}
	if len(newIDs) == 0 {
		report(Progress{Current: total, Total: total, Status: "All matches already cached"})
		return nil
	}

	report(Progress{Current: cached, Total: total,
		Status: fmt.Sprintf("Fetching %d matches from Riot API...", len(newIDs))})

	// Parallel API fetches, bounded. Results land by index so the save
	// order matches the history order.
	results := make([]fetchResult, len(newIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range newIDs {
		g.Go(func() error {
			match, err := s.riot.GetMatch(gctx, id)
			if err != nil {
				s.log.Errorw("failed to fetch match", "match_id", id, "error", err)
			}
			results[i] = fetchResult{matchID: id, match: match, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Sequential saves.
	completed := cached
	for _, res := range results {
		completed++

		var status string
		switch {
		case res.err != nil:
			status = fmt.Sprintf("Failed to fetch %s: %v", res.matchID, res.err)
		default:
			if err := s.store.SaveMatch(ctx, res.match); err != nil {
				s.log.Errorw("failed to save match", "match_id", res.matchID, "error", err)
				status = fmt.Sprintf("Failed to save %s", res.matchID)
			} else {
				status = fmt.Sprintf("Saved match %d/%d", completed, total)
			}
		}
		report(Progress{Current: completed, Total: total, Status: status})
	}
	return nil
}
