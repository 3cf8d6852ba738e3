// Package riot is a rate-limited client for the handful of Riot API
// endpoints the analysis pipeline needs: account resolution, match history,
// match detail, timelines, and ranked entries.
package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/riftlens/analysis-api/internal/models"
)

var apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "analysis_api_riot_requests_total",
	Help: "Riot API requests by endpoint and status code",
}, []string{"endpoint", "status"})

// platformToRegion maps platform routing values (summoner and league
// endpoints) to the regional routing values used by account and match
// endpoints.
var platformToRegion = map[string]string{
	"na1": "americas", "br1": "americas", "la1": "americas", "la2": "americas",
	"euw1": "europe", "eun1": "europe", "tr1": "europe", "ru": "europe",
	"kr": "asia", "jp1": "asia",
	"oc1": "sea", "ph2": "sea", "sg2": "sea", "th2": "sea", "tw2": "sea", "vn2": "sea",
}

// APIError is a non-2xx response from the Riot API.
type APIError struct {
	StatusCode int
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("riot api: %s returned %d", e.Endpoint, e.StatusCode)
}

// IsNotFound reports whether the error is a 404 from the Riot API.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

// Client wraps the Riot REST API with a shared token-bucket rate limit.
// Safe for concurrent use.
type Client struct {
	apiKey   string
	platform string
	region   string

	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.SugaredLogger
}

// Config carries the client settings from the service configuration.
type Config struct {
	APIKey         string
	Platform       string // e.g. na1, euw1
	RequestsPerSec float64
	Burst          int
}

// NewClient builds a client for the given platform. Unknown platforms route
// match endpoints through americas.
func NewClient(cfg Config, log *zap.SugaredLogger) *Client {
	region, ok := platformToRegion[cfg.Platform]
	if !ok {
		region = "americas"
	}
	return &Client{
		apiKey:     cfg.APIKey,
		platform:   cfg.Platform,
		region:     region,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		log:        log,
	}
}

const maxRetries = 3

// get performs one rate-limited GET, retrying 429s per the Retry-After
// header.
func (c *Client) get(ctx context.Context, rawURL, endpoint string, out any) error {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return fmt.Errorf("build request for %s: %w", endpoint, err)
		}
		req.Header.Set("X-Riot-Token", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			apiRequestsTotal.WithLabelValues(endpoint, "transport_error").Inc()
			return fmt.Errorf("%s: %w", endpoint, err)
		}
		apiRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode == http.StatusTooManyRequests {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if attempt >= maxRetries {
				return &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint}
			}

			wait := 10 * time.Second
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil {
					wait = time.Duration(secs) * time.Second
				}
			}
			c.log.Warnw("riot rate limit hit", "endpoint", endpoint, "retry_after", wait)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint}
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode %s response: %w", endpoint, err)
		}
		return nil
	}
}

func (c *Client) regionalURL(path string) string {
	return fmt.Sprintf("https://%s.api.riotgames.com%s", c.region, path)
}

func (c *Client) platformURL(path string) string {
	return fmt.Sprintf("https://%s.api.riotgames.com%s", c.platform, path)
}

// GetAccountByRiotID resolves a "gameName#tagLine" Riot ID to an account.
func (c *Client) GetAccountByRiotID(ctx context.Context, gameName, tagLine string) (*Account, error) {
	u := c.regionalURL(fmt.Sprintf("/riot/account/v1/accounts/by-riot-id/%s/%s",
		url.PathEscape(gameName), url.PathEscape(tagLine)))

	var account Account
	if err := c.get(ctx, u, "account-by-riot-id", &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// GetSummonerByPUUID fetches the summoner profile for a PUUID.
func (c *Client) GetSummonerByPUUID(ctx context.Context, puuid string) (*Summoner, error) {
	u := c.platformURL("/lol/summoner/v4/summoners/by-puuid/" + url.PathEscape(puuid))

	var summoner Summoner
	if err := c.get(ctx, u, "summoner-by-puuid", &summoner); err != nil {
		return nil, err
	}
	return &summoner, nil
}

// GetMatchIDs returns the player's most recent match ids, newest first.
func (c *Client) GetMatchIDs(ctx context.Context, puuid string, count int) ([]string, error) {
	u := c.regionalURL(fmt.Sprintf("/lol/match/v5/matches/by-puuid/%s/ids?start=0&count=%d",
		url.PathEscape(puuid), count))

	var ids []string
	if err := c.get(ctx, u, "match-ids", &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetMatch fetches the full match payload.
func (c *Client) GetMatch(ctx context.Context, matchID string) (*models.RawMatch, error) {
	u := c.regionalURL("/lol/match/v5/matches/" + url.PathEscape(matchID))

	var match models.RawMatch
	if err := c.get(ctx, u, "match", &match); err != nil {
		return nil, err
	}
	return &match, nil
}

// GetTimeline fetches the per-minute timeline of a match.
func (c *Client) GetTimeline(ctx context.Context, matchID string) (*models.Timeline, error) {
	u := c.regionalURL("/lol/match/v5/matches/" + url.PathEscape(matchID) + "/timeline")

	var timeline models.Timeline
	if err := c.get(ctx, u, "match-timeline", &timeline); err != nil {
		return nil, err
	}
	return &timeline, nil
}

// GetLeagueEntries returns the player's ranked entries across queues.
func (c *Client) GetLeagueEntries(ctx context.Context, puuid string) ([]LeagueEntry, error) {
	u := c.platformURL("/lol/league/v4/entries/by-puuid/" + url.PathEscape(puuid))

	var entries []LeagueEntry
	if err := c.get(ctx, u, "league-entries", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SoloQueueEntry picks the solo-queue entry from the player's entries, or
// nil when unranked.
func SoloQueueEntry(entries []LeagueEntry) *LeagueEntry {
	for i := range entries {
		if entries[i].QueueType == RankedSoloQueue {
			return &entries[i]
		}
	}
	return nil
}
