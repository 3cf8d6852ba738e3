// Package store persists users, raw matches, and per-participant records in
// Postgres. Matches are written once and never mutated; analysis reads them
// back as canonical participant records.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/riftlens/analysis-api/internal/models"
)

type Store struct {
	pool *pgxpool.Pool
	log  *zap.SugaredLogger
}

// New connects the pool and verifies the database is reachable.
func New(ctx context.Context, dsn string, log *zap.SugaredLogger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// Ping reports database health for the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	puuid            TEXT PRIMARY KEY,
	game_name        TEXT NOT NULL,
	tag_line         TEXT NOT NULL,
	region           TEXT NOT NULL,
	profile_icon_id  INT NOT NULL DEFAULT 0,
	summoner_level   INT NOT NULL DEFAULT 0,
	last_updated     TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (game_name, tag_line, region)
);

CREATE TABLE IF NOT EXISTS matches (
	match_id      TEXT PRIMARY KEY,
	game_creation BIGINT NOT NULL,
	game_duration BIGINT NOT NULL,
	game_version  TEXT NOT NULL DEFAULT '',
	queue_id      INT NOT NULL DEFAULT 0,
	data          JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS participants (
	id             BIGSERIAL PRIMARY KEY,
	match_id       TEXT NOT NULL REFERENCES matches(match_id) ON DELETE CASCADE,
	puuid          TEXT NOT NULL,
	participant_id INT NOT NULL,
	team_id        INT NOT NULL,
	champion_id    INT NOT NULL,
	champion_name  TEXT NOT NULL,
	team_position  TEXT NOT NULL DEFAULT '',
	win            BOOLEAN NOT NULL,
	kills          INT NOT NULL DEFAULT 0,
	deaths         INT NOT NULL DEFAULT 0,
	assists        INT NOT NULL DEFAULT 0,
	gold_per_minute          DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_minions_killed     INT NOT NULL DEFAULT 0,
	vision_score             DOUBLE PRECISION NOT NULL DEFAULT 0,
	damage_dealt_to_champions INT NOT NULL DEFAULT 0,
	stats      JSONB NOT NULL,
	challenges JSONB NOT NULL,
	UNIQUE (match_id, puuid)
);

CREATE INDEX IF NOT EXISTS idx_participants_puuid ON participants (puuid);
`

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// GetUserByRiotID returns the tracked user, or nil when unknown.
func (s *Store) GetUserByRiotID(ctx context.Context, gameName, tagLine, region string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT puuid, game_name, tag_line, region, profile_icon_id, summoner_level
		FROM users
		WHERE game_name = $1 AND tag_line = $2 AND region = $3`,
		gameName, tagLine, region)

	var u models.User
	err := row.Scan(&u.PUUID, &u.GameName, &u.TagLine, &u.Region, &u.ProfileIconID, &u.SummonerLevel)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// UpsertUser inserts or refreshes the user keyed by PUUID.
func (s *Store) UpsertUser(ctx context.Context, u *models.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (puuid, game_name, tag_line, region, profile_icon_id, summoner_level, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (puuid) DO UPDATE SET
			game_name = EXCLUDED.game_name,
			tag_line = EXCLUDED.tag_line,
			region = EXCLUDED.region,
			profile_icon_id = EXCLUDED.profile_icon_id,
			summoner_level = EXCLUDED.summoner_level,
			last_updated = now()`,
		u.PUUID, u.GameName, u.TagLine, u.Region, u.ProfileIconID, u.SummonerLevel)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// ExistingMatchIDs reports which of the given match ids are already stored.
func (s *Store) ExistingMatchIDs(ctx context.Context, matchIDs []string) (map[string]bool, error) {
	if len(matchIDs) == 0 {
		return map[string]bool{}, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT match_id FROM matches WHERE match_id = ANY($1)`, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("check existing matches: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool, len(matchIDs))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan match id: %w", err)
		}
		existing[id] = true
	}
	return existing, rows.Err()
}

// SaveMatch stores the raw payload and one participant row per player.
// Replaying an already-stored match is a no-op.
func (s *Store) SaveMatch(ctx context.Context, m *models.RawMatch) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal match %s: %w", m.Metadata.MatchID, err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save match: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO matches (match_id, game_creation, game_duration, game_version, queue_id, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (match_id) DO NOTHING`,
		m.Metadata.MatchID, m.Info.GameCreation, m.Info.GameDuration, m.Info.GameVersion, m.Info.QueueID, data)
	if err != nil {
		return fmt.Errorf("insert match %s: %w", m.Metadata.MatchID, err)
	}
	if tag.RowsAffected() == 0 {
		s.log.Debugw("match already stored", "match_id", m.Metadata.MatchID)
		return nil
	}

	for i := range m.Info.Participants {
		p := &m.Info.Participants[i]
		statsJSON, err := json.Marshal(p.Stats)
		if err != nil {
			return fmt.Errorf("marshal stats: %w", err)
		}
		challengesJSON, err := json.Marshal(p.Challenges)
		if err != nil {
			return fmt.Errorf("marshal challenges: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO participants (
				match_id, puuid, participant_id, team_id, champion_id, champion_name,
				team_position, win, kills, deaths, assists,
				gold_per_minute, total_minions_killed, vision_score, damage_dealt_to_champions,
				stats, challenges)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			ON CONFLICT (match_id, puuid) DO NOTHING`,
			m.Metadata.MatchID, p.PUUID, p.ParticipantID, p.TeamID, p.ChampionID, p.ChampionName,
			p.TeamPosition, p.Win,
			int(p.Stats.Get("kills")), int(p.Stats.Get("deaths")), int(p.Stats.Get("assists")),
			p.Challenges.Get("goldPerMinute"), int(p.Stats.Get("totalMinionsKilled")),
			p.Stats.Get("visionScore"), int(p.Stats.Get("totalDamageDealtToChampions")),
			statsJSON, challengesJSON)
		if err != nil {
			return fmt.Errorf("insert participant %s/%s: %w", m.Metadata.MatchID, p.PUUID, err)
		}
	}

	return tx.Commit(ctx)
}

// LoadPlayerRecords returns the player's stored records newest first, each
// carrying the raw match for opponent-relative derivations.
func (s *Store) LoadPlayerRecords(ctx context.Context, puuid string, limit int) ([]models.ParticipantRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.match_id, p.puuid, p.participant_id, p.team_id, p.champion_id, p.champion_name,
		       p.team_position, p.win, p.kills, p.deaths, p.assists,
		       p.gold_per_minute, p.total_minions_killed, p.vision_score, p.damage_dealt_to_champions,
		       p.stats, p.challenges,
		       m.game_creation, m.game_duration, m.queue_id, m.data
		FROM participants p
		JOIN matches m ON m.match_id = p.match_id
		WHERE p.puuid = $1
		ORDER BY m.game_creation DESC
		LIMIT $2`, puuid, limit)
	if err != nil {
		return nil, fmt.Errorf("load player records: %w", err)
	}
	defer rows.Close()

	var records []models.ParticipantRecord
	for rows.Next() {
		var rec models.ParticipantRecord
		var statsJSON, challengesJSON, matchJSON []byte
		err := rows.Scan(
			&rec.MatchID, &rec.PUUID, &rec.ParticipantID, &rec.TeamID, &rec.ChampionID, &rec.ChampionName,
			&rec.TeamPosition, &rec.Win, &rec.Kills, &rec.Deaths, &rec.Assists,
			&rec.GoldPerMinute, &rec.TotalMinionsKilled, &rec.VisionScore, &rec.DamageDealtToChampions,
			&statsJSON, &challengesJSON,
			&rec.GameCreation, &rec.GameDuration, &rec.QueueID, &matchJSON)
		if err != nil {
			return nil, fmt.Errorf("scan player record: %w", err)
		}

		if err := json.Unmarshal(statsJSON, &rec.Stats); err != nil {
			return nil, fmt.Errorf("decode stats for %s: %w", rec.MatchID, err)
		}
		if err := json.Unmarshal(challengesJSON, &rec.Challenges); err != nil {
			return nil, fmt.Errorf("decode challenges for %s: %w", rec.MatchID, err)
		}

		var raw models.RawMatch
		if err := json.Unmarshal(matchJSON, &raw); err != nil {
			s.log.Warnw("undecodable raw match, enemy comparisons unavailable",
				"match_id", rec.MatchID, "error", err)
		} else {
			rec.Raw = &raw
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteLatestMatch removes the player's most recent stored match and
// returns its id, so a fresh analysis re-ingests it. Returns empty when the
// player has no matches.
func (s *Store) DeleteLatestMatch(ctx context.Context, puuid string) (string, error) {
	var matchID string
	err := s.pool.QueryRow(ctx, `
		SELECT p.match_id
		FROM participants p
		JOIN matches m ON m.match_id = p.match_id
		WHERE p.puuid = $1
		ORDER BY m.game_creation DESC
		LIMIT 1`, puuid).Scan(&matchID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find latest match: %w", err)
	}

	if _, err := s.pool.Exec(ctx, `DELETE FROM matches WHERE match_id = $1`, matchID); err != nil {
		return "", fmt.Errorf("delete match %s: %w", matchID, err)
	}
	s.log.Infow("deleted latest match", "puuid", puuid, "match_id", matchID)
	return matchID, nil
}

// CountPlayerMatches reports how many matches are stored for the player.
func (s *Store) CountPlayerMatches(ctx context.Context, puuid string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM participants WHERE puuid = $1`, puuid).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count player matches: %w", err)
	}
	return n, nil
}
