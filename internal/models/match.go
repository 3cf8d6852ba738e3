package models

import "encoding/json"

// RawMatch is the full match payload from match-v5, kept verbatim per match
// so opponent-relative figures (enemy skillshot casts, lane opponent stats)
// can be derived later without refetching.
type RawMatch struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"` // PUUIDs
}

type MatchInfo struct {
	GameCreation int64            `json:"gameCreation"`
	GameDuration int64            `json:"gameDuration"` // seconds
	GameVersion  string           `json:"gameVersion"`
	QueueID      int              `json:"queueId"`
	Participants []RawParticipant `json:"participants"`
}

// RawParticipant is one player's slice of the raw match payload, converted
// once at the ingestion boundary: identity fields are typed, every numeric
// top-level stat lands in Stats, and the nested challenge object in
// Challenges. The pipeline never sees any other representation.
type RawParticipant struct {
	ParticipantID int    `json:"participantId"`
	PUUID         string `json:"puuid"`
	TeamID        int    `json:"teamId"`
	TeamPosition  string `json:"teamPosition"` // TOP, JUNGLE, MIDDLE, BOTTOM, UTILITY
	ChampionID    int    `json:"championId"`
	ChampionName  string `json:"championName"`
	Win           bool   `json:"win"`

	Stats      StatBag `json:"-"`
	Challenges StatBag `json:"-"`
}

func (p *RawParticipant) UnmarshalJSON(data []byte) error {
	type header struct {
		ParticipantID int    `json:"participantId"`
		PUUID         string `json:"puuid"`
		TeamID        int    `json:"teamId"`
		TeamPosition  string `json:"teamPosition"`
		ChampionID    int    `json:"championId"`
		ChampionName  string `json:"championName"`
		Win           bool   `json:"win"`
		Challenges    StatBag `json:"challenges"`
	}

	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}

	var stats StatBag
	if err := json.Unmarshal(data, &stats); err != nil {
		return err
	}

	p.ParticipantID = h.ParticipantID
	p.PUUID = h.PUUID
	p.TeamID = h.TeamID
	p.TeamPosition = h.TeamPosition
	p.ChampionID = h.ChampionID
	p.ChampionName = h.ChampionName
	p.Win = h.Win
	p.Stats = stats
	p.Challenges = h.Challenges
	return nil
}

// MarshalJSON re-emits the flat stat bag alongside the typed header fields
// so a stored match round-trips through JSONB without losing any stats.
func (p RawParticipant) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Stats)+8)
	for k, v := range p.Stats {
		out[k] = v
	}
	out["participantId"] = p.ParticipantID
	out["puuid"] = p.PUUID
	out["teamId"] = p.TeamID
	out["teamPosition"] = p.TeamPosition
	out["championId"] = p.ChampionID
	out["championName"] = p.ChampionName
	out["win"] = p.Win
	if len(p.Challenges) > 0 {
		out["challenges"] = p.Challenges
	}
	return json.Marshal(out)
}

// ParticipantByPUUID returns the participant entry for the given player.
func (m *RawMatch) ParticipantByPUUID(puuid string) *RawParticipant {
	for i := range m.Info.Participants {
		if m.Info.Participants[i].PUUID == puuid {
			return &m.Info.Participants[i]
		}
	}
	return nil
}

// EnemyLaner returns the opposing-team participant sharing the given role,
// or nil when the role is empty (ARAM and similar have no lane assignment).
func (m *RawMatch) EnemyLaner(teamID int, role string) *RawParticipant {
	if role == "" {
		return nil
	}
	for i := range m.Info.Participants {
		p := &m.Info.Participants[i]
		if p.TeamID != teamID && p.TeamPosition == role {
			return p
		}
	}
	return nil
}

// ParticipantRecord is one player's performance in one match as stored by
// the persistence layer. Immutable once ingested; the pipeline reads it
// through the layered lookup chain (typed field, stat bag, challenge bag).
type ParticipantRecord struct {
	MatchID       string
	PUUID         string
	ParticipantID int
	TeamID        int
	ChampionID    int
	ChampionName  string
	TeamPosition  string
	Win           bool

	Kills   int
	Deaths  int
	Assists int

	GoldPerMinute          float64
	TotalMinionsKilled     int
	VisionScore            float64
	DamageDealtToChampions int

	Stats      StatBag
	Challenges StatBag

	GameCreation int64 // epoch millis
	GameDuration int64 // seconds
	QueueID      int

	Raw *RawMatch
}

// NewParticipantRecord builds the canonical record for one participant of a
// raw match.
func NewParticipantRecord(m *RawMatch, p *RawParticipant) ParticipantRecord {
	return ParticipantRecord{
		MatchID:       m.Metadata.MatchID,
		PUUID:         p.PUUID,
		ParticipantID: p.ParticipantID,
		TeamID:        p.TeamID,
		ChampionID:    p.ChampionID,
		ChampionName:  p.ChampionName,
		TeamPosition:  p.TeamPosition,
		Win:           p.Win,

		Kills:   int(p.Stats.Get("kills")),
		Deaths:  int(p.Stats.Get("deaths")),
		Assists: int(p.Stats.Get("assists")),

		GoldPerMinute:          p.Challenges.Get("goldPerMinute"),
		TotalMinionsKilled:     int(p.Stats.Get("totalMinionsKilled")),
		VisionScore:            p.Stats.Get("visionScore"),
		DamageDealtToChampions: int(p.Stats.Get("totalDamageDealtToChampions")),

		Stats:      p.Stats,
		Challenges: p.Challenges,

		GameCreation: m.Info.GameCreation,
		GameDuration: m.Info.GameDuration,
		QueueID:      m.Info.QueueID,

		Raw: m,
	}
}

// User is a resolved Riot account tracked by the service.
type User struct {
	PUUID         string `json:"puuid"`
	GameName      string `json:"game_name"`
	TagLine       string `json:"tag_line"`
	Region        string `json:"region"`
	ProfileIconID int    `json:"profile_icon_id"`
	SummonerLevel int    `json:"summoner_level"`
}
