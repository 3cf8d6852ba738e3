package models

// Timeline is the match-v5 timeline payload: one frame per minute with a
// positional and economic snapshot per participant.
type Timeline struct {
	Metadata TimelineMetadata `json:"metadata"`
	Info     TimelineInfo     `json:"info"`
}

type TimelineMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"`
}

type TimelineInfo struct {
	FrameInterval int64           `json:"frameInterval"`
	Frames        []TimelineFrame `json:"frames"`
}

// TimelineFrame holds one minute's snapshots, keyed by participant id
// string ("1".."10").
type TimelineFrame struct {
	Timestamp         int64                       `json:"timestamp"` // millis since game start
	ParticipantFrames map[string]ParticipantFrame `json:"participantFrames"`
}

type ParticipantFrame struct {
	Position            Position `json:"position"`
	TotalGold           float64  `json:"totalGold"`
	XP                  float64  `json:"xp"`
	Level               int      `json:"level"`
	MinionsKilled       int      `json:"minionsKilled"`
	JungleMinionsKilled int      `json:"jungleMinionsKilled"`
}

// Position is a map coordinate in game units.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
