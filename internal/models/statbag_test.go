package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestStatBagCoercion(t *testing.T) {
	payload := []byte(`{
		"kills": 7,
		"goldPerMinute": 412.5,
		"win": true,
		"firstBloodKill": false,
		"riotIdTagline": "1234",
		"championName": "Lux",
		"perks": {"styles": []},
		"items": [1, 2, 3],
		"missing": null
	}`)

	var bag StatBag
	if err := json.Unmarshal(payload, &bag); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := StatBag{
		"kills":          7,
		"goldPerMinute":  412.5,
		"win":            1,
		"firstBloodKill": 0,
		"riotIdTagline":  1234,
	}
	if !reflect.DeepEqual(bag, want) {
		t.Errorf("bag = %v, want %v", bag, want)
	}

	if bag.Has("championName") {
		t.Error("non-numeric string should be dropped")
	}
	if bag.Get("perks") != 0 {
		t.Error("nested object should read as zero")
	}
}

func TestStatBagNilSafe(t *testing.T) {
	var bag StatBag
	if bag.Get("anything") != 0 {
		t.Error("nil bag Get should be 0")
	}
	if bag.Has("anything") {
		t.Error("nil bag Has should be false")
	}
}

func TestRawParticipantUnmarshal(t *testing.T) {
	payload := []byte(`{
		"participantId": 3,
		"puuid": "abc",
		"teamId": 100,
		"teamPosition": "MIDDLE",
		"championId": 99,
		"championName": "Lux",
		"win": true,
		"kills": 9,
		"visionScore": 31,
		"challenges": {"goldPerMinute": 401.2, "skillshotsHit": 22}
	}`)

	var p RawParticipant
	if err := json.Unmarshal(payload, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if p.ParticipantID != 3 || p.PUUID != "abc" || p.ChampionName != "Lux" || !p.Win {
		t.Errorf("header fields = %+v", p)
	}
	if p.Stats.Get("kills") != 9 || p.Stats.Get("visionScore") != 31 {
		t.Errorf("stats bag = %v", p.Stats)
	}
	if p.Challenges.Get("goldPerMinute") != 401.2 || p.Challenges.Get("skillshotsHit") != 22 {
		t.Errorf("challenges bag = %v", p.Challenges)
	}
	// Identity fields also land in the flat bag, where the win flag reads
	// as 1.
	if p.Stats.Get("win") != 1 {
		t.Errorf("stats win = %v, want 1", p.Stats.Get("win"))
	}
}

func TestRawParticipantStorageRoundTrip(t *testing.T) {
	original := RawParticipant{
		ParticipantID: 4,
		PUUID:         "abc",
		TeamID:        200,
		TeamPosition:  "BOTTOM",
		ChampionID:    81,
		ChampionName:  "Ezreal",
		Win:           true,
		Stats:         StatBag{"kills": 6, "spell1Casts": 88, "goldEarned": 13500},
		Challenges:    StatBag{"skillshotsHit": 40, "soloKills": 2},
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var restored RawParticipant
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if restored.PUUID != "abc" || restored.ChampionName != "Ezreal" || !restored.Win {
		t.Errorf("header fields lost: %+v", restored)
	}
	if restored.Stats.Get("spell1Casts") != 88 || restored.Stats.Get("goldEarned") != 13500 {
		t.Errorf("stats bag lost through storage: %v", restored.Stats)
	}
	if restored.Challenges.Get("skillshotsHit") != 40 {
		t.Errorf("challenges bag lost through storage: %v", restored.Challenges)
	}
}

func TestEnemyLaner(t *testing.T) {
	m := &RawMatch{Info: MatchInfo{Participants: []RawParticipant{
		{PUUID: "me", TeamID: 100, TeamPosition: "MIDDLE"},
		{PUUID: "ally", TeamID: 100, TeamPosition: "TOP"},
		{PUUID: "foe-top", TeamID: 200, TeamPosition: "TOP"},
		{PUUID: "foe-mid", TeamID: 200, TeamPosition: "MIDDLE"},
	}}}

	enemy := m.EnemyLaner(100, "MIDDLE")
	if enemy == nil || enemy.PUUID != "foe-mid" {
		t.Errorf("enemy = %+v, want foe-mid", enemy)
	}

	// ARAM-style matches carry no lane assignment.
	if got := m.EnemyLaner(100, ""); got != nil {
		t.Errorf("empty role should have no laner, got %+v", got)
	}
	if got := m.EnemyLaner(100, "JUNGLE"); got != nil {
		t.Errorf("missing role should have no laner, got %+v", got)
	}
}

func TestNewParticipantRecord(t *testing.T) {
	m := &RawMatch{
		Metadata: MatchMetadata{MatchID: "NA1_42"},
		Info: MatchInfo{
			GameCreation: 1700000000000,
			GameDuration: 2100,
			QueueID:      420,
			Participants: []RawParticipant{{
				ParticipantID: 2, PUUID: "abc", TeamID: 100,
				ChampionName: "Lux", Win: true,
				Stats:      StatBag{"kills": 4, "deaths": 1, "assists": 11, "totalMinionsKilled": 180, "visionScore": 28, "totalDamageDealtToChampions": 21000},
				Challenges: StatBag{"goldPerMinute": 390.5},
			}},
		},
	}

	rec := NewParticipantRecord(m, &m.Info.Participants[0])
	if rec.MatchID != "NA1_42" || rec.QueueID != 420 || rec.GameDuration != 2100 {
		t.Errorf("match fields = %+v", rec)
	}
	if rec.Kills != 4 || rec.Deaths != 1 || rec.Assists != 11 {
		t.Errorf("kda fields = %d/%d/%d", rec.Kills, rec.Deaths, rec.Assists)
	}
	if rec.GoldPerMinute != 390.5 || rec.TotalMinionsKilled != 180 {
		t.Errorf("economy fields = %v/%d", rec.GoldPerMinute, rec.TotalMinionsKilled)
	}
	if rec.Raw != m {
		t.Error("record should retain the raw match")
	}
}
