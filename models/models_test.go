package models

import (
	"testing"
	"time"
)

func TestLeadingName(t *testing.T) {
	if got := LeadingName(nil); got != "" {
		t.Errorf("empty board: %q", got)
	}
	if got := LeadingName([]Standing{{"ann", 0}, {"bob", 0}}); got != "" {
		t.Errorf("nobody scored: %q, want empty", got)
	}
	if got := LeadingName([]Standing{{"ann", 3}, {"bob", 1}}); got != "ann" {
		t.Errorf("leader = %q, want ann", got)
	}
}

func TestGormGameRecord_RoundTrip(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	in := &GameRecord{
		RoomCode:   "4821",
		ContentID:  "sample",
		Scoring:    "closest",
		Questions:  5,
		Winner:     "ann",
		Players:    2,
		Scoreboard: []Standing{{"ann", 3}, {"bob", 2}},
		StartedAt:  start,
		EndedAt:    start.Add(4 * time.Minute),
	}

	row := NewGormGameRecord(in)
	row.ID = 7
	out := row.Record()

	if out.ID != 7 || out.RoomCode != "4821" || out.Winner != "ann" || len(out.Scoreboard) != 2 {
		t.Errorf("Record() = %+v", out)
	}
	if out.Duration() != 4*time.Minute {
		t.Errorf("Duration() = %s, want 4m", out.Duration())
	}
	if (GormGameRecord{}).TableName() != "game_records" {
		t.Error("unexpected table name")
	}
}
