// models/models.go
package models

import (
	"time"
)

// Standing is one line of a final scoreboard.
type Standing struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// GameRecord is a finished game kept in the archive.
type GameRecord struct {
	ID         uint       `json:"id"`
	RoomCode   string     `json:"room_code"`
	ContentID  string     `json:"content_id"`
	Scoring    string     `json:"scoring"`
	Questions  int        `json:"questions"`
	Winner     string     `json:"winner,omitempty"`
	Players    int        `json:"players"`
	Scoreboard []Standing `json:"scoreboard"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    time.Time  `json:"ended_at"`
}

// Duration is how long the game ran.
func (g *GameRecord) Duration() time.Duration {
	return g.EndedAt.Sub(g.StartedAt)
}

// LeadingName returns the top scorer's name, or "" if nobody scored.
func LeadingName(board []Standing) string {
	if len(board) == 0 || board[0].Score == 0 {
		return ""
	}
	return board[0].Name
}
