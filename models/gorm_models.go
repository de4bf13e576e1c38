// models/gorm_models.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// GormGameRecord is the gorm row for a finished game.
type GormGameRecord struct {
	gorm.Model
	RoomCode   string     `gorm:"index;not null"`
	ContentID  string     `gorm:"not null"`
	Scoring    string     `gorm:"not null"`
	Questions  int        `gorm:"default:0"`
	Winner     string     `gorm:"size:64"`
	Players    int        `gorm:"default:0"`
	Scoreboard []Standing `gorm:"serializer:json;type:jsonb"`
	StartedAt  time.Time  `gorm:"not null"`
	EndedAt    time.Time  `gorm:"index;not null"`
}

func (GormGameRecord) TableName() string {
	return "game_records"
}

func NewGormGameRecord(r *GameRecord) *GormGameRecord {
	return &GormGameRecord{
		RoomCode:   r.RoomCode,
		ContentID:  r.ContentID,
		Scoring:    r.Scoring,
		Questions:  r.Questions,
		Winner:     r.Winner,
		Players:    r.Players,
		Scoreboard: r.Scoreboard,
		StartedAt:  r.StartedAt,
		EndedAt:    r.EndedAt,
	}
}

func (g *GormGameRecord) Record() GameRecord {
	return GameRecord{
		ID:         g.ID,
		RoomCode:   g.RoomCode,
		ContentID:  g.ContentID,
		Scoring:    g.Scoring,
		Questions:  g.Questions,
		Winner:     g.Winner,
		Players:    g.Players,
		Scoreboard: g.Scoreboard,
		StartedAt:  g.StartedAt,
		EndedAt:    g.EndedAt,
	}
}
