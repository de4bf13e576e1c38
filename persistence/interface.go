// persistence/interface.go
package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/wfunc/quizroom/config"
	"github.com/wfunc/quizroom/models"
)

// Database archives finished games.
type Database interface {
	SaveGameRecord(ctx context.Context, record *models.GameRecord) error
	GetGameRecord(ctx context.Context, id uint) (*models.GameRecord, error)
	RecentGameRecords(ctx context.Context, limit int) ([]models.GameRecord, error)
	Close() error
}

var (
	ErrRecordNotFound = errors.New("record not found")
)

// Open picks the archive backend from configuration. A disabled database
// yields the in-memory archive.
func Open(cfg config.DatabaseConfig) (Database, error) {
	if !cfg.Enabled {
		return NewMemory(), nil
	}
	switch cfg.Driver {
	case "gorm":
		return NewGormPostgreSQL(cfg.Postgres.DSN())
	case "pq":
		return NewPostgreSQL(cfg.Postgres.DSN())
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
