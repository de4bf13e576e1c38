package persistence

import (
	"context"
	"sync"

	"github.com/wfunc/quizroom/models"
)

// Memory keeps game records in process. Used when no database is configured.
type Memory struct {
	mu      sync.RWMutex
	records []models.GameRecord
	nextID  uint
}

func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

func (m *Memory) SaveGameRecord(ctx context.Context, record *models.GameRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	record.ID = m.nextID
	m.nextID++
	stored := *record
	stored.Scoreboard = append([]models.Standing(nil), record.Scoreboard...)
	m.records = append(m.records, stored)
	return nil
}

func (m *Memory) GetGameRecord(ctx context.Context, id uint) (*models.GameRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.records {
		if m.records[i].ID == id {
			r := m.records[i]
			return &r, nil
		}
	}
	return nil, ErrRecordNotFound
}

// RecentGameRecords returns the newest records first.
func (m *Memory) RecentGameRecords(ctx context.Context, limit int) ([]models.GameRecord, error) {
	limit = clampLimit(limit)
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.GameRecord, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *Memory) Close() error {
	return nil
}
