// services/history_service.go
package services

import (
	"context"
	"sync"
	"time"

	"github.com/wfunc/quizroom/logger"
	"github.com/wfunc/quizroom/models"
	"github.com/wfunc/quizroom/persistence"
	"github.com/wfunc/quizroom/room"
)

const (
	historyQueueSize = 64
	saveTimeout      = 5 * time.Second
)

// HistoryService archives finished games off the room goroutines.
type HistoryService struct {
	db     persistence.Database
	queue  chan *models.GameRecord
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewHistoryService(db persistence.Database) *HistoryService {
	s := &HistoryService{
		db:    db,
		queue: make(chan *models.GameRecord, historyQueueSize),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// RecordGame queues a finished game. It never blocks; a full queue drops the record.
func (s *HistoryService) RecordGame(summary room.GameSummary) {
	record := NewGameRecord(summary)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		logger.Log.Warnw("History service closed, dropping game record", "room", summary.RoomCode)
		return
	}
	select {
	case s.queue <- record:
	default:
		logger.Log.Warnw("History queue full, dropping game record", "room", summary.RoomCode)
	}
}

func NewGameRecord(summary room.GameSummary) *models.GameRecord {
	board := make([]models.Standing, 0, len(summary.Scoreboard))
	for _, s := range summary.Scoreboard {
		board = append(board, models.Standing{Name: s.Name, Score: s.Score})
	}
	return &models.GameRecord{
		RoomCode:   summary.RoomCode,
		ContentID:  summary.ContentID,
		Scoring:    summary.Scoring,
		Questions:  summary.Questions,
		Winner:     models.LeadingName(board),
		Players:    len(board),
		Scoreboard: board,
		StartedAt:  summary.StartedAt,
		EndedAt:    summary.EndedAt,
	}
}

func (s *HistoryService) run() {
	defer s.wg.Done()
	for record := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		if err := s.db.SaveGameRecord(ctx, record); err != nil {
			logger.Log.Errorw("Failed to save game record", "room", record.RoomCode, "error", err)
		} else {
			logger.Log.Infow("Game archived", "room", record.RoomCode, "id", record.ID, "winner", record.Winner)
		}
		cancel()
	}
}

func (s *HistoryService) Recent(ctx context.Context, limit int) ([]models.GameRecord, error) {
	return s.db.RecentGameRecords(ctx, limit)
}

func (s *HistoryService) Get(ctx context.Context, id uint) (*models.GameRecord, error) {
	return s.db.GetGameRecord(ctx, id)
}

// Close drains queued records and stops the worker.
func (s *HistoryService) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
