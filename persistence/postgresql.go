// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/wfunc/quizroom/models"
)

// PostgreSQL is the raw database/sql archive on lib/pq.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(dsn string) (*PostgreSQL, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS game_records (
            id SERIAL PRIMARY KEY,
            room_code VARCHAR(8) NOT NULL,
            content_id VARCHAR(64) NOT NULL,
            scoring VARCHAR(16) NOT NULL,
            questions INTEGER NOT NULL DEFAULT 0,
            winner VARCHAR(64),
            players INTEGER NOT NULL DEFAULT 0,
            scoreboard JSONB NOT NULL,
            started_at TIMESTAMPTZ NOT NULL,
            ended_at TIMESTAMPTZ NOT NULL,
            created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
        CREATE INDEX IF NOT EXISTS idx_game_records_room_code ON game_records(room_code);
        CREATE INDEX IF NOT EXISTS idx_game_records_ended_at ON game_records(ended_at);
    `)
	return err
}

func (p *PostgreSQL) SaveGameRecord(ctx context.Context, record *models.GameRecord) error {
	board, err := json.Marshal(record.Scoreboard)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO game_records (room_code, content_id, scoring, questions, winner, players, scoreboard, started_at, ended_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id
    `
	var id int64
	err = p.db.QueryRowContext(ctx, query,
		record.RoomCode, record.ContentID, record.Scoring, record.Questions,
		record.Winner, record.Players, board, record.StartedAt, record.EndedAt,
	).Scan(&id)
	if err != nil {
		return err
	}
	record.ID = uint(id)
	return nil
}

const selectRecord = `
        SELECT id, room_code, content_id, scoring, questions, COALESCE(winner, ''), players, scoreboard, started_at, ended_at
        FROM game_records
    `

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.GameRecord, error) {
	var (
		r     models.GameRecord
		id    int64
		board []byte
	)
	if err := row.Scan(&id, &r.RoomCode, &r.ContentID, &r.Scoring, &r.Questions, &r.Winner, &r.Players, &board, &r.StartedAt, &r.EndedAt); err != nil {
		return nil, err
	}
	r.ID = uint(id)
	if err := json.Unmarshal(board, &r.Scoreboard); err != nil {
		return nil, fmt.Errorf("decoding scoreboard of record %d: %w", id, err)
	}
	return &r, nil
}

func (p *PostgreSQL) GetGameRecord(ctx context.Context, id uint) (*models.GameRecord, error) {
	r, err := scanRecord(p.db.QueryRowContext(ctx, selectRecord+" WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	return r, err
}

func (p *PostgreSQL) RecentGameRecords(ctx context.Context, limit int) ([]models.GameRecord, error) {
	rows, err := p.db.QueryContext(ctx, selectRecord+" ORDER BY ended_at DESC, id DESC LIMIT $1", clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.GameRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
