package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"mori/model"
)

// ModelUsage is the per-model slice of a UsageSummary
type ModelUsage struct {
	Model  string `json:"model"`
	Turns  int    `json:"turns"`
	Failed int    `json:"failed"`
}

// UsageSummary aggregates the ledger. No message text is ever stored.
type UsageSummary struct {
	Turns         int          `json:"turns"`
	Failed        int          `json:"failed"`
	Sessions      int          `json:"sessions"`
	AvgDurationMS int64        `json:"avg_duration_ms"`
	ByModel       []ModelUsage `json:"by_model"`
}

// UsageLedger records turn metadata in sqlite. It implements
// model.TurnRecorder.
type UsageLedger struct {
	db *sql.DB
}

// OpenUsageLedger opens (or creates) <dataDir>/usage.db.
func OpenUsageLedger(dataDir string) (*UsageLedger, error) {
	return NewUsageLedger(filepath.Join(dataDir, "usage.db"))
}

func NewUsageLedger(dbPath string) (*UsageLedger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer avoids SQLITE_BUSY under concurrent turns.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	ledger := &UsageLedger{db: db}

	if err := ledger.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return ledger, nil
}

func (l *UsageLedger) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS turns (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		model TEXT NOT NULL,
		prompt_chars INTEGER NOT NULL,
		reply_chars INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		failed INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_model ON turns(model);
	`

	_, err := l.db.Exec(schema)
	return err
}

// RecordTurn implements model.TurnRecorder.
func (l *UsageLedger) RecordTurn(ctx context.Context, rec model.TurnRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	failed := 0
	if rec.Failed {
		failed = 1
	}

	query := `
	INSERT INTO turns (id, session_id, model, prompt_chars, reply_chars, duration_ms, failed, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := l.db.ExecContext(ctx, query,
		uuid.New().String(),
		rec.SessionID,
		rec.Model,
		rec.PromptChars,
		rec.ReplyChars,
		rec.Duration.Milliseconds(),
		failed,
		rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record turn: %w", err)
	}
	return nil
}

// Summary aggregates every recorded turn.
func (l *UsageLedger) Summary(ctx context.Context) (UsageSummary, error) {
	var sum UsageSummary

	row := l.db.QueryRowContext(ctx, `
	SELECT COUNT(*), COALESCE(SUM(failed), 0), COUNT(DISTINCT session_id), COALESCE(AVG(duration_ms), 0)
	FROM turns
	`)
	var avg float64
	if err := row.Scan(&sum.Turns, &sum.Failed, &sum.Sessions, &avg); err != nil {
		return sum, fmt.Errorf("failed to summarise turns: %w", err)
	}
	sum.AvgDurationMS = int64(avg)

	rows, err := l.db.QueryContext(ctx, `
	SELECT model, COUNT(*), COALESCE(SUM(failed), 0)
	FROM turns
	GROUP BY model
	ORDER BY COUNT(*) DESC, model ASC
	`)
	if err != nil {
		return sum, fmt.Errorf("failed to summarise models: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var mu ModelUsage
		if err := rows.Scan(&mu.Model, &mu.Turns, &mu.Failed); err != nil {
			return sum, err
		}
		sum.ByModel = append(sum.ByModel, mu)
	}

	return sum, rows.Err()
}

func (l *UsageLedger) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}
