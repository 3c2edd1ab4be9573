// Package archive provides an optional append-only Postgres audit trail of
// accepted submissions and confirmations. Session state itself is volatile
// and never read back from here; the archive exists so moderators can review
// past rounds offline. Every write is best-effort: a database failure is
// logged and never surfaces into update handling.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx postgres driver registered as 'pgx'
)

// Connect opens a Postgres connection for the given DSN. An empty DSN means
// the archive is disabled and (nil, nil) is returned.
func Connect(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, nil
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// Migrate applies idempotent schema changes for the audit tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS submissions (
			id SERIAL PRIMARY KEY,
			round_id TEXT NOT NULL,
			chat_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			display_name TEXT,
			link TEXT,
			handle TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS confirmations (
			id SERIAL PRIMARY KEY,
			round_id TEXT NOT NULL,
			chat_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			display_name TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_round ON submissions(round_id)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_chat ON submissions(chat_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_confirmations_round ON confirmations(round_id)`,
	}
	for i, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("archive migrate step %d failed: %w", i, err)
		}
	}
	return nil
}

// Archive records accepted events. A nil *Archive (or one built over a nil
// DB) is valid and drops everything, so callers never branch on enablement.
type Archive struct {
	db *sql.DB
}

// New wraps an optional database handle. db may be nil.
func New(db *sql.DB) *Archive {
	if db == nil {
		return nil
	}
	return &Archive{db: db}
}

// RecordLink appends one accepted submission.
func (a *Archive) RecordLink(ctx context.Context, roundID string, chatID, userID int64, displayName, link, handle string) {
	if a == nil {
		return
	}
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO submissions (round_id, chat_id, user_id, display_name, link, handle) VALUES ($1,$2,$3,$4,$5,$6)`,
		roundID, chatID, userID, displayName, link, handle)
	if err != nil {
		slog.Error("archive submission insert failed", slog.Any("err", err), slog.Int64("chat_id", chatID))
	}
}

// RecordConfirmation appends one engagement confirmation.
func (a *Archive) RecordConfirmation(ctx context.Context, roundID string, chatID, userID int64, displayName string) {
	if a == nil {
		return
	}
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO confirmations (round_id, chat_id, user_id, display_name) VALUES ($1,$2,$3,$4)`,
		roundID, chatID, userID, displayName)
	if err != nil {
		slog.Error("archive confirmation insert failed", slog.Any("err", err), slog.Int64("chat_id", chatID))
	}
}
