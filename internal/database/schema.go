package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"todo-bills/pkg/logger"
)

// schema is applied statement by statement; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS todos (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title       VARCHAR(200) NOT NULL,
		description VARCHAR(1000),
		due_date    DATE,
		completed   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS todos_user_order_idx ON todos (user_id, completed, due_date, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS bills (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title       VARCHAR(200) NOT NULL,
		description VARCHAR(1000),
		amount      NUMERIC(8,2) NOT NULL CHECK (amount > 0),
		due_date    DATE,
		paid        BOOLEAN NOT NULL DEFAULT FALSE,
		paid_date   TIMESTAMPTZ,
		attachments TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS bills_user_order_idx ON bills (user_id, paid, due_date, created_at DESC)`,
}

// ErrNoDatabase is returned when the pool could not be initialized.
var ErrNoDatabase = errors.New("database not available")

// MigrateOrCreateSchema creates the tables and indexes if they are missing.
func MigrateOrCreateSchema(ctx context.Context) error {
	return Migrate(ctx, DB(ctx))
}

// Migrate applies the schema to db.
func Migrate(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return ErrNoDatabase
	}
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	logger.Info(ctx, "Database schema ensured", "statements", len(schema))
	return nil
}
