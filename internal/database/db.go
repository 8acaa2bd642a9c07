package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"todo-bills/internal/config"
	"todo-bills/pkg/logger"
)

var (
	pool *sql.DB
	once sync.Once
)

// DB returns the shared Postgres pool, opening it on first use. It is nil
// when DATABASE_URL is unset or the server does not answer.
func DB(ctx context.Context) *sql.DB {
	once.Do(func() {
		cfg := config.Get()
		if cfg.DatabaseURL == "" {
			logger.Error(ctx, "DATABASE_URL is not set")
			return
		}
		db, err := Open(ctx, cfg.DatabaseURL, cfg.DBPoolSize)
		if err != nil {
			logger.Error(ctx, "Failed to open database", "error", err)
			return
		}
		pool = db
		logger.Info(ctx, "Database pool initialized", "max_open", cfg.DBPoolSize)
	})
	return pool
}

// Open connects to dsn, sizes the pool and checks the server is reachable.
func Open(ctx context.Context, dsn string, poolSize int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	poolSize = max(poolSize, 1)
	db.SetMaxOpenConns(poolSize)
	db.SetMaxIdleConns(max(poolSize/2, 1))
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
