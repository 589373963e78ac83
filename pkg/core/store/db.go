// Package store persists analysis runs (the LinkedModel and its scenario
// forecasts) to Postgres, with a file-based fallback for local use.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool    *pgxpool.Pool
	once    sync.Once
	initErr error
)

// InitDB initializes the shared connection pool from the supplied URL.
// Only the first call connects; later calls return the first outcome.
// Callers decide where the URL comes from (flag, env, config file).
func InitDB(ctx context.Context, dbURL string) error {
	if dbURL == "" {
		return fmt.Errorf("store: database url is empty")
	}

	once.Do(func() {
		config, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			initErr = fmt.Errorf("parse database config: %w", err)
			return
		}
		pool, initErr = pgxpool.NewWithConfig(ctx, config)
	})
	return initErr
}

// GetPool returns the shared connection pool, nil when InitDB has not run
// or failed.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close releases the connection pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
