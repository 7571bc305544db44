// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package store provides SQLite persistence for user state: ratings,
// watchlists, reviews, and profiles.
//
// The recommendation artifacts (catalog, similarity, estimator) are
// deliberately not stored here; they are immutable files loaded at startup.
// Only user-generated state lives in the database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/reelrank/reelrank/internal/metrics"
)

// Store handles SQLite persistence. All methods are safe for concurrent
// use; database/sql serializes access through its connection pool.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open opens or creates the database at dbPath and applies the schema.
// Pass ":memory:" for an ephemeral in-memory database.
func Open(dbPath string, logger zerolog.Logger) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Shared cache so all pooled connections see the same database.
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{
		db:     db,
		logger: logger.With().Str("component", "store").Logger(),
	}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	s.logger.Info().Str("path", dbPath).Msg("database ready")
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ratings (
		user_id TEXT NOT NULL,
		movie_id INTEGER NOT NULL,
		rating REAL NOT NULL,
		rated_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, movie_id)
	);

	CREATE INDEX IF NOT EXISTS idx_ratings_user ON ratings(user_id, rated_at);

	CREATE TABLE IF NOT EXISTS watchlist (
		user_id TEXT NOT NULL,
		movie_id INTEGER NOT NULL,
		status TEXT NOT NULL,
		added_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, movie_id)
	);

	CREATE TABLE IF NOT EXISTS reviews (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		movie_id INTEGER NOT NULL,
		content TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reviews_movie ON reviews(movie_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_reviews_user ON reviews(user_id, created_at);

	CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		favorite_genres TEXT NOT NULL DEFAULT '[]',
		updated_at DATETIME NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Checkpoint flushes the WAL into the main database file and truncates
// the log. Run periodically so an idle service does not accumulate an
// unbounded WAL. A no-op for in-memory databases.
func (s *Store) Checkpoint(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQuery("checkpoint", time.Since(start), err) }()

	if _, err = s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("wal checkpoint: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// now returns the current UTC time truncated to the second, the precision
// stored in DATETIME columns.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
