// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/reelrank/reelrank/internal/metrics"
)

// Watchlist statuses.
const (
	WatchStatusPlanToWatch = "plan_to_watch"
	WatchStatusWatched     = "watched"
)

// WatchlistEntry is one movie on a user's watchlist.
type WatchlistEntry struct {
	UserID  string    `json:"user_id"`
	MovieID int       `json:"movie_id"`
	Status  string    `json:"status"`
	AddedAt time.Time `json:"added_at"`
}

// ValidWatchStatus reports whether status is a known watchlist status.
func ValidWatchStatus(status string) bool {
	return status == WatchStatusPlanToWatch || status == WatchStatusWatched
}

// SetWatchlist adds a movie to the user's watchlist or updates its status.
func (s *Store) SetWatchlist(ctx context.Context, userID string, movieID int, status string) (err error) {
	if !ValidWatchStatus(status) {
		return fmt.Errorf("invalid watchlist status %q", status)
	}

	start := time.Now()
	defer func() { metrics.RecordStoreQuery("set_watchlist", time.Since(start), err) }()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO watchlist (user_id, movie_id, status, added_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, movie_id)
		DO UPDATE SET status = excluded.status`,
		userID, movieID, status, now())
	if err != nil {
		return fmt.Errorf("set watchlist user=%s movie=%d: %w", userID, movieID, err)
	}
	return nil
}

// Watchlist returns the user's watchlist, most recently added first.
func (s *Store) Watchlist(ctx context.Context, userID string) (out []WatchlistEntry, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQuery("watchlist", time.Since(start), err) }()

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, movie_id, status, added_at
		FROM watchlist
		WHERE user_id = ?
		ORDER BY added_at DESC, movie_id ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query watchlist user=%s: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var e WatchlistEntry
		if err := rows.Scan(&e.UserID, &e.MovieID, &e.Status, &e.AddedAt); err != nil {
			return nil, fmt.Errorf("scan watchlist entry: %w", err)
		}
		out = append(out, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchlist: %w", err)
	}
	return out, nil
}

// RemoveFromWatchlist deletes a movie from the user's watchlist. Removing
// an absent movie is not an error.
func (s *Store) RemoveFromWatchlist(ctx context.Context, userID string, movieID int) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQuery("remove_watchlist", time.Since(start), err) }()

	_, err = s.db.ExecContext(ctx,
		"DELETE FROM watchlist WHERE user_id = ? AND movie_id = ?",
		userID, movieID)
	if err != nil {
		return fmt.Errorf("remove watchlist user=%s movie=%d: %w", userID, movieID, err)
	}
	return nil
}
