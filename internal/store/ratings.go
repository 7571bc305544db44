// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/reelrank/reelrank/internal/metrics"
)

// Rating is one stored (user, movie) rating. Re-rating a movie replaces
// the previous value, only the current snapshot is kept. User IDs are
// opaque strings assigned by the identity provider.
type Rating struct {
	UserID  string    `json:"user_id"`
	MovieID int       `json:"movie_id"`
	Rating  float64   `json:"rating"`
	RatedAt time.Time `json:"rated_at"`
}

// UserStats summarizes a user's rating activity.
type UserStats struct {
	RatingCount   int     `json:"rating_count"`
	AverageRating float64 `json:"average_rating"`
	LikedCount    int     `json:"liked_count"`
}

// UpsertRating records a rating, replacing any previous rating by the same
// user for the same movie.
func (s *Store) UpsertRating(ctx context.Context, userID string, movieID int, rating float64) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQuery("upsert_rating", time.Since(start), err) }()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ratings (user_id, movie_id, rating, rated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, movie_id)
		DO UPDATE SET rating = excluded.rating, rated_at = excluded.rated_at`,
		userID, movieID, rating, now())
	if err != nil {
		return fmt.Errorf("upsert rating user=%s movie=%d: %w", userID, movieID, err)
	}
	return nil
}

// Ratings returns the user's ratings ordered oldest first, so the most
// recent rating is last. The order feeds the recency-based boost seed.
func (s *Store) Ratings(ctx context.Context, userID string) (out []Rating, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQuery("ratings", time.Since(start), err) }()

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, movie_id, rating, rated_at
		FROM ratings
		WHERE user_id = ?
		ORDER BY rated_at ASC, movie_id ASC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query ratings user=%s: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var r Rating
		if err := rows.Scan(&r.UserID, &r.MovieID, &r.Rating, &r.RatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		out = append(out, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return out, nil
}

// Stats returns aggregate rating statistics for the user. A user with no
// ratings gets zero values, not an error.
func (s *Store) Stats(ctx context.Context, userID string, likeThreshold float64) (stats UserStats, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQuery("stats", time.Since(start), err) }()

	var avg sql.NullFloat64

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       AVG(rating),
		       COALESCE(SUM(CASE WHEN rating >= ? THEN 1 ELSE 0 END), 0)
		FROM ratings
		WHERE user_id = ?`,
		likeThreshold, userID).Scan(&stats.RatingCount, &avg, &stats.LikedCount)
	if err != nil {
		return UserStats{}, fmt.Errorf("query stats user=%s: %w", userID, err)
	}

	if avg.Valid {
		stats.AverageRating = avg.Float64
	}
	return stats, nil
}

// DeleteUserData removes every row a user owns across all tables.
func (s *Store) DeleteUserData(ctx context.Context, userID string) (err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQuery("delete_user_data", time.Since(start), err) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete user=%s: %w", userID, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, table := range []string{"ratings", "watchlist", "reviews", "profiles"} {
		//nolint:gosec // table names from a fixed list, not user input
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE user_id = ?", table), userID); err != nil {
			return fmt.Errorf("delete %s user=%s: %w", table, userID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete user=%s: %w", userID, err)
	}

	s.logger.Info().Str("user_id", userID).Msg("user data deleted")
	return nil
}
