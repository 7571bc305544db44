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

// Review is one user-written movie review.
type Review struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	MovieID   int       `json:"movie_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// AddReview stores a review and returns its assigned ID. A user may review
// the same movie multiple times.
func (s *Store) AddReview(ctx context.Context, userID string, movieID int, content string) (id int64, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQuery("add_review", time.Since(start), err) }()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (user_id, movie_id, content, created_at)
		VALUES (?, ?, ?, ?)`,
		userID, movieID, content, now())
	if err != nil {
		return 0, fmt.Errorf("add review user=%s movie=%d: %w", userID, movieID, err)
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("review insert id: %w", err)
	}
	return id, nil
}

// ReviewsForMovie returns a movie's reviews, newest first.
func (s *Store) ReviewsForMovie(ctx context.Context, movieID, limit int) ([]Review, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.queryReviews(ctx, "reviews_for_movie", `
		SELECT id, user_id, movie_id, content, created_at
		FROM reviews
		WHERE movie_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, movieID, limit)
}

// ReviewsByUser returns a user's reviews, newest first.
func (s *Store) ReviewsByUser(ctx context.Context, userID string, limit int) ([]Review, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.queryReviews(ctx, "reviews_by_user", `
		SELECT id, user_id, movie_id, content, created_at
		FROM reviews
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, userID, limit)
}

func (s *Store) queryReviews(ctx context.Context, operation, query string, args ...any) (out []Review, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQuery(operation, time.Since(start), err) }()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.UserID, &r.MovieID, &r.Content, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		out = append(out, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return out, nil
}
