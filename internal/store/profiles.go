// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/reelrank/reelrank/internal/metrics"
)

// ErrNotFound marks a lookup that matched no row.
var ErrNotFound = errors.New("not found")

// Profile is a user's display profile. FavoriteGenres also seeds the
// onboarding recommendation flow.
type Profile struct {
	UserID         string    `json:"user_id"`
	DisplayName    string    `json:"display_name"`
	FavoriteGenres []string  `json:"favorite_genres"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UpsertProfile creates or replaces a user's profile.
func (s *Store) UpsertProfile(ctx context.Context, p Profile) (err error) {
	genres, err := json.Marshal(p.FavoriteGenres)
	if err != nil {
		return fmt.Errorf("encode favorite genres: %w", err)
	}

	start := time.Now()
	defer func() { metrics.RecordStoreQuery("upsert_profile", time.Since(start), err) }()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, display_name, favorite_genres, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id)
		DO UPDATE SET display_name = excluded.display_name,
		              favorite_genres = excluded.favorite_genres,
		              updated_at = excluded.updated_at`,
		p.UserID, p.DisplayName, string(genres), now())
	if err != nil {
		return fmt.Errorf("upsert profile user=%s: %w", p.UserID, err)
	}
	return nil
}

// Profile returns a user's profile, or ErrNotFound.
func (s *Store) Profile(ctx context.Context, userID string) (p Profile, err error) {
	start := time.Now()
	defer func() {
		// An absent profile is an expected outcome, not a query error.
		qerr := err
		if errors.Is(qerr, ErrNotFound) {
			qerr = nil
		}
		metrics.RecordStoreQuery("profile", time.Since(start), qerr)
	}()

	var genres string

	err = s.db.QueryRowContext(ctx, `
		SELECT user_id, display_name, favorite_genres, updated_at
		FROM profiles
		WHERE user_id = ?`,
		userID).Scan(&p.UserID, &p.DisplayName, &genres, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, fmt.Errorf("profile user=%s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return Profile{}, fmt.Errorf("query profile user=%s: %w", userID, err)
	}

	if err = json.Unmarshal([]byte(genres), &p.FavoriteGenres); err != nil {
		return Profile{}, fmt.Errorf("decode favorite genres user=%s: %w", userID, err)
	}
	return p, nil
}
