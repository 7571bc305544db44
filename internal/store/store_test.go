// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package store

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/reelrank/reelrank/internal/metrics"
)

// newTestStore opens a fresh file-backed database per test. File-backed
// rather than :memory: so parallel tests never share the process-wide
// shared-cache database.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "test.db"), zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return s
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates schema", func(t *testing.T) {
		t.Parallel()

		s := newTestStore(t)
		if err := s.Ping(context.Background()); err != nil {
			t.Errorf("Ping() error = %v", err)
		}
	})

	t.Run("bad path fails", func(t *testing.T) {
		t.Parallel()

		if _, err := Open(filepath.Join(t.TempDir(), "missing", "nested", "test.db"), zerolog.New(io.Discard)); err == nil {
			t.Error("Open() expected error for unreachable path")
		}
	})
}

func TestStore_Ratings(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	for _, r := range []struct {
		movie  int
		rating float64
	}{
		{movie: 10, rating: 4.5},
		{movie: 11, rating: 2.0},
		{movie: 12, rating: 5.0},
	} {
		if err := s.UpsertRating(ctx, "u1", r.movie, r.rating); err != nil {
			t.Fatalf("UpsertRating() error = %v", err)
		}
	}

	// Another user's rating must not leak into user 1's history.
	if err := s.UpsertRating(ctx, "u2", 10, 1.0); err != nil {
		t.Fatalf("UpsertRating() error = %v", err)
	}

	got, err := s.Ratings(ctx, "u1")
	if err != nil {
		t.Fatalf("Ratings() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Ratings() returned %d rows, want 3", len(got))
	}
	for _, r := range got {
		if r.UserID != "u1" {
			t.Errorf("Ratings() returned user %s's row", r.UserID)
		}
	}

	t.Run("re-rating replaces", func(t *testing.T) {
		if err := s.UpsertRating(ctx, "u1", 10, 3.0); err != nil {
			t.Fatalf("UpsertRating() error = %v", err)
		}

		got, err := s.Ratings(ctx, "u1")
		if err != nil {
			t.Fatalf("Ratings() error = %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("Ratings() returned %d rows after re-rating, want 3", len(got))
		}
		for _, r := range got {
			if r.MovieID == 10 && r.Rating != 3.0 {
				t.Errorf("movie 10 rating = %f, want 3.0", r.Rating)
			}
		}
	})

	t.Run("unknown user yields empty", func(t *testing.T) {
		got, err := s.Ratings(ctx, "ghost")
		if err != nil {
			t.Fatalf("Ratings() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Ratings() returned %d rows, want 0", len(got))
		}
	})
}

func TestStore_Stats(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	for movie, rating := range map[int]float64{10: 5.0, 11: 4.0, 12: 1.0} {
		if err := s.UpsertRating(ctx, "u1", movie, rating); err != nil {
			t.Fatalf("UpsertRating() error = %v", err)
		}
	}

	stats, err := s.Stats(ctx, "u1", 4.0)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.RatingCount != 3 {
		t.Errorf("RatingCount = %d, want 3", stats.RatingCount)
	}
	if stats.LikedCount != 2 {
		t.Errorf("LikedCount = %d, want 2", stats.LikedCount)
	}
	if want := (5.0 + 4.0 + 1.0) / 3; stats.AverageRating != want {
		t.Errorf("AverageRating = %f, want %f", stats.AverageRating, want)
	}

	t.Run("no ratings yields zeroes", func(t *testing.T) {
		stats, err := s.Stats(ctx, "ghost", 4.0)
		if err != nil {
			t.Fatalf("Stats() error = %v", err)
		}
		if stats.RatingCount != 0 || stats.AverageRating != 0 || stats.LikedCount != 0 {
			t.Errorf("Stats() = %+v, want zeroes", stats)
		}
	})
}

func TestStore_Watchlist(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetWatchlist(ctx, "u1", 10, WatchStatusPlanToWatch); err != nil {
		t.Fatalf("SetWatchlist() error = %v", err)
	}
	if err := s.SetWatchlist(ctx, "u1", 11, WatchStatusPlanToWatch); err != nil {
		t.Fatalf("SetWatchlist() error = %v", err)
	}

	if err := s.SetWatchlist(ctx, "u1", 10, "binge"); err == nil {
		t.Error("SetWatchlist() expected error for invalid status")
	}

	// Marking watched updates in place.
	if err := s.SetWatchlist(ctx, "u1", 10, WatchStatusWatched); err != nil {
		t.Fatalf("SetWatchlist() error = %v", err)
	}

	got, err := s.Watchlist(ctx, "u1")
	if err != nil {
		t.Fatalf("Watchlist() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Watchlist() returned %d entries, want 2", len(got))
	}
	for _, e := range got {
		if e.MovieID == 10 && e.Status != WatchStatusWatched {
			t.Errorf("movie 10 status = %q, want watched", e.Status)
		}
	}

	if err := s.RemoveFromWatchlist(ctx, "u1", 10); err != nil {
		t.Fatalf("RemoveFromWatchlist() error = %v", err)
	}
	got, err = s.Watchlist(ctx, "u1")
	if err != nil {
		t.Fatalf("Watchlist() error = %v", err)
	}
	if len(got) != 1 || got[0].MovieID != 11 {
		t.Errorf("Watchlist() after removal = %+v, want only movie 11", got)
	}

	// Removing an absent movie is fine.
	if err := s.RemoveFromWatchlist(ctx, "u1", 999); err != nil {
		t.Errorf("RemoveFromWatchlist() error = %v for absent movie", err)
	}
}

func TestStore_Reviews(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	id1, err := s.AddReview(ctx, "u1", 10, "a slow burn that pays off")
	if err != nil {
		t.Fatalf("AddReview() error = %v", err)
	}
	id2, err := s.AddReview(ctx, "u2", 10, "did not land for me")
	if err != nil {
		t.Fatalf("AddReview() error = %v", err)
	}
	if id1 == id2 {
		t.Errorf("AddReview() ids collide: %d", id1)
	}
	if _, err := s.AddReview(ctx, "u1", 11, "rewatched twice already"); err != nil {
		t.Fatalf("AddReview() error = %v", err)
	}

	byMovie, err := s.ReviewsForMovie(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ReviewsForMovie() error = %v", err)
	}
	if len(byMovie) != 2 {
		t.Errorf("ReviewsForMovie() returned %d reviews, want 2", len(byMovie))
	}

	byUser, err := s.ReviewsByUser(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("ReviewsByUser() error = %v", err)
	}
	if len(byUser) != 2 {
		t.Errorf("ReviewsByUser() returned %d reviews, want 2", len(byUser))
	}
	for _, r := range byUser {
		if r.UserID != "u1" {
			t.Errorf("ReviewsByUser() returned user %s's review", r.UserID)
		}
	}

	limited, err := s.ReviewsForMovie(ctx, 10, 1)
	if err != nil {
		t.Fatalf("ReviewsForMovie() error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("ReviewsForMovie(limit=1) returned %d reviews", len(limited))
	}
}

func TestStore_Profile(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Profile(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Profile() error = %v, want ErrNotFound", err)
	}

	p := Profile{UserID: "u1", DisplayName: "casual viewer", FavoriteGenres: []string{"Comedy", "Drama"}}
	if err := s.UpsertProfile(ctx, p); err != nil {
		t.Fatalf("UpsertProfile() error = %v", err)
	}

	got, err := s.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if got.DisplayName != "casual viewer" || len(got.FavoriteGenres) != 2 {
		t.Errorf("Profile() = %+v", got)
	}

	p.DisplayName = "film buff"
	p.FavoriteGenres = []string{"Thriller"}
	if err := s.UpsertProfile(ctx, p); err != nil {
		t.Fatalf("UpsertProfile() error = %v", err)
	}
	got, err = s.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if got.DisplayName != "film buff" || len(got.FavoriteGenres) != 1 || got.FavoriteGenres[0] != "Thriller" {
		t.Errorf("Profile() after update = %+v", got)
	}
}

func TestStore_DeleteUserData(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertRating(ctx, "u1", 10, 4.0); err != nil {
		t.Fatalf("UpsertRating() error = %v", err)
	}
	if err := s.SetWatchlist(ctx, "u1", 11, WatchStatusPlanToWatch); err != nil {
		t.Fatalf("SetWatchlist() error = %v", err)
	}
	if _, err := s.AddReview(ctx, "u1", 10, "fine"); err != nil {
		t.Fatalf("AddReview() error = %v", err)
	}
	if err := s.UpsertProfile(ctx, Profile{UserID: "u1"}); err != nil {
		t.Fatalf("UpsertProfile() error = %v", err)
	}

	// User 2's data must survive.
	if err := s.UpsertRating(ctx, "u2", 10, 3.0); err != nil {
		t.Fatalf("UpsertRating() error = %v", err)
	}

	if err := s.DeleteUserData(ctx, "u1"); err != nil {
		t.Fatalf("DeleteUserData() error = %v", err)
	}

	ratings, err := s.Ratings(ctx, "u1")
	if err != nil {
		t.Fatalf("Ratings() error = %v", err)
	}
	if len(ratings) != 0 {
		t.Errorf("Ratings() after delete = %d rows", len(ratings))
	}
	watchlist, err := s.Watchlist(ctx, "u1")
	if err != nil {
		t.Fatalf("Watchlist() error = %v", err)
	}
	if len(watchlist) != 0 {
		t.Errorf("Watchlist() after delete = %d rows", len(watchlist))
	}
	reviews, err := s.ReviewsByUser(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("ReviewsByUser() error = %v", err)
	}
	if len(reviews) != 0 {
		t.Errorf("ReviewsByUser() after delete = %d rows", len(reviews))
	}
	if _, err := s.Profile(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Profile() after delete error = %v, want ErrNotFound", err)
	}

	others, err := s.Ratings(ctx, "u2")
	if err != nil {
		t.Fatalf("Ratings() error = %v", err)
	}
	if len(others) != 1 {
		t.Errorf("user 2 ratings after delete = %d rows, want 1", len(others))
	}
}

func TestStore_UUIDUserIDs(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	// Identity providers hand us UUIDs; they must round-trip untouched.
	const user = "6f1c2a9e-8b4d-4e3a-9f57-0d2c8a1b6e4f"
	if err := s.UpsertRating(ctx, user, 10, 4.5); err != nil {
		t.Fatalf("UpsertRating() error = %v", err)
	}

	got, err := s.Ratings(ctx, user)
	if err != nil {
		t.Fatalf("Ratings() error = %v", err)
	}
	if len(got) != 1 || got[0].UserID != user {
		t.Fatalf("Ratings() = %+v, want one row for %s", got, user)
	}

	stats, err := s.Stats(ctx, user, 4.0)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.RatingCount != 1 || stats.LikedCount != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestStore_Checkpoint(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertRating(ctx, "u1", 10, 4.0); err != nil {
		t.Fatalf("UpsertRating() error = %v", err)
	}
	if err := s.Checkpoint(ctx); err != nil {
		t.Fatalf("Checkpoint() error = %v", err)
	}

	// Data written before the checkpoint stays readable after it.
	got, err := s.Ratings(ctx, "u1")
	if err != nil {
		t.Fatalf("Ratings() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Ratings() after checkpoint = %d rows, want 1", len(got))
	}
}

func TestStore_QueriesAreInstrumented(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertRating(ctx, "u1", 10, 4.0); err != nil {
		t.Fatalf("UpsertRating() error = %v", err)
	}
	if _, err := s.Ratings(ctx, "u1"); err != nil {
		t.Fatalf("Ratings() error = %v", err)
	}

	// Each operation label shows up as its own duration series.
	if n := testutil.CollectAndCount(metrics.StoreQueryDuration, "store_query_duration_seconds"); n < 2 {
		t.Errorf("store query duration series = %d, want at least 2", n)
	}
}
