// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()

	c, err := New([]Item{
		{ID: 10, Title: "The Long Voyage", Genres: []string{"Adventure", "Drama"}, Popularity: 42.5},
		{ID: 11, Title: "Voyage Home", Genres: []string{"Sci-Fi"}, Popularity: 88.1},
		{ID: 12, Title: "Small Hours", Genres: []string{"Drama"}},
		{ID: 13, Title: "Paper Moonrise", Genres: []string{"Comedy", "Romance"}, Popularity: 12.0},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		items   []Item
		wantErr bool
	}{
		{
			name:  "valid items",
			items: []Item{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}},
		},
		{
			name:    "empty catalog",
			items:   nil,
			wantErr: true,
		},
		{
			name:    "duplicate ids",
			items:   []Item{{ID: 1, Title: "A"}, {ID: 1, Title: "B"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(tt.items)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("valid artifact", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "catalog.json")
		payload := `[
			{"movie_id": 1, "title": "First", "genres": ["Drama"], "popularity": 3.5},
			{"movie_id": 2, "title": "Second", "genres": []}
		]`
		if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		c, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if c.Len() != 2 {
			t.Errorf("Len() = %d, want 2", c.Len())
		}
		item, ok := c.Get(1)
		if !ok || item.Title != "First" || item.Popularity != 3.5 {
			t.Errorf("Get(1) = %+v, %v", item, ok)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
			t.Error("Load() expected error for missing file")
		}
	})

	t.Run("malformed artifact", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "catalog.json")
		if err := os.WriteFile(path, []byte(`{"not": "a list"}`), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Error("Load() expected error for malformed artifact")
		}
	})
}

func TestCatalog_Get(t *testing.T) {
	t.Parallel()

	c := testCatalog(t)

	item, ok := c.Get(12)
	if !ok || item.Title != "Small Hours" {
		t.Errorf("Get(12) = %+v, %v", item, ok)
	}

	if _, ok := c.Get(999); ok {
		t.Error("Get(999) = ok, want miss")
	}
	if !c.Contains(10) || c.Contains(999) {
		t.Error("Contains() mismatch")
	}
}

func TestCatalog_Search(t *testing.T) {
	t.Parallel()

	c := testCatalog(t)

	tests := []struct {
		name    string
		query   string
		limit   int
		wantIDs []int
	}{
		{name: "case-insensitive substring", query: "voyage", limit: 10, wantIDs: []int{10, 11}},
		{name: "limit applies", query: "voyage", limit: 1, wantIDs: []int{10}},
		{name: "whitespace trimmed", query: "  moonrise ", limit: 10, wantIDs: []int{13}},
		{name: "empty query", query: "", limit: 10, wantIDs: nil},
		{name: "no match", query: "zzz", limit: 10, wantIDs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := c.Search(tt.query, tt.limit)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Search(%q) returned %d items, want %d", tt.query, len(got), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if got[i].ID != want {
					t.Errorf("Search(%q)[%d].ID = %d, want %d", tt.query, i, got[i].ID, want)
				}
			}
		})
	}
}

func TestCatalog_Popular(t *testing.T) {
	t.Parallel()

	c := testCatalog(t)

	got := c.Popular(10)
	wantOrder := []int{11, 10, 13, 12} // item 12 has no popularity, ranks last
	if len(got) != len(wantOrder) {
		t.Fatalf("Popular() returned %d items, want %d", len(got), len(wantOrder))
	}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Errorf("Popular()[%d].ID = %d, want %d", i, got[i].ID, want)
		}
	}

	if got := c.Popular(2); len(got) != 2 || got[0].ID != 11 {
		t.Errorf("Popular(2) = %v", got)
	}
	if got := c.Popular(0); got != nil {
		t.Errorf("Popular(0) = %v, want nil", got)
	}
}

func TestCatalog_WithAnyGenre(t *testing.T) {
	t.Parallel()

	c := testCatalog(t)

	tests := []struct {
		name    string
		genres  []string
		wantIDs []int
	}{
		{name: "single genre", genres: []string{"Drama"}, wantIDs: []int{10, 12}},
		{name: "case-insensitive", genres: []string{"sci-fi"}, wantIDs: []int{11}},
		{name: "multiple tags union", genres: []string{"Comedy", "Sci-Fi"}, wantIDs: []int{11, 13}},
		{name: "unknown genre", genres: []string{"Western"}, wantIDs: nil},
		{name: "no tags", genres: nil, wantIDs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := c.WithAnyGenre(tt.genres)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("WithAnyGenre(%v) returned %d items, want %d", tt.genres, len(got), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if got[i].ID != want {
					t.Errorf("WithAnyGenre(%v)[%d].ID = %d, want %d", tt.genres, i, got[i].ID, want)
				}
			}
		})
	}
}

func TestGenreSet(t *testing.T) {
	t.Parallel()

	set := GenreSet([]string{"Drama", " comedy ", "", "DRAMA"})
	if len(set) != 2 {
		t.Fatalf("GenreSet() = %v, want 2 entries", set)
	}
	if _, ok := set["drama"]; !ok {
		t.Error("GenreSet() missing drama")
	}
	if _, ok := set["comedy"]; !ok {
		t.Error("GenreSet() missing comedy")
	}
}
