// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package catalog holds the immutable in-memory table of recommendable movies.
//
// The catalog is loaded exactly once at startup from a precomputed JSON
// artifact and is never mutated afterwards, so it is safe for unbounded
// concurrent readers without locking.
package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// Item is a single recommendable movie.
type Item struct {
	// ID is the unique movie identifier. Identity is defined by ID alone.
	ID int `json:"movie_id"`

	// Title is the display title.
	Title string `json:"title"`

	// Genres is the set of genre tags.
	Genres []string `json:"genres"`

	// Popularity is a precomputed popularity score.
	// Zero means no popularity signal is available for the item.
	Popularity float64 `json:"popularity,omitempty"`
}

// HasAnyGenre reports whether the item carries at least one of the given
// genre tags. Matching is case-insensitive.
func (it *Item) HasAnyGenre(genres map[string]struct{}) bool {
	for _, g := range it.Genres {
		if _, ok := genres[strings.ToLower(g)]; ok {
			return true
		}
	}
	return false
}

// Catalog is the immutable movie table.
type Catalog struct {
	items []Item
	byID  map[int]int // movie ID -> index into items
}

// Load reads the catalog artifact from path.
// A missing, unreadable, or empty artifact is an error; the service cannot
// run without a catalog.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog artifact %s: %w", path, err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode catalog artifact %s: %w", path, err)
	}

	return New(items)
}

// New builds a catalog from the given items.
// Items are copied; duplicate IDs are an error.
func New(items []Item) (*Catalog, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	c := &Catalog{
		items: make([]Item, len(items)),
		byID:  make(map[int]int, len(items)),
	}
	copy(c.items, items)

	for i := range c.items {
		id := c.items[i].ID
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("duplicate movie id %d in catalog", id)
		}
		c.byID[id] = i
	}

	return c, nil
}

// Len returns the number of items in the catalog.
func (c *Catalog) Len() int {
	return len(c.items)
}

// Get returns the item with the given ID.
func (c *Catalog) Get(id int) (Item, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}

// Contains reports whether the catalog has an item with the given ID.
func (c *Catalog) Contains(id int) bool {
	_, ok := c.byID[id]
	return ok
}

// Items returns the backing item slice in load order.
// Callers must treat the returned slice as read-only.
func (c *Catalog) Items() []Item {
	return c.items
}

// IDs returns all movie IDs in load order.
func (c *Catalog) IDs() []int {
	ids := make([]int, len(c.items))
	for i := range c.items {
		ids[i] = c.items[i].ID
	}
	return ids
}

// Search returns up to limit items whose title contains the query,
// case-insensitive. An empty query returns nothing.
func (c *Catalog) Search(query string, limit int) []Item {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || limit <= 0 {
		return nil
	}

	var out []Item
	for i := range c.items {
		if strings.Contains(strings.ToLower(c.items[i].Title), query) {
			out = append(out, c.items[i])
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// Popular returns up to limit items ranked by popularity descending.
// Items without a popularity signal rank last, in load order.
func (c *Catalog) Popular(limit int) []Item {
	if limit <= 0 {
		return nil
	}

	ranked := make([]Item, len(c.items))
	copy(ranked, c.items)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Popularity > ranked[j].Popularity
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// WithAnyGenre returns the items carrying at least one of the given genre
// tags. Tags are matched case-insensitively.
func (c *Catalog) WithAnyGenre(genres []string) []Item {
	set := GenreSet(genres)
	if len(set) == 0 {
		return nil
	}

	var out []Item
	for i := range c.items {
		if c.items[i].HasAnyGenre(set) {
			out = append(out, c.items[i])
		}
	}
	return out
}

// GenreSet lowercases genre tags into a lookup set, dropping empties.
func GenreSet(genres []string) map[string]struct{} {
	set := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		g = strings.ToLower(strings.TrimSpace(g))
		if g != "" {
			set[g] = struct{}{}
		}
	}
	return set
}
