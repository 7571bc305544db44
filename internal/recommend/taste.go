// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"sort"
	"strings"
)

// GenreTaste is one entry of a user's genre taste profile.
type GenreTaste struct {
	// Genre is the genre tag, as spelled in the catalog.
	Genre string `json:"genre"`

	// Count is how many liked movies carry the tag.
	Count int `json:"count"`
}

// TasteProfile aggregates the genre tags of the user's liked movies into a
// ranked profile of up to limit entries. When nothing crossed the like
// threshold the full history is used, matching the rest of the taste logic.
func (r *Ranker) TasteProfile(history []RatingEvent, limit int) []GenreTaste {
	if limit <= 0 {
		limit = 5
	}

	liked := make(map[string]int)
	all := make(map[string]int)
	spelling := make(map[string]string)

	for _, ev := range history {
		item, ok := r.catalog.Get(ev.MovieID)
		if !ok {
			continue
		}
		for _, g := range item.Genres {
			key := strings.ToLower(g)
			spelling[key] = g
			all[key]++
			if ev.Rating >= r.cfg.LikeThreshold {
				liked[key]++
			}
		}
	}

	counts := liked
	if len(counts) == 0 {
		counts = all
	}

	out := make([]GenreTaste, 0, len(counts))
	for key, n := range counts {
		out = append(out, GenreTaste{Genre: spelling[key], Count: n})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Genre < out[j].Genre
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
