// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

// RatingEvent is one entry of a user's rating history as the core consumes
// it: the current snapshot for one (user, movie) pair, ordered by fetch
// order from the store.
type RatingEvent struct {
	// MovieID is the rated movie.
	MovieID int `json:"movie_id"`

	// Rating is the star rating in [0, 5].
	Rating float64 `json:"rating"`
}

// Candidate is a single ranked recommendation. Candidates are constructed
// per-request and never persisted.
type Candidate struct {
	// MovieID is the recommended movie.
	MovieID int `json:"movie_id"`

	// Title is the display title, attached from the catalog.
	Title string `json:"title"`

	// Genres are the movie's genre tags.
	Genres []string `json:"genres"`

	// Score is the blended recommendation score. Zero for sampled
	// (non-ranked) results.
	Score float64 `json:"score,omitempty"`

	// Reason is a human-readable explanation for the recommendation.
	Reason string `json:"reason,omitempty"`
}

// Well-known reason strings.
const (
	// ReasonTrending marks cold-start and backfill picks.
	ReasonTrending = "trending"

	// ReasonHiddenGem marks low-popularity genre matches.
	ReasonHiddenGem = "hidden gem"
)

// RatedIDs returns the set of movie IDs present in the history.
func RatedIDs(history []RatingEvent) map[int]struct{} {
	rated := make(map[int]struct{}, len(history))
	for _, ev := range history {
		rated[ev.MovieID] = struct{}{}
	}
	return rated
}
