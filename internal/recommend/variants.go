// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"context"
	"time"

	"github.com/reelrank/reelrank/internal/catalog"
)

// Time-of-day genre buckets. Late night favors tension, weeknights favor
// light watching, weekends favor longer adventurous picks.
var (
	lateNightGenres = []string{"Thriller", "Mystery", "Horror"}
	weeknightGenres = []string{"Comedy", "Family", "Animation"}
	weekendGenres   = []string{"Adventure", "Science Fiction", "Sci-Fi", "Action"}
)

// HiddenGems samples up to k low-popularity movies sharing a genre with the
// user's liked history.
//
// The genre taste is derived from liked ratings (>= LikeThreshold), falling
// back to the full history when nothing crossed the threshold. History
// entries missing from the catalog contribute no genres and are skipped.
// When the popularity filter empties the pool it is dropped; an empty
// history or a still-empty pool yields an empty result, never an error.
func (r *Ranker) HiddenGems(ctx context.Context, history []RatingEvent, k int) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k = r.ClampK(k)
	if len(history) == 0 {
		return nil, nil
	}

	genres := r.tasteGenres(history)
	if len(genres) == 0 {
		return nil, nil
	}

	rated := RatedIDs(history)

	matching := make([]int, 0, r.catalog.Len())
	gems := make([]int, 0, r.catalog.Len())
	for _, item := range r.catalog.Items() {
		if _, seen := rated[item.ID]; seen {
			continue
		}
		if !item.HasAnyGenre(genres) {
			continue
		}

		matching = append(matching, item.ID)
		if item.Popularity == 0 || item.Popularity < r.cfg.HiddenGemMaxPopularity {
			gems = append(gems, item.ID)
		}
	}

	// Broaden by dropping the popularity filter before giving up.
	pool := gems
	if len(pool) == 0 {
		pool = matching
	}
	if len(pool) == 0 {
		return nil, nil
	}

	rng := r.newRand()
	out := make([]Candidate, 0, k)
	for _, id := range sampleIDs(rng, pool, k) {
		c := r.candidate(id, 0)
		c.Reason = ReasonHiddenGem
		out = append(out, c)
	}
	return out, nil
}

// TimeAware samples up to k movies from a genre bucket keyed by the current
// hour and day of week, ignoring user history entirely. An empty filtered
// subset falls back to an unfiltered catalog sample.
func (r *Ranker) TimeAware(ctx context.Context, now time.Time, k int) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k = r.ClampK(k)
	bucket, reason := timeBucket(now)

	pool := r.catalog.WithAnyGenre(bucket)
	ids := make([]int, len(pool))
	for i := range pool {
		ids[i] = pool[i].ID
	}
	if len(ids) == 0 {
		ids = r.catalog.IDs()
		reason = ReasonTrending
	}

	rng := r.newRand()
	out := make([]Candidate, 0, k)
	for _, id := range sampleIDs(rng, ids, k) {
		c := r.candidate(id, 0)
		c.Reason = reason
		out = append(out, c)
	}
	return out, nil
}

// timeBucket selects the genre filter for the given local time.
func timeBucket(now time.Time) (genres []string, reason string) {
	hour := now.Hour()
	if hour >= 22 || hour < 5 {
		return lateNightGenres, "late night pick"
	}

	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return weekendGenres, "weekend pick"
	default:
		return weeknightGenres, "weeknight pick"
	}
}

// Onboarding returns up to k unrated movies matching the user-selected
// genre tags. A bounded candidate window is sampled first, then the smaller
// display sample, so early onboarding pages vary between requests without
// scanning the whole catalog twice. An empty match yields an empty result.
func (r *Ranker) Onboarding(ctx context.Context, genres []string, ratedIDs []int, k int) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k = r.ClampK(k)

	rated := make(map[int]struct{}, len(ratedIDs))
	for _, id := range ratedIDs {
		rated[id] = struct{}{}
	}

	pool := make([]int, 0, r.catalog.Len())
	for _, item := range r.catalog.WithAnyGenre(genres) {
		if _, seen := rated[item.ID]; !seen {
			pool = append(pool, item.ID)
		}
	}
	if len(pool) == 0 {
		return nil, nil
	}

	rng := r.newRand()
	window := sampleIDs(rng, pool, r.cfg.OnboardingWindow)

	out := make([]Candidate, 0, k)
	for _, id := range sampleIDs(rng, window, k) {
		c := r.candidate(id, 0)
		c.Reason = "picked for your genres"
		out = append(out, c)
	}
	return out, nil
}

// tasteGenres aggregates the genre tags of the user's liked movies,
// falling back to every rated movie when none crossed the like threshold.
func (r *Ranker) tasteGenres(history []RatingEvent) map[string]struct{} {
	liked := make([]string, 0, len(history))
	all := make([]string, 0, len(history))

	for _, ev := range history {
		item, ok := r.catalog.Get(ev.MovieID)
		if !ok {
			// No content signal for items outside the catalog.
			continue
		}
		all = append(all, item.Genres...)
		if ev.Rating >= r.cfg.LikeThreshold {
			liked = append(liked, item.Genres...)
		}
	}

	if len(liked) > 0 {
		return catalog.GenreSet(liked)
	}
	return catalog.GenreSet(all)
}
