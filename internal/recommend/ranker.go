// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package recommend implements the hybrid recommendation core.
//
// The Ranker blends two precomputed signals: a collaborative-filtering
// rating estimate (a population-level prior, see package estimate) and a
// content-similarity boost toward the user's most recently liked movie.
// Variant strategies (hidden gems, time-aware, onboarding) reuse the same
// catalog and similarity index under different filtering predicates.
//
// All shared inputs (catalog, similarity index, estimator model) are
// read-only after load, so a single Ranker is safe for unbounded concurrent
// use. Randomized sampling draws from a per-request source; a fixed Seed in
// the configuration makes every request deterministic for tests.
package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelrank/reelrank/internal/catalog"
	"github.com/reelrank/reelrank/internal/estimate"
	"github.com/reelrank/reelrank/internal/similarity"
)

// Ranker produces ranked recommendation lists from a user's rating history.
type Ranker struct {
	cfg     Config
	catalog *catalog.Catalog
	sim     *similarity.Index
	model   *estimate.Model
	logger  zerolog.Logger
}

// NewRanker creates a ranker over the loaded artifacts.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRanker(cfg Config, cat *catalog.Catalog, sim *similarity.Index, model *estimate.Model, logger zerolog.Logger) (*Ranker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cat == nil || sim == nil || model == nil {
		return nil, fmt.Errorf("ranker requires catalog, similarity index, and estimator model")
	}

	return &Ranker{
		cfg:     cfg,
		catalog: cat,
		sim:     sim,
		model:   model,
		logger:  logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Config returns a copy of the ranker configuration.
func (r *Ranker) Config() Config {
	return r.cfg
}

// newRand returns the random source for one request. A non-zero configured
// seed yields an identical source every request, making output reproducible.
func (r *Ranker) newRand() *rand.Rand {
	seed := r.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)) //nolint:gosec // sampling, not crypto
}

// ClampK applies the default and maximum result counts. Every ranking
// entry point normalizes k through it, so callers keying caches on k can
// use it to collapse equivalent requests.
func (r *Ranker) ClampK(k int) int {
	if k <= 0 {
		k = r.cfg.DefaultK
	}
	if k > r.cfg.MaxK {
		k = r.cfg.MaxK
	}
	return k
}

// Recommend ranks up to k unseen movies for the given rating history.
//
// The candidate pool is a uniform random downsample of the unseen catalog
// (bounded by CandidatePoolSize). Each candidate scores
// estimate + similarity-to-seed * BoostWeight, where the seed is the most
// recently liked movie, falling back to the most recent rating. Per-item
// gaps (no estimate, no similarity row) degrade to a zero contribution.
func (r *Ranker) Recommend(ctx context.Context, history []RatingEvent, k int) ([]Candidate, error) {
	k = r.ClampK(k)
	rng := r.newRand()

	if len(history) == 0 {
		return r.coldStart(rng, k), nil
	}

	rated := RatedIDs(history)
	pool := r.samplePool(rng, rated, r.cfg.CandidatePoolSize)

	seedID, seedTitle, hasSeed := r.boostSeed(history)

	type scored struct {
		id      int
		score   float64
		boosted bool
	}
	ranked := make([]scored, 0, len(pool))

	for _, id := range pool {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		score, ok := r.model.Estimate(id)
		if !ok {
			score = 0
		}

		boosted := false
		if hasSeed {
			if sim, ok := r.sim.Similarity(id, seedID); ok && sim > 0 {
				score += sim * r.cfg.BoostWeight
				boosted = true
			}
		}

		ranked = append(ranked, scored{id: id, score: score, boosted: boosted})
	}

	// Stable: equal scores keep pool iteration order, so output is
	// deterministic for a fixed seed.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}

	out := make([]Candidate, 0, k)
	chosen := make(map[int]struct{}, k)
	for _, s := range ranked {
		c := r.candidate(s.id, s.score)
		if s.boosted && seedTitle != "" {
			c.Reason = "because you watched " + seedTitle
		} else {
			c.Reason = ReasonTrending
		}
		out = append(out, c)
		chosen[s.id] = struct{}{}
	}

	if len(out) < k {
		out = r.backfill(rng, out, chosen, rated, k)
	}

	r.logger.Debug().
		Int("history", len(history)).
		Int("pool", len(pool)).
		Int("returned", len(out)).
		Bool("boosted", hasSeed).
		Msg("hybrid ranking complete")

	return out, nil
}

// coldStart applies the configured empty-history policy.
func (r *Ranker) coldStart(rng *rand.Rand, k int) []Candidate {
	if r.cfg.ColdStart == ColdStartEmpty {
		return nil
	}

	ids := sampleIDs(rng, r.catalog.IDs(), k)
	out := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		c := r.candidate(id, 0)
		c.Reason = ReasonTrending
		out = append(out, c)
	}
	return out
}

// boostSeed picks the movie the content boost compares against: the most
// recently liked movie, or the most recent rating when nothing crossed the
// like threshold. The seed must have a similarity row to be usable.
func (r *Ranker) boostSeed(history []RatingEvent) (id int, title string, ok bool) {
	seed := -1
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Rating >= r.cfg.LikeThreshold {
			seed = history[i].MovieID
			break
		}
	}
	if seed < 0 {
		seed = history[len(history)-1].MovieID
	}

	if !r.sim.Contains(seed) {
		return 0, "", false
	}

	if item, found := r.catalog.Get(seed); found {
		title = item.Title
	}
	return seed, title, true
}

// samplePool returns up to limit unseen movie IDs, uniformly sampled
// without replacement. When the unseen catalog fits the limit, load order
// is preserved.
func (r *Ranker) samplePool(rng *rand.Rand, rated map[int]struct{}, limit int) []int {
	unseen := make([]int, 0, r.catalog.Len())
	for _, id := range r.catalog.IDs() {
		if _, seen := rated[id]; !seen {
			unseen = append(unseen, id)
		}
	}

	if len(unseen) <= limit {
		return unseen
	}
	return sampleIDs(rng, unseen, limit)
}

// backfill pads a short result list with random unseen movies at score zero.
func (r *Ranker) backfill(rng *rand.Rand, out []Candidate, chosen, rated map[int]struct{}, k int) []Candidate {
	remaining := make([]int, 0, r.catalog.Len())
	for _, id := range r.catalog.IDs() {
		if _, seen := rated[id]; seen {
			continue
		}
		if _, done := chosen[id]; done {
			continue
		}
		remaining = append(remaining, id)
	}

	for _, id := range sampleIDs(rng, remaining, k-len(out)) {
		c := r.candidate(id, 0)
		c.Reason = ReasonTrending
		out = append(out, c)
	}
	return out
}

// candidate builds a Candidate with display fields from the catalog.
func (r *Ranker) candidate(id int, score float64) Candidate {
	c := Candidate{MovieID: id, Score: score}
	if item, ok := r.catalog.Get(id); ok {
		c.Title = item.Title
		c.Genres = item.Genres
	}
	return c
}

// sampleIDs draws up to n ids without replacement via partial Fisher-Yates.
// The input slice is not modified.
func sampleIDs(rng *rand.Rand, ids []int, n int) []int {
	if n <= 0 || len(ids) == 0 {
		return nil
	}
	if n > len(ids) {
		n = len(ids)
	}

	work := make([]int, len(ids))
	copy(work, ids)
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(work)-i)
		work[i], work[j] = work[j], work[i]
	}
	return work[:n]
}
