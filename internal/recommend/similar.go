// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

// SimilarTo returns up to k catalog movies most similar to the given movie,
// ordered by content similarity descending. The movie itself is never
// included. A movie without a similarity row yields an empty list, not an
// error; index entries that have dropped out of the catalog are skipped.
func (r *Ranker) SimilarTo(movieID, k int) []Candidate {
	if k <= 0 {
		k = r.cfg.DefaultK
	}
	if k > r.cfg.MaxK {
		k = r.cfg.MaxK
	}

	var reason string
	if item, ok := r.catalog.Get(movieID); ok {
		reason = "because you watched " + item.Title
	}

	neighbors := r.sim.SimilarTo(movieID, r.sim.Len())
	out := make([]Candidate, 0, k)
	for _, n := range neighbors {
		item, ok := r.catalog.Get(n.ID)
		if !ok {
			continue
		}

		out = append(out, Candidate{
			MovieID: item.ID,
			Title:   item.Title,
			Genres:  item.Genres,
			Score:   n.Score,
			Reason:  reason,
		})
		if len(out) == k {
			break
		}
	}
	return out
}
