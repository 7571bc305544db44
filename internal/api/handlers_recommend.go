// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/reelrank/reelrank/internal/metrics"
	"github.com/reelrank/reelrank/internal/recommend"
	"github.com/reelrank/reelrank/internal/store"
)

// resultKey identifies one cached ranking response. Callers pass k already
// normalized through the ranker's ClampK so equivalent requests share one
// entry. The ":u=<id>:" token is what invalidateUser matches on.
func resultKey(strategy, userID string, k int) string {
	return fmt.Sprintf("%s:u=%s:k=%d", strategy, userID, k)
}

func (h *Handler) cachedResults(key string) ([]recommend.Candidate, bool) {
	if h.results == nil {
		return nil, false
	}
	results, ok := h.results.Get(key)
	if ok {
		metrics.ResultCacheLookups.WithLabelValues("hit").Inc()
	} else {
		metrics.ResultCacheLookups.WithLabelValues("miss").Inc()
	}
	return results, ok
}

func (h *Handler) storeResults(key string, results []recommend.Candidate) {
	if h.results != nil {
		h.results.Set(key, results)
	}
}

// invalidateUser drops every cached ranking for userID. Called on any
// write to the user's state so stale rankings never outlive a rating.
func (h *Handler) invalidateUser(userID string) {
	if h.results == nil {
		return
	}
	needle := fmt.Sprintf(":u=%s:", userID)
	h.results.RemoveMatching(func(key string) bool {
		return strings.Contains(key, needle)
	})
}

// Recommendations returns the hybrid ranking for one user.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, ok := urlUserID(r)
	if !ok {
		rw.BadRequest("user id is required")
		return
	}
	k := h.ranker.ClampK(getIntParam(r, "k", 0))

	key := resultKey("hybrid", userID, k)
	if results, ok := h.cachedResults(key); ok {
		rw.SuccessWithCount(results, len(results))
		return
	}

	history, err := h.history.History(r.Context(), userID)
	if err != nil {
		h.historyError(rw, err)
		return
	}

	start := time.Now()
	results, err := h.ranker.Recommend(r.Context(), history, k)
	if err != nil {
		rw.InternalError("ranking failed")
		return
	}
	metrics.RecordRanking("hybrid", len(results), time.Since(start))
	if len(history) == 0 {
		metrics.ColdStartServed.Inc()
	}
	h.storeResults(key, results)

	rw.SuccessWithCount(results, len(results))
}

// HiddenGems returns low-popularity picks matching the user's taste.
func (h *Handler) HiddenGems(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, ok := urlUserID(r)
	if !ok {
		rw.BadRequest("user id is required")
		return
	}
	k := h.ranker.ClampK(getIntParam(r, "k", 0))

	key := resultKey("hidden_gems", userID, k)
	if results, ok := h.cachedResults(key); ok {
		rw.SuccessWithCount(results, len(results))
		return
	}

	history, err := h.history.History(r.Context(), userID)
	if err != nil {
		h.historyError(rw, err)
		return
	}

	start := time.Now()
	results, err := h.ranker.HiddenGems(r.Context(), history, k)
	if err != nil {
		rw.InternalError("ranking failed")
		return
	}
	metrics.RecordRanking("hidden_gems", len(results), time.Since(start))
	h.storeResults(key, results)

	rw.SuccessWithCount(results, len(results))
}

// Onboarding returns genre-matched picks for a new user. Genres come from
// the query string, falling back to the stored profile.
func (h *Handler) Onboarding(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, ok := urlUserID(r)
	if !ok {
		rw.BadRequest("user id is required")
		return
	}
	k := getIntParam(r, "k", 0)

	genres := parseCommaSeparated(r.URL.Query().Get("genres"))
	if len(genres) == 0 {
		profile, err := h.store.Profile(r.Context(), userID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			rw.InternalError("profile lookup failed")
			return
		}
		genres = profile.FavoriteGenres
	}
	if len(genres) == 0 {
		rw.BadRequest("genres parameter or a profile with favorite genres is required")
		return
	}

	ratings, err := h.store.Ratings(r.Context(), userID)
	if err != nil {
		rw.InternalError("ratings lookup failed")
		return
	}
	ratedIDs := make([]int, len(ratings))
	for i, rating := range ratings {
		ratedIDs[i] = rating.MovieID
	}

	start := time.Now()
	results, err := h.ranker.Onboarding(r.Context(), genres, ratedIDs, k)
	if err != nil {
		rw.InternalError("ranking failed")
		return
	}
	metrics.RecordRanking("onboarding", len(results), time.Since(start))

	rw.SuccessWithCount(results, len(results))
}

// TimeAware returns picks for the current time of day. No user state is
// consulted.
func (h *Handler) TimeAware(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	k := getIntParam(r, "k", 0)

	start := time.Now()
	results, err := h.ranker.TimeAware(r.Context(), time.Now(), k)
	if err != nil {
		rw.InternalError("ranking failed")
		return
	}
	metrics.RecordRanking("time_aware", len(results), time.Since(start))

	rw.SuccessWithCount(results, len(results))
}

// Taste returns the user's ranked genre taste profile.
func (h *Handler) Taste(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, ok := urlUserID(r)
	if !ok {
		rw.BadRequest("user id is required")
		return
	}
	limit := getIntParam(r, "limit", 5)

	history, err := h.history.History(r.Context(), userID)
	if err != nil {
		h.historyError(rw, err)
		return
	}

	profile := h.ranker.TasteProfile(history, limit)
	rw.SuccessWithCount(profile, len(profile))
}

// historyError translates history fetch failures. An unavailable history
// is retryable, so it surfaces as 503 rather than an empty ranking.
func (h *Handler) historyError(rw *ResponseWriter, err error) {
	if errors.Is(err, store.ErrHistoryUnavailable) {
		rw.ServiceUnavailable("rating history temporarily unavailable")
		return
	}
	rw.InternalError("history lookup failed")
}
