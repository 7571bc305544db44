// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/reelrank/reelrank/internal/cache"
	"github.com/reelrank/reelrank/internal/catalog"
	"github.com/reelrank/reelrank/internal/recommend"
	"github.com/reelrank/reelrank/internal/store"
)

// Handler carries the dependencies of all HTTP handlers.
type Handler struct {
	catalog *catalog.Catalog
	ranker  *recommend.Ranker
	store   *store.Store
	history *store.HistoryProvider
	results *cache.LRU[[]recommend.Candidate]
	logger  zerolog.Logger
}

// NewHandler creates the handler set. results may be nil to disable
// response caching.
func NewHandler(cat *catalog.Catalog, ranker *recommend.Ranker, st *store.Store, history *store.HistoryProvider, results *cache.LRU[[]recommend.Candidate], logger zerolog.Logger) *Handler {
	return &Handler{
		catalog: cat,
		ranker:  ranker,
		store:   st,
		history: history,
		results: results,
		logger:  logger.With().Str("component", "api").Logger(),
	}
}

// urlID extracts a positive integer URL parameter.
func urlID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// urlUserID extracts the user ID URL parameter. User IDs are opaque
// identity provider strings, so any non-empty value is accepted.
func urlUserID(r *http.Request) (string, bool) {
	id := chi.URLParam(r, "userID")
	if id == "" {
		return "", false
	}
	return id, true
}

// Health reports service health and the loaded catalog size.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if err := h.store.Ping(r.Context()); err != nil {
		rw.ServiceUnavailable("database unreachable")
		return
	}

	rw.Success(map[string]interface{}{
		"status":        "ok",
		"catalog_items": h.catalog.Len(),
	})
}

// HealthLive reports process liveness only.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(map[string]interface{}{"status": "ok"})
}

// HealthReady reports readiness to serve: artifacts loaded and the store
// reachable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.catalog.Len() == 0 {
		rw.ServiceUnavailable("catalog not loaded")
		return
	}
	if err := h.store.Ping(r.Context()); err != nil {
		rw.ServiceUnavailable("database unreachable")
		return
	}
	rw.Success(map[string]interface{}{"status": "ready"})
}

// Search returns catalog movies whose title matches the query. Both q and
// query are accepted as the parameter name.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	query := r.URL.Query().Get("q")
	if query == "" {
		query = r.URL.Query().Get("query")
	}
	if query == "" {
		rw.BadRequest("query parameter q is required")
		return
	}
	limit := getIntParam(r, "limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}

	results := h.catalog.Search(query, limit)
	rw.SuccessWithCount(results, len(results))
}

// Popular returns the catalog ranked by popularity.
func (h *Handler) Popular(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit := getIntParam(r, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	results := h.catalog.Popular(limit)
	rw.SuccessWithCount(results, len(results))
}

// Movie returns one catalog movie by ID.
func (h *Handler) Movie(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, ok := urlID(r, "movieID")
	if !ok {
		rw.BadRequest("movie id must be a positive integer")
		return
	}

	item, found := h.catalog.Get(id)
	if !found {
		rw.NotFound("movie not found")
		return
	}
	rw.Success(item)
}

// MovieSimilar returns the movies most similar to one catalog movie.
func (h *Handler) MovieSimilar(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id, ok := urlID(r, "movieID")
	if !ok {
		rw.BadRequest("movie id must be a positive integer")
		return
	}
	if !h.catalog.Contains(id) {
		rw.NotFound("movie not found")
		return
	}

	k := getIntParam(r, "k", 0)
	results := h.ranker.SimilarTo(id, k)
	rw.SuccessWithCount(results, len(results))
}
