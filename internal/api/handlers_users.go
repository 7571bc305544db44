// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/reelrank/reelrank/internal/store"
)

// Rate records a rating. Re-rating the same movie replaces the old value.
func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid JSON body")
		return
	}
	if details, ok := validateRequest(&req); !ok {
		rw.ValidationFailed("invalid rating", details)
		return
	}
	if !h.catalog.Contains(req.MovieID) {
		rw.NotFound("movie not found")
		return
	}

	if err := h.store.UpsertRating(r.Context(), req.UserID, req.MovieID, req.Rating); err != nil {
		rw.InternalError("failed to store rating")
		return
	}
	h.invalidateUser(req.UserID)

	rw.Created(req)
}

// UserRatings returns a user's rating history, oldest first.
func (h *Handler) UserRatings(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, ok := urlUserID(r)
	if !ok {
		rw.BadRequest("user id is required")
		return
	}

	ratings, err := h.store.Ratings(r.Context(), userID)
	if err != nil {
		rw.InternalError("ratings lookup failed")
		return
	}
	rw.SuccessWithCount(ratings, len(ratings))
}

// UserData returns the rated and watchlisted movie IDs for a user in one
// response, for client bootstrap.
func (h *Handler) UserData(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, ok := urlUserID(r)
	if !ok {
		rw.BadRequest("user id is required")
		return
	}

	ratings, err := h.store.Ratings(r.Context(), userID)
	if err != nil {
		rw.InternalError("ratings lookup failed")
		return
	}
	watchlist, err := h.store.Watchlist(r.Context(), userID)
	if err != nil {
		rw.InternalError("watchlist lookup failed")
		return
	}

	rated := make([]int, len(ratings))
	for i, rating := range ratings {
		rated[i] = rating.MovieID
	}
	listed := make([]int, len(watchlist))
	for i, entry := range watchlist {
		listed[i] = entry.MovieID
	}

	rw.Success(map[string]interface{}{
		"rated":     rated,
		"watchlist": listed,
	})
}

// userStatsResponse is the stats payload, with a persona label derived
// from rating volume.
type userStatsResponse struct {
	RatedCount    int     `json:"rated_count"`
	AverageRating float64 `json:"average_rating"`
	LikedCount    int     `json:"liked_count"`
	Persona       string  `json:"persona"`
}

func personaFor(ratedCount int) string {
	switch {
	case ratedCount == 0:
		return "Newcomer"
	case ratedCount < 10:
		return "Casual Viewer"
	case ratedCount < 50:
		return "Movie Fan"
	case ratedCount < 200:
		return "Cinephile"
	default:
		return "Film Buff"
	}
}

// UserStats returns aggregate rating statistics for a user.
func (h *Handler) UserStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, ok := urlUserID(r)
	if !ok {
		rw.BadRequest("user id is required")
		return
	}

	stats, err := h.store.Stats(r.Context(), userID, h.ranker.Config().LikeThreshold)
	if err != nil {
		rw.InternalError("stats lookup failed")
		return
	}
	rw.Success(userStatsResponse{
		RatedCount:    stats.RatingCount,
		AverageRating: stats.AverageRating,
		LikedCount:    stats.LikedCount,
		Persona:       personaFor(stats.RatingCount),
	})
}

// DeleteUserData removes all stored state for a user.
func (h *Handler) DeleteUserData(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, ok := urlUserID(r)
	if !ok {
		rw.BadRequest("user id is required")
		return
	}

	if err := h.store.DeleteUserData(r.Context(), userID); err != nil {
		rw.InternalError("failed to delete user data")
		return
	}
	h.invalidateUser(userID)
	rw.NoContent()
}

// SetWatchlist adds or updates a watchlist entry.
func (h *Handler) SetWatchlist(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req WatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid JSON body")
		return
	}
	if details, ok := validateRequest(&req); !ok {
		rw.ValidationFailed("invalid watchlist entry", details)
		return
	}
	if !h.catalog.Contains(req.MovieID) {
		rw.NotFound("movie not found")
		return
	}

	if err := h.store.SetWatchlist(r.Context(), req.UserID, req.MovieID, req.Status); err != nil {
		rw.InternalError("failed to store watchlist entry")
		return
	}
	rw.Created(req)
}

// Watchlist returns a user's watchlist with catalog display fields.
func (h *Handler) Watchlist(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, ok := urlUserID(r)
	if !ok {
		rw.BadRequest("user id is required")
		return
	}

	entries, err := h.store.Watchlist(r.Context(), userID)
	if err != nil {
		rw.InternalError("watchlist lookup failed")
		return
	}

	type watchlistItem struct {
		store.WatchlistEntry
		Title string `json:"title,omitempty"`
	}
	out := make([]watchlistItem, len(entries))
	for i, e := range entries {
		out[i] = watchlistItem{WatchlistEntry: e}
		if item, found := h.catalog.Get(e.MovieID); found {
			out[i].Title = item.Title
		}
	}
	rw.SuccessWithCount(out, len(out))
}

// RemoveFromWatchlist deletes one watchlist entry.
func (h *Handler) RemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, ok := urlUserID(r)
	if !ok {
		rw.BadRequest("user id is required")
		return
	}
	movieID, ok := urlID(r, "movieID")
	if !ok {
		rw.BadRequest("movie id must be a positive integer")
		return
	}

	if err := h.store.RemoveFromWatchlist(r.Context(), userID, movieID); err != nil {
		rw.InternalError("failed to remove watchlist entry")
		return
	}
	rw.NoContent()
}

// AddReview stores a movie review.
func (h *Handler) AddReview(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid JSON body")
		return
	}
	if details, ok := validateRequest(&req); !ok {
		rw.ValidationFailed("invalid review", details)
		return
	}
	if !h.catalog.Contains(req.MovieID) {
		rw.NotFound("movie not found")
		return
	}

	id, err := h.store.AddReview(r.Context(), req.UserID, req.MovieID, req.Content)
	if err != nil {
		rw.InternalError("failed to store review")
		return
	}
	rw.Created(map[string]interface{}{"id": id})
}

// MovieReviews returns a movie's reviews, newest first.
func (h *Handler) MovieReviews(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	movieID, ok := urlID(r, "movieID")
	if !ok {
		rw.BadRequest("movie id must be a positive integer")
		return
	}
	limit := getIntParam(r, "limit", 50)

	reviews, err := h.store.ReviewsForMovie(r.Context(), movieID, limit)
	if err != nil {
		rw.InternalError("reviews lookup failed")
		return
	}
	rw.SuccessWithCount(reviews, len(reviews))
}

// UserReviews returns a user's reviews, newest first.
func (h *Handler) UserReviews(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, ok := urlUserID(r)
	if !ok {
		rw.BadRequest("user id is required")
		return
	}
	limit := getIntParam(r, "limit", 50)

	reviews, err := h.store.ReviewsByUser(r.Context(), userID, limit)
	if err != nil {
		rw.InternalError("reviews lookup failed")
		return
	}
	rw.SuccessWithCount(reviews, len(reviews))
}

// Profile returns a user's profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, ok := urlUserID(r)
	if !ok {
		rw.BadRequest("user id is required")
		return
	}

	profile, err := h.store.Profile(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		rw.NotFound("profile not found")
		return
	}
	if err != nil {
		rw.InternalError("profile lookup failed")
		return
	}
	rw.Success(profile)
}

// UpsertProfile creates or replaces a user's profile.
func (h *Handler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, ok := urlUserID(r)
	if !ok {
		rw.BadRequest("user id is required")
		return
	}

	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid JSON body")
		return
	}
	if details, ok := validateRequest(&req); !ok {
		rw.ValidationFailed("invalid profile", details)
		return
	}

	profile := store.Profile{
		UserID:         userID,
		DisplayName:    req.DisplayName,
		FavoriteGenres: req.FavoriteGenres,
	}
	if err := h.store.UpsertProfile(r.Context(), profile); err != nil {
		rw.InternalError("failed to store profile")
		return
	}
	rw.Success(profile)
}
