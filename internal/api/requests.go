// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RateRequest is the body of POST /ratings. User IDs are opaque identity
// provider strings, typically UUIDs.
type RateRequest struct {
	UserID  string  `json:"user_id" validate:"required,max=128"`
	MovieID int     `json:"movie_id" validate:"required,min=1"`
	Rating  float64 `json:"rating" validate:"min=0,max=5"`
}

// WatchlistRequest is the body of POST /watchlist.
type WatchlistRequest struct {
	UserID  string `json:"user_id" validate:"required,max=128"`
	MovieID int    `json:"movie_id" validate:"required,min=1"`
	Status  string `json:"status" validate:"required,oneof=plan_to_watch watched"`
}

// ReviewRequest is the body of POST /reviews.
type ReviewRequest struct {
	UserID  string `json:"user_id" validate:"required,max=128"`
	MovieID int    `json:"movie_id" validate:"required,min=1"`
	Content string `json:"content" validate:"required,min=1,max=10000"`
}

// ProfileRequest is the body of PUT /users/{id}/profile.
type ProfileRequest struct {
	DisplayName    string   `json:"display_name" validate:"max=100"`
	FavoriteGenres []string `json:"favorite_genres" validate:"max=20,dive,min=1,max=50"`
}

// validateRequest validates a request struct and flattens failures into
// per-field messages.
func validateRequest(v interface{}) (details []string, ok bool) {
	err := validate.Struct(v)
	if err == nil {
		return nil, true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}, false
	}

	for _, fe := range verrs {
		details = append(details, strings.ToLower(fe.Field())+" failed "+fe.Tag()+" validation")
	}
	return details, false
}

// getIntParam extracts an integer query parameter with a default value.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// parseCommaSeparated splits a comma-separated parameter, dropping empties.
func parseCommaSeparated(value string) []string {
	if value == "" {
		return nil
	}

	var result []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
