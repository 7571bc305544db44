// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig carries the HTTP-level tunables.
type RouterConfig struct {
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	CORSAllowedOrigins []string
}

// NewRouter assembles the full route tree.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(cfg.CORSAllowedOrigins))
	r.Use(AccessLog())

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
		r.Use(PrometheusMetrics())

		r.Get("/health", h.Health)
		r.Get("/health/live", h.HealthLive)
		r.Get("/health/ready", h.HealthReady)
		r.Get("/search", h.Search)
		r.Get("/popular", h.Popular)

		r.Route("/movies/{movieID}", func(r chi.Router) {
			r.Get("/", h.Movie)
			r.Get("/similar", h.MovieSimilar)
			r.Get("/reviews", h.MovieReviews)
		})

		r.Post("/ratings", h.Rate)
		r.Post("/watchlist", h.SetWatchlist)
		r.Post("/reviews", h.AddReview)

		r.Get("/recommendations/time-aware", h.TimeAware)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/ratings", h.UserRatings)
			r.Get("/stats", h.UserStats)
			r.Get("/taste", h.Taste)
			r.Get("/data", h.UserData)
			r.Delete("/data", h.DeleteUserData)

			r.Get("/recommendations", h.Recommendations)
			r.Get("/recommendations/hidden-gems", h.HiddenGems)
			r.Get("/recommendations/onboarding", h.Onboarding)

			r.Get("/watchlist", h.Watchlist)
			r.Delete("/watchlist/{movieID}", h.RemoveFromWatchlist)

			r.Get("/reviews", h.UserReviews)
			r.Get("/profile", h.Profile)
			r.Put("/profile", h.UpsertProfile)
		})
	})

	return r
}
