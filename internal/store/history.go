// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/reelrank/reelrank/internal/metrics"
	"github.com/reelrank/reelrank/internal/recommend"
)

// ErrHistoryUnavailable marks a history fetch rejected by the request
// budget or the circuit breaker, or failed at the database. Ranking cannot
// proceed without history; callers translate this to a retryable failure
// rather than serving recommendations from a silently empty history.
var ErrHistoryUnavailable = errors.New("rating history unavailable")

// HistoryConfig configures the guarded history provider.
type HistoryConfig struct {
	// QueryTimeout bounds one history query. Default: 2s.
	QueryTimeout time.Duration

	// RequestsPerSecond is the sustained history query budget.
	// Default: 100.
	RequestsPerSecond float64

	// Burst is the momentary budget above the sustained rate.
	// Default: 200.
	Burst int

	// FailureThreshold is the number of consecutive query failures
	// before the circuit opens. Default: 5.
	FailureThreshold uint32

	// OpenTimeout is the duration the circuit stays open before probing
	// again. Default: 10s.
	OpenTimeout time.Duration
}

// DefaultHistoryConfig returns the production defaults.
func DefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{
		QueryTimeout:      2 * time.Second,
		RequestsPerSecond: 100,
		Burst:             200,
		FailureThreshold:  5,
		OpenTimeout:       10 * time.Second,
	}
}

func (c *HistoryConfig) applyDefaults() {
	def := DefaultHistoryConfig()
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = def.QueryTimeout
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = def.RequestsPerSecond
	}
	if c.Burst <= 0 {
		c.Burst = def.Burst
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = def.FailureThreshold
	}
	if c.OpenTimeout <= 0 {
		c.OpenTimeout = def.OpenTimeout
	}
}

// HistoryProvider fetches rating histories for the ranking core, guarded
// by a request budget and a circuit breaker so a degraded database sheds
// recommendation load instead of queueing it.
type HistoryProvider struct {
	store   *Store
	cfg     HistoryConfig
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]recommend.RatingEvent]
	logger  zerolog.Logger
}

// NewHistoryProvider wraps the store's rating queries with the guard rails.
func NewHistoryProvider(s *Store, cfg HistoryConfig, logger zerolog.Logger) *HistoryProvider {
	cfg.applyDefaults()

	p := &HistoryProvider{
		store:   s,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:  logger.With().Str("component", "history").Logger(),
	}

	p.breaker = gobreaker.NewCircuitBreaker[[]recommend.RatingEvent](gobreaker.Settings{
		Name:    "history",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("history circuit state change")
		},
	})

	return p
}

// History returns the user's rating history as ranking events, oldest
// first. Budget exhaustion, an open circuit, and query failures all
// surface as ErrHistoryUnavailable.
func (p *HistoryProvider) History(ctx context.Context, userID string) ([]recommend.RatingEvent, error) {
	if !p.limiter.Allow() {
		metrics.HistoryRejections.WithLabelValues("budget").Inc()
		p.logger.Warn().Str("user_id", userID).Msg("history request budget exhausted")
		return nil, fmt.Errorf("request budget exhausted: %w", ErrHistoryUnavailable)
	}

	events, err := p.breaker.Execute(func() ([]recommend.RatingEvent, error) {
		qctx, cancel := context.WithTimeout(ctx, p.cfg.QueryTimeout)
		defer cancel()

		ratings, err := p.store.Ratings(qctx, userID)
		if err != nil {
			return nil, err
		}

		events := make([]recommend.RatingEvent, len(ratings))
		for i, r := range ratings {
			events[i] = recommend.RatingEvent{MovieID: r.MovieID, Rating: r.Rating}
		}
		return events, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.HistoryRejections.WithLabelValues("breaker").Inc()
		}
		p.logger.Error().Err(err).Str("user_id", userID).Msg("history fetch failed")
		return nil, fmt.Errorf("fetch history user=%s: %w: %v", userID, ErrHistoryUnavailable, err)
	}

	return events, nil
}
