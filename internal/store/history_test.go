// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package store

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/reelrank/reelrank/internal/metrics"
)

func TestHistoryProvider_History(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertRating(ctx, "u1", 10, 4.5); err != nil {
		t.Fatalf("UpsertRating() error = %v", err)
	}
	if err := s.UpsertRating(ctx, "u1", 11, 2.0); err != nil {
		t.Fatalf("UpsertRating() error = %v", err)
	}

	p := NewHistoryProvider(s, DefaultHistoryConfig(), zerolog.New(io.Discard))

	events, err := p.History(ctx, "u1")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("History() returned %d events, want 2", len(events))
	}
	for _, ev := range events {
		if ev.MovieID != 10 && ev.MovieID != 11 {
			t.Errorf("History() returned unexpected movie %d", ev.MovieID)
		}
	}

	t.Run("unknown user yields empty history", func(t *testing.T) {
		events, err := p.History(ctx, "ghost")
		if err != nil {
			t.Fatalf("History() error = %v", err)
		}
		if len(events) != 0 {
			t.Errorf("History() returned %d events, want 0", len(events))
		}
	})
}

func TestHistoryProvider_BudgetExhaustion(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	cfg := DefaultHistoryConfig()
	cfg.RequestsPerSecond = 0.001
	cfg.Burst = 1
	p := NewHistoryProvider(s, cfg, zerolog.New(io.Discard))

	if _, err := p.History(context.Background(), "u1"); err != nil {
		t.Fatalf("History() first call error = %v", err)
	}

	before := testutil.ToFloat64(metrics.HistoryRejections.WithLabelValues("budget"))

	_, err := p.History(context.Background(), "u1")
	if !errors.Is(err, ErrHistoryUnavailable) {
		t.Errorf("History() over budget error = %v, want ErrHistoryUnavailable", err)
	}

	if after := testutil.ToFloat64(metrics.HistoryRejections.WithLabelValues("budget")); after != before+1 {
		t.Errorf("budget rejections = %f, want %f", after, before+1)
	}
}

func TestHistoryProvider_BreakerOpensOnFailures(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	cfg := DefaultHistoryConfig()
	cfg.FailureThreshold = 2
	p := NewHistoryProvider(s, cfg, zerolog.New(io.Discard))

	// Closing the database makes every query fail.
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	before := testutil.ToFloat64(metrics.HistoryRejections.WithLabelValues("breaker"))

	for i := 0; i < 3; i++ {
		if _, err := p.History(context.Background(), "u1"); !errors.Is(err, ErrHistoryUnavailable) {
			t.Fatalf("History() call %d error = %v, want ErrHistoryUnavailable", i, err)
		}
	}

	// With a threshold of 2 the third call is rejected by the open breaker.
	if after := testutil.ToFloat64(metrics.HistoryRejections.WithLabelValues("breaker")); after < before+1 {
		t.Errorf("breaker rejections = %f, want at least %f", after, before+1)
	}
}
