// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestJanitorService_RunsPeriodically(t *testing.T) {
	t.Parallel()

	var runs atomic.Int64
	task := func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}
	svc := NewJanitorService("sweep", 10*time.Millisecond, task, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("task ran %d times, want at least 3", runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestJanitorService_SurvivesTaskFailure(t *testing.T) {
	t.Parallel()

	var runs atomic.Int64
	task := func(ctx context.Context) error {
		runs.Add(1)
		return errors.New("checkpoint busy")
	}
	svc := NewJanitorService("checkpoint", 10*time.Millisecond, task, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for runs.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("task ran %d times after a failure, want at least 2", runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestJanitorService_String(t *testing.T) {
	t.Parallel()

	svc := NewJanitorService("store-maintenance", time.Minute, nil, zerolog.Nop())
	if got := svc.String(); got != "janitor-store-maintenance" {
		t.Errorf("String() = %q", got)
	}
}
