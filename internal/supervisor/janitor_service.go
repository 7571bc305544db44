// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package supervisor

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// JanitorService runs a maintenance task at a fixed interval under the
// supervisor tree. Task failures are logged but do not stop the service;
// only context cancellation ends the loop, so suture never needs to
// restart it over a transient maintenance error.
type JanitorService struct {
	name     string
	interval time.Duration
	task     func(ctx context.Context) error
	logger   zerolog.Logger
}

// NewJanitorService creates a periodic maintenance service. The name shows
// up in supervisor events and logs.
func NewJanitorService(name string, interval time.Duration, task func(ctx context.Context) error, logger zerolog.Logger) *JanitorService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &JanitorService{
		name:     name,
		interval: interval,
		task:     task,
		logger:   logger.With().Str("component", name).Logger(),
	}
}

// Serve implements suture.Service. The first run happens one interval
// after start, not immediately, so startup is not delayed by maintenance.
func (j *JanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			start := time.Now()
			if err := j.task(ctx); err != nil {
				j.logger.Warn().Err(err).Msg("Maintenance run failed")
				continue
			}
			j.logger.Debug().
				Dur("duration", time.Since(start)).
				Msg("Maintenance run complete")

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (j *JanitorService) String() string {
	return fmt.Sprintf("janitor-%s", j.name)
}
