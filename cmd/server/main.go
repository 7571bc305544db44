// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Command server runs the recommendation service: it loads the precomputed
// artifacts, opens the ratings store, and serves the HTTP API under a
// supervision tree.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/reelrank/reelrank/internal/api"
	"github.com/reelrank/reelrank/internal/cache"
	"github.com/reelrank/reelrank/internal/catalog"
	"github.com/reelrank/reelrank/internal/config"
	"github.com/reelrank/reelrank/internal/estimate"
	"github.com/reelrank/reelrank/internal/logging"
	"github.com/reelrank/reelrank/internal/metrics"
	"github.com/reelrank/reelrank/internal/recommend"
	"github.com/reelrank/reelrank/internal/similarity"
	"github.com/reelrank/reelrank/internal/store"
	"github.com/reelrank/reelrank/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("catalog", cfg.Artifacts.CatalogPath).
		Msg("Configuration loaded")

	// The artifacts are the service's reason to exist; any load failure
	// is fatal at startup rather than degraded at request time.
	cat, err := catalog.Load(cfg.Artifacts.CatalogPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load catalog artifact")
	}
	sim, err := similarity.Load(cfg.Artifacts.SimilarityPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load similarity artifact")
	}
	model, err := estimate.Load(cfg.Artifacts.EstimatorPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load estimator artifact")
	}
	metrics.SetArtifactSizes(cat.Len(), sim.Len(), model.Len())
	logging.Info().
		Int("catalog_items", cat.Len()).
		Int("similarity_items", sim.Len()).
		Int("estimator_items", model.Len()).
		Msg("Artifacts loaded")

	st, err := store.Open(cfg.Database.Path, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	ranker, err := recommend.NewRanker(cfg.Recommend, cat, sim, model, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build ranker")
	}

	history := store.NewHistoryProvider(st, cfg.History.Store(), logging.Logger())

	var results *cache.LRU[[]recommend.Candidate]
	if cfg.Cache.Enabled {
		results = cache.NewLRU[[]recommend.Candidate](cfg.Cache.Size, cfg.Cache.TTL)
	}
	handler := api.NewHandler(cat, ranker, st, history, results, logging.Logger())
	router := api.NewRouter(handler, api.RouterConfig{
		RateLimitRequests:  cfg.Server.RateLimitRequests,
		RateLimitWindow:    cfg.Server.RateLimitWindow,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Background housekeeping: flush the SQLite WAL and sweep expired
	// result-cache entries on a fixed cadence.
	maintain := func(ctx context.Context) error {
		if results != nil {
			results.PurgeExpired()
		}
		return st.Checkpoint(ctx)
	}
	tree.AddMaintenanceService(supervisor.NewJanitorService(
		"store-maintenance", cfg.Database.MaintenanceInterval, maintain, logging.Logger()))
	logging.Info().
		Dur("interval", cfg.Database.MaintenanceInterval).
		Msg("Store maintenance service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	logging.Info().Msg("Service stopped gracefully")
}
