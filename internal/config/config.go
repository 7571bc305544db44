// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package config loads the service configuration with layered precedence:
// environment variables override the optional YAML config file, which
// overrides built-in defaults.
package config

import (
	"fmt"
	"time"

	"github.com/reelrank/reelrank/internal/recommend"
	"github.com/reelrank/reelrank/internal/store"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig     `koanf:"server"`
	Database  DatabaseConfig   `koanf:"database"`
	Artifacts ArtifactsConfig  `koanf:"artifacts"`
	Recommend recommend.Config `koanf:"recommend"`
	History   HistoryConfig    `koanf:"history"`
	Cache     CacheConfig      `koanf:"cache"`
	Logging   LoggingConfig    `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RateLimitRequests is the per-IP request budget per RateLimitWindow.
	// Zero disables rate limiting.
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	// CORSAllowedOrigins lists allowed origins. Empty means same-origin
	// only.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	Path string `koanf:"path"`

	// MaintenanceInterval is how often the janitor checkpoints the WAL
	// and sweeps expired cache entries.
	MaintenanceInterval time.Duration `koanf:"maintenance_interval"`
}

// ArtifactsConfig locates the precomputed recommendation artifacts.
type ArtifactsConfig struct {
	CatalogPath    string `koanf:"catalog_path"`
	SimilarityPath string `koanf:"similarity_path"`
	EstimatorPath  string `koanf:"estimator_path"`
}

// HistoryConfig configures the guarded history fetch path.
type HistoryConfig struct {
	QueryTimeout      time.Duration `koanf:"query_timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
	FailureThreshold  uint32        `koanf:"failure_threshold"`
	OpenTimeout       time.Duration `koanf:"open_timeout"`
}

// Store converts to the store package's config type.
func (c HistoryConfig) Store() store.HistoryConfig {
	return store.HistoryConfig{
		QueryTimeout:      c.QueryTimeout,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
		FailureThreshold:  c.FailureThreshold,
		OpenTimeout:       c.OpenTimeout,
	}
}

// CacheConfig configures the ranking result cache. Entries are dropped on
// any write to the owning user's state, so TTL only bounds staleness
// against artifact or clock drift.
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	Size    int           `koanf:"size"`
	TTL     time.Duration `koanf:"ttl"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults, applied before the config
// file and environment layers.
func defaultConfig() *Config {
	history := store.DefaultHistoryConfig()
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
		},
		Database: DatabaseConfig{
			Path:                "/data/reelrank.db",
			MaintenanceInterval: 5 * time.Minute,
		},
		Artifacts: ArtifactsConfig{
			CatalogPath:    "/data/artifacts/catalog.json",
			SimilarityPath: "/data/artifacts/similarity.json",
			EstimatorPath:  "/data/artifacts/estimator.json",
		},
		Recommend: recommend.DefaultConfig(),
		History: HistoryConfig{
			QueryTimeout:      history.QueryTimeout,
			RequestsPerSecond: history.RequestsPerSecond,
			Burst:             history.Burst,
			FailureThreshold:  history.FailureThreshold,
			OpenTimeout:       history.OpenTimeout,
		},
		Cache: CacheConfig{
			Enabled: true,
			Size:    1024,
			TTL:     time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.MaintenanceInterval <= 0 {
		return fmt.Errorf("database.maintenance_interval must be positive, got %s", c.Database.MaintenanceInterval)
	}
	if c.Artifacts.CatalogPath == "" {
		return fmt.Errorf("artifacts.catalog_path is required")
	}
	if c.Artifacts.SimilarityPath == "" {
		return fmt.Errorf("artifacts.similarity_path is required")
	}
	if c.Artifacts.EstimatorPath == "" {
		return fmt.Errorf("artifacts.estimator_path is required")
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	if c.Cache.Enabled {
		if c.Cache.Size < 1 {
			return fmt.Errorf("cache.size must be positive, got %d", c.Cache.Size)
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
		}
	}
	return nil
}
