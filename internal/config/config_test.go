// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	if err := defaultConfig().Validate(); err != nil {
		t.Errorf("defaultConfig().Validate() error = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	mutate := func(f func(*Config)) *Config {
		cfg := defaultConfig()
		f(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{name: "defaults", cfg: defaultConfig()},
		{name: "port too low", cfg: mutate(func(c *Config) { c.Server.Port = 0 }), wantErr: true},
		{name: "port too high", cfg: mutate(func(c *Config) { c.Server.Port = 70000 }), wantErr: true},
		{name: "missing database path", cfg: mutate(func(c *Config) { c.Database.Path = "" }), wantErr: true},
		{name: "zero maintenance interval", cfg: mutate(func(c *Config) { c.Database.MaintenanceInterval = 0 }), wantErr: true},
		{name: "missing catalog artifact", cfg: mutate(func(c *Config) { c.Artifacts.CatalogPath = "" }), wantErr: true},
		{name: "missing similarity artifact", cfg: mutate(func(c *Config) { c.Artifacts.SimilarityPath = "" }), wantErr: true},
		{name: "missing estimator artifact", cfg: mutate(func(c *Config) { c.Artifacts.EstimatorPath = "" }), wantErr: true},
		{name: "invalid recommend section", cfg: mutate(func(c *Config) { c.Recommend.BoostWeight = -1 }), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Layering(t *testing.T) {
	// Not parallel: mutates the process environment.

	path := filepath.Join(t.TempDir(), "config.yaml")
	payload := `
server:
  port: 9090
recommend:
  boost_weight: 1.5
`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("REELRANK_SERVER_HOST", "127.0.0.1")
	t.Setenv("REELRANK_RECOMMEND_CANDIDATE_POOL_SIZE", "250")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// File overrides defaults.
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090 from file", cfg.Server.Port)
	}
	if cfg.Recommend.BoostWeight != 1.5 {
		t.Errorf("Recommend.BoostWeight = %f, want 1.5 from file", cfg.Recommend.BoostWeight)
	}

	// Environment overrides both.
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want env override", cfg.Server.Host)
	}
	if cfg.Recommend.CandidatePoolSize != 250 {
		t.Errorf("Recommend.CandidatePoolSize = %d, want env override", cfg.Recommend.CandidatePoolSize)
	}

	// Untouched settings keep defaults.
	if cfg.Database.Path != "/data/reelrank.db" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
}

func TestLoad_InvalidFileValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	payload := `
recommend:
  boost_weight: -2.0
`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	if _, err := Load(); err == nil {
		t.Error("Load() expected validation error")
	}
}

func TestEnvTransform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "REELRANK_SERVER_PORT", want: "server.port"},
		{in: "REELRANK_DATABASE_PATH", want: "database.path"},
		{in: "REELRANK_RECOMMEND_BOOST_WEIGHT", want: "recommend.boost_weight"},
		{in: "REELRANK_ARTIFACTS_CATALOG_PATH", want: "artifacts.catalog_path"},
		{in: "REELRANK_LOGGING_LEVEL", want: "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := envTransform(tt.in); got != tt.want {
				t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
