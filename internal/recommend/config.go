// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import "fmt"

// ColdStartPolicy selects the behavior for users with no rating history.
type ColdStartPolicy string

const (
	// ColdStartEmpty returns no candidates, signaling the caller to fall
	// back to onboarding.
	ColdStartEmpty ColdStartPolicy = "empty"

	// ColdStartRandomSample returns a uniform random catalog sample.
	ColdStartRandomSample ColdStartPolicy = "random_sample"
)

// Config contains the tunables of the hybrid ranker and its variants.
// Historically these constants drifted across several near-duplicate ranking
// implementations; they are unified here as named options.
type Config struct {
	// BoostWeight scales the content-similarity boost added to the
	// collaborative estimate. Observed values range 0.5 to 1.5; the
	// default of 0.5 matches the production constant.
	BoostWeight float64 `json:"boost_weight" koanf:"boost_weight"`

	// CandidatePoolSize bounds the number of unseen items scored per
	// request. The pool is a uniform random downsample of the unseen
	// catalog, trading accuracy for per-request cost.
	// Default: 500.
	CandidatePoolSize int `json:"candidate_pool_size" koanf:"candidate_pool_size"`

	// LikeThreshold is the minimum rating that marks an item "liked".
	// Default: 4.0.
	LikeThreshold float64 `json:"like_threshold" koanf:"like_threshold"`

	// ColdStart selects the empty-history policy.
	// Default: random_sample.
	ColdStart ColdStartPolicy `json:"cold_start_policy" koanf:"cold_start_policy"`

	// DefaultK is the number of candidates returned when the caller does
	// not ask for a specific count. Default: 12.
	DefaultK int `json:"default_k" koanf:"default_k"`

	// MaxK caps the number of candidates a single request may ask for.
	// Default: 100.
	MaxK int `json:"max_k" koanf:"max_k"`

	// HiddenGemMaxPopularity is the popularity ceiling for hidden gems.
	// Items without a popularity signal always pass. Default: 25.0.
	HiddenGemMaxPopularity float64 `json:"hidden_gem_max_popularity" koanf:"hidden_gem_max_popularity"`

	// OnboardingWindow bounds the candidate window sampled before the
	// smaller display sample during onboarding. Default: 200.
	OnboardingWindow int `json:"onboarding_window" koanf:"onboarding_window"`

	// Seed fixes the random source for deterministic output. Zero means
	// a fresh source per request (production default).
	Seed int64 `json:"seed" koanf:"seed"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		BoostWeight:            0.5,
		CandidatePoolSize:      500,
		LikeThreshold:          4.0,
		ColdStart:              ColdStartRandomSample,
		DefaultK:               12,
		MaxK:                   100,
		HiddenGemMaxPopularity: 25.0,
		OnboardingWindow:       200,
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.BoostWeight < 0 {
		return fmt.Errorf("boost_weight must be non-negative, got %f", c.BoostWeight)
	}
	if c.CandidatePoolSize < 1 {
		return fmt.Errorf("candidate_pool_size must be positive, got %d", c.CandidatePoolSize)
	}
	if c.LikeThreshold < 0 || c.LikeThreshold > 5 {
		return fmt.Errorf("like_threshold must be in [0, 5], got %f", c.LikeThreshold)
	}
	switch c.ColdStart {
	case ColdStartEmpty, ColdStartRandomSample:
	default:
		return fmt.Errorf("cold_start_policy must be %q or %q, got %q", ColdStartEmpty, ColdStartRandomSample, c.ColdStart)
	}
	if c.DefaultK < 1 {
		return fmt.Errorf("default_k must be positive, got %d", c.DefaultK)
	}
	if c.MaxK < c.DefaultK {
		return fmt.Errorf("max_k must be >= default_k, got %d < %d", c.MaxK, c.DefaultK)
	}
	if c.HiddenGemMaxPopularity < 0 {
		return fmt.Errorf("hidden_gem_max_popularity must be non-negative, got %f", c.HiddenGemMaxPopularity)
	}
	if c.OnboardingWindow < 1 {
		return fmt.Errorf("onboarding_window must be positive, got %d", c.OnboardingWindow)
	}
	return nil
}
