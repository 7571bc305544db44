// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package estimate exposes the precomputed collaborative-filtering rating
// model.
//
// The model is an SVD-style factorization trained offline. It carries no
// live per-user latent factors: every prediction substitutes a fixed
// population factor vector, so Estimate is a population-level affinity
// prior rather than a personalized score. This is a known limitation of the
// shipped artifact and is preserved deliberately; personalizing it would
// change observable ranking output without any trained per-user state to
// back it.
package estimate

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// Model is the read-only rating estimator. Safe for concurrent readers.
type Model struct {
	globalMean  float64
	itemBias    map[int]float64
	itemFactors map[int][]float64
	userFactors []float64 // population placeholder, may be empty
}

// artifact is the on-disk JSON layout of the factorization model.
type artifact struct {
	GlobalMean  float64           `json:"global_mean"`
	ItemBias    map[int]float64   `json:"item_bias"`
	ItemFactors map[int][]float64 `json:"item_factors"`
	UserFactors []float64         `json:"user_factors"`
}

// Load reads the estimator artifact from path.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read estimator artifact %s: %w", path, err)
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("decode estimator artifact %s: %w", path, err)
	}

	return New(art.GlobalMean, art.ItemBias, art.ItemFactors, art.UserFactors)
}

// New builds a model from its components. Factor vectors must all have the
// same dimension as the population user vector when both are present.
func New(globalMean float64, itemBias map[int]float64, itemFactors map[int][]float64, userFactors []float64) (*Model, error) {
	if len(itemBias) == 0 && len(itemFactors) == 0 {
		return nil, fmt.Errorf("estimator model has no items")
	}

	if len(userFactors) > 0 {
		for id, f := range itemFactors {
			if len(f) != len(userFactors) {
				return nil, fmt.Errorf("item %d factor dimension %d, want %d", id, len(f), len(userFactors))
			}
		}
	}

	if itemBias == nil {
		itemBias = map[int]float64{}
	}
	if itemFactors == nil {
		itemFactors = map[int][]float64{}
	}

	return &Model{
		globalMean:  globalMean,
		itemBias:    itemBias,
		itemFactors: itemFactors,
		userFactors: userFactors,
	}, nil
}

// Len returns the number of items known to the model.
func (m *Model) Len() int {
	if len(m.itemBias) > len(m.itemFactors) {
		return len(m.itemBias)
	}
	return len(m.itemFactors)
}

// Estimate returns the population-level predicted affinity for the item.
// An item unknown to the model yields ok=false; callers treat that as a
// zero score contribution, never as a failure.
func (m *Model) Estimate(itemID int) (float64, bool) {
	bias, hasBias := m.itemBias[itemID]
	factors, hasFactors := m.itemFactors[itemID]
	if !hasBias && !hasFactors {
		return 0, false
	}

	score := m.globalMean + bias
	for i := 0; i < len(factors) && i < len(m.userFactors); i++ {
		score += factors[i] * m.userFactors[i]
	}
	return score, true
}
