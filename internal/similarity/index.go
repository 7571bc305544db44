// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package similarity holds the precomputed item-to-item content similarity
// matrix.
//
// The matrix is produced offline (TF-IDF over genre and overview text,
// cosine similarity) and consumed read-only. Rows are addressed through an
// id-to-row map; catalog items absent from the map simply have no content
// signal and score zero, they are never an error.
package similarity

import (
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-json"
)

// Index is the read-only similarity matrix with its id-to-row mapping.
// Safe for unbounded concurrent readers after construction.
type Index struct {
	matrix [][]float64
	rowOf  map[int]int // movie ID -> row index
	ids    []int       // row index -> movie ID
}

// artifact is the on-disk JSON layout: the id list defines row order.
type artifact struct {
	IDs    []int       `json:"ids"`
	Matrix [][]float64 `json:"matrix"`
}

// Load reads the similarity artifact from path.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read similarity artifact %s: %w", path, err)
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("decode similarity artifact %s: %w", path, err)
	}

	return New(art.IDs, art.Matrix)
}

// New builds an index over the given id list and square matrix.
// The id list must be a bijection onto matrix rows.
func New(ids []int, matrix [][]float64) (*Index, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("similarity index is empty")
	}
	if len(matrix) != len(ids) {
		return nil, fmt.Errorf("similarity matrix has %d rows for %d ids", len(matrix), len(ids))
	}

	rowOf := make(map[int]int, len(ids))
	for i, id := range ids {
		if _, dup := rowOf[id]; dup {
			return nil, fmt.Errorf("duplicate movie id %d in similarity index", id)
		}
		if len(matrix[i]) != len(ids) {
			return nil, fmt.Errorf("similarity matrix row %d has %d columns, want %d", i, len(matrix[i]), len(ids))
		}
		rowOf[id] = i
	}

	idsCopy := make([]int, len(ids))
	copy(idsCopy, ids)

	return &Index{matrix: matrix, rowOf: rowOf, ids: idsCopy}, nil
}

// Len returns the number of items in the index.
func (x *Index) Len() int {
	return len(x.ids)
}

// Contains reports whether the item has a row in the index.
func (x *Index) Contains(id int) bool {
	_, ok := x.rowOf[id]
	return ok
}

// Similarity returns the content similarity between two items.
// Items without a row contribute no content signal: the result is 0, false.
func (x *Index) Similarity(a, b int) (float64, bool) {
	ra, ok := x.rowOf[a]
	if !ok {
		return 0, false
	}
	rb, ok := x.rowOf[b]
	if !ok {
		return 0, false
	}
	return x.matrix[ra][rb], true
}

// Neighbor is one entry of a SimilarTo result.
type Neighbor struct {
	ID    int
	Score float64
}

// SimilarTo returns up to k items most similar to the given item, ordered by
// similarity descending. The item itself is excluded (its self-similarity is
// always rank zero). An unknown id yields an empty result, not an error.
func (x *Index) SimilarTo(id, k int) []Neighbor {
	row, ok := x.rowOf[id]
	if !ok || k <= 0 {
		return nil
	}

	neighbors := make([]Neighbor, 0, len(x.ids)-1)
	for i, score := range x.matrix[row] {
		if i == row {
			continue
		}
		neighbors = append(neighbors, Neighbor{ID: x.ids[i], Score: score})
	}

	// Stable so equal scores keep matrix row order.
	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Score > neighbors[j].Score
	})

	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}
