// Reelrank - Hybrid Movie Recommendation Service
// Copyright 2026 Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package similarity

import (
	"os"
	"path/filepath"
	"testing"
)

func testIndex(t *testing.T) *Index {
	t.Helper()

	idx, err := New(
		[]int{100, 200, 300},
		[][]float64{
			{1.0, 0.8, 0.3},
			{0.8, 1.0, 0.5},
			{0.3, 0.5, 1.0},
		},
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return idx
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ids     []int
		matrix  [][]float64
		wantErr bool
	}{
		{
			name:   "valid square matrix",
			ids:    []int{1, 2},
			matrix: [][]float64{{1, 0.5}, {0.5, 1}},
		},
		{
			name:    "empty",
			ids:     nil,
			matrix:  nil,
			wantErr: true,
		},
		{
			name:    "row count mismatch",
			ids:     []int{1, 2},
			matrix:  [][]float64{{1, 0.5}},
			wantErr: true,
		},
		{
			name:    "ragged row",
			ids:     []int{1, 2},
			matrix:  [][]float64{{1, 0.5}, {0.5}},
			wantErr: true,
		},
		{
			name:    "duplicate ids",
			ids:     []int{1, 1},
			matrix:  [][]float64{{1, 0.5}, {0.5, 1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(tt.ids, tt.matrix)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("valid artifact", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "similarity.json")
		payload := `{"ids": [1, 2], "matrix": [[1.0, 0.4], [0.4, 1.0]]}`
		if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		idx, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got, ok := idx.Similarity(1, 2); !ok || got != 0.4 {
			t.Errorf("Similarity(1, 2) = %f, %v, want 0.4, true", got, ok)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
			t.Error("Load() expected error for missing file")
		}
	})
}

func TestIndex_Similarity(t *testing.T) {
	t.Parallel()

	idx := testIndex(t)

	tests := []struct {
		name   string
		a, b   int
		want   float64
		wantOK bool
	}{
		{name: "known pair", a: 100, b: 200, want: 0.8, wantOK: true},
		{name: "self similarity", a: 100, b: 100, want: 1.0, wantOK: true},
		{name: "unknown first", a: 999, b: 200},
		{name: "unknown second", a: 100, b: 999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := idx.Similarity(tt.a, tt.b)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Similarity(%d, %d) = %f, %v, want %f, %v", tt.a, tt.b, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestIndex_SimilarTo(t *testing.T) {
	t.Parallel()

	idx := testIndex(t)

	tests := []struct {
		name string
		id   int
		k    int
		want []Neighbor
	}{
		{
			name: "ordered descending without self",
			id:   100,
			k:    10,
			want: []Neighbor{{ID: 200, Score: 0.8}, {ID: 300, Score: 0.3}},
		},
		{
			name: "k truncates",
			id:   300,
			k:    1,
			want: []Neighbor{{ID: 200, Score: 0.5}},
		},
		{
			name: "unknown id",
			id:   999,
			k:    10,
			want: nil,
		},
		{
			name: "non-positive k",
			id:   100,
			k:    0,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := idx.SimilarTo(tt.id, tt.k)
			if len(got) != len(tt.want) {
				t.Fatalf("SimilarTo(%d, %d) returned %d neighbors, want %d", tt.id, tt.k, len(got), len(tt.want))
			}
			for i, want := range tt.want {
				if got[i] != want {
					t.Errorf("SimilarTo(%d, %d)[%d] = %+v, want %+v", tt.id, tt.k, i, got[i], want)
				}
				if got[i].ID == tt.id {
					t.Errorf("SimilarTo(%d, %d) included the item itself", tt.id, tt.k)
				}
			}
		})
	}
}
