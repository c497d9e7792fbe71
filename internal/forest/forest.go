// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

// Package forest implements an Isolation Forest over fixed-width feature vectors.
//
// A Forest is immutable once Train returns. Scoring is safe for concurrent use.
// Randomness is always supplied by the caller so training can be reproduced
// from a seed.
package forest

import (
	"math"
	"math/rand"
)

// Forest is a trained ensemble of isolation trees.
type Forest struct {
	trees      []*Node
	sampleSize int
	normalizer float64
}

// Train builds numTrees trees, each from a uniform subsample (without
// replacement) of min(sampleSize, len(data)) vectors. Each tree is height
// limited to ceil(log2(sampleSize)).
//
// Train returns an empty forest when data is empty or numTrees is not positive.
func Train(data [][]float64, numTrees, sampleSize int, rng *rand.Rand) *Forest {
	if len(data) == 0 || numTrees <= 0 || sampleSize <= 0 {
		return &Forest{}
	}

	size := sampleSize
	if size > len(data) {
		size = len(data)
	}
	heightLimit := int(math.Ceil(math.Log2(float64(sampleSize))))

	trees := make([]*Node, 0, numTrees)
	for i := 0; i < numTrees; i++ {
		trees = append(trees, buildTree(subsample(data, size, rng), 0, heightLimit, rng))
	}

	return &Forest{
		trees:      trees,
		sampleSize: sampleSize,
		normalizer: AveragePathLength(sampleSize),
	}
}

// subsample draws k distinct rows uniformly at random.
func subsample(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	perm := rng.Perm(len(data))
	out := make([][]float64, k)
	for i := 0; i < k; i++ {
		out[i] = data[perm[i]]
	}
	return out
}

// AveragePath returns the mean isolation path length of x across all trees.
func (f *Forest) AveragePath(x []float64) float64 {
	if f == nil || len(f.trees) == 0 {
		return 0
	}
	var total float64
	for _, t := range f.trees {
		total += pathLength(t, x)
	}
	return total / float64(len(f.trees))
}

// Score returns the anomaly score of x in [0,1]. Higher is more anomalous.
// An untrained forest scores every vector 0.
func (f *Forest) Score(x []float64) float64 {
	if f == nil || len(f.trees) == 0 || f.normalizer <= 0 {
		return 0
	}
	s := math.Pow(2, -f.AveragePath(x)/f.normalizer)
	switch {
	case math.IsNaN(s), s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}

// Trained reports whether the forest holds at least one tree.
func (f *Forest) Trained() bool {
	return f != nil && len(f.trees) > 0
}

// Size returns the number of trees.
func (f *Forest) Size() int {
	if f == nil {
		return 0
	}
	return len(f.trees)
}

// SampleSize returns the subsample size the forest was trained with.
func (f *Forest) SampleSize() int {
	if f == nil {
		return 0
	}
	return f.sampleSize
}
