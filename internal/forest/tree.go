// TrackGuard - Wireless Tracking and Surveillance Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trackguard

package forest

import (
	"math"
	"math/rand"
)

// eulerGamma is the Euler-Mascheroni constant used in the harmonic approximation.
const eulerGamma = 0.5772156649

// Node is one node of an isolation tree. Leaves have nil children and carry
// the number of training samples that reached them.
type Node struct {
	Feature   int
	Threshold float64
	Left      *Node
	Right     *Node
	Size      int
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// buildTree recursively partitions samples until the height limit is reached,
// the partition holds one sample, or the chosen feature cannot be split.
func buildTree(samples [][]float64, height, heightLimit int, rng *rand.Rand) *Node {
	if height >= heightLimit || len(samples) <= 1 {
		return &Node{Size: len(samples)}
	}

	numFeatures := len(samples[0])
	if numFeatures == 0 {
		return &Node{Size: len(samples)}
	}
	feature := rng.Intn(numFeatures)

	lo, hi := samples[0][feature], samples[0][feature]
	for _, s := range samples[1:] {
		if s[feature] < lo {
			lo = s[feature]
		}
		if s[feature] > hi {
			hi = s[feature]
		}
	}
	if lo == hi {
		return &Node{Size: len(samples)}
	}

	threshold := lo + rng.Float64()*(hi-lo)
	if threshold <= lo || threshold >= hi {
		threshold = lo + (hi-lo)/2
	}

	left := make([][]float64, 0, len(samples)/2)
	right := make([][]float64, 0, len(samples)/2)
	for _, s := range samples {
		if s[feature] < threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}

	return &Node{
		Feature:   feature,
		Threshold: threshold,
		Left:      buildTree(left, height+1, heightLimit, rng),
		Right:     buildTree(right, height+1, heightLimit, rng),
		Size:      len(samples),
	}
}

// pathLength returns the depth at which x lands in the tree plus the
// average-path correction for the samples left unresolved at that leaf.
func pathLength(n *Node, x []float64) float64 {
	depth := 0
	for !n.IsLeaf() {
		if n.Feature < len(x) && x[n.Feature] < n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
		depth++
	}
	return float64(depth) + AveragePathLength(n.Size)
}

// AveragePathLength is c(n), the expected path length of an unsuccessful
// binary search tree lookup over n items.
func AveragePathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	fn := float64(n)
	harmonic := math.Log(fn-1) + eulerGamma
	return 2*harmonic - 2*(fn-1)/fn
}
