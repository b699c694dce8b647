package util

import (
	"fmt"
	"math"
	"sort"
)

// CosineSimilarity calculates the cosine similarity between two float32 vectors.
func CosineSimilarity(vec1 []float32, vec2 []float32) (float64, error) {
	if len(vec1) == 0 || len(vec2) == 0 {
		return 0, fmt.Errorf("input vectors cannot be empty")
	}
	if len(vec1) != len(vec2) {
		return 0, fmt.Errorf("vector dimensions do not match: %d vs %d", len(vec1), len(vec2))
	}

	var dot, mag1, mag2 float64
	for i := range vec1 {
		a, b := float64(vec1[i]), float64(vec2[i])
		dot += a * b
		mag1 += a * a
		mag2 += b * b
	}

	if mag1 == 0 || mag2 == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(mag1) * math.Sqrt(mag2)), nil
}

// TopKIndices returns the indices of the k highest scores, sorted ascending
// so callers can keep the original order of the scored items.
func TopKIndices(scores []float64, k int) []int {
	if k <= 0 {
		return []int{}
	}
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
	if k < len(idx) {
		idx = idx[:k]
	}
	sort.Ints(idx)
	return idx
}
