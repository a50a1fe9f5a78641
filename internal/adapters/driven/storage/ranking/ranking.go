// Package ranking holds the distance metric and result ordering shared by the
// brute-force vector stores.
package ranking

import (
	"math"
	"sort"

	"github.com/custodia-labs/ragcore/internal/core/domain"
)

// CosineDistance returns (1 - cos(a, b)) / 2, bounded to [0, 1].
// A zero vector has cosine 0 with everything, giving 0.5.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.5
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0.5
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return clamp01((1 - cos) / 2)
}

// DistanceFromCosineScore converts a cosine similarity score in [-1, 1], as
// reported by similarity-based stores, into the bounded distance.
func DistanceFromCosineScore(score float64) float64 {
	return clamp01((1 - score) / 2)
}

// Rank sorts results by distance with ties broken on source then chunk index,
// and returns at most topK of them.
func Rank(results []domain.QueryResult, topK int) []domain.QueryResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Less(results[j])
	})
	if topK < len(results) {
		results = results[:topK]
	}
	return results
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
