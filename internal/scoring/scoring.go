// Package scoring computes cosine-similarity metrics over interest vectors.
package scoring

import (
	"math"
	"sort"

	"github.com/hyperjump/konomi/internal/interest"
)

// maxScore is the upper bound of a scaled similarity. Scores are cosine
// similarities scaled by 1000 and rounded, so they live in [0, maxScore].
const maxScore = 1000

// Cosine returns the cosine similarity of two interest vectors. Counts are
// accumulated as float64 in taxonomy order, so the result is reproducible
// across runs. If either vector is all zero the similarity is 0.
func Cosine(a, b interest.Vector) float64 {
	if a.IsZero() || b.IsZero() {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TopNReference builds the synthetic reference vector for a user: it keeps
// the user's counts for the n highest-count categories and zeroes everything
// else. Ties on count resolve in taxonomy declaration order, so the
// reference is deterministic for any input. n is clamped to the taxonomy
// size; n <= 0 yields the zero vector.
func TopNReference(user interest.Vector, n int) interest.Vector {
	var ref interest.Vector
	if n <= 0 {
		return ref
	}
	if n > interest.Count {
		n = interest.Count
	}

	order := make([]int, interest.Count)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if user[order[a]] != user[order[b]] {
			return user[order[a]] > user[order[b]]
		}
		return order[a] < order[b]
	})

	for _, i := range order[:n] {
		ref[i] = user[i]
	}
	return ref
}

// ScaledSimilarity returns the cosine similarity of a and b scaled by 1000,
// rounded half away from zero, and clamped to [0, 1000].
func ScaledSimilarity(a, b interest.Vector) uint32 {
	s := math.Round(Cosine(a, b) * maxScore)
	if s < 0 {
		return 0
	}
	if s > maxScore {
		return maxScore
	}
	return uint32(s)
}

// CalculateMetrics scores a user vector against its own top-1, top-2, and
// top-3 references. An all-zero vector scores zero on every metric.
func CalculateMetrics(user interest.Vector) interest.Metrics {
	return interest.Metrics{
		TopSingleInterestSimilarity: ScaledSimilarity(user, TopNReference(user, 1)),
		Top2InterestSimilarity:      ScaledSimilarity(user, TopNReference(user, 2)),
		Top3InterestSimilarity:      ScaledSimilarity(user, TopNReference(user, 3)),
	}
}
