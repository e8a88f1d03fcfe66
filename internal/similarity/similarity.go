// Package similarity scores generated questions against an anchor and
// picks the best candidate.
package similarity

import (
	"math"

	"github.com/CodexForgeBR/sqlverify/internal/cluster"
)

// tieEpsilon treats scores this close as equal.
const tieEpsilon = 1e-9

// Cosine returns the cosine similarity of a and b over their common
// length, or 0 when either vector has zero norm.
func Cosine(a, b []float32) float64 {
	var dot, na, nb float64
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Pairwise scores every candidate vector against anchor.
func Pairwise(anchor []float32, candidates [][]float32) []float64 {
	out := make([]float64, len(candidates))
	for i, c := range candidates {
		out[i] = Cosine(anchor, c)
	}
	return out
}

// Tied returns the indices whose score equals the maximum, in order.
func Tied(scores []float64) []int {
	if len(scores) == 0 {
		return nil
	}
	best := scores[0]
	for _, s := range scores[1:] {
		if s > best {
			best = s
		}
	}
	var tied []int
	for i, s := range scores {
		if math.Abs(s-best) <= tieEpsilon {
			tied = append(tied, i)
		}
	}
	return tied
}

// PickBest returns the index of the highest score. Ties go to the tied
// candidate in the largest execution cluster; when no tied candidate is
// clustered, or cluster sizes tie, the first tied candidate wins. An empty
// score list selects index 0.
func PickBest(scores []float64, clusters *cluster.Clusters) int {
	tied := Tied(scores)
	if len(tied) == 0 {
		return 0
	}
	if len(tied) == 1 || clusters.Empty() {
		return tied[0]
	}
	best, bestSize := tied[0], clusters.SizeOf(tied[0])
	for _, idx := range tied[1:] {
		if size := clusters.SizeOf(idx); size > bestSize {
			best, bestSize = idx, size
		}
	}
	return best
}

// Sum adds per-test score rows column-wise. Rows shorter than width
// contribute nothing to the missing columns.
func Sum(matrix [][]float64, width int) []float64 {
	out := make([]float64, width)
	for _, row := range matrix {
		for i := 0; i < width && i < len(row); i++ {
			out[i] += row[i]
		}
	}
	return out
}
