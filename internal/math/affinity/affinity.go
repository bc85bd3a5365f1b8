// Package affinity computes how much the opinion clusters overlap. Each
// participant is projected onto the axis between their centroid and every
// other centroid; participants leaning past the midpoint feed the
// intersection size of that pair. The output shape feeds the Venn-style
// cluster visualisation.
package affinity

import (
	"math"

	"github.com/openagora/opinion-engine/internal/math/metric"
)

// DefaultEpsilon guards the division when a participant sits on top of the
// inter-centroid axis endpoint.
const DefaultEpsilon = 1e-12

// Set is one region of the diagram: a singleton cluster or a surviving pair.
// Size is a non-negative real, not an integer: pair sizes accumulate
// fractional contributions.
type Set struct {
	Sets []int   `json:"sets"`
	Size float64 `json:"size"`
}

// Sets computes singleton sizes and deduplicated pair intersections.
// Singletons come first, ordered by cluster index ascending; pairs follow in
// (first, second) order. For every unordered pair only the larger directional
// total survives.
func Sets(data [][]float64, labels []int, centroids [][]float64, dist metric.Kind, eps float64) []Set {
	if eps <= 0 {
		eps = DefaultEpsilon
	}
	k := len(centroids)
	counts := make([]int, k)
	inter := make([][]float64, k)
	for i := range inter {
		inter[i] = make([]float64, k)
	}

	for i, row := range data {
		l := labels[i]
		if l < 0 || l >= k {
			continue
		}
		counts[l]++
		home := centroids[l]
		dHome := dist.Distance(row, home)
		if math.IsNaN(dHome) || math.IsInf(dHome, 0) {
			continue
		}

		offset := sub(row, home)
		for other := 0; other < k; other++ {
			if other == l {
				continue
			}
			axis := sub(centroids[other], home)
			if dot(offset, axis) <= 0 {
				continue
			}
			// Participant leans towards the other cluster.
			d := dist.Distance(offset, axis)
			if math.IsNaN(d) || math.IsInf(d, 0) {
				continue
			}
			inter[l][other] += dHome / (2*d + eps)
		}
	}

	out := make([]Set, 0, k+k*(k-1)/2)
	for i := 0; i < k; i++ {
		out = append(out, Set{Sets: []int{i}, Size: float64(counts[i])})
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			size := inter[i][j]
			if inter[j][i] > size {
				size = inter[j][i]
			}
			if size > 0 {
				out = append(out, Set{Sets: []int{i, j}, Size: size})
			}
		}
	}
	return out
}

func sub(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
