// Package kmeans implements the clustering core: unsupervised k-means over
// independent random trials, and the stereotype-seeded variant used by the
// clusterization manager.
package kmeans

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/openagora/opinion-engine/internal/math/metric"
	"github.com/openagora/opinion-engine/internal/math/numeric"
)

// Aggregator recomputes one centroid from the rows of its cluster.
type Aggregator func(rows [][]float64) []float64

// Result is one label per data row plus the k × features centroid matrix.
// Labels are not canonicalised; permutation-equivalent outputs are both
// acceptable in unsupervised mode.
type Result struct {
	Labels    []int
	Centroids [][]float64
}

// Run executes the unsupervised variant: runs independent trials, each with
// its own RNG stream derived from seed, and keeps the trial with the lowest
// sum of squared sample-to-centroid distances. Ties go to the lowest trial
// index. k > len(data) is an error; k == len(data) starts from all rows.
func Run(ctx context.Context, data [][]float64, k, runs, maxIter int, dist metric.Kind, agg Aggregator, seed int64) (*Result, error) {
	n := len(data)
	if k > n {
		return nil, fmt.Errorf("%w: k=%d samples=%d", numeric.ErrInsufficientData, k, n)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k=%d", numeric.ErrInsufficientData, k)
	}
	if runs <= 0 {
		runs = 1
	}
	if agg == nil {
		agg = metric.Mean
	}

	type trial struct {
		result *Result
		score  float64
	}
	trials := make([]trial, runs)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < runs; i++ {
		i := i
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seed + int64(i)))
			centroids := sampleRows(data, k, rng)
			res, err := iterate(gctx, data, centroids, nil, maxIter, dist, agg)
			if err != nil {
				return err
			}
			trials[i] = trial{result: res, score: variation(data, res, dist)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := 0
	for i := 1; i < runs; i++ {
		if trials[i].score < trials[best].score {
			best = i
		}
	}
	return trials[best].result, nil
}

// RunSeeded executes the stereotype-seeded variant: initial centroids are the
// seed vectors, k = len(seeds), one deterministic run. The seed vectors pin
// their clusters during centroid recomputation so an empty cluster falls back
// to its stereotype instead of collapsing.
func RunSeeded(ctx context.Context, data, seeds [][]float64, maxIter int, dist metric.Kind, agg Aggregator) (*Result, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("%w: no seeds", numeric.ErrInsufficientData)
	}
	if agg == nil {
		agg = metric.Mean
	}
	centroids := make([][]float64, len(seeds))
	for i, s := range seeds {
		centroids[i] = append([]float64(nil), s...)
	}
	return iterate(ctx, data, centroids, seeds, maxIter, dist, agg)
}

// iterate alternates assignment and centroid recomputation until the labels
// reach a fixed point or maxIter is exceeded. pinned, when non-nil, supplies
// the fallback centroid for clusters that lost all their rows.
func iterate(ctx context.Context, data, centroids, pinned [][]float64, maxIter int, dist metric.Kind, agg Aggregator) (*Result, error) {
	if maxIter <= 0 {
		maxIter = 1000
	}
	k := len(centroids)
	labels := make([]int, len(data))
	prev := make([]int, len(data))
	for i := range prev {
		prev[i] = -1
	}

	for iter := 0; iter < maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, numeric.ErrCancelled
		}

		changed := false
		for i, row := range data {
			labels[i] = nearest(row, centroids, dist)
			if labels[i] != prev[i] {
				changed = true
			}
		}
		if !changed {
			break
		}
		copy(prev, labels)

		for j := 0; j < k; j++ {
			members := make([][]float64, 0)
			for i, l := range labels {
				if l == j {
					members = append(members, data[i])
				}
			}
			switch {
			case len(members) > 0:
				centroids[j] = agg(members)
			case pinned != nil:
				centroids[j] = append([]float64(nil), pinned[j]...)
			}
			// Unsupervised empty cluster keeps its previous centroid.
		}
	}

	return &Result{Labels: labels, Centroids: centroids}, nil
}

// nearest returns the index of the closest centroid. Non-finite distances
// (e.g. an all-zero overlap under euclidean-ignore-zero) count as +Inf; ties
// go to the lowest centroid index.
func nearest(row []float64, centroids [][]float64, dist metric.Kind) int {
	best := 0
	bestD := math.Inf(1)
	for j, c := range centroids {
		d := dist.Distance(row, c)
		if math.IsNaN(d) || math.IsInf(d, 0) {
			continue
		}
		if d < bestD {
			best = j
			bestD = d
		}
	}
	return best
}

// variation scores one trial: the sum over all samples of the squared
// distance to their centroid.
func variation(data [][]float64, res *Result, dist metric.Kind) float64 {
	var total float64
	for i, row := range data {
		d := dist.Distance(row, res.Centroids[res.Labels[i]])
		if math.IsNaN(d) || math.IsInf(d, 0) {
			continue
		}
		total += d * d
	}
	return total
}

// sampleRows draws k distinct rows as initial centroids. k == len(data)
// short-circuits to a copy of every row.
func sampleRows(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	out := make([][]float64, k)
	if k == len(data) {
		for i, row := range data {
			out[i] = append([]float64(nil), row...)
		}
		return out
	}
	perm := rng.Perm(len(data))
	for i := 0; i < k; i++ {
		out[i] = append([]float64(nil), data[perm[i]]...)
	}
	return out
}
