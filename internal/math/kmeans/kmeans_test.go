package kmeans

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openagora/opinion-engine/internal/math/metric"
	"github.com/openagora/opinion-engine/internal/math/numeric"
)

// Two opposing camps over three comments; rows u1..u6.
var camps = [][]float64{
	{+1, 0, +1},
	{+1, +1, +1},
	{0, +1, +1},
	{-1, 0, -1},
	{-1, -1, 0},
	{-1, -1, -1},
}

func TestRunSeededConverges(t *testing.T) {
	seeds := [][]float64{
		{+1, +1, +1},
		{-1, -1, -1},
	}
	res, err := RunSeeded(context.Background(), camps, seeds, 100, metric.EuclideanIgnoreZero, metric.Mean)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0, 0, 1, 1, 1}, res.Labels)

	want0 := []float64{2.0 / 3.0, 2.0 / 3.0, 1}
	want1 := []float64{-1, -2.0 / 3.0, -2.0 / 3.0}
	for j := range want0 {
		assert.InDelta(t, want0[j], res.Centroids[0][j], 1e-12)
		assert.InDelta(t, want1[j], res.Centroids[1][j], 1e-12)
	}
}

func TestRunSeededEmptyClusterKeepsSeed(t *testing.T) {
	// Every row sits next to the first seed; the second cluster never gains
	// a member and must fall back to its stereotype vector.
	data := [][]float64{{1, 1}, {1, 0.9}}
	seeds := [][]float64{{1, 1}, {100, 100}}
	res, err := RunSeeded(context.Background(), data, seeds, 50, metric.Euclidean, metric.Mean)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0}, res.Labels)
	assert.Equal(t, []float64{100, 100}, res.Centroids[1])
}

func TestRunUnsupervisedSplits(t *testing.T) {
	res, err := Run(context.Background(), camps, 2, 5, 100, metric.Euclidean, metric.Mean, 1)
	require.NoError(t, err)
	require.Len(t, res.Labels, 6)

	// Permutation-equivalent labelings are both acceptable: the camps must
	// be separated, whichever label each one got.
	assert.Equal(t, res.Labels[0], res.Labels[1])
	assert.Equal(t, res.Labels[0], res.Labels[2])
	assert.Equal(t, res.Labels[3], res.Labels[4])
	assert.Equal(t, res.Labels[3], res.Labels[5])
	assert.NotEqual(t, res.Labels[0], res.Labels[3])
}

func TestRunKTooLarge(t *testing.T) {
	data := [][]float64{{1}, {2}, {3}}
	_, err := Run(context.Background(), data, 4, 1, 10, metric.Euclidean, metric.Mean, 0)
	assert.ErrorIs(t, err, numeric.ErrInsufficientData)
}

func TestRunKEqualsN(t *testing.T) {
	data := [][]float64{{0, 0}, {5, 5}, {-5, 5}}
	res, err := Run(context.Background(), data, 3, 1, 10, metric.Euclidean, metric.Mean, 0)
	require.NoError(t, err)
	// Every row seeds its own cluster and keeps it.
	seen := map[int]bool{}
	for _, l := range res.Labels {
		seen[l] = true
	}
	assert.Len(t, seen, 3)
}

func TestFixedPointStopsImmediately(t *testing.T) {
	seeds := [][]float64{{1, 1}, {-1, -1}}
	data := [][]float64{{1, 1}, {-1, -1}}
	res, err := RunSeeded(context.Background(), data, seeds, 1000, metric.Euclidean, metric.Mean)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, res.Labels)
	assert.Equal(t, []float64{1, 1}, res.Centroids[0])
	assert.Equal(t, []float64{-1, -1}, res.Centroids[1])
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, camps, 2, 3, 100, metric.Euclidean, metric.Mean, 7)
	assert.ErrorIs(t, err, numeric.ErrCancelled)
}

func TestDeterministicForSeed(t *testing.T) {
	a, err := Run(context.Background(), camps, 2, 4, 100, metric.Euclidean, metric.Mean, 42)
	require.NoError(t, err)
	b, err := Run(context.Background(), camps, 2, 4, 100, metric.Euclidean, metric.Mean, 42)
	require.NoError(t, err)
	assert.Equal(t, a.Labels, b.Labels)
	assert.Equal(t, a.Centroids, b.Centroids)
}
