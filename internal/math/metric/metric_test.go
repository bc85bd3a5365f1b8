package metric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for name, want := range map[string]Kind{
		"euclidean":             Euclidean,
		"Euclidean":             Euclidean,
		"euclidean-ignore-zero": EuclideanIgnoreZero,
		"euclidean-ignore-nan":  EuclideanIgnoreNaN,
		"l1":                    L1,
	} {
		got, err := Parse(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := Parse("manhattan")
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestEuclidean(t *testing.T) {
	x := []float64{1, 0, 1}
	y := []float64{-1, 0, -1}
	assert.InDelta(t, math.Sqrt(8), Euclidean.Distance(x, y), 1e-12)
}

func TestL1(t *testing.T) {
	x := []float64{1, -1, 0.5}
	y := []float64{0, 1, 0}
	assert.InDelta(t, 3.5, L1.Distance(x, y), 1e-12)
}

func TestEuclideanIgnoreZero(t *testing.T) {
	// Middle coordinate is zero on one side, so only two coordinates count.
	x := []float64{1, 0, 1}
	y := []float64{-1, 1, -1}
	assert.InDelta(t, math.Sqrt(8.0/2.0), EuclideanIgnoreZero.Distance(x, y), 1e-12)

	// Identical overlap is distance zero.
	assert.InDelta(t, 0, EuclideanIgnoreZero.Distance([]float64{1, 0, 1}, []float64{1, 0, 1}), 1e-12)

	// No overlap at all: NaN, which assignment treats as +Inf.
	d := EuclideanIgnoreZero.Distance([]float64{0, 0}, []float64{1, 0})
	assert.True(t, math.IsNaN(d))
}

func TestEuclideanIgnoreNaN(t *testing.T) {
	nan := math.NaN()
	x := []float64{1, nan, 1}
	y := []float64{-1, 1, -1}
	assert.InDelta(t, math.Sqrt(8.0/2.0), EuclideanIgnoreNaN.Distance(x, y), 1e-12)

	d := EuclideanIgnoreNaN.Distance([]float64{nan, nan}, []float64{1, 2})
	assert.True(t, math.IsNaN(d))
}

func TestMeanIgnoresNaN(t *testing.T) {
	nan := math.NaN()
	rows := [][]float64{
		{1, nan, 3},
		{3, 2, nan},
		{nan, 4, nan},
	}
	got := Mean(rows)
	require.Len(t, got, 3)
	assert.InDelta(t, 2, got[0], 1e-12)
	assert.InDelta(t, 3, got[1], 1e-12)
	assert.InDelta(t, 3, got[2], 1e-12)

	allNaN := Mean([][]float64{{nan}, {nan}})
	assert.True(t, math.IsNaN(allNaN[0]))
}
