// Package metric is the distance and aggregator kit for the clustering core.
// Metrics are a closed enum parsed once at the boundary; unknown names fail
// there, never at compute time.
package metric

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

type Kind int

const (
	Euclidean Kind = iota
	EuclideanIgnoreZero
	EuclideanIgnoreNaN
	L1
)

var ErrUnknownMetric = errors.New("unknown distance metric")

func Parse(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "euclidean":
		return Euclidean, nil
	case "euclidean-ignore-zero":
		return EuclideanIgnoreZero, nil
	case "euclidean-ignore-nan":
		return EuclideanIgnoreNaN, nil
	case "l1":
		return L1, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
}

func (k Kind) String() string {
	switch k {
	case Euclidean:
		return "euclidean"
	case EuclideanIgnoreZero:
		return "euclidean-ignore-zero"
	case EuclideanIgnoreNaN:
		return "euclidean-ignore-nan"
	case L1:
		return "l1"
	default:
		return fmt.Sprintf("metric(%d)", int(k))
	}
}

// Distance computes the metric between two equal-length vectors. The
// ignore-zero and ignore-NaN variants return NaN when every coordinate is
// excluded; assignment loops treat NaN as +Inf.
func (k Kind) Distance(x, y []float64) float64 {
	switch k {
	case EuclideanIgnoreZero:
		return euclideanFiltered(x, y, func(a, b float64) bool {
			return a != 0 && b != 0
		})
	case EuclideanIgnoreNaN:
		return euclideanFiltered(x, y, func(a, b float64) bool {
			return !math.IsNaN(a) && !math.IsNaN(b)
		})
	case L1:
		var s float64
		for i := range x {
			s += math.Abs(x[i] - y[i])
		}
		return s
	default:
		var s float64
		for i := range x {
			d := x[i] - y[i]
			s += d * d
		}
		return math.Sqrt(s)
	}
}

func euclideanFiltered(x, y []float64, keep func(a, b float64) bool) float64 {
	var s float64
	n := 0
	for i := range x {
		if !keep(x[i], y[i]) {
			continue
		}
		d := x[i] - y[i]
		s += d * d
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return math.Sqrt(s / float64(n))
}

// Mean is the aggregator: per-column mean over the sample axis, ignoring NaN
// entries. A column with no finite entry stays NaN.
func Mean(rows [][]float64) []float64 {
	if len(rows) == 0 {
		return nil
	}
	width := len(rows[0])
	sums := make([]float64, width)
	counts := make([]int, width)
	for _, row := range rows {
		for j, v := range row {
			if math.IsNaN(v) {
				continue
			}
			sums[j] += v
			counts[j]++
		}
	}
	out := make([]float64, width)
	for j := range out {
		if counts[j] == 0 {
			out[j] = math.NaN()
			continue
		}
		out[j] = sums[j] / float64(counts[j])
	}
	return out
}
