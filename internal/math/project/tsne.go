package project

import (
	"context"
	"fmt"
	"math"

	"github.com/danaugrs/go-tsne/tsne"
	"gonum.org/v1/gonum/mat"

	"github.com/openagora/opinion-engine/internal/math/numeric"
)

const (
	tsneLearningRate = 300
	tsneIterations   = 300
)

// fitTSNE embeds with Barnes-Hut-free t-SNE. The implementation draws its
// initial layout from the process RNG, so the seed is ignored here and
// successive runs over identical input may differ; the per-step callback
// halts the optimisation once ctx expires.
func fitTSNE(ctx context.Context, data [][]float64, seed int64) (*Embedding, error) {
	_ = seed

	n, d := len(data), len(data[0])
	x := mat.NewDense(n, d, nil)
	for i, row := range data {
		x.SetRow(i, row)
	}

	perplexity := math.Min(30, float64(n-1)/3)
	if perplexity < 2 {
		perplexity = 2
	}

	t := tsne.NewTSNE(2, perplexity, tsneLearningRate, tsneIterations, false)
	y := t.EmbedData(x, func(iter int, divergence float64, embedding mat.Matrix) bool {
		return ctx.Err() != nil
	})
	if ctx.Err() != nil {
		return nil, numeric.ErrCancelled
	}

	points := make([][2]float64, n)
	for i := 0; i < n; i++ {
		px, py := y.At(i, 0), y.At(i, 1)
		if math.IsNaN(px) || math.IsNaN(py) {
			return nil, fmt.Errorf("%w: t-SNE produced non-finite coordinates", numeric.ErrNumericFailure)
		}
		points[i] = [2]float64{px, py}
	}
	return &Embedding{Points: points, transform: knnInterpolator(data, points)}, nil
}
