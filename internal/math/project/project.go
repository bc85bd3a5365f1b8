// Package project reduces the vote matrix to a 2-D scatter. The pipeline is
// impute-then-reduce; stereotype personas are pushed through the same fitted
// transformer so they land in the participants' space.
package project

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/openagora/opinion-engine/internal/math/numeric"
)

// MinSamples and MinFeatures are the floor below which no reduction runs.
const (
	MinSamples  = 4
	MinFeatures = 4
)

type Method int

const (
	PCA Method = iota
	KernelPCA
	TSNE
	Isomap
	MDS
	LLE
	SpectralEmbedding
)

var ErrUnknownMethod = errors.New("unknown projection method")

// ParseMethod resolves a method name. Unknown names are a hard error at the
// boundary, never at compute time. "pca" is the default for empty input.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pca":
		return PCA, nil
	case "k-pca", "kpca":
		return KernelPCA, nil
	case "t-sne", "tsne":
		return TSNE, nil
	case "isomap":
		return Isomap, nil
	case "mds":
		return MDS, nil
	case "lle":
		return LLE, nil
	case "se":
		return SpectralEmbedding, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
	}
}

func (m Method) String() string {
	switch m {
	case PCA:
		return "pca"
	case KernelPCA:
		return "k-pca"
	case TSNE:
		return "t-sne"
	case Isomap:
		return "isomap"
	case MDS:
		return "mds"
	case LLE:
		return "lle"
	case SpectralEmbedding:
		return "se"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// Embedding is a fitted reduction: the training points plus a transform for
// out-of-sample vectors (stereotypes). Missing entries of a transformed
// vector are imputed with the training column means, never the vector's own.
type Embedding struct {
	Points [][2]float64

	trainMeans []float64
	transform  func(x []float64) [2]float64
}

// Transform places an out-of-sample vector into the embedding space.
func (e *Embedding) Transform(raw []float64) [2]float64 {
	x := make([]float64, len(raw))
	for i, v := range raw {
		if math.IsNaN(v) {
			x[i] = e.trainMeans[i]
		} else {
			x[i] = v
		}
	}
	return e.transform(x)
}

// Fit imputes the matrix and fits the requested reduction. Linear methods
// are deterministic given the input ordering; seed feeds the stochastic ones.
// The iterative reductions check ctx between iterations and return
// ErrCancelled once it expires.
func Fit(ctx context.Context, data [][]float64, method Method, seed int64) (*Embedding, error) {
	if ctx.Err() != nil {
		return nil, numeric.ErrCancelled
	}
	n := len(data)
	if n < MinSamples || (n > 0 && len(data[0]) < MinFeatures) {
		cols := 0
		if n > 0 {
			cols = len(data[0])
		}
		return nil, fmt.Errorf("%w: %dx%d matrix, need at least %dx%d",
			numeric.ErrInsufficientData, n, cols, MinSamples, MinFeatures)
	}

	imputed, means := impute(data)

	var (
		emb *Embedding
		err error
	)
	switch method {
	case PCA:
		emb, err = fitPCA(imputed, means)
	case KernelPCA:
		emb, err = fitKernelPCA(imputed)
	case MDS:
		emb, err = fitMDS(imputed)
	case Isomap:
		emb, err = fitIsomap(ctx, imputed)
	case LLE:
		emb, err = fitLLE(imputed)
	case SpectralEmbedding:
		emb, err = fitSpectral(imputed)
	case TSNE:
		emb, err = fitTSNE(ctx, imputed, seed)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMethod, method)
	}
	if err != nil {
		return nil, err
	}
	emb.trainMeans = means
	return emb, nil
}

// impute replaces NaN entries with the column mean over cast entries. The
// returned means are the training means later reused for stereotypes.
func impute(data [][]float64) ([][]float64, []float64) {
	n, d := len(data), len(data[0])
	means := make([]float64, d)
	counts := make([]int, d)
	for _, row := range data {
		for j, v := range row {
			if math.IsNaN(v) {
				continue
			}
			means[j] += v
			counts[j]++
		}
	}
	for j := range means {
		if counts[j] > 0 {
			means[j] /= float64(counts[j])
		}
	}
	out := make([][]float64, n)
	for i, row := range data {
		r := make([]float64, d)
		for j, v := range row {
			if math.IsNaN(v) {
				r[j] = means[j]
			} else {
				r[j] = v
			}
		}
		out[i] = r
	}
	return out, means
}

func euclidean(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Sqrt(s)
}
