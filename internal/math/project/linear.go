package project

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/openagora/opinion-engine/internal/math/numeric"
)

// fitPCA projects onto the top two right singular vectors of the centered
// matrix. Centering reuses the impute means: imputation does not shift a
// column's mean, so they coincide.
func fitPCA(data [][]float64, means []float64) (*Embedding, error) {
	n, d := len(data), len(data[0])
	centered := mat.NewDense(n, d, nil)
	for i, row := range data {
		for j, v := range row {
			centered.Set(i, j, v-means[j])
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return nil, fmt.Errorf("%w: SVD did not converge", numeric.ErrNumericFailure)
	}
	var v mat.Dense
	svd.VTo(&v)

	axis := func(j int) []float64 {
		out := make([]float64, d)
		for i := 0; i < d; i++ {
			out[i] = v.At(i, j)
		}
		return out
	}
	ax0, ax1 := axis(0), axis(1)

	project := func(x []float64) [2]float64 {
		var p [2]float64
		for i := range x {
			c := x[i] - means[i]
			p[0] += c * ax0[i]
			p[1] += c * ax1[i]
		}
		return p
	}

	points := make([][2]float64, n)
	for i, row := range data {
		points[i] = project(row)
	}
	return &Embedding{Points: points, transform: project}, nil
}

// fitKernelPCA runs PCA in RBF kernel space with gamma = 1/features. The
// transform uses the standard centered-kernel formula, so training points and
// out-of-sample points go through the same algebra.
func fitKernelPCA(data [][]float64) (*Embedding, error) {
	n, d := len(data), len(data[0])
	gamma := 1.0 / float64(d)
	rbf := func(a, b []float64) float64 {
		dist := euclidean(a, b)
		return math.Exp(-gamma * dist * dist)
	}

	k := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			k.SetSym(i, j, rbf(data[i], data[j]))
		}
	}

	colMeans := make([]float64, n)
	var total float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			colMeans[j] += k.At(i, j) / float64(n)
			total += k.At(i, j)
		}
	}
	total /= float64(n * n)

	kc := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			kc.SetSym(i, j, k.At(i, j)-colMeans[i]-colMeans[j]+total)
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(kc, true); !ok {
		return nil, fmt.Errorf("%w: kernel eigendecomposition failed", numeric.ErrNumericFailure)
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// Eigenvalues come back ascending; the leading components sit at the end.
	alpha := make([][]float64, 2)
	for c := 0; c < 2; c++ {
		idx := n - 1 - c
		lambda := vals[idx]
		if lambda <= 1e-12 {
			return nil, fmt.Errorf("%w: degenerate kernel spectrum", numeric.ErrNumericFailure)
		}
		a := make([]float64, n)
		scale := 1.0 / math.Sqrt(lambda)
		for i := 0; i < n; i++ {
			a[i] = vecs.At(i, idx) * scale
		}
		alpha[c] = a
	}

	project := func(x []float64) [2]float64 {
		kx := make([]float64, n)
		var kxMean float64
		for i := 0; i < n; i++ {
			kx[i] = rbf(x, data[i])
			kxMean += kx[i] / float64(n)
		}
		var p [2]float64
		for i := 0; i < n; i++ {
			kcx := kx[i] - colMeans[i] - kxMean + total
			p[0] += kcx * alpha[0][i]
			p[1] += kcx * alpha[1][i]
		}
		return p
	}

	points := make([][2]float64, n)
	for i, row := range data {
		points[i] = project(row)
	}
	return &Embedding{Points: points, transform: project}, nil
}
