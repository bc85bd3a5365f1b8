package project

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/openagora/opinion-engine/internal/math/numeric"
)

const neighborCount = 5

// fitMDS is classical (Torgerson) MDS on Euclidean distances: eigendecompose
// the double-centered squared-distance matrix.
func fitMDS(data [][]float64) (*Embedding, error) {
	dist := pairwise(data)
	points, err := classicalMDS(dist)
	if err != nil {
		return nil, err
	}
	return &Embedding{Points: points, transform: knnInterpolator(data, points)}, nil
}

// fitIsomap swaps Euclidean distances for geodesics over the k-nearest
// neighbour graph, then applies classical MDS. The Floyd-Warshall passes are
// the cubic part, so cancellation is checked between them.
func fitIsomap(ctx context.Context, data [][]float64) (*Embedding, error) {
	n := len(data)
	dist := pairwise(data)
	k := neighbors(n)

	geo := make([][]float64, n)
	for i := range geo {
		row := make([]float64, n)
		for j := range row {
			row[j] = math.Inf(1)
		}
		row[i] = 0
		geo[i] = row
	}
	for i := 0; i < n; i++ {
		for _, j := range nearestIndices(dist[i], i, k) {
			geo[i][j] = dist[i][j]
			geo[j][i] = dist[i][j]
		}
	}
	// Floyd-Warshall; n is the participant count, small enough for O(n³).
	for via := 0; via < n; via++ {
		if ctx.Err() != nil {
			return nil, numeric.ErrCancelled
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if d := geo[i][via] + geo[via][j]; d < geo[i][j] {
					geo[i][j] = d
				}
			}
		}
	}
	// Disconnected components: cap at the largest finite geodesic so the
	// decomposition stays finite.
	var maxFinite float64
	for i := range geo {
		for _, v := range geo[i] {
			if !math.IsInf(v, 0) && v > maxFinite {
				maxFinite = v
			}
		}
	}
	for i := range geo {
		for j, v := range geo[i] {
			if math.IsInf(v, 0) {
				geo[i][j] = maxFinite
			}
		}
	}

	points, err := classicalMDS(geo)
	if err != nil {
		return nil, err
	}
	return &Embedding{Points: points, transform: knnInterpolator(data, points)}, nil
}

// fitLLE reconstructs each point from its neighbours and embeds with the
// bottom eigenvectors of (I-W)ᵀ(I-W), skipping the constant one.
func fitLLE(data [][]float64) (*Embedding, error) {
	n, d := len(data), len(data[0])
	dist := pairwise(data)
	k := neighbors(n)

	w := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		idx := nearestIndices(dist[i], i, k)
		g := mat.NewSymDense(k, nil)
		diffs := make([][]float64, k)
		for a, ja := range idx {
			diff := make([]float64, d)
			for c := 0; c < d; c++ {
				diff[c] = data[i][c] - data[ja][c]
			}
			diffs[a] = diff
		}
		var trace float64
		for a := 0; a < k; a++ {
			for b := a; b < k; b++ {
				var s float64
				for c := 0; c < d; c++ {
					s += diffs[a][c] * diffs[b][c]
				}
				g.SetSym(a, b, s)
				if a == b {
					trace += s
				}
			}
		}
		// Regularise the Gram matrix; required when k > d.
		reg := 1e-3 * trace
		if reg <= 0 {
			reg = 1e-9
		}
		for a := 0; a < k; a++ {
			g.SetSym(a, a, g.At(a, a)+reg)
		}

		ones := mat.NewVecDense(k, nil)
		for a := 0; a < k; a++ {
			ones.SetVec(a, 1)
		}
		var sol mat.VecDense
		if err := sol.SolveVec(g, ones); err != nil {
			return nil, fmt.Errorf("%w: singular LLE weight system: %v", numeric.ErrNumericFailure, err)
		}
		var sum float64
		for a := 0; a < k; a++ {
			sum += sol.AtVec(a)
		}
		if sum == 0 {
			return nil, fmt.Errorf("%w: zero LLE weight sum", numeric.ErrNumericFailure)
		}
		for a, ja := range idx {
			w.Set(i, ja, sol.AtVec(a)/sum)
		}
	}

	// M = (I-W)ᵀ(I-W)
	iw := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		iw.Set(i, i, 1)
	}
	iw.Sub(iw, w)
	var m mat.Dense
	m.Mul(iw.T(), iw)
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, (m.At(i, j)+m.At(j, i))/2)
		}
	}

	points, err := bottomEigenvectors(sym)
	if err != nil {
		return nil, err
	}
	return &Embedding{Points: points, transform: knnInterpolator(data, points)}, nil
}

// fitSpectral embeds with the bottom non-constant eigenvectors of the
// unnormalised graph Laplacian of the symmetrised kNN graph.
func fitSpectral(data [][]float64) (*Embedding, error) {
	n := len(data)
	dist := pairwise(data)
	k := neighbors(n)

	adj := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for _, j := range nearestIndices(dist[i], i, k) {
			adj.SetSym(min(i, j), max(i, j), 1)
		}
	}
	lap := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		var degree float64
		for j := 0; j < n; j++ {
			if i != j {
				degree += adj.At(i, j)
			}
		}
		for j := i; j < n; j++ {
			if i == j {
				lap.SetSym(i, i, degree)
			} else {
				lap.SetSym(i, j, -adj.At(i, j))
			}
		}
	}

	points, err := bottomEigenvectors(lap)
	if err != nil {
		return nil, err
	}
	return &Embedding{Points: points, transform: knnInterpolator(data, points)}, nil
}

// classicalMDS turns a distance matrix into 2-D coordinates.
func classicalMDS(dist [][]float64) ([][2]float64, error) {
	n := len(dist)
	sq := make([][]float64, n)
	rowMeans := make([]float64, n)
	var total float64
	for i := range dist {
		sq[i] = make([]float64, n)
		for j, v := range dist[i] {
			sq[i][j] = v * v
			rowMeans[i] += sq[i][j] / float64(n)
		}
		total += rowMeans[i] / float64(n)
	}

	b := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			b.SetSym(i, j, -0.5*(sq[i][j]-rowMeans[i]-rowMeans[j]+total))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(b, true); !ok {
		return nil, fmt.Errorf("%w: MDS eigendecomposition failed", numeric.ErrNumericFailure)
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	points := make([][2]float64, n)
	for c := 0; c < 2; c++ {
		idx := n - 1 - c
		lambda := vals[idx]
		if lambda < 0 {
			lambda = 0
		}
		scale := math.Sqrt(lambda)
		for i := 0; i < n; i++ {
			points[i][c] = vecs.At(i, idx) * scale
		}
	}
	return points, nil
}

// bottomEigenvectors returns the two eigenvectors above the constant one,
// i.e. indices 1 and 2 of the ascending spectrum.
func bottomEigenvectors(sym *mat.SymDense) ([][2]float64, error) {
	n := sym.SymmetricDim()
	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, fmt.Errorf("%w: eigendecomposition failed", numeric.ErrNumericFailure)
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	points := make([][2]float64, n)
	for i := 0; i < n; i++ {
		points[i] = [2]float64{vecs.At(i, 1), vecs.At(i, 2)}
	}
	return points, nil
}

func pairwise(data [][]float64) [][]float64 {
	n := len(data)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := euclidean(data[i], data[j])
			out[i][j] = d
			out[j][i] = d
		}
	}
	return out
}

func neighbors(n int) int {
	if n-1 < neighborCount {
		return n - 1
	}
	return neighborCount
}

// nearestIndices returns the k nearest rows to row self, excluding itself.
func nearestIndices(distRow []float64, self, k int) []int {
	idx := make([]int, 0, len(distRow)-1)
	for j := range distRow {
		if j != self {
			idx = append(idx, j)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return distRow[idx[a]] < distRow[idx[b]]
	})
	return idx[:k]
}

// knnInterpolator places out-of-sample vectors by inverse-distance weighting
// over the embeddings of the nearest training rows. The manifold methods
// have no analytic out-of-sample transform, so stereotype placement uses
// this interpolation in the fitted space.
func knnInterpolator(data [][]float64, points [][2]float64) func(x []float64) [2]float64 {
	k := neighbors(len(data))
	return func(x []float64) [2]float64 {
		type cand struct {
			idx int
			d   float64
		}
		cands := make([]cand, len(data))
		for i, row := range data {
			cands[i] = cand{idx: i, d: euclidean(x, row)}
		}
		sort.SliceStable(cands, func(a, b int) bool { return cands[a].d < cands[b].d })

		var p [2]float64
		var wsum float64
		for _, c := range cands[:k] {
			if c.d == 0 {
				return points[c.idx]
			}
			w := 1.0 / c.d
			p[0] += w * points[c.idx][0]
			p[1] += w * points[c.idx][1]
			wsum += w
		}
		p[0] /= wsum
		p[1] /= wsum
		return p
	}
}
