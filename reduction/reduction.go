// Package reduction implements the model order reduction methods: balanced
// truncation and its LQG and bounded-real variants, the iterative rational
// Krylov algorithm with its one-sided, two-sided-iteration and
// transfer-function flavors. Every reductor maps a full-order lti.Model and
// a target order r to a reduced model plus method-specific diagnostics.
package reduction

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/prklVIP/pymor/lti"
)

// Result carries a reduced-order model and the diagnostics of the method
// that produced it.
type Result struct {
	// ROM is the reduced-order model.
	ROM *lti.Model
	// HankelValues holds the Hankel singular values (or the characteristic
	// values of the Riccati-based variants) of the full model. Empty for
	// the interpolatory methods.
	HankelValues []float64
	// ErrorBound is the a-priori error bound of the method, zero when the
	// method offers none.
	ErrorBound float64
	// Iterations counts fixed-point sweeps of the iterative methods.
	Iterations int
	// Converged reports whether an iterative method met its tolerance
	// before hitting the iteration cap. Always true for the one-shot
	// balancing methods.
	Converged bool
	// Shifts holds the final interpolation points of the Krylov methods.
	Shifts []complex128
}

var errOrder = errors.New("reduction: reduced order must be positive")

// fold returns an equivalent model with identity descriptor, multiplying
// E^{-1} into A and B. The Gramian-based reductors balance in these
// coordinates.
func fold(m *lti.Model) (*lti.Model, error) {
	if m.E == nil {
		return m, nil
	}
	a, err := m.EA()
	if err != nil {
		return nil, err
	}
	var b mat.Dense
	if err := b.Solve(m.E, m.B); err != nil {
		return nil, errors.New("reduction: descriptor matrix is singular")
	}
	return lti.New(a, &b, m.C, m.D, nil), nil
}

// balanceProject forms the balancing projection bases from Gramian factors
// Zc, Zo and truncates at order r. Returns the bases and the full vector of
// singular values of Zo^T Zc.
func balanceProject(zc, zo *mat.Dense, r int) (*mat.Dense, *mat.Dense, []float64, error) {
	var product mat.Dense
	product.Mul(zo.T(), zc)
	var svd mat.SVD
	if ok := svd.Factorize(&product, mat.SVDThin); !ok {
		return nil, nil, nil, errors.New("reduction: SVD of Gramian factor product failed")
	}
	sigma := svd.Values(nil)

	// Never truncate into the numerically zero tail.
	rank := 0
	for _, s := range sigma {
		if s > 1e-13*sigma[0] {
			rank++
		}
	}
	if r > rank {
		r = rank
	}
	if r < 1 {
		return nil, nil, nil, errors.New("reduction: model has no reachable and observable states")
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	n, _ := zc.Dims()
	v1 := mat.NewDense(n, r, nil)
	w1 := mat.NewDense(n, r, nil)
	var zcv, zou mat.Dense
	zcv.Mul(zc, v.Slice(0, len(sigma), 0, r))
	zou.Mul(zo, u.Slice(0, len(sigma), 0, r))
	for col := 0; col < r; col++ {
		scale := 1 / math.Sqrt(sigma[col])
		for row := 0; row < n; row++ {
			v1.Set(row, col, zcv.At(row, col)*scale)
			w1.Set(row, col, zou.At(row, col)*scale)
		}
	}
	return v1, w1, sigma, nil
}
