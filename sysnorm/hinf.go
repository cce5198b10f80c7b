package sysnorm

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/prklVIP/pymor/gonumext"
	"github.com/prklVIP/pymor/lti"
)

const (
	hinfRelTolerance  = 1e-6
	hinfAxisTolerance = 1e-8
	hinfMaxBisections = 80
)

// HInf computes the H-infinity norm of a stable model by bisection on gamma
// with the Hamiltonian test: gamma exceeds the norm exactly when the
// Hamiltonian matrix M(gamma) has no purely imaginary eigenvalues. Returns
// the norm and an estimate of the frequency where it is attained.
func HInf(m *lti.Model) (float64, float64, error) {
	stable, err := m.IsStable()
	if err != nil {
		return 0, 0, err
	}
	if !stable {
		return 0, 0, errors.New("sysnorm: H-infinity norm of an unstable model is unbounded")
	}

	a, b, c, err := stateSpace(m)
	if err != nil {
		return 0, 0, err
	}

	// Sampled lower bound over a pole-informed log grid.
	grid, err := poleGrid(m)
	if err != nil {
		return 0, 0, err
	}
	lower, bestOmega, err := LInfSampled(m, grid)
	if err != nil {
		return 0, 0, err
	}

	// Guaranteed upper bound: sigma_max(D) + 2 sum of Hankel singular values.
	hsv, err := HankelValues(m)
	if err != nil {
		return 0, 0, err
	}
	upper := matrixTwoNorm(m.D)
	for _, sigma := range hsv {
		upper += 2 * sigma
	}
	if upper < lower {
		upper = lower * 2
	}

	for iteration := 0; iteration < hinfMaxBisections && upper-lower > hinfRelTolerance*upper; iteration++ {
		gamma := (lower + upper) / 2
		crossing, omega := hamiltonianHasImagEigen(a, b, c, m.D, gamma)
		if crossing {
			lower = gamma
			if omega >= 0 {
				bestOmega = omega
			}
		} else {
			upper = gamma
		}
	}
	return (lower + upper) / 2, bestOmega, nil
}

// hamiltonianHasImagEigen evaluates the level test for a single gamma. With
// R = gamma^2 I - D^T D the Hamiltonian is
//
// M = [ A + B R^{-1} D^T C        B R^{-1} B^T          ]
//     [ -C^T (I + D R^{-1} D^T) C  -(A + B R^{-1} D^T C)^T ].
//
// A second return of the imaginary part of the eigenvalue closest to the
// axis localizes the peak frequency; -1 when no crossing exists.
func hamiltonianHasImagEigen(a, b, c, d *mat.Dense, gamma float64) (bool, float64) {
	n, _ := a.Dims()
	_, inputs := b.Dims()

	// R = gamma^2 I - D^T D, singular or indefinite R means gamma is below
	// sigma_max(D) and thus below the norm.
	var r mat.Dense
	r.Mul(d.T(), d)
	r.Scale(-1, &r)
	for i := 0; i < inputs; i++ {
		r.Set(i, i, r.At(i, i)+gamma*gamma)
	}
	var rinv mat.Dense
	if err := rinv.Solve(&r, gonumext.Eye(inputs, inputs)); err != nil {
		return true, -1
	}

	// Abar = A + B Rinv D^T C
	var rinvdt, rdtc, brdtc, abar mat.Dense
	rinvdt.Mul(&rinv, d.T())
	rdtc.Mul(&rinvdt, c)
	brdtc.Mul(b, &rdtc)
	abar.Add(a, &brdtc)

	// G = B Rinv B^T
	var br, g mat.Dense
	br.Mul(b, &rinv)
	g.Mul(&br, b.T())

	// Qm = C^T (I + D Rinv D^T) C
	var drinv, drd mat.Dense
	drinv.Mul(d, &rinv)
	drd.Mul(&drinv, d.T())
	outputs, _ := c.Dims()
	for i := 0; i < outputs; i++ {
		drd.Set(i, i, drd.At(i, i)+1)
	}
	var cdrd, qm mat.Dense
	cdrd.Mul(c.T(), &drd)
	qm.Mul(&cdrd, c)

	hamiltonian := mat.NewDense(2*n, 2*n, nil)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			hamiltonian.Set(row, col, abar.At(row, col))
			hamiltonian.Set(row, n+col, g.At(row, col))
			hamiltonian.Set(n+row, col, -qm.At(row, col))
			hamiltonian.Set(n+row, n+col, -abar.At(col, row))
		}
	}

	var eig mat.Eigen
	if ok := eig.Factorize(hamiltonian, mat.EigenNone); !ok {
		return true, -1
	}
	found := false
	closest := math.MaxFloat64
	omega := -1.
	for _, v := range eig.Values(nil) {
		scale := math.Max(1, cmplx.Abs(v))
		if math.Abs(real(v)) <= hinfAxisTolerance*scale {
			found = true
			if math.Abs(real(v)) < closest {
				closest = math.Abs(real(v))
				omega = math.Abs(imag(v))
			}
		}
	}
	return found, omega
}

// poleGrid builds a logarithmic frequency grid spanning the pole magnitudes
// of the model, padded a decade on both sides.
func poleGrid(m *lti.Model) ([]float64, error) {
	poles, err := m.Poles()
	if err != nil {
		return nil, err
	}
	low, high := math.MaxFloat64, 0.
	for _, pole := range poles {
		magnitude := cmplx.Abs(pole)
		if magnitude == 0 {
			continue
		}
		low = math.Min(low, magnitude)
		high = math.Max(high, magnitude)
	}
	if high == 0 {
		low, high = 1e-2, 1e2
	}
	return LogSpace(low/10, high*10, 200), nil
}

// LogSpace returns count logarithmically spaced points from low to high.
func LogSpace(low, high float64, count int) []float64 {
	if count < 2 || low <= 0 || high <= low {
		panic(errors.New("sysnorm: invalid log grid"))
	}
	res := make([]float64, count)
	step := (math.Log10(high) - math.Log10(low)) / float64(count-1)
	for index := range res {
		res[index] = math.Pow(10, math.Log10(low)+float64(index)*step)
	}
	return res
}

// matrixTwoNorm returns the spectral norm of a real matrix.
func matrixTwoNorm(a *mat.Dense) float64 {
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDNone); !ok {
		return math.NaN()
	}
	return svd.Values(nil)[0]
}
