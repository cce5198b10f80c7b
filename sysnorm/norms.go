package sysnorm

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/prklVIP/pymor/lti"
)

// H2 computes the H2 norm
//
// ||G||_2 = sqrt(trace(C P C^T))
//
// with P the controllability Gramian. The model must be stable and have zero
// feedthrough, otherwise the norm is unbounded.
func H2(m *lti.Model) (float64, error) {
	stable, err := m.IsStable()
	if err != nil {
		return 0, err
	}
	if !stable {
		return 0, errors.New("sysnorm: H2 norm of an unstable model is unbounded")
	}
	if mat.Norm(m.D, 2) != 0 {
		return 0, errors.New("sysnorm: H2 norm with nonzero feedthrough is unbounded")
	}
	p, err := ControllabilityGramian(m)
	if err != nil {
		return 0, err
	}
	var cp, cpc mat.Dense
	cp.Mul(m.C, p)
	cpc.Mul(&cp, m.C.T())
	trace := 0.
	rows, _ := cpc.Dims()
	for i := 0; i < rows; i++ {
		trace += cpc.At(i, i)
	}
	if trace < 0 {
		trace = 0
	}
	return math.Sqrt(trace), nil
}

// Hankel computes the Hankel norm, the largest Hankel singular value.
func Hankel(m *lti.Model) (float64, error) {
	values, err := HankelValues(m)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, errors.New("sysnorm: model has no states")
	}
	return values[0], nil
}

// LInfSampled returns the largest 2-norm of G(i omega) over the given
// frequency samples together with the achieving frequency. It is a lower
// bound of the H-infinity norm and seeds the bisection in HInf.
func LInfSampled(m *lti.Model, omegas []float64) (float64, float64, error) {
	responses, err := m.FrequencyResponse(omegas)
	if err != nil {
		return 0, 0, err
	}
	best, bestOmega := 0., 0.
	for index, g := range responses {
		value := maxSingularValue(g)
		if value > best {
			best = value
			bestOmega = omegas[index]
		}
	}
	return best, bestOmega, nil
}

// maxSingularValue returns the largest singular value of a complex matrix,
// computed from the real 2p by 2m embedding [re -im; im re].
func maxSingularValue(g *mat.CDense) float64 {
	p, m := g.Dims()
	embedding := mat.NewDense(2*p, 2*m, nil)
	for row := 0; row < p; row++ {
		for col := 0; col < m; col++ {
			v := g.At(row, col)
			embedding.Set(row, col, real(v))
			embedding.Set(p+row, m+col, real(v))
			embedding.Set(row, m+col, -imag(v))
			embedding.Set(p+row, col, imag(v))
		}
	}
	var svd mat.SVD
	if ok := svd.Factorize(embedding, mat.SVDNone); !ok {
		return math.NaN()
	}
	return svd.Values(nil)[0]
}
