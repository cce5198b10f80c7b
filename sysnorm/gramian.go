// Package sysnorm scores LTI models and reduction errors with the
// system-theoretic norms: H2, Hankel and H-infinity. The Gramian machinery
// shared with the balancing reductors lives here as well.
package sysnorm

import (
	"errors"
	"fmt"
	"sort"

	"github.com/prklVIP/pymor/gonumext"
	"github.com/prklVIP/pymor/lti"
	"github.com/prklVIP/pymor/lyapunov"
	"gonum.org/v1/gonum/mat"
)

// stateSpace returns the ordinary state-space matrices (E^{-1}A, E^{-1}B, C)
// of a model, folding in a non-identity descriptor.
func stateSpace(m *lti.Model) (*mat.Dense, *mat.Dense, *mat.Dense, error) {
	a, err := m.EA()
	if err != nil {
		return nil, nil, nil, err
	}
	b := m.B
	if m.E != nil {
		var eb mat.Dense
		if err := eb.Solve(m.E, m.B); err != nil {
			return nil, nil, nil, errors.New("sysnorm: descriptor matrix is singular")
		}
		b = &eb
	}
	return a, b, m.C, nil
}

// ControllabilityGramian solves A P + P A^T + B B^T = 0 for the model.
func ControllabilityGramian(m *lti.Model) (*mat.Dense, error) {
	a, b, _, err := stateSpace(m)
	if err != nil {
		return nil, err
	}
	var bbt mat.Dense
	bbt.Mul(b, b.T())
	p, err := lyapunov.Solve(a, &bbt)
	if err != nil {
		return nil, fmt.Errorf("sysnorm: controllability Gramian: %w", err)
	}
	return p, nil
}

// ObservabilityGramian solves A^T Q + Q A + C^T C = 0 for the model.
func ObservabilityGramian(m *lti.Model) (*mat.Dense, error) {
	a, _, c, err := stateSpace(m)
	if err != nil {
		return nil, err
	}
	var ctc mat.Dense
	ctc.Mul(c.T(), c)
	q, err := lyapunov.SolveDual(a, &ctc)
	if err != nil {
		return nil, fmt.Errorf("sysnorm: observability Gramian: %w", err)
	}
	return q, nil
}

// GramianFactors returns factors Zc, Zo with P = Zc Zc^T and Q = Zo Zo^T of
// the controllability and observability Gramians. The balancing reductors
// build their projection bases from these.
func GramianFactors(m *lti.Model) (*mat.Dense, *mat.Dense, error) {
	p, err := ControllabilityGramian(m)
	if err != nil {
		return nil, nil, err
	}
	q, err := ObservabilityGramian(m)
	if err != nil {
		return nil, nil, err
	}
	zc, err := gonumext.SqrtPSD(p)
	if err != nil {
		return nil, nil, fmt.Errorf("sysnorm: controllability factor: %w", err)
	}
	zo, err := gonumext.SqrtPSD(q)
	if err != nil {
		return nil, nil, fmt.Errorf("sysnorm: observability factor: %w", err)
	}
	return zc, zo, nil
}

// HankelValues returns the Hankel singular values of the model in
// nonincreasing order, computed as the singular values of Zo^T Zc.
func HankelValues(m *lti.Model) ([]float64, error) {
	zc, zo, err := GramianFactors(m)
	if err != nil {
		return nil, err
	}
	var product mat.Dense
	product.Mul(zo.T(), zc)
	var svd mat.SVD
	if ok := svd.Factorize(&product, mat.SVDNone); !ok {
		return nil, errors.New("sysnorm: SVD of Gramian factor product failed")
	}
	values := svd.Values(nil)
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))
	return values, nil
}
