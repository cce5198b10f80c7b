package reduction

import (
	"errors"
	"fmt"

	"github.com/prklVIP/pymor/lti"
	"github.com/prklVIP/pymor/sysnorm"
)

// BalancedTruncation reduces a stable model to order r with the square-root
// balanced truncation method: Gramian factors Zc, Zo from the two Lyapunov
// equations, singular value decomposition of Zo^T Zc, and truncation of the
// states with small Hankel singular values. The returned ErrorBound is the
// classic a-priori bound
//
// ||G - Gr||_Hinf <= 2 (sigma_{r+1} + ... + sigma_n).
func BalancedTruncation(m *lti.Model, r int) (*Result, error) {
	if r < 1 {
		return nil, errOrder
	}
	stable, err := m.IsStable()
	if err != nil {
		return nil, err
	}
	if !stable {
		return nil, errors.New("reduction: balanced truncation requires a stable model")
	}

	work, err := fold(m)
	if err != nil {
		return nil, err
	}
	zc, zo, err := sysnorm.GramianFactors(work)
	if err != nil {
		return nil, fmt.Errorf("reduction: balanced truncation: %w", err)
	}
	v1, w1, sigma, err := balanceProject(zc, zo, r)
	if err != nil {
		return nil, err
	}

	rom := work.Project(v1, w1)
	_, kept := v1.Dims()
	bound := 0.
	for index := kept; index < len(sigma); index++ {
		bound += 2 * sigma[index]
	}
	return &Result{
		ROM:          rom,
		HankelValues: sigma,
		ErrorBound:   bound,
		Converged:    true,
	}, nil
}
