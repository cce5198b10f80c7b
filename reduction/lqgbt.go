package reduction

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/prklVIP/pymor/gonumext"
	"github.com/prklVIP/pymor/lti"
	"github.com/prklVIP/pymor/lyapunov"
)

// LQGBalancedTruncation reduces a model by balancing the solutions of the
// two LQG Riccati equations
//
// A^T X + X A - X B B^T X + C^T C = 0   (control)
// A P + P A^T - P C^T C P + B B^T = 0   (filter)
//
// instead of the Gramians. Unlike plain balanced truncation it applies to
// unstable models, as long as (A, B) is stabilizable and (A, C) detectable.
// The ErrorBound is the closed-loop bound 2 sum_{k>r} sigma_k/sqrt(1+sigma_k^2)
// in the normalized coprime factor metric.
func LQGBalancedTruncation(m *lti.Model, r int) (*Result, error) {
	if r < 1 {
		return nil, errOrder
	}
	work, err := fold(m)
	if err != nil {
		return nil, err
	}

	var bbt, ctc mat.Dense
	bbt.Mul(work.B, work.B.T())
	ctc.Mul(work.C.T(), work.C)

	control, err := lyapunov.SolveCARE(work.A, &bbt, &ctc)
	if err != nil {
		return nil, fmt.Errorf("reduction: LQG control Riccati: %w", err)
	}
	filter, err := lyapunov.SolveCARE(work.A.T(), &ctc, &bbt)
	if err != nil {
		return nil, fmt.Errorf("reduction: LQG filter Riccati: %w", err)
	}

	zc, err := gonumext.SqrtPSD(filter)
	if err != nil {
		return nil, errors.New("reduction: LQG filter solution is not positive semidefinite")
	}
	zo, err := gonumext.SqrtPSD(control)
	if err != nil {
		return nil, errors.New("reduction: LQG control solution is not positive semidefinite")
	}

	v1, w1, sigma, err := balanceProject(zc, zo, r)
	if err != nil {
		return nil, err
	}
	rom := work.Project(v1, w1)

	_, kept := v1.Dims()
	bound := 0.
	for index := kept; index < len(sigma); index++ {
		bound += 2 * sigma[index] / math.Sqrt(1+sigma[index]*sigma[index])
	}
	return &Result{
		ROM:          rom,
		HankelValues: sigma,
		ErrorBound:   bound,
		Converged:    true,
	}, nil
}
