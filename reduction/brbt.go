package reduction

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/prklVIP/pymor/gonumext"
	"github.com/prklVIP/pymor/lti"
	"github.com/prklVIP/pymor/lyapunov"
	"github.com/prklVIP/pymor/sysnorm"
)

// BRBTOptions configures the bounded-real reductor.
type BRBTOptions struct {
	// Gamma is the bounded-real level. It must exceed the H-infinity norm
	// of the model; zero means 1.01 times the computed norm.
	Gamma float64
}

// BoundedRealBalancedTruncation balances the solutions of the bounded-real
// Riccati equations
//
// A^T X + X A + gamma^{-2} X B B^T X + C^T C = 0
// A P + P A^T + gamma^{-2} P C^T C P + B B^T = 0
//
// and truncates. The reduced model preserves the bounded-real level and
// satisfies ||G - Gr||_Hinf <= 2 gamma (sigma_{r+1} + ... + sigma_n) in the
// characteristic values sigma_k. Zero feedthrough is required.
func BoundedRealBalancedTruncation(m *lti.Model, r int, opts BRBTOptions) (*Result, error) {
	if r < 1 {
		return nil, errOrder
	}
	if mat.Norm(m.D, 2) != 0 {
		return nil, errors.New("reduction: bounded-real balancing requires zero feedthrough")
	}
	stable, err := m.IsStable()
	if err != nil {
		return nil, err
	}
	if !stable {
		return nil, errors.New("reduction: bounded-real balancing requires a stable model")
	}

	work, err := fold(m)
	if err != nil {
		return nil, err
	}

	gamma := opts.Gamma
	if gamma <= 0 {
		norm, _, err := sysnorm.HInf(work)
		if err != nil {
			return nil, fmt.Errorf("reduction: bounded-real level: %w", err)
		}
		gamma = 1.01 * norm
	}

	// The quadratic terms enter with reversed sign, passed to the Riccati
	// solver as an indefinite G.
	var bbt, ctc mat.Dense
	bbt.Mul(work.B, work.B.T())
	ctc.Mul(work.C.T(), work.C)
	var negBBT, negCTC mat.Dense
	scale := 1 / (gamma * gamma)
	negBBT.Scale(-scale, &bbt)
	negCTC.Scale(-scale, &ctc)

	observability, err := lyapunov.SolveCARE(work.A, &negBBT, &ctc)
	if err != nil {
		return nil, fmt.Errorf("reduction: bounded-real observability Riccati: %w", err)
	}
	controllability, err := lyapunov.SolveCARE(work.A.T(), &negCTC, &bbt)
	if err != nil {
		return nil, fmt.Errorf("reduction: bounded-real controllability Riccati: %w", err)
	}

	zc, err := gonumext.SqrtPSD(controllability)
	if err != nil {
		return nil, errors.New("reduction: bounded-real controllability solution is not positive semidefinite")
	}
	zo, err := gonumext.SqrtPSD(observability)
	if err != nil {
		return nil, errors.New("reduction: bounded-real observability solution is not positive semidefinite")
	}

	v1, w1, sigma, err := balanceProject(zc, zo, r)
	if err != nil {
		return nil, err
	}
	rom := work.Project(v1, w1)

	_, kept := v1.Dims()
	bound := 0.
	for index := kept; index < len(sigma); index++ {
		bound += 2 * gamma * sigma[index]
	}
	return &Result{
		ROM:          rom,
		HankelValues: sigma,
		ErrorBound:   bound,
		Converged:    true,
	}, nil
}
