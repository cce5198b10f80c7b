// Package heat builds full-order benchmark models for the reduction methods.
// The main builder semi-discretizes the one-dimensional heat equation
//
// T_t(z, t) = kappa T_zz(z, t),  z in (0, 1),
//
// with boundary control by centered finite differences, yielding a stable
// LTI state-space model whose state holds the temperatures at the interior
// grid nodes.
package heat

import (
	"errors"

	"github.com/prklVIP/pymor/lti"
	"gonum.org/v1/gonum/mat"
)

// OutputKind selects the observation functional of the discretized model.
type OutputKind int

const (
	// MeanRightHalf observes the average temperature over the right half
	// of the rod.
	MeanRightHalf OutputKind = iota
	// PointTwoThirds observes the temperature at z = 2/3.
	PointTwoThirds
)

// BoundaryKind selects the condition at the right end of the rod. The left
// end always carries the Dirichlet temperature control.
type BoundaryKind int

const (
	// DirichletRight holds the right end at zero temperature (or at a
	// second controlled temperature with BothEnds).
	DirichletRight BoundaryKind = iota
	// NeumannRight prescribes zero flux at the right end, an insulated
	// rod; with BothEnds the second input controls the boundary flux
	// instead of the temperature.
	NeumannRight
)

// Options parameterizes the heat equation discretization.
type Options struct {
	// N is the number of interior grid nodes, the order of the model.
	N int
	// Diffusivity kappa, must be positive.
	Diffusivity float64
	// BothEnds adds a second input acting on the right boundary. The
	// default is left-boundary control only.
	BothEnds bool
	// Boundary selects the right boundary condition.
	Boundary BoundaryKind
	// Output selects the observation functional.
	Output OutputKind
}

// DefaultOptions returns the discretization used by the demos: 100 nodes,
// unit diffusivity, left boundary control and the averaged output.
func DefaultOptions() Options {
	return Options{N: 100, Diffusivity: 1}
}

// New1D builds the finite-difference heat equation model
//
// x'(t) = A x(t) + B u(t),  y(t) = C x(t),
//
// where A is the scaled tridiagonal Laplacian kappa/h^2 tridiag(1, -2, 1)
// with h = 1/(N+1), and the boundary conditions enter through B in the
// first (and optionally last) state row. A Neumann right end eliminates
// the ghost node through T_{N+1} = T_N + h u, which turns the corner
// diagonal into -kappa/h^2 and scales the flux input by kappa/h.
func New1D(opts Options) (*lti.Model, error) {
	if opts.N < 2 {
		return nil, errors.New("heat: need at least two grid nodes")
	}
	if opts.Diffusivity <= 0 {
		return nil, errors.New("heat: diffusivity must be positive")
	}

	n := opts.N
	h := 1. / float64(n+1)
	scale := opts.Diffusivity / (h * h)

	a := mat.NewDense(n, n, nil)
	for row := 0; row < n; row++ {
		a.Set(row, row, -2*scale)
		if row > 0 {
			a.Set(row, row-1, scale)
		}
		if row < n-1 {
			a.Set(row, row+1, scale)
		}
	}

	inputs := 1
	if opts.BothEnds {
		inputs = 2
	}
	b := mat.NewDense(n, inputs, nil)
	b.Set(0, 0, scale)

	switch opts.Boundary {
	case DirichletRight:
		if opts.BothEnds {
			b.Set(n-1, 1, scale)
		}
	case NeumannRight:
		a.Set(n-1, n-1, -scale)
		if opts.BothEnds {
			b.Set(n-1, 1, opts.Diffusivity/h)
		}
	default:
		return nil, errors.New("heat: unknown boundary kind")
	}

	c := mat.NewDense(1, n, nil)
	switch opts.Output {
	case MeanRightHalf:
		start := n / 2
		weight := 1. / float64(n-start)
		for col := start; col < n; col++ {
			c.Set(0, col, weight)
		}
	case PointTwoThirds:
		c.Set(0, 2*n/3, 1)
	default:
		return nil, errors.New("heat: unknown output kind")
	}

	return lti.New(a, b, c, nil, nil), nil
}

// IntegratorChain returns a chain of n damped first-order stages,
//
// x_k'(t) = -decay x_k(t) + gain x_{k-1}(t),
//
// driven through the first stage and observed at the last. It is the second
// synthetic full-order model exercised by the demos; its transfer function is
// gain^n / (s + decay)^n.
func IntegratorChain(n int, gain, decay float64) (*lti.Model, error) {
	if n < 1 {
		return nil, errors.New("heat: chain needs at least one stage")
	}
	if decay <= 0 {
		return nil, errors.New("heat: chain decay must be positive")
	}
	a := mat.NewDense(n, n, nil)
	for row := 0; row < n; row++ {
		a.Set(row, row, -decay)
		if row > 0 {
			a.Set(row, row-1, gain)
		}
	}
	b := mat.NewDense(n, 1, nil)
	b.Set(0, 0, gain)
	c := mat.NewDense(1, n, nil)
	c.Set(0, n-1, 1)
	return lti.New(a, b, c, nil, nil), nil
}
