// Package lti represents continuous linear time-invariant systems
//
// E x'(t) = A x(t) + B u(t)
//
// y(t) = C x(t) + D u(t)
//
// in dense state-space form. The package carries the primitives every model
// reduction method builds on: transfer function evaluation, pole computation
// and Petrov-Galerkin projection.
package lti

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// Model is a continuous-time LTI state-space model. A nil E is read as the
// identity matrix, a nil D as the zero matrix of matching shape.
type Model struct {
	// State dynamics
	A *mat.Dense
	// Input matrix
	B *mat.Dense
	// Observation matrix
	C *mat.Dense
	// Feedthrough matrix
	D *mat.Dense
	// Descriptor matrix, nil for identity
	E *mat.Dense
}

// New creates a new Model and validates that all matrix dimensions couple.
// D may be nil for zero feedthrough and E may be nil for an identity
// descriptor.
func New(A, B, C, D, E mat.Matrix) *Model {
	// A nil *mat.Dense wrapped in the interface still means "absent".
	if d, ok := D.(*mat.Dense); ok && d == nil {
		D = nil
	}
	if e, ok := E.(*mat.Dense); ok && e == nil {
		E = nil
	}
	n, nA := A.Dims()
	nB, m := B.Dims()
	p, nC := C.Dims()
	if n != nA || nB != n || nC != n {
		panic(errors.New("lti: system matrix dimensions don't match"))
	}
	model := Model{
		A: mat.DenseCopyOf(A),
		B: mat.DenseCopyOf(B),
		C: mat.DenseCopyOf(C),
	}
	if D != nil {
		pD, mD := D.Dims()
		if pD != p || mD != m {
			panic(errors.New("lti: feedthrough dimensions don't match"))
		}
		model.D = mat.DenseCopyOf(D)
	} else {
		model.D = mat.NewDense(p, m, nil)
	}
	if E != nil {
		mE, nE := E.Dims()
		if mE != n || nE != n {
			panic(errors.New("lti: descriptor dimensions don't match"))
		}
		model.E = mat.DenseCopyOf(E)
	}
	return &model
}

// Order returns the state-space dimension n.
func (m *Model) Order() int {
	n, _ := m.A.Dims()
	return n
}

// Inputs returns the number of inputs.
func (m *Model) Inputs() int {
	_, inputs := m.B.Dims()
	return inputs
}

// Outputs returns the number of outputs.
func (m *Model) Outputs() int {
	outputs, _ := m.C.Dims()
	return outputs
}

// Copy returns a deep copy of the model.
func (m *Model) Copy() *Model {
	return New(m.A, m.B, m.C, m.D, m.E)
}

// EA returns E^{-1} A, or A itself for an identity descriptor. The inverse is
// never formed, E is factorized once per call.
func (m *Model) EA() (*mat.Dense, error) {
	if m.E == nil {
		return mat.DenseCopyOf(m.A), nil
	}
	var ea mat.Dense
	if err := ea.Solve(m.E, m.A); err != nil {
		return nil, errors.New("lti: descriptor matrix is singular")
	}
	return &ea, nil
}

// Poles returns the eigenvalues of the matrix pencil (A, E).
func (m *Model) Poles() ([]complex128, error) {
	ea, err := m.EA()
	if err != nil {
		return nil, err
	}
	var eig mat.Eigen
	if ok := eig.Factorize(ea, mat.EigenNone); !ok {
		return nil, errors.New("lti: eigendecomposition failed")
	}
	return eig.Values(nil), nil
}

// IsStable reports whether all poles lie in the open left half-plane.
func (m *Model) IsStable() (bool, error) {
	poles, err := m.Poles()
	if err != nil {
		return false, err
	}
	for _, pole := range poles {
		if real(pole) >= 0 {
			return false, nil
		}
	}
	return true, nil
}

// Project applies the Petrov-Galerkin projection with trial basis V and test
// basis W,
//
// Ar = W^T A V,  Br = W^T B,  Cr = C V,  Er = W^T E V,
//
// and returns the reduced model in descriptor form. The feedthrough is
// carried over unchanged and the source model is never mutated.
func (m *Model) Project(V, W mat.Matrix) *Model {
	nV, r := V.Dims()
	nW, rW := W.Dims()
	if nV != m.Order() || nW != m.Order() || r != rW {
		panic(errors.New("lti: projection basis dimensions don't match"))
	}

	var ar, br, cr, er, tmp mat.Dense
	tmp.Mul(m.A, V)
	ar.Mul(W.T(), &tmp)
	br.Mul(W.T(), m.B)
	cr.Mul(m.C, V)
	if m.E == nil {
		er.Mul(W.T(), V)
	} else {
		var ev mat.Dense
		ev.Mul(m.E, V)
		er.Mul(W.T(), &ev)
	}
	return New(&ar, &br, &cr, m.D, &er)
}
