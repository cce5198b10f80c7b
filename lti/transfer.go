package lti

import (
	"errors"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// shiftedSolve solves the complex shifted system
//
// (sigma E - A) (Xre + i Xim) = Rre + i Rim
//
// over the reals through the equivalent 2n-dimensional block system
//
// [ re(sigma) E - A   -im(sigma) E ] [Xre]   [Rre]
// [ im(sigma) E    re(sigma) E - A ] [Xim] = [Rim]
//
// since gonum/mat has no complex dense solver. A nil E is the identity and a
// nil Rim is read as a real right-hand side.
func shiftedSolve(A, E *mat.Dense, sigma complex128, Rre, Rim *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	n, _ := A.Dims()
	_, k := Rre.Dims()

	block := mat.NewDense(2*n, 2*n, nil)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			e := 0.
			if E != nil {
				e = E.At(row, col)
			} else if row == col {
				e = 1.
			}
			a := A.At(row, col)
			block.Set(row, col, real(sigma)*e-a)
			block.Set(n+row, n+col, real(sigma)*e-a)
			block.Set(row, n+col, -imag(sigma)*e)
			block.Set(n+row, col, imag(sigma)*e)
		}
	}

	rhs := mat.NewDense(2*n, k, nil)
	rhs.Slice(0, n, 0, k).(*mat.Dense).Copy(Rre)
	if Rim != nil {
		rhs.Slice(n, 2*n, 0, k).(*mat.Dense).Copy(Rim)
	}

	var sol mat.Dense
	if err := sol.Solve(block, rhs); err != nil {
		return nil, nil, errors.New("lti: shifted system is singular")
	}
	xre := mat.DenseCopyOf(sol.Slice(0, n, 0, k))
	xim := mat.DenseCopyOf(sol.Slice(n, 2*n, 0, k))
	return xre, xim, nil
}

// ShiftedSolve solves (sigma E - A) X = Rre + i Rim and returns the real and
// imaginary parts of X. Rim may be nil.
func (m *Model) ShiftedSolve(sigma complex128, Rre, Rim *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	return shiftedSolve(m.A, m.E, sigma, Rre, Rim)
}

// ShiftedSolveTrans solves the transposed system (sigma E - A)^T X = Rre + i Rim.
func (m *Model) ShiftedSolveTrans(sigma complex128, Rre, Rim *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	at := mat.DenseCopyOf(m.A.T())
	var et *mat.Dense
	if m.E != nil {
		et = mat.DenseCopyOf(m.E.T())
	}
	return shiftedSolve(at, et, sigma, Rre, Rim)
}

// Eval evaluates the transfer function
//
// G(s) = C (s E - A)^{-1} B + D
//
// at the complex point s.
func (m *Model) Eval(s complex128) (*mat.CDense, error) {
	xre, xim, err := m.ShiftedSolve(s, m.B, nil)
	if err != nil {
		return nil, err
	}
	var gre, gim mat.Dense
	gre.Mul(m.C, xre)
	gre.Add(&gre, m.D)
	gim.Mul(m.C, xim)

	p, in := gre.Dims()
	res := mat.NewCDense(p, in, nil)
	for row := 0; row < p; row++ {
		for col := 0; col < in; col++ {
			res.Set(row, col, complex(gre.At(row, col), gim.At(row, col)))
		}
	}
	return res, nil
}

// EvalDeriv evaluates the transfer function derivative
//
// G'(s) = -C (s E - A)^{-1} E (s E - A)^{-1} B
//
// at the complex point s, using two shifted solves.
func (m *Model) EvalDeriv(s complex128) (*mat.CDense, error) {
	xre, xim, err := m.ShiftedSolve(s, m.B, nil)
	if err != nil {
		return nil, err
	}
	// Right-multiply by E before the second solve.
	if m.E != nil {
		var tre, tim mat.Dense
		tre.Mul(m.E, xre)
		tim.Mul(m.E, xim)
		xre, xim = &tre, &tim
	}
	yre, yim, err := m.ShiftedSolve(s, xre, xim)
	if err != nil {
		return nil, err
	}
	var gre, gim mat.Dense
	gre.Mul(m.C, yre)
	gim.Mul(m.C, yim)

	p, in := gre.Dims()
	res := mat.NewCDense(p, in, nil)
	for row := 0; row < p; row++ {
		for col := 0; col < in; col++ {
			res.Set(row, col, complex(-gre.At(row, col), -gim.At(row, col)))
		}
	}
	return res, nil
}

// FrequencyResponse evaluates G(i omega) for every frequency in omegas. The
// evaluations are independent shifted solves and run as one goroutine per
// frequency.
func (m *Model) FrequencyResponse(omegas []float64) ([]*mat.CDense, error) {
	var wg sync.WaitGroup
	res := make([]*mat.CDense, len(omegas))
	errs := make([]error, len(omegas))

	wg.Add(len(omegas))
	for index, omega := range omegas {
		go func(i int, w float64) {
			defer wg.Done()
			res[i], errs[i] = m.Eval(complex(0, w))
		}(index, omega)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// ImpulseResponse computes the impulse response
//
// h(t) = C e^{E^{-1}A t} E^{-1}B
//
// at every tap in t and returns one (outputs by inputs) matrix per tap.
func (m *Model) ImpulseResponse(t []float64) ([]*mat.Dense, error) {
	ea, err := m.EA()
	if err != nil {
		return nil, err
	}
	eb := m.B
	if m.E != nil {
		var solved mat.Dense
		if err := solved.Solve(m.E, m.B); err != nil {
			return nil, errors.New("lti: descriptor matrix is singular")
		}
		eb = &solved
	}

	var wg sync.WaitGroup
	res := make([]*mat.Dense, len(t))
	wg.Add(len(t))
	for index, tap := range t {
		go func(i int, tau float64) {
			defer wg.Done()
			var scaled, expm, cb mat.Dense
			scaled.Scale(tau, ea)
			expm.Exp(&scaled)
			cb.Mul(m.C, &expm)
			var h mat.Dense
			h.Mul(&cb, eb)
			res[i] = &h
		}(index, tap)
	}
	wg.Wait()
	return res, nil
}
