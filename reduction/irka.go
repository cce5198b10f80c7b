package reduction

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/prklVIP/pymor/gonumext"
	"github.com/prklVIP/pymor/lti"
)

// IRKAOptions configures the iterative rational Krylov algorithm.
type IRKAOptions struct {
	// MaxIter caps the fixed-point sweeps, default 100.
	MaxIter int
	// Tol is the relative shift-change convergence tolerance, default 1e-4.
	Tol float64
	// Shifts optionally seeds the interpolation points. Complex entries
	// are closed under conjugation internally. Empty means a logarithmic
	// spread over the pole magnitudes of the model.
	Shifts []complex128
}

func (o *IRKAOptions) defaults() {
	if o.MaxIter <= 0 {
		o.MaxIter = 100
	}
	if o.Tol <= 0 {
		o.Tol = 1e-4
	}
}

// tangent is one interpolation unit: a shift in the closed upper half-plane
// with its right and left tangential directions. Complex shifts span two
// real basis columns (real and imaginary part of the solve), real shifts one.
type tangent struct {
	sigma complex128
	b     []complex128
	c     []complex128
	width int
}

// IRKA reduces the model with the two-sided iterative rational Krylov
// algorithm. Each sweep solves the shifted systems
//
// v_i = (sigma_i E - A)^{-1} B b_i,  w_i = (sigma_i E - A)^{-T} C^T c_i,
//
// projects, and mirrors the reduced poles and tangential directions into the
// next shift set. At a fixed point the reduced model is a bitangential
// Hermite interpolant of the full transfer function and satisfies the
// first-order H2-optimality conditions.
func IRKA(m *lti.Model, r int, opts IRKAOptions) (*Result, error) {
	return irka(m, r, opts, false)
}

// OneSidedIRKA is the Galerkin variant using the input Krylov basis for both
// projection sides (W = V). Cheaper per sweep, but the fixed point only
// interpolates, it is not H2-optimal.
func OneSidedIRKA(m *lti.Model, r int, opts IRKAOptions) (*Result, error) {
	return irka(m, r, opts, true)
}

func irka(m *lti.Model, r int, opts IRKAOptions, oneSided bool) (*Result, error) {
	if r < 1 {
		return nil, errOrder
	}
	if r >= m.Order() {
		return &Result{ROM: m.Copy(), Converged: true}, nil
	}
	opts.defaults()

	units, err := seedTangents(m, r, opts.Shifts)
	if err != nil {
		return nil, err
	}

	var rom *lti.Model
	previous := expandShifts(units)
	converged := false
	iterations := 0

	for ; iterations < opts.MaxIter; iterations++ {
		v, err := tangentialBasis(m, units, false)
		if err != nil {
			return nil, fmt.Errorf("reduction: IRKA sweep %d: %w", iterations, err)
		}
		w := v
		if !oneSided {
			w, err = tangentialBasis(m, units, true)
			if err != nil {
				return nil, fmt.Errorf("reduction: IRKA sweep %d: %w", iterations, err)
			}
		}
		rom = m.Project(v, w)

		units, err = romTangents(rom, r)
		if err != nil {
			return nil, fmt.Errorf("reduction: IRKA sweep %d: %w", iterations, err)
		}
		current := expandShifts(units)
		if shiftChange(previous, current) < opts.Tol {
			converged = true
			iterations++
			break
		}
		previous = current
	}

	return &Result{
		ROM:        rom,
		Iterations: iterations,
		Converged:  converged,
		Shifts:     expandShifts(units),
	}, nil
}

// seedTangents builds the initial interpolation units from user shifts or,
// absent those, from a logarithmic spread over the pole magnitudes. The
// initial directions are all-ones.
func seedTangents(m *lti.Model, r int, shifts []complex128) ([]tangent, error) {
	if len(shifts) == 0 {
		low, high := 1e-2, 1e2
		if poles, err := m.Poles(); err == nil {
			lo, hi := math.MaxFloat64, 0.
			for _, pole := range poles {
				magnitude := cmplx.Abs(pole)
				if magnitude == 0 {
					continue
				}
				lo = math.Min(lo, magnitude)
				hi = math.Max(hi, magnitude)
			}
			if hi > 0 && hi > lo {
				low, high = lo, hi
			}
		}
		shifts = make([]complex128, r)
		for index := range shifts {
			exponent := math.Log10(low)
			if r > 1 {
				exponent += float64(index) * (math.Log10(high) - math.Log10(low)) / float64(r-1)
			}
			shifts[index] = complex(math.Pow(10, exponent), 0)
		}
	}

	bDir := onesDir(m.Inputs())
	cDir := onesDir(m.Outputs())
	units := make([]tangent, len(shifts))
	for index, sigma := range shifts {
		units[index] = tangent{sigma: sigma, b: bDir, c: cDir}
	}
	return packTangents(units, r), nil
}

func onesDir(n int) []complex128 {
	dir := make([]complex128, n)
	for index := range dir {
		dir[index] = 1
	}
	return dir
}

// packTangents folds all shifts into the closed upper half-plane, orders
// them by magnitude and assigns widths so that the spanned real basis has
// exactly r columns. A complex shift that no longer fits in two columns is
// flattened to its real part. Shorter inputs are cycled.
func packTangents(in []tangent, r int) []tangent {
	folded := make([]tangent, 0, len(in))
	for _, unit := range in {
		if imag(unit.sigma) < 0 {
			continue
		}
		// Interpolation points must lie in the open right half-plane;
		// mirror stray ones.
		if real(unit.sigma) < 0 {
			unit.sigma = complex(-real(unit.sigma), imag(unit.sigma))
		}
		if real(unit.sigma) == 0 {
			unit.sigma = complex(1e-6*(1+math.Abs(imag(unit.sigma))), imag(unit.sigma))
		}
		folded = append(folded, unit)
	}
	if len(folded) == 0 {
		folded = append(folded, tangent{sigma: 1, b: []complex128{1}, c: []complex128{1}})
	}
	sort.Slice(folded, func(i, j int) bool {
		return cmplx.Abs(folded[i].sigma) < cmplx.Abs(folded[j].sigma)
	})

	res := make([]tangent, 0, r)
	remaining := r
	for index := 0; remaining > 0; index++ {
		unit := folded[index%len(folded)]
		if imag(unit.sigma) != 0 && remaining >= 2 {
			unit.width = 2
		} else {
			unit.sigma = complex(real(unit.sigma), 0)
			unit.width = 1
		}
		remaining -= unit.width
		res = append(res, unit)
	}
	return res
}

// tangentialBasis assembles the real rational Krylov basis for the units.
// trans selects the left (observability) side.
func tangentialBasis(m *lti.Model, units []tangent, trans bool) (*mat.Dense, error) {
	n := m.Order()
	width := 0
	for _, unit := range units {
		width += unit.width
	}
	basis := mat.NewDense(n, width, nil)

	col := 0
	for _, unit := range units {
		var rhsRe, rhsIm *mat.Dense
		if trans {
			rhsRe, rhsIm = complexMatVec(m.C, unit.c, true)
		} else {
			rhsRe, rhsIm = complexMatVec(m.B, unit.b, false)
		}
		var xre, xim *mat.Dense
		var err error
		if trans {
			xre, xim, err = m.ShiftedSolveTrans(unit.sigma, rhsRe, rhsIm)
		} else {
			xre, xim, err = m.ShiftedSolve(unit.sigma, rhsRe, rhsIm)
		}
		if err != nil {
			return nil, err
		}
		for row := 0; row < n; row++ {
			basis.Set(row, col, xre.At(row, 0))
		}
		col++
		if unit.width == 2 {
			for row := 0; row < n; row++ {
				basis.Set(row, col, xim.At(row, 0))
			}
			col++
		}
	}
	return gonumext.Orthonormalize(basis)
}

// complexMatVec multiplies a real matrix (its transpose when trans is set)
// with a complex vector, returning real and imaginary part as column
// matrices.
func complexMatVec(a *mat.Dense, x []complex128, trans bool) (*mat.Dense, *mat.Dense) {
	op := mat.Matrix(a)
	if trans {
		op = a.T()
	}
	rows, cols := op.Dims()
	if cols != len(x) {
		panic(errors.New("reduction: tangential direction dimension doesn't match"))
	}
	re := mat.NewDense(rows, 1, nil)
	im := mat.NewDense(rows, 1, nil)
	for row := 0; row < rows; row++ {
		var sumRe, sumIm float64
		for colIdx := 0; colIdx < cols; colIdx++ {
			v := op.At(row, colIdx)
			sumRe += v * real(x[colIdx])
			sumIm += v * imag(x[colIdx])
		}
		re.Set(row, 0, sumRe)
		im.Set(row, 0, sumIm)
	}
	return re, im
}

// romTangents mirrors the reduced model's spectral data into the next
// interpolation units: shifts are the reflected poles -lambda_i, right
// directions B_r^T y_i from the left eigenvectors, left directions C_r x_i
// from the right eigenvectors.
func romTangents(rom *lti.Model, r int) ([]tangent, error) {
	ea, err := rom.EA()
	if err != nil {
		return nil, err
	}
	var eig mat.Eigen
	if ok := eig.Factorize(ea, mat.EigenBoth); !ok {
		return nil, errors.New("reduction: reduced eigendecomposition failed")
	}
	values := eig.Values(nil)
	var right, left mat.CDense
	eig.VectorsTo(&right)
	eig.LeftVectorsTo(&left)

	order, _ := ea.Dims()
	units := make([]tangent, order)
	for k := 0; k < order; k++ {
		bDir := make([]complex128, rom.Inputs())
		for inp := 0; inp < rom.Inputs(); inp++ {
			var sum complex128
			for row := 0; row < order; row++ {
				sum += complex(rom.B.At(row, inp), 0) * cmplx.Conj(left.At(row, k))
			}
			bDir[inp] = sum
		}
		cDir := make([]complex128, rom.Outputs())
		for out := 0; out < rom.Outputs(); out++ {
			var sum complex128
			for col := 0; col < order; col++ {
				sum += complex(rom.C.At(out, col), 0) * right.At(col, k)
			}
			cDir[out] = sum
		}
		units[k] = tangent{sigma: -values[k], b: bDir, c: cDir}
	}
	return packTangents(units, r), nil
}

// expandShifts flattens units to a conjugate-closed shift list.
func expandShifts(units []tangent) []complex128 {
	res := make([]complex128, 0)
	for _, unit := range units {
		res = append(res, unit.sigma)
		if unit.width == 2 {
			res = append(res, cmplx.Conj(unit.sigma))
		}
	}
	return res
}

// shiftChange measures the relative displacement between two shift sets
// after sorting by magnitude.
func shiftChange(old, current []complex128) float64 {
	sortByMagnitude(old)
	sortByMagnitude(current)
	count := len(old)
	if len(current) < count {
		count = len(current)
	}
	change := 0.
	for index := 0; index < count; index++ {
		delta := cmplx.Abs(current[index]-old[index]) / math.Max(1, cmplx.Abs(old[index]))
		change = math.Max(change, delta)
	}
	if len(old) != len(current) {
		change = math.Max(change, 1)
	}
	return change
}

func sortByMagnitude(shifts []complex128) {
	sort.Slice(shifts, func(i, j int) bool {
		mi, mj := cmplx.Abs(shifts[i]), cmplx.Abs(shifts[j])
		if mi == mj {
			return imag(shifts[i]) < imag(shifts[j])
		}
		return mi < mj
	})
}
