package reduction

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/prklVIP/pymor/lti"
)

// TransferFunc is the data a realization-free reduction needs: transfer
// function values and derivatives at complex points. Anything that can be
// sampled this way can be reduced by TFIRKA, realized or not.
type TransferFunc interface {
	// Dims returns the number of outputs and inputs.
	Dims() (outputs, inputs int)
	// Eval returns G(s).
	Eval(s complex128) (*mat.CDense, error)
	// Deriv returns G'(s).
	Deriv(s complex128) (*mat.CDense, error)
}

// modelTF adapts an lti.Model to the TransferFunc interface.
type modelTF struct {
	m *lti.Model
}

func (t modelTF) Dims() (int, int)                       { return t.m.Outputs(), t.m.Inputs() }
func (t modelTF) Eval(s complex128) (*mat.CDense, error) { return t.m.Eval(s) }
func (t modelTF) Deriv(s complex128) (*mat.CDense, error) {
	return t.m.EvalDeriv(s)
}

// ModelTF wraps a state-space model for use with TFIRKA.
func ModelTF(m *lti.Model) TransferFunc { return modelTF{m} }

// TFIRKA runs transfer-function IRKA: each sweep samples G and G' at the
// current shifts, assembles the bitangential Hermite interpolant through the
// shifted Loewner pencil
//
// Er = -L,  Ar = -M,  Br[i,:] = c_i^T G(sigma_i),  Cr[:,i] = G(sigma_i) b_i,
//
// realifies it, and mirrors the interpolant's poles into the next shift set.
// It needs only transfer-function samples, never the state-space data, and
// at a fixed point satisfies the same H2-optimality conditions as IRKA.
func TFIRKA(tf TransferFunc, r int, opts IRKAOptions) (*Result, error) {
	if r < 1 {
		return nil, errOrder
	}
	opts.defaults()

	outputs, inputs := tf.Dims()
	shifts := opts.Shifts
	if len(shifts) == 0 {
		shifts = make([]complex128, r)
		for index := range shifts {
			exponent := -2.
			if r > 1 {
				exponent += 4 * float64(index) / float64(r-1)
			}
			shifts[index] = complex(math.Pow(10, exponent), 0)
		}
	}
	units := make([]tangent, len(shifts))
	for index, sigma := range shifts {
		units[index] = tangent{sigma: sigma, b: onesDir(inputs), c: onesDir(outputs)}
	}
	units = packTangents(units, r)

	var rom *lti.Model
	previous := expandShifts(units)
	converged := false
	iterations := 0

	for ; iterations < opts.MaxIter; iterations++ {
		var err error
		rom, err = loewnerRealization(tf, units, r)
		if err != nil {
			return nil, fmt.Errorf("reduction: TF-IRKA sweep %d: %w", iterations, err)
		}
		units, err = romTangents(rom, r)
		if err != nil {
			return nil, fmt.Errorf("reduction: TF-IRKA sweep %d: %w", iterations, err)
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

// hermiteSample is one interpolation node with its transfer samples.
type hermiteSample struct {
	sigma complex128
	b, c  []complex128
	g     *mat.CDense
	dg    *mat.CDense
}

// loewnerRealization assembles the realified Hermite Loewner model of order
// r from samples at the unit shifts and their conjugates.
func loewnerRealization(tf TransferFunc, units []tangent, r int) (*lti.Model, error) {
	outputs, inputs := tf.Dims()

	// Expand units to r nodes, conjugate nodes reuse the conjugated samples.
	nodes := make([]hermiteSample, 0, r)
	for _, unit := range units {
		g, err := tf.Eval(unit.sigma)
		if err != nil {
			return nil, err
		}
		dg, err := tf.Deriv(unit.sigma)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, hermiteSample{sigma: unit.sigma, b: unit.b, c: unit.c, g: g, dg: dg})
		if unit.width == 2 {
			nodes = append(nodes, hermiteSample{
				sigma: cmplx.Conj(unit.sigma),
				b:     conjVec(unit.b),
				c:     conjVec(unit.c),
				g:     conjCDense(g),
				dg:    conjCDense(dg),
			})
		}
	}
	if len(nodes) != r {
		return nil, errors.New("reduction: interpolation node count mismatch")
	}

	er := mat.NewCDense(r, r, nil)
	ar := mat.NewCDense(r, r, nil)
	br := mat.NewCDense(r, inputs, nil)
	cr := mat.NewCDense(outputs, r, nil)

	for i := 0; i < r; i++ {
		ni := nodes[i]
		for j := 0; j < r; j++ {
			nj := nodes[j]
			if i == j || ni.sigma == nj.sigma {
				// Hermite diagonal.
				dgq := quadForm(ni.c, ni.dg, ni.b)
				gq := quadForm(ni.c, ni.g, ni.b)
				er.Set(i, j, -dgq)
				ar.Set(i, j, -(gq + ni.sigma*dgq))
				continue
			}
			gi := quadForm(ni.c, ni.g, nj.b)
			gj := quadForm(ni.c, nj.g, nj.b)
			delta := ni.sigma - nj.sigma
			er.Set(i, j, -(gi-gj)/delta)
			ar.Set(i, j, -(ni.sigma*gi-nj.sigma*gj)/delta)
		}
		for inp := 0; inp < inputs; inp++ {
			var sum complex128
			for out := 0; out < outputs; out++ {
				sum += ni.c[out] * ni.g.At(out, inp)
			}
			br.Set(i, inp, sum)
		}
		for out := 0; out < outputs; out++ {
			var sum complex128
			for inp := 0; inp < inputs; inp++ {
				sum += ni.g.At(out, inp) * ni.b[inp]
			}
			cr.Set(out, i, sum)
		}
	}

	// Realify with the unitary pair transform T: a real slot stays, a
	// conjugate pair (v, conj v) maps to sqrt(2) (Re v, -Im v).
	t := pairTransform(units, r)
	te := mulCDense(mulCDense(t, er), t.H())
	ta := mulCDense(mulCDense(t, ar), t.H())
	tb := mulCDense(t, br)
	tc := mulCDense(cr, t.H())

	return lti.New(realPart(ta), realPart(tb), realPart(tc), nil, realPart(te)), nil
}

// pairTransform builds the block-diagonal realification matrix matching the
// unit widths.
func pairTransform(units []tangent, r int) *mat.CDense {
	t := mat.NewCDense(r, r, nil)
	inv := complex(1/math.Sqrt2, 0)
	row := 0
	for _, unit := range units {
		if unit.width == 2 {
			t.Set(row, row, inv)
			t.Set(row, row+1, inv)
			t.Set(row+1, row, complex(0, 1)*inv)
			t.Set(row+1, row+1, complex(0, -1)*inv)
			row += 2
			continue
		}
		t.Set(row, row, 1)
		row++
	}
	return t
}

func quadForm(c []complex128, g *mat.CDense, b []complex128) complex128 {
	var sum complex128
	for out := range c {
		for inp := range b {
			sum += c[out] * g.At(out, inp) * b[inp]
		}
	}
	return sum
}

// mulCDense returns the complex matrix product a b; mat.CDense carries no
// Mul of its own.
func mulCDense(a, b mat.CMatrix) *mat.CDense {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ac != br {
		panic(mat.ErrShape)
	}
	res := mat.NewCDense(ar, bc, nil)
	for row := 0; row < ar; row++ {
		for col := 0; col < bc; col++ {
			var sum complex128
			for k := 0; k < ac; k++ {
				sum += a.At(row, k) * b.At(k, col)
			}
			res.Set(row, col, sum)
		}
	}
	return res
}

func conjVec(v []complex128) []complex128 {
	res := make([]complex128, len(v))
	for index, value := range v {
		res[index] = cmplx.Conj(value)
	}
	return res
}

func conjCDense(g *mat.CDense) *mat.CDense {
	rows, cols := g.Dims()
	res := mat.NewCDense(rows, cols, nil)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			res.Set(row, col, cmplx.Conj(g.At(row, col)))
		}
	}
	return res
}

func realPart(g *mat.CDense) *mat.Dense {
	rows, cols := g.Dims()
	res := mat.NewDense(rows, cols, nil)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			res.Set(row, col, real(g.At(row, col)))
		}
	}
	return res
}
