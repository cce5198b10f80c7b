package lyapunov

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSolveCAREScalar(t *testing.T) {
	// 2ax - gx^2 + q = 0 with a = -1, g = 1, q = 1: the stabilizing root
	// is x = sqrt(2) - 1.
	a := mat.NewDense(1, 1, []float64{-1})
	g := mat.NewDense(1, 1, []float64{1})
	q := mat.NewDense(1, 1, []float64{1})
	x, err := SolveCARE(a, g, q)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt2-1, x.At(0, 0), 1e-10)
	assert.InDelta(t, 0., CARE(a, g, q, x), 1e-10)
}

func TestSolveCAREScalarUnstablePlant(t *testing.T) {
	// a = 1, g = 1, q = 0: 2x - x^2 = 0, stabilizing root x = 2 makes
	// the closed loop a - gx = -1.
	a := mat.NewDense(1, 1, []float64{1})
	g := mat.NewDense(1, 1, []float64{1})
	q := mat.NewDense(1, 1, []float64{0})
	x, err := SolveCARE(a, g, q)
	require.NoError(t, err)
	assert.InDelta(t, 2., x.At(0, 0), 1e-9)
}

func TestSolveCAREMatrix(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{-1, 1, 0, -2})
	b := mat.NewDense(2, 1, []float64{0, 1})
	c := mat.NewDense(1, 2, []float64{1, 0})

	var g, q mat.Dense
	g.Mul(b, b.T())
	q.Mul(c.T(), c)

	x, err := SolveCARE(a, &g, &q)
	require.NoError(t, err)
	assert.InDelta(t, 0., CARE(a, &g, &q, x), 1e-8)
	assert.InDelta(t, x.At(0, 1), x.At(1, 0), 1e-10)

	// Stabilizing: A - G X is stable.
	var gx, ak mat.Dense
	gx.Mul(&g, x)
	ak.Sub(a, &gx)
	assert.True(t, denseStable(&ak))

	// The solution is positive semidefinite.
	assert.GreaterOrEqual(t, x.At(0, 0), 0.)
	assert.GreaterOrEqual(t, x.At(1, 1), 0.)
}

func TestSolveCAREIndefiniteQuadraticTerm(t *testing.T) {
	// Bounded-real style equation with G entering negated: the quadratic
	// term flips sign but the sign-function extraction still applies.
	a := mat.NewDense(1, 1, []float64{-2})
	g := mat.NewDense(1, 1, []float64{-0.25})
	q := mat.NewDense(1, 1, []float64{1})
	x, err := SolveCARE(a, g, q)
	require.NoError(t, err)
	assert.InDelta(t, 0., CARE(a, g, q, x), 1e-10)
	assert.Greater(t, x.At(0, 0), 0.)
}

func TestSolveCARENonSquarePanics(t *testing.T) {
	a := mat.NewDense(2, 3, nil)
	assert.Panics(t, func() { SolveCARE(a, a, a) })
}
