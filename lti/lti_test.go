package lti

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// firstOrder returns the scalar system 1/(s+1).
func firstOrder() *Model {
	a := mat.NewDense(1, 1, []float64{-1})
	b := mat.NewDense(1, 1, []float64{1})
	c := mat.NewDense(1, 1, []float64{1})
	return New(a, b, c, nil, nil)
}

func TestNewValidatesDimensions(t *testing.T) {
	a := mat.NewDense(2, 2, nil)
	b := mat.NewDense(2, 1, nil)
	c := mat.NewDense(1, 2, nil)

	assert.NotPanics(t, func() { New(a, b, c, nil, nil) })
	assert.Panics(t, func() { New(a, mat.NewDense(3, 1, nil), c, nil, nil) })
	assert.Panics(t, func() { New(a, b, mat.NewDense(1, 3, nil), nil, nil) })
	assert.Panics(t, func() { New(a, b, c, mat.NewDense(2, 2, nil), nil) })
	assert.Panics(t, func() { New(a, b, c, nil, mat.NewDense(3, 3, nil)) })
}

func TestDims(t *testing.T) {
	a := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		a.Set(i, i, -1)
	}
	b := mat.NewDense(3, 2, nil)
	c := mat.NewDense(1, 3, nil)
	m := New(a, b, c, nil, nil)
	assert.Equal(t, 3, m.Order())
	assert.Equal(t, 2, m.Inputs())
	assert.Equal(t, 1, m.Outputs())
	// Zero feedthrough is materialized.
	p, in := m.D.Dims()
	assert.Equal(t, 1, p)
	assert.Equal(t, 2, in)
}

func TestPolesAndStability(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{-1, 0, 0, -3})
	b := mat.NewDense(2, 1, []float64{1, 1})
	c := mat.NewDense(1, 2, []float64{1, 1})
	m := New(a, b, c, nil, nil)

	poles, err := m.Poles()
	require.NoError(t, err)
	require.Len(t, poles, 2)
	got := []float64{real(poles[0]), real(poles[1])}
	assert.InDelta(t, -4., got[0]+got[1], 1e-12)

	stable, err := m.IsStable()
	require.NoError(t, err)
	assert.True(t, stable)

	a.Set(0, 0, 1)
	unstable := New(a, b, c, nil, nil)
	stable, err = unstable.IsStable()
	require.NoError(t, err)
	assert.False(t, stable)
}

func TestEvalFirstOrder(t *testing.T) {
	m := firstOrder()

	// G(0) = 1
	g, err := m.Eval(0)
	require.NoError(t, err)
	assert.InDelta(t, 1., real(g.At(0, 0)), 1e-12)
	assert.InDelta(t, 0., imag(g.At(0, 0)), 1e-12)

	// G(i) = 1/(1+i) = (1-i)/2
	g, err = m.Eval(complex(0, 1))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, real(g.At(0, 0)), 1e-12)
	assert.InDelta(t, -0.5, imag(g.At(0, 0)), 1e-12)
}

func TestEvalDeriv(t *testing.T) {
	// G(s) = 1/(s+1), G'(s) = -1/(s+1)^2, G'(1) = -1/4.
	m := firstOrder()
	dg, err := m.EvalDeriv(1)
	require.NoError(t, err)
	assert.InDelta(t, -0.25, real(dg.At(0, 0)), 1e-12)
	assert.InDelta(t, 0., imag(dg.At(0, 0)), 1e-12)
}

func TestEvalWithDescriptor(t *testing.T) {
	// E = 2 halves the pole: G(s) = 1/(2s+1).
	a := mat.NewDense(1, 1, []float64{-1})
	b := mat.NewDense(1, 1, []float64{1})
	c := mat.NewDense(1, 1, []float64{1})
	e := mat.NewDense(1, 1, []float64{2})
	m := New(a, b, c, nil, e)

	poles, err := m.Poles()
	require.NoError(t, err)
	assert.InDelta(t, -0.5, real(poles[0]), 1e-12)

	g, err := m.Eval(complex(0, 0.5))
	require.NoError(t, err)
	// G(0.5i) = 1/(1+i) = (1-i)/2
	assert.InDelta(t, 0.5, real(g.At(0, 0)), 1e-12)
	assert.InDelta(t, -0.5, imag(g.At(0, 0)), 1e-12)
}

func TestFrequencyResponse(t *testing.T) {
	m := firstOrder()
	omegas := []float64{0.1, 1, 10}
	responses, err := m.FrequencyResponse(omegas)
	require.NoError(t, err)
	require.Len(t, responses, 3)
	for index, omega := range omegas {
		magnitude := 1 / math.Sqrt(1+omega*omega)
		re := real(responses[index].At(0, 0))
		im := imag(responses[index].At(0, 0))
		assert.InDelta(t, magnitude, math.Hypot(re, im), 1e-12)
	}
}

func TestImpulseResponse(t *testing.T) {
	// h(t) = e^{-t} for 1/(s+1).
	m := firstOrder()
	taps := []float64{0, 0.5, 1, 2}
	h, err := m.ImpulseResponse(taps)
	require.NoError(t, err)
	for index, tap := range taps {
		assert.InDelta(t, math.Exp(-tap), h[index].At(0, 0), 1e-12)
	}
}

func TestProject(t *testing.T) {
	a := mat.NewDense(3, 3, []float64{-1, 0, 0, 0, -2, 0, 0, 0, -3})
	b := mat.NewDense(3, 1, []float64{1, 1, 1})
	c := mat.NewDense(1, 3, []float64{1, 1, 1})
	m := New(a, b, c, nil, nil)

	// Project onto the first two coordinates.
	v := mat.NewDense(3, 2, []float64{1, 0, 0, 1, 0, 0})
	rom := m.Project(v, v)
	assert.Equal(t, 2, rom.Order())
	assert.InDelta(t, -1., rom.A.At(0, 0), 1e-12)
	assert.InDelta(t, -2., rom.A.At(1, 1), 1e-12)
	assert.InDelta(t, 1., rom.E.At(0, 0), 1e-12)
	assert.InDelta(t, 0., rom.E.At(0, 1), 1e-12)

	// The source is untouched.
	assert.InDelta(t, -3., m.A.At(2, 2), 1e-12)
}
