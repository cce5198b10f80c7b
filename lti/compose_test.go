package lti

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// lag returns the first-order system G(s) = gain * pole / (s + pole).
func lag(pole, gain float64) *Model {
	a := mat.NewDense(1, 1, []float64{-pole})
	b := mat.NewDense(1, 1, []float64{pole * gain})
	c := mat.NewDense(1, 1, []float64{1})
	return New(a, b, c, nil, nil)
}

func evalAt(t *testing.T, m *Model, s complex128) complex128 {
	t.Helper()
	g, err := m.Eval(s)
	require.NoError(t, err)
	return g.At(0, 0)
}

func TestSeriesTransfer(t *testing.T) {
	g1 := lag(1, 2)
	g2 := lag(3, 5)
	series := Series(g1, g2)
	assert.Equal(t, 2, series.Order())

	s := complex(0, 0.7)
	want := evalAt(t, g1, s) * evalAt(t, g2, s)
	got := evalAt(t, series, s)
	assert.InDelta(t, real(want), real(got), 1e-12)
	assert.InDelta(t, imag(want), imag(got), 1e-12)
}

func TestParallelTransfer(t *testing.T) {
	g1 := lag(1, 2)
	g2 := lag(3, 5)
	parallel := Parallel(g1, g2)

	s := complex(0, 1.3)
	want := evalAt(t, g1, s) + evalAt(t, g2, s)
	got := evalAt(t, parallel, s)
	assert.InDelta(t, real(want), real(got), 1e-12)
	assert.InDelta(t, imag(want), imag(got), 1e-12)
}

func TestDifferenceTransfer(t *testing.T) {
	g1 := lag(1, 2)
	g2 := lag(3, 5)
	difference := Difference(g1, g2)

	s := complex(0, 0.4)
	want := evalAt(t, g1, s) - evalAt(t, g2, s)
	got := evalAt(t, difference, s)
	assert.InDelta(t, real(want), real(got), 1e-12)
	assert.InDelta(t, imag(want), imag(got), 1e-12)
}

func TestFeedbackTransfer(t *testing.T) {
	g := lag(1, 4)
	k := lag(2, 0.5)
	closed, err := Feedback(g, k)
	require.NoError(t, err)

	// Closed loop: G/(1 + G K).
	s := complex(0, 0.9)
	gv := evalAt(t, g, s)
	kv := evalAt(t, k, s)
	want := gv / (1 + gv*kv)
	got := evalAt(t, closed, s)
	assert.InDelta(t, 0., cmplx.Abs(want-got), 1e-12)
}

func TestSeriesDimensionMismatchPanics(t *testing.T) {
	g1 := lag(1, 2)
	twoOut := New(
		mat.NewDense(1, 1, []float64{-1}),
		mat.NewDense(1, 1, []float64{1}),
		mat.NewDense(2, 1, []float64{1, 1}),
		nil, nil,
	)
	assert.Panics(t, func() { Series(twoOut, g1) })
}
