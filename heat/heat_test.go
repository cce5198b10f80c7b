package heat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew1DStructure(t *testing.T) {
	m, err := New1D(Options{N: 5, Diffusivity: 1})
	require.NoError(t, err)
	assert.Equal(t, 5, m.Order())
	assert.Equal(t, 1, m.Inputs())
	assert.Equal(t, 1, m.Outputs())

	// h = 1/6, scale = 36: tridiag(36, -72, 36).
	assert.InDelta(t, -72., m.A.At(0, 0), 1e-12)
	assert.InDelta(t, 36., m.A.At(0, 1), 1e-12)
	assert.InDelta(t, 36., m.A.At(1, 0), 1e-12)
	assert.InDelta(t, 0., m.A.At(0, 2), 1e-12)
	assert.InDelta(t, 36., m.B.At(0, 0), 1e-12)
	assert.InDelta(t, 0., m.B.At(4, 0), 1e-12)
}

func TestNew1DIsStable(t *testing.T) {
	m, err := New1D(DefaultOptions())
	require.NoError(t, err)
	stable, err := m.IsStable()
	require.NoError(t, err)
	assert.True(t, stable)
}

func TestNew1DBothEnds(t *testing.T) {
	m, err := New1D(Options{N: 4, Diffusivity: 2, BothEnds: true})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Inputs())
	// scale = 2 * 25 = 50 with h = 1/5.
	assert.InDelta(t, 50., m.B.At(0, 0), 1e-12)
	assert.InDelta(t, 50., m.B.At(3, 1), 1e-12)
	assert.InDelta(t, 0., m.B.At(0, 1), 1e-12)
}

func TestNew1DNeumannRight(t *testing.T) {
	// Insulated right end: the ghost-node elimination leaves -scale on
	// the corner diagonal instead of -2 scale.
	m, err := New1D(Options{N: 5, Diffusivity: 1, Boundary: NeumannRight})
	require.NoError(t, err)
	assert.InDelta(t, -36., m.A.At(4, 4), 1e-12)
	assert.InDelta(t, -72., m.A.At(0, 0), 1e-12)
	assert.InDelta(t, 36., m.A.At(4, 3), 1e-12)

	stable, err := m.IsStable()
	require.NoError(t, err)
	assert.True(t, stable)
}

func TestNew1DNeumannSteadyStateGain(t *testing.T) {
	// With the right end insulated and the left boundary held at 1 the
	// rod equilibrates to a uniform temperature of 1, so the averaged
	// output has DC gain exactly one.
	m, err := New1D(Options{N: 20, Diffusivity: 1, Boundary: NeumannRight})
	require.NoError(t, err)
	g, err := m.Eval(0)
	require.NoError(t, err)
	assert.InDelta(t, 1., real(g.At(0, 0)), 1e-9)
}

func TestNew1DNeumannFluxInput(t *testing.T) {
	// BothEnds with a Neumann right end controls the boundary flux, which
	// enters scaled by kappa/h rather than kappa/h^2.
	m, err := New1D(Options{N: 4, Diffusivity: 2, BothEnds: true, Boundary: NeumannRight})
	require.NoError(t, err)
	require.Equal(t, 2, m.Inputs())
	// h = 1/5: flux gain 2*5 = 10, temperature gain stays 2*25 = 50.
	assert.InDelta(t, 50., m.B.At(0, 0), 1e-12)
	assert.InDelta(t, 10., m.B.At(3, 1), 1e-12)
}

func TestNew1DRejectsBadBoundary(t *testing.T) {
	_, err := New1D(Options{N: 4, Diffusivity: 1, Boundary: BoundaryKind(7)})
	assert.Error(t, err)
}

func TestNew1DOutputKinds(t *testing.T) {
	mean, err := New1D(Options{N: 4, Diffusivity: 1, Output: MeanRightHalf})
	require.NoError(t, err)
	// Right half of 4 nodes: the last two, weight 1/2 each.
	assert.InDelta(t, 0., mean.C.At(0, 0), 1e-12)
	assert.InDelta(t, 0.5, mean.C.At(0, 2), 1e-12)
	assert.InDelta(t, 0.5, mean.C.At(0, 3), 1e-12)

	point, err := New1D(Options{N: 6, Diffusivity: 1, Output: PointTwoThirds})
	require.NoError(t, err)
	assert.InDelta(t, 1., point.C.At(0, 4), 1e-12)

	_, err = New1D(Options{N: 4, Diffusivity: 1, Output: OutputKind(99)})
	assert.Error(t, err)
}

func TestNew1DSteadyStateGain(t *testing.T) {
	// With the left boundary held at 1 the steady profile is linear,
	// T(z) = 1 - z, so the right-half average over 20 nodes is
	// (1/10) sum_{i=11..20} (1 - i/21) = 11/42.
	m, err := New1D(Options{N: 20, Diffusivity: 1})
	require.NoError(t, err)
	g, err := m.Eval(0)
	require.NoError(t, err)
	assert.InDelta(t, 11./42., real(g.At(0, 0)), 1e-9)
}

func TestNew1DRejectsBadOptions(t *testing.T) {
	_, err := New1D(Options{N: 1, Diffusivity: 1})
	assert.Error(t, err)
	_, err = New1D(Options{N: 10, Diffusivity: 0})
	assert.Error(t, err)
}

func TestIntegratorChain(t *testing.T) {
	m, err := IntegratorChain(3, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Order())

	// G(s) = gain^n / (s + decay)^n, so G(0) = 2^3 = 8.
	g, err := m.Eval(0)
	require.NoError(t, err)
	assert.InDelta(t, 8., real(g.At(0, 0)), 1e-9)

	stable, err := m.IsStable()
	require.NoError(t, err)
	assert.True(t, stable)

	_, err = IntegratorChain(0, 1, 1)
	assert.Error(t, err)
	_, err = IntegratorChain(3, 1, 0)
	assert.Error(t, err)
}
