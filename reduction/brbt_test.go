package reduction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/prklVIP/pymor/lti"
	"github.com/prklVIP/pymor/sysnorm"
)

func TestBoundedRealBalancedTruncationHeat(t *testing.T) {
	fom := heatModel(t, 25)
	res, err := BoundedRealBalancedTruncation(fom, 5, BRBTOptions{})
	require.NoError(t, err)

	rom := res.ROM
	assert.Equal(t, 5, rom.Order())
	assert.Greater(t, res.ErrorBound, 0.)

	stable, err := rom.IsStable()
	require.NoError(t, err)
	assert.True(t, stable)

	assert.LessOrEqual(t, sampledError(t, fom, rom), res.ErrorBound)
}

func TestBoundedRealBalancedTruncationExplicitGamma(t *testing.T) {
	fom := heatModel(t, 20)
	norm, _, err := sysnorm.HInf(fom)
	require.NoError(t, err)

	res, err := BoundedRealBalancedTruncation(fom, 4, BRBTOptions{Gamma: 2 * norm})
	require.NoError(t, err)
	assert.Equal(t, 4, res.ROM.Order())

	// The reduced model stays below the prescribed level.
	romNorm, _, err := sysnorm.HInf(res.ROM)
	require.NoError(t, err)
	assert.Less(t, romNorm, 2*norm)
}

func TestBoundedRealBalancedTruncationRejectsFeedthrough(t *testing.T) {
	a := mat.NewDense(1, 1, []float64{-1})
	b := mat.NewDense(1, 1, []float64{1})
	c := mat.NewDense(1, 1, []float64{1})
	d := mat.NewDense(1, 1, []float64{1})
	_, err := BoundedRealBalancedTruncation(lti.New(a, b, c, d, nil), 1, BRBTOptions{})
	assert.Error(t, err)
}

func TestBoundedRealBalancedTruncationRejectsUnstable(t *testing.T) {
	a := mat.NewDense(1, 1, []float64{1})
	b := mat.NewDense(1, 1, []float64{1})
	c := mat.NewDense(1, 1, []float64{1})
	_, err := BoundedRealBalancedTruncation(lti.New(a, b, c, nil, nil), 1, BRBTOptions{})
	assert.Error(t, err)
}
