package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/prklVIP/pymor/heat"
	"github.com/prklVIP/pymor/lti"
	"github.com/prklVIP/pymor/ode"
	"github.com/prklVIP/pymor/reduction"
	"github.com/prklVIP/pymor/signal"
)

func firstOrder() *lti.Model {
	a := mat.NewDense(1, 1, []float64{-1})
	b := mat.NewDense(1, 1, []float64{1})
	c := mat.NewDense(1, 1, []float64{1})
	return lti.New(a, b, c, nil, nil)
}

func TestConfigSteps(t *testing.T) {
	cfg := Config{T0: 0, T1: 1, Ts: 0.1}
	assert.Equal(t, 11, cfg.Steps())
	stamps := cfg.TimeStamps()
	require.Len(t, stamps, 11)
	assert.InDelta(t, 0., stamps[0], 1e-12)
	assert.InDelta(t, 0.5, stamps[5], 1e-12)

	assert.Zero(t, Config{T0: 1, T1: 0, Ts: 0.1}.Steps())
	assert.Zero(t, Config{T0: 0, T1: 1, Ts: 0}.Steps())
}

func TestStepResponseFirstOrder(t *testing.T) {
	// 1/(s+1) driven by a unit step: y(t) = 1 - e^{-t}.
	m := firstOrder()
	inputs := []signal.VectorFunction{signal.Step(1, mat.NewVecDense(1, []float64{1}))}
	cfg := Config{T0: 0, T1: 5, Ts: 0.01}

	result, err := Run(m, inputs, cfg, ode.NewRK4())
	require.NoError(t, err)
	require.Len(t, result.Times, cfg.Steps())

	assert.InDelta(t, 0., result.Outputs.At(0, 0), 1e-12)
	for step, stamp := range result.Times {
		want := 1 - math.Exp(-stamp)
		assert.InDelta(t, want, result.Outputs.At(step, 0), 1e-6)
	}
}

func TestSineResponseSteadyState(t *testing.T) {
	// At omega = 1 the steady-state amplitude of 1/(s+1) is 1/sqrt(2).
	m := firstOrder()
	inputs := []signal.VectorFunction{signal.Sine(1, 1, 0, mat.NewVecDense(1, []float64{1}))}
	cfg := Config{T0: 0, T1: 30, Ts: 0.01}

	result, err := Run(m, inputs, cfg, ode.NewRK4())
	require.NoError(t, err)

	// Skip the transient, measure the peak of the last period.
	peak := 0.
	for step := len(result.Times) - 700; step < len(result.Times); step++ {
		value := math.Abs(result.Outputs.At(step, 0))
		if value > peak {
			peak = value
		}
	}
	assert.InDelta(t, 1/math.Sqrt2, peak, 1e-3)
}

func TestRunValidatesInput(t *testing.T) {
	m := firstOrder()
	wrong := []signal.VectorFunction{signal.Step(1, mat.NewVecDense(2, []float64{1, 1}))}
	_, err := Run(m, wrong, Config{T0: 0, T1: 1, Ts: 0.1}, ode.NewRK4())
	assert.Error(t, err)

	_, err = Run(m, nil, Config{T0: 0, T1: 0, Ts: 0.1}, ode.NewRK4())
	assert.Error(t, err)
}

func TestOutputErrorFullVersusReduced(t *testing.T) {
	fom, err := heat.New1D(heat.Options{N: 20, Diffusivity: 1})
	require.NoError(t, err)
	res, err := reduction.BalancedTruncation(fom, 4)
	require.NoError(t, err)

	inputs := []signal.VectorFunction{signal.Step(1, mat.NewVecDense(1, []float64{1}))}
	cfg := Config{T0: 0, T1: 0.5, Ts: 1e-4}

	full, err := Run(fom, inputs, cfg, ode.NewRK4())
	require.NoError(t, err)
	reduced, err := Run(res.ROM, inputs, cfg, ode.NewRK4())
	require.NoError(t, err)

	worst, err := OutputError(full, reduced)
	require.NoError(t, err)
	assert.Less(t, worst, 1e-2)
}

func TestOutputErrorShapeMismatch(t *testing.T) {
	a := &Result{Outputs: mat.NewDense(2, 1, nil)}
	b := &Result{Outputs: mat.NewDense(3, 1, nil)}
	_, err := OutputError(a, b)
	assert.Error(t, err)
}
