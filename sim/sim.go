// Package sim produces output trajectories of LTI models on a fixed time
// grid, the time-domain counterpart of the Bode comparison: simulate the
// full and the reduced model with the same inputs and look at the output
// mismatch.
package sim

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/prklVIP/pymor/lti"
	"github.com/prklVIP/pymor/ode"
	"github.com/prklVIP/pymor/signal"
)

// Config holds the simulation window parameters.
type Config struct {
	// StartTime of the simulation
	T0 float64
	// EndTime of the simulation
	T1 float64
	// Sample period of the recorded outputs
	Ts float64
}

// Steps returns the number of recorded samples.
func (c Config) Steps() int {
	if c.Ts <= 0 || c.T1 <= c.T0 {
		return 0
	}
	return int((c.T1-c.T0)/c.Ts) + 1
}

// TimeStamps returns the recording instants.
func (c Config) TimeStamps() []float64 {
	steps := c.Steps()
	stamps := make([]float64, steps)
	for index := range stamps {
		stamps[index] = c.T0 + float64(index)*c.Ts
	}
	return stamps
}

// Result holds one simulated trajectory.
type Result struct {
	Times []float64
	// Outputs is (steps by outputs)
	Outputs *mat.Dense
}

// drivenModel couples an LTI model with input signals into a differentiable
// system, x'(t) = E^{-1}A x(t) + sum_k E^{-1}B_k u_k(t).
type drivenModel struct {
	a      *mat.Dense
	b      *mat.Dense
	inputs []signal.VectorFunction
}

func (d drivenModel) Derivative(t float64, state mat.Vector) mat.Vector {
	res := mat.NewVecDense(state.Len(), nil)
	res.MulVec(d.a, state)
	var bu mat.VecDense
	for _, input := range d.inputs {
		bu.MulVec(d.b, input.Value(t))
		res.AddVec(res, &bu)
	}
	return res
}

// Run simulates the model driven by the inputs over the window cfg with the
// given Runge-Kutta method and returns the recorded outputs. The input
// direction vectors live in input space, one per VectorFunction.
func Run(m *lti.Model, inputs []signal.VectorFunction, cfg Config, rk *ode.RungeKutta) (*Result, error) {
	steps := cfg.Steps()
	if steps < 2 {
		return nil, errors.New("sim: empty simulation window")
	}
	for _, input := range inputs {
		if input.B.Len() != m.Inputs() {
			return nil, errors.New("sim: input direction doesn't match model inputs")
		}
	}

	a, err := m.EA()
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	b := m.B
	if m.E != nil {
		var eb mat.Dense
		if err := eb.Solve(m.E, m.B); err != nil {
			return nil, errors.New("sim: descriptor matrix is singular")
		}
		b = &eb
	}
	system := drivenModel{a: a, b: b, inputs: inputs}

	stamps := cfg.TimeStamps()
	outputs := mat.NewDense(steps, m.Outputs(), nil)
	state := mat.NewVecDense(m.Order(), nil)
	var y, du mat.VecDense

	record := func(step int, t float64) {
		y.MulVec(m.C, state)
		for _, input := range inputs {
			du.MulVec(m.D, input.Value(t))
			y.AddVec(&y, &du)
		}
		for out := 0; out < m.Outputs(); out++ {
			outputs.Set(step, out, y.AtVec(out))
		}
	}

	record(0, stamps[0])
	for step := 1; step < steps; step++ {
		rk.Step(stamps[step-1], stamps[step], state, system)
		record(step, stamps[step])
	}
	return &Result{Times: stamps, Outputs: outputs}, nil
}

// OutputError returns the largest absolute output difference between two
// trajectories on the same grid.
func OutputError(full, reduced *Result) (float64, error) {
	fr, fc := full.Outputs.Dims()
	rr, rc := reduced.Outputs.Dims()
	if fr != rr || fc != rc {
		return 0, errors.New("sim: trajectory shapes don't match")
	}
	worst := 0.
	for row := 0; row < fr; row++ {
		for col := 0; col < fc; col++ {
			delta := full.Outputs.At(row, col) - reduced.Outputs.At(row, col)
			if delta < 0 {
				delta = -delta
			}
			if delta > worst {
				worst = delta
			}
		}
	}
	return worst, nil
}
