// Package ode implements explicit Runge-Kutta methods, described by their
// Butcher tableaus, for the time-domain simulation of dynamical systems.
package ode

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// DifferentiableSystem is any system exposing its state derivative
// x'(t) = f(t, x).
type DifferentiableSystem interface {
	Derivative(t float64, state mat.Vector) mat.Vector
}

// butcherTableau describes a Runge-Kutta method, see
// https://en.wikipedia.org/wiki/Runge–Kutta_methods. Two weight rows enable
// embedded error estimation.
type butcherTableau struct {
	stages           int
	weights          [][]float64
	nodes            []float64
	rungeKuttaMatrix [][]float64
}

// RungeKutta holds the Butcher tableau describing the method.
type RungeKutta struct {
	description butcherTableau
}

// Step advances state from time from to time to in a single step and
// returns the embedded local error estimate, or nil for methods without
// one.
func (rk RungeKutta) Step(from, to float64, state *mat.VecDense, system DifferentiableSystem) *mat.VecDense {
	order := state.Len()
	h := to - from

	// Precompute the derivative points according to the tableau.
	stages := make([]mat.Vector, rk.description.stages)
	for index := range stages {
		var probe mat.VecDense
		probe.CloneFromVec(state)
		for index2, a := range rk.description.rungeKuttaMatrix[index] {
			if a != 0 {
				probe.AddScaledVec(&probe, h*a, stages[index2])
			}
		}
		stages[index] = system.Derivative(from+h*rk.description.nodes[index], &probe)
	}

	// Combine the stages with the method weights; the second weight row,
	// when present, yields the embedded error estimate.
	var errEstimate *mat.VecDense
	if len(rk.description.weights) == 2 {
		errEstimate = mat.NewVecDense(order, nil)
	}
	for index, k := range stages {
		state.AddScaledVec(state, h*rk.description.weights[0][index], k)
		if errEstimate != nil {
			delta := rk.description.weights[1][index] - rk.description.weights[0][index]
			errEstimate.AddScaledVec(errEstimate, h*delta, k)
		}
	}
	return errEstimate
}

// Integrate advances state from time from to time to with adaptive step
// bisection: whenever the embedded local error estimate exceeds tol the
// interval is halved and retried. Methods without an embedded estimate take
// the interval in one step.
func (rk RungeKutta) Integrate(from, to, tol float64, state *mat.VecDense, system DifferentiableSystem) error {
	const maxIterations = 10000

	var work mat.VecDense
	tnow := from
	count := 0

	for tnow < to {
		tnext := to
		for {
			work.CloneFromVec(state)
			estimate := rk.Step(tnow, tnext, &work, system)
			if estimate == nil {
				break
			}
			localError := 0.
			for index := 0; index < estimate.Len(); index++ {
				localError += math.Abs(estimate.AtVec(index))
			}
			if localError < tol {
				break
			}
			tnext = tnow + (tnext-tnow)/2

			count++
			if count >= maxIterations {
				return errors.New("ode: adaptive Runge-Kutta did not converge")
			}
		}
		state.CloneFromVec(&work)
		tnow = tnext
	}
	return nil
}

// NewRK4 returns the classic fourth-order Runge-Kutta method.
func NewRK4() *RungeKutta {
	var tableau butcherTableau
	tableau.stages = 4
	tableau.nodes = []float64{0, 1. / 2., 1. / 2., 1}
	tableau.weights = [][]float64{{1. / 6., 1. / 3., 1. / 3., 1. / 6.}}
	tableau.rungeKuttaMatrix = [][]float64{
		nil,
		{1. / 2.},
		{0, 1. / 2.},
		{0, 0, 1.},
	}
	return &RungeKutta{tableau}
}

// NewEuler returns the explicit Euler method.
func NewEuler() *RungeKutta {
	var tableau butcherTableau
	tableau.stages = 1
	tableau.nodes = []float64{0}
	tableau.weights = [][]float64{{1}}
	tableau.rungeKuttaMatrix = [][]float64{nil}
	return &RungeKutta{tableau}
}

// NewFehlberg45 returns the Runge-Kutta-Fehlberg 4(5) pair with embedded
// error estimation, see
// https://en.wikipedia.org/wiki/Runge%E2%80%93Kutta%E2%80%93Fehlberg_method.
func NewFehlberg45() *RungeKutta {
	var tableau butcherTableau
	tableau.stages = 6
	tableau.nodes = []float64{0, 1. / 4., 3. / 8., 12. / 13., 1., 1. / 2.}
	tableau.weights = [][]float64{
		{16. / 135., 0, 6656. / 12825., 28561. / 56430., -9. / 50., 2. / 55.},
		{25. / 216., 0, 1408. / 2565., 2197. / 4104., -1. / 5., 0},
	}
	tableau.rungeKuttaMatrix = [][]float64{
		nil,
		{1. / 4.},
		{3. / 32., 9. / 32.},
		{1932. / 2197., -7200. / 2197., 7296. / 2197.},
		{439. / 216., -8., 3680. / 513., -845. / 4104.},
		{-8. / 27., 2, -3544. / 2565., 1859. / 4104., -11. / 40.},
	}
	return &RungeKutta{tableau}
}
