package signal

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Step returns a unit step input of the given amplitude along B.
func Step(amplitude float64, B *mat.VecDense) VectorFunction {
	return NewInput(func(t float64) float64 {
		if t < 0 {
			return 0
		}
		return amplitude
	}, B)
}

// Sine returns a sinusoidal input with the given frequency in rad/s and
// phase along B.
func Sine(amplitude, omega, phase float64, B *mat.VecDense) VectorFunction {
	return NewInput(func(t float64) float64 {
		return amplitude * math.Sin(omega*t+phase)
	}, B)
}

// DiracDelta is a narrow Gaussian approximation of the Dirac delta
// distribution, used to excite impulse responses numerically.
func DiracDelta(x float64) float64 {
	const a = 1e-9
	const a2 = a * a
	c := 1. / (a * math.Sqrt(math.Pi))
	return c * math.Exp(-x*x/a2)
}

// Pulse returns a rectangular pulse of the given width starting at t = 0.
func Pulse(amplitude, width float64, B *mat.VecDense) VectorFunction {
	return NewInput(func(t float64) float64 {
		if t < 0 || t > width {
			return 0
		}
		return amplitude
	}, B)
}
