// Package signal provides the input signals driving time-domain simulations
// of LTI models: scalar waveforms paired with an input direction vector.
package signal

import (
	"gonum.org/v1/gonum/mat"
)

// Signal is anything producing a vector value over time.
type Signal interface {
	Value(t float64) mat.Vector
}

// VectorFunction decomposes a vector-valued input Bu(t) into a scalar
// waveform U(t) and a fixed direction B. In the state equation
//
// x'(t) = A x(t) + B u(t)
//
// each input channel contributes one VectorFunction.
type VectorFunction struct {
	U func(float64) float64
	B *mat.VecDense
}

// Value returns B U(t).
func (vf VectorFunction) Value(t float64) mat.Vector {
	var res mat.VecDense
	res.CloneFromVec(vf.B)
	res.ScaleVec(vf.U(t), &res)
	return &res
}

// NewInput returns a VectorFunction with waveform u and direction B.
func NewInput(u func(float64) float64, B *mat.VecDense) VectorFunction {
	return VectorFunction{u, B}
}
