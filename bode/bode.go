// Package bode computes frequency-response data of LTI models and renders
// the magnitude comparisons the demos end with.
package bode

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/prklVIP/pymor/lti"
	"github.com/prklVIP/pymor/sysnorm"
)

// Data holds the frequency response of one model on a log-spaced grid:
// magnitude in dB and phase in degrees per output/input channel.
type Data struct {
	Omegas []float64
	// Mag[output][input][tap] in dB
	Mag [][][]float64
	// Phase[output][input][tap] in degrees
	Phase [][][]float64
}

// Compute evaluates the frequency response of m on points log-spaced
// frequencies between wmin and wmax.
func Compute(m *lti.Model, wmin, wmax float64, points int) (*Data, error) {
	if wmin <= 0 || wmax <= wmin || points < 2 {
		return nil, errors.New("bode: invalid frequency range")
	}
	omegas := sysnorm.LogSpace(wmin, wmax, points)
	responses, err := m.FrequencyResponse(omegas)
	if err != nil {
		return nil, err
	}
	return fromResponses(omegas, responses), nil
}

// ErrorData evaluates |G(iw) - Gr(iw)| channel-wise on a shared grid. The
// two models must have matching input and output counts.
func ErrorData(fom, rom *lti.Model, wmin, wmax float64, points int) (*Data, error) {
	if fom.Inputs() != rom.Inputs() || fom.Outputs() != rom.Outputs() {
		panic(errors.New("bode: model input/output dimensions don't match"))
	}
	if wmin <= 0 || wmax <= wmin || points < 2 {
		return nil, errors.New("bode: invalid frequency range")
	}
	omegas := sysnorm.LogSpace(wmin, wmax, points)
	full, err := fom.FrequencyResponse(omegas)
	if err != nil {
		return nil, err
	}
	reduced, err := rom.FrequencyResponse(omegas)
	if err != nil {
		return nil, err
	}
	diffs := make([]*mat.CDense, len(omegas))
	for index := range diffs {
		p, in := full[index].Dims()
		d := mat.NewCDense(p, in, nil)
		for row := 0; row < p; row++ {
			for col := 0; col < in; col++ {
				d.Set(row, col, full[index].At(row, col)-reduced[index].At(row, col))
			}
		}
		diffs[index] = d
	}
	return fromResponses(omegas, diffs), nil
}

func fromResponses(omegas []float64, responses []*mat.CDense) *Data {
	outputs, inputs := responses[0].Dims()
	data := Data{Omegas: omegas}
	data.Mag = make([][][]float64, outputs)
	data.Phase = make([][][]float64, outputs)
	for out := 0; out < outputs; out++ {
		data.Mag[out] = make([][]float64, inputs)
		data.Phase[out] = make([][]float64, inputs)
		for inp := 0; inp < inputs; inp++ {
			data.Mag[out][inp] = make([]float64, len(omegas))
			data.Phase[out][inp] = make([]float64, len(omegas))
			for tap, response := range responses {
				value := response.At(out, inp)
				magnitude := cmplx.Abs(value)
				if magnitude == 0 {
					// Floor at -400 dB so plots stay finite.
					data.Mag[out][inp][tap] = -400
				} else {
					data.Mag[out][inp][tap] = 20 * math.Log10(magnitude)
				}
				data.Phase[out][inp][tap] = cmplx.Phase(value) * 180 / math.Pi
			}
		}
	}
	return &data
}
