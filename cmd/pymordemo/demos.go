package main

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/prklVIP/pymor/bode"
	"github.com/prklVIP/pymor/heat"
	"github.com/prklVIP/pymor/lti"
	"github.com/prklVIP/pymor/ode"
	"github.com/prklVIP/pymor/reduction"
	"github.com/prklVIP/pymor/signal"
	"github.com/prklVIP/pymor/sim"
	"github.com/prklVIP/pymor/sysnorm"
)

// demoFunc builds a full-order model, reduces it and reports the error.
type demoFunc func(cfg Config, log zerolog.Logger) error

var demos = map[string]demoFunc{
	"heat-bt":     heatDemo(reduceBT),
	"heat-lqgbt":  heatDemo(reduceLQGBT),
	"heat-brbt":   heatDemo(reduceBRBT),
	"heat-irka":   heatDemo(reduceIRKA),
	"heat-osirka": heatDemo(reduceOSIRKA),
	"heat-tsia":   heatDemo(reduceTSIA),
	"heat-tfirka": heatDemo(reduceTFIRKA),
	"chain-bt":    chainBT,
}

// demoNames returns the registry keys in stable order.
func demoNames() []string {
	names := make([]string, 0, len(demos))
	for name := range demos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type reducer func(fom *lti.Model, cfg Config) (*reduction.Result, string, error)

func reduceBT(fom *lti.Model, cfg Config) (*reduction.Result, string, error) {
	res, err := reduction.BalancedTruncation(fom, cfg.ReducedOrder)
	return res, "balanced truncation", err
}

func reduceLQGBT(fom *lti.Model, cfg Config) (*reduction.Result, string, error) {
	res, err := reduction.LQGBalancedTruncation(fom, cfg.ReducedOrder)
	return res, "LQG balanced truncation", err
}

func reduceBRBT(fom *lti.Model, cfg Config) (*reduction.Result, string, error) {
	res, err := reduction.BoundedRealBalancedTruncation(fom, cfg.ReducedOrder, reduction.BRBTOptions{Gamma: cfg.Gamma})
	return res, "bounded-real balanced truncation", err
}

func reduceIRKA(fom *lti.Model, cfg Config) (*reduction.Result, string, error) {
	res, err := reduction.IRKA(fom, cfg.ReducedOrder, reduction.IRKAOptions{MaxIter: cfg.MaxIter, Tol: cfg.Tol})
	return res, "IRKA", err
}

func reduceOSIRKA(fom *lti.Model, cfg Config) (*reduction.Result, string, error) {
	res, err := reduction.OneSidedIRKA(fom, cfg.ReducedOrder, reduction.IRKAOptions{MaxIter: cfg.MaxIter, Tol: cfg.Tol})
	return res, "one-sided IRKA", err
}

func reduceTSIA(fom *lti.Model, cfg Config) (*reduction.Result, string, error) {
	res, err := reduction.TSIA(fom, cfg.ReducedOrder, reduction.IRKAOptions{MaxIter: cfg.MaxIter, Tol: cfg.Tol})
	return res, "TSIA", err
}

func reduceTFIRKA(fom *lti.Model, cfg Config) (*reduction.Result, string, error) {
	res, err := reduction.TFIRKA(reduction.ModelTF(fom), cfg.ReducedOrder, reduction.IRKAOptions{MaxIter: cfg.MaxIter, Tol: cfg.Tol})
	return res, "TF-IRKA", err
}

// heatDemo runs one reduction method on the heat equation model.
func heatDemo(reduce reducer) demoFunc {
	return func(cfg Config, log zerolog.Logger) error {
		fom, err := heat.New1D(heat.Options{
			N:           cfg.GridNodes,
			Diffusivity: cfg.Diffusivity,
			BothEnds:    cfg.BothEnds,
		})
		if err != nil {
			return err
		}
		log.Info().
			Int("order", fom.Order()).
			Int("inputs", fom.Inputs()).
			Float64("diffusivity", cfg.Diffusivity).
			Msg("built heat equation model")
		return runReduction(fom, reduce, cfg, log)
	}
}

// chainBT reduces the damped integrator chain with balanced truncation.
func chainBT(cfg Config, log zerolog.Logger) error {
	fom, err := heat.IntegratorChain(cfg.GridNodes, 2, 1)
	if err != nil {
		return err
	}
	log.Info().Int("order", fom.Order()).Msg("built integrator chain model")
	return runReduction(fom, reduceBT, cfg, log)
}

// runReduction is the shared demo tail: reduce, score the error system and
// write the comparison figures.
func runReduction(fom *lti.Model, reduce reducer, cfg Config, log zerolog.Logger) error {
	result, method, err := reduce(fom, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	rom := result.ROM
	event := log.Info().
		Int("reduced_order", rom.Order()).
		Bool("converged", result.Converged)
	if result.Iterations > 0 {
		event = event.Int("iterations", result.Iterations)
	}
	if result.ErrorBound > 0 {
		event = event.Float64("error_bound", result.ErrorBound)
	}
	event.Msg(method)

	errorSystem := lti.Difference(fom, rom)
	if h2, err := sysnorm.H2(errorSystem); err == nil {
		log.Info().Float64("h2_error", h2).Msg("H2 error norm")
	} else {
		log.Warn().Err(err).Msg("H2 error norm unavailable")
	}
	if hinf, omega, err := sysnorm.HInf(errorSystem); err == nil {
		log.Info().Float64("hinf_error", hinf).Float64("peak_omega", omega).Msg("H-infinity error norm")
	} else {
		log.Warn().Err(err).Msg("H-infinity error norm unavailable")
	}
	if hankel, err := sysnorm.Hankel(errorSystem); err == nil {
		log.Info().Float64("hankel_error", hankel).Msg("Hankel error norm")
	} else {
		log.Warn().Err(err).Msg("Hankel error norm unavailable")
	}

	fomData, err := bode.Compute(fom, cfg.FreqMin, cfg.FreqMax, cfg.FreqPoints)
	if err != nil {
		return err
	}
	romData, err := bode.Compute(rom, cfg.FreqMin, cfg.FreqMax, cfg.FreqPoints)
	if err != nil {
		return err
	}
	errData, err := bode.ErrorData(fom, rom, cfg.FreqMin, cfg.FreqMax, cfg.FreqPoints)
	if err != nil {
		return err
	}
	comparePath := filepath.Join(cfg.PlotDir, "bode_comparison.png")
	if err := bode.ComparePlot(fomData, romData, errData, method, comparePath); err != nil {
		return err
	}
	log.Info().Str("path", comparePath).Msg("wrote Bode comparison")

	if len(result.HankelValues) > 0 {
		decayPath := filepath.Join(cfg.PlotDir, "hsv_decay.png")
		if err := bode.DecayPlot(result.HankelValues, "Hankel singular values", decayPath); err != nil {
			return err
		}
		log.Info().Str("path", decayPath).Msg("wrote singular value decay")
	}

	compareStepResponse(fom, rom, log)
	return nil
}

// compareStepResponse simulates the full and the reduced model under the
// same unit step input and reports the worst output mismatch, the
// time-domain counterpart of the Bode comparison.
func compareStepResponse(fom, rom *lti.Model, log zerolog.Logger) {
	window, err := simWindow(fom)
	if err != nil {
		log.Warn().Err(err).Msg("time-domain comparison unavailable")
		return
	}
	direction := mat.NewVecDense(fom.Inputs(), nil)
	direction.SetVec(0, 1)
	inputs := []signal.VectorFunction{signal.Step(1, direction)}
	rk := ode.NewRK4()

	full, err := sim.Run(fom, inputs, window, rk)
	if err != nil {
		log.Warn().Err(err).Msg("time-domain comparison unavailable")
		return
	}
	reduced, err := sim.Run(rom, inputs, window, rk)
	if err != nil {
		log.Warn().Err(err).Msg("time-domain comparison unavailable")
		return
	}
	worst, err := sim.OutputError(full, reduced)
	if err != nil {
		log.Warn().Err(err).Msg("time-domain comparison unavailable")
		return
	}
	log.Info().
		Float64("step_response_error", worst).
		Float64("horizon", window.T1).
		Float64("step_size", window.Ts).
		Msg("time-domain comparison")
}

// simWindow derives the fixed-step simulation window from the pole spread:
// the step size keeps the fastest mode inside the explicit RK4 stability
// region, the horizon covers the slowest mode, capped so the demos stay
// interactive.
func simWindow(m *lti.Model) (sim.Config, error) {
	poles, err := m.Poles()
	if err != nil {
		return sim.Config{}, err
	}
	fastest, slowest := 0., math.MaxFloat64
	for _, pole := range poles {
		magnitude := cmplx.Abs(pole)
		if magnitude == 0 {
			continue
		}
		fastest = math.Max(fastest, magnitude)
		slowest = math.Min(slowest, magnitude)
	}
	if fastest == 0 {
		return sim.Config{}, errors.New("model has no finite poles to scale the window")
	}
	ts := 1 / (2 * fastest)
	t1 := 5 / slowest
	const maxSteps = 20000
	if t1 > maxSteps*ts {
		t1 = maxSteps * ts
	}
	return sim.Config{T0: 0, T1: t1, Ts: ts}, nil
}
