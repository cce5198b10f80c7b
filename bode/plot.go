package bode

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Plot writes the magnitude plot of the (0, 0) channel to path. The format
// follows the file extension (png, eps, pdf, svg).
func Plot(data *Data, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "frequency [rad/s]"
	p.Y.Label.Text = "magnitude [dB]"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}

	if err := plotutil.AddLines(p, "|G|", xys(data.Omegas, data.Mag[0][0])); err != nil {
		return fmt.Errorf("bode: plot: %w", err)
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

// ComparePlot overlays the (0, 0) channel magnitudes of the full and
// reduced models together with their pointwise error and writes the figure
// to path.
func ComparePlot(fom, rom, errData *Data, title, path string) error {
	if len(fom.Omegas) != len(rom.Omegas) || len(fom.Omegas) != len(errData.Omegas) {
		return errors.New("bode: comparison data grids don't match")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "frequency [rad/s]"
	p.Y.Label.Text = "magnitude [dB]"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}

	err := plotutil.AddLines(p,
		"full order", xys(fom.Omegas, fom.Mag[0][0]),
		"reduced", xys(rom.Omegas, rom.Mag[0][0]),
		"error", xys(errData.Omegas, errData.Mag[0][0]),
	)
	if err != nil {
		return fmt.Errorf("bode: comparison plot: %w", err)
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

// DecayPlot draws the Hankel singular value decay on a log magnitude axis,
// the picture that motivates the choice of reduced order.
func DecayPlot(values []float64, title, path string) error {
	if len(values) == 0 {
		return errors.New("bode: no singular values to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "index"
	p.Y.Label.Text = "sigma"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	pts := make(plotter.XYs, 0, len(values))
	for index, value := range values {
		if value <= 0 {
			break
		}
		pts = append(pts, plotter.XY{X: float64(index + 1), Y: value})
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("bode: decay plot: %w", err)
	}
	p.Add(scatter)
	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

func xys(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for index := range pts {
		pts[index].X = x[index]
		pts[index].Y = y[index]
	}
	return pts
}
