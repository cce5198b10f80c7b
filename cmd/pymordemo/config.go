package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config gathers everything a demo run needs: discretization, reduction and
// reporting parameters.
type Config struct {
	GridNodes    int
	Diffusivity  float64
	BothEnds     bool
	ReducedOrder int
	FreqMin      float64
	FreqMax      float64
	FreqPoints   int
	Gamma        float64
	MaxIter      int
	Tol          float64
	PlotDir      string
}

// DefaultConfig returns the demo defaults: a 100-node rod, order-10
// reduction and four decades of frequency response around the slowest heat
// mode.
func DefaultConfig() Config {
	return Config{
		GridNodes:    100,
		Diffusivity:  1,
		ReducedOrder: 10,
		FreqMin:      1e-1,
		FreqMax:      1e4,
		FreqPoints:   200,
		MaxIter:      100,
		Tol:          1e-4,
		PlotDir:      ".",
	}
}

type fileConfig struct {
	GridNodes    int     `toml:"grid_nodes"`
	Diffusivity  float64 `toml:"diffusivity"`
	BothEnds     bool    `toml:"both_ends"`
	ReducedOrder int     `toml:"reduced_order"`
	FreqMin      float64 `toml:"freq_min"`
	FreqMax      float64 `toml:"freq_max"`
	FreqPoints   int     `toml:"freq_points"`
	Gamma        float64 `toml:"gamma"`
	MaxIter      int     `toml:"max_iter"`
	Tol          float64 `toml:"tol"`
	PlotDir      string  `toml:"plot_dir"`
}

// loadConfig overlays the TOML file at path onto the defaults. Only keys
// present in the file override.
func loadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load demo config: %w", err)
	}

	if meta.IsDefined("grid_nodes") {
		cfg.GridNodes = raw.GridNodes
	}
	if meta.IsDefined("diffusivity") {
		cfg.Diffusivity = raw.Diffusivity
	}
	if meta.IsDefined("both_ends") {
		cfg.BothEnds = raw.BothEnds
	}
	if meta.IsDefined("reduced_order") {
		cfg.ReducedOrder = raw.ReducedOrder
	}
	if meta.IsDefined("freq_min") {
		cfg.FreqMin = raw.FreqMin
	}
	if meta.IsDefined("freq_max") {
		cfg.FreqMax = raw.FreqMax
	}
	if meta.IsDefined("freq_points") {
		cfg.FreqPoints = raw.FreqPoints
	}
	if meta.IsDefined("gamma") {
		cfg.Gamma = raw.Gamma
	}
	if meta.IsDefined("max_iter") {
		cfg.MaxIter = raw.MaxIter
	}
	if meta.IsDefined("tol") {
		cfg.Tol = raw.Tol
	}
	if meta.IsDefined("plot_dir") {
		cfg.PlotDir = strings.TrimSpace(raw.PlotDir)
	}

	return cfg, nil
}
