package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
grid_nodes = 50
reduced_order = 8
plot_dir = " out "
`)
	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.GridNodes)
	assert.Equal(t, 8, cfg.ReducedOrder)
	assert.Equal(t, "out", cfg.PlotDir)

	// Everything not in the file keeps its default.
	defaults := DefaultConfig()
	assert.Equal(t, defaults.Diffusivity, cfg.Diffusivity)
	assert.Equal(t, defaults.FreqMin, cfg.FreqMin)
	assert.Equal(t, defaults.FreqPoints, cfg.FreqPoints)
	assert.Equal(t, defaults.MaxIter, cfg.MaxIter)
}

func TestLoadConfigExplicitZeroWins(t *testing.T) {
	// A key present in the file overrides even with a zero value.
	path := writeConfig(t, `gamma = 0.0
both_ends = true
`)
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.Gamma)
	assert.True(t, cfg.BothEnds)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadConfigBadTOML(t *testing.T) {
	path := writeConfig(t, `grid_nodes = "many"`)
	_, err := loadConfig(path)
	assert.Error(t, err)
}

func TestDemoRegistry(t *testing.T) {
	names := demoNames()
	require.NotEmpty(t, names)
	assert.Contains(t, names, "heat-bt")
	assert.Contains(t, names, "chain-bt")
	// Stable ordering.
	for index := 1; index < len(names); index++ {
		assert.Less(t, names[index-1], names[index])
	}
	for _, name := range names {
		assert.NotNil(t, demos[name])
	}
}
