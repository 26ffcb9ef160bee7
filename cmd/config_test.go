package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monaco-sim/monaco/sim"
)

func TestSpecSource_PresetWithOverrides(t *testing.T) {
	// GIVEN the mixed preset with a below-market table and 12 scenarios
	src := specSource{preset: sim.PresetMixed, market: sim.MarketBelow, scenarios: 12}

	spec, err := src.load()

	// THEN the overrides replace the preset values
	require.NoError(t, err)
	assert.Equal(t, 12, spec.NumScenarios)
	below, _ := sim.MarketScenario(sim.MarketBelow)
	assert.Equal(t, below, spec.GraduationRates)
	assert.Equal(t, 85.0, spec.PrimaryInvestments["Seed"])
}

func TestSpecSource_ConfigFileWinsOverPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fund.yaml")
	content := `
stages: [A, B]
graduation_rates:
  A: [0.5, 0.3, 0.2]
  B: [0, 0, 0]
stage_dilution:
  B: 0.2
stage_valuations:
  A: 10
  B: 20
lifespan_periods: 1
lifespan_years: 3
primary_investments:
  A: 10
initial_investment_sizes:
  A: 1
follow_on_reserve: 5
fund_size: 15
pro_rata_at_or_below: 20
num_scenarios: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := specSource{configPath: path, preset: sim.PresetMixed}.buildConfig()

	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Ladder.Len())
	assert.Equal(t, 2, cfg.NumScenarios)
	assert.Equal(t, 10, cfg.PlannedCompanies())
}

func TestSpecSource_Errors(t *testing.T) {
	_, err := specSource{preset: "nope"}.load()
	assert.True(t, errors.Is(err, sim.ErrInvalidConfig))

	_, err = specSource{preset: sim.PresetDefault, market: "sideways"}.load()
	assert.True(t, errors.Is(err, sim.ErrInvalidConfig))

	// a market table has the default ladder's stages, not the file's
	path := filepath.Join(t.TempDir(), "fund.toml")
	require.NoError(t, os.WriteFile(path, []byte(`stages = ["A", "B"]`), 0o644))
	_, err = specSource{configPath: path, market: sim.Market}.buildConfig()
	assert.True(t, errors.Is(err, sim.ErrInvalidConfig))
}
