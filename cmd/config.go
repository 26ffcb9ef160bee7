package cmd

import (
	"fmt"

	"github.com/monaco-sim/monaco/sim"
)

// specSource selects where a run's ConfigSpec comes from and which
// command-line overrides apply to it.
type specSource struct {
	configPath string // YAML or TOML file; empty means preset
	preset     string
	market     string // replaces graduation rates when set
	scenarios  int    // replaces num_scenarios when positive
}

// load resolves the spec. It does not validate it; NewConfig does.
func (s specSource) load() (sim.ConfigSpec, error) {
	var (
		spec sim.ConfigSpec
		err  error
	)
	if s.configPath != "" {
		spec, err = sim.LoadConfigSpec(s.configPath)
	} else {
		spec, err = sim.PresetSpec(s.preset)
	}
	if err != nil {
		return sim.ConfigSpec{}, err
	}
	if s.market != "" {
		rates, err := sim.MarketScenario(s.market)
		if err != nil {
			return sim.ConfigSpec{}, err
		}
		spec.GraduationRates = rates
	}
	if s.scenarios > 0 {
		spec.NumScenarios = s.scenarios
	}
	return spec, nil
}

// buildConfig loads and validates the spec.
func (s specSource) buildConfig() (*sim.Config, error) {
	spec, err := s.load()
	if err != nil {
		return nil, err
	}
	cfg, err := sim.NewConfig(spec)
	if err != nil {
		return nil, fmt.Errorf("building configuration: %w", err)
	}
	return cfg, nil
}
