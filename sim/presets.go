package sim

import (
	"fmt"
	"sort"
)

// Built-in market assumptions. Valuations are in millions; graduation rates
// are [promote, fail, acquire] per stage, the terminal stage all zeros.

// DefaultLifespanPeriods and DefaultLifespanYears describe a 13-year fund
// stepping through eight financing periods.
const (
	DefaultLifespanPeriods = 8
	DefaultLifespanYears   = 13
)

// DefaultStages returns the standard Pre-seed…Series G ladder.
func DefaultStages() []string {
	return []string{"Pre-seed", "Seed", "Series A", "Series B", "Series C", "Series D", "Series E", "Series F", "Series G"}
}

// DefaultStageDilution returns the dilution applied on entering each stage.
func DefaultStageDilution() map[string]float64 {
	return map[string]float64{
		"Seed":     0.20,
		"Series A": 0.22,
		"Series B": 0.20,
		"Series C": 0.15,
		"Series D": 0.10,
		"Series E": 0.08,
		"Series F": 0.08,
		"Series G": 0.08,
	}
}

// DefaultStageValuations returns the standard valuation per stage.
func DefaultStageValuations() map[string]float64 {
	return map[string]float64{
		"Pre-seed": 15,
		"Seed":     30,
		"Series A": 70,
		"Series B": 200,
		"Series C": 500,
		"Series D": 750,
		"Series E": 1500,
		"Series F": 5000,
		"Series G": 10000,
	}
}

// OutsizedSeriesGValuations is DefaultStageValuations with a $25B Series G.
func OutsizedSeriesGValuations() map[string]float64 {
	v := DefaultStageValuations()
	v["Series G"] = 25000
	return v
}

// Market scenario names accepted by MarketScenario.
const (
	MarketBelow = "below"
	Market      = "market"
	MarketAbove = "above"
)

var marketScenarios = map[string]map[string][]float64{
	// modest performance relative to the 2010s
	Market: {
		"Pre-seed": {0.50, 0.35, 0.15},
		"Seed":     {0.50, 0.35, 0.15},
		"Series A": {0.50, 0.30, 0.20},
		"Series B": {0.50, 0.25, 0.25},
		"Series C": {0.50, 0.25, 0.25},
		"Series D": {0.50, 0.25, 0.25},
		"Series E": {0.40, 0.30, 0.30},
		"Series F": {0.30, 0.30, 0.30},
		"Series G": {0, 0, 0},
	},
	MarketAbove: {
		"Pre-seed": {0.60, 0.30, 0.10},
		"Seed":     {0.60, 0.30, 0.10},
		"Series A": {0.60, 0.25, 0.15},
		"Series B": {0.55, 0.25, 0.20},
		"Series C": {0.55, 0.25, 0.20},
		"Series D": {0.55, 0.25, 0.20},
		"Series E": {0.40, 0.30, 0.30},
		"Series F": {0.30, 0.30, 0.30},
		"Series G": {0, 0, 0},
	},
	// coin tosses with slightly better M&A at later stages
	MarketBelow: {
		"Pre-seed": {0.45, 0.40, 0.15},
		"Seed":     {0.45, 0.40, 0.15},
		"Series A": {0.50, 0.35, 0.15},
		"Series B": {0.50, 0.35, 0.15},
		"Series C": {0.50, 0.30, 0.20},
		"Series D": {0.50, 0.30, 0.20},
		"Series E": {0.40, 0.30, 0.30},
		"Series F": {0.30, 0.40, 0.20},
		"Series G": {0, 0, 0},
	},
}

// MarketScenario returns a copy of the named graduation-rate table.
func MarketScenario(name string) (map[string][]float64, error) {
	rates, ok := marketScenarios[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown market scenario %q (want one of %v)", ErrInvalidConfig, name, MarketScenarioNames())
	}
	out := make(map[string][]float64, len(rates))
	for k, v := range rates {
		out[k] = append([]float64(nil), v...)
	}
	return out, nil
}

// MarketScenarioNames lists the built-in market scenarios.
func MarketScenarioNames() []string {
	names := make([]string, 0, len(marketScenarios))
	for k := range marketScenarios {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func baseSpec() ConfigSpec {
	rates, _ := MarketScenario(Market)
	return ConfigSpec{
		Stages:           DefaultStages(),
		GraduationRates:  rates,
		StageDilution:    DefaultStageDilution(),
		StageValuations:  DefaultStageValuations(),
		LifespanPeriods:  DefaultLifespanPeriods,
		LifespanYears:    DefaultLifespanYears,
		FollowOnReserve:  30,
		FundSize:         200,
		ProRataAtOrBelow: 70,
	}
}

// DefaultFundSpec is a $200M fund writing $1.5M Pre-seed checks with $30M
// held back for pro-rata.
func DefaultFundSpec() ConfigSpec {
	s := baseSpec()
	s.PrimaryInvestments = map[string]float64{"Pre-seed": 170}
	s.InitialInvestmentSizes = map[string]float64{"Pre-seed": 1.5}
	s.NumScenarios = 10000
	return s
}

// MixedStageSpec splits the same fund evenly between Pre-seed and Seed.
func MixedStageSpec() ConfigSpec {
	s := baseSpec()
	s.PrimaryInvestments = map[string]float64{"Pre-seed": 85, "Seed": 85}
	s.InitialInvestmentSizes = map[string]float64{"Pre-seed": 1.5, "Seed": 4}
	s.NumScenarios = 3000
	return s
}

// Preset names accepted by PresetSpec.
const (
	PresetDefault = "default"
	PresetMixed   = "mixed"
)

// PresetSpec returns the named fund preset.
func PresetSpec(name string) (ConfigSpec, error) {
	switch name {
	case PresetDefault:
		return DefaultFundSpec(), nil
	case PresetMixed:
		return MixedStageSpec(), nil
	}
	return ConfigSpec{}, fmt.Errorf("%w: unknown preset %q (want %q or %q)", ErrInvalidConfig, name, PresetDefault, PresetMixed)
}
