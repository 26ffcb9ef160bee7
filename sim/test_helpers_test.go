package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// threeStageSpec is a small A → B → C ladder: ten $1M checks into A at a $10M
// valuation (10% each), a $10M reserve and a $20M fund. Before any period
// runs, every scenario is worth 0.5x.
func threeStageSpec() ConfigSpec {
	return ConfigSpec{
		Stages: []string{"A", "B", "C"},
		GraduationRates: map[string][]float64{
			"A": {0.5, 0.3, 0.2},
			"B": {0.4, 0.3, 0.3},
			"C": {0, 0, 0},
		},
		StageDilution:          map[string]float64{"B": 0.2, "C": 0.1},
		StageValuations:        map[string]float64{"A": 10, "B": 20, "C": 50},
		LifespanPeriods:        2,
		LifespanYears:          5,
		PrimaryInvestments:     map[string]float64{"A": 10},
		InitialInvestmentSizes: map[string]float64{"A": 1},
		FollowOnReserve:        10,
		FundSize:               20,
		ProRataAtOrBelow:       20,
		NumScenarios:           3,
	}
}

// mustConfig builds a Config or fails the test.
func mustConfig(t *testing.T, spec ConfigSpec) *Config {
	t.Helper()
	cfg, err := NewConfig(spec)
	require.NoError(t, err)
	return cfg
}

// defaultLadder returns the Pre-seed…Series G ladder under market rates.
func defaultLadder(t *testing.T) *StageLadder {
	t.Helper()
	cfg := mustConfig(t, DefaultFundSpec())
	return cfg.Ladder
}

func boolPtr(v bool) *bool { return &v }
