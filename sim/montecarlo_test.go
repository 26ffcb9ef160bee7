package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/monaco-sim/monaco/sim/internal/testutil"
)

func runSequential(t *testing.T, spec ConfigSpec, seed int64) *Montecarlo {
	t.Helper()
	m := NewMontecarlo(mustConfig(t, spec))
	require.NoError(t, m.Simulate(seed))
	return m
}

func runParallel(t *testing.T, spec ConfigSpec, seed int64, workers int) *Montecarlo {
	t.Helper()
	m := NewMontecarlo(mustConfig(t, spec))
	require.NoError(t, m.RunParallel(context.Background(), seed, workers))
	return m
}

func smallDefaultSpec(scenarios int) ConfigSpec {
	spec := DefaultFundSpec()
	spec.NumScenarios = scenarios
	return spec
}

func TestNewMontecarlo_BuildsOneFirmPerScenario(t *testing.T) {
	m := NewMontecarlo(mustConfig(t, threeStageSpec()))

	require.Len(t, m.Firms, 3)
	assert.Equal(t, "Gradient0", m.Firms[0].Name)
	assert.Equal(t, "Gradient2", m.Firms[2].Name)
	assert.NotEmpty(t, m.RunID)
	for _, f := range m.Firms {
		assert.Len(t, f.Portfolio, 10)
	}
	assert.Panics(t, func() { NewMontecarlo(nil) })
}

func TestSimulate_Deterministic(t *testing.T) {
	// GIVEN two runs with the same configuration and seed
	a := runSequential(t, smallDefaultSpec(20), 42)
	b := runSequential(t, smallDefaultSpec(20), 42)

	// THEN every scenario matches exactly
	if diff := cmp.Diff(a.MOICOutcomes(), b.MOICOutcomes()); diff != "" {
		t.Errorf("MOIC outcomes differ (-a +b):\n%s", diff)
	}
	if diff := cmp.Diff(a.ScenarioDetails(), b.ScenarioDetails()); diff != "" {
		t.Errorf("scenario details differ (-a +b):\n%s", diff)
	}
}

func TestSimulate_SeedChangesOutcome(t *testing.T) {
	a := runSequential(t, smallDefaultSpec(20), 1)
	b := runSequential(t, smallDefaultSpec(20), 2)

	assert.NotEqual(t, a.ScenarioDetails(), b.ScenarioDetails())
}

func TestSimulate_SharedStreamPrefixIsStable(t *testing.T) {
	// GIVEN a one-scenario run and a three-scenario run on the same seed
	one := runSequential(t, smallDefaultSpec(1), 7)
	three := runSequential(t, smallDefaultSpec(3), 7)

	// THEN the first scenario consumed the same draws in both
	if diff := cmp.Diff(one.ScenarioDetails()[0], three.ScenarioDetails()[0]); diff != "" {
		t.Errorf("first scenario differs (-one +three):\n%s", diff)
	}
}

func TestRunParallel_IndependentOfWorkerCount(t *testing.T) {
	defer goleak.VerifyNone(t)

	// GIVEN the same seed on 1 and 4 workers
	serial := runParallel(t, smallDefaultSpec(24), 99, 1)
	wide := runParallel(t, smallDefaultSpec(24), 99, 4)

	// THEN per-scenario streams make the results identical
	if diff := cmp.Diff(serial.ScenarioDetails(), wide.ScenarioDetails()); diff != "" {
		t.Errorf("results depend on worker count (-1 worker +4 workers):\n%s", diff)
	}
	if diff := cmp.Diff(serial.PeriodTrajectory(), wide.PeriodTrajectory()); diff != "" {
		t.Errorf("trajectories differ (-1 worker +4 workers):\n%s", diff)
	}
}

func TestRunParallel_NonPositiveWorkersRunsSerially(t *testing.T) {
	defer goleak.VerifyNone(t)

	a := runParallel(t, smallDefaultSpec(5), 3, 0)
	b := runParallel(t, smallDefaultSpec(5), 3, 2)

	assert.Equal(t, a.MOICOutcomes(), b.MOICOutcomes())
}

func TestRunParallel_CancelledContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMontecarlo(mustConfig(t, smallDefaultSpec(10)))

	err := m.RunParallel(ctx, 1, 4)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestRun_TwicePanics(t *testing.T) {
	m := runSequential(t, threeStageSpec(), 1)

	assert.Panics(t, func() { _ = m.Simulate(1) })
	assert.Panics(t, func() { _ = m.RunParallel(context.Background(), 1, 2) })
}

func TestSimulate_Invariants(t *testing.T) {
	m := runSequential(t, smallDefaultSpec(50), 2024)
	cfg := m.Config()

	for _, f := range m.Firms {
		assert.LessOrEqual(t, f.CapitalInvested(), cfg.FundSize+1e-9, f.Name)
		assert.GreaterOrEqual(t, f.RemainingFollowOn(), -1e-9, f.Name)
		assert.Len(t, f.Snapshots, cfg.LifespanPeriods+1, f.Name)
		for _, c := range f.Portfolio {
			assert.LessOrEqual(t, c.Stage, cfg.Ladder.Terminal(), c.Name)
			assert.GreaterOrEqual(t, c.Ownership, 0.0, c.Name)
			assert.LessOrEqual(t, c.Ownership, 1.0, c.Name)
			if c.State == Failed {
				assert.Equal(t, 0.0, c.Valuation, c.Name)
			}
			assert.Equal(t, cfg.LifespanPeriods, c.Age, c.Name)
		}
	}
}

func TestSimulate_TerminalStageCompanyStaysAlive(t *testing.T) {
	// GIVEN a fund that buys straight into the terminal stage
	spec := DefaultFundSpec()
	spec.PrimaryInvestments = map[string]float64{"Pre-seed": 15, "Series G": 100}
	spec.InitialInvestmentSizes = map[string]float64{"Pre-seed": 1.5, "Series G": 100}
	spec.FollowOnReserve = 85
	spec.NumScenarios = 5

	m := runSequential(t, spec, 11)
	terminal := m.Config().Ladder.Terminal()

	// THEN the Series G position is never transitioned
	for _, f := range m.Firms {
		found := 0
		for _, c := range f.Portfolio {
			if c.Initial.Stage != terminal {
				continue
			}
			found++
			assert.Equal(t, Alive, c.State, c.Name)
			assert.Equal(t, 10000.0, c.Valuation, c.Name)
			assert.InDelta(t, 0.01, c.Ownership, 1e-12, c.Name)
			assert.Equal(t, ProRataCounts{}, c.ProRata, c.Name)
		}
		assert.Equal(t, 1, found, f.Name)
	}
}

func TestSimulate_MOICTiesRoundToEvenAcrossRun(t *testing.T) {
	// GIVEN a $200M fund holding a single $50M Series G check and no redeployment
	spec := DefaultFundSpec()
	spec.PrimaryInvestments = map[string]float64{"Series G": 50}
	spec.InitialInvestmentSizes = map[string]float64{"Series G": 50}
	spec.FollowOnReserve = 150
	spec.ReinvestUnusedReserve = boolPtr(false)
	spec.NumScenarios = 3

	m := runSequential(t, spec, 1)

	// THEN every scenario is worth exactly 0.25x, reported as 0.2x
	for _, f := range m.Firms {
		require.Equal(t, 50.0, f.TotalValue(), f.Name)
	}
	assert.Equal(t, []float64{0.2, 0.2, 0.2}, m.MOICOutcomes())
	stats := NewMOICStats(m.MOICOutcomes())
	assert.Equal(t, 0.2, stats.P25)
	assert.Equal(t, 0.2, stats.P95)
}

func TestSimulate_RedeploysUnusedReserve(t *testing.T) {
	// GIVEN a ceiling that blocks every follow-on, leaving the $30.5M reserve idle
	spec := smallDefaultSpec(3)
	spec.ProRataAtOrBelow = 0

	m := runSequential(t, spec, 5)

	// THEN the reserve buys 20 more $1.5M Pre-seed positions
	for _, f := range m.Firms {
		assert.Len(t, f.Portfolio, 133, f.Name)
		testutil.AssertFloat64Equal(t, f.Name+" primary", 199.5, f.PrimaryDeployed, 1e-12)
		assert.InDelta(t, 0.5, f.FollowOnReserve, 1e-9, f.Name)
		assert.Equal(t, 0.0, f.FollowOnDeployed, f.Name)
		assert.Equal(t, f.Name+"/extra-Pre-seed-0", f.Portfolio[113].Name)
		for _, c := range f.Portfolio[113:] {
			assert.Equal(t, 0, c.Initial.Stage, c.Name)
			assert.Equal(t, 1.5, c.InvestedCapital, "extras never receive follow-on capital")
		}
		// snapshots cover only the main pass
		assert.Equal(t, 113, f.Snapshots[0].Alive)
	}
}

func TestSimulate_RedeployedCompaniesUseConfiguredExitTiers(t *testing.T) {
	// GIVEN a single 7x exit tier and a reserve left idle for redeployment
	spec := smallDefaultSpec(3)
	spec.ProRataAtOrBelow = 0
	spec.MAndAOutcomes = []ExitTier{{Probability: 1, Multiplier: 7}}

	m := runSequential(t, spec, 5)
	ladder := m.Config().Ladder

	// THEN every acquired extra exited at 7x its stage valuation
	acquired := 0
	for _, f := range m.Firms {
		for _, c := range f.Portfolio[113:] {
			if c.State != Acquired {
				continue
			}
			acquired++
			assert.InDelta(t, 7*ladder.Stage(c.Stage).Valuation, c.Valuation, 1e-9, c.Name)
		}
	}
	require.Positive(t, acquired, "expected some redeployed companies to be acquired")
}

func TestSimulate_ReinvestDisabled(t *testing.T) {
	spec := smallDefaultSpec(3)
	spec.ProRataAtOrBelow = 0
	spec.ReinvestUnusedReserve = boolPtr(false)

	m := runSequential(t, spec, 5)

	for _, f := range m.Firms {
		assert.Len(t, f.Portfolio, 113, f.Name)
		assert.InDelta(t, 30.5, f.RemainingFollowOn(), 1e-9, f.Name)
	}
}
