package experiment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/monaco-sim/monaco/sim"
)

// StrategyResult is one simulated strategy of an experiment.
type StrategyResult struct {
	Name    string       `json:"name" yaml:"name"`
	Seed    int64        `json:"seed" yaml:"seed"`
	Config  *sim.Config  `json:"-" yaml:"-"`
	Summary *sim.Summary `json:"summary" yaml:"summary"`
}

// RunStrategies simulates every configuration in order, naming them
// "Strategy 1", "Strategy 2", ... Each run gets its own seed drawn from the
// sweep stream of seed, so a strategy's result depends only on its position
// and seed. Scenarios inside one strategy run on up to workers goroutines.
func RunStrategies(ctx context.Context, cfgs []*sim.Config, seed int64, workers int) ([]StrategyResult, error) {
	seeds := sim.NewPartitionedRNG(sim.NewSimulationKey(seed)).ForSubsystem(sim.SubsystemSweep)
	results := make([]StrategyResult, 0, len(cfgs))
	for i, cfg := range cfgs {
		name := fmt.Sprintf("Strategy %d", i+1)
		runSeed := seeds.Int63()
		logrus.Infof("simulating %s: %s", name, cfg)

		m := sim.NewMontecarlo(cfg)
		if err := m.RunParallel(ctx, runSeed, workers); err != nil {
			return results, fmt.Errorf("%s: %w", name, err)
		}
		results = append(results, StrategyResult{
			Name:    name,
			Seed:    runSeed,
			Config:  cfg,
			Summary: m.Summarize(),
		})
	}
	return results, nil
}
