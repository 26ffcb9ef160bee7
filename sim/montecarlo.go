package sim

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Montecarlo drives NumScenarios independent firms through the same stage
// ladder and number of periods.
type Montecarlo struct {
	RunID  string
	Firms  []*Firm
	config *Config
	hasRun bool
}

// NewMontecarlo builds one firm per scenario, each with its full initial
// portfolio. Panics if cfg is nil.
func NewMontecarlo(cfg *Config) *Montecarlo {
	if cfg == nil {
		panic("NewMontecarlo: config is nil")
	}
	m := &Montecarlo{
		RunID:  uuid.NewString(),
		Firms:  make([]*Firm, cfg.NumScenarios),
		config: cfg,
	}
	for i := range m.Firms {
		f := NewFirm(fmt.Sprintf("Gradient%d", i), cfg)
		f.InitializePortfolio(cfg.Ladder)
		m.Firms[i] = f
	}
	return m
}

// Config returns the configuration the run was built from.
func (m *Montecarlo) Config() *Config { return m.config }

// Simulate runs every scenario sequentially on one stream seeded once from
// seed. Draws are consumed in a fixed order: scenario by scenario, period by
// period, company by company, each scenario's redeployment pass directly after
// its main pass. Panics if called more than once.
func (m *Montecarlo) Simulate(seed int64) error {
	m.markRun()
	start := time.Now()
	logrus.Infof("run %s: simulating %d scenarios sequentially (seed=%d)", m.RunID, len(m.Firms), seed)

	src := NewPartitionedRNG(NewSimulationKey(seed)).ForSubsystem(SubsystemShared)
	for _, f := range m.Firms {
		m.simulateFirm(f, src)
	}
	return m.finish(start)
}

// RunParallel runs scenarios on up to workers goroutines. Every scenario
// draws from its own stream derived from seed and its index, so results do
// not depend on the worker count or scheduling. Cancelling ctx stops
// scheduling further scenarios and returns the context error.
// Panics if called more than once.
func (m *Montecarlo) RunParallel(ctx context.Context, seed int64, workers int) error {
	m.markRun()
	if workers < 1 {
		workers = 1
	}
	start := time.Now()
	logrus.Infof("run %s: simulating %d scenarios on %d workers (seed=%d)", m.RunID, len(m.Firms), workers, seed)

	rng := NewPartitionedRNG(NewSimulationKey(seed))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range m.Firms {
		if gctx.Err() != nil {
			break
		}
		src := rng.ForScenario(i)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m.simulateFirm(f, src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("run %s: %w", m.RunID, err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run %s: %w", m.RunID, err)
	}
	return m.finish(start)
}

func (m *Montecarlo) markRun() {
	if m.hasRun {
		panic("Montecarlo: run called more than once")
	}
	m.hasRun = true
}

func (m *Montecarlo) finish(start time.Time) error {
	for _, f := range m.Firms {
		if err := f.CheckBudget(); err != nil {
			return fmt.Errorf("run %s: %w", m.RunID, err)
		}
	}
	logrus.Infof("run %s: %d scenarios done in %s", m.RunID, len(m.Firms), time.Since(start))
	return nil
}

// simulateFirm runs the main pass with follow-on capital, snapshotting each
// period, then the leftover redeployment pass.
func (m *Montecarlo) simulateFirm(f *Firm, src RandomSource) {
	cfg := m.config
	for period := 0; period < cfg.LifespanPeriods; period++ {
		for _, c := range f.Portfolio {
			invested := c.Step(cfg.Ladder, cfg.ExitTiers, src, f.RemainingFollowOn(), cfg.ProRataCeiling)
			f.RecordFollowOn(invested)
		}
		f.TakeSnapshot(cfg.Ladder)
	}
	if cfg.ReinvestUnusedReserve && f.RemainingFollowOn() > 0 {
		m.redeployReserve(f, src)
	}
	logrus.Debugf("scenario %s: %d companies, MOIC %.1fx, follow-on %g/%g",
		f.Name, len(f.Portfolio), f.MOIC(), f.FollowOnDeployed, f.FollowOnReserve)
}

// redeployReserve turns the unused reserve into new positions at the first
// planned stage and runs them through their own full lifespan with no
// follow-on capital.
func (m *Montecarlo) redeployReserve(f *Firm, src RandomSource) {
	cfg := m.config
	entry := cfg.Plan[0]
	count := int(math.Floor(f.RemainingFollowOn() / entry.CheckSize))
	if count == 0 {
		return
	}
	stageName := cfg.Ladder.Name(entry.Stage)
	extras := make([]*Company, count)
	for i := range extras {
		extras[i] = NewCompany(fmt.Sprintf("%s/extra-%s-%d", f.Name, stageName, i), cfg.Ladder, entry.Stage, entry.CheckSize)
		f.PrimaryDeployed += entry.CheckSize
		f.FollowOnReserve -= entry.CheckSize
	}
	logrus.Debugf("scenario %s: redeploying %d x %g into %s", f.Name, count, entry.CheckSize, stageName)

	// Extras use the run's exit tiers, not DefaultExitTiers, so custom
	// m_and_a_outcomes apply to every position. They get no follow-on.
	for period := 0; period < cfg.LifespanPeriods; period++ {
		for _, c := range extras {
			c.Step(cfg.Ladder, cfg.ExitTiers, src, 0, cfg.ProRataCeiling)
		}
	}
	f.Portfolio = append(f.Portfolio, extras...)
}
