package sim

import (
	"fmt"
)

// Snapshot captures a firm's aggregate portfolio state at the end of a period.
// Period 0 is the state right after portfolio construction.
type Snapshot struct {
	Period        int     `json:"period" yaml:"period"`
	AliveByStage  []int   `json:"alive_by_stage" yaml:"alive_by_stage"` // indexed by stage
	Alive         int     `json:"alive" yaml:"alive"`
	Failed        int     `json:"failed" yaml:"failed"`
	Acquired      int     `json:"acquired" yaml:"acquired"`
	AliveValue    float64 `json:"alive_value" yaml:"alive_value"`
	AcquiredValue float64 `json:"acquired_value" yaml:"acquired_value"`
}

// Firm is one simulated fund: a portfolio of companies plus the ledger of
// primary and follow-on capital. A Firm exclusively owns its companies and
// its reserve ledger.
type Firm struct {
	Name             string
	Plan             []PlanEntry
	FollowOnReserve  float64
	PrimaryDeployed  float64
	FollowOnDeployed float64
	FundSize         float64
	LifespanYears    int
	Portfolio        []*Company
	Snapshots        []Snapshot
}

// NewFirm creates an empty firm for cfg.
func NewFirm(name string, cfg *Config) *Firm {
	return &Firm{
		Name:            name,
		Plan:            cfg.Plan,
		FollowOnReserve: cfg.FollowOnReserve,
		FundSize:        cfg.FundSize,
		LifespanYears:   cfg.LifespanYears,
	}
}

// InitializePortfolio opens one company per whole check of every plan line
// and records the period-0 snapshot.
func (f *Firm) InitializePortfolio(ladder *StageLadder) {
	for _, e := range f.Plan {
		stageName := ladder.Name(e.Stage)
		for i := 0; i < e.Companies; i++ {
			f.Portfolio = append(f.Portfolio,
				NewCompany(fmt.Sprintf("%s/%s-%d", f.Name, stageName, i), ladder, e.Stage, e.CheckSize))
			f.PrimaryDeployed += e.CheckSize
		}
	}
	f.TakeSnapshot(ladder)
}

// RemainingFollowOn returns the reserve still available for pro-rata.
func (f *Firm) RemainingFollowOn() float64 {
	return f.FollowOnReserve - f.FollowOnDeployed
}

// RecordFollowOn debits a pro-rata investment from the reserve ledger.
func (f *Firm) RecordFollowOn(amount float64) {
	if amount < 0 {
		panic(fmt.Sprintf("Firm %s: negative follow-on investment %g", f.Name, amount))
	}
	f.FollowOnDeployed += amount
}

// CapitalInvested returns primary plus follow-on capital deployed.
func (f *Firm) CapitalInvested() float64 {
	return f.PrimaryDeployed + f.FollowOnDeployed
}

// TotalValue sums the firm's share of every Alive and Acquired company.
func (f *Firm) TotalValue() float64 {
	total := 0.0
	for _, c := range f.Portfolio {
		if c.State != Failed {
			total += c.FirmValue()
		}
	}
	return total
}

// MOIC is the portfolio value over the full fund size, rounded to one decimal
// with ties to even.
func (f *Firm) MOIC() float64 {
	return roundTo(f.TotalValue()/f.FundSize, 1)
}

// TakeSnapshot appends the current aggregate state.
func (f *Firm) TakeSnapshot(ladder *StageLadder) {
	s := Snapshot{
		Period:       len(f.Snapshots),
		AliveByStage: make([]int, ladder.Len()),
	}
	for _, c := range f.Portfolio {
		switch c.State {
		case Alive:
			s.AliveByStage[c.Stage]++
			s.Alive++
			s.AliveValue += c.FirmValue()
		case Acquired:
			s.Acquired++
			s.AcquiredValue += c.FirmValue()
		case Failed:
			s.Failed++
		}
	}
	f.Snapshots = append(f.Snapshots, s)
}

// CheckBudget verifies that the firm did not deploy more than the fund holds.
func (f *Firm) CheckBudget() error {
	deployed := f.CapitalInvested()
	if deployed > f.FundSize && !budgetEqual(deployed, f.FundSize) {
		return fmt.Errorf("%w: firm %s deployed %g (primary %g + follow-on %g) of a %g fund",
			ErrBudgetMismatch, f.Name, deployed, f.PrimaryDeployed, f.FollowOnDeployed, f.FundSize)
	}
	return nil
}
