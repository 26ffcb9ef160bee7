package sim

import (
	"fmt"
)

// CompanyState is the lifecycle state of a portfolio company.
// Alive → {Alive (promoted), Failed, Acquired}; Failed and Acquired are final.
type CompanyState int

const (
	Alive CompanyState = iota
	Failed
	Acquired
)

var companyStateNames = [...]string{"Alive", "Failed", "Acquired"}

func (s CompanyState) String() string {
	if int(s) < len(companyStateNames) {
		return companyStateNames[s]
	}
	return fmt.Sprintf("CompanyState(%d)", int(s))
}

// MarshalText renders the state by name in JSON and YAML reports.
func (s CompanyState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// RandomSource yields uniform draws in [0,1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// StageRecord captures where and at what ownership a position was opened.
type StageRecord struct {
	Stage     int
	Ownership float64
}

// ProRataCounts tallies follow-on decisions, one per promotion event.
type ProRataCounts struct {
	Invested                   int `json:"invested" yaml:"invested"`
	SkippedInsufficientReserve int `json:"skipped_insufficient_reserve" yaml:"skipped_insufficient_reserve"`
	SkippedTooLateStage        int `json:"skipped_too_late_stage" yaml:"skipped_too_late_stage"`
}

func (p *ProRataCounts) add(o ProRataCounts) {
	p.Invested += o.Invested
	p.SkippedInsufficientReserve += o.SkippedInsufficientReserve
	p.SkippedTooLateStage += o.SkippedTooLateStage
}

// Company is a single investment position held by a Firm.
type Company struct {
	Name            string
	Stage           int
	Valuation       float64
	State           CompanyState
	Ownership       float64
	InvestedCapital float64
	Age             int
	Initial         StageRecord
	ProRata         ProRataCounts
}

// NewCompany opens a position of size check at the given stage.
func NewCompany(name string, ladder *StageLadder, stage int, check float64) *Company {
	valuation := ladder.Stage(stage).Valuation
	ownership := check / valuation
	if ownership <= 0 || ownership > 1 {
		panic(fmt.Sprintf("NewCompany %s: ownership %g outside (0,1] (check %g, valuation %g)", name, ownership, check, valuation))
	}
	return &Company{
		Name:            name,
		Stage:           stage,
		Valuation:       valuation,
		State:           Alive,
		Ownership:       ownership,
		InvestedCapital: check,
		Initial:         StageRecord{Stage: stage, Ownership: ownership},
	}
}

// Step advances the company by one period and returns the follow-on capital
// it consumed. Only an Alive company below the terminal stage draws from src;
// every other company just ages. The caller owns the reserve ledger and must
// debit the returned amount.
func (c *Company) Step(ladder *StageLadder, tiers []ExitTier, src RandomSource, remainingReserve, proRataCeiling float64) float64 {
	if c.State != Alive || ladder.IsTerminal(c.Stage) {
		c.Age++
		return 0
	}
	t := ladder.Stage(c.Stage).Transition
	r := src.Float64()
	switch {
	case r < t.Acquire:
		c.Acquire(tiers, src.Float64())
	case r < t.Acquire+t.Fail:
		c.Fail()
	default:
		return c.Promote(ladder, remainingReserve, proRataCeiling)
	}
	return 0
}

// Promote moves the company to the next stage, applies that stage's dilution
// and, when the new valuation is at or below proRataCeiling, buys back the
// diluted ownership out of remainingReserve. It returns the amount invested.
func (c *Company) Promote(ladder *StageLadder, remainingReserve, proRataCeiling float64) float64 {
	c.Age++
	c.Stage = ladder.Next(c.Stage)
	next := ladder.Stage(c.Stage)
	c.Valuation = next.Valuation

	postDilution := c.Ownership * (1 - next.Dilution)

	investment := 0.0
	if c.Valuation <= proRataCeiling {
		desired := (c.Ownership - postDilution) * c.Valuation
		investment = min(desired, remainingReserve)
		if investment > 0 {
			c.ProRata.Invested++
		} else {
			investment = 0
			c.ProRata.SkippedInsufficientReserve++
		}
	} else {
		c.ProRata.SkippedTooLateStage++
	}

	c.InvestedCapital += investment
	c.Ownership = postDilution + investment/c.Valuation
	if c.Ownership < 0 || c.Ownership > 1 {
		panic(fmt.Sprintf("Promote %s: ownership %g outside [0,1]", c.Name, c.Ownership))
	}
	return investment
}

// Fail writes the company off.
func (c *Company) Fail() {
	c.Age++
	c.State = Failed
	c.Valuation = 0
}

// Acquire exits the company, scaling its valuation by the tier selected by r.
func (c *Company) Acquire(tiers []ExitTier, r float64) {
	c.Age++
	c.State = Acquired
	c.Valuation *= ExitMultiplier(tiers, r)
}

// FirmValue is the firm's share of the company's current valuation.
func (c *Company) FirmValue() float64 {
	return c.Valuation * c.Ownership
}

// DidProRata reports whether the firm ever made a follow-on investment.
func (c *Company) DidProRata() bool {
	return c.ProRata.Invested > 0
}

func (c *Company) String() string {
	return fmt.Sprintf("[%s, stage=%d, %g, %s, invested=%g, own=%g]",
		c.Name, c.Stage, c.Valuation, c.State, c.InvestedCapital, c.Ownership)
}
