package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidConfig wraps every configuration error detected before a run.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrBudgetMismatch is returned when primary allocations plus the
	// follow-on reserve do not add up to the fund size, or when a finished
	// scenario deployed more than the fund holds.
	ErrBudgetMismatch = errors.New("budget mismatch")
)

// budgetTolerance is the relative slack allowed when comparing monetary
// totals that went through float division.
const budgetTolerance = 1e-9

// ConfigSpec is the external description of one simulation, keyed by stage
// name. It is what config files and presets decode into; NewConfig turns it
// into a validated Config.
type ConfigSpec struct {
	Stages                 []string             `yaml:"stages" toml:"stages" json:"stages"`
	GraduationRates        map[string][]float64 `yaml:"graduation_rates" toml:"graduation_rates" json:"graduation_rates"`
	StageDilution          map[string]float64   `yaml:"stage_dilution" toml:"stage_dilution" json:"stage_dilution"`
	StageValuations        map[string]float64   `yaml:"stage_valuations" toml:"stage_valuations" json:"stage_valuations"`
	LifespanPeriods        int                  `yaml:"lifespan_periods" toml:"lifespan_periods" json:"lifespan_periods"`
	LifespanYears          int                  `yaml:"lifespan_years" toml:"lifespan_years" json:"lifespan_years"`
	PrimaryInvestments     map[string]float64   `yaml:"primary_investments" toml:"primary_investments" json:"primary_investments"`
	InitialInvestmentSizes map[string]float64   `yaml:"initial_investment_sizes" toml:"initial_investment_sizes" json:"initial_investment_sizes"`
	FollowOnReserve        float64              `yaml:"follow_on_reserve" toml:"follow_on_reserve" json:"follow_on_reserve"`
	FundSize               float64              `yaml:"fund_size" toml:"fund_size" json:"fund_size"`
	ProRataAtOrBelow       float64              `yaml:"pro_rata_at_or_below" toml:"pro_rata_at_or_below" json:"pro_rata_at_or_below"`
	NumScenarios           int                  `yaml:"num_scenarios" toml:"num_scenarios" json:"num_scenarios"`
	ReinvestUnusedReserve  *bool                `yaml:"reinvest_unused_reserve" toml:"reinvest_unused_reserve" json:"reinvest_unused_reserve,omitempty"`
	MAndAOutcomes          []ExitTier           `yaml:"m_and_a_outcomes" toml:"m_and_a_outcomes" json:"m_and_a_outcomes,omitempty"`
}

// Clone returns a deep copy so sweeps can mutate axes independently.
func (s ConfigSpec) Clone() ConfigSpec {
	out := s
	out.Stages = append([]string(nil), s.Stages...)
	out.GraduationRates = make(map[string][]float64, len(s.GraduationRates))
	for k, v := range s.GraduationRates {
		out.GraduationRates[k] = append([]float64(nil), v...)
	}
	out.StageDilution = cloneMap(s.StageDilution)
	out.StageValuations = cloneMap(s.StageValuations)
	out.PrimaryInvestments = cloneMap(s.PrimaryInvestments)
	out.InitialInvestmentSizes = cloneMap(s.InitialInvestmentSizes)
	if s.ReinvestUnusedReserve != nil {
		v := *s.ReinvestUnusedReserve
		out.ReinvestUnusedReserve = &v
	}
	out.MAndAOutcomes = append([]ExitTier(nil), s.MAndAOutcomes...)
	return out
}

func cloneMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// PlanEntry is one primary-investment line after rounding: Companies checks
// of CheckSize each, totalling Allocation.
type PlanEntry struct {
	Stage      int
	CheckSize  float64
	Requested  float64 // allocation as configured, before rounding
	Allocation float64 // whole checks only
	Companies  int
}

// Config is a validated, immutable simulation configuration.
type Config struct {
	Ladder                *StageLadder
	LifespanPeriods       int
	LifespanYears         int
	Plan                  []PlanEntry // ordered by stage index
	FollowOnReserve       float64     // after the rounding adjustment
	RequestedReserve      float64     // as configured
	FundSize              float64
	ProRataCeiling        float64
	NumScenarios          int
	ReinvestUnusedReserve bool
	ExitTiers             []ExitTier
}

// NewConfig validates spec against its stage ladder, rounds every primary
// allocation down to whole checks, moves the remainders into the follow-on
// reserve and verifies that the budget still adds up to the fund size.
// All returned errors wrap ErrInvalidConfig or ErrBudgetMismatch.
func NewConfig(spec ConfigSpec) (*Config, error) {
	ladder, err := buildLadder(spec)
	if err != nil {
		return nil, err
	}
	if spec.LifespanPeriods != ladder.Len()-1 {
		return nil, fmt.Errorf("%w: lifespan_periods %d must equal len(stages)-1 = %d",
			ErrInvalidConfig, spec.LifespanPeriods, ladder.Len()-1)
	}
	if spec.FundSize <= 0 {
		return nil, fmt.Errorf("%w: fund_size must be positive, got %g", ErrInvalidConfig, spec.FundSize)
	}
	if spec.FollowOnReserve < 0 {
		return nil, fmt.Errorf("%w: follow_on_reserve must be non-negative, got %g", ErrInvalidConfig, spec.FollowOnReserve)
	}
	if spec.ProRataAtOrBelow < 0 {
		return nil, fmt.Errorf("%w: pro_rata_at_or_below must be non-negative, got %g", ErrInvalidConfig, spec.ProRataAtOrBelow)
	}
	if spec.NumScenarios < 1 {
		return nil, fmt.Errorf("%w: num_scenarios must be >= 1, got %d", ErrInvalidConfig, spec.NumScenarios)
	}

	tiers := spec.MAndAOutcomes
	if tiers == nil {
		tiers = DefaultExitTiers()
	}
	if err := validateExitTiers(tiers); err != nil {
		return nil, err
	}

	plan, requested, err := buildPlan(spec, ladder)
	if err != nil {
		return nil, err
	}
	if !budgetEqual(requested+spec.FollowOnReserve, spec.FundSize) {
		return nil, fmt.Errorf("%w: primary investments %g + follow-on reserve %g != fund size %g",
			ErrBudgetMismatch, requested, spec.FollowOnReserve, spec.FundSize)
	}

	reserve, err := adjustForWholeChecks(plan, spec.FollowOnReserve, spec.FundSize, ladder)
	if err != nil {
		return nil, err
	}

	reinvest := true
	if spec.ReinvestUnusedReserve != nil {
		reinvest = *spec.ReinvestUnusedReserve
	}

	return &Config{
		Ladder:                ladder,
		LifespanPeriods:       spec.LifespanPeriods,
		LifespanYears:         spec.LifespanYears,
		Plan:                  plan,
		FollowOnReserve:       reserve,
		RequestedReserve:      spec.FollowOnReserve,
		FundSize:              spec.FundSize,
		ProRataCeiling:        spec.ProRataAtOrBelow,
		NumScenarios:          spec.NumScenarios,
		ReinvestUnusedReserve: reinvest,
		ExitTiers:             append([]ExitTier(nil), tiers...),
	}, nil
}

func buildLadder(spec ConfigSpec) (*StageLadder, error) {
	n := len(spec.Stages)
	if len(spec.StageValuations) != n || len(spec.GraduationRates) != n {
		return nil, fmt.Errorf("%w: %d stages but %d valuations and %d graduation rates",
			ErrInvalidConfig, n, len(spec.StageValuations), len(spec.GraduationRates))
	}
	inLadder := make(map[string]bool, n)
	for _, name := range spec.Stages {
		inLadder[name] = true
	}
	for name := range spec.StageDilution {
		if !inLadder[name] {
			return nil, fmt.Errorf("%w: stage_dilution names unknown stage %q", ErrInvalidConfig, name)
		}
	}

	stages := make([]Stage, n)
	for i, name := range spec.Stages {
		valuation, ok := spec.StageValuations[name]
		if !ok {
			return nil, fmt.Errorf("%w: no valuation for stage %q", ErrInvalidConfig, name)
		}
		rates, ok := spec.GraduationRates[name]
		if !ok {
			return nil, fmt.Errorf("%w: no graduation rates for stage %q", ErrInvalidConfig, name)
		}
		if len(rates) != 3 {
			return nil, fmt.Errorf("%w: graduation rates for %q need [promote, fail, acquire], got %v",
				ErrInvalidConfig, name, rates)
		}
		dilution, ok := spec.StageDilution[name]
		if !ok && i > 0 {
			return nil, fmt.Errorf("%w: no dilution for stage %q", ErrInvalidConfig, name)
		}
		stages[i] = Stage{
			Name:      name,
			Valuation: valuation,
			Dilution:  dilution,
			Transition: StageTransition{
				Promote: rates[0],
				Fail:    rates[1],
				Acquire: rates[2],
			},
		}
	}
	return NewStageLadder(stages)
}

// buildPlan orders primary investments by stage index. Map order is never
// used for sequencing.
func buildPlan(spec ConfigSpec, ladder *StageLadder) ([]PlanEntry, float64, error) {
	if len(spec.PrimaryInvestments) == 0 {
		return nil, 0, fmt.Errorf("%w: primary_investments is empty", ErrInvalidConfig)
	}
	byStage := make([]*PlanEntry, ladder.Len())
	requested := 0.0
	for name, amount := range spec.PrimaryInvestments {
		idx, ok := ladder.Index(name)
		if !ok {
			return nil, 0, fmt.Errorf("%w: primary investment stage %q is not in stages %v",
				ErrInvalidConfig, name, ladder.Names())
		}
		if amount <= 0 {
			return nil, 0, fmt.Errorf("%w: primary investment for %q must be positive, got %g", ErrInvalidConfig, name, amount)
		}
		check, ok := spec.InitialInvestmentSizes[name]
		if !ok || check == 0 {
			return nil, 0, fmt.Errorf("%w: missing or zero initial investment size for stage %q", ErrInvalidConfig, name)
		}
		if check < 0 || check > ladder.Stage(idx).Valuation {
			return nil, 0, fmt.Errorf("%w: initial investment size %g for %q must be in (0, valuation %g]",
				ErrInvalidConfig, check, name, ladder.Stage(idx).Valuation)
		}
		byStage[idx] = &PlanEntry{Stage: idx, CheckSize: check, Requested: amount}
		requested += amount
	}
	plan := make([]PlanEntry, 0, len(spec.PrimaryInvestments))
	for _, e := range byStage {
		if e != nil {
			plan = append(plan, *e)
		}
	}
	return plan, requested, nil
}

// adjustForWholeChecks rounds each plan line down to a multiple of its check
// size and returns the follow-on reserve grown by the remainders.
func adjustForWholeChecks(plan []PlanEntry, reserve, fundSize float64, ladder *StageLadder) (float64, error) {
	adjustment := 0.0
	for i := range plan {
		e := &plan[i]
		checks := math.Floor(e.Requested / e.CheckSize)
		e.Companies = int(checks)
		e.Allocation = checks * e.CheckSize
		remainder := e.Requested - e.Allocation
		if remainder > 0 {
			logrus.Warnf("stage %s: %g does not divide into %g checks; moving %g to follow-on reserve",
				ladder.Name(e.Stage), e.Requested, e.CheckSize, remainder)
		}
		adjustment += remainder
	}
	reserve += adjustment

	total := reserve
	for _, e := range plan {
		total += e.Allocation
	}
	if !budgetEqual(total, fundSize) {
		return 0, fmt.Errorf("%w: adjusted primary investments plus follow-on reserve %g != fund size %g",
			ErrBudgetMismatch, total, fundSize)
	}
	return reserve, nil
}

func validateExitTiers(tiers []ExitTier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("%w: m_and_a_outcomes must not be empty", ErrInvalidConfig)
	}
	for i, t := range tiers {
		if t.Probability < 0 || t.Probability > 1 {
			return fmt.Errorf("%w: m_and_a_outcomes[%d] probability %g outside [0,1]", ErrInvalidConfig, i, t.Probability)
		}
		if t.Multiplier <= 0 {
			return fmt.Errorf("%w: m_and_a_outcomes[%d] multiple must be positive, got %g", ErrInvalidConfig, i, t.Multiplier)
		}
	}
	return nil
}

func budgetEqual(a, b float64) bool {
	return math.Abs(a-b) <= budgetTolerance*math.Max(1, math.Abs(b))
}

// PlannedCompanies returns the number of companies one scenario starts with.
func (c *Config) PlannedCompanies() int {
	n := 0
	for _, e := range c.Plan {
		n += e.Companies
	}
	return n
}

// PrimaryAllocation returns the total primary capital after rounding.
func (c *Config) PrimaryAllocation() float64 {
	total := 0.0
	for _, e := range c.Plan {
		total += e.Allocation
	}
	return total
}

func (c *Config) String() string {
	return fmt.Sprintf("Config(fund=$%gM, primary=$%gM over %d companies, reserve=$%gM, pro-rata<=$%gM, %d periods/%d years, %d scenarios)",
		c.FundSize, c.PrimaryAllocation(), c.PlannedCompanies(), c.FollowOnReserve,
		c.ProRataCeiling, c.LifespanPeriods, c.LifespanYears, c.NumScenarios)
}
