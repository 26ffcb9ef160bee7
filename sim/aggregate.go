package sim

import (
	"slices"
)

// MOICStats summarises a MOIC distribution.
type MOICStats struct {
	Scenarios int     `json:"scenarios" yaml:"scenarios"`
	Mean      float64 `json:"mean" yaml:"mean"`
	P25       float64 `json:"p25" yaml:"p25"`
	P50       float64 `json:"p50" yaml:"p50"`
	P75       float64 `json:"p75" yaml:"p75"`
	P90       float64 `json:"p90" yaml:"p90"`
	P95       float64 `json:"p95" yaml:"p95"`
}

// NewMOICStats computes mean and percentiles of outcomes.
// Returns nil when there are no outcomes.
func NewMOICStats(outcomes []float64) *MOICStats {
	if len(outcomes) == 0 {
		return nil
	}
	sorted := slices.Clone(outcomes)
	slices.Sort(sorted)
	return &MOICStats{
		Scenarios: len(sorted),
		Mean:      CalculateMean(sorted),
		P25:       CalculatePercentile(sorted, 25),
		P50:       CalculatePercentile(sorted, 50),
		P75:       CalculatePercentile(sorted, 75),
		P90:       CalculatePercentile(sorted, 90),
		P95:       CalculatePercentile(sorted, 95),
	}
}

// StageCount is a company count for one stage.
type StageCount struct {
	Stage string `json:"stage" yaml:"stage"`
	Count int    `json:"count" yaml:"count"`
}

// StateCounts counts companies by lifecycle state.
type StateCounts struct {
	Alive    int `json:"alive" yaml:"alive"`
	Failed   int `json:"failed" yaml:"failed"`
	Acquired int `json:"acquired" yaml:"acquired"`
}

// EntryStageMetrics describes the planned portfolio at one entry stage.
type EntryStageMetrics struct {
	Stage               string  `json:"stage" yaml:"stage"`
	CheckSize           float64 `json:"check_size" yaml:"check_size"`
	CapitalDeployed     float64 `json:"capital_deployed" yaml:"capital_deployed"`
	InitialOwnershipPct float64 `json:"initial_ownership_pct" yaml:"initial_ownership_pct"`
	Companies           int     `json:"companies" yaml:"companies"`
}

// Summary is the cross-scenario reduction of a run.
type Summary struct {
	RunID                  string              `json:"run_id" yaml:"run_id"`
	FundSize               float64             `json:"fund_size" yaml:"fund_size"`
	FollowOnReserve        float64             `json:"follow_on_reserve" yaml:"follow_on_reserve"`
	ProRataCeiling         float64             `json:"pro_rata_at_or_below" yaml:"pro_rata_at_or_below"`
	MOIC                   *MOICStats          `json:"moic" yaml:"moic"`
	Outcomes               []float64           `json:"moic_outcomes" yaml:"moic_outcomes"`
	AvgPortfolioSize       float64             `json:"avg_portfolio_size" yaml:"avg_portfolio_size"`
	EntryStages            []EntryStageMetrics `json:"entry_stages" yaml:"entry_stages"`
	OverallAvgOwnershipPct float64             `json:"overall_avg_ownership_pct" yaml:"overall_avg_ownership_pct"`
	PlannedCompanies       int                 `json:"planned_companies" yaml:"planned_companies"`
	CompaniesByStage       []StageCount        `json:"companies_by_stage" yaml:"companies_by_stage"`
	States                 StateCounts         `json:"states" yaml:"states"`
	ProRataCompanies       int                 `json:"pro_rata_companies" yaml:"pro_rata_companies"`
	NoProRataCompanies     int                 `json:"no_pro_rata_companies" yaml:"no_pro_rata_companies"`
	ProRataDecisions       ProRataCounts       `json:"pro_rata_decisions" yaml:"pro_rata_decisions"`
	TotalValueAlive        float64             `json:"total_value_alive" yaml:"total_value_alive"`
	TotalValueAcquired     float64             `json:"total_value_acquired" yaml:"total_value_acquired"`
}

// MOICOutcomes returns one MOIC per scenario, in scenario order.
func (m *Montecarlo) MOICOutcomes() []float64 {
	outcomes := make([]float64, len(m.Firms))
	for i, f := range m.Firms {
		outcomes[i] = f.MOIC()
	}
	return outcomes
}

// Summarize reduces every scenario into fund-level statistics.
// Counts and values are totals over all scenarios.
func (m *Montecarlo) Summarize() *Summary {
	cfg := m.config
	ladder := cfg.Ladder
	outcomes := m.MOICOutcomes()
	s := &Summary{
		RunID:            m.RunID,
		FundSize:         cfg.FundSize,
		FollowOnReserve:  cfg.FollowOnReserve,
		ProRataCeiling:   cfg.ProRataCeiling,
		MOIC:             NewMOICStats(outcomes),
		Outcomes:         outcomes,
		PlannedCompanies: cfg.PlannedCompanies(),
	}

	ownershipWeighted := 0.0
	for _, e := range cfg.Plan {
		pct := e.CheckSize / ladder.Stage(e.Stage).Valuation * 100
		s.EntryStages = append(s.EntryStages, EntryStageMetrics{
			Stage:               ladder.Name(e.Stage),
			CheckSize:           e.CheckSize,
			CapitalDeployed:     e.Allocation,
			InitialOwnershipPct: pct,
			Companies:           e.Companies,
		})
		ownershipWeighted += pct * float64(e.Companies)
	}
	if s.PlannedCompanies > 0 {
		s.OverallAvgOwnershipPct = ownershipWeighted / float64(s.PlannedCompanies)
	}

	byStage := make([]int, ladder.Len())
	portfolioSizes := make([]int, len(m.Firms))
	for i, f := range m.Firms {
		portfolioSizes[i] = len(f.Portfolio)
		for _, c := range f.Portfolio {
			byStage[c.Stage]++
			switch c.State {
			case Alive:
				s.States.Alive++
				s.TotalValueAlive += c.FirmValue()
			case Failed:
				s.States.Failed++
			case Acquired:
				s.States.Acquired++
				s.TotalValueAcquired += c.FirmValue()
			}
			if c.DidProRata() {
				s.ProRataCompanies++
			} else {
				s.NoProRataCompanies++
			}
			s.ProRataDecisions.add(c.ProRata)
		}
	}
	s.AvgPortfolioSize = CalculateMean(portfolioSizes)
	for i, n := range byStage {
		s.CompaniesByStage = append(s.CompaniesByStage, StageCount{Stage: ladder.Name(i), Count: n})
	}
	return s
}

// OutcomeTally is a company count and the firm's value in those companies.
type OutcomeTally struct {
	Count int     `json:"count" yaml:"count"`
	Value float64 `json:"value" yaml:"value"`
}

// EntryStageOutcome groups a scenario's companies by the stage they were
// bought at.
type EntryStageOutcome struct {
	Stage       string  `json:"stage" yaml:"stage"`
	Investments int     `json:"investments" yaml:"investments"`
	EndingValue float64 `json:"ending_value" yaml:"ending_value"`
}

// ScenarioDetail is the per-scenario record of a run.
type ScenarioDetail struct {
	Firm           string              `json:"firm" yaml:"firm"`
	MOIC           float64             `json:"moic" yaml:"moic"`
	TotalCompanies int                 `json:"total_companies" yaml:"total_companies"`
	EntryStages    []EntryStageOutcome `json:"entry_stages" yaml:"entry_stages"`
	Alive          OutcomeTally        `json:"alive" yaml:"alive"`
	Failed         OutcomeTally        `json:"failed" yaml:"failed"`
	Acquired       OutcomeTally        `json:"acquired" yaml:"acquired"`
}

// ScenarioDetails returns one record per scenario, in scenario order.
func (m *Montecarlo) ScenarioDetails() []ScenarioDetail {
	cfg := m.config
	details := make([]ScenarioDetail, len(m.Firms))
	for i, f := range m.Firms {
		d := ScenarioDetail{
			Firm:           f.Name,
			MOIC:           f.MOIC(),
			TotalCompanies: len(f.Portfolio),
			EntryStages:    make([]EntryStageOutcome, len(cfg.Plan)),
		}
		planIdx := make(map[int]int, len(cfg.Plan))
		for j, e := range cfg.Plan {
			d.EntryStages[j].Stage = cfg.Ladder.Name(e.Stage)
			planIdx[e.Stage] = j
		}
		for _, c := range f.Portfolio {
			if j, ok := planIdx[c.Initial.Stage]; ok {
				d.EntryStages[j].Investments++
				d.EntryStages[j].EndingValue += c.FirmValue()
			}
			switch c.State {
			case Alive:
				d.Alive.Count++
				d.Alive.Value += c.FirmValue()
			case Failed:
				d.Failed.Count++
			case Acquired:
				d.Acquired.Count++
				d.Acquired.Value += c.FirmValue()
			}
		}
		details[i] = d
	}
	return details
}

// DetailPercentages expresses scenario details as shares of the whole run.
type DetailPercentages struct {
	AliveCompaniesPct    float64 `json:"alive_companies_pct" yaml:"alive_companies_pct"`
	FailedCompaniesPct   float64 `json:"failed_companies_pct" yaml:"failed_companies_pct"`
	AcquiredCompaniesPct float64 `json:"acquired_companies_pct" yaml:"acquired_companies_pct"`
	AliveValuePct        float64 `json:"alive_value_pct" yaml:"alive_value_pct"`
	AcquiredValuePct     float64 `json:"acquired_value_pct" yaml:"acquired_value_pct"`
}

// SummarizeDetails computes company-outcome and value shares across details.
// Shares are 0 when there are no companies or no value.
func SummarizeDetails(details []ScenarioDetail) DetailPercentages {
	var p DetailPercentages
	var companies, alive, failed, acquired int
	var aliveValue, acquiredValue float64
	for _, d := range details {
		companies += d.TotalCompanies
		alive += d.Alive.Count
		failed += d.Failed.Count
		acquired += d.Acquired.Count
		aliveValue += d.Alive.Value
		acquiredValue += d.Acquired.Value
	}
	if companies > 0 {
		p.AliveCompaniesPct = float64(alive) / float64(companies) * 100
		p.FailedCompaniesPct = float64(failed) / float64(companies) * 100
		p.AcquiredCompaniesPct = float64(acquired) / float64(companies) * 100
	}
	if total := aliveValue + acquiredValue; total > 0 {
		p.AliveValuePct = aliveValue / total * 100
		p.AcquiredValuePct = acquiredValue / total * 100
	}
	return p
}

// PeriodAverage is the mean snapshot across scenarios for one period.
type PeriodAverage struct {
	Period        int       `json:"period" yaml:"period"`
	AliveByStage  []float64 `json:"alive_by_stage" yaml:"alive_by_stage"`
	Alive         float64   `json:"alive" yaml:"alive"`
	Failed        float64   `json:"failed" yaml:"failed"`
	Acquired      float64   `json:"acquired" yaml:"acquired"`
	AliveValue    float64   `json:"alive_value" yaml:"alive_value"`
	AcquiredValue float64   `json:"acquired_value" yaml:"acquired_value"`
}

// PeriodTrajectory averages the per-period snapshots of every scenario.
// Returns nil when there are no scenarios.
func (m *Montecarlo) PeriodTrajectory() []PeriodAverage {
	if len(m.Firms) == 0 {
		return nil
	}
	periods := len(m.Firms[0].Snapshots)
	for _, f := range m.Firms {
		periods = min(periods, len(f.Snapshots))
	}
	n := float64(len(m.Firms))
	out := make([]PeriodAverage, periods)
	for p := range out {
		avg := PeriodAverage{Period: p, AliveByStage: make([]float64, m.config.Ladder.Len())}
		for _, f := range m.Firms {
			s := f.Snapshots[p]
			for i, count := range s.AliveByStage {
				avg.AliveByStage[i] += float64(count)
			}
			avg.Alive += float64(s.Alive)
			avg.Failed += float64(s.Failed)
			avg.Acquired += float64(s.Acquired)
			avg.AliveValue += s.AliveValue
			avg.AcquiredValue += s.AcquiredValue
		}
		for i := range avg.AliveByStage {
			avg.AliveByStage[i] /= n
		}
		avg.Alive /= n
		avg.Failed /= n
		avg.Acquired /= n
		avg.AliveValue /= n
		avg.AcquiredValue /= n
		out[p] = avg
	}
	return out
}
