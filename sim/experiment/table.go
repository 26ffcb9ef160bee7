package experiment

import (
	"fmt"

	"github.com/monaco-sim/monaco/sim"
)

// Grid is a metric-by-strategy table of formatted cells.
type Grid struct {
	Header []string
	Rows   [][]string
}

// metric renders one table row; ok is false when the strategy has no value.
type metric struct {
	name  string
	value func(r StrategyResult) (string, bool)
}

const notAvailable = "N/A"

func money(v float64) string    { return fmt.Sprintf("$%.0fM", v) }
func money1(v float64) string   { return fmt.Sprintf("$%.1fM", v) }
func percent(v float64) string  { return fmt.Sprintf("%.2f%%", v) }
func count(v int) string        { return fmt.Sprintf("%d", v) }
func multiple(v float64) string { return fmt.Sprintf("%.2fx", v) }

func always(s string) (string, bool) { return s, true }

// Table lays results out with one row per metric and one column per
// strategy. Entry-stage rows cover every stage any strategy invests in;
// stage-count rows cover every stage of any strategy's ladder.
func Table(results []StrategyResult) Grid {
	g := Grid{Header: []string{"Metric"}}
	for _, r := range results {
		g.Header = append(g.Header, r.Name)
	}
	for _, m := range metrics(results) {
		row := []string{m.name}
		for _, r := range results {
			cell, ok := m.value(r)
			if !ok {
				cell = notAvailable
			}
			row = append(row, cell)
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

func metrics(results []StrategyResult) []metric {
	entryStages, ladderStages := stageUnion(results)

	ms := []metric{
		{"Fund Size", func(r StrategyResult) (string, bool) { return always(money(r.Summary.FundSize)) }},
		{"Follow-on Capital Reserved", func(r StrategyResult) (string, bool) { return always(money1(r.Summary.FollowOnReserve)) }},
		{"Pro-Rata Valuation Threshold", func(r StrategyResult) (string, bool) { return always(money(r.Summary.ProRataCeiling)) }},
	}
	for _, stage := range entryStages {
		ms = append(ms,
			metric{"Initial " + stage + " Check Size", entryValue(stage, func(e sim.EntryStageMetrics) string { return money1(e.CheckSize) })},
			metric{"Total " + stage + " Capital Deployed", entryValue(stage, func(e sim.EntryStageMetrics) string { return money1(e.CapitalDeployed) })},
			metric{stage + " Avg Ownership (initial)", entryValue(stage, func(e sim.EntryStageMetrics) string { return percent(e.InitialOwnershipPct) })},
		)
	}
	ms = append(ms,
		metric{"Overall Ownership (initial)", func(r StrategyResult) (string, bool) { return always(percent(r.Summary.OverallAvgOwnershipPct)) }},
		metric{"Avg actual portfolio size", func(r StrategyResult) (string, bool) {
			return always(fmt.Sprintf("%.1f", r.Summary.AvgPortfolioSize))
		}},
		metric{"Total # of Portfolio Companies", func(r StrategyResult) (string, bool) { return always(count(r.Summary.PlannedCompanies)) }},
	)
	for _, stage := range entryStages {
		ms = append(ms, metric{"# of " + stage + " Companies (original)",
			entryValue(stage, func(e sim.EntryStageMetrics) string { return count(e.Companies) })})
	}
	for _, stage := range ladderStages {
		ms = append(ms, metric{"# of " + stage + " Companies", func(r StrategyResult) (string, bool) {
			for _, sc := range r.Summary.CompaniesByStage {
				if sc.Stage == stage {
					return count(sc.Count), true
				}
			}
			return "", false
		}})
	}
	ms = append(ms,
		metric{"# of Alive Companies", func(r StrategyResult) (string, bool) { return always(count(r.Summary.States.Alive)) }},
		metric{"# of Failed Companies", func(r StrategyResult) (string, bool) { return always(count(r.Summary.States.Failed)) }},
		metric{"# of Acquired Companies", func(r StrategyResult) (string, bool) { return always(count(r.Summary.States.Acquired)) }},
		metric{"# of Pro Rata Companies", func(r StrategyResult) (string, bool) { return always(count(r.Summary.ProRataCompanies)) }},
		metric{"# of No Pro Rata Companies", func(r StrategyResult) (string, bool) { return always(count(r.Summary.NoProRataCompanies)) }},
		metric{"# of times pro rata", func(r StrategyResult) (string, bool) { return always(count(r.Summary.ProRataDecisions.Invested)) }},
		metric{"# times pass on pro rata: out of reserved capital", func(r StrategyResult) (string, bool) {
			return always(count(r.Summary.ProRataDecisions.SkippedInsufficientReserve))
		}},
		metric{"# times pass on pro rata: too late stage", func(r StrategyResult) (string, bool) {
			return always(count(r.Summary.ProRataDecisions.SkippedTooLateStage))
		}},
		metric{"Total Value from Acquired Companies", func(r StrategyResult) (string, bool) { return always(money(r.Summary.TotalValueAcquired)) }},
		metric{"Total Value from Alive Companies", func(r StrategyResult) (string, bool) { return always(money(r.Summary.TotalValueAlive)) }},
		moicMetric("25th Percentile MOIC", func(s *sim.MOICStats) float64 { return s.P25 }),
		moicMetric("50th Percentile MOIC", func(s *sim.MOICStats) float64 { return s.P50 }),
		moicMetric("75th Percentile MOIC", func(s *sim.MOICStats) float64 { return s.P75 }),
		moicMetric("90th Percentile MOIC", func(s *sim.MOICStats) float64 { return s.P90 }),
		moicMetric("95th Percentile MOIC", func(s *sim.MOICStats) float64 { return s.P95 }),
		moicMetric("Total MOIC (mean)", func(s *sim.MOICStats) float64 { return s.Mean }),
	)
	return ms
}

func entryValue(stage string, format func(sim.EntryStageMetrics) string) func(StrategyResult) (string, bool) {
	return func(r StrategyResult) (string, bool) {
		for _, e := range r.Summary.EntryStages {
			if e.Stage == stage {
				return format(e), true
			}
		}
		return "", false
	}
}

func moicMetric(name string, pick func(*sim.MOICStats) float64) metric {
	return metric{name, func(r StrategyResult) (string, bool) {
		if r.Summary.MOIC == nil {
			return "", false
		}
		return multiple(pick(r.Summary.MOIC)), true
	}}
}

// stageUnion returns entry stages and ladder stages across results in first
// seen order.
func stageUnion(results []StrategyResult) (entry, ladder []string) {
	seenEntry := make(map[string]bool)
	seenLadder := make(map[string]bool)
	for _, r := range results {
		for _, e := range r.Summary.EntryStages {
			if !seenEntry[e.Stage] {
				seenEntry[e.Stage] = true
				entry = append(entry, e.Stage)
			}
		}
		for _, sc := range r.Summary.CompaniesByStage {
			if !seenLadder[sc.Stage] {
				seenLadder[sc.Stage] = true
				ladder = append(ladder, sc.Stage)
			}
		}
	}
	return entry, ladder
}
