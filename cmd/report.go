package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/monaco-sim/monaco/sim"
)

// Output formats accepted by --output.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// Breakdown modes accepted by --breakdown.
const (
	breakdownNone        = ""
	breakdownBins        = "bins"
	breakdownPercentiles = "percentiles"
)

// Report is everything a run prints.
type Report struct {
	Summary           *sim.Summary              `json:"summary" yaml:"summary"`
	Trajectory        []sim.PeriodAverage       `json:"trajectory" yaml:"trajectory"`
	Bins              []*sim.Breakdown          `json:"bins,omitempty" yaml:"bins,omitempty"`
	BinWidth          float64                   `json:"bin_width,omitempty" yaml:"bin_width,omitempty"`
	Percentiles       []sim.PercentileBreakdown `json:"percentiles,omitempty" yaml:"percentiles,omitempty"`
	Details           []sim.ScenarioDetail      `json:"details,omitempty" yaml:"details,omitempty"`
	DetailPercentages *sim.DetailPercentages    `json:"detail_percentages,omitempty" yaml:"detail_percentages,omitempty"`
}

type reportOptions struct {
	breakdown string
	bins      int
	maxMOIC   float64
	details   bool
}

func buildReport(m *sim.Montecarlo, opts reportOptions) Report {
	r := Report{
		Summary:    m.Summarize(),
		Trajectory: m.PeriodTrajectory(),
	}
	switch opts.breakdown {
	case breakdownBins:
		r.Bins = m.BreakdownByBins(opts.bins, opts.maxMOIC)
		r.BinWidth = opts.maxMOIC / float64(opts.bins)
	case breakdownPercentiles:
		r.Percentiles = m.BreakdownByPercentile()
	}
	if opts.details {
		r.Details = m.ScenarioDetails()
		p := sim.SummarizeDetails(r.Details)
		r.DetailPercentages = &p
	}
	return r
}

// writeReport renders r in the requested format.
func writeReport(w io.Writer, r Report, format string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case outputTable:
		writeReportTables(w, r)
		return nil
	}
	return fmt.Errorf("unknown output format %q (want %s, %s or %s)", format, outputTable, outputJSON, outputYAML)
}

func writeReportTables(w io.Writer, r Report) {
	s := r.Summary
	fmt.Fprintf(w, "=== Fund Simulation %s ===\n", s.RunID)

	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Value")
	table.Append("Fund Size", fmt.Sprintf("$%gM", s.FundSize))
	table.Append("Follow-on Reserve (adjusted)", fmt.Sprintf("$%gM", s.FollowOnReserve))
	table.Append("Pro-Rata Valuation Threshold", fmt.Sprintf("$%gM", s.ProRataCeiling))
	table.Append("Planned Companies", fmt.Sprintf("%d", s.PlannedCompanies))
	table.Append("Avg Portfolio Size", fmt.Sprintf("%.1f", s.AvgPortfolioSize))
	table.Append("Overall Ownership (initial)", fmt.Sprintf("%.2f%%", s.OverallAvgOwnershipPct))
	table.Append("Alive / Failed / Acquired", fmt.Sprintf("%d / %d / %d", s.States.Alive, s.States.Failed, s.States.Acquired))
	table.Append("Pro Rata / No Pro Rata Companies", fmt.Sprintf("%d / %d", s.ProRataCompanies, s.NoProRataCompanies))
	table.Append("Times Pro Rata", fmt.Sprintf("%d", s.ProRataDecisions.Invested))
	table.Append("Passed: out of reserve", fmt.Sprintf("%d", s.ProRataDecisions.SkippedInsufficientReserve))
	table.Append("Passed: too late stage", fmt.Sprintf("%d", s.ProRataDecisions.SkippedTooLateStage))
	table.Append("Total Value Alive", fmt.Sprintf("$%.0fM", s.TotalValueAlive))
	table.Append("Total Value Acquired", fmt.Sprintf("$%.0fM", s.TotalValueAcquired))
	table.Render()

	if s.MOIC != nil {
		fmt.Fprintf(w, "\nMOIC over %d scenarios\n", s.MOIC.Scenarios)
		table = tablewriter.NewWriter(w)
		table.Header("Mean", "P25", "P50", "P75", "P90", "P95")
		table.Append(moic(s.MOIC.Mean), moic(s.MOIC.P25), moic(s.MOIC.P50), moic(s.MOIC.P75), moic(s.MOIC.P90), moic(s.MOIC.P95))
		table.Render()
	}

	fmt.Fprintln(w, "\nEntry stages")
	table = tablewriter.NewWriter(w)
	table.Header("Stage", "Check", "Deployed", "Ownership", "Companies")
	for _, e := range s.EntryStages {
		table.Append(e.Stage, fmt.Sprintf("$%gM", e.CheckSize), fmt.Sprintf("$%gM", e.CapitalDeployed),
			fmt.Sprintf("%.2f%%", e.InitialOwnershipPct), fmt.Sprintf("%d", e.Companies))
	}
	table.Render()

	fmt.Fprintln(w, "\nCompanies by final stage")
	table = tablewriter.NewWriter(w)
	table.Header("Stage", "Companies")
	for _, sc := range s.CompaniesByStage {
		table.Append(sc.Stage, fmt.Sprintf("%d", sc.Count))
	}
	table.Render()

	if len(r.Trajectory) > 0 {
		fmt.Fprintln(w, "\nAverage portfolio by period")
		table = tablewriter.NewWriter(w)
		table.Header("Period", "Alive", "Failed", "Acquired", "Alive Value", "Acquired Value")
		for _, p := range r.Trajectory {
			table.Append(fmt.Sprintf("%d", p.Period), fmt.Sprintf("%.1f", p.Alive), fmt.Sprintf("%.1f", p.Failed),
				fmt.Sprintf("%.1f", p.Acquired), fmt.Sprintf("$%.2fM", p.AliveValue), fmt.Sprintf("$%.2fM", p.AcquiredValue))
		}
		table.Render()
	}

	for i, b := range r.Bins {
		if b == nil {
			continue
		}
		lo := float64(i) * r.BinWidth
		label := fmt.Sprintf("MOIC %.2fx-%.2fx", lo, lo+r.BinWidth)
		if i == len(r.Bins)-1 {
			label = fmt.Sprintf("MOIC >= %.2fx", lo)
		}
		writeBreakdown(w, label, b)
	}
	for _, p := range r.Percentiles {
		writeBreakdown(w, fmt.Sprintf("%s (scenarios %d-%d)", p.Key, p.Lo, p.Hi-1), p.Breakdown)
	}

	if r.DetailPercentages != nil {
		d := r.DetailPercentages
		fmt.Fprintln(w, "\nScenario outcomes")
		table = tablewriter.NewWriter(w)
		table.Header("Alive %", "Failed %", "Acquired %", "Alive Value %", "Acquired Value %")
		table.Append(fmt.Sprintf("%.1f", d.AliveCompaniesPct), fmt.Sprintf("%.1f", d.FailedCompaniesPct),
			fmt.Sprintf("%.1f", d.AcquiredCompaniesPct), fmt.Sprintf("%.1f", d.AliveValuePct), fmt.Sprintf("%.1f", d.AcquiredValuePct))
		table.Render()

		table = tablewriter.NewWriter(w)
		table.Header("Firm", "MOIC", "Companies", "Alive", "Failed", "Acquired", "Alive Value", "Acquired Value")
		for _, d := range r.Details {
			table.Append(d.Firm, moic(d.MOIC), fmt.Sprintf("%d", d.TotalCompanies),
				fmt.Sprintf("%d", d.Alive.Count), fmt.Sprintf("%d", d.Failed.Count), fmt.Sprintf("%d", d.Acquired.Count),
				fmt.Sprintf("$%.2fM", d.Alive.Value), fmt.Sprintf("$%.2fM", d.Acquired.Value))
		}
		table.Render()
	}
}

func writeBreakdown(w io.Writer, label string, b *sim.Breakdown) {
	fmt.Fprintf(w, "\n%s: %d scenarios\n", label, b.Scenarios)
	table := tablewriter.NewWriter(w)
	table.Header("Segment", "Type", "Avg Count", "Avg Value")
	for _, seg := range b.Segments {
		table.Append(seg.Label, string(seg.Type), fmt.Sprintf("%.1f", seg.Count), fmt.Sprintf("$%.2fM", seg.Value))
	}
	table.Render()
}

func moic(v float64) string { return fmt.Sprintf("%.2fx", v) }
