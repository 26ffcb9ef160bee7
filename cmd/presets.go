package cmd

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/monaco-sim/monaco/sim"
)

// presetsCmd prints the built-in market assumptions
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Show the built-in stage valuations, dilution and market scenarios",
	Run: func(cmd *cobra.Command, args []string) {
		if err := writePresets(cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func writePresets(w io.Writer) error {
	stages := sim.DefaultStages()
	valuations := sim.DefaultStageValuations()
	outsized := sim.OutsizedSeriesGValuations()
	dilution := sim.DefaultStageDilution()

	fmt.Fprintln(w, "Stage ladder")
	table := tablewriter.NewWriter(w)
	table.Header("Stage", "Valuation", "Valuation (outsized G)", "Dilution")
	for _, s := range stages {
		d := "-"
		if v, ok := dilution[s]; ok {
			d = fmt.Sprintf("%.0f%%", v*100)
		}
		table.Append(s, fmt.Sprintf("$%gM", valuations[s]), fmt.Sprintf("$%gM", outsized[s]), d)
	}
	table.Render()

	for _, name := range sim.MarketScenarioNames() {
		rates, err := sim.MarketScenario(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "\nMarket scenario %q (promote / fail / acquire per period)\n", name)
		table = tablewriter.NewWriter(w)
		table.Header("Stage", "Promote", "Fail", "Acquire", "Effective promote")
		for i, s := range stages {
			r := rates[s]
			effective := "-"
			if i < len(stages)-1 {
				tr := sim.StageTransition{Promote: r[0], Fail: r[1], Acquire: r[2]}
				effective = fmt.Sprintf("%.2f", tr.EffectivePromote())
			}
			table.Append(s, fmt.Sprintf("%.2f", r[0]), fmt.Sprintf("%.2f", r[1]), fmt.Sprintf("%.2f", r[2]), effective)
		}
		table.Render()
	}

	for _, name := range []string{sim.PresetDefault, sim.PresetMixed} {
		spec, err := sim.PresetSpec(name)
		if err != nil {
			return err
		}
		cfg, err := sim.NewConfig(spec)
		if err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
		fmt.Fprintf(w, "\nPreset %q: %s\n", name, cfg)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}
