package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/monaco-sim/monaco/sim/experiment"
)

var (
	// sweep axes
	sweepFundSizes       []float64
	sweepReserves        []float64
	sweepCeilings        []float64
	sweepScenarios       []int
	sweepCompareReinvest bool
)

// sweepCmd compares strategies over a grid of fund parameters
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Compare fund strategies across a grid of parameters",
	Long: `Runs every combination of the given fund sizes, follow-on reserves and
pro-rata ceilings on top of the base configuration. Combinations whose primary
investments and reserve do not add up to the fund size are skipped.`,
	Run: func(cmd *cobra.Command, args []string) {
		src := specSource{configPath: configPath, preset: preset, market: market, scenarios: scenarios}
		base, err := src.load()
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		s := experiment.Sweep{
			Base:             base,
			FundSizes:        sweepFundSizes,
			FollowOnReserves: sweepReserves,
			ProRataCeilings:  sweepCeilings,
			NumScenarios:     sweepScenarios,
		}
		if sweepCompareReinvest {
			s.ReinvestUnusedReserve = []bool{true, false}
		}
		cfgs, skipped := s.Configurations()
		if len(cfgs) == 0 {
			logrus.Fatalf("None of the %d combinations is a valid configuration", skipped)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		results, err := experiment.RunStrategies(ctx, cfgs, seed, workers)
		if err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}
		writeGrid(cmd.OutOrStdout(), experiment.Table(results))
		if skipped > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%d invalid combinations skipped\n", skipped)
		}
	},
}

func writeGrid(w io.Writer, g experiment.Grid) {
	table := tablewriter.NewWriter(w)
	table.Header(cells(g.Header)...)
	for _, row := range g.Rows {
		table.Append(cells(row)...)
	}
	table.Render()
}

func cells(row []string) []any {
	out := make([]any, len(row))
	for i, c := range row {
		out[i] = c
	}
	return out
}

func init() {
	addSpecFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&sweepFundSizes, "fund-sizes", nil, "Comma-separated fund sizes to try")
	sweepCmd.Flags().Float64SliceVar(&sweepReserves, "reserves", nil, "Comma-separated follow-on reserves to try")
	sweepCmd.Flags().Float64SliceVar(&sweepCeilings, "ceilings", nil, "Comma-separated pro-rata valuation ceilings to try")
	sweepCmd.Flags().IntSliceVar(&sweepScenarios, "scenario-counts", nil, "Comma-separated scenario counts to try")
	sweepCmd.Flags().BoolVar(&sweepCompareReinvest, "compare-reinvest", false, "Run every combination with and without redeploying unused reserve")

	rootCmd.AddCommand(sweepCmd)
}
