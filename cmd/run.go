package cmd

import (
	"context"
	"os"
	"os/signal"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/monaco-sim/monaco/sim"
)

var (
	// CLI flags shared by run and sweep
	configPath string // YAML or TOML fund description
	preset     string // Built-in fund preset when no config file is given
	market     string // Built-in graduation-rate table overriding the config
	seed       int64  // Seed for the random streams
	scenarios  int    // Scenario count override
	workers    int    // Goroutines running scenarios in parallel

	// run-only flags
	sequential    bool    // Use the single shared stream instead of per-scenario streams
	breakdownMode string  // Portfolio composition breakdown: bins or percentiles
	numBins       int     // Number of MOIC bins
	maxMOIC       float64 // Upper edge of the last MOIC bin
	showDetails   bool    // Print one record per scenario
	outputFormat  string  // table, json or yaml
)

// runCmd simulates one fund configuration
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate one fund configuration",
	Run: func(cmd *cobra.Command, args []string) {
		switch breakdownMode {
		case breakdownNone, breakdownBins, breakdownPercentiles:
		default:
			logrus.Fatalf("Invalid --breakdown %q (want %s or %s)", breakdownMode, breakdownBins, breakdownPercentiles)
		}
		if breakdownMode == breakdownBins && (numBins < 1 || maxMOIC <= 0) {
			logrus.Fatalf("--bins must be >= 1 and --max-moic > 0, got %d and %g", numBins, maxMOIC)
		}

		src := specSource{configPath: configPath, preset: preset, market: market, scenarios: scenarios}
		cfg, err := src.buildConfig()
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Starting simulation: %s", cfg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		m := sim.NewMontecarlo(cfg)
		if sequential {
			err = m.Simulate(seed)
		} else {
			err = m.RunParallel(ctx, seed, workers)
		}
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		report := buildReport(m, reportOptions{
			breakdown: breakdownMode,
			bins:      numBins,
			maxMOIC:   maxMOIC,
			details:   showDetails,
		})
		if err := writeReport(cmd.OutOrStdout(), report, outputFormat); err != nil {
			logrus.Fatalf("Writing report: %v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// addSpecFlags registers the flags that pick and override a fund spec.
func addSpecFlags(c *cobra.Command) {
	c.Flags().StringVar(&configPath, "config", "", "Fund description file (.yaml, .yml or .toml); overrides --preset")
	c.Flags().StringVar(&preset, "preset", sim.PresetDefault, "Built-in fund preset (default, mixed)")
	c.Flags().StringVar(&market, "market", "", "Graduation-rate table to apply (market, above, below)")
	c.Flags().Int64Var(&seed, "seed", 42, "Seed for the random streams")
	c.Flags().IntVar(&scenarios, "scenarios", 0, "Number of scenarios (0 keeps the configured value)")
	c.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "Goroutines running scenarios in parallel")
}

func init() {
	addSpecFlags(runCmd)
	runCmd.Flags().BoolVar(&sequential, "sequential", false, "Run every scenario on one shared random stream")
	runCmd.Flags().StringVar(&breakdownMode, "breakdown", "", "Portfolio breakdown: bins or percentiles")
	runCmd.Flags().IntVar(&numBins, "bins", sim.DefaultBreakdownBins, "Number of MOIC bins for --breakdown bins")
	runCmd.Flags().Float64Var(&maxMOIC, "max-moic", sim.DefaultBreakdownCap, "MOIC at which the last bin starts collecting")
	runCmd.Flags().BoolVar(&showDetails, "details", false, "Include one record per scenario")
	runCmd.Flags().StringVar(&outputFormat, "output", outputTable, "Output format (table, json, yaml)")

	rootCmd.AddCommand(runCmd)
}
