package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/supply-sim/supply-sim/sim"
	"github.com/supply-sim/supply-sim/sim/montecarlo"
)

var (
	runs           int  // Number of Monte Carlo repetitions
	workers        int  // Worker goroutines; 0 means one per CPU
	includeRecords bool // Print every run record, not just the aggregate
)

// montecarloOutput is what `montecarlo` prints.
type montecarloOutput struct {
	ID         string                 `json:"id" yaml:"id"`
	Scenario   string                 `json:"scenario" yaml:"scenario"`
	Seed       int64                  `json:"seed" yaml:"seed"`
	Parameters sim.StrategyParameters `json:"parameters" yaml:"parameters"`
	Summary    montecarlo.Summary     `json:"summary" yaml:"summary"`
	Records    []montecarlo.RunRecord `json:"records,omitempty" yaml:"records,omitempty"`
	Partial    bool                   `json:"partial,omitempty" yaml:"partial,omitempty"`
}

// montecarloCmd repeats the scenario with independently seeded runs
var montecarloCmd = &cobra.Command{
	Use:   "montecarlo",
	Short: "Repeat a scenario many times and aggregate the outcomes",
	Run: func(cmd *cobra.Command, args []string) {
		in, err := loadInputs(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		step := max(runs/10, 1)
		batch, err := montecarlo.Run(ctx, in.runContext(), in.params, montecarlo.Options{
			Runs:    runs,
			Workers: workers,
			Progress: func(done, total int) {
				if done%step == 0 || done == total {
					logrus.Infof("montecarlo: %d/%d runs", done, total)
				}
			},
		})
		partial := false
		if err != nil {
			if batch == nil || ctx.Err() == nil {
				logrus.Fatalf("Monte Carlo failed: %v", err)
			}
			logrus.Warnf("Monte Carlo interrupted: reporting %d of %d runs", len(batch.Records), runs)
			partial = true
		}

		out := montecarloOutput{
			ID:         batch.ID,
			Scenario:   in.scenario.Name,
			Seed:       batch.Seed,
			Parameters: batch.Parameters,
			Summary:    montecarlo.Aggregate(batch.Records),
			Partial:    partial,
		}
		if includeRecords {
			out.Records = batch.Records
		}
		if err := writeOutput(os.Stdout, format, out); err != nil {
			logrus.Fatalf("Writing output: %v", err)
		}
	},
}

func init() {
	addScenarioFlags(montecarloCmd)
	addStrategyFlags(montecarloCmd)
	montecarloCmd.Flags().IntVar(&runs, "runs", 100, "Number of repetitions")
	montecarloCmd.Flags().IntVar(&workers, "workers", 0, "Parallel workers (0 = one per CPU)")
	montecarloCmd.Flags().BoolVar(&includeRecords, "records", false, "Include every run record in the output")

	rootCmd.AddCommand(montecarloCmd)
}
