package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/supply-sim/supply-sim/sim/optimize"
)

var (
	goalName      string // Optimization goal
	trials        int    // Number of search trials
	samplerName   string // Search sampler
	startupTrials int    // Random trials before TPE modelling starts
	includeTrials bool   // Print the full trial table
)

// optimizeCmd searches strategy parameters for the best outcome of a scenario
var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Search strategy parameters that maximize a goal under a scenario",
	Run: func(cmd *cobra.Command, args []string) {
		goal, err := optimize.ParseGoal(goalName)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if !optimize.IsValidSampler(samplerName) {
			logrus.Fatalf("Invalid sampler %q; valid: tpe, random", samplerName)
		}
		in, err := loadInputs(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		logrus.Infof("Optimizing %s over %d trials (%s sampler, seed %d, goals: %s)",
			goal, trials, samplerName, seed, strings.Join(optimize.GoalNames(), ", "))
		res, err := optimize.Optimize(ctx, in.runContext(), optimize.NewSearchSpace(in.cfg), optimize.Options{
			Goal:   goal,
			Trials: trials,
			Minimizer: optimize.GoptunaMinimizer{
				Sampler:       samplerName,
				Seed:          seed,
				StartupTrials: startupTrials,
			},
			Progress: func(done, total int) {
				logrus.Debugf("optimize: %d/%d trials", done, total)
			},
		})
		if err != nil {
			logrus.Fatalf("Optimization failed: %v", err)
		}
		if !includeTrials {
			res.Trials = nil
		}
		if err := writeOutput(os.Stdout, format, res); err != nil {
			logrus.Fatalf("Writing output: %v", err)
		}
	},
}

func init() {
	addScenarioFlags(optimizeCmd)
	optimizeCmd.Flags().StringVar(&goalName, "goal", string(optimize.GoalAnnualProfit), "Goal ("+strings.Join(optimize.GoalNames(), ", ")+")")
	optimizeCmd.Flags().IntVar(&trials, "trials", 50, "Number of search trials")
	optimizeCmd.Flags().StringVar(&samplerName, "sampler", optimize.SamplerTPE, "Search sampler (tpe, random)")
	optimizeCmd.Flags().IntVar(&startupTrials, "startup-trials", 0, "Random trials before TPE starts modelling (0 = library default)")
	optimizeCmd.Flags().BoolVar(&includeTrials, "trials-table", false, "Include every trial in the output")

	rootCmd.AddCommand(optimizeCmd)
}
