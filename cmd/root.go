package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/supply-sim/supply-sim/sim"
	"github.com/supply-sim/supply-sim/sim/trace"
)

var (
	// Inputs shared by every subcommand
	configPath  string // Path to the network and strategy configuration
	catalogPath string // Optional event catalog file; empty means the built-in catalog
	logLevel    string // Log verbosity level
	seed        int64  // Master seed for events, cascades and noise
	noNoise     bool   // Disable the monthly profit and OTIF noise
	format      string // Output format (json, yaml)

	// Scenario selection
	presetName   string // Built-in scenario name
	scenarioPath string // Scenario YAML file

	// run-only flags
	traceLevel string // Decision trace verbosity
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "supply-sim",
	Short: "Month-by-month supply chain strategy simulator",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
		if !isValidFormat(format) {
			logrus.Fatalf("Invalid output format %q; valid: json, yaml", format)
		}
	},
}

// runCmd simulates one year of the selected scenario
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate one year under a scenario and strategy",
	Run: func(cmd *cobra.Command, args []string) {
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level %q; valid: none, decisions", traceLevel)
		}
		in, err := loadInputs(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		rc := in.runContext()
		rc.TraceLevel = trace.TraceLevel(traceLevel)

		logrus.Infof("Running scenario %q with seed %d", in.scenario.Name, seed)
		res, err := sim.RunSingle(rc, in.params)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		out := runOutput{Scenario: in.scenario.Name, Result: res}
		if res.Trace != nil {
			out.Trace = res.Trace
			out.TraceSummary = trace.Summarize(res.Trace)
		}
		if err := writeOutput(os.Stdout, format, out); err != nil {
			logrus.Fatalf("Writing output: %v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// runOutput is what `run` prints.
type runOutput struct {
	Scenario     string                 `json:"scenario" yaml:"scenario"`
	Result       *sim.RunResult         `json:"result" yaml:"result"`
	Trace        *trace.SimulationTrace `json:"trace,omitempty" yaml:"trace,omitempty"`
	TraceSummary *trace.TraceSummary    `json:"trace_summary,omitempty" yaml:"trace_summary,omitempty"`
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addScenarioFlags registers the scenario selection flags on c.
func addScenarioFlags(c *cobra.Command) {
	c.Flags().StringVar(&presetName, "preset", "", "Built-in scenario (see `supply-sim scenarios`)")
	c.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario YAML file")
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "defaults.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Event catalog YAML file (default: built-in catalog)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42, "Master seed for events, cascades and noise")
	rootCmd.PersistentFlags().BoolVar(&noNoise, "no-noise", false, "Disable monthly profit and OTIF noise")
	rootCmd.PersistentFlags().StringVar(&format, "format", formatJSON, "Output format (json, yaml)")

	addScenarioFlags(runCmd)
	addStrategyFlags(runCmd)
	runCmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Decision trace level (none, decisions)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
