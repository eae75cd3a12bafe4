package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/supply-sim/supply-sim/sim"
	"github.com/supply-sim/supply-sim/sim/analysis"
	"github.com/supply-sim/supply-sim/sim/catalog"
	"github.com/supply-sim/supply-sim/sim/scenario"
)

var (
	crisisNames []string // Crises to evaluate; empty means the default set
	presetNames []string // Presets to compare; empty means all of them
)

// riskRow is the worst crisis for one production strategy.
type riskRow struct {
	Strategy    sim.ProductionStrategy `json:"strategy" yaml:"strategy"`
	WorstCrisis catalog.EventID        `json:"worst_crisis" yaml:"worst_crisis"`
	WorstLoss   float64                `json:"worst_loss" yaml:"worst_loss"`
}

// riskOutput is what `risk` prints.
type riskOutput struct {
	Matrix *analysis.RiskMatrix `json:"matrix" yaml:"matrix"`
	Worst  []riskRow            `json:"worst" yaml:"worst"`
}

// crises converts the --crises flag; nil selects the analysis defaults.
func crises() []catalog.EventID {
	if len(crisisNames) == 0 {
		return nil
	}
	out := make([]catalog.EventID, 0, len(crisisNames))
	for _, n := range crisisNames {
		out = append(out, catalog.EventID(n))
	}
	return out
}

// riskCmd prints first-month profit loss per production strategy and crisis
var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Profit loss of each production strategy under single month-1 crises",
	Run: func(cmd *cobra.Command, args []string) {
		in, err := loadInputs(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		m, err := analysis.ComputeRiskMatrix(in.runContext(), in.params, nil, crises())
		if err != nil {
			logrus.Fatalf("Risk analysis failed: %v", err)
		}
		out := riskOutput{Matrix: m, Worst: make([]riskRow, 0, len(m.Strategies))}
		for i, s := range m.Strategies {
			crisis, loss := m.Worst(i)
			out.Worst = append(out.Worst, riskRow{Strategy: s, WorstCrisis: crisis, WorstLoss: loss})
		}
		if err := writeOutput(os.Stdout, format, out); err != nil {
			logrus.Fatalf("Writing output: %v", err)
		}
	},
}

// compareCmd measures preset strategy sets against the same crises
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the strategy sets of built-in scenarios under the same crises",
	Run: func(cmd *cobra.Command, args []string) {
		in, err := loadInputs(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		names := presetNames
		if len(names) == 0 {
			names = scenario.PresetNames()
		}
		sets := []analysis.NamedParameters{{Name: "baseline", Parameters: sim.DefaultParameters(in.cfg)}}
		for _, name := range names {
			s, err := scenario.Preset(name)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			p, err := s.Parameters(in.cfg)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			sets = append(sets, analysis.NamedParameters{Name: name, Parameters: p})
		}
		rows, err := analysis.CompareCrises(in.runContext(), sets, crises())
		if err != nil {
			logrus.Fatalf("Comparison failed: %v", err)
		}
		if err := writeOutput(os.Stdout, format, rows); err != nil {
			logrus.Fatalf("Writing output: %v", err)
		}
	},
}

func init() {
	addStrategyFlags(riskCmd)
	riskCmd.Flags().StringSliceVar(&crisisNames, "crises", nil, "Comma-separated crisis event ids (default: port strike, supplier crisis, demand surge, logistics failure)")
	compareCmd.Flags().StringSliceVar(&crisisNames, "crises", nil, "Comma-separated crisis event ids")
	compareCmd.Flags().StringSliceVar(&presetNames, "presets", nil, "Comma-separated presets to compare (default: all)")

	rootCmd.AddCommand(riskCmd)
	rootCmd.AddCommand(compareCmd)
}
