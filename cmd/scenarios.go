package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/supply-sim/supply-sim/sim"
	"github.com/supply-sim/supply-sim/sim/catalog"
	"github.com/supply-sim/supply-sim/sim/scenario"
)

// presetRow describes one built-in scenario.
type presetRow struct {
	Name        string                 `json:"name" yaml:"name"`
	Description string                 `json:"description" yaml:"description"`
	Plan        sim.Plan               `json:"plan" yaml:"plan"`
	Parameters  sim.StrategyParameters `json:"parameters" yaml:"parameters"`
}

// eventRow describes one catalog event.
type eventRow struct {
	ID            catalog.EventID   `json:"id" yaml:"id"`
	Type          catalog.EventType `json:"type" yaml:"type"`
	Geographic    bool              `json:"geographic" yaml:"geographic"`
	Interventions []string          `json:"interventions" yaml:"interventions"`
	Triggers      catalog.EventID   `json:"triggers,omitempty" yaml:"triggers,omitempty"`
	Delay         int               `json:"delay,omitempty" yaml:"delay,omitempty"`
	Probability   float64           `json:"probability,omitempty" yaml:"probability,omitempty"`
}

// listPresets builds the preset table for cfg.
func listPresets(cfg *sim.Config) ([]presetRow, error) {
	rows := make([]presetRow, 0)
	for _, name := range scenario.PresetNames() {
		s, err := scenario.Preset(name)
		if err != nil {
			return nil, err
		}
		p, err := s.Parameters(cfg)
		if err != nil {
			return nil, err
		}
		rows = append(rows, presetRow{Name: s.Name, Description: s.Description, Plan: s.Plan, Parameters: p})
	}
	return rows, nil
}

// listEvents builds the event table for cat.
func listEvents(cat *catalog.Catalog) ([]eventRow, error) {
	rows := make([]eventRow, 0)
	for _, id := range cat.EventIDs() {
		ev, err := cat.Event(id)
		if err != nil {
			return nil, err
		}
		row := eventRow{ID: id, Type: ev.Type, Geographic: ev.Geographic, Interventions: ev.InterventionIDs()}
		if r, ok := cat.Rule(id); ok {
			row.Triggers, row.Delay, row.Probability = r.Triggers, r.Delay, r.Probability
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// validateAll checks the configuration, catalog, every preset, and the selected scenario.
func validateAll(cfgPath, catPath, preset, path string) error {
	cfg, err := sim.LoadConfig(cfgPath)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(catPath)
	if err != nil {
		return err
	}
	for _, name := range scenario.PresetNames() {
		s, err := scenario.Preset(name)
		if err != nil {
			return err
		}
		if err := s.Validate(cfg, cat); err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
	}
	if preset == "" && path == "" {
		return nil
	}
	s, err := loadScenario(preset, path)
	if err != nil {
		return err
	}
	return s.Validate(cfg, cat)
}

// scenariosCmd lists the built-in scenarios
var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the built-in scenarios",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := sim.LoadConfig(configPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		rows, err := listPresets(cfg)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := writeOutput(os.Stdout, format, rows); err != nil {
			logrus.Fatalf("Writing output: %v", err)
		}
	},
}

// eventsCmd lists the events of the active catalog
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List catalog events, their interventions and cascade rules",
	Run: func(cmd *cobra.Command, args []string) {
		cat, err := loadCatalog(catalogPath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		rows, err := listEvents(cat)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := writeOutput(os.Stdout, format, rows); err != nil {
			logrus.Fatalf("Writing output: %v", err)
		}
	},
}

// validateCmd checks inputs without simulating
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration, catalog and scenarios",
	Run: func(cmd *cobra.Command, args []string) {
		if err := validateAll(configPath, catalogPath, presetName, scenarioPath); err != nil {
			logrus.Fatalf("Validation failed: %v", err)
		}
		fmt.Fprintln(os.Stdout, "ok")
	},
}

func init() {
	addScenarioFlags(validateCmd)

	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(validateCmd)
}
