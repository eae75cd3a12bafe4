package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/supply-sim/supply-sim/sim"
	"github.com/supply-sim/supply-sim/sim/catalog"
	"github.com/supply-sim/supply-sim/sim/scenario"
)

// strategyFlags holds the CLI overrides for strategy parameters. A flag only takes
// effect when the user set it (cmd.Flags().Changed), so scenario values survive.
type strategyFlags struct {
	singleSourcing       float64
	logisticsOutsourcing float64
	production           string
	transport            string
	inventory            string
	seasonality          bool
	specialSKU           bool
	forecast             string
	dataSources          []string
}

var overrides strategyFlags

// addStrategyFlags registers the strategy override flags on c.
func addStrategyFlags(c *cobra.Command) {
	c.Flags().Float64Var(&overrides.singleSourcing, "single-sourcing", 0, "Single sourcing ratio in [0, 1]")
	c.Flags().Float64Var(&overrides.logisticsOutsourcing, "logistics-outsourcing", 0, "Logistics outsourcing ratio in [0, 1]")
	c.Flags().StringVar(&overrides.production, "production", "", "Production strategy (current, agile_hub_south_africa, agile_hub_turkey)")
	c.Flags().StringVar(&overrides.transport, "transport", "", "Agile hub transport mode (default, air_freight, sea_freight)")
	c.Flags().StringVar(&overrides.inventory, "inventory", "", "Inventory strategy (current_policy, liquidate_excess, seasonal_build, sku_optimization, key_account_priority)")
	c.Flags().BoolVar(&overrides.seasonality, "seasonality", false, "Enable the seasonal OTIF penalty")
	c.Flags().BoolVar(&overrides.specialSKU, "special-sku", false, "Introduce the special SKU")
	c.Flags().StringVar(&overrides.forecast, "forecast", "", "Forecast algorithm (seasonal_arima, gradient_boosting)")
	c.Flags().StringSliceVar(&overrides.dataSources, "data-sources", nil, "Comma-separated data sources (market_trends, competitor_pricing, macro_indicators)")
}

// apply copies every flag the user set onto p.
func (f strategyFlags) apply(c *cobra.Command, p *sim.StrategyParameters) {
	flags := c.Flags()
	if flags.Changed("single-sourcing") {
		p.SingleSourcingRatio = f.singleSourcing
	}
	if flags.Changed("logistics-outsourcing") {
		p.LogisticsOutsourcingRatio = f.logisticsOutsourcing
	}
	if flags.Changed("production") {
		p.Production = sim.ProductionStrategy(f.production)
	}
	if flags.Changed("transport") {
		p.Transport = sim.TransportMode(f.transport)
	}
	if flags.Changed("inventory") {
		p.Inventory = sim.InventoryStrategy(f.inventory)
	}
	if flags.Changed("seasonality") {
		p.Seasonality = f.seasonality
	}
	if flags.Changed("special-sku") {
		p.SpecialSKU = f.specialSKU
	}
	if flags.Changed("forecast") {
		p.Forecast = sim.ForecastAlgorithm(f.forecast)
	}
	if flags.Changed("data-sources") {
		p.DataSources = make([]sim.DataSource, 0, len(f.dataSources))
		for _, ds := range f.dataSources {
			p.DataSources = append(p.DataSources, sim.DataSource(ds))
		}
	}
}

// inputs is everything a subcommand needs to build a RunContext.
type inputs struct {
	cfg      *sim.Config
	cat      *catalog.Catalog
	scenario *scenario.Scenario
	params   sim.StrategyParameters
}

// runContext returns a RunContext for the loaded inputs and the global seed flags.
func (in *inputs) runContext() sim.RunContext {
	rc := sim.NewRunContext(in.cfg, in.cat, in.scenario.Plan, seed)
	rc.DisableNoise = noNoise
	return rc
}

// loadCatalog returns the built-in catalog when path is empty.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(path)
}

// loadScenario resolves --preset / --scenario. With neither set the scenario is
// the quiet baseline year.
func loadScenario(preset, path string) (*scenario.Scenario, error) {
	switch {
	case preset != "" && path != "":
		return nil, fmt.Errorf("--preset and --scenario are mutually exclusive")
	case preset != "":
		return scenario.Preset(preset)
	case path != "":
		return scenario.Load(path)
	default:
		return &scenario.Scenario{Name: "baseline", Description: "No planned events"}, nil
	}
}

// loadInputs reads the configuration, catalog and scenario named by the global flags,
// applies strategy overrides when c registered them, and validates the result.
func loadInputs(c *cobra.Command) (*inputs, error) {
	cfg, err := sim.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	cat, err := loadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	scen, err := loadScenario(presetName, scenarioPath)
	if err != nil {
		return nil, err
	}
	if err := scen.Validate(cfg, cat); err != nil {
		return nil, err
	}
	params, err := scen.Parameters(cfg)
	if err != nil {
		return nil, err
	}
	if c.Flags().Lookup("production") != nil {
		overrides.apply(c, &params)
		params = params.Normalized(cfg)
	}
	if err := params.Validate(cfg); err != nil {
		return nil, err
	}
	return &inputs{cfg: cfg, cat: cat, scenario: scen, params: params}, nil
}
