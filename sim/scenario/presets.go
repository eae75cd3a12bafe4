package scenario

import (
	"github.com/supply-sim/supply-sim/sim"
	"github.com/supply-sim/supply-sim/sim/catalog"
	"github.com/supply-sim/supply-sim/sim/timeline"
)

// Preset names.
const (
	PresetSandstorm            = "sandstorm"
	PresetOperationalNightmare = "operational_nightmare"
	PresetStrategicDilemma     = "strategic_dilemma"
	PresetGrowthOpportunity    = "growth_opportunity"
)

var presets = map[string]func() *Scenario{
	PresetSandstorm:            sandstorm,
	PresetOperationalNightmare: operationalNightmare,
	PresetStrategicDilemma:     strategicDilemma,
	PresetGrowthOpportunity:    growthOpportunity,
}

func presetPlan(events map[int]catalog.EventID, locations map[int]string) sim.Plan {
	return sim.Plan{
		Timeline:  timeline.FromEvents(events, timeline.SourcePreset),
		Locations: locations,
	}
}

// sandstorm stacks a port strike and a supplier crisis on a single-sourced network,
// both of which can cascade.
func sandstorm() *Scenario {
	return &Scenario{
		Name:        PresetSandstorm,
		Description: "Port strike in month 2 and raw material crisis in month 5, both in India, with 70% single sourcing",
		Plan: presetPlan(
			map[int]catalog.EventID{2: catalog.PortStrike, 5: catalog.RawMaterialSupplierCrisis},
			map[int]string{2: "India", 5: "India"},
		),
		apply: func(p *sim.StrategyParameters) error {
			p.Production = sim.ProductionCurrent
			p.Inventory = sim.InventoryCurrentPolicy
			p.SingleSourcingRatio = 0.7
			p.LogisticsOutsourcingRatio = 0.8
			p.Forecast = sim.ForecastSeasonalARIMA
			p.DataSources = nil
			p.Seasonality = false
			p.SpecialSKU = false
			return nil
		},
	}
}

func operationalNightmare() *Scenario {
	return &Scenario{
		Name:        PresetOperationalNightmare,
		Description: "Logistics provider bankruptcy in month 11, in the middle of the seasonal peak",
		Plan: presetPlan(
			map[int]catalog.EventID{11: catalog.LogisticsProviderFailure},
			map[int]string{11: "India"},
		),
		apply: func(p *sim.StrategyParameters) error {
			p.Production = sim.ProductionCurrent
			p.Inventory = sim.InventorySeasonalBuild
			p.SingleSourcingRatio = 0.3
			p.LogisticsOutsourcingRatio = 0.8
			p.Forecast = sim.ForecastGradientBoosting
			p.DataSources = []sim.DataSource{sim.DataMarketTrends}
			p.Seasonality = true
			p.SpecialSKU = false
			return nil
		},
	}
}

func strategicDilemma() *Scenario {
	return &Scenario{
		Name:        PresetStrategicDilemma,
		Description: "Demand rises at lower prices in month 4 while running a Turkey hub on sea freight",
		Plan: presetPlan(
			map[int]catalog.EventID{4: catalog.StrategicDilemma},
			map[int]string{4: "India"},
		),
		apply: func(p *sim.StrategyParameters) error {
			p.Production = sim.ProductionAgileHubTurkey
			p.Transport = sim.TransportSeaFreight
			p.Inventory = sim.InventoryLiquidateExcess
			p.SingleSourcingRatio = 0.2
			p.LogisticsOutsourcingRatio = 0.6
			p.Forecast = sim.ForecastGradientBoosting
			p.DataSources = sim.AllDataSources
			p.Seasonality = false
			p.SpecialSKU = false
			return nil
		},
	}
}

func growthOpportunity() *Scenario {
	return &Scenario{
		Name:        PresetGrowthOpportunity,
		Description: "A competitor exits in month 3; a South Africa hub on air freight serves key accounts",
		Plan: presetPlan(
			map[int]catalog.EventID{3: catalog.CompetitorExit},
			map[int]string{3: "South Africa"},
		),
		apply: func(p *sim.StrategyParameters) error {
			p.Production = sim.ProductionAgileHubSouthAfrica
			p.Transport = sim.TransportAirFreight
			p.Inventory = sim.InventoryKeyAccountPriority
			p.SingleSourcingRatio = 0.1
			p.LogisticsOutsourcingRatio = 0.5
			p.Forecast = sim.ForecastGradientBoosting
			p.DataSources = []sim.DataSource{sim.DataMarketTrends, sim.DataCompetitorPricing}
			p.Seasonality = false
			p.SpecialSKU = true
			return nil
		},
	}
}
