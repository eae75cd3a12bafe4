package sim

import (
	"fmt"
	"math"
	"sort"
)

// ProductionStrategy selects where output is produced.
type ProductionStrategy string

const (
	ProductionCurrent             ProductionStrategy = "current"
	ProductionAgileHubSouthAfrica ProductionStrategy = "agile_hub_south_africa"
	ProductionAgileHubTurkey      ProductionStrategy = "agile_hub_turkey"
)

// AllProductionStrategies lists every production strategy; the first is the baseline.
var AllProductionStrategies = []ProductionStrategy{
	ProductionCurrent,
	ProductionAgileHubSouthAfrica,
	ProductionAgileHubTurkey,
}

// InventoryStrategy selects the inventory policy.
type InventoryStrategy string

const (
	InventoryCurrentPolicy      InventoryStrategy = "current_policy"
	InventoryLiquidateExcess    InventoryStrategy = "liquidate_excess"
	InventorySeasonalBuild      InventoryStrategy = "seasonal_build"
	InventorySKUOptimization    InventoryStrategy = "sku_optimization"
	InventoryKeyAccountPriority InventoryStrategy = "key_account_priority"
)

// AllInventoryStrategies lists every inventory strategy; the first is the baseline.
var AllInventoryStrategies = []InventoryStrategy{
	InventoryCurrentPolicy,
	InventoryLiquidateExcess,
	InventorySeasonalBuild,
	InventorySKUOptimization,
	InventoryKeyAccountPriority,
}

// TransportMode selects how agile-hub output ships. Only meaningful with an agile hub.
type TransportMode string

const (
	TransportDefault    TransportMode = "default"
	TransportAirFreight TransportMode = "air_freight"
	TransportSeaFreight TransportMode = "sea_freight"
)

// AllTransportModes lists every transport mode; the first is the sentinel used without a hub.
var AllTransportModes = []TransportMode{
	TransportDefault,
	TransportAirFreight,
	TransportSeaFreight,
}

// ForecastAlgorithm selects the demand forecasting model.
type ForecastAlgorithm string

const (
	ForecastSeasonalARIMA    ForecastAlgorithm = "seasonal_arima"
	ForecastGradientBoosting ForecastAlgorithm = "gradient_boosting"
)

// AllForecastAlgorithms lists every forecasting algorithm.
var AllForecastAlgorithms = []ForecastAlgorithm{
	ForecastSeasonalARIMA,
	ForecastGradientBoosting,
}

// DataSource is an auxiliary input that improves forecast accuracy.
type DataSource string

const (
	DataMarketTrends      DataSource = "market_trends"
	DataCompetitorPricing DataSource = "competitor_pricing"
	DataMacroIndicators   DataSource = "macro_indicators"
)

// AllDataSources lists every auxiliary data source.
var AllDataSources = []DataSource{
	DataMarketTrends,
	DataCompetitorPricing,
	DataMacroIndicators,
}

func (p ProductionStrategy) Valid() bool { return contains(AllProductionStrategies, p) }
func (i InventoryStrategy) Valid() bool  { return contains(AllInventoryStrategies, i) }
func (t TransportMode) Valid() bool      { return contains(AllTransportModes, t) }
func (f ForecastAlgorithm) Valid() bool  { return contains(AllForecastAlgorithms, f) }
func (d DataSource) Valid() bool         { return contains(AllDataSources, d) }

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// UnknownStrategyError is returned when a strategy name is not recognized or not configured.
type UnknownStrategyError struct {
	Kind string
	Name string
}

func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
}

// StrategyParameters is the input record for one run. It is not modified once a run starts.
type StrategyParameters struct {
	SingleSourcingRatio       float64            `json:"single_sourcing_ratio" yaml:"single_sourcing_ratio"`
	LogisticsOutsourcingRatio float64            `json:"logistics_outsourcing_ratio" yaml:"logistics_outsourcing_ratio"`
	Production                ProductionStrategy `json:"production" yaml:"production"`
	Transport                 TransportMode      `json:"transport" yaml:"transport,omitempty"`
	Inventory                 InventoryStrategy  `json:"inventory" yaml:"inventory"`
	Seasonality               bool               `json:"seasonality" yaml:"seasonality"`
	SpecialSKU                bool               `json:"special_sku" yaml:"special_sku"`
	Forecast                  ForecastAlgorithm  `json:"forecast_algorithm" yaml:"forecast_algorithm"`
	DataSources               []DataSource       `json:"data_sources" yaml:"data_sources,omitempty"`

	// ForecastAccuracy is derived from Forecast and DataSources by Config.ForecastAccuracy.
	ForecastAccuracy float64 `json:"forecast_accuracy" yaml:"-"`
}

// DefaultParameters returns the baseline strategies with slider defaults from cfg.
func DefaultParameters(cfg *Config) StrategyParameters {
	p := StrategyParameters{
		SingleSourcingRatio:       cfg.Search.SingleSourcingRatio.Default,
		LogisticsOutsourcingRatio: cfg.Search.LogisticsOutsourcingRatio.Default,
		Production:                ProductionCurrent,
		Transport:                 TransportDefault,
		Inventory:                 InventoryCurrentPolicy,
		Forecast:                  ForecastSeasonalARIMA,
	}
	p.ForecastAccuracy = cfg.ForecastAccuracy(p)
	return p
}

// Uses reports whether the data source is enabled.
func (p StrategyParameters) Uses(ds DataSource) bool {
	return contains(p.DataSources, ds)
}

// Normalized returns a copy with the transport mode fixed to the sentinel when no agile hub
// is active, data sources de-duplicated and sorted, and forecast accuracy derived.
func (p StrategyParameters) Normalized(cfg *Config) StrategyParameters {
	out := p
	if out.Transport == "" || !cfg.Production[out.Production].AgileHub {
		out.Transport = TransportDefault
	}
	seen := make(map[DataSource]bool, len(p.DataSources))
	out.DataSources = make([]DataSource, 0, len(p.DataSources))
	for _, ds := range p.DataSources {
		if !seen[ds] {
			seen[ds] = true
			out.DataSources = append(out.DataSources, ds)
		}
	}
	sort.Slice(out.DataSources, func(i, j int) bool { return out.DataSources[i] < out.DataSources[j] })
	out.ForecastAccuracy = cfg.ForecastAccuracy(out)
	return out
}

// Validate checks ratios and that every named strategy is configured in cfg.
func (p StrategyParameters) Validate(cfg *Config) error {
	if err := validateRatio("single_sourcing_ratio", p.SingleSourcingRatio); err != nil {
		return err
	}
	if err := validateRatio("logistics_outsourcing_ratio", p.LogisticsOutsourcingRatio); err != nil {
		return err
	}
	if _, ok := cfg.Production[p.Production]; !ok || !p.Production.Valid() {
		return &UnknownStrategyError{Kind: "production strategy", Name: string(p.Production)}
	}
	if _, ok := cfg.Inventory[p.Inventory]; !ok || !p.Inventory.Valid() {
		return &UnknownStrategyError{Kind: "inventory strategy", Name: string(p.Inventory)}
	}
	if p.Transport != "" {
		if _, ok := cfg.Transport[p.Transport]; !ok || !p.Transport.Valid() {
			return &UnknownStrategyError{Kind: "transport mode", Name: string(p.Transport)}
		}
	}
	if _, ok := cfg.Forecast.Algorithms[p.Forecast]; !ok || !p.Forecast.Valid() {
		return &UnknownStrategyError{Kind: "forecast algorithm", Name: string(p.Forecast)}
	}
	for _, ds := range p.DataSources {
		if _, ok := cfg.Forecast.DataSources[ds]; !ok || !ds.Valid() {
			return &UnknownStrategyError{Kind: "data source", Name: string(ds)}
		}
	}
	return nil
}

func validateRatio(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return fmt.Errorf("%s must be in [0, 1], got %f", name, v)
	}
	return nil
}
