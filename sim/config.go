package sim

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every numeric constant the simulator reads, as parsed from defaults.yaml.
// All sections are required; Validate rejects a missing section instead of defaulting it.
type Config struct {
	Version    string                                   `yaml:"version"`
	KPI        *KPIDefaults                             `yaml:"kpi_defaults"`
	Simulation *SimulationParams                        `yaml:"simulation"`
	Thresholds *Thresholds                              `yaml:"thresholds"`
	Logistics  *LogisticsImpact                         `yaml:"logistics"`
	Production map[ProductionStrategy]ProductionImpact `yaml:"production"`
	Inventory  map[InventoryStrategy]InventoryImpact   `yaml:"inventory"`
	Transport  map[TransportMode]TransportImpact       `yaml:"transport"`
	SpecialSKU *SpecialSKUImpact                        `yaml:"special_sku"`
	Forecast   *ForecastModel                           `yaml:"forecast"`
	CO2        *CO2Factors                              `yaml:"co2"`
	Search     *SearchBounds                            `yaml:"search"`
	Network    *Network                                 `yaml:"network"`
}

// KPIDefaults are the starting KPI values of every run.
type KPIDefaults struct {
	OTIF             float64 `yaml:"otif"`
	Satisfaction     float64 `yaml:"satisfaction"`
	MonthlyNetProfit float64 `yaml:"monthly_net_profit"`
	Flexibility      float64 `yaml:"flexibility"`
	Turnover         float64 `yaml:"turnover"`
	ForecastAccuracy float64 `yaml:"forecast_accuracy"`
}

// Range is a closed interval.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// KPILimits bound the clamped KPIs after every month.
type KPILimits struct {
	Min             float64 `yaml:"min"`
	MaxOTIF         float64 `yaml:"max_otif"`
	MaxSatisfaction float64 `yaml:"max_satisfaction"`
	MaxFlexibility  float64 `yaml:"max_flexibility"`
}

// NoiseRanges are the multiplicative noise intervals applied each month.
type NoiseRanges struct {
	Profit Range `yaml:"profit"`
	OTIF   Range `yaml:"otif"`
}

// SimulationParams groups horizon, seasonality and KPI-coupling constants.
type SimulationParams struct {
	MonthsInYear                int         `yaml:"months_in_year"`
	SeasonalMonths              []int       `yaml:"seasonal_months"`
	SeasonalOTIFImpact          float64     `yaml:"seasonal_otif_impact"`
	FlexibilityGain             float64     `yaml:"flexibility_gain"`
	FlexibilityLoss             float64     `yaml:"flexibility_loss"`
	OTIFSatisfactionCoefficient float64     `yaml:"otif_satisfaction_coefficient"`
	TransferSourceCountry       string      `yaml:"transfer_source_country"`
	KPILimits                   KPILimits   `yaml:"kpi_limits"`
	Noise                       NoiseRanges `yaml:"noise"`
}

// Thresholds decide whether flexibility grows or shrinks in a month.
type Thresholds struct {
	FlexibilityOTIF   float64 `yaml:"flexibility_otif"`
	FlexibilityProfit float64 `yaml:"flexibility_profit"`
}

// LogisticsImpact configures the outsourcing efficiency penalty.
type LogisticsImpact struct {
	MaxAnnualCostIncrease float64 `yaml:"max_annual_cost_increase"`
	EfficiencyThreshold   float64 `yaml:"efficiency_threshold"`
}

// ProductionImpact is the effect record of one production strategy.
type ProductionImpact struct {
	Label            string  `yaml:"label"`
	AgileHub         bool    `yaml:"agile_hub"`
	InitialCost      float64 `yaml:"initial_cost"`
	MonthlyOTIFBonus float64 `yaml:"monthly_otif_bonus"`
	TargetCountry    string  `yaml:"target_country"`
	FlexibilityBonus float64 `yaml:"flexibility_bonus"`
	ACategoryRatio   float64 `yaml:"a_category_ratio"`
}

// InventoryImpact is the effect record of one inventory strategy.
type InventoryImpact struct {
	Label                      string  `yaml:"label"`
	InitialRevenue             float64 `yaml:"initial_revenue"`
	InitialCost                float64 `yaml:"initial_cost"`
	InitialProfitGain          float64 `yaml:"initial_profit_gain"`
	InitialSatisfactionImpact  float64 `yaml:"initial_satisfaction_impact"`
	MonthlyOTIFBonus           float64 `yaml:"monthly_otif_bonus"`
	MonthlyTurnoverBonus       float64 `yaml:"monthly_turnover_bonus"`
	MonthlySatisfactionPenalty float64 `yaml:"monthly_satisfaction_penalty"`
	SetupCost                  float64 `yaml:"setup_cost"`
	SetupMonths                []int   `yaml:"setup_months"`
	ImpactMonths               []int   `yaml:"impact_months"`
	ImpactOTIFBonus            float64 `yaml:"impact_otif_bonus"`
}

// TransportImpact is the effect record of one transport mode.
type TransportImpact struct {
	Label            string  `yaml:"label"`
	CO2Multiplier    float64 `yaml:"co2_multiplier"`
	MonthlyOTIFBonus float64 `yaml:"monthly_otif_bonus"`
}

// SpecialSKUImpact configures the special-SKU mode.
type SpecialSKUImpact struct {
	MonthlyOperatingCost           float64 `yaml:"monthly_operating_cost"`
	RevenueShare                   float64 `yaml:"revenue_share"`
	MarginBonus                    float64 `yaml:"margin_bonus"`
	MonthlyTurnoverSlowdown        float64 `yaml:"monthly_turnover_slowdown"`
	OTIFTarget                     float64 `yaml:"otif_target"`
	BelowTargetSatisfactionPenalty float64 `yaml:"below_target_satisfaction_penalty"`
}

// ForecastModel maps forecasting choices to accuracy bonuses.
type ForecastModel struct {
	MaxAccuracy float64                       `yaml:"max_accuracy"`
	Algorithms  map[ForecastAlgorithm]float64 `yaml:"algorithms"`
	DataSources map[DataSource]float64        `yaml:"data_sources"`
}

// CO2Factors configures emissions accounting.
type CO2Factors struct {
	EmissionFactor float64            `yaml:"emission_factor_per_ton_km"`
	DistancesKm    map[string]float64 `yaml:"distances_km"`
}

// Slider declares one continuous strategy parameter.
type Slider struct {
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Default float64 `yaml:"default"`
	Step    float64 `yaml:"step"`
}

// SearchBounds declares the continuous parameters explored by the optimizer.
type SearchBounds struct {
	SingleSourcingRatio       Slider `yaml:"single_sourcing_ratio"`
	LogisticsOutsourcingRatio Slider `yaml:"logistics_outsourcing_ratio"`
}

// FacilitySpec is one plant in the base network.
type FacilitySpec struct {
	Site         string  `yaml:"site"`
	Country      string  `yaml:"country"`
	CapacityTons float64 `yaml:"capacity_tons"`
	Utilization  float64 `yaml:"utilization"`
}

// Network is the base facility data.
type Network struct {
	TotalAnnualVolume float64        `yaml:"total_annual_volume"`
	Facilities        []FacilitySpec `yaml:"facilities"`
}

// LoadConfig reads a configuration file with strict field checking and validates it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes and validates configuration YAML. Unknown keys are errors.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every required section is present, every enum value is configured,
// and numeric ranges are coherent.
func (c *Config) Validate() error {
	switch {
	case c.KPI == nil:
		return missingSection("kpi_defaults")
	case c.Simulation == nil:
		return missingSection("simulation")
	case c.Thresholds == nil:
		return missingSection("thresholds")
	case c.Logistics == nil:
		return missingSection("logistics")
	case c.SpecialSKU == nil:
		return missingSection("special_sku")
	case c.Forecast == nil:
		return missingSection("forecast")
	case c.CO2 == nil:
		return missingSection("co2")
	case c.Search == nil:
		return missingSection("search")
	case c.Network == nil:
		return missingSection("network")
	}

	for _, p := range AllProductionStrategies {
		if _, ok := c.Production[p]; !ok {
			return fmt.Errorf("production: missing strategy %q", p)
		}
	}
	for _, i := range AllInventoryStrategies {
		if _, ok := c.Inventory[i]; !ok {
			return fmt.Errorf("inventory: missing strategy %q", i)
		}
	}
	for _, t := range AllTransportModes {
		if _, ok := c.Transport[t]; !ok {
			return fmt.Errorf("transport: missing mode %q", t)
		}
	}
	for _, f := range AllForecastAlgorithms {
		if _, ok := c.Forecast.Algorithms[f]; !ok {
			return fmt.Errorf("forecast.algorithms: missing %q", f)
		}
	}
	for _, d := range AllDataSources {
		if _, ok := c.Forecast.DataSources[d]; !ok {
			return fmt.Errorf("forecast.data_sources: missing %q", d)
		}
	}
	for name := range c.Production {
		if !name.Valid() {
			return &UnknownStrategyError{Kind: "production strategy", Name: string(name)}
		}
	}
	for name := range c.Inventory {
		if !name.Valid() {
			return &UnknownStrategyError{Kind: "inventory strategy", Name: string(name)}
		}
	}
	for name := range c.Transport {
		if !name.Valid() {
			return &UnknownStrategyError{Kind: "transport mode", Name: string(name)}
		}
	}

	sp := c.Simulation
	if sp.MonthsInYear < 1 {
		return fmt.Errorf("simulation.months_in_year must be positive, got %d", sp.MonthsInYear)
	}
	if err := c.validateMonths("simulation.seasonal_months", sp.SeasonalMonths); err != nil {
		return err
	}
	l := sp.KPILimits
	if l.MaxOTIF <= l.Min || l.MaxSatisfaction <= l.Min || l.MaxFlexibility <= l.Min {
		return fmt.Errorf("simulation.kpi_limits: every max must exceed min %f", l.Min)
	}
	if err := validateRange("simulation.noise.profit", sp.Noise.Profit); err != nil {
		return err
	}
	if err := validateRange("simulation.noise.otif", sp.Noise.OTIF); err != nil {
		return err
	}
	if sp.TransferSourceCountry == "" {
		return fmt.Errorf("simulation.transfer_source_country is required")
	}

	for name, inv := range c.Inventory {
		if err := c.validateMonths(fmt.Sprintf("inventory.%s.setup_months", name), inv.SetupMonths); err != nil {
			return err
		}
		if err := c.validateMonths(fmt.Sprintf("inventory.%s.impact_months", name), inv.ImpactMonths); err != nil {
			return err
		}
		if inv.SetupCost != 0 && len(inv.SetupMonths) == 0 {
			return fmt.Errorf("inventory.%s: setup_cost requires setup_months", name)
		}
	}

	if c.Forecast.MaxAccuracy <= 0 || c.Forecast.MaxAccuracy > 1 {
		return fmt.Errorf("forecast.max_accuracy must be in (0, 1], got %f", c.Forecast.MaxAccuracy)
	}
	if c.CO2.EmissionFactor <= 0 {
		return fmt.Errorf("co2.emission_factor_per_ton_km must be positive, got %f", c.CO2.EmissionFactor)
	}

	for name, s := range map[string]Slider{
		"search.single_sourcing_ratio":       c.Search.SingleSourcingRatio,
		"search.logistics_outsourcing_ratio": c.Search.LogisticsOutsourcingRatio,
	} {
		if err := validateSlider(name, s); err != nil {
			return err
		}
	}

	if len(c.Network.Facilities) == 0 {
		return fmt.Errorf("network.facilities must not be empty")
	}
	if c.Network.TotalAnnualVolume < 0 {
		return fmt.Errorf("network.total_annual_volume must be non-negative, got %f", c.Network.TotalAnnualVolume)
	}
	countries := make(map[string]bool)
	for i, f := range c.Network.Facilities {
		if f.Site == "" || f.Country == "" {
			return fmt.Errorf("network.facilities[%d]: site and country are required", i)
		}
		if f.CapacityTons < 0 || f.Utilization < 0 || f.Utilization > 1 {
			return fmt.Errorf("network.facilities[%d] %s: capacity must be non-negative and utilization in [0, 1]", i, f.Site)
		}
		if _, ok := c.CO2.DistancesKm[f.Country]; !ok {
			return fmt.Errorf("co2.distances_km: missing country %q", f.Country)
		}
		countries[f.Country] = true
	}
	if !countries[sp.TransferSourceCountry] {
		return fmt.Errorf("simulation.transfer_source_country %q has no facility", sp.TransferSourceCountry)
	}
	for name, p := range c.Production {
		if p.AgileHub && p.TargetCountry != "" && !countries[p.TargetCountry] {
			return fmt.Errorf("production.%s: target_country %q has no facility", name, p.TargetCountry)
		}
	}
	return nil
}

// ForecastAccuracy derives the forecast-accuracy KPI for a parameter set,
// capped at forecast.max_accuracy.
func (c *Config) ForecastAccuracy(p StrategyParameters) float64 {
	acc := c.KPI.ForecastAccuracy + c.Forecast.Algorithms[p.Forecast]
	for _, ds := range AllDataSources {
		if p.Uses(ds) {
			acc += c.Forecast.DataSources[ds]
		}
	}
	return math.Min(c.Forecast.MaxAccuracy, acc)
}

// Horizon returns the number of simulated months.
func (c *Config) Horizon() int {
	return c.Simulation.MonthsInYear
}

// Countries returns the countries that have a configured distance.
func (c *Config) Countries() map[string]bool {
	out := make(map[string]bool, len(c.CO2.DistancesKm))
	for k := range c.CO2.DistancesKm {
		out[k] = true
	}
	return out
}

func (c *Config) validateMonths(name string, months []int) error {
	for _, m := range months {
		if m < 1 || m > c.Simulation.MonthsInYear {
			return fmt.Errorf("%s: month %d outside [1, %d]", name, m, c.Simulation.MonthsInYear)
		}
	}
	return nil
}

func missingSection(name string) error {
	return fmt.Errorf("missing required section %q", name)
}

func validateRange(name string, r Range) error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || r.Min > r.Max {
		return fmt.Errorf("%s: min %f must not exceed max %f", name, r.Min, r.Max)
	}
	return nil
}

func validateSlider(name string, s Slider) error {
	if s.Min > s.Max {
		return fmt.Errorf("%s: min %f exceeds max %f", name, s.Min, s.Max)
	}
	if s.Step <= 0 {
		return fmt.Errorf("%s: step must be positive, got %f", name, s.Step)
	}
	if s.Default < s.Min || s.Default > s.Max {
		return fmt.Errorf("%s: default %f outside [%f, %f]", name, s.Default, s.Min, s.Max)
	}
	return nil
}
