package optimize

import (
	"fmt"
	"math"
	"strconv"

	"github.com/supply-sim/supply-sim/sim"
)

// Trial is the part of a search trial an objective needs. goptuna's *Trial satisfies it.
type Trial interface {
	SuggestDiscreteFloat(name string, low, high, q float64) (float64, error)
	SuggestCategorical(name string, choices []string) (string, error)
}

// Parameter names as seen by the minimizer.
const (
	ParamSingleSourcing       = "single_sourcing_ratio"
	ParamLogisticsOutsourcing = "logistics_outsourcing_ratio"
	ParamProduction           = "production"
	ParamTransport            = "transport"
	ParamInventory            = "inventory"
	ParamSeasonality          = "seasonality"
	ParamSpecialSKU           = "special_sku"
	ParamForecast             = "forecast_algorithm"
)

var boolChoices = []string{"true", "false"}

// SearchSpace lists every value a search may choose.
type SearchSpace struct {
	SingleSourcing       sim.Slider
	LogisticsOutsourcing sim.Slider
	Production           []sim.ProductionStrategy
	Inventory            []sim.InventoryStrategy
	Transport            []sim.TransportMode // offered only with an agile hub
	Forecast             []sim.ForecastAlgorithm
	DataSources          []sim.DataSource
}

// NewSearchSpace derives the space from configured sliders and the strategy enums.
// The baseline transport mode is excluded because it is implied without a hub.
func NewSearchSpace(cfg *sim.Config) SearchSpace {
	transport := make([]sim.TransportMode, 0, len(sim.AllTransportModes)-1)
	for _, m := range sim.AllTransportModes {
		if m != sim.TransportDefault {
			transport = append(transport, m)
		}
	}
	return SearchSpace{
		SingleSourcing:       cfg.Search.SingleSourcingRatio,
		LogisticsOutsourcing: cfg.Search.LogisticsOutsourcingRatio,
		Production:           sim.AllProductionStrategies,
		Inventory:            sim.AllInventoryStrategies,
		Transport:            transport,
		Forecast:             sim.AllForecastAlgorithms,
		DataSources:          sim.AllDataSources,
	}
}

// Suggest draws one parameter set from t. Transport is only suggested when the chosen
// production strategy is not the baseline.
func (s SearchSpace) Suggest(t Trial) (sim.StrategyParameters, error) {
	var p sim.StrategyParameters
	var err error

	if p.SingleSourcingRatio, err = suggestSlider(t, ParamSingleSourcing, s.SingleSourcing); err != nil {
		return p, err
	}
	if p.LogisticsOutsourcingRatio, err = suggestSlider(t, ParamLogisticsOutsourcing, s.LogisticsOutsourcing); err != nil {
		return p, err
	}

	prod, err := t.SuggestCategorical(ParamProduction, names(s.Production))
	if err != nil {
		return p, err
	}
	p.Production = sim.ProductionStrategy(prod)

	p.Transport = sim.TransportDefault
	if p.Production != sim.ProductionCurrent && len(s.Transport) > 0 {
		mode, err := t.SuggestCategorical(ParamTransport, names(s.Transport))
		if err != nil {
			return p, err
		}
		p.Transport = sim.TransportMode(mode)
	}

	inv, err := t.SuggestCategorical(ParamInventory, names(s.Inventory))
	if err != nil {
		return p, err
	}
	p.Inventory = sim.InventoryStrategy(inv)

	if p.Seasonality, err = suggestBool(t, ParamSeasonality); err != nil {
		return p, err
	}
	if p.SpecialSKU, err = suggestBool(t, ParamSpecialSKU); err != nil {
		return p, err
	}

	algo, err := t.SuggestCategorical(ParamForecast, names(s.Forecast))
	if err != nil {
		return p, err
	}
	p.Forecast = sim.ForecastAlgorithm(algo)

	for _, ds := range s.DataSources {
		on, err := suggestBool(t, string(ds))
		if err != nil {
			return p, err
		}
		if on {
			p.DataSources = append(p.DataSources, ds)
		}
	}
	return p, nil
}

// suggestSlider snaps the suggestion to the slider grid and clamps it to the slider range.
func suggestSlider(t Trial, name string, s sim.Slider) (float64, error) {
	v, err := t.SuggestDiscreteFloat(name, s.Min, s.Max, s.Step)
	if err != nil {
		return 0, err
	}
	return max(s.Min, min(s.Max, snap(v, s))), nil
}

// snap rounds v to the nearest Min + k×Step, dropping the float noise of discrete suggestions.
func snap(v float64, s sim.Slider) float64 {
	steps := math.Round((v - s.Min) / s.Step)
	return math.Round((s.Min+steps*s.Step)*1e9) / 1e9
}

func suggestBool(t Trial, name string) (bool, error) {
	v, err := t.SuggestCategorical(name, boolChoices)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", name, err)
	}
	return b, nil
}

func names[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
