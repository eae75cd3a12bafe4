package sim

import (
	"github.com/supply-sim/supply-sim/sim/catalog"
	"github.com/supply-sim/supply-sim/sim/timeline"
	"github.com/supply-sim/supply-sim/sim/trace"
)

// MonthRecord is one row of run history. Rows are never modified after append.
type MonthRecord struct {
	Month            int             `json:"month" yaml:"month"`
	OTIF             float64         `json:"otif" yaml:"otif"`
	NetProfit        float64         `json:"net_profit" yaml:"net_profit"`
	Satisfaction     float64         `json:"satisfaction" yaml:"satisfaction"`
	Flexibility      float64         `json:"flexibility" yaml:"flexibility"`
	Turnover         float64         `json:"turnover" yaml:"turnover"`
	ForecastAccuracy float64         `json:"forecast_accuracy" yaml:"forecast_accuracy"`
	Event            catalog.EventID `json:"event" yaml:"event"`
	Source           timeline.Source `json:"source" yaml:"source"`
	Location         string          `json:"location,omitempty" yaml:"location,omitempty"`
	Intervention     string          `json:"intervention,omitempty" yaml:"intervention,omitempty"`
}

// Snapshot is the state right after one-time setup effects.
type Snapshot struct {
	KPIs           KPIState      `json:"kpis" yaml:"kpis"`
	Facilities     FacilityTable `json:"facilities" yaml:"facilities"`
	InvestmentCost float64       `json:"investment_cost" yaml:"investment_cost"`
}

// RunSummary holds the final scalars of a run.
type RunSummary struct {
	AnnualProfit       float64 `json:"annual_profit" yaml:"annual_profit"`
	AnnualProfitChange float64 `json:"annual_profit_change" yaml:"annual_profit_change"`
	InvestmentCost     float64 `json:"investment_cost" yaml:"investment_cost"`
	FinalOTIF          float64 `json:"final_otif" yaml:"final_otif"`
	FinalFlexibility   float64 `json:"final_flexibility" yaml:"final_flexibility"`
	FinalSatisfaction  float64 `json:"final_satisfaction" yaml:"final_satisfaction"`
	FinalTurnover      float64 `json:"final_turnover" yaml:"final_turnover"`
	CO2Emissions       float64 `json:"co2_emissions" yaml:"co2_emissions"`
	CO2Savings         float64 `json:"co2_savings" yaml:"co2_savings"`
}

// RunResult is the full output of one run.
type RunResult struct {
	Key        SimulationKey          `json:"key" yaml:"key"`
	Parameters StrategyParameters     `json:"parameters" yaml:"parameters"`
	History    []MonthRecord          `json:"history" yaml:"history"`
	Facilities FacilityTable          `json:"facilities" yaml:"facilities"`
	Setup      Snapshot               `json:"setup" yaml:"setup"`
	Timeline   timeline.Timeline      `json:"timeline" yaml:"timeline"`
	Summary    RunSummary             `json:"summary" yaml:"summary"`
	Trace      *trace.SimulationTrace `json:"-" yaml:"-"`
}

// RealizedEvent is an event that actually occurred in a run.
type RealizedEvent struct {
	Month  int             `json:"month" yaml:"month"`
	Event  catalog.EventID `json:"event" yaml:"event"`
	Source timeline.Source `json:"source" yaml:"source"`
}

// RealizedEvents lists the months whose event was not the no-crisis sentinel.
func (r *RunResult) RealizedEvents() []RealizedEvent {
	out := make([]RealizedEvent, 0)
	for _, row := range r.History {
		if row.Event == catalog.NoCrisis {
			continue
		}
		out = append(out, RealizedEvent{Month: row.Month, Event: row.Event, Source: row.Source})
	}
	return out
}

// FirstMonth returns the first history row. Runs always have at least one month.
func (r *RunResult) FirstMonth() MonthRecord {
	return r.History[0]
}

// LastMonth returns the final history row.
func (r *RunResult) LastMonth() MonthRecord {
	return r.History[len(r.History)-1]
}
