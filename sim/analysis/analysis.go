// Package analysis measures how strategies hold up against single crises: the
// first-month profit a crisis costs compared with a crisis-free run on the same seed.
package analysis

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/supply-sim/supply-sim/sim"
	"github.com/supply-sim/supply-sim/sim/catalog"
	"github.com/supply-sim/supply-sim/sim/timeline"
)

// DefaultCrises are the crises tested when none are given.
var DefaultCrises = []catalog.EventID{
	catalog.PortStrike,
	catalog.RawMaterialSupplierCrisis,
	catalog.DemandSurge,
	catalog.LogisticsProviderFailure,
}

// RiskMatrix holds first-month profit loss per production strategy and crisis.
// Loss[i][j] belongs to Strategies[i] and Crises[j]; a negative loss is a gain.
type RiskMatrix struct {
	Strategies []sim.ProductionStrategy `json:"strategies" yaml:"strategies"`
	Crises     []catalog.EventID        `json:"crises" yaml:"crises"`
	Loss       [][]float64              `json:"loss" yaml:"loss"`
}

// Worst returns the crisis with the largest loss for strategy row i.
func (m *RiskMatrix) Worst(i int) (catalog.EventID, float64) {
	var worst catalog.EventID
	best := 0.0
	for j, loss := range m.Loss[i] {
		if j == 0 || loss > best {
			worst, best = m.Crises[j], loss
		}
	}
	return worst, best
}

// ComputeRiskMatrix runs params under each production strategy, once without events and
// once per crisis placed in month 1. rc.Plan is ignored. Nil strategies means all
// strategies; nil crises means DefaultCrises.
func ComputeRiskMatrix(rc sim.RunContext, params sim.StrategyParameters, strategies []sim.ProductionStrategy, crises []catalog.EventID) (*RiskMatrix, error) {
	if strategies == nil {
		strategies = sim.AllProductionStrategies
	}
	if crises == nil {
		crises = DefaultCrises
	}
	if rc.Base == nil {
		rc.Base = sim.NewBaseData(rc.Config)
	}

	m := &RiskMatrix{
		Strategies: strategies,
		Crises:     crises,
		Loss:       make([][]float64, len(strategies)),
	}
	for i, strategy := range strategies {
		p := params
		p.Production = strategy
		baseline, err := firstMonthProfit(rc, p, sim.Plan{})
		if err != nil {
			return nil, fmt.Errorf("strategy %s baseline: %w", strategy, err)
		}
		m.Loss[i] = make([]float64, len(crises))
		for j, crisis := range crises {
			profit, err := firstMonthProfit(rc, p, crisisPlan(crisis, ""))
			if err != nil {
				return nil, fmt.Errorf("strategy %s crisis %s: %w", strategy, crisis, err)
			}
			m.Loss[i][j] = baseline - profit
		}
		logrus.Debugf("risk matrix: %s baseline %.0f, losses %v", strategy, baseline, m.Loss[i])
	}
	return m, nil
}

// NamedParameters is one strategy set in a comparison.
type NamedParameters struct {
	Name       string                 `json:"name" yaml:"name"`
	Parameters sim.StrategyParameters `json:"parameters" yaml:"parameters"`
}

// ComparisonRow is the loss of one strategy set under one crisis.
type ComparisonRow struct {
	Strategy   string          `json:"strategy" yaml:"strategy"`
	Crisis     catalog.EventID `json:"crisis" yaml:"crisis"`
	Location   string          `json:"location,omitempty" yaml:"location,omitempty"`
	ProfitLoss float64         `json:"profit_loss" yaml:"profit_loss"`
}

// CompareCrises measures each strategy set against each crisis. Geographic crises strike
// the configured transfer source country. Rows are ordered by set, then crisis.
func CompareCrises(rc sim.RunContext, sets []NamedParameters, crises []catalog.EventID) ([]ComparisonRow, error) {
	if crises == nil {
		crises = DefaultCrises
	}
	if rc.Base == nil {
		rc.Base = sim.NewBaseData(rc.Config)
	}
	source := rc.Config.Simulation.TransferSourceCountry

	rows := make([]ComparisonRow, 0, len(sets)*len(crises))
	for _, set := range sets {
		baseline, err := firstMonthProfit(rc, set.Parameters, sim.Plan{})
		if err != nil {
			return nil, fmt.Errorf("%s baseline: %w", set.Name, err)
		}
		for _, crisis := range crises {
			ev, err := rc.Catalog.Event(crisis)
			if err != nil {
				return nil, err
			}
			location := ""
			if ev.Geographic {
				location = source
			}
			profit, err := firstMonthProfit(rc, set.Parameters, crisisPlan(crisis, location))
			if err != nil {
				return nil, fmt.Errorf("%s crisis %s: %w", set.Name, crisis, err)
			}
			rows = append(rows, ComparisonRow{
				Strategy:   set.Name,
				Crisis:     crisis,
				Location:   location,
				ProfitLoss: baseline - profit,
			})
		}
	}
	return rows, nil
}

func crisisPlan(crisis catalog.EventID, location string) sim.Plan {
	plan := sim.Plan{Timeline: timeline.FromEvents(map[int]catalog.EventID{1: crisis}, timeline.SourceUser)}
	if location != "" {
		plan.Locations = map[int]string{1: location}
	}
	return plan
}

func firstMonthProfit(rc sim.RunContext, params sim.StrategyParameters, plan sim.Plan) (float64, error) {
	rc.Plan = plan
	res, err := sim.RunSingle(rc, params)
	if err != nil {
		return 0, err
	}
	return res.FirstMonth().NetProfit, nil
}
