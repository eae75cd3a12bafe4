package sim

import (
	"slices"

	"github.com/sirupsen/logrus"
)

// applySetupEffects applies one-time strategy effects before month 1.
func (s *Simulator) applySetupEffects() {
	prod := s.production
	if prod.AgileHub {
		s.investment += prod.InitialCost
		s.kpis.Flexibility += prod.FlexibilityBonus
		if prod.TargetCountry != "" {
			volume := s.base.TotalAnnualVolume * prod.ACategoryRatio
			moved := s.facilities.TransferToCountry(s.cfg.Simulation.TransferSourceCountry, prod.TargetCountry, volume)
			logrus.Debugf("setup: moved %.0f of %.0f tons from %s to %s",
				moved, volume, s.cfg.Simulation.TransferSourceCountry, prod.TargetCountry)
		}
	}

	inv := s.inventory
	s.kpis.NetProfit += inv.InitialRevenue
	s.investment += inv.InitialCost
	s.kpis.NetProfit += inv.InitialProfitGain
	s.kpis.Satisfaction += inv.InitialSatisfactionImpact
}

// applyRecurringEffects applies the monthly effects of the chosen strategies.
func (s *Simulator) applyRecurringEffects() {
	cfg := s.cfg
	months := float64(cfg.Simulation.MonthsInYear)

	logistics := cfg.Logistics
	s.kpis.NetProfit -= (logistics.EfficiencyThreshold - s.params.LogisticsOutsourcingRatio) / months * logistics.MaxAnnualCostIncrease

	s.kpis.OTIF += s.production.MonthlyOTIFBonus
	if s.production.AgileHub {
		s.kpis.OTIF += s.transport.MonthlyOTIFBonus
	}

	inv := s.inventory
	s.kpis.OTIF += inv.MonthlyOTIFBonus
	s.kpis.Turnover += inv.MonthlyTurnoverBonus
	s.kpis.Satisfaction += inv.MonthlySatisfactionPenalty
	if slices.Contains(inv.SetupMonths, s.month) {
		s.kpis.NetProfit -= inv.SetupCost / float64(len(inv.SetupMonths))
	} else if slices.Contains(inv.ImpactMonths, s.month) {
		s.kpis.OTIF += inv.ImpactOTIFBonus
	}

	if s.params.SpecialSKU {
		sku := cfg.SpecialSKU
		s.kpis.NetProfit -= sku.MonthlyOperatingCost
		s.kpis.NetProfit += cfg.KPI.MonthlyNetProfit * sku.RevenueShare * sku.MarginBonus
		s.kpis.Turnover -= sku.MonthlyTurnoverSlowdown
	}

	if s.params.Seasonality && slices.Contains(cfg.Simulation.SeasonalMonths, s.month) {
		s.kpis.OTIF += cfg.Simulation.SeasonalOTIFImpact
	}
}

// updateDependentKPIs couples satisfaction to the OTIF change, moves flexibility,
// and clamps the bounded KPIs.
func (s *Simulator) updateDependentKPIs(prev KPIState) {
	cfg := s.cfg
	s.kpis.Satisfaction += (s.kpis.OTIF - prev.OTIF) * cfg.Simulation.OTIFSatisfactionCoefficient

	if s.params.SpecialSKU && s.kpis.OTIF < cfg.SpecialSKU.OTIFTarget {
		s.kpis.Satisfaction += cfg.SpecialSKU.BelowTargetSatisfactionPenalty
	}

	if s.kpis.OTIF < cfg.Thresholds.FlexibilityOTIF || s.kpis.NetProfit < cfg.Thresholds.FlexibilityProfit {
		s.kpis.Flexibility += cfg.Simulation.FlexibilityLoss
	} else {
		s.kpis.Flexibility += cfg.Simulation.FlexibilityGain
	}

	s.kpis.Clamp(cfg.Simulation.KPILimits)
}
