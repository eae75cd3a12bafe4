package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supply-sim/supply-sim/sim/catalog"
	"github.com/supply-sim/supply-sim/sim/timeline"
	"github.com/supply-sim/supply-sim/sim/trace"
)

const monthlyProfit = 6666666.666666667

func TestRunSingle_NoEvents_KPIsPersistAndProfitUnchanged(t *testing.T) {
	// GIVEN baseline parameters, no events and no noise
	cfg := loadTestConfig(t)
	rc := noiselessContext(cfg, buildCatalog(t, deterministicFile(0)), Plan{})

	// WHEN the year is simulated
	res := runOK(t, rc, DefaultParameters(cfg))

	// THEN every month carries the same profit and OTIF forward
	for _, row := range res.History {
		assert.InDelta(t, monthlyProfit, row.NetProfit, 1e-6, "month %d", row.Month)
		assert.InDelta(t, 0.85, row.OTIF, 1e-12, "month %d", row.Month)
		assert.Equal(t, catalog.NoCrisis, row.Event)
		assert.Equal(t, timeline.SourceNone, row.Source)
	}
	assert.InDelta(t, 0, res.Summary.AnnualProfitChange, 1e-3)
	assert.InDelta(t, 4.0+12*0.1, res.Summary.FinalFlexibility, 1e-9)
	assert.InDelta(t, 0, res.Summary.CO2Savings, 1e-9)
	assert.Empty(t, res.RealizedEvents())
}

func TestRunSingle_PortStrikeMonth1_OTIFDropsAndSatisfactionFollows(t *testing.T) {
	cfg := loadTestConfig(t)
	rc := noiselessContext(cfg, buildCatalog(t, deterministicFile(0)),
		userPlan(map[int]catalog.EventID{1: catalog.PortStrike}))

	res := runOK(t, rc, DefaultParameters(cfg))

	m1 := res.FirstMonth()
	assert.InDelta(t, 0.70, m1.OTIF, 1e-9)
	assert.InDelta(t, 7.5-0.15*2, m1.Satisfaction, 1e-9)
	// OTIF below the flexibility threshold costs flexibility.
	assert.InDelta(t, 3.5, m1.Flexibility, 1e-9)
	assert.Equal(t, catalog.PortStrike, m1.Event)
	assert.Equal(t, timeline.SourceUser, m1.Source)
	// OTIF persists into month 2.
	assert.InDelta(t, 0.70, res.History[1].OTIF, 1e-9)
}

func TestRunSingle_Intervention_MitigatesImpactAndChargesCost(t *testing.T) {
	cfg := loadTestConfig(t)
	plan := userPlan(map[int]catalog.EventID{1: catalog.PortStrike})
	plan.Interventions = map[int]string{1: "alternative_port"}
	rc := noiselessContext(cfg, buildCatalog(t, deterministicFile(0)), plan)

	res := runOK(t, rc, DefaultParameters(cfg))

	m1 := res.FirstMonth()
	assert.InDelta(t, 0.85-0.15*0.8, m1.OTIF, 1e-9)
	assert.InDelta(t, monthlyProfit-750000, m1.NetProfit, 1e-6)
	assert.Equal(t, "alternative_port", m1.Intervention)
}

func TestRunSingle_GeographicEvent_ScaledByCountryShare(t *testing.T) {
	// GIVEN a port strike located in India, which holds 75000 of 120000 tons
	cfg := loadTestConfig(t)
	plan := userPlan(map[int]catalog.EventID{1: catalog.PortStrike})
	plan.Locations = map[int]string{1: "India"}
	rc := noiselessContext(cfg, buildCatalog(t, deterministicFile(0)), plan)

	res := runOK(t, rc, DefaultParameters(cfg))

	// THEN only the Indian share of the OTIF hit applies
	assert.InDelta(t, 0.85-0.15*0.625, res.FirstMonth().OTIF, 1e-9)
	assert.Equal(t, "India", res.FirstMonth().Location)
}

func TestRunSingle_ForcedCascade_InsertsTriggeredEvent(t *testing.T) {
	cfg := loadTestConfig(t)
	rc := noiselessContext(cfg, buildCatalog(t, deterministicFile(1)),
		userPlan(map[int]catalog.EventID{2: catalog.PortStrike}))

	res := runOK(t, rc, DefaultParameters(cfg))

	m3 := res.History[2]
	assert.Equal(t, catalog.CustomerTrustLoss, m3.Event)
	assert.Equal(t, timeline.SourceCascade, m3.Source)
	assert.Equal(t, timeline.SourceCascade, res.Timeline[3].Source)
	assert.Len(t, res.RealizedEvents(), 2)
}

func TestRunSingle_UserEventBeatsCascade(t *testing.T) {
	cfg := loadTestConfig(t)
	rc := noiselessContext(cfg, buildCatalog(t, deterministicFile(1)), userPlan(map[int]catalog.EventID{
		2: catalog.PortStrike,
		3: catalog.InterestRateShock,
	}))

	res := runOK(t, rc, DefaultParameters(cfg))

	assert.Equal(t, catalog.InterestRateShock, res.History[2].Event)
	assert.Equal(t, timeline.SourceUser, res.History[2].Source)
}

func TestRunSingle_Month12Crisis_CascadeBeyondHorizonDropped(t *testing.T) {
	cfg := loadTestConfig(t)
	rc := noiselessContext(cfg, buildCatalog(t, deterministicFile(1)),
		userPlan(map[int]catalog.EventID{12: catalog.PortStrike}))
	rc.TraceLevel = trace.TraceLevelDecisions

	res := runOK(t, rc, DefaultParameters(cfg))

	assert.InDelta(t, 0.70, res.LastMonth().OTIF, 1e-9)
	require.NotNil(t, res.Trace)
	require.Len(t, res.Trace.Cascades, 1)
	rec := res.Trace.Cascades[0]
	assert.True(t, rec.Fired)
	assert.False(t, rec.Inserted)
	assert.Equal(t, "beyond horizon", rec.Reason)
	assert.Len(t, res.Timeline, 1)
}

func TestRunSingle_AgileHubTurkey_SetupTransfersVolume(t *testing.T) {
	// GIVEN the Turkey hub, which wants 48000 tons but has 16000 tons of free capacity
	cfg := loadTestConfig(t)
	rc := noiselessContext(cfg, buildCatalog(t, deterministicFile(0)), Plan{})
	params := DefaultParameters(cfg)
	params.Production = ProductionAgileHubTurkey

	res := runOK(t, rc, params)

	// THEN the hub runs at capacity and the setup snapshot leaves profit untouched
	assert.InDelta(t, 40000, res.Setup.Facilities.CountryOutput("Turkey"), 1e-6)
	assert.InDelta(t, 59000, res.Setup.Facilities.CountryOutput("India"), 1e-6)
	assert.InDelta(t, monthlyProfit, res.Setup.KPIs.NetProfit, 1e-6)
	assert.InDelta(t, 5.0, res.Setup.KPIs.Flexibility, 1e-9)
	assert.Equal(t, 300000.0, res.Setup.InvestmentCost)
	assert.Equal(t, 300000.0, res.Summary.InvestmentCost)
	assert.InDelta(t, 1.0, res.Facilities[4].Utilization, 1e-9)
	// India 59000×1.5 + South Africa 84000 + Turkey 40000×0.75 = 202500 vs 214500.
	assert.InDelta(t, 12000, res.Summary.CO2Savings, 1e-6)
}

func TestRunSingle_AirFreightHub_CO2MultiplierOnHubOnly(t *testing.T) {
	cfg := loadTestConfig(t)
	rc := noiselessContext(cfg, buildCatalog(t, deterministicFile(0)), Plan{})
	params := DefaultParameters(cfg)
	params.Production = ProductionAgileHubTurkey
	params.Transport = TransportAirFreight

	res := runOK(t, rc, params)

	assert.InDelta(t, 88500+84000+150000, res.Summary.CO2Emissions, 1e-6)
	assert.Equal(t, TransportAirFreight, res.Parameters.Transport)
}

func TestRunSingle_SupplyCrisis_ProductionLossScaledBySingleSourcing(t *testing.T) {
	// GIVEN a 0.9 production loss and 75% single sourcing
	cfg := loadTestConfig(t)
	f := deterministicFile(0)
	setImpact(f, catalog.RawMaterialSupplierCrisis, catalog.ImpactProductionLoss, 0.9)
	rc := noiselessContext(cfg, buildCatalog(t, f),
		userPlan(map[int]catalog.EventID{1: catalog.RawMaterialSupplierCrisis}))
	params := DefaultParameters(cfg)
	params.SingleSourcingRatio = 0.75

	res := runOK(t, rc, params)

	// THEN every plant keeps 1 - 0.9×0.75 = 0.325 of its output
	assert.InDelta(t, 120000*0.325, res.Facilities.TotalOutput(), 1e-6)
	assert.InDelta(t, 0.75*0.325, res.Facilities[0].Utilization, 1e-9)
}

func TestRunSingle_ZeroSingleSourcing_NoProductionLoss(t *testing.T) {
	cfg := loadTestConfig(t)
	rc := noiselessContext(cfg, buildCatalog(t, deterministicFile(0)),
		userPlan(map[int]catalog.EventID{1: catalog.RawMaterialSupplierCrisis}))
	params := DefaultParameters(cfg)
	params.SingleSourcingRatio = 0

	res := runOK(t, rc, params)

	assert.InDelta(t, 120000, res.Facilities.TotalOutput(), 1e-6)
}

func TestRunSingle_FullProductionLoss_LaterGeoEventHasNoShare(t *testing.T) {
	// GIVEN a supply crisis that wipes out all output, then a port strike in India
	cfg := loadTestConfig(t)
	f := deterministicFile(0)
	setImpact(f, catalog.RawMaterialSupplierCrisis, catalog.ImpactProductionLoss, 1.0)
	plan := userPlan(map[int]catalog.EventID{1: catalog.RawMaterialSupplierCrisis, 2: catalog.PortStrike})
	plan.Locations = map[int]string{2: "India"}
	rc := noiselessContext(cfg, buildCatalog(t, f), plan)
	params := DefaultParameters(cfg)
	params.SingleSourcingRatio = 1

	res := runOK(t, rc, params)

	// THEN output is zero and the strike scales to a zero share
	assert.Equal(t, 0.0, res.Facilities.TotalOutput())
	assert.Equal(t, 0.0, res.Facilities[0].Utilization)
	assert.InDelta(t, res.History[0].OTIF, res.History[1].OTIF, 1e-12)
	assert.Equal(t, 0.0, res.Summary.CO2Emissions)
}

func TestRunSingle_DemandSurge_UpsideMultiplierNotMitigated(t *testing.T) {
	cfg := loadTestConfig(t)
	cat := buildCatalog(t, deterministicFile(0))
	params := DefaultParameters(cfg)

	plain := runOK(t, noiselessContext(cfg, cat, userPlan(map[int]catalog.EventID{1: catalog.DemandSurge})), params)
	assert.InDelta(t, monthlyProfit*1.4, plain.FirstMonth().NetProfit, 1e-3)

	// GIVEN the overtime intervention with a low mitigation factor
	plan := userPlan(map[int]catalog.EventID{1: catalog.DemandSurge})
	plan.Interventions = map[int]string{1: "overtime"}
	withOvertime := runOK(t, noiselessContext(cfg, cat, plan), params)

	// THEN the surge still lifts profit in full and only the cost is deducted
	assert.InDelta(t, (monthlyProfit-500000)*1.4, withOvertime.FirstMonth().NetProfit, 1e-3)
}

func TestRunSingle_CompetitorExit_PaidInterventionKeepsUpside(t *testing.T) {
	cfg := loadTestConfig(t)
	plan := userPlan(map[int]catalog.EventID{1: catalog.CompetitorExit})
	plan.Interventions = map[int]string{1: "aggressive_capacity"}
	rc := noiselessContext(cfg, buildCatalog(t, deterministicFile(0)), plan)

	res := runOK(t, rc, DefaultParameters(cfg))

	// THEN the intervention never turns the windfall into a loss against doing nothing
	assert.InDelta(t, (monthlyProfit-1000000)*1.6, res.FirstMonth().NetProfit, 1e-3)
	assert.Greater(t, res.FirstMonth().NetProfit, monthlyProfit-1000000)
}

func TestRunSingle_PriceCut_DownsideMultiplierMitigated(t *testing.T) {
	cfg := loadTestConfig(t)
	plan := userPlan(map[int]catalog.EventID{1: catalog.CompetitorPriceCut})
	plan.Interventions = map[int]string{1: "brand_campaign"}
	rc := noiselessContext(cfg, buildCatalog(t, deterministicFile(0)), plan)

	res := runOK(t, rc, DefaultParameters(cfg))

	// THEN a zero mitigation factor cancels the price-cut multiplier
	assert.InDelta(t, monthlyProfit-600000, res.FirstMonth().NetProfit, 1e-3)
}

func TestRunSingle_MatchPrice_InterventionMultiplierThenImpact(t *testing.T) {
	cfg := loadTestConfig(t)
	plan := userPlan(map[int]catalog.EventID{1: catalog.CompetitorPriceCut})
	plan.Interventions = map[int]string{1: "match_price"}
	rc := noiselessContext(cfg, buildCatalog(t, deterministicFile(0)), plan)

	res := runOK(t, rc, DefaultParameters(cfg))

	assert.InDelta(t, monthlyProfit*0.85*0.75, res.FirstMonth().NetProfit, 1e-3)
}

func TestRunSingle_FinancialShock_AdditiveProfitHit(t *testing.T) {
	cfg := loadTestConfig(t)
	rc := noiselessContext(cfg, buildCatalog(t, deterministicFile(0)),
		userPlan(map[int]catalog.EventID{1: catalog.InterestRateShock}))

	res := runOK(t, rc, DefaultParameters(cfg))

	assert.InDelta(t, monthlyProfit-750000, res.FirstMonth().NetProfit, 1e-6)
	assert.InDelta(t, -750000*12, res.Summary.AnnualProfitChange, 1e-3)
}

func TestRunSingle_SpecialSKU_LowersTurnoverAndPenalizesSatisfaction(t *testing.T) {
	cfg := loadTestConfig(t)
	rc := noiselessContext(cfg, buildCatalog(t, deterministicFile(0)), Plan{})
	params := DefaultParameters(cfg)
	params.SpecialSKU = true

	res := runOK(t, rc, params)

	m1 := res.FirstMonth()
	assert.InDelta(t, 3.0-0.02, m1.Turnover, 1e-9)
	assert.InDelta(t, 7.5-0.25, m1.Satisfaction, 1e-9)
	assert.InDelta(t, monthlyProfit-350000+monthlyProfit*0.4*0.15, m1.NetProfit, 1e-3)
}

func TestRunSingle_SeasonalBuild_ImpactMonthsRaiseOTIF(t *testing.T) {
	cfg := loadTestConfig(t)
	rc := noiselessContext(cfg, buildCatalog(t, deterministicFile(0)), Plan{})
	params := DefaultParameters(cfg)
	params.Inventory = InventorySeasonalBuild

	res := runOK(t, rc, params)

	assert.InDelta(t, res.History[9].OTIF+0.02, res.History[10].OTIF, 1e-9)
	// Setup months carry a third of the setup cost each.
	assert.InDelta(t, res.History[6].NetProfit-500000.0/3, res.History[7].NetProfit, 1e-3)
}

func TestRunSingle_Seasonality_SeasonalMonthsLowerOTIF(t *testing.T) {
	cfg := loadTestConfig(t)
	rc := noiselessContext(cfg, buildCatalog(t, deterministicFile(0)), Plan{})
	params := DefaultParameters(cfg)
	params.Seasonality = true

	res := runOK(t, rc, params)

	assert.InDelta(t, 0.80, res.History[0].OTIF, 1e-9)
	assert.InDelta(t, 0.80, res.History[9].OTIF, 1e-9)
	assert.InDelta(t, 0.75, res.History[10].OTIF, 1e-9)
}

func TestRunSingle_EveryMonthStrike_KPIsStayInBounds(t *testing.T) {
	// GIVEN random impacts, noise, and a port strike every month
	cfg := loadTestConfig(t)
	events := make(map[int]catalog.EventID, 12)
	for m := 1; m <= 12; m++ {
		events[m] = catalog.PortStrike
	}
	rc := NewRunContext(cfg, catalog.Default(), userPlan(events), 7)

	res := runOK(t, rc, DefaultParameters(cfg))

	limits := cfg.Simulation.KPILimits
	for _, row := range res.History {
		assert.GreaterOrEqual(t, row.OTIF, limits.Min)
		assert.LessOrEqual(t, row.OTIF, limits.MaxOTIF)
		assert.GreaterOrEqual(t, row.Satisfaction, limits.Min)
		assert.LessOrEqual(t, row.Satisfaction, limits.MaxSatisfaction)
		assert.GreaterOrEqual(t, row.Flexibility, limits.Min)
		assert.LessOrEqual(t, row.Flexibility, limits.MaxFlexibility)
		assert.GreaterOrEqual(t, row.Turnover, 0.0)
	}
}

func TestRunSingle_SameSeed_IdenticalResults(t *testing.T) {
	cfg := loadTestConfig(t)
	plan := userPlan(map[int]catalog.EventID{2: catalog.PortStrike, 5: catalog.RawMaterialSupplierCrisis})
	rc := NewRunContext(cfg, catalog.Default(), plan, 1234)

	a := runOK(t, rc, DefaultParameters(cfg))
	b := runOK(t, rc, DefaultParameters(cfg))
	assert.Equal(t, a.History, b.History)
	assert.Equal(t, a.Timeline, b.Timeline)
	assert.Equal(t, a.Summary, b.Summary)

	rc.Seed = 4321
	c := runOK(t, rc, DefaultParameters(cfg))
	assert.NotEqual(t, a.History[0].NetProfit, c.History[0].NetProfit)
}

func TestRunSingle_Trace_RecordsEventApplications(t *testing.T) {
	cfg := loadTestConfig(t)
	plan := userPlan(map[int]catalog.EventID{1: catalog.PortStrike})
	plan.Interventions = map[int]string{1: "air_freight"}
	rc := noiselessContext(cfg, buildCatalog(t, deterministicFile(0)), plan)
	rc.TraceLevel = trace.TraceLevelDecisions

	res := runOK(t, rc, DefaultParameters(cfg))

	require.Len(t, res.Trace.Events, 1)
	ev := res.Trace.Events[0]
	assert.Equal(t, "air_freight", ev.Intervention)
	assert.Equal(t, 2000000.0, ev.InterventionCost)
	assert.InDelta(t, -0.15, ev.Sampled[string(catalog.ImpactOTIF)], 1e-12)
	summary := trace.Summarize(res.Trace)
	assert.Equal(t, 1, summary.EventsApplied)
}

func TestRunSingle_InvalidPlans_Rejected(t *testing.T) {
	cfg := loadTestConfig(t)
	cat := buildCatalog(t, deterministicFile(0))
	params := DefaultParameters(cfg)

	tests := []struct {
		name string
		plan Plan
	}{
		{"month out of range", userPlan(map[int]catalog.EventID{13: catalog.PortStrike})},
		{"unknown event", userPlan(map[int]catalog.EventID{1: "meteor"})},
		{"unknown location", Plan{
			Timeline:  timeline.FromEvents(map[int]catalog.EventID{1: catalog.PortStrike}, timeline.SourceUser),
			Locations: map[int]string{1: "Atlantis"},
		}},
		{"intervention without event", Plan{Interventions: map[int]string{4: "alternative_port"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RunSingle(noiselessContext(cfg, cat, tt.plan), params)
			assert.Error(t, err)
		})
	}
}

func TestRunSingle_UnknownIntervention_TypedError(t *testing.T) {
	cfg := loadTestConfig(t)
	plan := userPlan(map[int]catalog.EventID{1: catalog.PortStrike})
	plan.Interventions = map[int]string{1: "prayer"}

	_, err := RunSingle(noiselessContext(cfg, buildCatalog(t, deterministicFile(0)), plan), DefaultParameters(cfg))

	var ivErr *catalog.UnknownInterventionError
	require.True(t, errors.As(err, &ivErr))
	assert.Equal(t, "prayer", ivErr.Intervention)
}

func TestRunSingle_InvalidParameters_TypedError(t *testing.T) {
	cfg := loadTestConfig(t)
	params := DefaultParameters(cfg)
	params.Production = "moon_base"

	_, err := RunSingle(noiselessContext(cfg, catalog.Default(), Plan{}), params)

	var sErr *UnknownStrategyError
	require.True(t, errors.As(err, &sErr))
	assert.Equal(t, "moon_base", sErr.Name)
}

func TestSimulator_RunTwice_ErrAlreadyRun(t *testing.T) {
	cfg := loadTestConfig(t)
	s, err := NewSimulator(cfg, NewBaseData(cfg), catalog.Default(), DefaultParameters(cfg), Options{Key: 1, DisableNoise: true})
	require.NoError(t, err)

	_, err = s.Run(Plan{})
	require.NoError(t, err)
	assert.Equal(t, PhaseFinalized, s.Phase())

	_, err = s.Run(Plan{})
	assert.ErrorIs(t, err, ErrAlreadyRun)
}

func TestSimulator_StepByStep_MatchesPhases(t *testing.T) {
	cfg := loadTestConfig(t)
	base := NewBaseData(cfg)
	s, err := NewSimulator(cfg, base, buildCatalog(t, deterministicFile(0)), DefaultParameters(cfg), Options{DisableNoise: true})
	require.NoError(t, err)
	assert.Equal(t, PhaseSetup, s.Phase())

	_, err = s.Step(timeline.Entry{Event: catalog.NoCrisis, Source: timeline.SourceNone}, "", "")
	assert.Error(t, err, "step before setup")

	require.NoError(t, s.Setup())
	rec, err := s.Step(timeline.Entry{Event: catalog.PortStrike, Source: timeline.SourceUser}, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Month)
	assert.InDelta(t, 0.70, s.KPIs().OTIF, 1e-9)

	_, err = s.Finalize()
	assert.Error(t, err, "finalize before the horizon")

	// Mutating the returned table must not affect the simulator or base data.
	facilities := s.Facilities()
	facilities[0].OutputTons = 0
	assert.Equal(t, 25000.0, s.Facilities()[0].OutputTons)
	assert.Equal(t, 25000.0, base.Facilities[0].OutputTons)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "setup", PhaseSetup.String())
	assert.Equal(t, "cycle", PhaseCycle.String())
	assert.Equal(t, "finalized", PhaseFinalized.String())
	assert.Equal(t, "Phase(9)", Phase(9).String())
}
