package catalog

// Built-in event IDs.
const (
	PortStrike                EventID = "port_strike"
	LogisticsProviderFailure  EventID = "logistics_provider_bankruptcy"
	RawMaterialSupplierCrisis EventID = "raw_material_supplier_crisis"
	InterestRateShock         EventID = "interest_rate_shock"
	NewCustomsTariffs         EventID = "new_customs_tariffs"
	DemandSurge               EventID = "demand_surge"
	CompetitorPriceCut        EventID = "competitor_price_cut"
	CustomerTrustLoss         EventID = "customer_trust_loss"
	SpotPriceSpike            EventID = "spot_price_spike"
	StrategicDilemma          EventID = "strategic_dilemma"
	CompetitorExit            EventID = "competitor_exit"
)

func ptr(v float64) *float64 { return &v }

// DefaultFile returns the built-in catalog definition.
// Each call returns a fresh value that callers may modify.
func DefaultFile() *File {
	return &File{
		Events: []EventSpec{
			{ID: string(NoCrisis), Type: string(TypeNone)},
			{
				ID: string(PortStrike), Type: string(TypeLogistics), Geographic: true,
				Description: "Port workers strike at the main export port",
				Impacts:     map[string]DistSpec{string(ImpactOTIF): normal(-0.15, 0.025)},
				Interventions: []InterventionSpec{
					{ID: "alternative_port", Label: "Alternative port ($750K)", Cost: 750000, MitigationFactor: 0.8},
					{ID: "air_freight", Label: "Air freight ($2M)", Cost: 2000000, MitigationFactor: 0.4},
				},
			},
			{
				ID: string(LogisticsProviderFailure), Type: string(TypeLogistics), Geographic: true,
				Description: "Third-party logistics provider goes bankrupt",
				Impacts: map[string]DistSpec{
					string(ImpactOTIF):              uniform(-0.18, -0.08),
					string(ImpactSatisfactionShock): uniform(-1.0, -0.5),
				},
				Interventions: []InterventionSpec{
					{ID: "spot_freight", Label: "Spot freight agreements ($1.2M)", Cost: 1200000, MitigationFactor: 0.5},
				},
			},
			{
				ID: string(RawMaterialSupplierCrisis), Type: string(TypeSupply), Geographic: true,
				DependsOn:   "single_sourcing_ratio",
				Description: "Key raw material supplier fails to deliver",
				Impacts: map[string]DistSpec{
					string(ImpactProductionLoss):    normal(0.75, 0.10),
					string(ImpactSatisfactionShock): uniform(-0.8, -0.3),
				},
				Interventions: []InterventionSpec{
					{ID: "alternative_supplier", Label: "Alternative supplier ($2.5M)", Cost: 2500000, MitigationFactor: 0.3},
				},
			},
			{
				ID: string(InterestRateShock), Type: string(TypeFinancial),
				Description: "Sudden rise in financing costs",
				Impacts:     map[string]DistSpec{string(ImpactNetProfit): constant(-750000)},
				Interventions: []InterventionSpec{
					{ID: "emergency_cost_cut", Label: "Emergency cost cut ($200K)", Cost: 200000, MitigationFactor: 0.5},
				},
			},
			{
				ID: string(NewCustomsTariffs), Type: string(TypeGeopolitical), Geographic: true,
				Description: "New customs tariffs on exports",
				Impacts:     map[string]DistSpec{string(ImpactNetProfit): constant(-1200000)},
				Interventions: []InterventionSpec{
					{ID: "supply_chain_optimization", Label: "Supply chain optimization ($400K)", Cost: 400000, MitigationFactor: 1.0},
				},
			},
			{
				ID: string(DemandSurge), Type: string(TypeDemand),
				Description: "Unexpected surge in demand",
				Impacts: map[string]DistSpec{
					string(ImpactNetProfitMultiplier): constant(1.4),
					string(ImpactOTIF):                constant(-0.05),
				},
				Interventions: []InterventionSpec{
					{ID: "overtime", Label: "Seize the opportunity: overtime ($500K)", Cost: 500000, MitigationFactor: 0.2},
				},
			},
			{
				ID: string(CompetitorPriceCut), Type: string(TypeDemand),
				Description: "Main competitor cuts prices",
				Impacts:     map[string]DistSpec{string(ImpactNetProfitMultiplier): constant(0.75)},
				Interventions: []InterventionSpec{
					{ID: "match_price", Label: "Match the price (-15% margin)", Cost: 0, MitigationFactor: 1.0, ProfitMultiplier: ptr(0.85)},
					{ID: "brand_campaign", Label: "Brand value campaign ($600K)", Cost: 600000, MitigationFactor: 0.0},
				},
			},
			{
				ID: string(CustomerTrustLoss), Type: string(TypeReputation),
				Description: "Key customers lose trust after service failures",
				Impacts: map[string]DistSpec{
					string(ImpactOTIF):                constant(-0.05),
					string(ImpactNetProfitMultiplier): constant(0.95),
				},
				Interventions: []InterventionSpec{
					{ID: "reputation_campaign", Label: "Reputation management campaign ($400K)", Cost: 400000, MitigationFactor: 0.0},
				},
			},
			{
				ID: string(SpotPriceSpike), Type: string(TypeFinancial),
				Description: "Spot market raw material prices spike",
				Impacts:     map[string]DistSpec{string(ImpactNetProfit): constant(-1500000)},
				Interventions: []InterventionSpec{
					{ID: "short_term_contract", Label: "Short-term contract ($1M)", Cost: 1000000, MitigationFactor: 0.33},
				},
			},
			{
				ID: string(StrategicDilemma), Type: string(TypeDemand),
				Description: "Demand rises but only at lower prices",
				Impacts: map[string]DistSpec{
					string(ImpactNetProfitMultiplier): constant(1.05),
					string(ImpactOTIF):                constant(-0.05),
				},
			},
			{
				ID: string(CompetitorExit), Type: string(TypeDemand),
				Description: "A competitor leaves the market",
				Impacts: map[string]DistSpec{
					string(ImpactNetProfitMultiplier): constant(1.6),
					string(ImpactOTIF):                constant(-0.08),
				},
				Interventions: []InterventionSpec{
					{ID: "aggressive_capacity", Label: "Aggressive capacity increase ($1M)", Cost: 1000000, MitigationFactor: 0.5},
				},
			},
		},
		Cascades: []CascadeSpec{
			{From: string(PortStrike), Triggers: string(CustomerTrustLoss), Delay: 1, Probability: 0.40},
			{From: string(RawMaterialSupplierCrisis), Triggers: string(SpotPriceSpike), Delay: 2, Probability: 0.60},
		},
	}
}

// Default builds the built-in catalog. It panics only if the built-in definition is invalid.
func Default() *Catalog {
	c, err := Build(DefaultFile())
	if err != nil {
		panic("catalog: invalid built-in definition: " + err.Error())
	}
	return c
}
