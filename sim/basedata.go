package sim

// BaseData is the immutable starting point shared by all runs built from one Config.
// Runs clone Facilities before mutating them.
type BaseData struct {
	Facilities        FacilityTable
	TotalAnnualVolume float64
	Distances         map[string]float64
	EmissionFactor    float64
	BaselineCO2       float64
	InitialKPIs       KPIState
}

// NewBaseData derives base data from a validated Config.
// Facility output is capacity × utilization, and baseline CO2 is the emissions of that output.
func NewBaseData(cfg *Config) *BaseData {
	table := make(FacilityTable, 0, len(cfg.Network.Facilities))
	for _, f := range cfg.Network.Facilities {
		table = append(table, Facility{
			Site:         f.Site,
			Country:      f.Country,
			CapacityTons: f.CapacityTons,
			Utilization:  f.Utilization,
			OutputTons:   f.CapacityTons * f.Utilization,
		})
	}
	distances := make(map[string]float64, len(cfg.CO2.DistancesKm))
	for k, v := range cfg.CO2.DistancesKm {
		distances[k] = v
	}
	b := &BaseData{
		Facilities:        table,
		TotalAnnualVolume: cfg.Network.TotalAnnualVolume,
		Distances:         distances,
		EmissionFactor:    cfg.CO2.EmissionFactor,
		InitialKPIs:       InitialKPIs(cfg.KPI),
	}
	b.BaselineCO2 = b.Emissions(table, "", 1)
	return b
}

// Emissions computes CO2 for a facility table: output × distance × emission factor,
// with multiplier applied only to plants in hubCountry.
func (b *BaseData) Emissions(t FacilityTable, hubCountry string, multiplier float64) float64 {
	total := 0.0
	for _, f := range t {
		co2 := f.OutputTons * b.Distances[f.Country] * b.EmissionFactor
		if hubCountry != "" && f.Country == hubCountry {
			co2 *= multiplier
		}
		total += co2
	}
	return total
}
