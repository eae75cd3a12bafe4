package sim

// KPIState is the set of indicators tracked month by month.
type KPIState struct {
	OTIF             float64 `json:"otif" yaml:"otif"`
	NetProfit        float64 `json:"net_profit" yaml:"net_profit"`
	Satisfaction     float64 `json:"satisfaction" yaml:"satisfaction"`
	Flexibility      float64 `json:"flexibility" yaml:"flexibility"`
	Turnover         float64 `json:"turnover" yaml:"turnover"`
	ForecastAccuracy float64 `json:"forecast_accuracy" yaml:"forecast_accuracy"`
}

// InitialKPIs builds the starting KPI state from configured defaults.
func InitialKPIs(d *KPIDefaults) KPIState {
	return KPIState{
		OTIF:             d.OTIF,
		NetProfit:        d.MonthlyNetProfit,
		Satisfaction:     d.Satisfaction,
		Flexibility:      d.Flexibility,
		Turnover:         d.Turnover,
		ForecastAccuracy: d.ForecastAccuracy,
	}
}

// Clamp bounds OTIF, flexibility and satisfaction to the limits and turnover to >= 0.
// Net profit and forecast accuracy are not clamped.
func (k *KPIState) Clamp(l KPILimits) {
	k.OTIF = clamp(k.OTIF, l.Min, l.MaxOTIF)
	k.Turnover = max(0, k.Turnover)
	k.Flexibility = clamp(k.Flexibility, l.Min, l.MaxFlexibility)
	k.Satisfaction = clamp(k.Satisfaction, l.Min, l.MaxSatisfaction)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
