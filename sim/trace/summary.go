package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	CascadeTrials         int
	CascadesFired         int
	CascadesInserted      int
	EventsApplied         int
	TotalInterventionCost float64
	MeanGeoRatio          float64
	EventDistribution     map[string]int // event → months it was applied
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		EventDistribution: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.CascadeTrials = len(st.Cascades)
	for _, c := range st.Cascades {
		if c.Fired {
			summary.CascadesFired++
		}
		if c.Inserted {
			summary.CascadesInserted++
		}
	}

	if len(st.Events) > 0 {
		totalGeo := 0.0
		for _, e := range st.Events {
			summary.EventDistribution[e.Event]++
			summary.TotalInterventionCost += e.InterventionCost
			totalGeo += e.GeoRatio
		}
		summary.EventsApplied = len(st.Events)
		summary.MeanGeoRatio = totalGeo / float64(len(st.Events))
	}

	return summary
}
