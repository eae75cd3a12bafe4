package montecarlo

import (
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/supply-sim/supply-sim/sim/catalog"
	"github.com/supply-sim/supply-sim/sim/timeline"
)

// MetricStats summarizes one metric across a batch.
type MetricStats struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"std_dev"`
	Min    float64 `json:"min" yaml:"min"`
	P5     float64 `json:"p5" yaml:"p5"`
	P50    float64 `json:"p50" yaml:"p50"`
	P95    float64 `json:"p95" yaml:"p95"`
	Max    float64 `json:"max" yaml:"max"`
}

// Summary aggregates a batch.
type Summary struct {
	Runs               int                     `json:"runs" yaml:"runs"`
	AnnualProfitChange MetricStats             `json:"annual_profit_change" yaml:"annual_profit_change"`
	FinalOTIF          MetricStats             `json:"final_otif" yaml:"final_otif"`
	FinalFlexibility   MetricStats             `json:"final_flexibility" yaml:"final_flexibility"`
	FinalSatisfaction  MetricStats             `json:"final_satisfaction" yaml:"final_satisfaction"`
	CO2Savings         MetricStats             `json:"co2_savings" yaml:"co2_savings"`
	LossProbability    float64                 `json:"loss_probability" yaml:"loss_probability"`
	EventCounts        map[catalog.EventID]int `json:"event_counts" yaml:"event_counts"`
	CascadeEvents      int                     `json:"cascade_events" yaml:"cascade_events"`
	RunsWithCascade    int                     `json:"runs_with_cascade" yaml:"runs_with_cascade"`
}

// Aggregate computes distribution statistics over the records of a batch.
// LossProbability is the share of runs whose annual profit change is negative.
func Aggregate(records []RunRecord) Summary {
	s := Summary{
		Runs:        len(records),
		EventCounts: make(map[catalog.EventID]int),
	}
	if len(records) == 0 {
		return s
	}

	metric := func(get func(RunRecord) float64) MetricStats {
		xs := make([]float64, len(records))
		for i, r := range records {
			xs[i] = get(r)
		}
		return describe(xs)
	}
	s.AnnualProfitChange = metric(func(r RunRecord) float64 { return r.AnnualProfitChange })
	s.FinalOTIF = metric(func(r RunRecord) float64 { return r.FinalOTIF })
	s.FinalFlexibility = metric(func(r RunRecord) float64 { return r.FinalFlexibility })
	s.FinalSatisfaction = metric(func(r RunRecord) float64 { return r.FinalSatisfaction })
	s.CO2Savings = metric(func(r RunRecord) float64 { return r.CO2Savings })

	losses := 0
	for _, r := range records {
		if r.AnnualProfitChange < 0 {
			losses++
		}
		cascaded := false
		for _, ev := range r.Events {
			s.EventCounts[ev.Event]++
			if ev.Source == timeline.SourceCascade {
				s.CascadeEvents++
				cascaded = true
			}
		}
		if cascaded {
			s.RunsWithCascade++
		}
	}
	s.LossProbability = float64(losses) / float64(len(records))
	return s
}

func describe(xs []float64) MetricStats {
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	m := MetricStats{
		Mean: stat.Mean(sorted, nil),
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		P5:   stat.Quantile(0.05, stat.LinInterp, sorted, nil),
		P50:  stat.Quantile(0.50, stat.LinInterp, sorted, nil),
		P95:  stat.Quantile(0.95, stat.LinInterp, sorted, nil),
	}
	if len(sorted) > 1 {
		m.StdDev = stat.StdDev(sorted, nil)
	}
	return m
}
