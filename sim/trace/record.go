// Package trace provides decision-trace recording for simulation runs.
// This package has no dependencies on sim/ or its other sub-packages; it stores pure data types.
package trace

// CascadeRecord captures one cascade Bernoulli trial and its outcome.
type CascadeRecord struct {
	Month       int    // month of the triggering event
	Event       string // triggering event
	Triggers    string // derived event
	TargetMonth int
	Probability float64
	Fired       bool   // the Bernoulli trial succeeded
	Inserted    bool   // the derived event was placed in the timeline
	Reason      string // why a fired cascade was not inserted, empty otherwise
}

// EventRecord captures the application of one event in one month.
type EventRecord struct {
	Month            int
	Event            string
	Source           string
	Location         string
	Intervention     string
	InterventionCost float64
	MitigationFactor float64
	GeoRatio         float64            // affected country's share of output, 1 when not geography-scoped
	Sampled          map[string]float64 // impact kind → raw sampled magnitude before mitigation
}
