package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures cascade trials and event applications.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// Enabled reports whether any records should be collected.
func (c TraceConfig) Enabled() bool {
	return c.Level == TraceLevelDecisions
}

// SimulationTrace collects decision records during one run.
// Record methods are nil-safe so callers need not check whether tracing is on.
type SimulationTrace struct {
	Config   TraceConfig
	Cascades []CascadeRecord
	Events   []EventRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
// Returns nil when the level disables tracing.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	if !config.Enabled() {
		return nil
	}
	return &SimulationTrace{
		Config:   config,
		Cascades: make([]CascadeRecord, 0),
		Events:   make([]EventRecord, 0),
	}
}

// RecordCascade appends a cascade decision record.
func (st *SimulationTrace) RecordCascade(record CascadeRecord) {
	if st == nil {
		return
	}
	st.Cascades = append(st.Cascades, record)
}

// RecordEvent appends an event application record.
func (st *SimulationTrace) RecordEvent(record EventRecord) {
	if st == nil {
		return
	}
	st.Events = append(st.Events, record)
}
