package sim

import (
	"fmt"

	"github.com/supply-sim/supply-sim/sim/catalog"
	"github.com/supply-sim/supply-sim/sim/timeline"
	"github.com/supply-sim/supply-sim/sim/trace"
)

// Plan is the user-controlled part of a run: which events happen when, where the
// geographic ones strike, and which interventions respond to them.
type Plan struct {
	Timeline      timeline.Timeline `json:"timeline" yaml:"timeline"`
	Locations     map[int]string    `json:"locations,omitempty" yaml:"locations,omitempty"`
	Interventions map[int]string    `json:"interventions,omitempty" yaml:"interventions,omitempty"`
}

// Validate checks the plan against cfg and cat before any month is simulated.
// A location may name any configured country. An intervention requires the same
// month to hold a planned event that offers it.
func (p Plan) Validate(cfg *Config, cat *catalog.Catalog) error {
	horizon := cfg.Horizon()
	if err := p.Timeline.Validate(cat, horizon); err != nil {
		return err
	}
	countries := cfg.Countries()
	for m, loc := range p.Locations {
		if m < 1 || m > horizon {
			return fmt.Errorf("location month %d outside [1, %d]", m, horizon)
		}
		if loc != "" && !countries[loc] {
			return fmt.Errorf("month %d: unknown location %q", m, loc)
		}
	}
	for m, id := range p.Interventions {
		if m < 1 || m > horizon {
			return fmt.Errorf("intervention month %d outside [1, %d]", m, horizon)
		}
		if id == "" || id == catalog.NoIntervention {
			continue
		}
		entry, ok := p.Timeline[m]
		if !ok {
			return fmt.Errorf("month %d: intervention %q without a planned event", m, id)
		}
		ev, err := cat.Event(entry.Event)
		if err != nil {
			return fmt.Errorf("month %d: %w", m, err)
		}
		if _, err := ev.Intervention(id); err != nil {
			return fmt.Errorf("month %d: %w", m, err)
		}
	}
	return nil
}

// RunContext bundles the shared, read-only inputs of a run. One RunContext may back
// many concurrent runs.
type RunContext struct {
	Config       *Config
	Base         *BaseData
	Catalog      *catalog.Catalog
	Plan         Plan
	Seed         int64
	DisableNoise bool
	TraceLevel   trace.TraceLevel
}

// NewRunContext derives base data from cfg and fills the remaining fields with defaults.
func NewRunContext(cfg *Config, cat *catalog.Catalog, plan Plan, seed int64) RunContext {
	return RunContext{
		Config:  cfg,
		Base:    NewBaseData(cfg),
		Catalog: cat,
		Plan:    plan,
		Seed:    seed,
	}
}

// RunSingle executes one complete run seeded with rc.Seed.
func RunSingle(rc RunContext, params StrategyParameters) (*RunResult, error) {
	return RunWithKey(rc, params, NewSimulationKey(rc.Seed))
}

// RunWithKey executes one complete run with an explicit key. Monte Carlo and
// optimization drivers derive keys per run and call this directly.
func RunWithKey(rc RunContext, params StrategyParameters, key SimulationKey) (*RunResult, error) {
	base := rc.Base
	if base == nil && rc.Config != nil {
		base = NewBaseData(rc.Config)
	}
	s, err := NewSimulator(rc.Config, base, rc.Catalog, params, Options{
		Key:          key,
		DisableNoise: rc.DisableNoise,
		Trace:        trace.NewSimulationTrace(trace.TraceConfig{Level: rc.TraceLevel}),
	})
	if err != nil {
		return nil, err
	}
	return s.Run(rc.Plan)
}
