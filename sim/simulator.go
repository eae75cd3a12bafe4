package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/supply-sim/supply-sim/sim/catalog"
	"github.com/supply-sim/supply-sim/sim/timeline"
	"github.com/supply-sim/supply-sim/sim/trace"
)

// Phase is the lifecycle state of a Simulator.
type Phase int

const (
	PhaseSetup     Phase = iota // month 0, before one-time effects
	PhaseCycle                  // months 1..horizon
	PhaseFinalized              // results computed
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseCycle:
		return "cycle"
	case PhaseFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// ErrAlreadyRun is returned when Run is called on a Simulator that has left the setup phase.
var ErrAlreadyRun = errors.New("simulator already run")

// Options configures randomness and tracing for one Simulator.
type Options struct {
	Key          SimulationKey
	DisableNoise bool
	Trace        *trace.SimulationTrace // nil disables tracing
}

// Simulator owns the state of exactly one run: a cloned facility table, the KPI state,
// and the month history. It is not safe for concurrent use; concurrent runs each build
// their own Simulator.
type Simulator struct {
	cfg    *Config
	base   *BaseData
	cat    *catalog.Catalog
	params StrategyParameters

	production ProductionImpact
	inventory  InventoryImpact
	transport  TransportImpact

	rng   *PartitionedRNG
	noise NoiseModel
	trace *trace.SimulationTrace

	phase      Phase
	month      int
	kpis       KPIState
	facilities FacilityTable
	investment float64
	setup      Snapshot
	timeline   timeline.Timeline
	history    []MonthRecord
}

// NewSimulator validates params against cfg and prepares a run in the setup phase.
func NewSimulator(cfg *Config, base *BaseData, cat *catalog.Catalog, params StrategyParameters, opts Options) (*Simulator, error) {
	if cfg == nil || base == nil || cat == nil {
		return nil, fmt.Errorf("simulator requires config, base data and catalog")
	}
	if err := params.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	params = params.Normalized(cfg)

	rng := NewPartitionedRNG(opts.Key)
	var noise NoiseModel = NoNoise{}
	if !opts.DisableNoise {
		noise = NewUniformNoise(cfg.Simulation.Noise, rng.ForSubsystem(SubsystemNoise))
	}

	return &Simulator{
		cfg:        cfg,
		base:       base,
		cat:        cat,
		params:     params,
		production: cfg.Production[params.Production],
		inventory:  cfg.Inventory[params.Inventory],
		transport:  cfg.Transport[params.Transport],
		rng:        rng,
		noise:      noise,
		trace:      opts.Trace,
		phase:      PhaseSetup,
		kpis:       base.InitialKPIs,
		facilities: base.Facilities.Clone(),
		history:    make([]MonthRecord, 0, cfg.Horizon()),
	}, nil
}

// Phase returns the current lifecycle state.
func (s *Simulator) Phase() Phase { return s.phase }

// Month returns the last completed month, 0 before the first cycle.
func (s *Simulator) Month() int { return s.month }

// KPIs returns a copy of the current KPI state.
func (s *Simulator) KPIs() KPIState { return s.kpis }

// Facilities returns a copy of the current facility table.
func (s *Simulator) Facilities() FacilityTable { return s.facilities.Clone() }

// Parameters returns the normalized parameters of this run.
func (s *Simulator) Parameters() StrategyParameters { return s.params }

// Setup applies one-time strategy effects and moves to the cycle phase.
func (s *Simulator) Setup() error {
	if s.phase != PhaseSetup {
		return fmt.Errorf("setup in phase %s", s.phase)
	}
	s.applySetupEffects()
	s.setup = Snapshot{
		KPIs:           s.kpis,
		Facilities:     s.facilities.Clone(),
		InvestmentCost: s.investment,
	}
	s.phase = PhaseCycle
	return nil
}

// Step runs one monthly cycle with the given event entry, location and intervention.
func (s *Simulator) Step(entry timeline.Entry, location, interventionID string) (MonthRecord, error) {
	if s.phase != PhaseCycle {
		return MonthRecord{}, fmt.Errorf("step in phase %s", s.phase)
	}
	if s.month >= s.cfg.Horizon() {
		return MonthRecord{}, fmt.Errorf("step beyond horizon %d", s.cfg.Horizon())
	}
	s.month++
	prev := s.kpis

	s.kpis.ForecastAccuracy = s.params.ForecastAccuracy
	s.applyRecurringEffects()
	s.noise.Apply(&s.kpis)

	used, err := s.applyEvent(entry, location, interventionID)
	if err != nil {
		return MonthRecord{}, fmt.Errorf("month %d: %w", s.month, err)
	}

	s.updateDependentKPIs(prev)

	rec := MonthRecord{
		Month:            s.month,
		OTIF:             s.kpis.OTIF,
		NetProfit:        s.kpis.NetProfit,
		Satisfaction:     s.kpis.Satisfaction,
		Flexibility:      s.kpis.Flexibility,
		Turnover:         s.kpis.Turnover,
		ForecastAccuracy: s.kpis.ForecastAccuracy,
		Event:            entry.Event,
		Source:           entry.Source,
	}
	if entry.Event != catalog.NoCrisis {
		rec.Location = location
		if used != catalog.NoIntervention {
			rec.Intervention = used
		}
	}
	s.history = append(s.history, rec)
	return rec, nil
}

// Finalize computes utilization, emissions and the run summary.
// It requires every month of the horizon to have been stepped.
func (s *Simulator) Finalize() (*RunResult, error) {
	if s.phase != PhaseCycle || s.month != s.cfg.Horizon() {
		return nil, fmt.Errorf("finalize in phase %s at month %d", s.phase, s.month)
	}
	s.facilities.RefreshUtilization()

	hub := ""
	if s.production.AgileHub {
		hub = s.production.TargetCountry
	}
	co2 := s.base.Emissions(s.facilities, hub, s.transport.CO2Multiplier)

	annual := 0.0
	for _, row := range s.history {
		annual += row.NetProfit
	}
	baseline := s.base.InitialKPIs.NetProfit * float64(s.cfg.Horizon())
	last := s.history[len(s.history)-1]

	s.phase = PhaseFinalized
	return &RunResult{
		Key:        s.rng.Key(),
		Parameters: s.params,
		History:    s.history,
		Facilities: s.facilities.Clone(),
		Setup:      s.setup,
		Timeline:   s.timeline,
		Summary: RunSummary{
			AnnualProfit:       annual,
			AnnualProfitChange: annual - s.investment - baseline,
			InvestmentCost:     s.investment,
			FinalOTIF:          last.OTIF,
			FinalFlexibility:   last.Flexibility,
			FinalSatisfaction:  last.Satisfaction,
			FinalTurnover:      last.Turnover,
			CO2Emissions:       co2,
			CO2Savings:         s.base.BaselineCO2 - co2,
		},
		Trace: s.trace,
	}, nil
}

// Run executes the full lifecycle: setup, cascade resolution, every monthly cycle, finalize.
func (s *Simulator) Run(plan Plan) (*RunResult, error) {
	if s.phase != PhaseSetup {
		return nil, ErrAlreadyRun
	}
	if err := plan.Validate(s.cfg, s.cat); err != nil {
		return nil, err
	}
	if err := s.Setup(); err != nil {
		return nil, err
	}

	s.timeline = timeline.Resolve(plan.Timeline, s.cat, s.cfg.Horizon(), s.rng.ForSubsystem(SubsystemCascade), s.trace)

	for m := 1; m <= s.cfg.Horizon(); m++ {
		if _, err := s.Step(s.timeline.At(m), plan.Locations[m], plan.Interventions[m]); err != nil {
			return nil, err
		}
	}

	res, err := s.Finalize()
	if err != nil {
		return nil, err
	}
	logrus.Debugf("run %d complete: annual profit change %.0f, final OTIF %.3f",
		res.Key, res.Summary.AnnualProfitChange, res.Summary.FinalOTIF)
	return res, nil
}
