package catalog

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML representation of a catalog.
type File struct {
	Events   []EventSpec   `yaml:"events"`
	Cascades []CascadeSpec `yaml:"cascades"`
}

// EventSpec describes one event in a catalog file.
type EventSpec struct {
	ID            string              `yaml:"id"`
	Type          string              `yaml:"type"`
	Description   string              `yaml:"description,omitempty"`
	Geographic    bool                `yaml:"geographic,omitempty"`
	DependsOn     string              `yaml:"depends_on,omitempty"`
	Impacts       map[string]DistSpec `yaml:"impacts,omitempty"`
	Interventions []InterventionSpec  `yaml:"interventions,omitempty"`
}

// InterventionSpec describes one intervention in a catalog file.
type InterventionSpec struct {
	ID               string   `yaml:"id"`
	Label            string   `yaml:"label,omitempty"`
	Cost             float64  `yaml:"cost"`
	MitigationFactor float64  `yaml:"mitigation_factor"`
	ProfitMultiplier *float64 `yaml:"profit_multiplier,omitempty"`
}

// CascadeSpec describes one cascade rule in a catalog file.
type CascadeSpec struct {
	From        string  `yaml:"from"`
	Triggers    string  `yaml:"triggers"`
	Delay       int     `yaml:"delay"`
	Probability float64 `yaml:"probability"`
}

// validDependsOn lists the strategy parameters an event may declare a dependency on.
var validDependsOn = map[string]bool{
	"":                            true,
	"single_sourcing_ratio":       true,
	"logistics_outsourcing_ratio": true,
}

// Load reads and builds a catalog from a YAML file with strict field checking.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	c, err := Build(&f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Validate checks a catalog file for structural errors.
func (f *File) Validate() error {
	seen := make(map[string]bool, len(f.Events))
	for i := range f.Events {
		ev := &f.Events[i]
		prefix := fmt.Sprintf("events[%d]", i)
		if ev.ID == "" {
			return fmt.Errorf("%s: id is required", prefix)
		}
		prefix = fmt.Sprintf("event %q", ev.ID)
		if seen[ev.ID] {
			return fmt.Errorf("%s: duplicate id", prefix)
		}
		seen[ev.ID] = true
		if !IsValidEventType(ev.Type) {
			return fmt.Errorf("%s: unknown type %q; valid: none, logistics, supply, financial, geopolitical, demand, reputation", prefix, ev.Type)
		}
		if EventID(ev.ID) == NoCrisis && (EventType(ev.Type) != TypeNone || len(ev.Impacts) > 0) {
			return fmt.Errorf("%s: must have type none and no impacts", prefix)
		}
		if !validDependsOn[ev.DependsOn] {
			return fmt.Errorf("%s: unknown depends_on %q", prefix, ev.DependsOn)
		}
		for kind, dist := range ev.Impacts {
			if !validImpactKinds[ImpactKind(kind)] {
				return fmt.Errorf("%s: unknown impact kind %q", prefix, kind)
			}
			if _, err := NewImpact(dist); err != nil {
				return fmt.Errorf("%s.impacts.%s: %w", prefix, kind, err)
			}
		}
		ivSeen := make(map[string]bool, len(ev.Interventions))
		for _, iv := range ev.Interventions {
			if iv.ID == "" {
				return fmt.Errorf("%s: intervention id is required", prefix)
			}
			if ivSeen[iv.ID] {
				return fmt.Errorf("%s: duplicate intervention %q", prefix, iv.ID)
			}
			ivSeen[iv.ID] = true
			if err := validateIntervention(prefix, iv); err != nil {
				return err
			}
		}
	}
	from := make(map[string]bool, len(f.Cascades))
	for i, r := range f.Cascades {
		prefix := fmt.Sprintf("cascades[%d]", i)
		if !seen[r.From] && EventID(r.From) != NoCrisis {
			return fmt.Errorf("%s: unknown source event %q", prefix, r.From)
		}
		if EventID(r.From) == NoCrisis {
			return fmt.Errorf("%s: %s cannot trigger a cascade", prefix, NoCrisis)
		}
		if !seen[r.Triggers] {
			return fmt.Errorf("%s: unknown triggered event %q", prefix, r.Triggers)
		}
		if from[r.From] {
			return fmt.Errorf("%s: event %q already has a cascade rule", prefix, r.From)
		}
		from[r.From] = true
		if r.Delay < 1 {
			return fmt.Errorf("%s: delay must be at least 1, got %d", prefix, r.Delay)
		}
		if math.IsNaN(r.Probability) || r.Probability < 0 || r.Probability > 1 {
			return fmt.Errorf("%s: probability must be in [0, 1], got %f", prefix, r.Probability)
		}
	}
	return nil
}

func validateIntervention(prefix string, iv InterventionSpec) error {
	p := fmt.Sprintf("%s.interventions.%s", prefix, iv.ID)
	if math.IsNaN(iv.Cost) || math.IsInf(iv.Cost, 0) || iv.Cost < 0 {
		return fmt.Errorf("%s: cost must be a finite non-negative number, got %f", p, iv.Cost)
	}
	if math.IsNaN(iv.MitigationFactor) || iv.MitigationFactor < 0 || iv.MitigationFactor > 1 {
		return fmt.Errorf("%s: mitigation_factor must be in [0, 1], got %f", p, iv.MitigationFactor)
	}
	if iv.ProfitMultiplier != nil && (math.IsNaN(*iv.ProfitMultiplier) || *iv.ProfitMultiplier < 0) {
		return fmt.Errorf("%s: profit_multiplier must be non-negative, got %f", p, *iv.ProfitMultiplier)
	}
	if iv.ID == NoIntervention && (iv.Cost != 0 || iv.MitigationFactor != 1 || iv.ProfitMultiplier != nil) {
		return fmt.Errorf("%s: the %q intervention must have zero cost and mitigation_factor 1", p, NoIntervention)
	}
	return nil
}

// Build validates f and constructs the immutable Catalog.
// Every event gets the NoIntervention option, and NoCrisis is always registered.
func Build(f *File) (*Catalog, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	c := &Catalog{
		events: make(map[EventID]*EventDefinition, len(f.Events)+1),
		rules:  make(map[EventID]CascadeRule, len(f.Cascades)),
	}
	for _, spec := range f.Events {
		ev := &EventDefinition{
			ID:            EventID(spec.ID),
			Type:          EventType(spec.Type),
			Description:   spec.Description,
			Geographic:    spec.Geographic,
			DependsOn:     spec.DependsOn,
			Impacts:       make(map[ImpactKind]Impact, len(spec.Impacts)),
			Interventions: make(map[string]Intervention, len(spec.Interventions)+1),
		}
		for kind, dist := range spec.Impacts {
			impact, err := NewImpact(dist)
			if err != nil {
				return nil, fmt.Errorf("event %q impact %s: %w", spec.ID, kind, err)
			}
			ev.Impacts[ImpactKind(kind)] = impact
		}
		ev.Interventions[NoIntervention] = Intervention{ID: NoIntervention, Label: "No intervention", MitigationFactor: 1}
		for _, iv := range spec.Interventions {
			var mult *float64
			if iv.ProfitMultiplier != nil {
				m := *iv.ProfitMultiplier
				mult = &m
			}
			label := iv.Label
			if label == "" {
				label = iv.ID
			}
			ev.Interventions[iv.ID] = Intervention{
				ID:               iv.ID,
				Label:            label,
				Cost:             iv.Cost,
				MitigationFactor: iv.MitigationFactor,
				ProfitMultiplier: mult,
			}
		}
		c.events[ev.ID] = ev
	}
	if _, ok := c.events[NoCrisis]; !ok {
		c.events[NoCrisis] = &EventDefinition{
			ID:            NoCrisis,
			Type:          TypeNone,
			Impacts:       map[ImpactKind]Impact{},
			Interventions: map[string]Intervention{NoIntervention: {ID: NoIntervention, Label: "No intervention", MitigationFactor: 1}},
		}
	}
	for _, r := range f.Cascades {
		c.rules[EventID(r.From)] = CascadeRule{
			From:        EventID(r.From),
			Triggers:    EventID(r.Triggers),
			Delay:       r.Delay,
			Probability: r.Probability,
		}
	}
	return c, nil
}
