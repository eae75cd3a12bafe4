// Package scenario bundles a plan with strategy parameters: the built-in presets and
// scenarios read from YAML files.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/supply-sim/supply-sim/sim"
	"github.com/supply-sim/supply-sim/sim/catalog"
	"github.com/supply-sim/supply-sim/sim/timeline"
)

// Scenario is a named plan plus the parameter changes it makes to the defaults.
type Scenario struct {
	Name        string
	Description string
	Plan        sim.Plan

	// apply overlays the scenario's parameter choices on the defaults.
	apply func(p *sim.StrategyParameters) error
}

// Parameters returns the defaults from cfg with the scenario's overrides applied,
// normalized for cfg.
func (s *Scenario) Parameters(cfg *sim.Config) (sim.StrategyParameters, error) {
	p := sim.DefaultParameters(cfg)
	if s.apply != nil {
		if err := s.apply(&p); err != nil {
			return p, fmt.Errorf("scenario %q parameters: %w", s.Name, err)
		}
	}
	return p.Normalized(cfg), nil
}

// Validate checks the plan and parameters against cfg and cat.
func (s *Scenario) Validate(cfg *sim.Config, cat *catalog.Catalog) error {
	if err := s.Plan.Validate(cfg, cat); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	p, err := s.Parameters(cfg)
	if err != nil {
		return err
	}
	if err := p.Validate(cfg); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return nil
}

// File is the YAML representation of a scenario.
type File struct {
	Name          string                  `yaml:"name"`
	Description   string                  `yaml:"description,omitempty"`
	Timeline      map[int]catalog.EventID `yaml:"timeline"`
	Locations     map[int]string          `yaml:"locations,omitempty"`
	Interventions map[int]string          `yaml:"interventions,omitempty"`
	Parameters    yaml.Node               `yaml:"parameters,omitempty"`
}

// Load reads a scenario file with strict field checking. Parameters given in the file
// override the defaults; omitted ones keep them.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes scenario YAML with strict field checking.
func Parse(data []byte) (*Scenario, error) {
	var f File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if f.Name == "" {
		return nil, fmt.Errorf("parsing scenario: name is required")
	}

	s := &Scenario{
		Name:        f.Name,
		Description: f.Description,
		Plan: sim.Plan{
			Timeline:      timeline.FromEvents(f.Timeline, timeline.SourceUser),
			Locations:     f.Locations,
			Interventions: f.Interventions,
		},
	}
	if f.Parameters.Kind != 0 {
		raw, err := yaml.Marshal(&f.Parameters)
		if err != nil {
			return nil, fmt.Errorf("scenario %q parameters: %w", f.Name, err)
		}
		s.apply = func(p *sim.StrategyParameters) error {
			d := yaml.NewDecoder(bytes.NewReader(raw))
			d.KnownFields(true)
			return d.Decode(p)
		}
		// Decode once now so typos surface at load time.
		var probe sim.StrategyParameters
		if err := s.apply(&probe); err != nil {
			return nil, fmt.Errorf("scenario %q parameters: %w", f.Name, err)
		}
	}
	return s, nil
}

// Preset returns the built-in scenario with the given name.
func Preset(name string) (*Scenario, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q; valid: %s", name, strings.Join(PresetNames(), ", "))
	}
	return build(), nil
}

// PresetNames returns the built-in scenario names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
