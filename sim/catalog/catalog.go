// Package catalog holds the disruption-event registry: event definitions with their
// impact distributions and interventions, plus the cascade rules between events.
// A Catalog is immutable once built and may be shared by concurrent runs.
package catalog

import (
	"fmt"
	"sort"
)

// EventID names a disruption event.
type EventID string

// NoCrisis is the sentinel for a month without an event.
const NoCrisis EventID = "no_crisis"

// NoIntervention is the intervention every event offers: zero cost, full impact.
const NoIntervention = "none"

// EventType classifies an event. Net-profit multipliers only apply to demand and reputation events.
type EventType string

const (
	TypeNone         EventType = "none"
	TypeLogistics    EventType = "logistics"
	TypeSupply       EventType = "supply"
	TypeFinancial    EventType = "financial"
	TypeGeopolitical EventType = "geopolitical"
	TypeDemand       EventType = "demand"
	TypeReputation   EventType = "reputation"
)

var validEventTypes = map[EventType]bool{
	TypeNone:         true,
	TypeLogistics:    true,
	TypeSupply:       true,
	TypeFinancial:    true,
	TypeGeopolitical: true,
	TypeDemand:       true,
	TypeReputation:   true,
}

// IsValidEventType returns true if name is a recognized event type.
func IsValidEventType(name string) bool {
	return validEventTypes[EventType(name)]
}

// AppliesProfitMultiplier reports whether net-profit multiplier impacts take effect for this type.
func (t EventType) AppliesProfitMultiplier() bool {
	return t == TypeDemand || t == TypeReputation
}

// ImpactKind names the KPI an impact acts on.
type ImpactKind string

const (
	ImpactSatisfactionShock   ImpactKind = "satisfaction_shock"
	ImpactOTIF                ImpactKind = "otif"
	ImpactProductionLoss      ImpactKind = "production_loss"
	ImpactNetProfit           ImpactKind = "net_profit"
	ImpactNetProfitMultiplier ImpactKind = "net_profit_multiplier"
)

// ImpactOrder is the order in which impacts are sampled and applied within a month.
// Sampling order is part of the determinism contract.
var ImpactOrder = []ImpactKind{
	ImpactSatisfactionShock,
	ImpactOTIF,
	ImpactProductionLoss,
	ImpactNetProfit,
	ImpactNetProfitMultiplier,
}

var validImpactKinds = map[ImpactKind]bool{
	ImpactSatisfactionShock:   true,
	ImpactOTIF:                true,
	ImpactProductionLoss:      true,
	ImpactNetProfit:           true,
	ImpactNetProfitMultiplier: true,
}

// Intervention is a mitigation option for an event.
type Intervention struct {
	ID               string
	Label            string
	Cost             float64
	MitigationFactor float64  // in [0,1], scales impact magnitudes
	ProfitMultiplier *float64 // optional, applied to monthly profit before impacts
}

// EventDefinition describes one disruption event.
type EventDefinition struct {
	ID            EventID
	Type          EventType
	Description   string
	Geographic    bool   // impacts scale with the affected country's share of output
	DependsOn     string // strategy parameter that modulates the impact, informational
	Impacts       map[ImpactKind]Impact
	Interventions map[string]Intervention
}

// Intervention looks up an intervention by ID. The empty ID means NoIntervention.
func (d *EventDefinition) Intervention(id string) (Intervention, error) {
	if id == "" {
		id = NoIntervention
	}
	iv, ok := d.Interventions[id]
	if !ok {
		return Intervention{}, &UnknownInterventionError{Event: d.ID, Intervention: id}
	}
	return iv, nil
}

// InterventionIDs returns the event's intervention IDs in sorted order.
func (d *EventDefinition) InterventionIDs() []string {
	ids := make([]string, 0, len(d.Interventions))
	for id := range d.Interventions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CascadeRule derives a secondary event Delay months after From, with the given probability.
type CascadeRule struct {
	From        EventID
	Triggers    EventID
	Delay       int
	Probability float64
}

// Catalog is the immutable registry of events and cascade rules.
type Catalog struct {
	events map[EventID]*EventDefinition
	rules  map[EventID]CascadeRule
}

// Event looks up an event definition.
func (c *Catalog) Event(id EventID) (*EventDefinition, error) {
	ev, ok := c.events[id]
	if !ok {
		return nil, &UnknownEventError{ID: id}
	}
	return ev, nil
}

// Rule returns the cascade rule triggered by id, if any.
func (c *Catalog) Rule(id EventID) (CascadeRule, bool) {
	r, ok := c.rules[id]
	return r, ok
}

// EventIDs returns all registered event IDs except NoCrisis, sorted.
func (c *Catalog) EventIDs() []EventID {
	ids := make([]EventID, 0, len(c.events))
	for id := range c.events {
		if id == NoCrisis {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Rules returns the cascade rules sorted by source event.
func (c *Catalog) Rules() []CascadeRule {
	out := make([]CascadeRule, 0, len(c.rules))
	for _, r := range c.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].From < out[j].From })
	return out
}

// UnknownEventError is returned when an event ID is not in the catalog.
type UnknownEventError struct {
	ID EventID
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unknown event %q", e.ID)
}

// UnknownInterventionError is returned when an event has no intervention with the given ID.
type UnknownInterventionError struct {
	Event        EventID
	Intervention string
}

func (e *UnknownInterventionError) Error() string {
	return fmt.Sprintf("event %q has no intervention %q", e.Event, e.Intervention)
}
