// Package timeline holds the sparse month→event schedule of a run and the cascade
// resolver that derives secondary events from it.
package timeline

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/supply-sim/supply-sim/sim/catalog"
	"github.com/supply-sim/supply-sim/sim/trace"
)

// Source records where a timeline entry came from.
type Source string

const (
	SourceUser    Source = "user"
	SourcePreset  Source = "preset"
	SourceCascade Source = "cascade"
	SourceNone    Source = "none"
)

// Entry is one scheduled event.
type Entry struct {
	Event  catalog.EventID `json:"event" yaml:"event"`
	Source Source          `json:"source" yaml:"source"`
}

// Timeline maps month (1-based) to its scheduled event.
type Timeline map[int]Entry

// FromEvents builds a timeline where every entry carries the same source.
func FromEvents(events map[int]catalog.EventID, source Source) Timeline {
	t := make(Timeline, len(events))
	for m, ev := range events {
		t[m] = Entry{Event: ev, Source: source}
	}
	return t
}

// At returns the entry for month, or the no-crisis sentinel when the month is empty.
func (t Timeline) At(month int) Entry {
	if e, ok := t[month]; ok {
		return e
	}
	return Entry{Event: catalog.NoCrisis, Source: SourceNone}
}

// Months returns the occupied months in ascending order.
func (t Timeline) Months() []int {
	months := make([]int, 0, len(t))
	for m := range t {
		months = append(months, m)
	}
	sort.Ints(months)
	return months
}

// Clone returns an independent copy.
func (t Timeline) Clone() Timeline {
	c := make(Timeline, len(t))
	for m, e := range t {
		c[m] = e
	}
	return c
}

// Validate checks that every month lies in [1, horizon] and every event is registered.
func (t Timeline) Validate(cat *catalog.Catalog, horizon int) error {
	for _, m := range t.Months() {
		if m < 1 || m > horizon {
			return fmt.Errorf("timeline month %d outside [1, %d]", m, horizon)
		}
		if _, err := cat.Event(t[m].Event); err != nil {
			return fmt.Errorf("timeline month %d: %w", m, err)
		}
	}
	return nil
}

// Resolve returns a copy of initial with cascade events added.
//
// Each entry of initial whose event has a cascade rule gets exactly one Bernoulli
// trial, in ascending month order, whether or not its target month is reachable.
// A successful trial inserts the triggered event at month+delay only when that month
// is within horizon and unoccupied. Only initial entries are considered, so cascades
// never chain within one pass, and existing entries always win.
func Resolve(initial Timeline, cat *catalog.Catalog, horizon int, rng *rand.Rand, st *trace.SimulationTrace) Timeline {
	resolved := initial.Clone()
	for _, month := range initial.Months() {
		entry := initial[month]
		rule, ok := cat.Rule(entry.Event)
		if !ok {
			continue
		}
		fired := distuv.Bernoulli{P: rule.Probability, Src: rng}.Rand() == 1
		target := month + rule.Delay
		rec := trace.CascadeRecord{
			Month:       month,
			Event:       string(entry.Event),
			Triggers:    string(rule.Triggers),
			TargetMonth: target,
			Probability: rule.Probability,
			Fired:       fired,
		}
		if fired {
			switch _, occupied := resolved[target]; {
			case target > horizon:
				rec.Reason = "beyond horizon"
			case occupied:
				rec.Reason = "month occupied"
			default:
				resolved[target] = Entry{Event: rule.Triggers, Source: SourceCascade}
				rec.Inserted = true
				logrus.Debugf("cascade: %s in month %d triggered %s in month %d", entry.Event, month, rule.Triggers, target)
			}
		}
		st.RecordCascade(rec)
	}
	return resolved
}
