package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/supply-sim/supply-sim/sim/catalog"
	"github.com/supply-sim/supply-sim/sim/timeline"
	"github.com/supply-sim/supply-sim/sim/trace"
)

// applyEvent applies the month's event and chosen intervention. It returns the
// intervention ID actually used, empty for the no-crisis sentinel.
//
// Impacts are sampled in catalog.ImpactOrder and scaled by the intervention's
// mitigation factor. OTIF and net-profit deltas also scale by the affected country's
// share of output when the event is geography-scoped and a location is given; a
// production loss is then confined to that country's plants. A profit multiplier
// below 1 is mitigated toward 1; an upside multiplier applies in full.
func (s *Simulator) applyEvent(entry timeline.Entry, location, interventionID string) (string, error) {
	ev, err := s.cat.Event(entry.Event)
	if err != nil {
		return "", err
	}
	if ev.Type == catalog.TypeNone {
		return "", nil
	}

	iv, err := ev.Intervention(interventionID)
	if err != nil {
		return "", err
	}

	geoRatio := 1.0
	scoped := ev.Geographic && location != ""
	if scoped {
		geoRatio = s.facilities.CountryShare(location)
		if s.facilities.TotalOutput() <= 0 {
			logrus.Warnf("month %d: %s at %s with zero total output, geo ratio is 0", s.month, ev.ID, location)
		}
	}

	s.kpis.NetProfit -= iv.Cost
	if iv.ProfitMultiplier != nil {
		s.kpis.NetProfit *= *iv.ProfitMultiplier
	}

	f := iv.MitigationFactor
	rng := s.rng.ForSubsystem(SubsystemImpact)
	sampled := make(map[string]float64, len(ev.Impacts))
	for _, kind := range catalog.ImpactOrder {
		impact, ok := ev.Impacts[kind]
		if !ok {
			continue
		}
		v := impact.Sample(rng)
		sampled[string(kind)] = v

		switch kind {
		case catalog.ImpactSatisfactionShock:
			s.kpis.Satisfaction += v * f
		case catalog.ImpactOTIF:
			s.kpis.OTIF += v * geoRatio * f
		case catalog.ImpactProductionLoss:
			loss := clamp(v*s.params.SingleSourcingRatio*f, 0, 1)
			if scoped {
				s.facilities.ScaleCountry(location, 1-loss)
			} else {
				s.facilities.ScaleAll(1 - loss)
			}
		case catalog.ImpactNetProfit:
			s.kpis.NetProfit += v * geoRatio * f
		case catalog.ImpactNetProfitMultiplier:
			if !ev.Type.AppliesProfitMultiplier() {
				continue
			}
			if v < 1 {
				s.kpis.NetProfit *= 1 + (v-1)*f
			} else {
				s.kpis.NetProfit *= v
			}
		default:
			return "", fmt.Errorf("event %q: unhandled impact kind %q", ev.ID, kind)
		}
	}

	logrus.Debugf("month %d: applied %s (%s) at %q with intervention %s, geo ratio %.3f",
		s.month, ev.ID, entry.Source, location, iv.ID, geoRatio)
	s.trace.RecordEvent(trace.EventRecord{
		Month:            s.month,
		Event:            string(ev.ID),
		Source:           string(entry.Source),
		Location:         location,
		Intervention:     iv.ID,
		InterventionCost: iv.Cost,
		MitigationFactor: f,
		GeoRatio:         geoRatio,
		Sampled:          sampled,
	})
	return iv.ID, nil
}
