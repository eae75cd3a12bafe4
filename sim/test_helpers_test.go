package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/supply-sim/supply-sim/sim/catalog"
	"github.com/supply-sim/supply-sim/sim/internal/testutil"
	"github.com/supply-sim/supply-sim/sim/timeline"
)

// loadTestConfig parses the repository defaults.yaml.
func loadTestConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := ParseConfig(testutil.ReadDefaults(t))
	require.NoError(t, err)
	return cfg
}

// deterministicFile returns the built-in catalog with every random impact replaced by
// its mean and every cascade probability set to p.
func deterministicFile(p float64) *catalog.File {
	f := catalog.DefaultFile()
	for i := range f.Events {
		for kind, d := range f.Events[i].Impacts {
			var v float64
			switch d.Type {
			case "uniform":
				v = (d.Params["min"] + d.Params["max"]) / 2
			case "normal":
				v = d.Params["mean"]
			default:
				continue
			}
			f.Events[i].Impacts[kind] = catalog.DistSpec{Type: "constant", Params: map[string]float64{"value": v}}
		}
	}
	for i := range f.Cascades {
		f.Cascades[i].Probability = p
	}
	return f
}

func buildCatalog(t *testing.T, f *catalog.File) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Build(f)
	require.NoError(t, err)
	return cat
}

// setImpact overrides one impact of one event with a constant.
func setImpact(f *catalog.File, id catalog.EventID, kind catalog.ImpactKind, v float64) {
	for i := range f.Events {
		if f.Events[i].ID == string(id) {
			f.Events[i].Impacts[string(kind)] = catalog.DistSpec{Type: "constant", Params: map[string]float64{"value": v}}
		}
	}
}

// noiselessContext builds a RunContext with noise disabled and seed 42.
func noiselessContext(cfg *Config, cat *catalog.Catalog, plan Plan) RunContext {
	rc := NewRunContext(cfg, cat, plan, 42)
	rc.DisableNoise = true
	return rc
}

func userPlan(events map[int]catalog.EventID) Plan {
	return Plan{Timeline: timeline.FromEvents(events, timeline.SourceUser)}
}

func runOK(t *testing.T, rc RunContext, params StrategyParameters) *RunResult {
	t.Helper()
	res, err := RunSingle(rc, params)
	require.NoError(t, err)
	require.Len(t, res.History, rc.Config.Horizon())
	return res
}
