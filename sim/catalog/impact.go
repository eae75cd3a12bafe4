package catalog

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Impact is the magnitude of one event effect on one KPI.
// Implementations are immutable and safe to share across runs.
type Impact interface {
	// Sample draws one magnitude. Constant impacts ignore rng.
	Sample(rng *rand.Rand) float64
}

// Constant is a fixed impact magnitude.
type Constant struct {
	Value float64
}

func (c Constant) Sample(_ *rand.Rand) float64 {
	return c.Value
}

// Uniform draws magnitudes uniformly from [Min, Max].
type Uniform struct {
	Min, Max float64
}

func (u Uniform) Sample(rng *rand.Rand) float64 {
	return distuv.Uniform{Min: u.Min, Max: u.Max, Src: rng}.Rand()
}

// Normal draws magnitudes from N(Mean, StdDev²).
type Normal struct {
	Mean, StdDev float64
}

func (n Normal) Sample(rng *rand.Rand) float64 {
	return distuv.Normal{Mu: n.Mean, Sigma: n.StdDev, Src: rng}.Rand()
}

// DistSpec is the YAML shape of an impact: a distribution type plus its parameters.
type DistSpec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params"`
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		v, ok := params[k]
		if !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("parameter %q must be a finite number, got %f", k, v)
		}
	}
	return nil
}

// NewImpact creates an Impact from a DistSpec.
// Unsupported distribution types are rejected here so a built catalog can always sample.
func NewImpact(spec DistSpec) (Impact, error) {
	switch spec.Type {
	case "constant":
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		return Constant{Value: spec.Params["value"]}, nil

	case "uniform":
		if err := requireParam(spec.Params, "min", "max"); err != nil {
			return nil, err
		}
		lo, hi := spec.Params["min"], spec.Params["max"]
		if lo > hi {
			return nil, fmt.Errorf("uniform min %f exceeds max %f", lo, hi)
		}
		return Uniform{Min: lo, Max: hi}, nil

	case "normal":
		if err := requireParam(spec.Params, "mean", "std_dev"); err != nil {
			return nil, err
		}
		if spec.Params["std_dev"] < 0 {
			return nil, fmt.Errorf("normal std_dev must be non-negative, got %f", spec.Params["std_dev"])
		}
		return Normal{Mean: spec.Params["mean"], StdDev: spec.Params["std_dev"]}, nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q; valid: constant, uniform, normal", spec.Type)
	}
}

// constant is shorthand for building DistSpec literals.
func constant(v float64) DistSpec {
	return DistSpec{Type: "constant", Params: map[string]float64{"value": v}}
}

func uniform(lo, hi float64) DistSpec {
	return DistSpec{Type: "uniform", Params: map[string]float64{"min": lo, "max": hi}}
}

func normal(mean, std float64) DistSpec {
	return DistSpec{Type: "normal", Params: map[string]float64{"mean": mean, "std_dev": std}}
}
