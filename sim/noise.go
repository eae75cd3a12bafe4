package sim

import (
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// NoiseModel perturbs KPIs once per month after recurring strategic effects.
type NoiseModel interface {
	Apply(k *KPIState)
}

// UniformNoise multiplies profit and OTIF by independent uniform factors.
// It draws from its own stream so disabling it never shifts other random draws.
type UniformNoise struct {
	profit Range
	otif   Range
	rng    *rand.Rand
}

// NewUniformNoise creates a noise step drawing from rng.
func NewUniformNoise(r NoiseRanges, rng *rand.Rand) *UniformNoise {
	return &UniformNoise{profit: r.Profit, otif: r.OTIF, rng: rng}
}

func (n *UniformNoise) Apply(k *KPIState) {
	k.NetProfit *= distuv.Uniform{Min: n.profit.Min, Max: n.profit.Max, Src: n.rng}.Rand()
	k.OTIF *= distuv.Uniform{Min: n.otif.Min, Max: n.otif.Max, Src: n.rng}.Rand()
}

// NoNoise leaves KPIs untouched.
type NoNoise struct{}

func (NoNoise) Apply(*KPIState) {}
