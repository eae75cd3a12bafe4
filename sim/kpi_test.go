package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKPIState_Clamp(t *testing.T) {
	k := KPIState{OTIF: 1.3, Satisfaction: -2, Flexibility: 11, Turnover: -1, NetProfit: -5e6, ForecastAccuracy: 0.4}
	k.Clamp(KPILimits{Min: 0, MaxOTIF: 1, MaxSatisfaction: 10, MaxFlexibility: 10})

	assert.Equal(t, 1.0, k.OTIF)
	assert.Equal(t, 0.0, k.Satisfaction)
	assert.Equal(t, 10.0, k.Flexibility)
	assert.Equal(t, 0.0, k.Turnover)
	assert.Equal(t, -5e6, k.NetProfit, "profit is unbounded")
}

func TestUniformNoise_FactorsWithinRange(t *testing.T) {
	n := NewUniformNoise(NoiseRanges{
		Profit: Range{Min: 0.98, Max: 1.02},
		OTIF:   Range{Min: 0.99, Max: 1.01},
	}, rand.New(rand.NewSource(3)))

	for i := 0; i < 200; i++ {
		k := KPIState{OTIF: 1, NetProfit: 100}
		n.Apply(&k)
		assert.GreaterOrEqual(t, k.NetProfit, 98.0)
		assert.LessOrEqual(t, k.NetProfit, 102.0)
		assert.GreaterOrEqual(t, k.OTIF, 0.99)
		assert.LessOrEqual(t, k.OTIF, 1.01)
	}
}

func TestNoNoise_LeavesKPIsUntouched(t *testing.T) {
	k := KPIState{OTIF: 0.9, NetProfit: 10}
	NoNoise{}.Apply(&k)
	assert.Equal(t, KPIState{OTIF: 0.9, NetProfit: 10}, k)
}
