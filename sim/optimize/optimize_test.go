package optimize

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supply-sim/supply-sim/sim"
	"github.com/supply-sim/supply-sim/sim/catalog"
	"github.com/supply-sim/supply-sim/sim/internal/testutil"
	"github.com/supply-sim/supply-sim/sim/timeline"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.ErrorLevel)
	}
	os.Exit(m.Run())
}

// scriptedTrial answers every categorical with choices[pick % len] and every float with low.
type scriptedTrial struct {
	pick    int
	failOn  string
	panicOn string
	asked   []string
}

func (s *scriptedTrial) SuggestDiscreteFloat(name string, low, high, q float64) (float64, error) {
	s.asked = append(s.asked, name)
	return low, nil
}

func (s *scriptedTrial) SuggestCategorical(name string, choices []string) (string, error) {
	s.asked = append(s.asked, name)
	if name == s.panicOn {
		panic("scripted panic")
	}
	if name == s.failOn {
		return "", errors.New("scripted failure")
	}
	return choices[s.pick%len(choices)], nil
}

// fakeMinimizer feeds scripted trials to the objective and keeps what it saw.
type fakeMinimizer struct {
	trial  func(i int) *scriptedTrial
	values []float64
	errs   int
}

func (f *fakeMinimizer) Minimize(ctx context.Context, objective Objective, trials int) error {
	for i := 0; i < trials; i++ {
		v, err := objective(f.trial(i))
		if err != nil {
			f.errs++
			continue
		}
		f.values = append(f.values, v)
	}
	return nil
}

func testContext(t *testing.T) (sim.RunContext, SearchSpace) {
	t.Helper()
	cfg, err := sim.LoadConfig(testutil.DefaultsPath(t))
	require.NoError(t, err)
	plan := sim.Plan{Timeline: timeline.FromEvents(map[int]catalog.EventID{
		3: catalog.PortStrike,
	}, timeline.SourceUser)}
	return sim.NewRunContext(cfg, catalog.Default(), plan, 2024), NewSearchSpace(cfg)
}

func TestOptimize_BestIsMaxScore_ConfirmationReproduces(t *testing.T) {
	// GIVEN six scripted trials covering every production strategy
	rc, space := testContext(t)
	fake := &fakeMinimizer{trial: func(i int) *scriptedTrial { return &scriptedTrial{pick: i} }}

	// WHEN searching for the best final OTIF
	res, err := Optimize(context.Background(), rc, space, Options{Goal: GoalFinalOTIF, Trials: 6, Minimizer: fake})

	// THEN the best trial has the highest score and the confirmation run reproduces it
	require.NoError(t, err)
	require.Len(t, res.Trials, 6)
	for _, tr := range res.Trials {
		assert.Equal(t, TrialComplete, tr.State)
		assert.LessOrEqual(t, tr.Value, res.BestValue)
	}
	for i, v := range fake.values {
		assert.Equal(t, -res.Trials[i].Value, v, "minimizer sees the negated score")
	}
	score, err := GoalFinalOTIF.Score(res.Best)
	require.NoError(t, err)
	assert.Equal(t, res.BestValue, score)
	assert.Equal(t, res.BestParameters, res.Best.Parameters)
	assert.Zero(t, res.Failed)
}

func TestOptimize_FailedAndPanickingTrials_Skipped(t *testing.T) {
	rc, space := testContext(t)
	fake := &fakeMinimizer{trial: func(i int) *scriptedTrial {
		switch i {
		case 1:
			return &scriptedTrial{failOn: ParamInventory}
		case 2:
			return &scriptedTrial{panicOn: ParamForecast}
		default:
			return &scriptedTrial{pick: i}
		}
	}}

	res, err := Optimize(context.Background(), rc, space, Options{Goal: GoalAnnualProfit, Trials: 4, Minimizer: fake})

	require.NoError(t, err)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, 2, fake.errs)
	assert.Equal(t, TrialFailed, res.Trials[1].State)
	assert.Contains(t, res.Trials[2].Error, "panicked")
}

func TestOptimize_AllTrialsFail_ErrNoCompletedTrials(t *testing.T) {
	rc, space := testContext(t)
	fake := &fakeMinimizer{trial: func(int) *scriptedTrial { return &scriptedTrial{failOn: ParamProduction} }}

	_, err := Optimize(context.Background(), rc, space, Options{Goal: GoalCO2Savings, Trials: 3, Minimizer: fake})

	assert.ErrorIs(t, err, ErrNoCompletedTrials)
}

func TestOptimize_InvalidOptions(t *testing.T) {
	rc, space := testContext(t)

	_, err := Optimize(context.Background(), rc, space, Options{Goal: "max_happiness", Trials: 3})
	var gErr *UnknownGoalError
	require.True(t, errors.As(err, &gErr))
	assert.Equal(t, "max_happiness", gErr.Name)

	_, err = Optimize(context.Background(), rc, space, Options{Goal: GoalFinalOTIF, Trials: 0})
	assert.Error(t, err)
}

func TestOptimize_Progress(t *testing.T) {
	rc, space := testContext(t)
	var seen []int
	fake := &fakeMinimizer{trial: func(i int) *scriptedTrial { return &scriptedTrial{pick: i} }}

	_, err := Optimize(context.Background(), rc, space, Options{
		Goal: GoalFinalFlexibility, Trials: 3, Minimizer: fake,
		Progress: func(done, total int) { seen = append(seen, done); assert.Equal(t, 3, total) },
	})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestSearchSpace_TransportOnlyWithHub(t *testing.T) {
	_, space := testContext(t)

	baseline := &scriptedTrial{pick: 0}
	p, err := space.Suggest(baseline)
	require.NoError(t, err)
	assert.Equal(t, sim.ProductionCurrent, p.Production)
	assert.Equal(t, sim.TransportDefault, p.Transport)
	assert.NotContains(t, baseline.asked, ParamTransport)

	hub := &scriptedTrial{pick: 1}
	p, err = space.Suggest(hub)
	require.NoError(t, err)
	assert.Equal(t, sim.ProductionAgileHubSouthAfrica, p.Production)
	assert.Contains(t, hub.asked, ParamTransport)
	assert.NotEqual(t, sim.TransportDefault, p.Transport)
}

func TestSearchSpace_BooleansAndDataSources(t *testing.T) {
	_, space := testContext(t)

	on, err := space.Suggest(&scriptedTrial{pick: 0}) // "true"
	require.NoError(t, err)
	assert.True(t, on.Seasonality)
	assert.True(t, on.SpecialSKU)
	assert.Equal(t, sim.AllDataSources, on.DataSources)

	off, err := space.Suggest(&scriptedTrial{pick: 1}) // "false"
	require.NoError(t, err)
	assert.False(t, off.Seasonality)
	assert.Empty(t, off.DataSources)
}

// noisyTrial answers floats with fixed values carrying discrete-float rounding noise.
type noisyTrial struct {
	scriptedTrial
	floats map[string]float64
}

func (n *noisyTrial) SuggestDiscreteFloat(name string, low, high, q float64) (float64, error) {
	return n.floats[name], nil
}

func TestSearchSpace_SlidersSnapToGrid(t *testing.T) {
	// GIVEN suggestions that are one ulp off the 0.05 and 0.01 grids
	_, space := testContext(t)
	trial := &noisyTrial{floats: map[string]float64{
		ParamSingleSourcing:       0.8500000000000001,
		ParamLogisticsOutsourcing: 0.5900000000000001,
	}}

	// WHEN parameters are suggested
	p, err := space.Suggest(trial)

	// THEN the ratios land exactly on the grid
	require.NoError(t, err)
	assert.Equal(t, 0.85, p.SingleSourcingRatio)
	assert.Equal(t, 0.59, p.LogisticsOutsourcingRatio)
}

func TestSearchSpace_SlidersClampedToRange(t *testing.T) {
	_, space := testContext(t)
	trial := &noisyTrial{floats: map[string]float64{
		ParamSingleSourcing:       1.0000000000000002,
		ParamLogisticsOutsourcing: 0.3,
	}}

	p, err := space.Suggest(trial)

	require.NoError(t, err)
	assert.Equal(t, space.SingleSourcing.Max, p.SingleSourcingRatio)
	assert.Equal(t, space.LogisticsOutsourcing.Min, p.LogisticsOutsourcingRatio)
}

func TestParseGoal(t *testing.T) {
	for _, name := range GoalNames() {
		g, err := ParseGoal(name)
		require.NoError(t, err)
		assert.Equal(t, Goal(name), g)
	}
	_, err := ParseGoal("nope")
	assert.Error(t, err)
}

func TestGoptunaMinimizer_RandomSampler_RunsAllTrials(t *testing.T) {
	// GIVEN a real goptuna study with a seeded random sampler
	rc, space := testContext(t)

	res, err := Optimize(context.Background(), rc, space, Options{
		Goal:      GoalFinalOTIF,
		Trials:    8,
		Minimizer: GoptunaMinimizer{Sampler: SamplerRandom, Seed: 5},
	})

	// THEN every trial completes and the confirmation run matches the best value
	require.NoError(t, err)
	assert.Len(t, res.Trials, 8)
	// AND every suggested ratio sits on its slider grid
	for _, tr := range res.Trials {
		assert.Equal(t, snap(tr.Parameters.SingleSourcingRatio, space.SingleSourcing), tr.Parameters.SingleSourcingRatio)
		assert.Equal(t, snap(tr.Parameters.LogisticsOutsourcingRatio, space.LogisticsOutsourcing), tr.Parameters.LogisticsOutsourcingRatio)
	}
	score, err := GoalFinalOTIF.Score(res.Best)
	require.NoError(t, err)
	assert.Equal(t, res.BestValue, score)
}

func TestGoptunaMinimizer_TPE_CancelledContext(t *testing.T) {
	rc, space := testContext(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Optimize(ctx, rc, space, Options{
		Goal:      GoalAnnualProfit,
		Trials:    5,
		Minimizer: GoptunaMinimizer{Seed: 1, StartupTrials: 2},
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestGoptunaMinimizer_UnknownSampler(t *testing.T) {
	err := GoptunaMinimizer{Sampler: "grid"}.Minimize(context.Background(), func(Trial) (float64, error) { return 0, nil }, 1)
	assert.Error(t, err)
	assert.False(t, IsValidSampler("grid"))
	assert.True(t, IsValidSampler(SamplerRandom))
}
