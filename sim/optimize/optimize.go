package optimize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/supply-sim/supply-sim/sim"
)

// ErrNoCompletedTrials is returned when every trial failed.
var ErrNoCompletedTrials = errors.New("no completed trials")

// TrialState is the outcome of one trial.
type TrialState string

const (
	TrialComplete TrialState = "complete"
	TrialFailed   TrialState = "failed"
)

// TrialRecord is one row of the trial table. Value is the goal score, not negated.
type TrialRecord struct {
	Number     int                    `json:"number" yaml:"number"`
	State      TrialState             `json:"state" yaml:"state"`
	Value      float64                `json:"value" yaml:"value"`
	Parameters sim.StrategyParameters `json:"parameters" yaml:"parameters"`
	Error      string                 `json:"error,omitempty" yaml:"error,omitempty"`
}

// Options controls a search.
type Options struct {
	Goal      Goal
	Trials    int
	Minimizer Minimizer // nil means a TPE study seeded with the run seed

	// Progress is called after each trial with (done, total).
	Progress func(done, total int)
}

// Result is the outcome of a search.
type Result struct {
	Goal           Goal                   `json:"goal" yaml:"goal"`
	BestParameters sim.StrategyParameters `json:"best_parameters" yaml:"best_parameters"`
	BestValue      float64                `json:"best_value" yaml:"best_value"`
	Trials         []TrialRecord          `json:"trials" yaml:"trials"`
	Failed         int                    `json:"failed" yaml:"failed"`
	Best           *sim.RunResult         `json:"best_run" yaml:"best_run"`
	Elapsed        time.Duration          `json:"elapsed_ns" yaml:"elapsed_ns"`
}

// Optimize searches space for the parameters that maximize opts.Goal under rc's scenario.
//
// Every trial runs with rc.Seed, so the same parameters always score the same and the
// confirmation run of the best parameters reproduces BestValue. The minimizer sees the
// negated score. A trial whose run errors or panics is recorded as failed and skipped.
func Optimize(ctx context.Context, rc sim.RunContext, space SearchSpace, opts Options) (*Result, error) {
	if _, err := ParseGoal(string(opts.Goal)); err != nil {
		return nil, err
	}
	if opts.Trials < 1 {
		return nil, fmt.Errorf("trials must be positive, got %d", opts.Trials)
	}
	if rc.Base == nil {
		rc.Base = sim.NewBaseData(rc.Config)
	}
	if err := rc.Plan.Validate(rc.Config, rc.Catalog); err != nil {
		return nil, err
	}
	minimizer := opts.Minimizer
	if minimizer == nil {
		minimizer = GoptunaMinimizer{Sampler: SamplerTPE, Seed: rc.Seed}
	}

	start := time.Now()
	res := &Result{Goal: opts.Goal, Trials: make([]TrialRecord, 0, opts.Trials)}
	bestIdx := -1

	objective := func(t Trial) (value float64, err error) {
		rec := TrialRecord{Number: len(res.Trials), State: TrialFailed}
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("trial %d panicked: %v", rec.Number, r)
			}
			if err != nil {
				rec.State = TrialFailed
				rec.Error = err.Error()
				res.Failed++
				logrus.Warnf("optimize: %v", err)
			}
			res.Trials = append(res.Trials, rec)
			if rec.State == TrialComplete && (bestIdx < 0 || rec.Value > res.Trials[bestIdx].Value) {
				bestIdx = len(res.Trials) - 1
			}
			if opts.Progress != nil {
				opts.Progress(len(res.Trials), opts.Trials)
			}
		}()

		params, err := space.Suggest(t)
		if err != nil {
			return 0, fmt.Errorf("trial %d: suggest: %w", rec.Number, err)
		}
		rec.Parameters = params
		run, err := sim.RunSingle(rc, params)
		if err != nil {
			return 0, fmt.Errorf("trial %d: %w", rec.Number, err)
		}
		score, err := opts.Goal.Score(run)
		if err != nil {
			return 0, err
		}
		rec.Parameters = run.Parameters
		rec.State = TrialComplete
		rec.Value = score
		logrus.Debugf("optimize: trial %d %s=%.4f", rec.Number, opts.Goal, score)
		return -score, nil
	}

	if err := minimizer.Minimize(ctx, objective, opts.Trials); err != nil {
		return nil, fmt.Errorf("minimizing %s: %w", opts.Goal, err)
	}
	if bestIdx < 0 {
		return nil, ErrNoCompletedTrials
	}

	best := res.Trials[bestIdx]
	res.BestParameters = best.Parameters
	res.BestValue = best.Value

	confirm, err := sim.RunSingle(rc, best.Parameters)
	if err != nil {
		return nil, fmt.Errorf("confirmation run: %w", err)
	}
	res.Best = confirm
	res.Elapsed = time.Since(start)

	logrus.Infof("optimize %s: best %.4f at trial %d of %d (%d failed) in %v",
		opts.Goal, res.BestValue, best.Number, len(res.Trials), res.Failed, res.Elapsed)
	return res, nil
}
