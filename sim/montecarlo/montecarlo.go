// Package montecarlo repeats one scenario many times with independent random streams
// and summarizes the spread of outcomes.
package montecarlo

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/supply-sim/supply-sim/sim"
)

// Options controls a batch.
type Options struct {
	Runs    int
	Workers int // <= 0 means runtime.NumCPU()

	// Progress is called after each completed run with (done, total). Calls are
	// serialized; the callback must not block for long.
	Progress func(done, total int)
}

// RunRecord is the outcome of one repetition.
type RunRecord struct {
	RunID              int                 `json:"run_id" yaml:"run_id"`
	Key                sim.SimulationKey   `json:"key" yaml:"key"`
	AnnualProfit       float64             `json:"annual_profit" yaml:"annual_profit"`
	AnnualProfitChange float64             `json:"annual_profit_change" yaml:"annual_profit_change"`
	FinalOTIF          float64             `json:"final_otif" yaml:"final_otif"`
	FinalFlexibility   float64             `json:"final_flexibility" yaml:"final_flexibility"`
	FinalSatisfaction  float64             `json:"final_satisfaction" yaml:"final_satisfaction"`
	CO2Savings         float64             `json:"co2_savings" yaml:"co2_savings"`
	Events             []sim.RealizedEvent `json:"realized_events" yaml:"realized_events"`
}

// Batch is the ordered output of Run.
type Batch struct {
	ID         string                 `json:"id" yaml:"id"`
	Seed       int64                  `json:"seed" yaml:"seed"`
	Parameters sim.StrategyParameters `json:"parameters" yaml:"parameters"`
	Records    []RunRecord            `json:"records" yaml:"records"`
	Elapsed    time.Duration          `json:"elapsed_ns" yaml:"elapsed_ns"`
}

func newRecord(id int, res *sim.RunResult) RunRecord {
	return RunRecord{
		RunID:              id,
		Key:                res.Key,
		AnnualProfit:       res.Summary.AnnualProfit,
		AnnualProfitChange: res.Summary.AnnualProfitChange,
		FinalOTIF:          res.Summary.FinalOTIF,
		FinalFlexibility:   res.Summary.FinalFlexibility,
		FinalSatisfaction:  res.Summary.FinalSatisfaction,
		CO2Savings:         res.Summary.CO2Savings,
		Events:             res.RealizedEvents(),
	}
}

// Run executes opts.Runs repetitions of rc with params. Run i (1-based) uses the key
// derived from rc.Seed and i, so records do not depend on the worker count.
// Records are ordered by run ID.
//
// When ctx is cancelled no further runs are started; runs already in flight finish
// and the completed records are returned together with ctx.Err().
func Run(ctx context.Context, rc sim.RunContext, params sim.StrategyParameters, opts Options) (*Batch, error) {
	if opts.Runs < 1 {
		return nil, fmt.Errorf("runs must be positive, got %d", opts.Runs)
	}
	if rc.Base == nil {
		rc.Base = sim.NewBaseData(rc.Config)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, opts.Runs)

	start := time.Now()
	master := sim.NewSimulationKey(rc.Seed)

	semaphore := make(chan struct{}, workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make([]*RunRecord, opts.Runs)
	errs := make([]error, opts.Runs)
	done := 0

issue:
	for i := 0; i < opts.Runs; i++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break issue
		case semaphore <- struct{}{}:
		}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-semaphore }()

			runID := idx + 1
			res, err := sim.RunWithKey(rc, params, sim.DeriveRunKey(master, runID))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[idx] = fmt.Errorf("run %d: %w", runID, err)
			} else {
				rec := newRecord(runID, res)
				results[idx] = &rec
			}
			done++
			if opts.Progress != nil {
				opts.Progress(done, opts.Runs)
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	batch := &Batch{
		ID:         uuid.NewString(),
		Seed:       rc.Seed,
		Parameters: params.Normalized(rc.Config),
		Records:    make([]RunRecord, 0, opts.Runs),
		Elapsed:    time.Since(start),
	}
	for _, r := range results {
		if r != nil {
			batch.Records = append(batch.Records, *r)
		}
	}

	if err := ctx.Err(); err != nil && len(batch.Records) < opts.Runs {
		logrus.Warnf("monte carlo batch %s cancelled after %d of %d runs", batch.ID, len(batch.Records), opts.Runs)
		return batch, err
	}
	logrus.Infof("monte carlo batch %s: %d runs on %d workers in %v", batch.ID, opts.Runs, workers, batch.Elapsed)
	return batch, nil
}
