package optimize

import (
	"context"
	"fmt"

	"github.com/c-bata/goptuna"
	"github.com/c-bata/goptuna/tpe"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Objective evaluates one trial and returns the value to minimize.
type Objective func(Trial) (float64, error)

// Minimizer runs a black-box minimization of objective for up to trials evaluations.
// An objective error marks that trial as failed; it does not stop the search.
type Minimizer interface {
	Minimize(ctx context.Context, objective Objective, trials int) error
}

// Sampler names accepted by GoptunaMinimizer.
const (
	SamplerTPE    = "tpe"
	SamplerRandom = "random"
)

var validSamplers = map[string]bool{
	SamplerTPE:    true,
	SamplerRandom: true,
	"":            true, // empty defaults to tpe
}

// IsValidSampler reports whether name is a recognized sampler.
func IsValidSampler(name string) bool {
	return validSamplers[name]
}

var _ Trial = (*goptuna.Trial)(nil)

// GoptunaMinimizer runs trials through a goptuna study.
type GoptunaMinimizer struct {
	Sampler       string // tpe (default) or random
	Seed          int64
	StartupTrials int // random trials before TPE takes over; <= 0 keeps the library default
}

func (m GoptunaMinimizer) sampler() (goptuna.Sampler, error) {
	switch m.Sampler {
	case SamplerTPE, "":
		opts := []tpe.SamplerOption{tpe.SamplerOptionSeed(m.Seed)}
		if m.StartupTrials > 0 {
			opts = append(opts, tpe.SamplerOptionNumberOfStartupTrials(m.StartupTrials))
		}
		return tpe.NewSampler(opts...), nil
	case SamplerRandom:
		return goptuna.NewRandomSampler(goptuna.RandomSamplerOptionSeed(m.Seed)), nil
	default:
		return nil, fmt.Errorf("unknown sampler %q; valid: tpe, random", m.Sampler)
	}
}

// Minimize creates a fresh in-memory study and evaluates one trial at a time so
// ctx is checked between trials.
func (m GoptunaMinimizer) Minimize(ctx context.Context, objective Objective, trials int) error {
	sampler, err := m.sampler()
	if err != nil {
		return err
	}
	study, err := goptuna.CreateStudy(
		"supply-sim-"+uuid.NewString(),
		goptuna.StudyOptionSampler(sampler),
		goptuna.StudyOptionLogger(logrusAdapter{}),
	)
	if err != nil {
		return fmt.Errorf("creating study: %w", err)
	}

	wrapped := func(t goptuna.Trial) (float64, error) {
		v, err := objective(&t)
		if err != nil {
			return 0, goptuna.ErrTrialPruned
		}
		return v, nil
	}

	for i := 0; i < trials; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := study.Optimize(wrapped, 1); err != nil {
			return fmt.Errorf("trial %d: %w", i, err)
		}
	}
	return nil
}

// logrusAdapter routes goptuna's study logs to logrus. Fields arrive as key/value pairs.
// Per-trial info lines are demoted to debug.
type logrusAdapter struct{}

func (logrusAdapter) entry(fields []interface{}) *logrus.Entry {
	f := logrus.Fields{}
	for i := 0; i+1 < len(fields); i += 2 {
		f[fmt.Sprint(fields[i])] = fields[i+1]
	}
	return logrus.WithFields(f).WithField("component", "goptuna")
}

func (a logrusAdapter) Debug(msg string, fields ...interface{}) { a.entry(fields).Debug(msg) }
func (a logrusAdapter) Info(msg string, fields ...interface{})  { a.entry(fields).Debug(msg) }
func (a logrusAdapter) Warn(msg string, fields ...interface{})  { a.entry(fields).Warn(msg) }
func (a logrusAdapter) Error(msg string, fields ...interface{}) { a.entry(fields).Error(msg) }
