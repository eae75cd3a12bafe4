// Package sim is the supply-chain simulation core: a twelve-month cycle that applies
// strategy effects, random noise and disruption events to a KPI state and a
// production network.
//
// # Reading Guide
//
//   - config.go: the strategy-impact and network configuration (defaults.yaml)
//   - strategy.go: the StrategyParameters input record and its enums
//   - simulator.go: the run lifecycle (setup, monthly cycle, finalize)
//   - effects.go, event_apply.go: what happens inside one month
//   - run.go: Plan, RunContext and the single-run entry points
//
// # Architecture
//
// Domain pieces live in sub-packages:
//   - sim/catalog/: event definitions, interventions, cascade rules
//   - sim/timeline/: the month→event schedule and the cascade resolver
//   - sim/trace/: optional decision trace of one run
//   - sim/montecarlo/: parallel repeated runs and aggregates
//   - sim/optimize/: strategy search over the parameter space
//   - sim/analysis/: risk matrix and crisis comparison
//   - sim/scenario/: preset and file-based scenarios
//
// Randomness is partitioned: each run owns a PartitionedRNG whose cascade, impact
// and noise streams are independent, so adding a draw to one subsystem never shifts
// another.
package sim
