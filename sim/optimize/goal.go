// Package optimize searches the strategy parameter space for the parameters that
// maximize one run outcome under a fixed scenario.
package optimize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/supply-sim/supply-sim/sim"
)

// Goal names the outcome a search maximizes.
type Goal string

const (
	GoalAnnualProfit     Goal = "max_annual_profit"
	GoalFinalOTIF        Goal = "max_final_otif"
	GoalFinalFlexibility Goal = "max_final_flexibility"
	GoalCO2Savings       Goal = "max_co2_savings"
)

var validGoals = map[Goal]func(*sim.RunResult) float64{
	GoalAnnualProfit:     func(r *sim.RunResult) float64 { return r.Summary.AnnualProfit },
	GoalFinalOTIF:        func(r *sim.RunResult) float64 { return r.Summary.FinalOTIF },
	GoalFinalFlexibility: func(r *sim.RunResult) float64 { return r.Summary.FinalFlexibility },
	GoalCO2Savings:       func(r *sim.RunResult) float64 { return r.Summary.CO2Savings },
}

// UnknownGoalError is returned for a goal name that is not recognized.
type UnknownGoalError struct {
	Name string
}

func (e *UnknownGoalError) Error() string {
	return fmt.Sprintf("unknown optimization goal %q; valid: %s", e.Name, strings.Join(GoalNames(), ", "))
}

// GoalNames returns the accepted goal names, sorted.
func GoalNames() []string {
	names := make([]string, 0, len(validGoals))
	for g := range validGoals {
		names = append(names, string(g))
	}
	sort.Strings(names)
	return names
}

// ParseGoal validates a goal name.
func ParseGoal(name string) (Goal, error) {
	g := Goal(name)
	if _, ok := validGoals[g]; !ok {
		return "", &UnknownGoalError{Name: name}
	}
	return g, nil
}

// Score extracts the maximized quantity from a run. Annual profit is the sum of the
// monthly profits.
func (g Goal) Score(r *sim.RunResult) (float64, error) {
	f, ok := validGoals[g]
	if !ok {
		return 0, &UnknownGoalError{Name: string(g)}
	}
	return f(r), nil
}
