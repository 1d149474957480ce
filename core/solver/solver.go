package solver

import (
	"context"
	"time"

	"github.com/kilianp07/tailings/core/milp"
)

// Options bound a single solve.
type Options struct {
	// TimeLimit caps the wall time; zero means no limit beyond ctx.
	TimeLimit time.Duration `json:"time_limit"`
	// GapTolerance is the relative optimality gap at which search stops.
	GapTolerance float64 `json:"gap_tolerance"`
	// MaxNodes caps the branch-and-bound tree; zero means unlimited.
	MaxNodes int `json:"max_nodes"`
	// Attribute runs infeasibility attribution on infeasible outcomes.
	Attribute bool `json:"attribute"`
	// MaxIISRows bounds the row-level deletion filter; families larger than
	// this are only attributed at family level.
	MaxIISRows int `json:"max_iis_rows"`
}

// Attribution explains an infeasible model.
type Attribution struct {
	// Families is an irreducible set of constraint families: removing any
	// one of them makes the model feasible.
	Families []string `json:"families"`
	// Constraints is an irreducible inconsistent subsystem of rows within
	// Families, when it was small enough to compute.
	Constraints []string `json:"constraints,omitempty"`
}

// Result is what a solver returns for a model.
type Result struct {
	Status      Status        `json:"status"`
	Objective   float64       `json:"objective"`
	BestBound   float64       `json:"best_bound"`
	Gap         float64       `json:"gap"`
	Values      []float64     `json:"-"`
	Nodes       int           `json:"nodes"`
	Duration    time.Duration `json:"duration"`
	Warnings    []string      `json:"warnings,omitempty"`
	Attribution *Attribution  `json:"attribution,omitempty"`
	Model       string        `json:"model"`
}

// Err converts infeasible and unbounded outcomes into typed errors for
// callers that treat them as failures. Other statuses return nil.
func (r *Result) Err() error {
	switch r.Status {
	case StatusInfeasible:
		e := &InfeasibleModelError{Model: r.Model}
		if r.Attribution != nil {
			e.Families = r.Attribution.Families
			e.Constraints = r.Attribution.Constraints
		}
		return e
	case StatusUnbounded:
		return &UnboundedModelError{Model: r.Model}
	}
	return nil
}

// Solver submits a model to a MILP backend. Infeasible, unbounded and
// time-limited outcomes are reported through Result.Status; the error is
// reserved for invalid models and backend failures.
type Solver interface {
	Solve(ctx context.Context, m *milp.Model, opts Options) (*Result, error)
}
