// Package solver defines the boundary between the model builder and MILP
// backends. A Solver consumes a milp.Model and returns a Result whose Status
// distinguishes optimal, infeasible, unbounded and time-limited outcomes.
// Backends register themselves by name so configuration can select them.
package solver
