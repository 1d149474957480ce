// Package bnb is a self-contained MILP backend: LP relaxations are solved
// with the gonum simplex implementation and integrality is enforced by a
// best-bound branch-and-bound search. It registers itself with the solver
// registry under the name "bnb".
//
// The simplex works on dense matrices, so the backend targets small and
// medium instances; large instances are exported in MPS format for an
// external solver.
package bnb
