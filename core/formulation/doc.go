// Package formulation turns a validated model.Instance into the tailings
// allocation MILP: it declares the x, y, z, u, w and V variable families,
// renders the eleven constraint families (one ConstraintBuilder method each)
// and the pure-cost objective.
//
// The tailings mass balance links a mine's stock to its own stock in the
// previous period; the stock before the first period is the constant zero.
package formulation
