// Package milp holds a solver independent representation of mixed-integer
// linear programs. Variables are referenced through Var handles, constraints
// are linear rows tagged with a family name and index tuple so infeasibility
// diagnostics can point back at the formulation that produced them.
package milp
