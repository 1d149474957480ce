package solver

import (
	"context"

	"github.com/kilianp07/tailings/core/milp"
)

// Attribute runs a deletion filter over the constraint families of an
// infeasible model: each family is dropped in turn and stays dropped when the
// remainder is still infeasible. The families left form an irreducible
// conflicting set. When the rows of that set number at most
// opts.MaxIISRows, the same filter runs over individual rows and yields an
// irreducible inconsistent subsystem.
//
// A probe that ends without a verdict (time limit, node limit) counts as
// feasible, so the member is kept; the result is then conflicting but not
// necessarily irreducible.
func Attribute(ctx context.Context, s Solver, m *milp.Model, opts Options) (*Attribution, error) {
	probe := opts
	probe.Attribute = false

	infeasible := func(sub *milp.Model) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		res, err := s.Solve(ctx, sub, probe)
		if err != nil {
			return false, err
		}
		return res.Status == StatusInfeasible, nil
	}

	families := m.Families()
	kept := make(map[string]bool, len(families))
	for _, f := range families {
		kept[f] = true
	}
	for _, f := range families {
		kept[f] = false
		sub := m.Filter(func(_ int, c milp.Constraint) bool { return kept[c.Family] })
		inf, err := infeasible(sub)
		if err != nil {
			return nil, err
		}
		if !inf {
			kept[f] = true
		}
	}

	att := &Attribution{}
	for _, f := range families {
		if kept[f] {
			att.Families = append(att.Families, f)
		}
	}

	core := m.Filter(func(_ int, c milp.Constraint) bool { return kept[c.Family] })
	n := core.NumConstraints()
	if opts.MaxIISRows <= 0 || n == 0 || n > opts.MaxIISRows {
		return att, nil
	}
	active := make([]bool, n)
	for i := range active {
		active[i] = true
	}
	for i := 0; i < n; i++ {
		active[i] = false
		sub := core.Filter(func(j int, _ milp.Constraint) bool { return active[j] })
		inf, err := infeasible(sub)
		if err != nil {
			return nil, err
		}
		if !inf {
			active[i] = true
		}
	}
	for i, c := range core.Constraints() {
		if active[i] {
			att.Constraints = append(att.Constraints, c.Name())
		}
	}
	return att, nil
}
