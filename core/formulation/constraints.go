package formulation

import (
	"github.com/kilianp07/tailings/core/milp"
	"github.com/kilianp07/tailings/core/model"
)

// Constraint family tags.
const (
	FamilyDepositMassCapacity   = "deposit_mass_capacity"
	FamilyDepositVolumeCapacity = "deposit_volume_capacity"
	FamilyAnnualInspection      = "annual_inspection"
	FamilyContinentalWaterCap   = "continental_water_cap"
	FamilyDemandSatisfaction    = "demand_satisfaction"
	FamilyProcessWater          = "process_water"
	FamilyMineWaterCeiling      = "mine_water_ceiling"
	FamilyDepositActiveGating   = "deposit_active_gating"
	FamilyTailingsMassBalance   = "tailings_mass_balance"
	FamilyBudgetCeiling         = "budget_ceiling"
	FamilyOnsiteStorageCeiling  = "onsite_storage_ceiling"
)

// Families lists every constraint family in build order.
var Families = []string{
	FamilyDepositMassCapacity,
	FamilyDepositVolumeCapacity,
	FamilyAnnualInspection,
	FamilyContinentalWaterCap,
	FamilyDemandSatisfaction,
	FamilyProcessWater,
	FamilyMineWaterCeiling,
	FamilyDepositActiveGating,
	FamilyTailingsMassBalance,
	FamilyBudgetCeiling,
	FamilyOnsiteStorageCeiling,
}

// ConstraintBuilder renders each constraint family from an instance and the
// declared variable handles. Every method is pure.
type ConstraintBuilder struct {
	scope
}

// NewConstraintBuilder returns a builder over inst and vars.
func NewConstraintBuilder(inst *model.Instance, vars Vars) ConstraintBuilder {
	return ConstraintBuilder{scope{inst: inst, vars: vars}}
}

// Family returns the rows of the named family, or nil for an unknown tag.
func (b ConstraintBuilder) Family(name string) []milp.Constraint {
	switch name {
	case FamilyDepositMassCapacity:
		return b.DepositMassCapacity()
	case FamilyDepositVolumeCapacity:
		return b.DepositVolumeCapacity()
	case FamilyAnnualInspection:
		return b.AnnualInspection()
	case FamilyContinentalWaterCap:
		return b.ContinentalWaterCap()
	case FamilyDemandSatisfaction:
		return b.DemandSatisfaction()
	case FamilyProcessWater:
		return b.ProcessWater()
	case FamilyMineWaterCeiling:
		return b.MineWaterCeiling()
	case FamilyDepositActiveGating:
		return b.DepositActiveGating()
	case FamilyTailingsMassBalance:
		return b.TailingsMassBalance()
	case FamilyBudgetCeiling:
		return b.BudgetCeiling()
	case FamilyOnsiteStorageCeiling:
		return b.OnsiteStorageCeiling()
	}
	return nil
}

// All returns every family in build order.
func (b ConstraintBuilder) All() []milp.Constraint {
	var out []milp.Constraint
	for _, f := range Families {
		out = append(out, b.Family(f)...)
	}
	return out
}

// DepositMassCapacity: sum_{i,t} y[i,j,t] <= P[j]*w[j] for every j.
func (b ConstraintBuilder) DepositMassCapacity() []milp.Constraint {
	s, p := b.inst.Sets, b.inst.Params
	out := make([]milp.Constraint, 0, s.Deposits)
	for _, j := range s.DepositIDs() {
		var lhs milp.Expr
		for _, i := range s.MineIDs() {
			for _, t := range s.PeriodIDs() {
				lhs.Add(b.vars.Y[ShipKey{I: i, J: j, T: t}], 1)
			}
		}
		var rhs milp.Expr
		rhs.Add(b.vars.W[j], p.MassCapacity(j))
		out = append(out, milp.NewConstraint(FamilyDepositMassCapacity, []int{int(j)}, lhs, milp.LessEq, rhs))
	}
	return out
}

// DepositVolumeCapacity: sum_{i,t} e[j]*y[i,j,t] <= v[j] for every j.
func (b ConstraintBuilder) DepositVolumeCapacity() []milp.Constraint {
	s, p := b.inst.Sets, b.inst.Params
	out := make([]milp.Constraint, 0, s.Deposits)
	for _, j := range s.DepositIDs() {
		var lhs milp.Expr
		for _, i := range s.MineIDs() {
			for _, t := range s.PeriodIDs() {
				lhs.Add(b.vars.Y[ShipKey{I: i, J: j, T: t}], p.VolumeFactor(j))
			}
		}
		out = append(out, milp.NewConstraint(FamilyDepositVolumeCapacity, []int{int(j)}, lhs, milp.LessEq, milp.Constant(p.VolumeCapacity(j))))
	}
	return out
}

// AnnualInspection: sum_t V[j,t] = 1 for every j.
func (b ConstraintBuilder) AnnualInspection() []milp.Constraint {
	s := b.inst.Sets
	out := make([]milp.Constraint, 0, s.Deposits)
	for _, j := range s.DepositIDs() {
		var lhs milp.Expr
		for _, t := range s.PeriodIDs() {
			lhs.Add(b.vars.V[InspectionKey{J: j, T: t}], 1)
		}
		out = append(out, milp.NewConstraint(FamilyAnnualInspection, []int{int(j)}, lhs, milp.Equal, milp.Constant(1)))
	}
	return out
}

// ContinentalWaterCap: sum_{i,k,l} x[i,k,l,t] <= share*h for every t.
func (b ConstraintBuilder) ContinentalWaterCap() []milp.Constraint {
	s, p := b.inst.Sets, b.inst.Params
	limit := p.WaterShare() * p.ContinentalWater()
	out := make([]milp.Constraint, 0, s.Periods)
	for _, t := range s.PeriodIDs() {
		var lhs milp.Expr
		for _, i := range s.MineIDs() {
			for _, k := range s.RouteIDs() {
				for _, l := range s.MineralIDs() {
					lhs.Add(b.vars.X[FlowKey{I: i, K: k, L: l, T: t}], 1)
				}
			}
		}
		out = append(out, milp.NewConstraint(FamilyContinentalWaterCap, []int{int(t)}, lhs, milp.LessEq, milp.Constant(limit)))
	}
	return out
}

// DemandSatisfaction: sum_{i,k} z[i,k,l,t] >= d[l,t] for every l, t.
func (b ConstraintBuilder) DemandSatisfaction() []milp.Constraint {
	s, p := b.inst.Sets, b.inst.Params
	out := make([]milp.Constraint, 0, s.Minerals*s.Periods)
	for _, l := range s.MineralIDs() {
		for _, t := range s.PeriodIDs() {
			var lhs milp.Expr
			for _, i := range s.MineIDs() {
				for _, k := range s.RouteIDs() {
					lhs.Add(b.vars.Z[FlowKey{I: i, K: k, L: l, T: t}], 1)
				}
			}
			out = append(out, milp.NewConstraint(FamilyDemandSatisfaction, []int{int(l), int(t)}, lhs, milp.GreaterEq, milp.Constant(p.Demand(l, t))))
		}
	}
	return out
}

// ProcessWater: sum_i x[i,k,l,t] >= sum_i a[k,l]*z[i,k,l,t] for every k, l, t.
func (b ConstraintBuilder) ProcessWater() []milp.Constraint {
	s, p := b.inst.Sets, b.inst.Params
	out := make([]milp.Constraint, 0, s.Routes*s.Minerals*s.Periods)
	for _, k := range s.RouteIDs() {
		for _, l := range s.MineralIDs() {
			a := p.WaterUse(k, l)
			for _, t := range s.PeriodIDs() {
				var lhs, rhs milp.Expr
				for _, i := range s.MineIDs() {
					key := FlowKey{I: i, K: k, L: l, T: t}
					lhs.Add(b.vars.X[key], 1)
					rhs.Add(b.vars.Z[key], a)
				}
				out = append(out, milp.NewConstraint(FamilyProcessWater, []int{int(k), int(l), int(t)}, lhs, milp.GreaterEq, rhs))
			}
		}
	}
	return out
}

// MineWaterCeiling: sum_{k,l,t} x[i,k,l,t] <= A[i] for every i.
func (b ConstraintBuilder) MineWaterCeiling() []milp.Constraint {
	s, p := b.inst.Sets, b.inst.Params
	out := make([]milp.Constraint, 0, s.Mines)
	for _, i := range s.MineIDs() {
		var lhs milp.Expr
		for _, k := range s.RouteIDs() {
			for _, l := range s.MineralIDs() {
				for _, t := range s.PeriodIDs() {
					lhs.Add(b.vars.X[FlowKey{I: i, K: k, L: l, T: t}], 1)
				}
			}
		}
		out = append(out, milp.NewConstraint(FamilyMineWaterCeiling, []int{int(i)}, lhs, milp.LessEq, milp.Constant(p.WaterAllotment(i))))
	}
	return out
}

// DepositActiveGating: sum_i y[i,j,t] <= P[j]*w[j] for every j, t. It
// repeats DepositMassCapacity per period so a closed deposit is visibly
// empty in every period.
func (b ConstraintBuilder) DepositActiveGating() []milp.Constraint {
	s, p := b.inst.Sets, b.inst.Params
	out := make([]milp.Constraint, 0, s.Deposits*s.Periods)
	for _, j := range s.DepositIDs() {
		for _, t := range s.PeriodIDs() {
			var lhs, rhs milp.Expr
			for _, i := range s.MineIDs() {
				lhs.Add(b.vars.Y[ShipKey{I: i, J: j, T: t}], 1)
			}
			rhs.Add(b.vars.W[j], p.MassCapacity(j))
			out = append(out, milp.NewConstraint(FamilyDepositActiveGating, []int{int(j), int(t)}, lhs, milp.LessEq, rhs))
		}
	}
	return out
}

// TailingsMassBalance: u[i,t] + sum_j y[i,j,t] = u[i,t-1] +
// sum_{k,l} rho[k,l]*z[i,k,l,t] for every i, t, where u[i,t-1] is the same
// mine's stock at the end of the previous period and u[i,0] = 0.
func (b ConstraintBuilder) TailingsMassBalance() []milp.Constraint {
	s, p := b.inst.Sets, b.inst.Params
	out := make([]milp.Constraint, 0, s.Mines*s.Periods)
	for _, i := range s.MineIDs() {
		for _, t := range s.PeriodIDs() {
			var lhs, rhs milp.Expr
			lhs.Add(b.vars.U[StockKey{I: i, T: t}], 1)
			for _, j := range s.DepositIDs() {
				lhs.Add(b.vars.Y[ShipKey{I: i, J: j, T: t}], 1)
			}
			if t > 1 {
				rhs.Add(b.vars.U[StockKey{I: i, T: t - 1}], 1)
			}
			for _, k := range s.RouteIDs() {
				for _, l := range s.MineralIDs() {
					rhs.Add(b.vars.Z[FlowKey{I: i, K: k, L: l, T: t}], p.TailingsRate(k, l))
				}
			}
			out = append(out, milp.NewConstraint(FamilyTailingsMassBalance, []int{int(i), int(t)}, lhs, milp.Equal, rhs))
		}
	}
	return out
}

// BudgetCeiling: water, inspection and transport spending over the horizon
// stays within b. It is a single row.
func (b ConstraintBuilder) BudgetCeiling() []milp.Constraint {
	spend := b.WaterCost()
	spend.AddExpr(b.InspectionCost(), 1)
	spend.AddExpr(b.TransportCost(), 1)
	return []milp.Constraint{
		milp.NewConstraint(FamilyBudgetCeiling, nil, spend, milp.LessEq, milp.Constant(b.inst.Params.Budget())),
	}
}

// OnsiteStorageCeiling: u[i,t] <= q[i] for every i, t.
func (b ConstraintBuilder) OnsiteStorageCeiling() []milp.Constraint {
	s, p := b.inst.Sets, b.inst.Params
	out := make([]milp.Constraint, 0, s.Mines*s.Periods)
	for _, i := range s.MineIDs() {
		for _, t := range s.PeriodIDs() {
			lhs := milp.Sum(b.vars.U[StockKey{I: i, T: t}])
			out = append(out, milp.NewConstraint(FamilyOnsiteStorageCeiling, []int{int(i), int(t)}, lhs, milp.LessEq, milp.Constant(p.StorageCap(i))))
		}
	}
	return out
}
