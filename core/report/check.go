package report

import (
	"math"

	"github.com/kilianp07/tailings/core/formulation"
	"github.com/kilianp07/tailings/core/model"
)

// Tags of checks that do not correspond to a constraint family.
const (
	CheckIntegrality    = "integrality"
	CheckNonNegativity  = "non_negativity"
	CheckClosedDeposits = "closed_deposit_shipments"
)

// Violation is a property that does not hold for a solution.
type Violation struct {
	Family   string  `json:"family"`
	Index    []int   `json:"index,omitempty"`
	Residual float64 `json:"residual"`
	// Variable names the offending variable for bound and integrality checks.
	Variable string `json:"variable,omitempty"`
}

// Check recomputes every constraint family of a solution directly from the
// instance data: capacities and gating, the single inspection per deposit,
// water caps, demand, process water, the budget, storage bounds, the mass
// balance recurrence, integrality and non-negativity. Families excluded from
// the formulation are not checked. A residual counts when it exceeds
// tol*max(1, |rhs|).
func Check(inst *model.Instance, f *formulation.Formulation, values []float64, tol float64) []Violation {
	c := &checker{
		inst:     inst,
		vars:     f.Vars,
		values:   values,
		tol:      tol,
		excluded: make(map[string]bool, len(f.Excluded)),
	}
	for _, fam := range f.Excluded {
		c.excluded[fam] = true
	}
	c.bounds(f)
	c.deposits()
	c.inspections()
	c.water()
	c.demand()
	c.budget()
	c.storage()
	c.massBalance()
	return c.out
}

type checker struct {
	inst     *model.Instance
	vars     formulation.Vars
	values   []float64
	tol      float64
	excluded map[string]bool
	out      []Violation
}

func (c *checker) val(id int) float64 { return c.values[id] }

func (c *checker) report(family string, residual, rhs float64, index ...int) {
	if residual > c.tol*math.Max(1, math.Abs(rhs)) {
		c.out = append(c.out, Violation{Family: family, Index: index, Residual: residual})
	}
}

func (c *checker) bounds(f *formulation.Formulation) {
	for id, d := range f.Model.Vars() {
		v := c.val(id)
		if -v > c.tol {
			c.out = append(c.out, Violation{Family: CheckNonNegativity, Residual: -v, Variable: d.Name})
		}
		if r := math.Abs(v - math.Round(v)); d.Integral() && r > c.tol {
			c.out = append(c.out, Violation{Family: CheckIntegrality, Residual: r, Variable: d.Name})
		}
	}
}

func (c *checker) shipped(j model.Deposit, t model.Period) float64 {
	var s float64
	for _, i := range c.inst.Sets.MineIDs() {
		s += c.val(c.vars.Y[formulation.ShipKey{I: i, J: j, T: t}].ID)
	}
	return s
}

func (c *checker) deposits() {
	s, p := c.inst.Sets, c.inst.Params
	for _, j := range s.DepositIDs() {
		w := c.val(c.vars.W[j].ID)
		limit := p.MassCapacity(j) * w
		var total float64
		for _, t := range s.PeriodIDs() {
			sent := c.shipped(j, t)
			total += sent
			if !c.excluded[formulation.FamilyDepositActiveGating] {
				c.report(formulation.FamilyDepositActiveGating, sent-limit, limit, int(j), int(t))
			}
		}
		if !c.excluded[formulation.FamilyDepositMassCapacity] {
			c.report(formulation.FamilyDepositMassCapacity, total-limit, limit, int(j))
			if math.Round(w) == 0 {
				c.report(CheckClosedDeposits, total, 0, int(j))
			}
		}
		if !c.excluded[formulation.FamilyDepositVolumeCapacity] {
			c.report(formulation.FamilyDepositVolumeCapacity, p.VolumeFactor(j)*total-p.VolumeCapacity(j), p.VolumeCapacity(j), int(j))
		}
	}
}

func (c *checker) inspections() {
	if c.excluded[formulation.FamilyAnnualInspection] {
		return
	}
	for _, j := range c.inst.Sets.DepositIDs() {
		var n float64
		for _, t := range c.inst.Sets.PeriodIDs() {
			n += c.val(c.vars.V[formulation.InspectionKey{J: j, T: t}].ID)
		}
		c.report(formulation.FamilyAnnualInspection, math.Abs(n-1), 1, int(j))
	}
}

func (c *checker) storage() {
	if c.excluded[formulation.FamilyOnsiteStorageCeiling] {
		return
	}
	for _, i := range c.inst.Sets.MineIDs() {
		q := c.inst.Params.StorageCap(i)
		for _, t := range c.inst.Sets.PeriodIDs() {
			c.report(formulation.FamilyOnsiteStorageCeiling, c.val(c.vars.U[formulation.StockKey{I: i, T: t}].ID)-q, q, int(i), int(t))
		}
	}
}

// massBalance verifies u[i,t] = u[i,t-1] + generated - shipped with
// u[i,0] = 0.
func (c *checker) massBalance() {
	if c.excluded[formulation.FamilyTailingsMassBalance] {
		return
	}
	s, p := c.inst.Sets, c.inst.Params
	for _, i := range s.MineIDs() {
		prev := 0.0
		for _, t := range s.PeriodIDs() {
			var generated, sent float64
			for _, k := range s.RouteIDs() {
				for _, l := range s.MineralIDs() {
					generated += p.TailingsRate(k, l) * c.val(c.vars.Z[formulation.FlowKey{I: i, K: k, L: l, T: t}].ID)
				}
			}
			for _, j := range s.DepositIDs() {
				sent += c.val(c.vars.Y[formulation.ShipKey{I: i, J: j, T: t}].ID)
			}
			u := c.val(c.vars.U[formulation.StockKey{I: i, T: t}].ID)
			c.report(formulation.FamilyTailingsMassBalance, math.Abs(u-(prev+generated-sent)), generated, int(i), int(t))
			prev = u
		}
	}
}

func (c *checker) water() {
	s, p := c.inst.Sets, c.inst.Params
	if !c.excluded[formulation.FamilyContinentalWaterCap] {
		limit := p.WaterShare() * p.ContinentalWater()
		for _, t := range s.PeriodIDs() {
			var used float64
			for _, i := range s.MineIDs() {
				for _, k := range s.RouteIDs() {
					for _, l := range s.MineralIDs() {
						used += c.val(c.vars.X[formulation.FlowKey{I: i, K: k, L: l, T: t}].ID)
					}
				}
			}
			c.report(formulation.FamilyContinentalWaterCap, used-limit, limit, int(t))
		}
	}
	if !c.excluded[formulation.FamilyMineWaterCeiling] {
		for _, i := range s.MineIDs() {
			var used float64
			for key, v := range c.vars.X {
				if key.I == i {
					used += c.val(v.ID)
				}
			}
			c.report(formulation.FamilyMineWaterCeiling, used-p.WaterAllotment(i), p.WaterAllotment(i), int(i))
		}
	}
	if !c.excluded[formulation.FamilyProcessWater] {
		for _, k := range s.RouteIDs() {
			for _, l := range s.MineralIDs() {
				for _, t := range s.PeriodIDs() {
					var water, processed float64
					for _, i := range s.MineIDs() {
						key := formulation.FlowKey{I: i, K: k, L: l, T: t}
						water += c.val(c.vars.X[key].ID)
						processed += c.val(c.vars.Z[key].ID)
					}
					need := p.WaterUse(k, l) * processed
					c.report(formulation.FamilyProcessWater, need-water, need, int(k), int(l), int(t))
				}
			}
		}
	}
}

func (c *checker) demand() {
	if c.excluded[formulation.FamilyDemandSatisfaction] {
		return
	}
	s, p := c.inst.Sets, c.inst.Params
	for _, l := range s.MineralIDs() {
		for _, t := range s.PeriodIDs() {
			var processed float64
			for _, i := range s.MineIDs() {
				for _, k := range s.RouteIDs() {
					processed += c.val(c.vars.Z[formulation.FlowKey{I: i, K: k, L: l, T: t}].ID)
				}
			}
			d := p.Demand(l, t)
			c.report(formulation.FamilyDemandSatisfaction, d-processed, d, int(l), int(t))
		}
	}
}

// budget verifies water, inspection and transport spending against b.
func (c *checker) budget() {
	if c.excluded[formulation.FamilyBudgetCeiling] {
		return
	}
	p := c.inst.Params
	var spend float64
	for key, v := range c.vars.X {
		spend += p.WaterCost(key.K) * c.val(v.ID)
	}
	for key, v := range c.vars.V {
		spend += p.InspectionCost(key.J) * c.val(v.ID)
	}
	for key, v := range c.vars.Y {
		spend += p.TransportCost() * p.Distance(key.I, key.J) * c.val(v.ID)
	}
	c.report(formulation.FamilyBudgetCeiling, spend-p.Budget(), p.Budget())
}
