package formulation

import (
	"github.com/kilianp07/tailings/core/milp"
	"github.com/kilianp07/tailings/core/model"
)

type scope struct {
	inst *model.Instance
	vars Vars
}

// WaterCost is sum f[k]*x[i,k,l,t].
func (s scope) WaterCost() milp.Expr {
	var e milp.Expr
	for key, v := range s.vars.X {
		e.Add(v, s.inst.Params.WaterCost(key.K))
	}
	return e.Compact()
}

// TransportCost is c * sum g[i,j]*y[i,j,t].
func (s scope) TransportCost() milp.Expr {
	c := s.inst.Params.TransportCost()
	var e milp.Expr
	for key, v := range s.vars.Y {
		e.Add(v, c*s.inst.Params.Distance(key.I, key.J))
	}
	return e.Compact()
}

// ClosureCost is sum r[j]*w[j].
func (s scope) ClosureCost() milp.Expr {
	var e milp.Expr
	for j, v := range s.vars.W {
		e.Add(v, s.inst.Params.ClosureCost(j))
	}
	return e.Compact()
}

// InspectionCost is sum delta[j]*V[j,t].
func (s scope) InspectionCost() milp.Expr {
	var e milp.Expr
	for key, v := range s.vars.V {
		e.Add(v, s.inst.Params.InspectionCost(key.J))
	}
	return e.Compact()
}

// ObjectiveBuilder renders the cost objective.
type ObjectiveBuilder struct {
	scope
}

// NewObjectiveBuilder returns a builder over inst and vars.
func NewObjectiveBuilder(inst *model.Instance, vars Vars) ObjectiveBuilder {
	return ObjectiveBuilder{scope{inst: inst, vars: vars}}
}

// Objective is the total cost over the horizon: water, transport, deposit
// closure/operation and inspections. Every term is expressed in currency.
func (o ObjectiveBuilder) Objective() milp.Expr {
	e := o.WaterCost()
	e.AddExpr(o.TransportCost(), 1)
	e.AddExpr(o.ClosureCost(), 1)
	e.AddExpr(o.InspectionCost(), 1)
	return e.Compact()
}

// CostComponent names a term of the objective.
type CostComponent string

const (
	CostWater      CostComponent = "water"
	CostTransport  CostComponent = "transport"
	CostClosure    CostComponent = "closure"
	CostInspection CostComponent = "inspection"
)

// Breakdown evaluates each objective term at values.
func (o ObjectiveBuilder) Breakdown(values []float64) map[CostComponent]float64 {
	return map[CostComponent]float64{
		CostWater:      o.WaterCost().Eval(values),
		CostTransport:  o.TransportCost().Eval(values),
		CostClosure:    o.ClosureCost().Eval(values),
		CostInspection: o.InspectionCost().Eval(values),
	}
}
