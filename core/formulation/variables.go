package formulation

import (
	"fmt"
	"math"

	"github.com/kilianp07/tailings/core/milp"
	"github.com/kilianp07/tailings/core/model"
)

// FlowKey indexes x and z: mine, route, mineral, period.
type FlowKey struct {
	I model.Mine
	K model.Route
	L model.Mineral
	T model.Period
}

// ShipKey indexes y: mine, deposit, period.
type ShipKey struct {
	I model.Mine
	J model.Deposit
	T model.Period
}

// StockKey indexes u: mine, period.
type StockKey struct {
	I model.Mine
	T model.Period
}

// InspectionKey indexes V: deposit, period.
type InspectionKey struct {
	J model.Deposit
	T model.Period
}

// Vars holds the handles of every decision variable family.
type Vars struct {
	X map[FlowKey]milp.Var       // water allocated, m3
	Y map[ShipKey]milp.Var       // tailings shipped, kg
	Z map[FlowKey]milp.Var       // mineral processed, kg
	U map[StockKey]milp.Var      // on-site stock at end of period, kg
	W map[model.Deposit]milp.Var // deposit active
	V map[InspectionKey]milp.Var // inspection period
}

// Variable family names.
const (
	VarWater      = "x"
	VarShipment   = "y"
	VarProcessed  = "z"
	VarStock      = "u"
	VarActive     = "w"
	VarInspection = "V"
)

// DeclareVariables adds every variable family to m. u[i,0] is not declared:
// the initial stock is the constant zero.
func DeclareVariables(m *milp.Model, sets model.Sets) Vars {
	inf := math.Inf(1)
	v := Vars{
		X: make(map[FlowKey]milp.Var),
		Y: make(map[ShipKey]milp.Var),
		Z: make(map[FlowKey]milp.Var),
		U: make(map[StockKey]milp.Var),
		W: make(map[model.Deposit]milp.Var),
		V: make(map[InspectionKey]milp.Var),
	}
	for _, i := range sets.MineIDs() {
		for _, k := range sets.RouteIDs() {
			for _, l := range sets.MineralIDs() {
				for _, t := range sets.PeriodIDs() {
					key := FlowKey{I: i, K: k, L: l, T: t}
					v.X[key] = m.AddVar(fmt.Sprintf("x[%d,%d,%d,%d]", i, k, l, t), milp.Continuous, 0, inf)
					v.Z[key] = m.AddVar(fmt.Sprintf("z[%d,%d,%d,%d]", i, k, l, t), milp.Continuous, 0, inf)
				}
			}
		}
		for _, j := range sets.DepositIDs() {
			for _, t := range sets.PeriodIDs() {
				v.Y[ShipKey{I: i, J: j, T: t}] = m.AddVar(fmt.Sprintf("y[%d,%d,%d]", i, j, t), milp.Continuous, 0, inf)
			}
		}
		for _, t := range sets.PeriodIDs() {
			v.U[StockKey{I: i, T: t}] = m.AddVar(fmt.Sprintf("u[%d,%d]", i, t), milp.Continuous, 0, inf)
		}
	}
	for _, j := range sets.DepositIDs() {
		v.W[j] = m.AddVar(fmt.Sprintf("w[%d]", j), milp.Binary, 0, 1)
		for _, t := range sets.PeriodIDs() {
			v.V[InspectionKey{J: j, T: t}] = m.AddVar(fmt.Sprintf("V[%d,%d]", j, t), milp.Binary, 0, 1)
		}
	}
	return v
}
