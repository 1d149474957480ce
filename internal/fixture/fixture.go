// Package fixture builds small, internally consistent model inputs shared by
// tests across packages.
package fixture

import "github.com/kilianp07/tailings/core/model"

// Generous is the capacity used for every bound that should never bind.
const Generous = 1e6

// Sets returns a Sets value with the given cardinalities.
func Sets(i, j, k, l, t int) model.Sets {
	return model.Sets{Mines: i, Deposits: j, Routes: k, Minerals: l, Periods: t}
}

// Raw returns parameters sized for sets where every capacity is generous,
// demand is zero and every cost is zero.
func Raw(sets model.Sets) model.RawParameters {
	return model.RawParameters{
		MassCapacity:     fill(sets.Deposits, Generous),
		VolumeCapacity:   fill(sets.Deposits, Generous),
		VolumeFactor:     fill(sets.Deposits, 0.001),
		WaterAllotment:   fill(sets.Mines, Generous),
		Demand:           table(sets.Minerals, sets.Periods, 0),
		WaterUse:         table(sets.Routes, sets.Minerals, 0),
		TailingsRate:     table(sets.Routes, sets.Minerals, 1),
		ClosureCost:      fill(sets.Deposits, 0),
		InspectionCost:   fill(sets.Deposits, 0),
		WaterCost:        fill(sets.Routes, 0),
		Distance:         table(sets.Mines, sets.Deposits, 0),
		TransportCost:    0,
		ContinentalWater: Generous,
		Budget:           Generous,
		StorageCap:       fill(sets.Mines, Generous),
	}
}

// Instance builds a validated instance and panics on invalid input, which
// only happens when a test constructs inconsistent data.
func Instance(sets model.Sets, raw model.RawParameters) *model.Instance {
	inst, err := model.NewInstance(sets, raw, model.Labels{})
	if err != nil {
		panic(err)
	}
	return inst
}

func fill(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func table(rows, cols int, v float64) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = fill(cols, v)
	}
	return out
}
