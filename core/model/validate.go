package model

import (
	"errors"
	"math"
)

// Parameter names used in diagnostics, matching the model notation.
const (
	ParamMassCapacity     = "P"
	ParamVolumeCapacity   = "v"
	ParamVolumeFactor     = "e"
	ParamWaterAllotment   = "A"
	ParamDemand           = "d"
	ParamAnnualDemand     = "annual_demand"
	ParamWaterUse         = "a"
	ParamTailingsRate     = "rho"
	ParamClosureCost      = "r"
	ParamInspectionCost   = "delta"
	ParamWaterCost        = "f"
	ParamDistance         = "g"
	ParamTransportCost    = "c"
	ParamContinentalWater = "h"
	ParamBudget           = "b"
	ParamStorageCap       = "q"
	ParamWaterShare       = "water_share"
)

// Validate checks raw against sets and returns the first problem found.
func Validate(sets Sets, raw RawParameters) error {
	errs := check(sets, raw)
	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}

// ValidateAll checks raw against sets and joins every problem found.
func ValidateAll(sets Sets, raw RawParameters) error {
	return errors.Join(check(sets, raw)...)
}

type checker struct {
	sets Sets
	errs []error
}

func check(sets Sets, raw RawParameters) []error {
	if err := sets.Check(); err != nil {
		return []error{err}
	}
	c := &checker{sets: sets}

	c.vector(ParamMassCapacity, SetDeposits, raw.MassCapacity)
	c.vector(ParamVolumeCapacity, SetDeposits, raw.VolumeCapacity)
	c.vector(ParamVolumeFactor, SetDeposits, raw.VolumeFactor)
	c.vector(ParamWaterAllotment, SetMines, raw.WaterAllotment)
	c.vector(ParamClosureCost, SetDeposits, raw.ClosureCost)
	c.vector(ParamInspectionCost, SetDeposits, raw.InspectionCost)
	c.vector(ParamWaterCost, SetRoutes, raw.WaterCost)
	c.vector(ParamStorageCap, SetMines, raw.StorageCap)
	c.table(ParamWaterUse, SetRoutes, SetMinerals, raw.WaterUse)
	c.table(ParamTailingsRate, SetRoutes, SetMinerals, raw.TailingsRate)
	c.table(ParamDistance, SetMines, SetDeposits, raw.Distance)

	switch {
	case raw.Demand != nil && raw.AnnualDemand != nil:
		c.errs = append(c.errs, &ValueError{Parameter: ParamDemand, Reason: "demand and annual_demand are mutually exclusive"})
	case raw.Demand != nil:
		c.table(ParamDemand, SetMinerals, SetPeriods, raw.Demand)
	case raw.AnnualDemand != nil:
		c.vector(ParamAnnualDemand, SetMinerals, raw.AnnualDemand)
	default:
		c.errs = append(c.errs, &DimensionError{Parameter: ParamDemand, Set: SetMinerals, Expected: sets.Minerals})
	}

	c.scalar(ParamTransportCost, raw.TransportCost)
	c.scalar(ParamContinentalWater, raw.ContinentalWater)
	c.scalar(ParamBudget, raw.Budget)
	if raw.WaterShare < 0 || raw.WaterShare > 1 || math.IsNaN(raw.WaterShare) {
		c.errs = append(c.errs, &ValueError{Parameter: ParamWaterShare, Value: raw.WaterShare, Reason: "must lie in [0,1]"})
	}
	return c.errs
}

func (c *checker) vector(name, set string, v []float64) {
	if want := c.sets.Size(set); len(v) != want {
		c.errs = append(c.errs, &DimensionError{Parameter: name, Set: set, Expected: want, Actual: len(v)})
		return
	}
	for i, x := range v {
		c.value(name, []int{i + 1}, x)
	}
}

func (c *checker) table(name, rowSet, colSet string, t [][]float64) {
	if want := c.sets.Size(rowSet); len(t) != want {
		c.errs = append(c.errs, &DimensionError{Parameter: name, Set: rowSet, Expected: want, Actual: len(t)})
		return
	}
	want := c.sets.Size(colSet)
	for i, row := range t {
		if len(row) != want {
			c.errs = append(c.errs, &DimensionError{Parameter: name, Set: rowSet + "x" + colSet, Expected: want, Actual: len(row)})
			return
		}
		for j, x := range row {
			c.value(name, []int{i + 1, j + 1}, x)
		}
	}
}

func (c *checker) scalar(name string, x float64) {
	c.value(name, nil, x)
}

func (c *checker) value(name string, idx []int, x float64) {
	switch {
	case math.IsNaN(x) || math.IsInf(x, 0):
		c.errs = append(c.errs, &ValueError{Parameter: name, Index: idx, Value: x, Reason: "must be finite"})
	case x < 0:
		c.errs = append(c.errs, &ValueError{Parameter: name, Index: idx, Value: x, Reason: "must be non-negative"})
	}
}
