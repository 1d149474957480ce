package model_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tailings/core/model"
	"github.com/kilianp07/tailings/internal/fixture"
)

func TestValidateAcceptsConsistentInput(t *testing.T) {
	sets := fixture.Sets(2, 3, 2, 2, 12)
	assert.NoError(t, model.Validate(sets, fixture.Raw(sets)))
}

func TestValidateDimensionMismatch(t *testing.T) {
	sets := fixture.Sets(2, 3, 2, 2, 12)
	cases := []struct {
		name     string
		mutate   func(*model.RawParameters)
		param    string
		set      string
		expected int
		actual   int
	}{
		{"mass capacity short", func(r *model.RawParameters) { r.MassCapacity = r.MassCapacity[:2] }, "P", "J", 3, 2},
		{"allotment long", func(r *model.RawParameters) { r.WaterAllotment = append(r.WaterAllotment, 1) }, "A", "I", 2, 3},
		{"water cost missing", func(r *model.RawParameters) { r.WaterCost = nil }, "f", "K", 2, 0},
		{"distance rows", func(r *model.RawParameters) { r.Distance = r.Distance[:1] }, "g", "I", 2, 1},
		{"distance cols", func(r *model.RawParameters) { r.Distance[1] = r.Distance[1][:2] }, "g", "IxJ", 3, 2},
		{"demand periods", func(r *model.RawParameters) { r.Demand[0] = r.Demand[0][:11] }, "d", "LxT", 12, 11},
		{"rho routes", func(r *model.RawParameters) { r.TailingsRate = r.TailingsRate[:1] }, "rho", "K", 2, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := fixture.Raw(sets)
			tc.mutate(&raw)
			err := model.Validate(sets, raw)
			var de *model.DimensionError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tc.param, de.Parameter)
			assert.Equal(t, tc.set, de.Set)
			assert.Equal(t, tc.expected, de.Expected)
			assert.Equal(t, tc.actual, de.Actual)
			assert.Contains(t, err.Error(), tc.param)
		})
	}
}

func TestValidateAllJoinsErrors(t *testing.T) {
	sets := fixture.Sets(1, 2, 1, 1, 3)
	raw := fixture.Raw(sets)
	raw.MassCapacity = nil
	raw.StorageCap = []float64{1, 2}
	err := model.ValidateAll(sets, raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parameter P")
	assert.Contains(t, err.Error(), "parameter q")
}

func TestValidateRejectsNegativeAndNaN(t *testing.T) {
	sets := fixture.Sets(1, 1, 1, 1, 1)
	raw := fixture.Raw(sets)
	raw.ClosureCost[0] = -1
	var ve *model.ValueError
	require.ErrorAs(t, model.Validate(sets, raw), &ve)
	assert.Equal(t, "r", ve.Parameter)
	assert.Equal(t, []int{1}, ve.Index)

	raw = fixture.Raw(sets)
	raw.Budget = math.NaN()
	require.ErrorAs(t, model.Validate(sets, raw), &ve)
	assert.Equal(t, "b", ve.Parameter)
}

func TestValidateDemandAlternatives(t *testing.T) {
	sets := fixture.Sets(1, 1, 1, 2, 12)
	raw := fixture.Raw(sets)
	raw.AnnualDemand = []float64{12, 24}
	var ve *model.ValueError
	require.ErrorAs(t, model.Validate(sets, raw), &ve)

	raw.Demand = nil
	require.NoError(t, model.Validate(sets, raw))

	raw.AnnualDemand = nil
	var de *model.DimensionError
	require.ErrorAs(t, model.Validate(sets, raw), &de)
	assert.Equal(t, "d", de.Parameter)
}

func TestSetsMustBeNonEmpty(t *testing.T) {
	sets := fixture.Sets(1, 0, 1, 1, 12)
	var ve *model.ValueError
	require.ErrorAs(t, model.Validate(sets, model.RawParameters{}), &ve)
	assert.Equal(t, "J", ve.Parameter)
}

func TestNewParametersAnnualDemandSpread(t *testing.T) {
	sets := fixture.Sets(1, 1, 1, 2, 12)
	raw := fixture.Raw(sets)
	raw.Demand = nil
	raw.AnnualDemand = []float64{1200, 0}
	p, err := model.NewParameters(sets, raw)
	require.NoError(t, err)
	for _, tt := range sets.PeriodIDs() {
		assert.InDelta(t, 100, p.Demand(1, tt), 1e-9)
		assert.Zero(t, p.Demand(2, tt))
	}
}

func TestNewParametersAccessors(t *testing.T) {
	sets := fixture.Sets(2, 2, 1, 1, 1)
	raw := fixture.Raw(sets)
	raw.MassCapacity = []float64{10, 20}
	raw.Distance = [][]float64{{1, 2}, {3, 4}}
	raw.TailingsRate = [][]float64{{0.9}}
	raw.WaterShare = 0
	p, err := model.NewParameters(sets, raw)
	require.NoError(t, err)
	assert.Equal(t, 20.0, p.MassCapacity(2))
	assert.Equal(t, 3.0, p.Distance(2, 1))
	assert.Equal(t, 0.9, p.TailingsRate(1, 1))
	assert.Equal(t, model.DefaultWaterShare, p.WaterShare())
}

func TestNewParametersFailsBeforeBuilding(t *testing.T) {
	sets := fixture.Sets(1, 2, 1, 1, 1)
	raw := fixture.Raw(sets)
	raw.VolumeCapacity = []float64{1}
	p, err := model.NewParameters(sets, raw)
	assert.Nil(t, p)
	var de *model.DimensionError
	assert.True(t, errors.As(err, &de))
}

func TestCloneDoesNotAlias(t *testing.T) {
	sets := fixture.Sets(1, 1, 1, 1, 2)
	raw := fixture.Raw(sets)
	cp := raw.Clone()
	cp.Demand[0][1] = 99
	cp.MassCapacity[0] = 1
	assert.Zero(t, raw.Demand[0][1])
	assert.Equal(t, fixture.Generous, raw.MassCapacity[0])
}

func TestInstanceLabels(t *testing.T) {
	sets := fixture.Sets(1, 1, 2, 1, 1)
	_, err := model.NewInstance(sets, fixture.Raw(sets), model.Labels{Routes: []string{"flotation"}})
	var de *model.DimensionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "labels.K", de.Parameter)

	inst, err := model.NewInstance(sets, fixture.Raw(sets), model.Labels{Routes: []string{"flotation", "leaching"}})
	require.NoError(t, err)
	assert.Equal(t, "leaching", inst.Labels.Name(model.SetRoutes, 2))
	assert.Equal(t, "I1", inst.Labels.Name(model.SetMines, 1))
}
