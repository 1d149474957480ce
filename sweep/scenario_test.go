package sweep

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tailings/core/model"
	"github.com/kilianp07/tailings/internal/fixture"
)

func ptr(f float64) *float64 { return &f }

func baseInput() Base {
	sets := fixture.Sets(2, 2, 1, 1, 2)
	raw := fixture.Raw(sets)
	raw.Demand = [][]float64{{10, 20}}
	raw.Budget = 500
	raw.ContinentalWater = 1000
	raw.WaterAllotment = []float64{100, 200}
	return Base{Sets: sets, Raw: raw}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
scenarios:
  - name: base
  - name: dry
    water_scale: 0.5
    exclude_families: [budget_ceiling]
  - name: closure
    closed_deposits: [2]
    budget_scale: 1.2
    demand_scale: 0
`)
	scs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, scs, 3)
	assert.Equal(t, "base", scs[0].Name)
	assert.Nil(t, scs[0].WaterScale)
	require.NotNil(t, scs[1].WaterScale)
	assert.Equal(t, 0.5, *scs[1].WaterScale)
	assert.Equal(t, []string{"budget_ceiling"}, scs[1].ExcludeFamilies)
	assert.Equal(t, []int{2}, scs[2].ClosedDeposits)
	require.NotNil(t, scs[2].DemandScale)
	assert.Zero(t, *scs[2].DemandScale)
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]string{
		"empty":     "scenarios: []\n",
		"syntax":    "scenarios: [\n",
		"duplicate": "scenarios:\n  - name: a\n  - name: a\n",
		"unnamed":   "scenarios:\n  - budget_scale: 2\n",
		"negative":  "scenarios:\n  - name: a\n    water_scale: -1\n",
		"index":     "scenarios:\n  - name: a\n    closed_deposits: [0]\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, body))
			assert.Error(t, err)
		})
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestScenarioInstance(t *testing.T) {
	base := baseInput()
	sc := Scenario{
		Name:           "stress",
		BudgetScale:    ptr(2),
		DemandScale:    ptr(1.5),
		WaterScale:     ptr(0.5),
		ClosedDeposits: []int{1},
	}
	inst, err := sc.Instance(base)
	require.NoError(t, err)
	p := inst.Params
	assert.Equal(t, 1000.0, p.Budget())
	assert.Equal(t, 15.0, p.Demand(1, 1))
	assert.Equal(t, 30.0, p.Demand(1, 2))
	assert.Equal(t, 500.0, p.ContinentalWater())
	assert.Equal(t, 50.0, p.WaterAllotment(1))
	assert.Equal(t, 100.0, p.WaterAllotment(2))
	assert.Zero(t, p.MassCapacity(1))
	assert.Zero(t, p.VolumeCapacity(1))
	assert.Equal(t, fixture.Generous, p.MassCapacity(2))

	// the base input is untouched
	assert.Equal(t, 500.0, base.Raw.Budget)
	assert.Equal(t, []float64{10, 20}, base.Raw.Demand[0])
	assert.Equal(t, fixture.Generous, base.Raw.MassCapacity[0])
}

func TestScenarioInstanceAnnualDemand(t *testing.T) {
	base := baseInput()
	base.Raw.Demand = nil
	base.Raw.AnnualDemand = []float64{40}
	inst, err := Scenario{Name: "half", DemandScale: ptr(0.5)}.Instance(base)
	require.NoError(t, err)
	assert.Equal(t, 10.0, inst.Params.Demand(model.Mineral(1), model.Period(1)))
}

func TestScenarioInstanceErrors(t *testing.T) {
	_, err := Scenario{Name: "far", ClosedDeposits: []int{3}}.Instance(baseInput())
	assert.ErrorContains(t, err, "out of range")

	base := baseInput()
	base.Raw.Budget = -1
	_, err = Scenario{Name: "bad"}.Instance(base)
	var verr *model.ValueError
	assert.ErrorAs(t, err, &verr)
}

func TestScenarioBuild(t *testing.T) {
	f, err := Scenario{Name: "relaxed", ExcludeFamilies: []string{"budget_ceiling"}}.Build(baseInput())
	require.NoError(t, err)
	assert.Equal(t, "tailings_allocation_relaxed", f.Model.Name)
	assert.Equal(t, []string{"budget_ceiling"}, f.Excluded)
	assert.NotContains(t, f.Model.Families(), "budget_ceiling")

	_, err = Scenario{Name: "typo", ExcludeFamilies: []string{"budget_cieling"}}.Build(baseInput())
	assert.Error(t, err)
}
