package export

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tailings/core/formulation"
	"github.com/kilianp07/tailings/core/report"
)

func TestWriteCostChart(t *testing.T) {
	reports := []*report.Report{
		{Scenario: "base", Costs: map[formulation.CostComponent]float64{
			formulation.CostWater: 120, formulation.CostTransport: 30,
		}},
		{Scenario: "drought"},
		nil,
		{Model: "tailings_allocation_tight", Costs: map[formulation.CostComponent]float64{
			formulation.CostClosure: 5,
		}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCostChart(&buf, reports))

	html := buf.String()
	assert.Contains(t, html, "Cost by scenario")
	assert.Contains(t, html, "base")
	assert.Contains(t, html, "tailings_allocation_tight")
	assert.NotContains(t, html, "drought")
	for _, c := range []string{"water", "transport", "closure", "inspection"} {
		assert.Contains(t, html, c)
	}
}

func TestWriteCostChartWithoutSolutions(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCostChart(&buf, []*report.Report{{Scenario: "drought"}})
	assert.True(t, errors.Is(err, ErrNoCosts))
	assert.Zero(t, buf.Len())
}
