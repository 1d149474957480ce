package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/tailings/core/metrics"
)

func TestPromSink_RecordSolve(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg, "")
	require.NoError(t, err)

	require.NoError(t, sink.RecordSolve(coremetrics.SolveEvent{
		Status: "optimal", Objective: 420, Gap: 0.01, Nodes: 5, Duration: time.Second,
	}))
	require.NoError(t, sink.RecordSolve(coremetrics.SolveEvent{
		Scenario: "dry", Status: "infeasible", Objective: 99, Duration: time.Second,
	}))

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.solves.WithLabelValues("optimal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.solves.WithLabelValues("infeasible")))
	assert.Equal(t, 420.0, testutil.ToFloat64(sink.objective.WithLabelValues("base")))
	assert.Equal(t, 5.0, testutil.ToFloat64(sink.nodes.WithLabelValues("base")))
	assert.Equal(t, 0.01, testutil.ToFloat64(sink.gap.WithLabelValues("base")))
	// an infeasible solve leaves the scenario gauges untouched
	assert.Equal(t, 1, testutil.CollectAndCount(sink.objective))
}

func TestPromSink_RecordAttribution(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg, "")
	require.NoError(t, err)

	ev := coremetrics.AttributionEvent{Families: []string{"demand_satisfaction", "budget_ceiling"}}
	require.NoError(t, sink.RecordAttribution(ev))
	require.NoError(t, sink.RecordAttribution(ev))

	assert.Equal(t, 2.0, testutil.ToFloat64(sink.conflicts.WithLabelValues("budget_ceiling")))
	assert.Equal(t, 2, testutil.CollectAndCount(sink.conflicts))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg, "")
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg, "")
	require.NoError(t, err)

	require.NoError(t, second.RecordSolve(coremetrics.SolveEvent{Status: "optimal"}))
	assert.Equal(t, 1.0, testutil.ToFloat64(first.solves.WithLabelValues("optimal")))
}

func TestPromSink_FlushTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tailings.prom")
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg, path)
	require.NoError(t, err)
	require.NoError(t, sink.RecordSolve(coremetrics.SolveEvent{Status: "optimal", Objective: 12}))

	require.NoError(t, sink.Flush())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `tailings_solves_total{status="optimal"} 1`)
	assert.Contains(t, string(data), `tailings_objective_cost{scenario="base"} 12`)
}

func TestPromSink_FlushWithoutTextfile(t *testing.T) {
	sink, err := NewPromSinkWithRegistry(prometheus.NewRegistry(), "")
	require.NoError(t, err)
	assert.NoError(t, sink.Flush())
}
