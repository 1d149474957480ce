package metrics_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tailings/core/factory"
	"github.com/kilianp07/tailings/core/metrics"
	inframetrics "github.com/kilianp07/tailings/infra/metrics"
)

func TestNewMetricsSink_None(t *testing.T) {
	s, err := metrics.NewMetricsSink(nil)
	require.NoError(t, err)
	assert.IsType(t, metrics.NopSink{}, s)
}

func TestNewMetricsSink_Single(t *testing.T) {
	s, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}})
	require.NoError(t, err)
	assert.IsType(t, metrics.NopSink{}, s)
}

func TestNewMetricsSink_Multi(t *testing.T) {
	textfile := filepath.Join(t.TempDir(), "tailings.prom")
	s, err := metrics.NewMetricsSink([]factory.ModuleConfig{
		{Type: "nop"},
		{Type: "prometheus", Conf: map[string]any{"textfile": textfile}},
	})
	require.NoError(t, err)
	multi, ok := s.(*metrics.MultiSink)
	require.True(t, ok, "got %T", s)
	require.Len(t, multi.Sinks, 2)
	assert.IsType(t, &inframetrics.PromSink{}, multi.Sinks[1])

	require.NoError(t, multi.RecordSolve(metrics.SolveEvent{Status: "optimal"}))
	assert.NoError(t, multi.Flush())
	assert.FileExists(t, textfile)
}

func TestNewMetricsSink_Unknown(t *testing.T) {
	_, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "statsd"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statsd")
}
