package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/tailings/config"
	"github.com/kilianp07/tailings/core/factory"
	"github.com/kilianp07/tailings/core/model"
	"github.com/kilianp07/tailings/core/solver"
	"github.com/kilianp07/tailings/infra/logger"
	"github.com/kilianp07/tailings/infra/runlog"
	"github.com/kilianp07/tailings/internal/eventbus"
	"github.com/kilianp07/tailings/internal/fixture"
	"github.com/kilianp07/tailings/sweep"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	sets := fixture.Sets(1, 1, 1, 1, 1)
	raw := fixture.Raw(sets)
	raw.Demand = [][]float64{{10}}
	raw.WaterUse = [][]float64{{1}}
	raw.WaterCost = []float64{2}
	cfg := &config.Config{
		Model:   config.ModelConfig{Name: "unit", Sets: sets, Params: raw, Labels: model.Labels{Minerals: []string{"copper"}}},
		Solver:  config.SolverConfig{Attribute: true},
		Runlog:  runlog.Config{Backend: runlog.BackendSQLite, Path: filepath.Join(dir, "runs.db")},
		Export:  config.ExportConfig{Dir: filepath.Join(dir, "out"), Formats: []string{config.FormatCSV, config.FormatMPS}},
	}
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "nop"}}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func newService(t *testing.T, cfg *config.Config) *Service {
	t.Helper()
	svc, err := New(cfg, WithLogger(logger.NopLogger{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestServiceSolve(t *testing.T) {
	cfg := testConfig(t)
	svc := newService(t, cfg)

	r, err := svc.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, solver.StatusOptimal, r.Status)
	assert.Equal(t, BaseScenario, r.Scenario)
	assert.InDelta(t, 20.0, r.Objective, 1e-6)
	assert.Empty(t, r.Violations)
	assert.NotEmpty(t, r.RunID)

	dir := filepath.Join(cfg.Export.Dir, BaseScenario)
	for _, name := range []string{"report.json", "z.csv", "model.mps"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	z, err := os.ReadFile(filepath.Join(dir, "z.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(z), "copper")

	recs, err := svc.RunLog().Query(context.Background(), runlog.Query{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, r.RunID, recs[0].RunID)
	assert.Equal(t, "optimal", recs[0].Status)
	assert.Equal(t, "bnb", recs[0].Backend)
}

func TestServiceSolveInfeasible(t *testing.T) {
	cfg := testConfig(t)
	cfg.Model.Params.ContinentalWater = 0
	svc := newService(t, cfg)

	r, err := svc.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, solver.StatusInfeasible, r.Status)
	require.NotNil(t, r.Attribution)
	assert.Contains(t, r.Attribution.Families, "continental_water_cap")
	assert.Nil(t, r.Tables)

	recs, err := svc.RunLog().Query(context.Background(), runlog.Query{Status: "infeasible"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, r.Attribution.Families, recs[0].Families)
}

func TestServiceBaseFromData(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "deposits.csv")
	require.NoError(t, os.WriteFile(path, []byte("NOMBRE;TONELAJE_AUTORIZADO;VOLUMEN\ntranque;2,5;300\n"), 0o644))
	cfg.Data = config.DataConfig{Deposits: path, VolumeColumn: "VOLUMEN", Delimiter: ";"}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	svc := newService(t, cfg)

	base, err := svc.Base()
	require.NoError(t, err)
	assert.Equal(t, []float64{2500}, base.Raw.MassCapacity)
	assert.Equal(t, []float64{300}, base.Raw.VolumeCapacity)
	// the configured parameters are not modified
	assert.Equal(t, []float64{fixture.Generous}, cfg.Model.Params.MassCapacity)
}

func TestServiceBaseDimensionMismatch(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "deposits.csv")
	require.NoError(t, os.WriteFile(path, []byte("TONELAJE_AUTORIZADO\n1\n2\n"), 0o644))
	cfg.Data = config.DataConfig{Deposits: path}
	cfg.SetDefaults()
	svc := newService(t, cfg)

	_, err := svc.Instance()
	assert.ErrorContains(t, err, "parameter P")
}

func TestServiceExportModel(t *testing.T) {
	svc := newService(t, testConfig(t))
	var sb strings.Builder
	require.NoError(t, svc.ExportModel(&sb))
	out := sb.String()
	assert.True(t, strings.HasPrefix(out, "NAME"), out)
	assert.Contains(t, strings.SplitN(out, "\n", 2)[0], "unit")
	assert.Contains(t, out, "ENDATA")
}

func TestServiceSweep(t *testing.T) {
	cfg := testConfig(t)
	svc := newService(t, cfg)
	bus := eventbus.NewTyped[sweep.Progress]()
	defer bus.Close()
	ch := bus.Subscribe()

	scs := []sweep.Scenario{{Name: "base"}, {Name: "drought", WaterScale: func() *float64 { v := 0.0; return &v }()}, {Name: "bad", ClosedDeposits: []int{5}}}
	reports, err := svc.Sweep(context.Background(), scs, bus)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `scenario "bad"`)
	require.Len(t, reports, 3)
	assert.Equal(t, solver.StatusOptimal, reports[0].Status)
	assert.Equal(t, solver.StatusInfeasible, reports[1].Status)
	assert.Equal(t, "drought", reports[1].Scenario)
	assert.Nil(t, reports[2])
	for range scs {
		<-ch
	}

	assert.FileExists(t, filepath.Join(cfg.Export.Dir, "drought", "report.json"))
	recs, err := svc.RunLog().Query(context.Background(), runlog.Query{})
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestNewUnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Solver.Backend = "cplex"
	_, err := New(cfg, WithLogger(logger.NopLogger{}))
	assert.ErrorContains(t, err, "cplex")
}

func TestNewUnknownSink(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "statsd"}}
	_, err := New(cfg, WithLogger(logger.NopLogger{}))
	assert.ErrorContains(t, err, "statsd")
}
