package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `model:
  name: atacama
  sets: {mines: 2, deposits: 2, routes: 1, minerals: 1, periods: 2}
  labels:
    minerals: [copper]
  params:
    mass_capacity: [1000, 2000]
    volume_capacity: [10, 20]
    volume_factor: [0.001, 0.001]
    water_allotment: [100, 100]
    demand: [[10, 20]]
    water_use: [[1]]
    tailings_rate: [[0.5]]
    closure_cost: [5, 7]
    inspection_cost: [1, 1]
    water_cost: [2]
    distance: [[1, 2], [3, 4]]
    transport_cost: 0.1
    continental_water: 5000
    budget: 10000
    storage_cap: [50, 50]
solver:
  backend: bnb
  time_limit: 30s
  max_nodes: 500
  attribute: true
  conf:
    tolerance: 1e-9
metrics:
  sinks:
    - type: "nop"
runlog:
  backend: sqlite
  path: runs.db
export:
  dir: results
  formats: [json, mps]
`

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", sample))
	require.NoError(t, err)

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"model.name", cfg.Model.Name, "atacama"},
		{"sets.deposits", cfg.Model.Sets.Deposits, 2},
		{"sets.periods", cfg.Model.Sets.Periods, 2},
		{"labels.minerals", cfg.Model.Labels.Minerals, []string{"copper"}},
		{"params.demand", cfg.Model.Params.Demand, [][]float64{{10, 20}}},
		{"params.distance", cfg.Model.Params.Distance, [][]float64{{1, 2}, {3, 4}}},
		{"params.transport_cost", cfg.Model.Params.TransportCost, 0.1},
		{"params.water_share", cfg.Model.Params.WaterShare, 0.1},
		{"solver.time_limit", cfg.Solver.TimeLimit, 30 * time.Second},
		{"solver.max_nodes", cfg.Solver.MaxNodes, 500},
		{"solver.attribute", cfg.Solver.Attribute, true},
		{"solver.gap_tolerance", cfg.Solver.GapTolerance, 1e-4},
		{"solver.conf", cfg.Solver.Module().Conf["tolerance"], 1e-9},
		{"metrics.sinks", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"runlog.backend", cfg.Runlog.Backend, "sqlite"},
		{"runlog.max_backups", cfg.Runlog.MaxBackups, 5},
		{"export.dir", cfg.Export.Dir, "results"},
		{"export.mps", cfg.Export.Has(FormatMPS), true},
		{"export.csv", cfg.Export.Has(FormatCSV), false},
		{"sweep.parallelism", cfg.Sweep.Parallelism, 2},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}
	opts := cfg.Solver.Options()
	assert.Equal(t, 30*time.Second, opts.TimeLimit)
	assert.Equal(t, 200, opts.MaxIISRows)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TAILINGS_SOLVER__TIME_LIMIT", "5s")
	t.Setenv("TAILINGS_MODEL__PARAMS__BUDGET", "42")
	t.Setenv("TAILINGS_MONITORING__DSN", "https://key@sentry.example.com/1")
	cfg, err := Load(writeConfig(t, "config.yaml", sample))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Solver.TimeLimit)
	assert.Equal(t, 42.0, cfg.Model.Params.Budget)
	assert.Equal(t, "https://key@sentry.example.com/1", cfg.Monitoring.DSN)
	// siblings of an overridden key keep their file values
	assert.Equal(t, 500, cfg.Solver.MaxNodes)
	assert.Equal(t, 5000.0, cfg.Model.Params.ContinentalWater)
}

func TestLoadDefaultPeriods(t *testing.T) {
	data := `model:
  sets: {mines: 1, deposits: 1, routes: 1, minerals: 1}
  params:
    mass_capacity: [1]
    volume_capacity: [1]
    volume_factor: [1]
    water_allotment: [1]
    annual_demand: [120]
    water_use: [[1]]
    tailings_rate: [[1]]
    closure_cost: [1]
    inspection_cost: [1]
    water_cost: [1]
    distance: [[1]]
    storage_cap: [1]
`
	cfg, err := Load(writeConfig(t, "config.yml", data))
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Model.Sets.Periods)
	assert.Equal(t, DefaultBackend, cfg.Solver.Backend)
	assert.Equal(t, []string{FormatJSON, FormatCSV}, cfg.Export.Formats)
}

func TestLoadCapacitiesFromData(t *testing.T) {
	data := `{
  "model": {
    "sets": {"mines": 1, "deposits": 2, "routes": 1, "minerals": 1, "periods": 1},
    "params": {
      "volume_factor": [1, 1], "water_allotment": [1], "demand": [[1]],
      "water_use": [[1]], "tailings_rate": [[1]], "closure_cost": [1, 1],
      "inspection_cost": [1, 1], "water_cost": [1], "distance": [[1, 1]],
      "storage_cap": [1]
    }
  },
  "data": {"deposits": "deposits.csv", "delimiter": ";"}
}`
	cfg, err := Load(writeConfig(t, "config.json", data))
	require.NoError(t, err)
	assert.True(t, cfg.Data.Enabled())
	assert.Equal(t, "TONELAJE_AUTORIZADO", cfg.Data.MassColumn)
	opts, err := cfg.Data.LoaderOptions()
	require.NoError(t, err)
	assert.Equal(t, ';', opts.Delimiter)
	assert.Equal(t, 1000.0, opts.ConversionFactor)
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]struct {
		name string
		data string
	}{
		"format":   {"config.toml", "x = 1"},
		"sets":     {"config.yaml", "model:\n  sets: {mines: 0}\n"},
		"dims":     {"config.yaml", "model:\n  sets: {mines: 1, deposits: 1, routes: 1, minerals: 1, periods: 1}\n  params:\n    mass_capacity: [1, 2]\n"},
		"sweep":    {"config.yaml", sample + "\n" + "sweep:\n  parallelism: -1\n"},
		"export":   {"config.yaml", replace(sample, "formats: [json, mps]", "formats: [xlsx]")},
		"runlog":   {"config.yaml", replace(sample, "backend: sqlite", "backend: mongo")},
		"gap":      {"config.yaml", replace(sample, "max_nodes: 500", "gap_tolerance: 2")},
		"labels":   {"config.yaml", replace(sample, "minerals: [copper]", "minerals: [copper, gold]")},
		"datacol":  {"config.yaml", sample + "data:\n  deposits: d.csv\n  delimiter: ';;'\n"},
		"negative": {"config.yaml", replace(sample, "budget: 10000", "budget: -1")},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.name, tt.data))
			assert.Error(t, err)
		})
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDataLoaderOptions(t *testing.T) {
	_, err := DataConfig{Delimiter: "ab"}.LoaderOptions()
	assert.Error(t, err)
	opts, err := DataConfig{}.LoaderOptions()
	require.NoError(t, err)
	assert.Zero(t, opts.Delimiter)
}

func replace(s, old, new string) string {
	out := strings.Replace(s, old, new, 1)
	if out == s {
		panic("replace: " + old + " not found")
	}
	return out
}

func TestLoadSampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "configs", "tailings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Model.Sets.Periods)
	assert.Equal(t, []string{"cobre", "molibdeno"}, cfg.Model.Labels.Minerals)
	assert.True(t, cfg.Data.Enabled())
	assert.Equal(t, "VOL_AUTORIZADO", cfg.Data.VolumeColumn)
	assert.Equal(t, 2*time.Minute, cfg.Solver.TimeLimit)
	assert.True(t, cfg.Export.Has(FormatMPS))
}
