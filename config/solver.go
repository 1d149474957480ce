package config

import (
	"time"

	"github.com/kilianp07/tailings/core/factory"
	"github.com/kilianp07/tailings/core/solver"
)

// DefaultBackend is the built-in branch-and-bound solver.
const DefaultBackend = "bnb"

// SolverConfig selects the backend and bounds each solve.
type SolverConfig struct {
	Backend      string         `json:"backend"`
	Conf         map[string]any `json:"conf"`
	TimeLimit    time.Duration  `json:"time_limit" validate:"gte=0"`
	GapTolerance float64        `json:"gap_tolerance" validate:"gte=0,lt=1"`
	MaxNodes     int            `json:"max_nodes" validate:"gte=0"`
	Attribute    bool           `json:"attribute"`
	MaxIISRows   int            `json:"max_iis_rows" validate:"gte=0"`
}

// SetDefaults applies a 60s limit and a 1e-4 relative gap.
func (c *SolverConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = DefaultBackend
	}
	if c.TimeLimit == 0 {
		c.TimeLimit = 60 * time.Second
	}
	if c.GapTolerance == 0 {
		c.GapTolerance = 1e-4
	}
	if c.MaxIISRows == 0 {
		c.MaxIISRows = 200
	}
}

// Module returns the backend selection for solver.New.
func (c SolverConfig) Module() factory.ModuleConfig {
	return factory.ModuleConfig{Type: c.Backend, Conf: c.Conf}
}

// Options returns the per-solve options.
func (c SolverConfig) Options() solver.Options {
	return solver.Options{
		TimeLimit:    c.TimeLimit,
		GapTolerance: c.GapTolerance,
		MaxNodes:     c.MaxNodes,
		Attribute:    c.Attribute,
		MaxIISRows:   c.MaxIISRows,
	}
}
