package config

import (
	"github.com/kilianp07/tailings/core/model"
)

// ModelConfig carries the set sizes, parameters and labels of the base
// instance.
type ModelConfig struct {
	Name   string              `json:"name"`
	Sets   model.Sets          `json:"sets"`
	Params model.RawParameters `json:"params"`
	Labels model.Labels        `json:"labels"`
}

// SetDefaults applies the monthly horizon when no period count is given.
func (c *ModelConfig) SetDefaults() {
	if c.Name == "" {
		c.Name = "tailings_allocation"
	}
	if c.Sets.Periods == 0 {
		c.Sets.Periods = model.DefaultPeriods
	}
	if c.Params.WaterShare == 0 {
		c.Params.WaterShare = model.DefaultWaterShare
	}
}

// Validate checks every parameter against the sets. When deposit capacities
// come from a data file they are checked once loaded instead.
func (c ModelConfig) Validate(capacitiesFromData bool) error {
	if err := c.Sets.Check(); err != nil {
		return err
	}
	raw := c.Params
	if capacitiesFromData {
		raw.MassCapacity = make([]float64, c.Sets.Deposits)
		if raw.VolumeCapacity == nil {
			raw.VolumeCapacity = make([]float64, c.Sets.Deposits)
		}
	}
	if err := model.ValidateAll(c.Sets, raw); err != nil {
		return err
	}
	return c.Labels.Check(c.Sets)
}
