package config

import (
	"fmt"
	"unicode/utf8"

	"github.com/kilianp07/tailings/infra/loader"
)

// DataConfig points at the per-deposit source file. When Deposits is empty
// the capacities are taken from the model section.
type DataConfig struct {
	Deposits         string  `json:"deposits"`
	MassColumn       string  `json:"mass_column" validate:"required_with=Deposits"`
	VolumeColumn     string  `json:"volume_column"`
	ConversionColumn string  `json:"conversion_column"`
	ConversionFactor float64 `json:"conversion_factor" validate:"gte=0"`
	Delimiter        string  `json:"delimiter" validate:"omitempty,len=1"`
}

// SetDefaults fills the loader defaults.
func (c *DataConfig) SetDefaults() {
	if c.Deposits == "" {
		return
	}
	if c.MassColumn == "" {
		c.MassColumn = loader.DefaultConversionColumn
	}
	if c.ConversionColumn == "" {
		c.ConversionColumn = loader.DefaultConversionColumn
	}
	if c.ConversionFactor == 0 {
		c.ConversionFactor = loader.TonnesToKilograms
	}
	if c.Delimiter == "" {
		c.Delimiter = ","
	}
}

// Enabled reports whether capacities are read from a file.
func (c DataConfig) Enabled() bool { return c.Deposits != "" }

// LoaderOptions converts the section to loader options.
func (c DataConfig) LoaderOptions() (loader.Options, error) {
	opts := loader.Options{ConversionColumn: c.ConversionColumn, ConversionFactor: c.ConversionFactor}
	if c.Delimiter != "" {
		r, size := utf8.DecodeRuneInString(c.Delimiter)
		if r == utf8.RuneError || size != len(c.Delimiter) {
			return loader.Options{}, fmt.Errorf("delimiter %q must be a single character", c.Delimiter)
		}
		opts.Delimiter = r
	}
	return opts, nil
}
