package config

// Export formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatMPS  = "mps"
	// FormatHTML writes a cost chart after a sweep.
	FormatHTML = "html"
)

// ExportConfig controls which artefacts a solve writes.
type ExportConfig struct {
	Dir     string   `json:"dir"`
	Formats []string `json:"formats" validate:"dive,oneof=json csv mps html"`
}

func (c *ExportConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "out"
	}
	if c.Formats == nil {
		c.Formats = []string{FormatJSON, FormatCSV}
	}
}

// Has reports whether format is enabled.
func (c ExportConfig) Has(format string) bool {
	for _, f := range c.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// SweepConfig holds the defaults of the sweep command.
type SweepConfig struct {
	Scenarios   string `json:"scenarios"`
	Parallelism int    `json:"parallelism" validate:"gte=0"`
}

func (c *SweepConfig) SetDefaults() {
	if c.Parallelism == 0 {
		c.Parallelism = 2
	}
}
