package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/tailings/core/metrics"
	"github.com/kilianp07/tailings/infra/monitoring"
	"github.com/kilianp07/tailings/infra/runlog"
)

// EnvPrefix marks environment overrides, e.g. TAILINGS_SOLVER__TIME_LIMIT=30s.
const EnvPrefix = "TAILINGS_"

type Config struct {
	Model   ModelConfig    `json:"model"`
	Data    DataConfig     `json:"data"`
	Solver  SolverConfig   `json:"solver"`
	Metrics metrics.Config `json:"metrics"`
	Runlog  runlog.Config  `json:"runlog"`
	Export  ExportConfig   `json:"export"`
	Sweep   SweepConfig    `json:"sweep"`

	Monitoring monitoring.Config `json:"monitoring"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides. TAILINGS_SOLVER__TIME_LIMIT becomes
	// solver.time_limit; the provider then splits keys on ".".
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every unset optional field.
func (c *Config) SetDefaults() {
	c.Model.SetDefaults()
	c.Data.SetDefaults()
	c.Solver.SetDefaults()
	c.Runlog.SetDefaults()
	c.Export.SetDefaults()
	c.Sweep.SetDefaults()
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate runs the struct tags and the cross-field checks.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Model.Validate(c.Data.Enabled()); err != nil {
		return fmt.Errorf("config: model: %w", err)
	}
	return nil
}
