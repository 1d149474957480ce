// Package sweep solves variants of a base instance side by side: scaled
// budget, demand or water, closed deposits and relaxed constraint families.
package sweep

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/tailings/core/formulation"
	"github.com/kilianp07/tailings/core/model"
)

// Scenario is one variant of the base instance. Nil scales leave the
// parameter unchanged.
type Scenario struct {
	Name            string   `yaml:"name" json:"name"`
	BudgetScale     *float64 `yaml:"budget_scale" json:"budget_scale,omitempty"`
	DemandScale     *float64 `yaml:"demand_scale" json:"demand_scale,omitempty"`
	WaterScale      *float64 `yaml:"water_scale" json:"water_scale,omitempty"`
	ClosedDeposits  []int    `yaml:"closed_deposits" json:"closed_deposits,omitempty"`
	ExcludeFamilies []string `yaml:"exclude_families" json:"exclude_families,omitempty"`
}

// Base is the unmodified input every scenario derives from.
type Base struct {
	Sets   model.Sets
	Raw    model.RawParameters
	Labels model.Labels
}

type file struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Load reads a YAML scenario file of the form
//
//	scenarios:
//	  - name: dry
//	    water_scale: 0.5
func Load(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenarios: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scenarios %s: %w", path, err)
	}
	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("parse scenarios %s: no scenarios defined", path)
	}
	if err := Validate(f.Scenarios); err != nil {
		return nil, err
	}
	return f.Scenarios, nil
}

// Validate checks names are unique and scales are usable.
func Validate(scenarios []Scenario) error {
	seen := make(map[string]bool, len(scenarios))
	var errs []error
	for i, s := range scenarios {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("scenario %d: name is required", i+1))
		} else if seen[s.Name] {
			errs = append(errs, fmt.Errorf("scenario %q: duplicate name", s.Name))
		}
		seen[s.Name] = true
		for field, v := range map[string]*float64{
			"budget_scale": s.BudgetScale,
			"demand_scale": s.DemandScale,
			"water_scale":  s.WaterScale,
		} {
			if v != nil && *v < 0 {
				errs = append(errs, fmt.Errorf("scenario %q: %s must be non-negative", s.Name, field))
			}
		}
		for _, j := range s.ClosedDeposits {
			if j < 1 {
				errs = append(errs, fmt.Errorf("scenario %q: closed deposit %d is not a 1-based index", s.Name, j))
			}
		}
	}
	return errors.Join(errs...)
}

// Instance applies the scenario to a copy of base and validates the result.
// Closed deposits get zero mass and volume capacity so nothing may be shipped
// to them.
func (s Scenario) Instance(base Base) (*model.Instance, error) {
	raw := base.Raw.Clone()
	if s.BudgetScale != nil {
		raw.Budget *= *s.BudgetScale
	}
	if s.DemandScale != nil {
		for _, row := range raw.Demand {
			scale(row, *s.DemandScale)
		}
		scale(raw.AnnualDemand, *s.DemandScale)
	}
	if s.WaterScale != nil {
		raw.ContinentalWater *= *s.WaterScale
		scale(raw.WaterAllotment, *s.WaterScale)
	}
	for _, j := range s.ClosedDeposits {
		if j < 1 || j > len(raw.MassCapacity) || j > len(raw.VolumeCapacity) {
			return nil, fmt.Errorf("scenario %q: closed deposit %d out of range 1..%d", s.Name, j, base.Sets.Deposits)
		}
		raw.MassCapacity[j-1] = 0
		raw.VolumeCapacity[j-1] = 0
	}
	inst, err := model.NewInstance(base.Sets, raw, base.Labels)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return inst, nil
}

// Build applies the scenario and assembles its model.
func (s Scenario) Build(base Base) (*formulation.Formulation, error) {
	inst, err := s.Instance(base)
	if err != nil {
		return nil, err
	}
	f, err := formulation.Build(inst,
		formulation.WithName("tailings_allocation_"+s.Name),
		formulation.WithoutFamilies(s.ExcludeFamilies...))
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return f, nil
}

func scale(v []float64, k float64) {
	for i := range v {
		v[i] *= k
	}
}
