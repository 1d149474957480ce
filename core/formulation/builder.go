package formulation

import (
	"errors"
	"fmt"

	"github.com/kilianp07/tailings/core/milp"
	"github.com/kilianp07/tailings/core/model"
)

// Formulation is an assembled model together with the handles needed to read
// a solution back.
type Formulation struct {
	Instance *model.Instance
	Model    *milp.Model
	Vars     Vars
	Excluded []string
}

type buildOptions struct {
	name    string
	exclude map[string]bool
}

// Option customises Build.
type Option func(*buildOptions)

// WithName sets the model name.
func WithName(name string) Option {
	return func(o *buildOptions) { o.name = name }
}

// WithoutFamilies leaves the named constraint families out of the model.
func WithoutFamilies(families ...string) Option {
	return func(o *buildOptions) {
		for _, f := range families {
			o.exclude[f] = true
		}
	}
}

// Build declares the variables, adds every constraint family and sets the
// cost objective.
func Build(inst *model.Instance, opts ...Option) (*Formulation, error) {
	if inst == nil || inst.Params == nil {
		return nil, errors.New("formulation: nil instance")
	}
	o := buildOptions{name: "tailings_allocation", exclude: map[string]bool{}}
	for _, opt := range opts {
		opt(&o)
	}
	known := make(map[string]bool, len(Families))
	for _, f := range Families {
		known[f] = true
	}
	var excluded []string
	for _, f := range Families {
		if o.exclude[f] {
			excluded = append(excluded, f)
		}
	}
	for f := range o.exclude {
		if !known[f] {
			return nil, fmt.Errorf("formulation: unknown constraint family %q", f)
		}
	}

	m := milp.NewModel(o.name)
	vars := DeclareVariables(m, inst.Sets)
	cb := NewConstraintBuilder(inst, vars)
	for _, f := range Families {
		if o.exclude[f] {
			continue
		}
		m.AddConstraints(cb.Family(f)...)
	}
	m.SetObjective(NewObjectiveBuilder(inst, vars).Objective(), false)
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("formulation: %w", err)
	}
	return &Formulation{Instance: inst, Model: m, Vars: vars, Excluded: excluded}, nil
}

// Constraints returns a constraint builder bound to this formulation.
func (f *Formulation) Constraints() ConstraintBuilder {
	return NewConstraintBuilder(f.Instance, f.Vars)
}

// Costs returns the objective builder bound to this formulation.
func (f *Formulation) Costs() ObjectiveBuilder {
	return NewObjectiveBuilder(f.Instance, f.Vars)
}
