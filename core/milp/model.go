package milp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the domain of a decision variable.
type Kind int

const (
	Continuous Kind = iota
	Binary
	Integer
)

func (k Kind) String() string {
	switch k {
	case Binary:
		return "binary"
	case Integer:
		return "integer"
	default:
		return "continuous"
	}
}

// Var is a handle on a variable declared in a Model.
type Var struct {
	ID int
}

// VarDef describes a declared variable. Upper is +Inf when unbounded.
type VarDef struct {
	Name  string
	Kind  Kind
	Lower float64
	Upper float64
}

// Integral reports whether the variable carries an integrality requirement.
func (d VarDef) Integral() bool { return d.Kind != Continuous }

// Sense is the relation of a constraint row.
type Sense int

const (
	LessEq Sense = iota
	GreaterEq
	Equal
)

func (s Sense) String() string {
	switch s {
	case GreaterEq:
		return ">="
	case Equal:
		return "="
	default:
		return "<="
	}
}

// Constraint is a linear row tagged with the family it belongs to and the
// index tuple that produced it. Expr holds variables only; the constant part
// is folded into RHS by NewConstraint.
type Constraint struct {
	Family string
	Index  []int
	Expr   Expr
	Sense  Sense
	RHS    float64
}

// NewConstraint builds lhs <sense> rhs and normalises it to
// (lhs - rhs).Terms <sense> rhs.Const - lhs.Const.
func NewConstraint(family string, index []int, lhs Expr, sense Sense, rhs Expr) Constraint {
	expr := lhs.Clone()
	expr.AddExpr(rhs, -1)
	c := Constraint{
		Family: family,
		Index:  append([]int(nil), index...),
		Sense:  sense,
		RHS:    -expr.Const,
	}
	expr.Const = 0
	c.Expr = expr.Compact()
	return c
}

// Name renders the constraint as family[i,j,...].
func (c Constraint) Name() string {
	if len(c.Index) == 0 {
		return c.Family
	}
	parts := make([]string, len(c.Index))
	for i, v := range c.Index {
		parts[i] = strconv.Itoa(v)
	}
	return c.Family + "[" + strings.Join(parts, ",") + "]"
}

// Activity evaluates the left-hand side at values.
func (c Constraint) Activity(values []float64) float64 {
	return c.Expr.Eval(values)
}

// Violation returns how far values are from satisfying the row; zero when
// satisfied.
func (c Constraint) Violation(values []float64) float64 {
	act := c.Activity(values)
	switch c.Sense {
	case LessEq:
		return math.Max(0, act-c.RHS)
	case GreaterEq:
		return math.Max(0, c.RHS-act)
	default:
		return math.Abs(act - c.RHS)
	}
}

// Model is a solver independent MILP: variables with bounds and kinds,
// tagged linear constraints and a linear objective.
type Model struct {
	Name        string
	vars        []VarDef
	constraints []Constraint
	objective   Expr
	maximize    bool
}

// NewModel returns an empty minimisation model.
func NewModel(name string) *Model {
	return &Model{Name: name}
}

// AddVar declares a variable and returns its handle.
func (m *Model) AddVar(name string, kind Kind, lower, upper float64) Var {
	if kind == Binary {
		lower, upper = math.Max(lower, 0), math.Min(upper, 1)
	}
	m.vars = append(m.vars, VarDef{Name: name, Kind: kind, Lower: lower, Upper: upper})
	return Var{ID: len(m.vars) - 1}
}

// AddConstraints appends rows to the model.
func (m *Model) AddConstraints(cs ...Constraint) {
	m.constraints = append(m.constraints, cs...)
}

// SetObjective sets the objective expression and direction.
func (m *Model) SetObjective(expr Expr, maximize bool) {
	m.objective = expr.Compact()
	m.maximize = maximize
}

// Objective returns the objective expression.
func (m *Model) Objective() Expr { return m.objective }

// Maximize reports the optimisation direction.
func (m *Model) Maximize() bool { return m.maximize }

// NumVars returns the number of declared variables.
func (m *Model) NumVars() int { return len(m.vars) }

// NumConstraints returns the number of rows.
func (m *Model) NumConstraints() int { return len(m.constraints) }

// Var returns the definition of v.
func (m *Model) Var(v Var) VarDef { return m.vars[v.ID] }

// Vars returns a copy of all variable definitions.
func (m *Model) Vars() []VarDef {
	return append([]VarDef(nil), m.vars...)
}

// Constraints returns a copy of the rows.
func (m *Model) Constraints() []Constraint {
	return append([]Constraint(nil), m.constraints...)
}

// Families lists the distinct constraint families in first-seen order.
func (m *Model) Families() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range m.constraints {
		if !seen[c.Family] {
			seen[c.Family] = true
			out = append(out, c.Family)
		}
	}
	return out
}

// FamilySizes counts rows per family.
func (m *Model) FamilySizes() map[string]int {
	out := make(map[string]int)
	for _, c := range m.constraints {
		out[c.Family]++
	}
	return out
}

// Filter returns a model sharing the variables and objective of m that only
// keeps rows for which keep returns true. m is not modified.
func (m *Model) Filter(keep func(i int, c Constraint) bool) *Model {
	out := &Model{
		Name:      m.Name,
		vars:      m.vars,
		objective: m.objective,
		maximize:  m.maximize,
	}
	for i, c := range m.constraints {
		if keep(i, c) {
			out.constraints = append(out.constraints, c)
		}
	}
	return out
}

// WithoutFamilies returns a copy of m without rows of the given families.
func (m *Model) WithoutFamilies(families ...string) *Model {
	drop := make(map[string]bool, len(families))
	for _, f := range families {
		drop[f] = true
	}
	return m.Filter(func(_ int, c Constraint) bool { return !drop[c.Family] })
}

// ObjectiveValue evaluates the objective at values.
func (m *Model) ObjectiveValue(values []float64) float64 {
	return m.objective.Eval(values)
}

// Validate checks that every referenced variable exists and bounds are sane.
func (m *Model) Validate() error {
	for i, d := range m.vars {
		if math.IsNaN(d.Lower) || math.IsNaN(d.Upper) || d.Lower > d.Upper {
			return fmt.Errorf("variable %s: invalid bounds [%g, %g]", d.Name, d.Lower, d.Upper)
		}
		if math.IsInf(d.Lower, -1) {
			return fmt.Errorf("variable %d (%s): free variables are not supported", i, d.Name)
		}
	}
	check := func(where string, e Expr) error {
		for _, t := range e.Terms {
			if t.Var.ID < 0 || t.Var.ID >= len(m.vars) {
				return fmt.Errorf("%s: unknown variable %d", where, t.Var.ID)
			}
			if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
				return fmt.Errorf("%s: non-finite coefficient for %s", where, m.vars[t.Var.ID].Name)
			}
		}
		return nil
	}
	if err := check("objective", m.objective); err != nil {
		return err
	}
	for _, c := range m.constraints {
		if err := check(c.Name(), c.Expr); err != nil {
			return err
		}
		if math.IsNaN(c.RHS) || math.IsInf(c.RHS, 0) {
			return fmt.Errorf("%s: non-finite right-hand side", c.Name())
		}
	}
	return nil
}

// VarIndex maps variable names to handles. Names are not required to be
// unique; the last declaration wins.
func (m *Model) VarIndex() map[string]Var {
	out := make(map[string]Var, len(m.vars))
	for i, d := range m.vars {
		out[d.Name] = Var{ID: i}
	}
	return out
}
