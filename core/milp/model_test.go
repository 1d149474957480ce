package milp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConstraintNormalises(t *testing.T) {
	m := NewModel("t")
	y := m.AddVar("y", Continuous, 0, math.Inf(1))
	w := m.AddVar("w", Binary, 0, 1)

	// y + 5 <= 1000*w + 2  ->  y - 1000w <= -3
	lhs := Sum(y)
	lhs.AddConst(5)
	rhs := Expr{}
	rhs.Add(w, 1000).AddConst(2)
	c := NewConstraint("cap", []int{3}, lhs, LessEq, rhs)

	assert.Equal(t, "cap[3]", c.Name())
	assert.InDelta(t, -3, c.RHS, 1e-12)
	assert.Equal(t, 1.0, c.Expr.Coef(y))
	assert.Equal(t, -1000.0, c.Expr.Coef(w))
	assert.Zero(t, c.Expr.Const)
}

func TestCompactMergesDuplicates(t *testing.T) {
	e := Expr{}
	e.Add(Var{ID: 2}, 1).Add(Var{ID: 0}, 3).Add(Var{ID: 2}, -1).Add(Var{ID: 0}, 1)
	c := e.Compact()
	require.Len(t, c.Terms, 1)
	assert.Equal(t, Term{Var: Var{ID: 0}, Coef: 4}, c.Terms[0])
}

func TestViolation(t *testing.T) {
	m := NewModel("t")
	x := m.AddVar("x", Continuous, 0, math.Inf(1))
	le := NewConstraint("le", nil, Sum(x), LessEq, Constant(1))
	ge := NewConstraint("ge", nil, Sum(x), GreaterEq, Constant(1))
	eq := NewConstraint("eq", nil, Sum(x), Equal, Constant(1))

	vals := []float64{3}
	assert.Equal(t, 2.0, le.Violation(vals))
	assert.Zero(t, ge.Violation(vals))
	assert.Equal(t, 2.0, eq.Violation(vals))
	assert.Equal(t, "le", le.Name())
}

func TestBinaryBoundsClamped(t *testing.T) {
	m := NewModel("t")
	v := m.AddVar("w", Binary, -3, 7)
	d := m.Var(v)
	assert.Equal(t, 0.0, d.Lower)
	assert.Equal(t, 1.0, d.Upper)
	assert.True(t, d.Integral())
}

func TestFamiliesAndFilter(t *testing.T) {
	m := NewModel("t")
	x := m.AddVar("x", Continuous, 0, math.Inf(1))
	m.AddConstraints(
		NewConstraint("b", []int{1}, Sum(x), LessEq, Constant(1)),
		NewConstraint("a", []int{1}, Sum(x), GreaterEq, Constant(0)),
		NewConstraint("b", []int{2}, Sum(x), LessEq, Constant(2)),
	)
	assert.Equal(t, []string{"b", "a"}, m.Families())
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, m.FamilySizes())

	sub := m.WithoutFamilies("b")
	assert.Equal(t, 1, sub.NumConstraints())
	assert.Equal(t, 3, m.NumConstraints())
	assert.Equal(t, m.NumVars(), sub.NumVars())
}

func TestValidateRejectsUnknownVariable(t *testing.T) {
	m := NewModel("t")
	m.AddVar("x", Continuous, 0, math.Inf(1))
	m.AddConstraints(NewConstraint("bad", nil, Sum(Var{ID: 4}), LessEq, Constant(1)))
	assert.Error(t, m.Validate())
}

func TestValidateRejectsBadBounds(t *testing.T) {
	m := NewModel("t")
	m.AddVar("x", Continuous, 2, 1)
	assert.Error(t, m.Validate())
}

func TestObjectiveValue(t *testing.T) {
	m := NewModel("t")
	x := m.AddVar("x", Continuous, 0, math.Inf(1))
	y := m.AddVar("y", Continuous, 0, math.Inf(1))
	obj := Expr{}
	obj.Add(x, 2).Add(y, 3).AddConst(1)
	m.SetObjective(obj, false)
	assert.Equal(t, 1+2*4+3*5.0, m.ObjectiveValue([]float64{4, 5}))
	assert.False(t, m.Maximize())
}
