package bnb

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/tailings/core/milp"
)

// simplex points to the LP routine. It can be overridden in tests to
// simulate numerical failures.
var simplex = lp.Simplex

type lpStatus int

const (
	lpOptimal lpStatus = iota
	lpInfeasible
	lpUnbounded
)

type row struct {
	idx   []int
	coef  []float64
	sense milp.Sense
	rhs   float64
}

// problem is the model flattened into minimisation form.
type problem struct {
	n        int
	cost     []float64
	constant float64
	rows     []row
	integral []bool
	lo, hi   []float64
	tol      float64
	intTol   float64
}

func newProblem(m *milp.Model, tol, intTol float64) *problem {
	defs := m.Vars()
	p := &problem{
		n:        len(defs),
		cost:     make([]float64, len(defs)),
		integral: make([]bool, len(defs)),
		lo:       make([]float64, len(defs)),
		hi:       make([]float64, len(defs)),
		tol:      tol,
		intTol:   intTol,
	}
	sign := 1.0
	if m.Maximize() {
		sign = -1
	}
	obj := m.Objective()
	for _, t := range obj.Terms {
		p.cost[t.Var.ID] += sign * t.Coef
	}
	p.constant = sign * obj.Const

	for j, d := range defs {
		p.lo[j], p.hi[j] = d.Lower, d.Upper
		if d.Integral() {
			p.integral[j] = true
			p.lo[j] = math.Ceil(d.Lower - intTol)
			if !math.IsInf(d.Upper, 1) {
				p.hi[j] = math.Floor(d.Upper + intTol)
			}
		}
	}
	for _, c := range m.Constraints() {
		e := c.Expr.Compact()
		r := row{sense: c.Sense, rhs: c.RHS - e.Const}
		for _, t := range e.Terms {
			r.idx = append(r.idx, t.Var.ID)
			r.coef = append(r.coef, t.Coef)
		}
		p.rows = append(p.rows, r)
	}
	return p
}

func (p *problem) objective(x []float64) float64 {
	v := p.constant
	for j, c := range p.cost {
		v += c * x[j]
	}
	return v
}

// fractional returns the integer variable farthest from an integer value, or
// -1 when x is integral.
func (p *problem) fractional(x []float64) int {
	best, worst := -1, p.intTol
	for j, isInt := range p.integral {
		if !isInt {
			continue
		}
		f := x[j] - math.Floor(x[j])
		if d := math.Min(f, 1-f); d > worst {
			best, worst = j, d
		}
	}
	return best
}

func satisfied(activity float64, sense milp.Sense, rhs, tol float64) bool {
	switch sense {
	case milp.LessEq:
		return activity <= rhs+tol
	case milp.GreaterEq:
		return activity >= rhs-tol
	default:
		return math.Abs(activity-rhs) <= tol
	}
}

// relax solves the LP relaxation of p restricted to lo <= x <= hi.
//
// The relaxation is brought to the standard form min c'x, Ax = b, x >= 0
// expected by lp.Simplex: variables are shifted by their lower bound, fixed
// variables leave the matrix, finite upper bounds become rows, equality rows
// are split into a <= and >= pair, every row receives a slack column and rows
// with a negative right-hand side are negated. With one slack per row A has
// full row rank, which the phase-one basis search of lp.Simplex requires.
// Each row is divided by its largest coefficient. Empty rows are checked and dropped, and columns that appear in no
// row are fixed at their lower bound unless their cost makes the relaxation
// unbounded.
func (p *problem) relax(lo, hi []float64) ([]float64, lpStatus, error) {
	col := make([]int, p.n)
	var cols []int
	for j := 0; j < p.n; j++ {
		switch w := hi[j] - lo[j]; {
		case w < -p.tol:
			return nil, lpInfeasible, nil
		case w <= p.tol:
			col[j] = -1
		default:
			col[j] = len(cols)
			cols = append(cols, j)
		}
	}

	var rows []row
	for _, r := range p.rows {
		lr := row{sense: r.sense, rhs: r.rhs}
		for t, j := range r.idx {
			lr.rhs -= r.coef[t] * lo[j]
			if col[j] >= 0 {
				lr.idx = append(lr.idx, col[j])
				lr.coef = append(lr.coef, r.coef[t])
			}
		}
		if len(lr.idx) == 0 {
			if !satisfied(0, lr.sense, lr.rhs, p.tol) {
				return nil, lpInfeasible, nil
			}
			continue
		}
		if lr.sense == milp.Equal {
			le, ge := lr, lr
			le.sense, ge.sense = milp.LessEq, milp.GreaterEq
			rows = append(rows, le, ge)
			continue
		}
		rows = append(rows, lr)
	}
	for c, j := range cols {
		if !math.IsInf(hi[j], 1) {
			rows = append(rows, row{idx: []int{c}, coef: []float64{1}, sense: milp.LessEq, rhs: hi[j] - lo[j]})
		}
	}

	used := make([]bool, len(cols))
	for _, r := range rows {
		for _, c := range r.idx {
			used[c] = true
		}
	}
	slacks := len(rows)
	lpCol := make([]int, len(cols))
	width := 0
	for c, j := range cols {
		if used[c] {
			lpCol[c] = width
			width++
			continue
		}
		if p.cost[j] < 0 {
			return nil, lpUnbounded, nil
		}
		lpCol[c] = -1
	}

	x := append([]float64(nil), lo...)
	if len(rows) == 0 {
		return x, lpOptimal, nil
	}
	c := make([]float64, width+slacks)
	for k, j := range cols {
		if lpCol[k] >= 0 {
			c[lpCol[k]] = p.cost[j]
		}
	}
	A := mat.NewDense(len(rows), width+slacks, nil)
	b := make([]float64, len(rows))
	slack := width
	for i, r := range rows {
		sign := 1.0
		if r.rhs < 0 {
			sign = -1
		}
		scale := rowScale(r.coef)
		for t, k := range r.idx {
			A.Set(i, lpCol[k], A.At(i, lpCol[k])+sign*r.coef[t]/scale)
		}
		if r.sense == milp.LessEq {
			A.Set(i, slack, sign)
		} else {
			A.Set(i, slack, -sign)
		}
		slack++
		b[i] = sign * r.rhs / scale
	}

	_, xs, err := simplex(c, A, b, p.tol, nil)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return nil, lpInfeasible, nil
	case errors.Is(err, lp.ErrUnbounded):
		return nil, lpUnbounded, nil
	case err != nil:
		return nil, lpOptimal, fmt.Errorf("bnb: simplex: %w", err)
	}
	for k, j := range cols {
		if i := lpCol[k]; i >= 0 {
			x[j] += math.Max(xs[i], 0)
		}
	}
	return x, lpOptimal, nil
}

// rowScale is the largest coefficient magnitude of a row. Dividing by it
// keeps capacity rows such as y - P*w <= 0 on the same scale as unit rows.
func rowScale(coef []float64) float64 {
	m := 0.0
	for _, c := range coef {
		m = math.Max(m, math.Abs(c))
	}
	if m == 0 {
		return 1
	}
	return m
}
