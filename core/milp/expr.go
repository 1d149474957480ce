package milp

import "sort"

// Term is coef * var.
type Term struct {
	Var  Var
	Coef float64
}

// Expr is a linear expression sum(terms) + Const.
type Expr struct {
	Terms []Term
	Const float64
}

// Sum returns the expression v1 + v2 + ...
func Sum(vars ...Var) Expr {
	e := Expr{Terms: make([]Term, 0, len(vars))}
	for _, v := range vars {
		e.Terms = append(e.Terms, Term{Var: v, Coef: 1})
	}
	return e
}

// Constant returns an expression with no variable terms.
func Constant(c float64) Expr {
	return Expr{Const: c}
}

// Add appends coef * v.
func (e *Expr) Add(v Var, coef float64) *Expr {
	e.Terms = append(e.Terms, Term{Var: v, Coef: coef})
	return e
}

// AddConst adds c to the constant part.
func (e *Expr) AddConst(c float64) *Expr {
	e.Const += c
	return e
}

// AddExpr appends scale * o.
func (e *Expr) AddExpr(o Expr, scale float64) *Expr {
	for _, t := range o.Terms {
		e.Terms = append(e.Terms, Term{Var: t.Var, Coef: scale * t.Coef})
	}
	e.Const += scale * o.Const
	return e
}

// Clone returns a deep copy.
func (e Expr) Clone() Expr {
	return Expr{Terms: append([]Term(nil), e.Terms...), Const: e.Const}
}

// Compact merges duplicate variables, drops zero coefficients and orders
// terms by variable id.
func (e Expr) Compact() Expr {
	acc := make(map[int]float64, len(e.Terms))
	for _, t := range e.Terms {
		acc[t.Var.ID] += t.Coef
	}
	out := Expr{Const: e.Const, Terms: make([]Term, 0, len(acc))}
	for id, c := range acc {
		if c != 0 {
			out.Terms = append(out.Terms, Term{Var: Var{ID: id}, Coef: c})
		}
	}
	sort.Slice(out.Terms, func(i, j int) bool { return out.Terms[i].Var.ID < out.Terms[j].Var.ID })
	return out
}

// Eval evaluates the expression at values indexed by variable id.
func (e Expr) Eval(values []float64) float64 {
	sum := e.Const
	for _, t := range e.Terms {
		sum += t.Coef * values[t.Var.ID]
	}
	return sum
}

// Coef returns the coefficient of v after merging duplicates.
func (e Expr) Coef(v Var) float64 {
	var c float64
	for _, t := range e.Terms {
		if t.Var == v {
			c += t.Coef
		}
	}
	return c
}
