package bnb

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/tailings/core/factory"
	"github.com/kilianp07/tailings/core/milp"
	"github.com/kilianp07/tailings/core/solver"
	"github.com/kilianp07/tailings/infra/logger"
)

// Name is the registry key of this backend.
const Name = "bnb"

// WarnNodeLimit is attached to results returned because the node budget ran
// out.
const WarnNodeLimit = "solver node limit reached: best known solution returned"

// Config tunes the numerical tolerances of the backend.
type Config struct {
	// Tolerance is passed to the simplex and used for row feasibility.
	Tolerance float64 `json:"tolerance"`
	// IntegralityTolerance is the distance to the nearest integer under
	// which an integer variable counts as integral.
	IntegralityTolerance float64 `json:"integrality_tolerance"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.Tolerance <= 0 {
		c.Tolerance = 1e-8
	}
	if c.IntegralityTolerance <= 0 {
		c.IntegralityTolerance = 1e-6
	}
}

// Solver is the gonum branch-and-bound backend.
type Solver struct {
	cfg Config
	log logger.Logger
}

var _ solver.Solver = (*Solver)(nil)

// New returns a backend with cfg; zero fields take their defaults.
func New(cfg Config, log logger.Logger) *Solver {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Solver{cfg: cfg, log: log}
}

func init() {
	if err := solver.Register(Name, func(conf map[string]any) (solver.Solver, error) {
		var cfg Config
		if err := factory.Decode(conf, &cfg); err != nil {
			return nil, fmt.Errorf("bnb config: %w", err)
		}
		return New(cfg, logger.New("bnb")), nil
	}); err != nil {
		panic(err)
	}
}

// Solve minimises (or maximises) m. Infeasible and unbounded models are
// reported through the result status. When opts.Attribute is set, an
// infeasible result carries the conflicting constraint families.
func (s *Solver) Solve(ctx context.Context, m *milp.Model, opts solver.Options) (*solver.Result, error) {
	start := time.Now()
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("bnb: invalid model %s: %w", m.Name, err)
	}
	if opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TimeLimit)
		defer cancel()
	}

	p := newProblem(m, s.cfg.Tolerance, s.cfg.IntegralityTolerance)
	res, err := s.search(ctx, p, opts)
	if err != nil {
		return nil, err
	}
	res.Model = m.Name
	if m.Maximize() {
		res.BestBound = -res.BestBound
	}
	if len(res.Values) > 0 {
		res.Objective = m.ObjectiveValue(res.Values)
	}

	if res.Status == solver.StatusInfeasible && opts.Attribute {
		att, err := solver.Attribute(ctx, s, m, opts)
		if err != nil {
			s.log.Warnf("attribution of %s aborted: %v", m.Name, err)
		} else {
			res.Attribution = att
		}
	}
	res.Duration = time.Since(start)

	fields := map[string]any{
		"model":       m.Name,
		"status":      res.Status.String(),
		"nodes":       res.Nodes,
		"duration_ms": res.Duration.Milliseconds(),
	}
	if len(res.Values) > 0 {
		fields["objective"] = res.Objective
		fields["gap"] = res.Gap
	}
	s.log.Infow("solve finished", fields)
	return res, nil
}

func (s *Solver) search(ctx context.Context, p *problem, opts solver.Options) (*solver.Result, error) {
	nodes := 0
	evaluate := func(n *node) (lpStatus, error) {
		nodes++
		x, st, err := p.relax(n.lo, n.hi)
		if err != nil || st != lpOptimal {
			return st, err
		}
		n.x = x
		n.bound = p.objective(x)
		return lpOptimal, nil
	}

	root := &node{lo: p.lo, hi: p.hi}
	st, err := evaluate(root)
	if err != nil {
		return nil, err
	}
	switch st {
	case lpInfeasible:
		return &solver.Result{Status: solver.StatusInfeasible, Nodes: nodes}, nil
	case lpUnbounded:
		return &solver.Result{Status: solver.StatusUnbounded, Nodes: nodes}, nil
	}

	var (
		inc  *node
		open nodeQueue
	)
	// needsBranching records n as incumbent when it is integral.
	needsBranching := func(n *node) bool {
		if p.fractional(n.x) >= 0 {
			return true
		}
		s.polish(p, n)
		n.bound = p.objective(n.x)
		if inc == nil || n.bound < inc.bound {
			inc = n
			s.log.Debugw("new incumbent", map[string]any{"objective": n.bound, "nodes": nodes, "depth": n.depth})
		}
		return false
	}
	pruned := func(n *node) bool {
		return inc != nil && n.bound >= inc.bound-s.pruneMargin(inc.bound, opts.GapTolerance)
	}

	if needsBranching(root) {
		heap.Push(&open, root)
	}
	for open.Len() > 0 {
		if inc != nil && relGap(inc.bound, open[0].bound) <= opts.GapTolerance {
			break
		}
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return s.limited(p, inc, open, nodes, solver.WarnTimeLimit), nil
			}
			return nil, err
		}
		if opts.MaxNodes > 0 && nodes >= opts.MaxNodes {
			return s.limited(p, inc, open, nodes, WarnNodeLimit), nil
		}

		n := heap.Pop(&open).(*node)
		if pruned(n) {
			continue
		}
		j := p.fractional(n.x)
		down, up := n.child(), n.child()
		down.hi[j] = math.Floor(n.x[j])
		up.lo[j] = math.Ceil(n.x[j])
		for _, c := range []*node{down, up} {
			st, err := evaluate(c)
			if err != nil {
				return nil, err
			}
			switch st {
			case lpInfeasible:
				continue
			case lpUnbounded:
				return &solver.Result{Status: solver.StatusUnbounded, Nodes: nodes}, nil
			}
			if pruned(c) {
				continue
			}
			if needsBranching(c) {
				heap.Push(&open, c)
			}
		}
	}

	if inc == nil {
		return &solver.Result{Status: solver.StatusInfeasible, Nodes: nodes}, nil
	}
	bound := inc.bound
	if open.Len() > 0 && open[0].bound < bound {
		bound = open[0].bound
	}
	return &solver.Result{
		Status:    solver.StatusOptimal,
		BestBound: bound,
		Gap:       relGap(inc.bound, bound),
		Values:    inc.x,
		Nodes:     nodes,
	}, nil
}

// polish rounds the integer variables of an integral node and re-solves the
// relaxation with them fixed, so the continuous values match the rounded
// ones. The rounded point is kept when the re-solve fails.
func (s *Solver) polish(p *problem, n *node) {
	lo := append([]float64(nil), n.lo...)
	hi := append([]float64(nil), n.hi...)
	for j, isInt := range p.integral {
		if isInt {
			n.x[j] = math.Round(n.x[j])
			lo[j], hi[j] = n.x[j], n.x[j]
		}
	}
	x, st, err := p.relax(lo, hi)
	if err != nil || st != lpOptimal {
		s.log.Debugw("incumbent polish skipped", map[string]any{"status": int(st), "error": fmt.Sprint(err)})
		return
	}
	n.x = x
}

// limited builds the result of a search stopped by a time or node budget.
func (s *Solver) limited(p *problem, inc *node, open nodeQueue, nodes int, warning string) *solver.Result {
	res := &solver.Result{Status: solver.StatusTimeLimit, Nodes: nodes, Warnings: []string{warning}}
	if open.Len() > 0 {
		res.BestBound = open[0].bound
	}
	if inc != nil {
		if open.Len() == 0 || inc.bound < res.BestBound {
			res.BestBound = inc.bound
		}
		res.Values = inc.x
		res.Gap = relGap(inc.bound, res.BestBound)
	}
	s.log.Warnw(warning, map[string]any{"nodes": nodes, "incumbent": inc != nil, "vars": p.n})
	return res
}

func (s *Solver) pruneMargin(incumbent, gapTol float64) float64 {
	return gapTol*math.Max(1, math.Abs(incumbent)) + s.cfg.Tolerance
}

// relGap is the optimality gap relative to max(1, |incumbent|).
func relGap(incumbent, bound float64) float64 {
	return math.Max(0, incumbent-bound) / math.Max(1, math.Abs(incumbent))
}
