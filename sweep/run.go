package sweep

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/tailings/core/formulation"
	"github.com/kilianp07/tailings/core/logger"
	"github.com/kilianp07/tailings/core/solver"
	"github.com/kilianp07/tailings/internal/eventbus"
	infralogger "github.com/kilianp07/tailings/infra/logger"
)

// Outcome is the result of one scenario. Err holds build or solver failures
// of that scenario alone; infeasible and unbounded models are reported
// through Result.Status.
type Outcome struct {
	Scenario    Scenario
	Formulation *formulation.Formulation
	Result      *solver.Result
	Err         error
}

// Progress is published when a scenario finishes.
type Progress struct {
	Index    int
	Total    int
	Scenario string
	Status   solver.Status
	Err      error
	Elapsed  time.Duration
}

type runOptions struct {
	log      logger.Logger
	progress *eventbus.TypedBus[Progress]
}

// RunOption customises Run.
type RunOption func(*runOptions)

// WithLogger routes sweep logs to log.
func WithLogger(log logger.Logger) RunOption {
	return func(o *runOptions) { o.log = log }
}

// WithProgress publishes a Progress event on bus after every scenario.
func WithProgress(bus *eventbus.TypedBus[Progress]) RunOption {
	return func(o *runOptions) { o.progress = bus }
}

// Run builds and solves every scenario with at most parallelism solves in
// flight (unbounded when parallelism <= 0). Outcomes follow the order of
// scenarios. The returned error is only set when ctx ends the sweep early.
func Run(ctx context.Context, base Base, scenarios []Scenario, s solver.Solver, opts solver.Options, parallelism int, ropts ...RunOption) ([]Outcome, error) {
	o := runOptions{log: infralogger.NopLogger{}}
	for _, opt := range ropts {
		opt(&o)
	}
	if err := Validate(scenarios); err != nil {
		return nil, err
	}

	out := make([]Outcome, len(scenarios))
	g, gctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i, sc := range scenarios {
		i, sc := i, sc
		out[i].Scenario = sc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			out[i].Formulation, out[i].Result, out[i].Err = solve(gctx, base, sc, s, opts)
			if err := gctx.Err(); err != nil && out[i].Err != nil {
				return err
			}
			ev := Progress{Index: i, Total: len(scenarios), Scenario: sc.Name, Err: out[i].Err, Elapsed: time.Since(start)}
			if res := out[i].Result; res != nil {
				ev.Status = res.Status
			}
			if out[i].Err != nil {
				o.log.Warnw("scenario failed", map[string]any{"scenario": sc.Name, "error": out[i].Err.Error()})
			} else {
				o.log.Infow("scenario solved", map[string]any{
					"scenario":  sc.Name,
					"status":    ev.Status.String(),
					"objective": out[i].Result.Objective,
				})
			}
			if o.progress != nil {
				o.progress.Publish(ev)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}

func solve(ctx context.Context, base Base, sc Scenario, s solver.Solver, opts solver.Options) (*formulation.Formulation, *solver.Result, error) {
	f, err := sc.Build(base)
	if err != nil {
		return nil, nil, err
	}
	res, err := s.Solve(ctx, f.Model, opts)
	if err != nil {
		return f, nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}
	return f, res, nil
}
