package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/tailings/config"
	"github.com/kilianp07/tailings/core/formulation"
	coremetrics "github.com/kilianp07/tailings/core/metrics"
	"github.com/kilianp07/tailings/core/model"
	"github.com/kilianp07/tailings/core/report"
	"github.com/kilianp07/tailings/core/solver"
	_ "github.com/kilianp07/tailings/infra/bnb"
	"github.com/kilianp07/tailings/infra/loader"
	"github.com/kilianp07/tailings/infra/logger"
	_ "github.com/kilianp07/tailings/infra/metrics"
	"github.com/kilianp07/tailings/infra/runlog"
	"github.com/kilianp07/tailings/internal/eventbus"
	"github.com/kilianp07/tailings/pkg/export"
	"github.com/kilianp07/tailings/sweep"
)

// BaseScenario names the unmodified configuration in exports and metrics.
const BaseScenario = "base"

// Service wires configuration, data loading, the solver backend and every
// output of a run.
type Service struct {
	cfg    *config.Config
	solver solver.Solver
	sink   coremetrics.MetricsSink
	store  runlog.Store
	loader *loader.Loader
	log    logger.Logger

	now   func() time.Time
	newID func() string
}

// Option customises New.
type Option func(*Service)

// WithSolver replaces the configured backend.
func WithSolver(s solver.Solver) Option {
	return func(svc *Service) { svc.solver = s }
}

// WithLogger replaces the service logger.
func WithLogger(l logger.Logger) Option {
	return func(svc *Service) { svc.log = l }
}

// New creates a Service from the configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	svc := &Service{
		cfg:   cfg,
		log:   logger.New("service"),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.solver == nil {
		s, err := solver.New(cfg.Solver.Module())
		if err != nil {
			return nil, fmt.Errorf("solver backend: %w", err)
		}
		svc.solver = s
	}
	lopts, err := cfg.Data.LoaderOptions()
	if err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	svc.loader = loader.New(lopts, logger.New("loader"))

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	svc.sink = sink
	store, err := runlog.Open(cfg.Runlog)
	if err != nil {
		return nil, fmt.Errorf("runlog: %w", err)
	}
	svc.store = store
	return svc, nil
}

// Base returns the configured model input. Deposit capacities are read from
// the data file when one is configured.
func (s *Service) Base() (sweep.Base, error) {
	m := s.cfg.Model
	base := sweep.Base{Sets: m.Sets, Raw: m.Params.Clone(), Labels: m.Labels}
	if !s.cfg.Data.Enabled() {
		return base, nil
	}
	d := s.cfg.Data
	mass, err := s.loader.Load(d.Deposits, d.MassColumn, m.Sets.Deposits)
	if err != nil {
		return sweep.Base{}, fmt.Errorf("load deposits: %w", err)
	}
	base.Raw.MassCapacity = loader.Vector(mass, len(mass))
	if d.VolumeColumn != "" {
		vol, err := s.loader.Load(d.Deposits, d.VolumeColumn, m.Sets.Deposits)
		if err != nil {
			return sweep.Base{}, fmt.Errorf("load deposits: %w", err)
		}
		base.Raw.VolumeCapacity = loader.Vector(vol, len(vol))
	}
	return base, nil
}

// Instance validates the base input.
func (s *Service) Instance() (*model.Instance, error) {
	base, err := s.Base()
	if err != nil {
		return nil, err
	}
	inst, err := model.NewInstance(base.Sets, base.Raw, base.Labels)
	if err != nil {
		s.log.Errorf("invalid model input: %v", err)
		return nil, err
	}
	return inst, nil
}

// Build assembles the base model.
func (s *Service) Build(opts ...formulation.Option) (*formulation.Formulation, error) {
	inst, err := s.Instance()
	if err != nil {
		return nil, err
	}
	opts = append([]formulation.Option{formulation.WithName(s.cfg.Model.Name)}, opts...)
	f, err := formulation.Build(inst, opts...)
	if err != nil {
		return nil, err
	}
	s.log.Infow("model built", map[string]any{
		"model":    f.Model.Name,
		"sets":     inst.Sets.String(),
		"vars":     f.Model.NumVars(),
		"rows":     f.Model.NumConstraints(),
		"excluded": f.Excluded,
	})
	return f, nil
}

// ExportModel writes the base model in MPS format.
func (s *Service) ExportModel(w io.Writer, opts ...formulation.Option) error {
	f, err := s.Build(opts...)
	if err != nil {
		return err
	}
	return export.WriteMPS(w, f.Model)
}

// Solve builds and solves the base model and records the outcome. Infeasible
// and unbounded models are not errors: the report carries the status.
func (s *Service) Solve(ctx context.Context, opts ...formulation.Option) (*report.Report, error) {
	f, err := s.Build(opts...)
	if err != nil {
		return nil, err
	}
	res, err := s.solver.Solve(ctx, f.Model, s.cfg.Solver.Options())
	if err != nil {
		return nil, fmt.Errorf("solve %s: %w", f.Model.Name, err)
	}
	return s.record(ctx, BaseScenario, f, res)
}

// Sweep solves every scenario against the base input.
func (s *Service) Sweep(ctx context.Context, scenarios []sweep.Scenario, progress *eventbus.TypedBus[sweep.Progress]) ([]*report.Report, error) {
	base, err := s.Base()
	if err != nil {
		return nil, err
	}
	ropts := []sweep.RunOption{sweep.WithLogger(s.log)}
	if progress != nil {
		ropts = append(ropts, sweep.WithProgress(progress))
	}
	outs, err := sweep.Run(ctx, base, scenarios, s.solver, s.cfg.Solver.Options(), s.cfg.Sweep.Parallelism, ropts...)
	if err != nil {
		return nil, err
	}
	reports := make([]*report.Report, len(outs))
	var errs []error
	for i, o := range outs {
		if o.Err != nil {
			errs = append(errs, o.Err)
			continue
		}
		r, err := s.record(ctx, o.Scenario.Name, o.Formulation, o.Result)
		if err != nil {
			errs = append(errs, err)
		}
		reports[i] = r
	}
	if s.cfg.Export.Has(config.FormatHTML) {
		if err := s.writeChart(reports); err != nil {
			errs = append(errs, err)
		}
	}
	return reports, errors.Join(errs...)
}

func (s *Service) writeChart(reports []*report.Report) error {
	if err := os.MkdirAll(s.cfg.Export.Dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(s.cfg.Export.Dir, export.ChartFile)
	err := writeFile(path, func(w io.Writer) error { return export.WriteCostChart(w, reports) })
	if errors.Is(err, export.ErrNoCosts) {
		_ = os.Remove(path)
		s.log.Warnf("sweep chart skipped: %v", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("export chart: %w", err)
	}
	return nil
}

// record turns a result into a report and fans it out to the exports, the
// run log and the metrics sinks. Output failures are logged and joined into
// the returned error while the report is still returned.
func (s *Service) record(ctx context.Context, scenario string, f *formulation.Formulation, res *solver.Result) (*report.Report, error) {
	r := report.New(s.newID(), f.Instance, f, res)
	r.Scenario = scenario
	now := s.now()

	fields := r.Summary()
	fields["scenario"] = scenario
	s.log.Infow("solve finished", fields)
	for _, v := range r.Violations {
		s.log.Errorf("solution check %s%v failed by %g", v.Family, v.Index, v.Residual)
	}

	var errs []error
	if err := s.export(scenario, f, r); err != nil {
		errs = append(errs, err)
	}
	rec := runlog.Record{
		RunID:     r.RunID,
		Timestamp: now,
		Model:     r.Model,
		Scenario:  scenario,
		Backend:   s.cfg.Solver.Backend,
		Status:    r.Status.String(),
		Objective: r.Objective,
		Gap:       r.Gap,
		Nodes:     r.Nodes,
		Duration:  r.Duration,
	}
	if r.Attribution != nil {
		rec.Families = r.Attribution.Families
	}
	if err := s.store.Append(ctx, rec); err != nil {
		errs = append(errs, fmt.Errorf("runlog append: %w", err))
	}
	if err := s.sink.RecordSolve(coremetrics.SolveEvent{
		RunID:      r.RunID,
		Model:      r.Model,
		Scenario:   scenario,
		Backend:    s.cfg.Solver.Backend,
		Status:     r.Status.String(),
		Objective:  r.Objective,
		BestBound:  r.BestBound,
		Gap:        r.Gap,
		Nodes:      r.Nodes,
		Vars:       f.Model.NumVars(),
		Rows:       f.Model.NumConstraints(),
		Violations: len(r.Violations),
		Duration:   r.Duration,
		Time:       now,
	}); err != nil {
		errs = append(errs, fmt.Errorf("record metrics: %w", err))
	}
	if ar, ok := s.sink.(coremetrics.AttributionRecorder); ok && r.Attribution != nil {
		if err := ar.RecordAttribution(coremetrics.AttributionEvent{
			RunID:    r.RunID,
			Scenario: scenario,
			Families: r.Attribution.Families,
			Time:     now,
		}); err != nil {
			errs = append(errs, fmt.Errorf("record attribution: %w", err))
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		s.log.Warnf("run %s outputs incomplete: %v", r.RunID, err)
	}
	return r, err
}

func (s *Service) export(scenario string, f *formulation.Formulation, r *report.Report) error {
	ec := s.cfg.Export
	if len(ec.Formats) == 0 {
		return nil
	}
	dir := filepath.Join(ec.Dir, scenario)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	switch {
	case ec.Has(config.FormatCSV):
		if _, err := export.WriteTables(dir, r); err != nil {
			return fmt.Errorf("export tables: %w", err)
		}
	case ec.Has(config.FormatJSON):
		if err := writeFile(filepath.Join(dir, export.ReportFile), func(w io.Writer) error {
			return export.WriteReportJSON(w, r)
		}); err != nil {
			return fmt.Errorf("export report: %w", err)
		}
	}
	if ec.Has(config.FormatMPS) {
		if err := writeFile(filepath.Join(dir, "model.mps"), func(w io.Writer) error {
			return export.WriteMPS(w, f.Model)
		}); err != nil {
			return fmt.Errorf("export model: %w", err)
		}
	}
	return nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// Close flushes buffered metrics and closes the run log.
func (s *Service) Close() error {
	var errs []error
	if f, ok := s.sink.(coremetrics.Flusher); ok {
		errs = append(errs, f.Flush())
	}
	errs = append(errs, s.store.Close())
	return errors.Join(errs...)
}

// RunLog exposes the configured store for queries.
func (s *Service) RunLog() runlog.Store { return s.store }
