package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/tailings/core/metrics"
	"github.com/kilianp07/tailings/core/solver"
)

// PromSink records solve outcomes in Prometheus metrics.
type PromSink struct {
	solves    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	objective *prometheus.GaugeVec
	gap       *prometheus.GaugeVec
	nodes     *prometheus.GaugeVec
	conflicts *prometheus.CounterVec

	gatherer prometheus.Gatherer
	textfile string
}

// NewPromSink registers solve metrics on the default Prometheus registerer.
func NewPromSink(textfile string) (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer, textfile)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer. A
// nil registerer defaults to the global one. When textfile is set, Flush
// writes every metric gathered from the registry to that file in the
// node-exporter textfile format.
func NewPromSinkWithRegistry(reg prometheus.Registerer, textfile string) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tailings_solves_total",
			Help: "Total number of solves by outcome",
		}, []string{"status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tailings_solve_duration_seconds",
			Help:    "Wall time of a solve",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"status"}),
		objective: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tailings_objective_cost",
			Help: "Objective value of the last solution per scenario",
		}, []string{"scenario"}),
		gap: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tailings_optimality_gap",
			Help: "Relative optimality gap of the last solution per scenario",
		}, []string{"scenario"}),
		nodes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tailings_search_nodes",
			Help: "Branch-and-bound nodes of the last solve per scenario",
		}, []string{"scenario"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tailings_infeasibility_conflicts_total",
			Help: "Times a constraint family was part of an infeasibility attribution",
		}, []string{"family"}),
		textfile: textfile,
	}
	var err error
	if s.solves, err = register(reg, s.solves); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	if s.objective, err = register(reg, s.objective); err != nil {
		return nil, err
	}
	if s.gap, err = register(reg, s.gap); err != nil {
		return nil, err
	}
	if s.nodes, err = register(reg, s.nodes); err != nil {
		return nil, err
	}
	if s.conflicts, err = register(reg, s.conflicts); err != nil {
		return nil, err
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		s.gatherer = g
	} else {
		s.gatherer = prometheus.DefaultGatherer
	}
	return s, nil
}

// register reuses an already registered collector of the same name.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func scenarioLabel(ev coremetrics.SolveEvent) string {
	if ev.Scenario == "" {
		return "base"
	}
	return ev.Scenario
}

// RecordSolve counts the outcome and updates the per-scenario gauges. The
// gauges only move when the solve produced a solution.
func (s *PromSink) RecordSolve(ev coremetrics.SolveEvent) error {
	s.solves.WithLabelValues(ev.Status).Inc()
	s.duration.WithLabelValues(ev.Status).Observe(ev.Duration.Seconds())
	if ev.Status == solver.StatusOptimal.String() || ev.Status == solver.StatusTimeLimit.String() {
		sc := scenarioLabel(ev)
		s.objective.WithLabelValues(sc).Set(ev.Objective)
		s.gap.WithLabelValues(sc).Set(ev.Gap)
		s.nodes.WithLabelValues(sc).Set(float64(ev.Nodes))
	}
	return nil
}

// RecordAttribution increments the conflict counter of every blamed family.
func (s *PromSink) RecordAttribution(ev coremetrics.AttributionEvent) error {
	for _, f := range ev.Families {
		s.conflicts.WithLabelValues(f).Inc()
	}
	return nil
}

// Flush writes the textfile when one is configured.
func (s *PromSink) Flush() error {
	if s.textfile == "" {
		return nil
	}
	return prometheus.WriteToTextfile(s.textfile, s.gatherer)
}
