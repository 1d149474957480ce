package metrics

import "time"

// SolveEvent describes one finished solve.
type SolveEvent struct {
	RunID      string
	Model      string
	Scenario   string
	Backend    string
	Status     string
	Objective  float64
	BestBound  float64
	Gap        float64
	Nodes      int
	Vars       int
	Rows       int
	Violations int
	Duration   time.Duration
	Time       time.Time
}

// MetricsSink records solve outcomes for observability purposes.
type MetricsSink interface {
	RecordSolve(ev SolveEvent) error
}

// AttributionEvent lists the families blamed for an infeasible model.
type AttributionEvent struct {
	RunID    string
	Scenario string
	Families []string
	Time     time.Time
}

// AttributionRecorder records infeasibility attributions.
type AttributionRecorder interface {
	RecordAttribution(ev AttributionEvent) error
}

// Flusher is implemented by sinks that buffer and must be flushed before the
// process exits.
type Flusher interface {
	Flush() error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) RecordSolve(SolveEvent) error             { return nil }
func (NopSink) RecordAttribution(AttributionEvent) error { return nil }
func (NopSink) Flush() error                             { return nil }
