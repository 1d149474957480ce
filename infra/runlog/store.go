// Package runlog persists one record per solve so runs can be compared
// after the fact.
package runlog

import (
	"context"
	"time"
)

// Record summarises one solve.
type Record struct {
	RunID     string        `json:"run_id"`
	Timestamp time.Time     `json:"timestamp"`
	Model     string        `json:"model"`
	Scenario  string        `json:"scenario,omitempty"`
	Backend   string        `json:"backend"`
	Status    string        `json:"status"`
	Objective float64       `json:"objective"`
	Gap       float64       `json:"gap"`
	Nodes     int           `json:"nodes"`
	Duration  time.Duration `json:"duration"`
	// Families blamed by the infeasibility attribution, if any.
	Families []string `json:"families,omitempty"`
}

// Query filters records. Zero values match everything.
type Query struct {
	Start  time.Time
	End    time.Time
	Status string
}

func (q Query) match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	return q.Status == "" || r.Status == q.Status
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
