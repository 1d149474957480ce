// Package monitoring reports run failures to an external error tracker.
// The process-wide monitor defaults to a no-op until Init installs one.
package monitoring

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/kilianp07/tailings/core/model"
	"github.com/kilianp07/tailings/core/solver"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	// CapturePanic reports a value obtained from recover.
	CapturePanic(v any)
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) CapturePanic(any)                          {}
func (NopMonitor) Flush(time.Duration)                       {}

var (
	mu      sync.RWMutex
	current Monitor = NopMonitor{}
)

// Init sets the global monitor implementation. A nil monitor restores the
// no-op default.
func Init(m Monitor) {
	mu.Lock()
	defer mu.Unlock()
	if m == nil {
		m = NopMonitor{}
	}
	current = m
}

func get() Monitor {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// CaptureException records err tagged with Classify(err) merged with tags.
func CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	all := Classify(err)
	for k, v := range tags {
		all[k] = v
	}
	get().CaptureException(err, all)
}

// CapturePanic reports v, the value of a recovered panic.
func CapturePanic(v any) {
	if v != nil {
		get().CapturePanic(v)
	}
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	get().Flush(d)
}

// Error kinds set by Classify.
const (
	KindInfeasible = "infeasible"
	KindUnbounded  = "unbounded"
	KindInput      = "invalid_input"
	KindOther      = "error"
)

// Classify derives searchable tags from the typed errors of the model and
// solver layers.
func Classify(err error) map[string]string {
	tags := map[string]string{"kind": KindOther}
	var (
		inf *solver.InfeasibleModelError
		unb *solver.UnboundedModelError
		dim *model.DimensionError
		val *model.ValueError
	)
	switch {
	case errors.As(err, &inf):
		tags["kind"] = KindInfeasible
		tags["model"] = inf.Model
		if len(inf.Families) > 0 {
			tags["families"] = strings.Join(inf.Families, ",")
		}
	case errors.As(err, &unb):
		tags["kind"] = KindUnbounded
		tags["model"] = unb.Model
	case errors.As(err, &dim):
		tags["kind"] = KindInput
		tags["parameter"] = dim.Parameter
	case errors.As(err, &val):
		tags["kind"] = KindInput
		tags["parameter"] = val.Parameter
	}
	return tags
}
