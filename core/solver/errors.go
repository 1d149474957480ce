package solver

import (
	"fmt"
	"strings"
)

// WarnTimeLimit is attached to results returned because the time budget ran
// out; the values are the best incumbent known at that point.
const WarnTimeLimit = "solver time limit reached: best known solution returned"

// InfeasibleModelError describes a model without feasible solution together
// with the constraint families (and, when computed, the individual rows) that
// conflict.
type InfeasibleModelError struct {
	Model       string
	Families    []string
	Constraints []string
}

func (e *InfeasibleModelError) Error() string {
	msg := fmt.Sprintf("model %s is infeasible", e.Model)
	if len(e.Families) > 0 {
		msg += ": conflicting families " + strings.Join(e.Families, ", ")
	}
	if len(e.Constraints) > 0 {
		msg += "; irreducible subsystem " + strings.Join(e.Constraints, ", ")
	}
	return msg
}

// UnboundedModelError describes a model whose objective can decrease
// without limit.
type UnboundedModelError struct {
	Model string
}

func (e *UnboundedModelError) Error() string {
	return fmt.Sprintf("model %s is unbounded", e.Model)
}
