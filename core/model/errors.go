package model

import "fmt"

// DimensionError reports a parameter whose length does not match the
// cardinality of the set it is indexed over.
type DimensionError struct {
	Parameter string
	Set       string
	Expected  int
	Actual    int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("parameter %s: indexed over set %s of size %d, got %d values",
		e.Parameter, e.Set, e.Expected, e.Actual)
}

// ValueError reports a parameter value outside its admissible range.
type ValueError struct {
	Parameter string
	Index     []int
	Value     float64
	Reason    string
}

func (e *ValueError) Error() string {
	if len(e.Index) == 0 {
		return fmt.Sprintf("parameter %s=%g: %s", e.Parameter, e.Value, e.Reason)
	}
	return fmt.Sprintf("parameter %s%v=%g: %s", e.Parameter, e.Index, e.Value, e.Reason)
}
