package solver

import "fmt"

// Status is the outcome of a solve.
type Status int

const (
	StatusError Status = iota
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
	StatusTimeLimit
)

var statusNames = map[Status]string{
	StatusError:      "error",
	StatusOptimal:    "optimal",
	StatusInfeasible: "infeasible",
	StatusUnbounded:  "unbounded",
	StatusTimeLimit:  "time_limit",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText renders the status name in reports.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name.
func (s *Status) UnmarshalText(b []byte) error {
	for k, v := range statusNames {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", string(b))
}

// HasSolution reports whether a result of this status carries values.
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusTimeLimit
}
