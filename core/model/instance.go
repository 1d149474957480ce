package model

import (
	"fmt"
	"strconv"
)

// Labels optionally names the elements of each set for reports.
type Labels struct {
	Mines    []string `json:"mines"`
	Deposits []string `json:"deposits"`
	Routes   []string `json:"routes"`
	Minerals []string `json:"minerals"`
}

// Check verifies that every non-empty label list matches its set.
func (l Labels) Check(sets Sets) error {
	for _, c := range []struct {
		set    string
		labels []string
	}{
		{SetMines, l.Mines},
		{SetDeposits, l.Deposits},
		{SetRoutes, l.Routes},
		{SetMinerals, l.Minerals},
	} {
		if len(c.labels) > 0 && len(c.labels) != sets.Size(c.set) {
			return &DimensionError{Parameter: "labels." + c.set, Set: c.set, Expected: sets.Size(c.set), Actual: len(c.labels)}
		}
	}
	return nil
}

// Name returns the label of element idx (1-based) of set, falling back to
// the set letter and index.
func (l Labels) Name(set string, idx int) string {
	var labels []string
	switch set {
	case SetMines:
		labels = l.Mines
	case SetDeposits:
		labels = l.Deposits
	case SetRoutes:
		labels = l.Routes
	case SetMinerals:
		labels = l.Minerals
	}
	if idx >= 1 && idx <= len(labels) {
		return labels[idx-1]
	}
	return set + strconv.Itoa(idx)
}

// Instance bundles everything the formulation consumes. It is immutable
// after NewInstance returns.
type Instance struct {
	Sets   Sets
	Params *Parameters
	Labels Labels
}

// NewInstance validates sets, parameters and labels and returns the
// immutable model input.
func NewInstance(sets Sets, raw RawParameters, labels Labels) (*Instance, error) {
	params, err := NewParameters(sets, raw)
	if err != nil {
		return nil, fmt.Errorf("parameters: %w", err)
	}
	if err := labels.Check(sets); err != nil {
		return nil, fmt.Errorf("labels: %w", err)
	}
	return &Instance{Sets: sets, Params: params, Labels: labels}, nil
}
