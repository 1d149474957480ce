package model

import "fmt"

// DefaultPeriods is the monthly planning horizon.
const DefaultPeriods = 12

// Mine, Deposit, Route, Mineral and Period are 1-based set indices.
type (
	Mine    int
	Deposit int
	Route   int
	Mineral int
	Period  int
)

// RouteMineral keys parameters indexed by processing route and mineral.
type RouteMineral struct {
	K Route
	L Mineral
}

// MineDeposit keys parameters indexed by mine and deposit.
type MineDeposit struct {
	I Mine
	J Deposit
}

// MineralPeriod keys parameters indexed by mineral and period.
type MineralPeriod struct {
	L Mineral
	T Period
}

// Set names used in dimension diagnostics.
const (
	SetMines    = "I"
	SetDeposits = "J"
	SetRoutes   = "K"
	SetMinerals = "L"
	SetPeriods  = "T"
)

// Sets holds the cardinality of every index set.
type Sets struct {
	Mines    int `json:"mines"`
	Deposits int `json:"deposits"`
	Routes   int `json:"routes"`
	Minerals int `json:"minerals"`
	Periods  int `json:"periods"`
}

// Size returns the cardinality of the named set.
func (s Sets) Size(name string) int {
	switch name {
	case SetMines:
		return s.Mines
	case SetDeposits:
		return s.Deposits
	case SetRoutes:
		return s.Routes
	case SetMinerals:
		return s.Minerals
	case SetPeriods:
		return s.Periods
	}
	return 0
}

// Check rejects empty sets.
func (s Sets) Check() error {
	for _, name := range []string{SetMines, SetDeposits, SetRoutes, SetMinerals, SetPeriods} {
		if s.Size(name) < 1 {
			return &ValueError{Parameter: name, Value: float64(s.Size(name)), Reason: "set must contain at least one element"}
		}
	}
	return nil
}

func (s Sets) String() string {
	return fmt.Sprintf("I=%d J=%d K=%d L=%d T=%d", s.Mines, s.Deposits, s.Routes, s.Minerals, s.Periods)
}

// MineIDs returns 1..I.
func (s Sets) MineIDs() []Mine {
	out := make([]Mine, s.Mines)
	for i := range out {
		out[i] = Mine(i + 1)
	}
	return out
}

// DepositIDs returns 1..J.
func (s Sets) DepositIDs() []Deposit {
	out := make([]Deposit, s.Deposits)
	for i := range out {
		out[i] = Deposit(i + 1)
	}
	return out
}

// RouteIDs returns 1..K.
func (s Sets) RouteIDs() []Route {
	out := make([]Route, s.Routes)
	for i := range out {
		out[i] = Route(i + 1)
	}
	return out
}

// MineralIDs returns 1..L.
func (s Sets) MineralIDs() []Mineral {
	out := make([]Mineral, s.Minerals)
	for i := range out {
		out[i] = Mineral(i + 1)
	}
	return out
}

// PeriodIDs returns 1..T.
func (s Sets) PeriodIDs() []Period {
	out := make([]Period, s.Periods)
	for i := range out {
		out[i] = Period(i + 1)
	}
	return out
}
