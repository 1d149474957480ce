package report

import (
	"math"
	"sort"
	"time"

	"github.com/kilianp07/tailings/core/formulation"
	"github.com/kilianp07/tailings/core/milp"
	"github.com/kilianp07/tailings/core/model"
	"github.com/kilianp07/tailings/core/solver"
)

// DefaultTolerance is the relative tolerance of the property checks.
const DefaultTolerance = 1e-6

// zero is the magnitude under which continuous values are omitted from
// tables.
const zero = 1e-9

// Row is one variable assignment.
type Row struct {
	Index  []int    `json:"index"`
	Labels []string `json:"labels"`
	Value  float64  `json:"value"`
}

// Table lists the assignments of one variable family.
type Table struct {
	Variable string   `json:"variable"`
	Columns  []string `json:"columns"`
	Rows     []Row    `json:"rows"`
}

// Report is the outcome of one run.
type Report struct {
	RunID       string                                `json:"run_id"`
	Scenario    string                                `json:"scenario,omitempty"`
	Model       string                                `json:"model"`
	Sets        model.Sets                            `json:"sets"`
	Status      solver.Status                         `json:"status"`
	Objective   float64                               `json:"objective"`
	BestBound   float64                               `json:"best_bound"`
	Gap         float64                               `json:"gap"`
	Nodes       int                                   `json:"nodes"`
	Duration    time.Duration                         `json:"duration"`
	Warnings    []string                              `json:"warnings,omitempty"`
	Excluded    []string                              `json:"excluded_families,omitempty"`
	Costs       map[formulation.CostComponent]float64 `json:"costs,omitempty"`
	Tables      []Table                               `json:"tables,omitempty"`
	Attribution *solver.Attribution                   `json:"attribution,omitempty"`
	Violations  []Violation                           `json:"violations,omitempty"`
}

// New assembles the report of res. Tables, costs and checks are only filled
// when the result carries values.
func New(runID string, inst *model.Instance, f *formulation.Formulation, res *solver.Result) *Report {
	r := &Report{
		RunID:       runID,
		Model:       res.Model,
		Sets:        inst.Sets,
		Status:      res.Status,
		Objective:   res.Objective,
		BestBound:   res.BestBound,
		Gap:         res.Gap,
		Nodes:       res.Nodes,
		Duration:    res.Duration,
		Warnings:    res.Warnings,
		Excluded:    f.Excluded,
		Attribution: res.Attribution,
	}
	if len(res.Values) == 0 {
		return r
	}
	r.Costs = f.Costs().Breakdown(res.Values)
	r.Tables = Tables(inst, f.Vars, res.Values)
	r.Violations = Check(inst, f, res.Values, DefaultTolerance)
	return r
}

// Feasible reports whether the result carries values that passed every
// check.
func (r *Report) Feasible() bool {
	return r.Status.HasSolution() && r.Costs != nil && len(r.Violations) == 0
}

// Summary returns the headline figures as log fields.
func (r *Report) Summary() map[string]any {
	out := map[string]any{
		"run_id": r.RunID,
		"model":  r.Model,
		"status": r.Status.String(),
		"nodes":  r.Nodes,
	}
	if r.Costs != nil {
		out["objective"] = r.Objective
		out["gap"] = r.Gap
		for k, v := range r.Costs {
			out["cost_"+string(k)] = v
		}
		out["violations"] = len(r.Violations)
	}
	if r.Attribution != nil {
		out["conflicting_families"] = r.Attribution.Families
	}
	return out
}

// Table returns the table of the named variable family.
func (r *Report) Table(variable string) (Table, bool) {
	for _, t := range r.Tables {
		if t.Variable == variable {
			return t, true
		}
	}
	return Table{}, false
}

type entry struct {
	index []int
	sets  []string
	v     milp.Var
}

// Tables renders every variable family. Continuous families only list
// non-zero assignments; binary families list every row.
func Tables(inst *model.Instance, vars formulation.Vars, values []float64) []Table {
	var x, z, y, u, w, v []entry
	for k, h := range vars.X {
		x = append(x, entry{[]int{int(k.I), int(k.K), int(k.L), int(k.T)}, flowSets, h})
	}
	for k, h := range vars.Z {
		z = append(z, entry{[]int{int(k.I), int(k.K), int(k.L), int(k.T)}, flowSets, h})
	}
	for k, h := range vars.Y {
		y = append(y, entry{[]int{int(k.I), int(k.J), int(k.T)}, shipSets, h})
	}
	for k, h := range vars.U {
		u = append(u, entry{[]int{int(k.I), int(k.T)}, stockSets, h})
	}
	for j, h := range vars.W {
		w = append(w, entry{[]int{int(j)}, activeSets, h})
	}
	for k, h := range vars.V {
		v = append(v, entry{[]int{int(k.J), int(k.T)}, inspectionSets, h})
	}
	return []Table{
		table(inst, formulation.VarWater, []string{"mine", "route", "mineral", "period"}, x, values, false),
		table(inst, formulation.VarShipment, []string{"mine", "deposit", "period"}, y, values, false),
		table(inst, formulation.VarProcessed, []string{"mine", "route", "mineral", "period"}, z, values, false),
		table(inst, formulation.VarStock, []string{"mine", "period"}, u, values, false),
		table(inst, formulation.VarActive, []string{"deposit"}, w, values, true),
		table(inst, formulation.VarInspection, []string{"deposit", "period"}, v, values, true),
	}
}

var (
	flowSets       = []string{model.SetMines, model.SetRoutes, model.SetMinerals, model.SetPeriods}
	shipSets       = []string{model.SetMines, model.SetDeposits, model.SetPeriods}
	stockSets      = []string{model.SetMines, model.SetPeriods}
	activeSets     = []string{model.SetDeposits}
	inspectionSets = []string{model.SetDeposits, model.SetPeriods}
)

func table(inst *model.Instance, name string, cols []string, entries []entry, values []float64, all bool) Table {
	sort.Slice(entries, func(a, b int) bool { return less(entries[a].index, entries[b].index) })
	t := Table{Variable: name, Columns: cols, Rows: []Row{}}
	for _, e := range entries {
		val := values[e.v.ID]
		if !all && math.Abs(val) <= zero {
			continue
		}
		labels := make([]string, len(e.index))
		for n, idx := range e.index {
			labels[n] = inst.Labels.Name(e.sets[n], idx)
		}
		t.Rows = append(t.Rows, Row{Index: e.index, Labels: labels, Value: val})
	}
	return t
}

func less(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
