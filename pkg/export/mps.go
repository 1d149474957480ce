package export

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/kilianp07/tailings/core/milp"
)

const objectiveRow = "COST"

type entry struct {
	row  string
	coef float64
}

// WriteMPS writes m in free MPS format. Row names are the constraint names
// (family[index]) and column names the variable names; neither contains
// spaces. Integer columns are wrapped in INTORG/INTEND markers and binaries
// receive BV bounds.
func WriteMPS(w io.Writer, m *milp.Model) error {
	bw := bufio.NewWriter(w)
	vars := m.Vars()
	rows := m.Constraints()

	columns := make([][]entry, len(vars))
	obj := m.Objective()
	for _, t := range obj.Terms {
		columns[t.Var.ID] = append(columns[t.Var.ID], entry{objectiveRow, t.Coef})
	}
	for _, c := range rows {
		name := c.Name()
		for _, t := range c.Expr.Compact().Terms {
			columns[t.Var.ID] = append(columns[t.Var.ID], entry{name, t.Coef})
		}
	}

	fmt.Fprintf(bw, "NAME          %s\n", m.Name)
	if m.Maximize() {
		fmt.Fprintf(bw, "OBJSENSE\n    MAX\n")
	}
	fmt.Fprintf(bw, "ROWS\n N  %s\n", objectiveRow)
	for _, c := range rows {
		fmt.Fprintf(bw, " %s  %s\n", senseCode(c.Sense), c.Name())
	}

	fmt.Fprintln(bw, "COLUMNS")
	inInt := false
	markers := 0
	for id, d := range vars {
		if d.Integral() != inInt {
			tag := "INTORG"
			if inInt {
				tag = "INTEND"
			}
			fmt.Fprintf(bw, "    MARKER%-4d 'MARKER' '%s'\n", markers, tag)
			markers++
			inInt = !inInt
		}
		if len(columns[id]) == 0 {
			fmt.Fprintf(bw, "    %-16s %-24s %s\n", d.Name, objectiveRow, num(0))
			continue
		}
		for _, e := range columns[id] {
			fmt.Fprintf(bw, "    %-16s %-24s %s\n", d.Name, e.row, num(e.coef))
		}
	}
	if inInt {
		fmt.Fprintf(bw, "    MARKER%-4d 'MARKER' 'INTEND'\n", markers)
	}

	fmt.Fprintln(bw, "RHS")
	if obj.Const != 0 {
		fmt.Fprintf(bw, "    RHS %-24s %s\n", objectiveRow, num(-obj.Const))
	}
	for _, c := range rows {
		if c.RHS != 0 {
			fmt.Fprintf(bw, "    RHS %-24s %s\n", c.Name(), num(c.RHS))
		}
	}

	fmt.Fprintln(bw, "BOUNDS")
	for _, d := range vars {
		switch {
		case d.Kind == milp.Binary:
			fmt.Fprintf(bw, " BV BND %s\n", d.Name)
		default:
			if d.Lower != 0 {
				fmt.Fprintf(bw, " LO BND %-16s %s\n", d.Name, num(d.Lower))
			}
			switch {
			case !math.IsInf(d.Upper, 1):
				fmt.Fprintf(bw, " UP BND %-16s %s\n", d.Name, num(d.Upper))
			case d.Kind == milp.Integer:
				fmt.Fprintf(bw, " PL BND %s\n", d.Name)
			}
		}
	}
	fmt.Fprintln(bw, "ENDATA")
	return bw.Flush()
}

func senseCode(s milp.Sense) string {
	switch s {
	case milp.LessEq:
		return "L"
	case milp.GreaterEq:
		return "G"
	default:
		return "E"
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
