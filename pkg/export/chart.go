package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/tailings/core/formulation"
	"github.com/kilianp07/tailings/core/report"
)

// ChartFile is the name of the sweep cost chart.
const ChartFile = "sweep.html"

// ErrNoCosts is returned when no report carries a cost breakdown.
var ErrNoCosts = errors.New("no report with a solution to chart")

var costOrder = []formulation.CostComponent{
	formulation.CostWater,
	formulation.CostTransport,
	formulation.CostClosure,
	formulation.CostInspection,
}

// WriteCostChart renders one stacked bar per report with a solution, split by
// cost component. Reports without values are left out.
func WriteCostChart(w io.Writer, reports []*report.Report) error {
	var (
		names  []string
		series = make(map[formulation.CostComponent][]opts.BarData, len(costOrder))
	)
	for _, r := range reports {
		if r == nil || r.Costs == nil {
			continue
		}
		name := r.Scenario
		if name == "" {
			name = r.Model
		}
		names = append(names, name)
		for _, c := range costOrder {
			series[c] = append(series[c], opts.BarData{Value: r.Costs[c]})
		}
	}
	if len(names) == 0 {
		return ErrNoCosts
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Cost by scenario", Subtitle: fmt.Sprintf("%d scenarios", len(names))}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Scenario"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Cost"}),
	)
	bar.SetXAxis(names)
	for _, c := range costOrder {
		bar.AddSeries(string(c), series[c], charts.WithBarChartOpts(opts.BarChart{Stack: "cost"}))
	}
	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
