package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/tailings/app"
	"github.com/kilianp07/tailings/config"
	"github.com/kilianp07/tailings/core/formulation"
	"github.com/kilianp07/tailings/core/report"
	"github.com/kilianp07/tailings/core/solver"
)

var excludeFamilies []string

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Build and solve the configured model",
	RunE:  runSolve,
}

func init() {
	solveCmd.Flags().StringSliceVar(&excludeFamilies, "exclude", nil, "constraint families to leave out")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withService(cmd, func(svc *app.Service, _ *config.Config) error {
		r, err := svc.Solve(ctx, formulation.WithoutFamilies(excludeFamilies...))
		if r != nil {
			printReport(cmd.OutOrStdout(), r)
		}
		if err != nil {
			return err
		}
		return outcome(r)
	})
}

// outcome turns an unusable report into the exit error.
func outcome(r *report.Report) error {
	switch r.Status {
	case solver.StatusInfeasible:
		e := &solver.InfeasibleModelError{Model: r.Model}
		if r.Attribution != nil {
			e.Families = r.Attribution.Families
			e.Constraints = r.Attribution.Constraints
		}
		return e
	case solver.StatusUnbounded:
		return &solver.UnboundedModelError{Model: r.Model}
	case solver.StatusTimeLimit:
		if r.Costs == nil {
			return fmt.Errorf("model %s: time limit reached without a feasible solution", r.Model)
		}
	}
	if n := len(r.Violations); n > 0 {
		return fmt.Errorf("model %s: solution violates %d checks", r.Model, n)
	}
	return nil
}

func printReport(w io.Writer, r *report.Report) {
	name := r.Scenario
	if name == "" {
		name = r.Model
	}
	fmt.Fprintf(w, "%s: %s", name, r.Status)
	if r.Costs != nil {
		fmt.Fprintf(w, " objective=%.6g gap=%.3g nodes=%d", r.Objective, r.Gap, r.Nodes)
	}
	fmt.Fprintln(w)
	comps := make([]string, 0, len(r.Costs))
	for c := range r.Costs {
		comps = append(comps, string(c))
	}
	sort.Strings(comps)
	for _, c := range comps {
		fmt.Fprintf(w, "  %-12s %.6g\n", c, r.Costs[formulation.CostComponent(c)])
	}
	if r.Attribution != nil {
		fmt.Fprintf(w, "  conflicting families: %v\n", r.Attribution.Families)
		if len(r.Attribution.Constraints) > 0 {
			fmt.Fprintf(w, "  irreducible rows: %v\n", r.Attribution.Constraints)
		}
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
}
