package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/tailings/app"
	"github.com/kilianp07/tailings/config"
	"github.com/kilianp07/tailings/infra/runlog"
)

var (
	runsSince  time.Duration
	runsStatus string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past solves from the run log",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(cmd, func(svc *app.Service, _ *config.Config) error {
			q := runlog.Query{Status: runsStatus}
			if runsSince > 0 {
				q.Start = time.Now().Add(-runsSince)
			}
			recs, err := svc.RunLog().Query(context.Background(), q)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tRUN\tSCENARIO\tSTATUS\tOBJECTIVE\tGAP\tNODES\tDURATION")
			for _, r := range recs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.6g\t%.3g\t%d\t%s\n",
					r.Timestamp.Format(time.RFC3339), r.RunID, r.Scenario, r.Status,
					r.Objective, r.Gap, r.Nodes, r.Duration.Round(time.Millisecond))
			}
			return tw.Flush()
		})
	},
}

func init() {
	runsCmd.Flags().DurationVar(&runsSince, "since", 0, "only runs newer than this")
	runsCmd.Flags().StringVar(&runsStatus, "status", "", "only runs with this status")
	rootCmd.AddCommand(runsCmd)
}
