package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/tailings/app"
	"github.com/kilianp07/tailings/config"
	"github.com/kilianp07/tailings/infra/logger"
	"github.com/kilianp07/tailings/infra/metrics"
	"github.com/kilianp07/tailings/internal/eventbus"
	"github.com/kilianp07/tailings/sweep"
)

var (
	scenarioPath string
	parallelism  int
	metricsAddr  string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Solve every scenario of a scenario file",
	RunE:  runSweep,
}

func init() {
	sweepCmd.Flags().StringVarP(&scenarioPath, "scenarios", "s", "", "scenario file (defaults to sweep.scenarios)")
	sweepCmd.Flags().IntVarP(&parallelism, "parallel", "p", 0, "concurrent solves (defaults to sweep.parallelism)")
	sweepCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while the sweep runs")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withService(cmd, func(svc *app.Service, cfg *config.Config) error {
		path := scenarioPath
		if path == "" {
			path = cfg.Sweep.Scenarios
		}
		if path == "" {
			return errors.New("no scenario file: pass --scenarios or set sweep.scenarios")
		}
		if parallelism > 0 {
			cfg.Sweep.Parallelism = parallelism
		}
		scenarios, err := sweep.Load(path)
		if err != nil {
			return err
		}

		log := logger.New("sweep")
		if metricsAddr != "" {
			srvCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			go func() {
				if err := metrics.Serve(srvCtx, metricsAddr); err != nil {
					log.Errorf("metrics server: %v", err)
				}
			}()
		}

		bus := eventbus.NewTypedSize[sweep.Progress](len(scenarios))
		progress := bus.Subscribe()
		done := make(chan struct{})
		go func() {
			defer close(done)
			for ev := range progress {
				log.Infof("scenario %d/%d %s finished: %s", ev.Index+1, ev.Total, ev.Scenario, ev.Status)
			}
		}()
		reports, err := svc.Sweep(ctx, scenarios, bus)
		bus.Close()
		<-done

		w := cmd.OutOrStdout()
		for _, r := range reports {
			if r != nil {
				printReport(w, r)
			}
		}
		if err != nil {
			return fmt.Errorf("sweep: %w", err)
		}
		return nil
	})
}
