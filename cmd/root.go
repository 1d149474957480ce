package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/tailings/app"
	"github.com/kilianp07/tailings/config"
	coremon "github.com/kilianp07/tailings/core/monitoring"
	"github.com/kilianp07/tailings/infra/logger"
	"github.com/kilianp07/tailings/infra/monitoring"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "tailings",
	Short:        "Tailings deposit and water allocation planner",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "configs/tailings.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// withService loads the configuration, builds the service and closes it
// once fn returns. Failures of fn are reported to the configured monitor.
func withService(cmd *cobra.Command, fn func(svc *app.Service, cfg *config.Config) error) (err error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New("main")
	if mon, merr := monitoring.NewSentryMonitor(cfg.Monitoring); merr != nil {
		log.Warnf("error monitoring disabled: %v", merr)
	} else {
		coremon.Init(mon)
	}
	defer coremon.Flush(2 * time.Second)
	defer func() {
		if r := recover(); r != nil {
			coremon.CapturePanic(r)
			panic(r)
		}
	}()
	defer func() {
		coremon.CaptureException(err, map[string]string{"command": cmd.Name(), "model": cfg.Model.Name})
	}()

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			log.Errorf("service close: %v", cerr)
		}
	}()
	return fn(svc, cfg)
}
