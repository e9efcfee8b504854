package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opentransit/crewd/app"
	"github.com/opentransit/crewd/config"
	"github.com/opentransit/crewd/core/model"
	"github.com/opentransit/crewd/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "crewd",
	Short: "Bus crew scheduling service",
	Long: `crewd builds duty rosters for bus shift tables and pushes the
assignments to driver terminals over MQTT.

Run without a subcommand to start the scheduling service.`,
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "path to the configuration file")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("shutdown: %v", err)
		}
	}()
	return svc.Run(ctx)
}

// loadRules reads the labor rules from the configuration file when one
// exists and falls back to the defaults otherwise. Offline commands must
// stay usable without a service configuration.
func loadRules() (model.Rules, error) {
	if _, err := os.Stat(cfgPath); err != nil {
		return model.DefaultRules(), nil
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return model.Rules{}, err
	}
	return cfg.Rules, nil
}
