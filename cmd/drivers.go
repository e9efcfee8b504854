package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/opentransit/crewd/config"
	"github.com/opentransit/crewd/infra/mqtt"
)

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "Inspect the driver terminal fleet",
}

var driversLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the driver terminals answering discovery",
	RunE:  runDriversLs,
}

func init() {
	driversCmd.AddCommand(driversLsCmd)
	rootCmd.AddCommand(driversCmd)
}

func runDriversLs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	mqttCfg := cfg.MQTT
	// A distinct client id keeps the listing from kicking a running service
	// off the broker.
	if mqttCfg.ClientID != "" {
		mqttCfg.ClientID = fmt.Sprintf("%s-ls-%d", mqttCfg.ClientID, time.Now().UnixNano())
	} else {
		mqttCfg.ClientID = fmt.Sprintf("drivers-ls-%d", time.Now().UnixNano())
	}
	disc, err := mqtt.NewPahoFleetDiscovery(mqttCfg, "crew/fleet/discovery", "crew/fleet/response/+")
	if err != nil {
		return fmt.Errorf("fleet discovery: %w", err)
	}
	defer func() {
		if err := disc.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error while closing discovery: %v\n", err)
		}
	}()

	ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
	defer cancel()
	ids, err := disc.Discover(ctx, 2*time.Second)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no driver terminals responded")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}
