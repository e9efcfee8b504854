package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/opentransit/crewd/app/plugins"
	"github.com/opentransit/crewd/config"
	"github.com/opentransit/crewd/core/metrics/kpi"
	solverlog "github.com/opentransit/crewd/core/solver/logging"
	"github.com/opentransit/crewd/jobs/crewkpi"
)

var (
	kpiInstance string
	kpiStart    string
	kpiEnd      string
)

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Work with the daily scheduling KPI store",
}

var kpiBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Replay the solve journal into the KPI store",
	RunE:  runKpiBackfill,
}

var kpiReportCmd = &cobra.Command{
	Use:   "report <instance>",
	Short: "Summarize the daily KPIs of one shift table",
	Args:  cobra.ExactArgs(1),
	RunE:  runKpiReport,
}

func init() {
	kpiCmd.PersistentFlags().StringVar(&kpiStart, "start", "", "start of the time range as YYYY-MM-DD")
	kpiCmd.PersistentFlags().StringVar(&kpiEnd, "end", "", "end of the time range as YYYY-MM-DD (default now)")
	kpiBackfillCmd.Flags().StringVar(&kpiInstance, "instance", "", "only replay runs of this shift table")
	kpiCmd.AddCommand(kpiBackfillCmd)
	kpiCmd.AddCommand(kpiReportCmd)
	rootCmd.AddCommand(kpiCmd)
}

// kpiStores opens the solve journal and the KPI store named by the service
// configuration. The caller closes the returned log store.
func kpiStores() (solverlog.LogStore, kpi.Store, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Components.KPIStore.Type == "" {
		return nil, nil, fmt.Errorf("no kpi store configured under components.kpi_store")
	}
	kf, ok := plugins.KPIStores[cfg.Components.KPIStore.Type]
	if !ok {
		return nil, nil, fmt.Errorf("unknown kpi store %s", cfg.Components.KPIStore.Type)
	}
	kstore, err := kf(cfg.Components.KPIStore.Conf)
	if err != nil {
		return nil, nil, err
	}
	lf, ok := plugins.LogStores[cfg.Logging.Backend]
	if !ok {
		return nil, nil, fmt.Errorf("unknown log store %s", cfg.Logging.Backend)
	}
	lstore, err := lf(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return lstore, kstore, nil
}

func closeKpiStores(cmd *cobra.Command, lstore solverlog.LogStore, kstore kpi.Store) {
	if err := lstore.Close(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "error while closing journal: %v\n", err)
	}
	if c, ok := kstore.(io.Closer); ok {
		if err := c.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error while closing kpi store: %v\n", err)
		}
	}
}

func kpiRange() (start, end time.Time, err error) {
	if kpiStart != "" {
		start, err = time.Parse("2006-01-02", kpiStart)
		if err != nil {
			return start, end, fmt.Errorf("bad --start: %w", err)
		}
	}
	end = time.Now()
	if kpiEnd != "" {
		end, err = time.Parse("2006-01-02", kpiEnd)
		if err != nil {
			return start, end, fmt.Errorf("bad --end: %w", err)
		}
		end = end.Add(24*time.Hour - time.Nanosecond)
	}
	return start, end, nil
}

func runKpiBackfill(cmd *cobra.Command, args []string) error {
	lstore, kstore, err := kpiStores()
	if err != nil {
		return err
	}
	defer closeKpiStores(cmd, lstore, kstore)
	start, end, err := kpiRange()
	if err != nil {
		return err
	}
	q := solverlog.LogQuery{Start: start, End: end, Instance: kpiInstance}
	n, err := crewkpi.BackfillFromLogs(cmd.Context(), lstore, kstore, q)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "replayed %d solve runs\n", n)
	return nil
}

func runKpiReport(cmd *cobra.Command, args []string) error {
	lstore, kstore, err := kpiStores()
	if err != nil {
		return err
	}
	defer closeKpiStores(cmd, lstore, kstore)
	start, end, err := kpiRange()
	if err != nil {
		return err
	}
	sum, err := crewkpi.Report(kstore, args[0], start, end)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(sum)
}
