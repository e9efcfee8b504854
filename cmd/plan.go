package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/opentransit/crewd/core/scheduler"
	"github.com/opentransit/crewd/core/solver"
)

var (
	planInstance string
	planFile     string
	planFleet    string
	planDate     string
	planDrivers  int
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Roster solved duties onto named drivers for a service day",
	Long: `plan solves a shift table and assigns the resulting duties to the
drivers of a fleet file, honoring their availability windows. Drivers left
without a duty are reported as the spare pool of the day.`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planInstance, "instance", "", "builtin sample table (small, medium or large)")
	planCmd.Flags().StringVar(&planFile, "file", "", "path to a shift table file")
	planCmd.Flags().StringVar(&planFleet, "fleet", "", "driver fleet file with availability windows")
	planCmd.Flags().StringVar(&planDate, "date", "", "service day as YYYY-MM-DD (default today)")
	planCmd.Flags().IntVar(&planDrivers, "drivers", 0, "impose the duty count instead of minimizing it")
	_ = planCmd.MarkFlagRequired("fleet")
	rootCmd.AddCommand(planCmd)
}

// dayPlan is the printed result: the sign-on sheet plus the spare pool.
type dayPlan struct {
	Instance string            `json:"instance"`
	Date     string            `json:"date"`
	Drivers  int               `json:"drivers"`
	Entries  []scheduler.Entry `json:"entries"`
	Spares   []string          `json:"spares,omitempty"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	in, err := loadTable(planInstance, planFile)
	if err != nil {
		return err
	}
	rules, err := loadRules()
	if err != nil {
		return err
	}
	fleet, err := scheduler.LoadFleet(planFleet)
	if err != nil {
		return err
	}
	day := time.Now()
	if planDate != "" {
		day, err = time.Parse("2006-01-02", planDate)
		if err != nil {
			return fmt.Errorf("bad --date: %w", err)
		}
	}

	mgr, err := newOfflineManager(rules, 0)
	if err != nil {
		return err
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error while closing solver: %v\n", err)
		}
	}()

	var res solver.Result
	if planDrivers > 0 {
		res, err = mgr.ScheduleWithDrivers(cmd.Context(), in, planDrivers)
	} else {
		res, err = mgr.Schedule(cmd.Context(), in)
	}
	if err != nil {
		return err
	}

	planner := scheduler.Planner{Rules: rules, Fleet: fleet}
	entries, err := planner.Plan(day, res.Roster)
	if err != nil {
		return err
	}
	out := dayPlan{
		Instance: in.Name,
		Date:     day.Format("2006-01-02"),
		Drivers:  res.Drivers,
		Entries:  entries,
		Spares:   planner.Spares(entries),
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
