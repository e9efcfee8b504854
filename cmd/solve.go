package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	coremetrics "github.com/opentransit/crewd/core/metrics"
	"github.com/opentransit/crewd/core/model"
	"github.com/opentransit/crewd/core/solver"
	"github.com/opentransit/crewd/infra/logger"
	"github.com/opentransit/crewd/instances"
	"github.com/opentransit/crewd/pkg/export"
)

var (
	solveInstance string
	solveFile     string
	solveDrivers  int
	solveColumns  int
	solveOut      string
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve a shift table offline and print the roster",
	Long: `solve schedules a shift table without starting the service. The
table comes from a JSON or YAML file or from one of the builtin samples.
With --drivers the duty count is imposed and only the working time is
optimized.`,
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVar(&solveInstance, "instance", "", "builtin sample table (small, medium or large)")
	solveCmd.Flags().StringVar(&solveFile, "file", "", "path to a shift table file")
	solveCmd.Flags().IntVar(&solveDrivers, "drivers", 0, "impose the duty count instead of minimizing it")
	solveCmd.Flags().IntVar(&solveColumns, "max-columns", 0, "cap on enumerated duty candidates")
	solveCmd.Flags().StringVar(&solveOut, "out", "json", "output format, json or csv")
	rootCmd.AddCommand(solveCmd)
}

// loadTable resolves the shift table of an offline command from either a
// builtin sample name or a file path.
func loadTable(instance, file string) (model.Instance, error) {
	switch {
	case file != "":
		return instances.Load(file)
	case instance != "":
		return instances.ByName(instance)
	default:
		return model.Instance{}, fmt.Errorf("either --instance or --file is required")
	}
}

// newOfflineManager builds a solve manager without broker, bus or metrics,
// for one-shot commands.
func newOfflineManager(rules model.Rules, maxColumns int) (*solver.SolveManager, error) {
	limits := solver.DefaultColumnLimits()
	if maxColumns > 0 {
		limits.MaxColumns = maxColumns
	}
	return solver.NewSolveManager(
		rules,
		solver.NewSetCoverSolver(limits),
		solver.NewGreedySolver(),
		nil, 0,
		coremetrics.NopSink{},
		nil, nil,
		logger.New("solve"),
	)
}

func runSolve(cmd *cobra.Command, args []string) error {
	in, err := loadTable(solveInstance, solveFile)
	if err != nil {
		return err
	}
	rules, err := loadRules()
	if err != nil {
		return err
	}
	mgr, err := newOfflineManager(rules, solveColumns)
	if err != nil {
		return err
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error while closing solver: %v\n", err)
		}
	}()

	var res solver.Result
	if solveDrivers > 0 {
		res, err = mgr.ScheduleWithDrivers(cmd.Context(), in, solveDrivers)
	} else {
		res, err = mgr.Schedule(cmd.Context(), in)
	}
	if err != nil {
		return err
	}

	switch strings.ToLower(solveOut) {
	case "json":
		return export.WriteJSON(cmd.OutOrStdout(), res)
	case "csv":
		return export.WriteCSV(cmd.OutOrStdout(), res, rules)
	default:
		return fmt.Errorf("unknown output format %q", solveOut)
	}
}
