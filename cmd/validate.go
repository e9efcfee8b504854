package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opentransit/crewd/core/solver"
	"github.com/opentransit/crewd/instances"
)

var validateRoster string

var validateCmd = &cobra.Command{
	Use:   "validate <table>",
	Short: "Check a shift table against the labor rules",
	Long: `validate loads a shift table and reports whether its shifts are
well formed under the configured labor rules. With --roster it also checks
that a previously solved roster still covers the table exactly.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateRoster, "roster", "", "roster file produced by solve --out json")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	in, err := instances.Load(args[0])
	if err != nil {
		return err
	}
	rules, err := loadRules()
	if err != nil {
		return err
	}
	if err := in.Validate(rules); err != nil {
		return fmt.Errorf("table %s: %w", in.Name, err)
	}
	if validateRoster == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d shifts, %d min driving, at least %d drivers\n",
			in.Name, len(in.Shifts), in.TotalDriving(), in.DriverLowerBound(rules))
		return nil
	}

	data, err := os.ReadFile(validateRoster)
	if err != nil {
		return err
	}
	var res solver.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return fmt.Errorf("roster %s: %w", validateRoster, err)
	}
	if err := res.Roster.Validate(in, rules); err != nil {
		return fmt.Errorf("roster %s: %w", validateRoster, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d duties cover %d shifts, %d min working\n",
		in.Name, res.Roster.Drivers(), len(in.Shifts), res.Roster.TotalWorkingTime(rules))
	return nil
}
