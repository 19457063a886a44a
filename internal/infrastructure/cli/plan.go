package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/autorefine/pkg/application"
	"github.com/spf13/cobra"
)

var planJSONOutput bool

var planCmd = &cobra.Command{
	Use:   "plan [goal]",
	Short: "Print the task plan a run would execute",
	RunE: func(cmd *cobra.Command, args []string) error {
		plan := application.NewPlanner().Plan(strings.Join(args, " "))
		out := cmd.OutOrStdout()

		if planJSONOutput {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		}

		fmt.Fprintf(out, "Goal: %s\n", plan.Goal())
		for i, t := range plan.Tasks() {
			fmt.Fprintf(out, "%d. %-18s %-12s %s\n", i+1, t.ID, t.Actor, t.Description)
		}
		return nil
	},
}

func init() {
	planCmd.Flags().BoolVar(&planJSONOutput, "json", false, "Output the plan as JSON")
	RootCmd.AddCommand(planCmd)
}
