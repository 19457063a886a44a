package cli

import (
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/autorefine/pkg/domain/planning"
	"github.com/spf13/cobra"
)

var evaluateJSONOutput bool

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score the tracked files once without changing them",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		plan := planning.NewPlan("evaluate", []planning.Task{{
			ID:          planning.TaskEvaluateArtifact,
			Description: "score the current files",
			Actor:       planning.ActorEval,
		}})
		results, err := services.Dispatcher.Dispatch(cmd.Context(), plan)
		if err != nil {
			return err
		}
		if len(results) == 0 || results[0].Report == nil {
			return fmt.Errorf("evaluation produced no report")
		}
		report := *results[0].Report

		if evaluateJSONOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		printReport(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	evaluateCmd.Flags().BoolVar(&evaluateJSONOutput, "json", false, "Output the report in its wire format")
	RootCmd.AddCommand(evaluateCmd)
}
