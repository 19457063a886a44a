package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var runJSONOutput bool

var runCmd = &cobra.Command{
	Use:   "run [goal]",
	Short: "Scaffold, generate, evaluate and refine the tracked files",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		plan := services.Planner.Plan(strings.Join(args, " "))
		results, err := services.Dispatcher.Dispatch(cmd.Context(), plan)

		out := cmd.OutOrStdout()
		if runJSONOutput {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(results); encErr != nil {
				return encErr
			}
			return err
		}

		for _, r := range results {
			printTaskResult(out, r)
			if r.Report != nil {
				printReport(out, *r.Report)
			}
			if r.Refinement != nil {
				printOutcome(out, r.Refinement)
			}
		}
		if err != nil {
			return fmt.Errorf("run stopped: %w", err)
		}
		return nil
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write scaffold files and generate every tracked file once",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		out := cmd.OutOrStdout()
		paths, err := services.CodeGen.InitWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		for _, p := range paths {
			step(out, "scaffold %s", p)
		}

		res, err := services.CodeGen.Generate(cmd.Context())
		if err != nil {
			return err
		}
		for _, k := range res.Written {
			p, _ := services.Layout.Path(k)
			success(out, "generated %s", p)
		}
		for _, k := range res.Skipped {
			warning(out, "no content generated for %s", k)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runJSONOutput, "json", false, "Output task results as JSON")
	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(generateCmd)
}

