package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var refineJSONOutput bool

var refineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Run the evaluate-patch loop on the current files",
	Long: `refine scores the tracked files and, until the target score is reached,
asks for a combined patch, backs up the current files and applies it. A score
below the best seen so far restores the last backup and stops the run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		result, err := services.Controller.Run(cmd.Context())
		if err != nil {
			return err
		}

		if refineJSONOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		printOutcome(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	refineCmd.Flags().BoolVar(&refineJSONOutput, "json", false, "Output the run result as JSON")
	RootCmd.AddCommand(refineCmd)
}
