package cli

import (
	"github.com/felixgeelhaar/autorefine/pkg/domain"
	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Overwrite the tracked files with the last backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		if err := services.Store.Restore(cmd.Context()); err != nil {
			return err
		}
		if err := services.Workspace.Audit.Log("artifact.restored", domain.ActorHuman, nil); err != nil {
			warning(cmd.ErrOrStderr(), "failed to write audit event: %v", err)
		}
		success(cmd.OutOrStdout(), "Restored the last backup")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(restoreCmd)
}
