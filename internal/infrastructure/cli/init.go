package cli

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/autorefine/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration into the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return fmt.Errorf("resolve workspace path: %w", err)
		}
		path, err := config.Path(root)
		if err != nil {
			return err
		}

		if _, err := os.Stat(path); err == nil && !initForce {
			return NewCLIError("configuration already exists", "Use 'autorefine init --force' to overwrite it", nil)
		}

		if err := config.Save(root, config.DefaultConfig()); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		success(cmd.OutOrStdout(), "Wrote %s", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration")
	RootCmd.AddCommand(initCmd)
}
