package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	workspacePath string
	configPath    string
	logLevel      string
	logFormat     string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "autorefine",
	Version: Version,
	Short:   "Generate project files with an LLM and refine them until they score well",
	Long: `autorefine generates a small set of project files from prompts, scores them
against per-file rubrics and patches them in bounded rounds. A round that scores
worse than the best seen so far is rolled back from the last backup.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and prints mapped errors with their hints.
// It returns the process exit code.
func Execute(ctx context.Context) int {
	err := RootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	mapped := MapError(err)
	var cliErr *CLIError
	if errors.As(mapped, &cliErr) {
		printCLIError(os.Stderr, cliErr)
		return cliErr.ExitCode
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&workspacePath, "workspace", "w", "", "Workspace root (default: current directory)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <workspace>/.autorefine/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	RootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json (overrides config)")
}
