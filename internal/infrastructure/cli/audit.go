package cli

import (
	"fmt"

	"github.com/felixgeelhaar/autorefine/internal/infrastructure/wiring"
	"github.com/spf13/cobra"
)

var auditRunID string

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect and verify the audit trail",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the integrity of the audit trail",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return fmt.Errorf("resolve workspace path: %w", err)
		}
		workspace := wiring.NewWorkspace(root)
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "Verifying audit trail integrity...")
		violations, err := workspace.Audit.VerifyIntegrity()
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}

		if len(violations) == 0 {
			success(out, "Audit trail is intact and verified.")
			return nil
		}

		failure(out, "Found %d integrity violations:", len(violations))
		for _, v := range violations {
			fmt.Fprintf(out, "  - %s\n", v)
		}
		return NewCLIError("audit trail integrity check failed", "Inspect .autorefine/events.jsonl for edited or removed lines", nil)
	},
}

var auditLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Print audit events, optionally for one run",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return fmt.Errorf("resolve workspace path: %w", err)
		}
		workspace := wiring.NewWorkspace(root)

		events, err := workspace.Audit.GetTimeline()
		if auditRunID != "" {
			events, err = workspace.Audit.GetRunTimeline(auditRunID)
		}
		if err != nil {
			return fmt.Errorf("failed to load audit trail: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, ev := range events {
			fmt.Fprintf(out, "%s  %-20s %-7s", ev.Timestamp.Format("2006-01-02 15:04:05"), ev.Action, ev.Actor)
			if ev.RunID != "" {
				fmt.Fprintf(out, " run=%s", ev.RunID)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	auditLogCmd.Flags().StringVar(&auditRunID, "run", "", "Only show events of this run ID")
	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditLogCmd)
	RootCmd.AddCommand(auditCmd)
}
