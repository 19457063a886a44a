package cli

import (
	"fmt"
	"sort"

	"github.com/felixgeelhaar/autorefine/internal/infrastructure/wiring"
	"github.com/spf13/cobra"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show AI call and token statistics",
	RunE:  runUsage,
}

func runUsage(cmd *cobra.Command, args []string) error {
	root, err := getProjectRoot()
	if err != nil {
		return fmt.Errorf("resolve workspace path: %w", err)
	}
	workspace := wiring.NewWorkspace(root)

	stats, err := workspace.Usage.GetUsage()
	if err != nil {
		return fmt.Errorf("failed to load usage stats: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "AI Usage")
	fmt.Fprintln(out, "--------")
	fmt.Fprintf(out, "Total Calls: %d\n", stats.TotalCalls)
	if !stats.LastCallAt.IsZero() {
		fmt.Fprintf(out, "Last Call:   %s\n", stats.LastCallAt.Format("2006-01-02 15:04:05"))
	}

	if len(stats.ProviderStats) == 0 {
		return nil
	}

	keys := make([]string, 0, len(stats.ProviderStats))
	for k := range stats.ProviderStats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	total := 0
	fmt.Fprintln(out, "\nTokens")
	for _, k := range keys {
		total += stats.ProviderStats[k]
		fmt.Fprintf(out, "- %-25s: %d\n", k, stats.ProviderStats[k])
	}
	fmt.Fprintf(out, "\nTotal Tokens: %d\n", total)
	return nil
}

func init() {
	RootCmd.AddCommand(usageCmd)
}
