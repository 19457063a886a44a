package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/autorefine/internal/infrastructure/logging"
	"github.com/felixgeelhaar/autorefine/internal/infrastructure/watch"
	"github.com/felixgeelhaar/autorefine/pkg/domain/evaluation"
	"github.com/spf13/cobra"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-evaluate the tracked files whenever they change",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd.Context())
		if err != nil {
			return err
		}
		defer services.Close()

		root, err := getProjectRoot()
		if err != nil {
			return err
		}

		paths := make([]string, 0, len(services.Layout.Files()))
		for _, f := range services.Layout.Files() {
			paths = append(paths, f.Path)
		}

		out := cmd.OutOrStdout()
		reeval := watch.NewReevaluator(services.Store, services.Evaluator, func(changes []watch.ChangeEvent, report evaluation.Report) {
			fmt.Fprintf(out, "\nChange detected at %s:", time.Now().Format("15:04:05"))
			for _, c := range changes {
				fmt.Fprintf(out, " %s (%s)", c.Path, c.ChangeType)
			}
			fmt.Fprintln(out)
			printReport(out, report)
		}, logging.New("watch"))

		ctx := cmd.Context()
		w, err := watch.NewFSWatcher(watchDebounce, watch.TrackedFilter(paths), func(batch []watch.ChangeEvent) {
			reeval.Handle(ctx, batch)
		})
		if err != nil {
			return err
		}
		if err := w.WatchRecursive(root); err != nil {
			return err
		}

		fmt.Fprintf(out, "Watching %d tracked files in %s (Ctrl+C to stop)\n", len(paths), root)
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			return err
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period before re-evaluating")
	RootCmd.AddCommand(watchCmd)
}
