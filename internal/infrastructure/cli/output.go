package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/felixgeelhaar/autorefine/pkg/application"
	"github.com/felixgeelhaar/autorefine/pkg/domain/artifact"
	"github.com/felixgeelhaar/autorefine/pkg/domain/evaluation"
	"github.com/felixgeelhaar/autorefine/pkg/domain/refinement"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

func success(w io.Writer, format string, a ...any) {
	green.Fprintf(w, "✓ %s\n", fmt.Sprintf(format, a...))
}

func warning(w io.Writer, format string, a ...any) {
	yellow.Fprintf(w, "! %s\n", fmt.Sprintf(format, a...))
}

func failure(w io.Writer, format string, a ...any) {
	red.Fprintf(w, "✗ %s\n", fmt.Sprintf(format, a...))
}

func step(w io.Writer, format string, a ...any) {
	cyan.Fprintf(w, "→ %s\n", fmt.Sprintf(format, a...))
}

func printCLIError(w io.Writer, e *CLIError) {
	red.Fprintf(w, "Error: %s\n", e.Error())
	if e.Hint != "" {
		fmt.Fprintf(w, "\n%s\n", e.Hint)
	}
}

func formatScore(score float64) string {
	if score == evaluation.UnknownScore {
		return "unknown"
	}
	return fmt.Sprintf("%g", score)
}

func printReport(w io.Writer, r evaluation.Report) {
	if !r.Known() {
		warning(w, "Score unknown: the evaluator response could not be parsed")
		return
	}
	fmt.Fprintf(w, "Overall score: %s\n", formatScore(r.Aggregate))

	keys := make([]string, 0, len(r.SubScores))
	for k := range r.SubScores {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-12s %g\n", k, r.SubScores[artifact.Key(k)])
	}

	printList(w, "Fatal errors", r.FatalErrors)
	printList(w, "Warnings", r.Warnings)
	printList(w, "Suggestions", r.Suggestions)
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

func printOutcome(w io.Writer, res *refinement.Result) {
	for _, rec := range res.History {
		line := fmt.Sprintf("round %d: score %s (best %s)", rec.Round, formatScore(rec.Score), formatScore(rec.BestAfter))
		if len(rec.Applied) > 0 {
			line += " applied " + joinKeys(rec.Applied)
		}
		if len(rec.Rejected) > 0 {
			line += " rejected " + joinKeys(rec.Rejected)
		}
		fmt.Fprintln(w, line)
	}

	summary := fmt.Sprintf("after %d round(s), best score %s", res.Rounds, formatScore(res.BestScore))
	switch res.Outcome {
	case refinement.PhaseConverged:
		success(w, "Converged %s", summary)
	case refinement.PhaseRegressed:
		warning(w, "Regressed and rolled back %s", summary)
	case refinement.PhaseExhausted:
		warning(w, "Round budget exhausted %s", summary)
	default:
		fmt.Fprintf(w, "Stopped in phase %s %s\n", res.Outcome, summary)
	}
}

func printTaskResult(w io.Writer, r application.TaskResult) {
	label := fmt.Sprintf("%s (%s)", r.TaskID, r.Actor)
	switch r.Status {
	case application.TaskStatusOK:
		detail := ""
		if len(r.Files) > 0 {
			detail = ": " + strings.Join(r.Files, ", ")
		}
		step(w, "%s%s", label, detail)
	case application.TaskStatusSkipped:
		warning(w, "%s skipped: %s", label, r.Message)
	default:
		failure(w, "%s failed: %s", label, r.Message)
	}
}

func joinKeys(keys []artifact.Key) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = string(k)
	}
	return strings.Join(parts, ",")
}

func init() {
	// NO_COLOR disables color; otherwise color follows the terminal.
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
}
