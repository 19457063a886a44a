package watch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/autorefine/pkg/application"
	"github.com/felixgeelhaar/autorefine/pkg/domain/artifact"
	"github.com/felixgeelhaar/autorefine/pkg/domain/evaluation"
)

// ReportFunc receives the score of the artifact after a batch of changes.
type ReportFunc func(changes []ChangeEvent, report evaluation.Report)

// Reevaluator scores the stored artifact whenever tracked files change.
// Evaluations are serialised; a batch arriving during an evaluation waits.
type Reevaluator struct {
	mu       sync.Mutex
	store    artifact.Store
	scorer   application.Scorer
	onReport ReportFunc
	logger   *slog.Logger
}

func NewReevaluator(store artifact.Store, scorer application.Scorer, onReport ReportFunc, logger *slog.Logger) *Reevaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reevaluator{store: store, scorer: scorer, onReport: onReport, logger: logger}
}

// Handle evaluates the current artifact for one batch of changes.
func (r *Reevaluator) Handle(ctx context.Context, changes []ChangeEvent) evaluation.Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	paths := make([]string, len(changes))
	for i, c := range changes {
		paths[i] = c.Path
	}
	r.logger.Info("tracked files changed", "paths", paths)

	report := r.scorer.Evaluate(ctx, artifact.Snapshot(ctx, r.store))
	r.logger.Info("eval result", "score", report.Aggregate, "summary", report.Summary())
	if r.onReport != nil {
		r.onReport(changes, report)
	}
	return report
}
