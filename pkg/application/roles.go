package application

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/autorefine/pkg/domain"
	"github.com/felixgeelhaar/autorefine/pkg/domain/artifact"
	"github.com/felixgeelhaar/autorefine/pkg/domain/planning"
)

// EvaluationTaskHandler scores the stored artifact once.
type EvaluationTaskHandler struct {
	store  artifact.Store
	scorer Scorer
	audit  domain.AuditLogger
	logger *slog.Logger
}

func NewEvaluationTaskHandler(store artifact.Store, scorer Scorer, audit domain.AuditLogger, logger *slog.Logger) *EvaluationTaskHandler {
	if audit == nil {
		audit = domain.NopAuditLogger{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EvaluationTaskHandler{store: store, scorer: scorer, audit: audit, logger: logger}
}

func (h *EvaluationTaskHandler) Handle(ctx context.Context, task planning.Task) (TaskResult, error) {
	if task.ID != planning.TaskEvaluateArtifact {
		return TaskResult{}, ErrUnknownTask
	}

	report := h.scorer.Evaluate(ctx, artifact.Snapshot(ctx, h.store))
	h.logger.Info("eval result", "score", report.Aggregate, "summary", report.Summary())

	if err := h.audit.Log("artifact.evaluated", domain.ActorAI, map[string]interface{}{
		"score":        report.Aggregate,
		"fatal_errors": len(report.FatalErrors),
		"warnings":     len(report.Warnings),
	}); err != nil {
		h.logger.Warn("failed to write audit event", "error", err)
	}

	return TaskResult{Status: TaskStatusOK, Report: &report}, nil
}

// RefinementTaskHandler runs the refinement controller.
type RefinementTaskHandler struct {
	controller *RefinementController
}

func NewRefinementTaskHandler(controller *RefinementController) *RefinementTaskHandler {
	return &RefinementTaskHandler{controller: controller}
}

func (h *RefinementTaskHandler) Handle(ctx context.Context, task planning.Task) (TaskResult, error) {
	if task.ID != planning.TaskRefineArtifact {
		return TaskResult{}, ErrUnknownTask
	}
	result, err := h.controller.Run(ctx)
	if err != nil {
		return TaskResult{Status: TaskStatusFailed, Refinement: result}, err
	}
	return TaskResult{Status: TaskStatusOK, Refinement: result}, nil
}
