package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/autorefine/pkg/domain"
	"github.com/felixgeelhaar/autorefine/pkg/domain/ai"
	"github.com/felixgeelhaar/autorefine/pkg/domain/artifact"
	"github.com/felixgeelhaar/autorefine/pkg/domain/evaluation"
	"github.com/felixgeelhaar/autorefine/pkg/domain/refinement"
	"github.com/google/uuid"
)

// RunRecorder persists finished runs.
type RunRecorder interface {
	AppendRun(result *refinement.Result) error
}

// RefinementController runs the bounded evaluate-patch loop over a store.
type RefinementController struct {
	store  artifact.Store
	scorer Scorer
	gen    ai.Generator
	layout *artifact.Layout
	cfg    refinement.Config
	audit  domain.RunAuditLogger
	runs   RunRecorder
	logger *slog.Logger
}

// NewRefinementController validates cfg. audit, runs and logger may be nil.
func NewRefinementController(
	store artifact.Store,
	scorer Scorer,
	gen ai.Generator,
	layout *artifact.Layout,
	cfg refinement.Config,
	audit domain.RunAuditLogger,
	runs RunRecorder,
	logger *slog.Logger,
) (*RefinementController, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid refinement config: %w", err)
	}
	if store == nil || scorer == nil || gen == nil || layout == nil {
		return nil, errors.New("refinement controller requires store, scorer, generator and layout")
	}
	if audit == nil {
		audit = domain.NopAuditLogger{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RefinementController{
		store:  store,
		scorer: scorer,
		gen:    gen,
		layout: layout,
		cfg:    cfg,
		audit:  audit,
		runs:   runs,
		logger: logger,
	}, nil
}

// Config returns the run bounds.
func (c *RefinementController) Config() refinement.Config {
	return c.cfg
}

// Run refines the stored artifact until it converges, regresses or the round
// budget is spent. The context is checked between rounds; on cancellation the
// partial result is returned with ctx.Err().
func (c *RefinementController) Run(ctx context.Context) (*refinement.Result, error) {
	runID := uuid.New().String()
	state, err := refinement.NewState(runID)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	log := c.logger.With("run_id", runID)

	c.record(runID, "refine.started", map[string]interface{}{
		"target_score": c.cfg.TargetScore,
		"max_rounds":   c.cfg.MaxRounds,
	})
	log.Info("refinement started", "target", c.cfg.TargetScore, "max_rounds", c.cfg.MaxRounds)

	for round := 1; round <= c.cfg.MaxRounds; round++ {
		if err := ctx.Err(); err != nil {
			log.Warn("refinement cancelled", "round", state.Round, "best", state.BestScore)
			return state.Result(started), err
		}
		state.Round = round

		current := artifact.Snapshot(ctx, c.store)
		report := c.scorer.Evaluate(ctx, current)
		score := report.Aggregate
		rec := refinement.RoundRecord{Round: round, Score: score, Report: report}

		log.Info("eval result", "round", round, "score", score, "best", state.BestScore, "summary", report.Summary())

		switch {
		case score >= c.cfg.TargetScore:
			state.Observe(score)
			rec.BestAfter = state.BestScore
			state.History = append(state.History, rec)
			c.recordRound(runID, rec)
			if err := state.Converge(); err != nil {
				return state.Result(started), err
			}
			log.Info("target score reached", "round", round, "score", score)
			return c.finish(state, started)

		case state.IsRegression(score):
			rec.BestAfter = state.BestScore
			state.History = append(state.History, rec)
			c.recordRound(runID, rec)
			log.Warn("score regressed, rolling back", "round", round, "score", score, "best", state.BestScore)
			if err := c.store.Restore(ctx); err != nil {
				return state.Result(started), fmt.Errorf("restore after regression: %w", err)
			}
			if err := state.Regress(); err != nil {
				return state.Result(started), err
			}
			return c.finish(state, started)
		}

		state.Observe(score)
		rec.BestAfter = state.BestScore

		if err := c.store.Backup(ctx, c.layout.Keys()); err != nil {
			return state.Result(started), fmt.Errorf("backup before patch: %w", err)
		}
		state.Backup = current.Clone()

		applied, rejected, err := c.applyPatch(ctx, report, current)
		rec.Applied, rec.Rejected = applied, rejected
		state.History = append(state.History, rec)
		c.recordRound(runID, rec)
		if err != nil {
			return state.Result(started), err
		}
	}

	if err := state.Exhaust(); err != nil {
		return state.Result(started), err
	}
	log.Info("round budget exhausted", "rounds", state.Round, "best", state.BestScore)
	return c.finish(state, started)
}

// applyPatch requests one combined patch and writes each block through the
// corruption guard at the configured ratio; the store applies its own guard
// as well. A failed generation yields an empty patch.
func (c *RefinementController) applyPatch(ctx context.Context, report evaluation.Report, current artifact.Artifact) (applied, rejected []artifact.Key, err error) {
	raw, genErr := c.gen.Generate(ctx, PatchPrompt(report, current, c.layout))
	if genErr != nil {
		c.logger.Warn("patch generation failed, no files changed", "error", genErr)
		return nil, nil, nil
	}

	patch := ParsePatch(raw, c.layout)
	if len(patch) == 0 {
		c.logger.Warn("patch response contained no usable blocks")
		return nil, nil, nil
	}

	for _, key := range patch.Keys(c.layout) {
		if err := artifact.CheckReplacement(current[key], patch[key], c.cfg.CorruptionGuardRatio); err != nil {
			c.logger.Warn("skipped write", "key", key, "reason", err)
			rejected = append(rejected, key)
			continue
		}
		ok, err := c.store.SafeWrite(ctx, key, current[key], patch[key])
		if err != nil {
			return applied, rejected, fmt.Errorf("apply patch to %s: %w", key, err)
		}
		if ok {
			applied = append(applied, key)
		} else {
			rejected = append(rejected, key)
		}
	}
	return applied, rejected, nil
}

func (c *RefinementController) finish(state *refinement.State, started time.Time) (*refinement.Result, error) {
	result := state.Result(started)
	c.record(state.RunID, "refine.finished", map[string]interface{}{
		"outcome":     string(result.Outcome),
		"rounds":      result.Rounds,
		"best_score":  result.BestScore,
		"final_score": result.FinalScore,
	})
	if c.runs != nil {
		if err := c.runs.AppendRun(result); err != nil {
			c.logger.Warn("failed to persist run record", "run_id", state.RunID, "error", err)
		}
	}
	c.logger.Info("refinement finished", "run_id", state.RunID, "outcome", result.Outcome, "rounds", result.Rounds, "best", result.BestScore)
	return result, nil
}

func (c *RefinementController) recordRound(runID string, rec refinement.RoundRecord) {
	c.record(runID, "refine.round", map[string]interface{}{
		"round":      rec.Round,
		"score":      rec.Score,
		"best_after": rec.BestAfter,
		"applied":    keyStrings(rec.Applied),
		"rejected":   keyStrings(rec.Rejected),
	})
}

func (c *RefinementController) record(runID, action string, metadata map[string]interface{}) {
	if err := c.audit.LogRun(runID, action, domain.ActorSystem, metadata); err != nil {
		c.logger.Warn("failed to write audit event", "action", action, "error", err)
	}
}

func keyStrings(keys []artifact.Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}
