package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/autorefine/pkg/domain"
	"github.com/felixgeelhaar/autorefine/pkg/domain/evaluation"
	"github.com/felixgeelhaar/autorefine/pkg/domain/planning"
	"github.com/felixgeelhaar/autorefine/pkg/domain/refinement"
)

// TaskStatus is the outcome of one dispatched task.
type TaskStatus string

const (
	TaskStatusOK      TaskStatus = "ok"
	TaskStatusSkipped TaskStatus = "skipped"
	TaskStatusFailed  TaskStatus = "failed"
)

// ErrUnknownTask is returned by a handler for task IDs it does not serve.
var ErrUnknownTask = errors.New("unknown task")

// TaskResult is what a handler hands back to the dispatcher. Only the
// fields relevant to the task are set.
type TaskResult struct {
	TaskID     string             `json:"task_id"`
	Actor      planning.Actor     `json:"actor"`
	Status     TaskStatus         `json:"status"`
	Message    string             `json:"message,omitempty"`
	Files      []string           `json:"files,omitempty"`
	Report     *evaluation.Report `json:"report,omitempty"`
	Refinement *refinement.Result `json:"refinement,omitempty"`
}

// TaskHandler executes the tasks of one actor.
type TaskHandler interface {
	Handle(ctx context.Context, task planning.Task) (TaskResult, error)
}

// TaskHandlerFunc adapts a function to TaskHandler.
type TaskHandlerFunc func(ctx context.Context, task planning.Task) (TaskResult, error)

func (f TaskHandlerFunc) Handle(ctx context.Context, task planning.Task) (TaskResult, error) {
	return f(ctx, task)
}

// Dispatcher runs a plan's tasks in order, routing each by actor.
type Dispatcher struct {
	handlers map[planning.Actor]TaskHandler
	audit    domain.AuditLogger
	logger   *slog.Logger
}

func NewDispatcher(audit domain.AuditLogger, logger *slog.Logger) *Dispatcher {
	if audit == nil {
		audit = domain.NopAuditLogger{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		handlers: make(map[planning.Actor]TaskHandler),
		audit:    audit,
		logger:   logger,
	}
}

// Register routes actor's tasks to h, replacing any previous handler.
func (d *Dispatcher) Register(actor planning.Actor, h TaskHandler) {
	d.handlers[actor] = h
}

// Dispatch executes the plan sequentially. Unknown actors and task IDs are
// reported as skipped. The first handler error stops the run and is returned
// together with the results gathered so far; the failed task keeps whatever
// partial result its handler returned.
func (d *Dispatcher) Dispatch(ctx context.Context, plan planning.Plan) ([]TaskResult, error) {
	results := make([]TaskResult, 0, plan.Len())

	for _, task := range plan.Tasks() {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		h, ok := d.handlers[task.Actor]
		if !ok {
			d.logger.Warn("no handler for actor, skipping task", "task", task.ID, "actor", task.Actor)
			results = append(results, skipped(task, fmt.Sprintf("no handler for actor %s", task.Actor)))
			continue
		}

		d.logger.Info("dispatching task", "task", task.ID, "actor", task.Actor)
		res, err := h.Handle(ctx, task)
		if errors.Is(err, ErrUnknownTask) {
			d.logger.Warn("handler does not know task, skipping", "task", task.ID, "actor", task.Actor)
			results = append(results, skipped(task, err.Error()))
			continue
		}
		if err != nil {
			res.TaskID, res.Actor = task.ID, task.Actor
			res.Status, res.Message = TaskStatusFailed, err.Error()
			results = append(results, res)
			d.logAudit(task, TaskStatusFailed)
			return results, fmt.Errorf("task %s: %w", task.ID, err)
		}

		res.TaskID, res.Actor = task.ID, task.Actor
		if res.Status == "" {
			res.Status = TaskStatusOK
		}
		results = append(results, res)
		d.logAudit(task, res.Status)
	}

	return results, nil
}

func (d *Dispatcher) logAudit(task planning.Task, status TaskStatus) {
	err := d.audit.Log("task.dispatched", domain.ActorSystem, map[string]interface{}{
		"task":   task.ID,
		"actor":  string(task.Actor),
		"status": string(status),
	})
	if err != nil {
		d.logger.Warn("failed to write audit event", "task", task.ID, "error", err)
	}
}

func skipped(task planning.Task, msg string) TaskResult {
	return TaskResult{TaskID: task.ID, Actor: task.Actor, Status: TaskStatusSkipped, Message: msg}
}
