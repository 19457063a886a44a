// Package planning defines the static task plan and the actor contract that
// routes each task to a role.
package planning

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Actor selects the role that handles a task.
type Actor string

const (
	ActorCode   Actor = "CodeAgent"
	ActorEval   Actor = "EvalAgent"
	ActorRefine Actor = "RefineAgent"
)

// Task IDs of the standard plan.
const (
	TaskInitWorkspace    = "init_workspace"
	TaskGenerateArtifact = "generate_artifact"
	TaskEvaluateArtifact = "evaluate_artifact"
	TaskRefineArtifact   = "refine_artifact"
)

// Task is one step of a plan.
type Task struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`
	Actor       Actor  `json:"actor" yaml:"actor"`
}

// Plan is an ordered, immutable task list.
type Plan struct {
	goal      string
	tasks     []Task
	createdAt time.Time
}

// NewPlan copies tasks into a new plan.
func NewPlan(goal string, tasks []Task) Plan {
	owned := make([]Task, len(tasks))
	copy(owned, tasks)
	return Plan{goal: goal, tasks: owned, createdAt: time.Now()}
}

// Goal returns the goal the plan was produced for.
func (p Plan) Goal() string { return p.goal }

// CreatedAt returns when the plan was produced.
func (p Plan) CreatedAt() time.Time { return p.createdAt }

// Len returns the number of tasks.
func (p Plan) Len() int { return len(p.tasks) }

// Tasks returns a copy of the tasks in order.
func (p Plan) Tasks() []Task {
	out := make([]Task, len(p.tasks))
	copy(out, p.tasks)
	return out
}

// Hash returns a deterministic hash of the plan structure.
func (p Plan) Hash() string {
	h := sha256.New()
	h.Write([]byte(p.goal))
	for _, t := range p.tasks {
		h.Write([]byte(t.ID))
		h.Write([]byte(t.Description))
		h.Write([]byte(t.Actor))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// MarshalJSON exposes the plan for printing and audit.
func (p Plan) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Goal      string    `json:"goal"`
		Tasks     []Task    `json:"tasks"`
		CreatedAt time.Time `json:"created_at"`
	}{p.goal, p.tasks, p.createdAt})
}
