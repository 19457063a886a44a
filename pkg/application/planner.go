package application

import "github.com/felixgeelhaar/autorefine/pkg/domain/planning"

// DefaultGoal is used when a run is started without one.
const DefaultGoal = "generate and refine the tracked project files"

// Planner produces the fixed task list. The goal is recorded on the plan but
// does not change its shape.
type Planner struct{}

func NewPlanner() *Planner {
	return &Planner{}
}

func (p *Planner) Plan(goal string) planning.Plan {
	if goal == "" {
		goal = DefaultGoal
	}
	return planning.NewPlan(goal, []planning.Task{
		{
			ID:          planning.TaskInitWorkspace,
			Description: "write scaffold files into the workspace",
			Actor:       planning.ActorCode,
		},
		{
			ID:          planning.TaskGenerateArtifact,
			Description: "generate every tracked file from its prompt",
			Actor:       planning.ActorCode,
		},
		{
			ID:          planning.TaskEvaluateArtifact,
			Description: "score the generated files against their rubrics",
			Actor:       planning.ActorEval,
		},
		{
			ID:          planning.TaskRefineArtifact,
			Description: "refine until the target score, a regression or the round budget",
			Actor:       planning.ActorRefine,
		},
	})
}
