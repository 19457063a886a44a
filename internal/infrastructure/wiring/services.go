package wiring

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/autorefine/internal/infrastructure/config"
	"github.com/felixgeelhaar/autorefine/internal/infrastructure/logging"
	infraai "github.com/felixgeelhaar/autorefine/pkg/ai"
	"github.com/felixgeelhaar/autorefine/pkg/application"
	domainai "github.com/felixgeelhaar/autorefine/pkg/domain/ai"
	"github.com/felixgeelhaar/autorefine/pkg/domain/artifact"
	"github.com/felixgeelhaar/autorefine/pkg/domain/planning"
)

// AppServices exposes the application layer wired together for one workspace.
type AppServices struct {
	Workspace  *Workspace
	Config     *config.Config
	Layout     *artifact.Layout
	Store      ArtifactStore
	Provider   domainai.Provider
	Evaluator  *application.Evaluator
	Controller *application.RefinementController
	CodeGen    *application.CodeGenService
	Planner    *application.Planner
	Dispatcher *application.Dispatcher

	closeStore func() error
}

// ProviderResolver builds a provider from the AI settings.
type ProviderResolver func(config.AIConfig) (domainai.Provider, error)

// BuildAppServices loads the workspace config and wires every service.
func BuildAppServices(ctx context.Context, root string) (*AppServices, error) {
	return BuildAppServicesWithProvider(ctx, root, LoadAIProvider)
}

// BuildAppServicesWithProvider allows callers to supply a custom AI provider resolver.
func BuildAppServicesWithProvider(ctx context.Context, root string, resolver ProviderResolver) (*AppServices, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	ApplyEnvOverrides(cfg)
	return BuildFromConfig(ctx, root, cfg, resolver)
}

// BuildFromConfig wires services for an already loaded config.
func BuildFromConfig(ctx context.Context, root string, cfg *config.Config, resolver ProviderResolver) (*AppServices, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	layout, err := cfg.Layout()
	if err != nil {
		return nil, err
	}

	workspace := NewWorkspace(root)
	if err := workspace.Repo.Initialize(); err != nil {
		return nil, err
	}

	provider, err := resolver(cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("AI provider: %w", err)
	}

	store, closeStore, err := OpenStore(ctx, cfg, root, layout, logging.New("store"))
	if err != nil {
		return nil, err
	}

	codeOpts, evalOpts := generatorOptions(cfg.AI)
	codeGen := infraai.NewTextGenerator(provider, codeOpts, workspace.Usage, nil)
	evalGen := infraai.NewTextGenerator(provider, evalOpts, workspace.Usage, nil)

	evaluator, err := application.NewEvaluator(evalGen, layout, cfg.Limits(), logging.New("evaluator"))
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	controller, err := application.NewRefinementController(
		store, evaluator, codeGen, layout, cfg.Refinement(),
		workspace.Audit, workspace.Repo, logging.New("refine"),
	)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	codegenSvc := application.NewCodeGenService(store, store, codeGen, layout, cfg.Scaffold, logging.New("codegen"))

	dispatcher := application.NewDispatcher(workspace.Audit, logging.New("dispatcher"))
	dispatcher.Register(planning.ActorCode, codegenSvc)
	dispatcher.Register(planning.ActorEval, application.NewEvaluationTaskHandler(store, evaluator, workspace.Audit, logging.New("evaluator")))
	dispatcher.Register(planning.ActorRefine, application.NewRefinementTaskHandler(controller))

	return &AppServices{
		Workspace:  workspace,
		Config:     cfg,
		Layout:     layout,
		Store:      store,
		Provider:   provider,
		Evaluator:  evaluator,
		Controller: controller,
		CodeGen:    codegenSvc,
		Planner:    application.NewPlanner(),
		Dispatcher: dispatcher,
		closeStore: closeStore,
	}, nil
}

// Close releases the store connection.
func (s *AppServices) Close() error {
	if s.closeStore == nil {
		return nil
	}
	return s.closeStore()
}
