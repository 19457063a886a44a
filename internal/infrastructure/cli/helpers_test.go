package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/felixgeelhaar/autorefine/internal/infrastructure/config"
	infraai "github.com/felixgeelhaar/autorefine/pkg/ai"
	domainai "github.com/felixgeelhaar/autorefine/pkg/domain/ai"
	"github.com/felixgeelhaar/autorefine/pkg/domain/artifact"
)

// newWorkspace writes a one-file config into a temp workspace.
func newWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Files = []artifact.FileSpec{{
		Key:         "main",
		Path:        "app/main.py",
		Description: "entry point",
		Prompt:      "write main.py",
	}}
	cfg.MaxScore = 10
	cfg.TargetScore = 8
	cfg.AI.Provider = "mock"
	cfg.Log.Level = "error"
	cfg.Scaffold = map[string]string{"README.md": "# demo\n"}
	if err := config.Save(dir, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	return dir
}

// useMock routes every command to a MockProvider replaying responses.
func useMock(t *testing.T, responses ...string) *infraai.MockProvider {
	t.Helper()
	provider := &infraai.MockProvider{Model: "cli", Responses: responses}
	prev := providerResolver
	providerResolver = func(config.AIConfig) (domainai.Provider, error) { return provider, nil }
	t.Cleanup(func() { providerResolver = prev })
	return provider
}

func resetFlags() {
	workspacePath, configPath, logLevel, logFormat = "", "", "", ""
	runJSONOutput, refineJSONOutput, evaluateJSONOutput, planJSONOutput = false, false, false, false
	initForce = false
	auditRunID = ""
}

// runCLI executes the root command with args and returns its stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Setenv("AUTOREFINE_STORE", "")
	t.Setenv("AUTOREFINE_AI_PROVIDER", "")
	color.NoColor = true

	var out, errOut bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&errOut)
	RootCmd.SetArgs(args)
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
	})

	err := RootCmd.ExecuteContext(context.Background())
	return out.String(), err
}
