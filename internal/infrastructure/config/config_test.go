package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/autorefine/pkg/domain/artifact"
	"github.com/google/go-cmp/cmp"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.TargetScore != 36 || cfg.MaxRounds != 3 || cfg.MaxScore != 40 {
		t.Errorf("defaults = %g/%d/%g", cfg.TargetScore, cfg.MaxRounds, cfg.MaxScore)
	}
	layout, err := cfg.Layout()
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if diff := cmp.Diff([]artifact.Key{"main", "index", "paper", "js"}, layout.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.TargetScore = 30
	cfg.AI.Provider = "ollama"
	cfg.Store.Backend = BackendRedis

	if err := Save(root, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, ".autorefine", "config.yaml")); err != nil {
		t.Fatalf("config file missing: %v", err)
	}

	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile_PartialOverridesKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	data := []byte(`
max_rounds: 5
ai:
  provider: openai
  model: gpt-4o
files:
  - key: app
    path: src/app.go
    prompt: write a hello world server
`)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.MaxRounds != 5 || cfg.AI.Provider != "openai" || cfg.AI.Model != "gpt-4o" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.TargetScore != 36 || cfg.AI.MaxTokens != 2048 {
		t.Errorf("defaults lost: target=%g max_tokens=%d", cfg.TargetScore, cfg.AI.MaxTokens)
	}
	if len(cfg.Files) != 1 || cfg.Files[0].Key != "app" {
		t.Errorf("files = %+v", cfg.Files)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero rounds", func(c *Config) { c.MaxRounds = 0 }},
		{"ratio above one", func(c *Config) { c.CorruptionGuardRatio = 1.5 }},
		{"ratio zero", func(c *Config) { c.CorruptionGuardRatio = 0 }},
		{"target above max", func(c *Config) { c.TargetScore = 41 }},
		{"no files", func(c *Config) { c.Files = nil }},
		{"duplicate key", func(c *Config) { c.Files[1].Key = c.Files[0].Key }},
		{"flattened collision", func(c *Config) {
			c.Files = []artifact.FileSpec{{Key: "a", Path: "web/app.py"}, {Key: "b", Path: "web_app.py"}}
		}},
		{"unknown backend", func(c *Config) { c.Store.Backend = "s3" }},
		{"redis without addr", func(c *Config) { c.Store.Backend = BackendRedis; c.Store.Redis.Addr = "" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"negative temperature", func(c *Config) { c.AI.Temperature = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("max_rounds: [oops"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}
