package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/autorefine/internal/infrastructure/config"
	"github.com/felixgeelhaar/autorefine/internal/infrastructure/logging"
	"github.com/felixgeelhaar/autorefine/internal/infrastructure/wiring"
)

// providerResolver is replaced in tests.
var providerResolver wiring.ProviderResolver = wiring.LoadAIProvider

func getProjectRoot() (string, error) {
	if workspacePath != "" {
		abs, err := filepath.Abs(workspacePath)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path %q: %w", workspacePath, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("workspace path %q: %w", abs, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("workspace path %q is not a directory", abs)
		}
		return abs, nil
	}
	return os.Getwd()
}

func loadConfig(root string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(root)
	}
	if err != nil {
		return nil, err
	}
	wiring.ApplyEnvOverrides(cfg)
	return cfg, nil
}

// initLogging applies the flag values, falling back to the config.
func initLogging(cfg *config.Config) error {
	levelName, format := cfg.Log.Level, cfg.Log.Format
	if logLevel != "" {
		levelName = logLevel
	}
	if logFormat != "" {
		format = logFormat
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return err
	}
	logging.Init(level, format)
	return nil
}

func loadServices(ctx context.Context) (*wiring.AppServices, error) {
	root, err := getProjectRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	if err := initLogging(cfg); err != nil {
		return nil, err
	}
	return wiring.BuildFromConfig(ctx, root, cfg, providerResolver)
}
