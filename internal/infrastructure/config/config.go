// Package config loads the workspace configuration from
// .autorefine/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/autorefine/pkg/domain/artifact"
	"github.com/felixgeelhaar/autorefine/pkg/domain/evaluation"
	"github.com/felixgeelhaar/autorefine/pkg/domain/refinement"
	"github.com/felixgeelhaar/autorefine/pkg/storage"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Store backends.
const (
	BackendFilesystem = "filesystem"
	BackendRedis      = "redis"
)

// Config is the full workspace configuration.
type Config struct {
	TargetScore          float64             `yaml:"target_score"`
	MaxRounds            int                 `yaml:"max_rounds"`
	CorruptionGuardRatio float64             `yaml:"corruption_guard_ratio"`
	MaxSubScore          float64             `yaml:"max_sub_score"`
	MaxScore             float64             `yaml:"max_score"`
	AI                   AIConfig            `yaml:"ai"`
	Store                StoreConfig         `yaml:"store"`
	Log                  LogConfig           `yaml:"log"`
	Files                []artifact.FileSpec `yaml:"files"`
	Scaffold             map[string]string   `yaml:"scaffold,omitempty"`
}

// AIConfig selects the generation backend and its request parameters.
type AIConfig struct {
	Provider     string  `yaml:"provider"`
	Model        string  `yaml:"model"`
	BaseURL      string  `yaml:"base_url,omitempty"`
	APIKeyEnv    string  `yaml:"api_key_env,omitempty"`
	SystemPrompt string  `yaml:"system_prompt,omitempty"`
	Temperature  float32 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
	MaxRetries   int     `yaml:"max_retries,omitempty"`
	RetryDelayMs int     `yaml:"retry_delay_ms,omitempty"`
	TimeoutSec   int     `yaml:"timeout_sec,omitempty"`
}

type StoreConfig struct {
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis,omitempty"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr,omitempty"`
	Password  string `yaml:"password,omitempty"`
	DB        int    `yaml:"db,omitempty"`
	Namespace string `yaml:"namespace,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Path returns the config file location for a workspace root.
func Path(root string) (string, error) {
	return storage.NewFilesystemRepository(root).ResolvePath(storage.ConfigFile)
}

// Load reads the workspace config. A missing file yields DefaultConfig.
func Load(root string) (*Config, error) {
	path, err := Path(root)
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads a config file from an explicit path. Values absent from the
// file keep their defaults.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	// #nosec G304 -- Path is chosen by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to the workspace config file.
func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	path, err := Path(root)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// Validate checks every bound. Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := c.Refinement().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.MaxSubScore <= 0 {
		return fmt.Errorf("%w: max_sub_score must be positive", ErrInvalidConfig)
	}
	if c.MaxScore <= 0 {
		return fmt.Errorf("%w: max_score must be positive", ErrInvalidConfig)
	}
	if c.TargetScore > c.MaxScore {
		return fmt.Errorf("%w: target_score %g exceeds max_score %g", ErrInvalidConfig, c.TargetScore, c.MaxScore)
	}
	if _, err := c.Layout(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	switch c.Store.Backend {
	case BackendFilesystem:
	case BackendRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("%w: store.redis.addr is required for the redis backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, c.Store.Backend)
	}

	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Log.Format)
	}

	if c.AI.Temperature < 0 {
		return fmt.Errorf("%w: ai.temperature must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Layout builds the tracked file layout.
func (c *Config) Layout() (*artifact.Layout, error) {
	return artifact.NewLayout(c.Files)
}

// Refinement returns the controller bounds.
func (c *Config) Refinement() refinement.Config {
	return refinement.Config{
		TargetScore:          c.TargetScore,
		MaxRounds:            c.MaxRounds,
		CorruptionGuardRatio: c.CorruptionGuardRatio,
	}
}

// Limits returns the score ranges the evaluator enforces.
func (c *Config) Limits() evaluation.Limits {
	return evaluation.Limits{MaxSubScore: c.MaxSubScore, MaxScore: c.MaxScore}
}
