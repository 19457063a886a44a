package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/autorefine/pkg/domain"
	"github.com/felixgeelhaar/fortify/retry"
)

const MetaDir = ".autorefine"
const ConfigFile = "config.yaml"
const EventsFile = "events.jsonl"
const RunsFile = "runs.jsonl"
const UsageFile = "usage.json"

// FilesystemRepository keeps run metadata (audit trail, usage, run records)
// under <root>/.autorefine.
type FilesystemRepository struct {
	root        string
	retryConfig retry.Config
}

// Compile-time check that FilesystemRepository implements AuditRepository
var _ domain.AuditRepository = (*FilesystemRepository)(nil)

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// ResolvePath ensures the path is a direct child of the .autorefine directory.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := filepath.Join(r.root, MetaDir)
	cleanPath := filepath.Clean(filepath.Join(baseDir, filename))

	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	path := filepath.Join(r.root, MetaDir)
	// G301: Use 0700 for directories
	if err := os.MkdirAll(path, 0700); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", MetaDir, err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(r.root, MetaDir))
	return err == nil
}

func (r *FilesystemRepository) UpdateUsage(stats domain.UsageStats) error {
	if err := r.Initialize(); err != nil {
		return err
	}
	path, err := r.ResolvePath(UsageFile)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal usage stats: %w", err)
	}

	// G306: Use 0600 for files
	return os.WriteFile(path, data, 0600)
}

func (r *FilesystemRepository) LoadUsage() (*domain.UsageStats, error) {
	path, err := r.ResolvePath(UsageFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &domain.UsageStats{ProviderStats: map[string]int{}}, nil
		}
		return nil, fmt.Errorf("failed to read usage stats: %w", err)
	}

	var stats domain.UsageStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal usage stats: %w", err)
	}
	if stats.ProviderStats == nil {
		stats.ProviderStats = map[string]int{}
	}

	return &stats, nil
}
