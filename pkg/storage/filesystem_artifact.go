package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/autorefine/pkg/domain/artifact"
	"github.com/felixgeelhaar/fortify/retry"
)

// BackupDir holds flattened copies of the tracked files.
const BackupDir = ".backup_refine"

// absentManifest lists, one key per line, the backed-up keys that had no
// file at backup time. Restore removes them.
const absentManifest = ".absent"

// FilesystemStore keeps tracked files under a workspace root and a single
// backup snapshot in <root>/.backup_refine.
type FilesystemStore struct {
	root        string
	layout      *artifact.Layout
	ratio       float64
	retryConfig retry.Config
	logger      *slog.Logger
}

// Compile-time check that FilesystemStore implements artifact.Store
var _ artifact.Store = (*FilesystemStore)(nil)

// NewFilesystemStore creates a store rooted at root. A non-positive ratio
// falls back to artifact.DefaultCorruptionGuardRatio.
func NewFilesystemStore(root string, layout *artifact.Layout, ratio float64, logger *slog.Logger) *FilesystemStore {
	if ratio <= 0 {
		ratio = artifact.DefaultCorruptionGuardRatio
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FilesystemStore{
		root:   root,
		layout: layout,
		ratio:  ratio,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
		logger: logger,
	}
}

// Root returns the workspace root directory.
func (s *FilesystemStore) Root() string {
	return s.root
}

// Layout returns the tracked file layout.
func (s *FilesystemStore) Layout() *artifact.Layout {
	return s.layout
}

func (s *FilesystemStore) Keys() []artifact.Key {
	return s.layout.Keys()
}

// FilePath returns the absolute path of a tracked key.
func (s *FilesystemStore) FilePath(key artifact.Key) (string, error) {
	rel, ok := s.layout.Path(key)
	if !ok {
		return "", fmt.Errorf("untracked file key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}

func (s *FilesystemStore) backupPath(key artifact.Key) (string, error) {
	rel, ok := s.layout.Path(key)
	if !ok {
		return "", fmt.Errorf("untracked file key %q", key)
	}
	return filepath.Join(s.root, BackupDir, artifact.Flatten(rel)), nil
}

func (s *FilesystemStore) Read(ctx context.Context, key artifact.Key) string {
	path, err := s.FilePath(key)
	if err != nil {
		s.logger.Warn("read of untracked key", "key", key)
		return ""
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return ""
	}

	retryer := retry.New[[]byte](s.retryConfig)
	data, err := retryer.Do(ctx, func(ctx context.Context) ([]byte, error) {
		// #nosec G304 -- Path is derived from the validated layout
		return os.ReadFile(path)
	})
	if err != nil {
		s.logger.Warn("read failed, treating as empty", "key", key, "error", err)
		return ""
	}
	return string(data)
}

func (s *FilesystemStore) Write(ctx context.Context, key artifact.Key, text string) error {
	path, err := s.FilePath(key)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, []byte(text)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *FilesystemStore) SafeWrite(ctx context.Context, key artifact.Key, oldText, newText string) (bool, error) {
	if err := artifact.CheckReplacement(oldText, newText, s.ratio); err != nil {
		s.logger.Warn("skipped write", "key", key, "reason", err)
		return false, nil
	}
	if err := s.Write(ctx, key, newText); err != nil {
		return false, err
	}
	return true, nil
}

// WriteScaffold writes an untracked support file below the root.
func (s *FilesystemStore) WriteScaffold(ctx context.Context, rel, content string) error {
	clean := path.Clean(filepath.ToSlash(rel))
	if rel == "" || path.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return fmt.Errorf("scaffold path %q must be workspace relative", rel)
	}
	return writeFileAtomic(filepath.Join(s.root, filepath.FromSlash(clean)), []byte(content))
}

// Backup builds the new snapshot beside the old one and swaps it in, so a
// failed backup leaves the previous snapshot intact.
func (s *FilesystemStore) Backup(ctx context.Context, keys []artifact.Key) error {
	final := filepath.Join(s.root, BackupDir)
	staging := final + ".tmp"

	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("clear backup staging: %w", err)
	}
	if err := os.MkdirAll(staging, 0700); err != nil {
		return fmt.Errorf("create backup staging: %w", err)
	}

	var absent []string
	for _, key := range keys {
		src, err := s.FilePath(key)
		if err != nil {
			return err
		}
		// #nosec G304 -- Path is derived from the validated layout
		data, err := os.ReadFile(src)
		if os.IsNotExist(err) {
			absent = append(absent, string(key))
			continue
		}
		if err != nil {
			return fmt.Errorf("backup %s: %w", key, err)
		}
		rel, _ := s.layout.Path(key)
		if err := os.WriteFile(filepath.Join(staging, artifact.Flatten(rel)), data, 0600); err != nil {
			return fmt.Errorf("backup %s: %w", key, err)
		}
	}

	if len(absent) > 0 {
		manifest := strings.Join(absent, "\n") + "\n"
		if err := os.WriteFile(filepath.Join(staging, absentManifest), []byte(manifest), 0600); err != nil {
			return fmt.Errorf("backup absent keys: %w", err)
		}
	}

	if err := os.RemoveAll(final); err != nil {
		return fmt.Errorf("replace backup: %w", err)
	}
	if err := os.Rename(staging, final); err != nil {
		return fmt.Errorf("replace backup: %w", err)
	}
	return nil
}

func (s *FilesystemStore) Restore(ctx context.Context) error {
	dir := filepath.Join(s.root, BackupDir)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return artifact.ErrNoBackup
	}

	absent, err := s.readAbsent(dir)
	if err != nil {
		return err
	}

	restored, removed := 0, 0
	for _, key := range s.layout.Keys() {
		if absent[key] {
			path, err := s.FilePath(key)
			if err != nil {
				return err
			}
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("restore %s: %w", key, err)
			}
			removed++
			continue
		}
		src, err := s.backupPath(key)
		if err != nil {
			return err
		}
		// #nosec G304 -- Path is derived from the validated layout
		data, err := os.ReadFile(src)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("restore %s: %w", key, err)
		}
		if err := s.Write(ctx, key, string(data)); err != nil {
			return fmt.Errorf("restore %s: %w", key, err)
		}
		restored++
	}

	s.logger.Info("restored last backup", "files", restored, "removed", removed)
	return nil
}

func (s *FilesystemStore) readAbsent(dir string) (map[artifact.Key]bool, error) {
	// #nosec G304 -- Path is below the backup directory
	data, err := os.ReadFile(filepath.Join(dir, absentManifest))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read absent keys: %w", err)
	}
	absent := make(map[artifact.Key]bool)
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			absent[artifact.Key(line)] = true
		}
	}
	return absent, nil
}

// writeFileAtomic replaces path via a temp file in the same directory.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
