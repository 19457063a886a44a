package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/autorefine/pkg/domain/artifact"
	"github.com/redis/go-redis/v9"
)

// Redis key helpers
//
// All keys are namespaced so several workspaces can share one Redis server.
//
// Content key: autorefine:{namespace}:artifact:{key}
// Backup hash: autorefine:{namespace}:backup   (field = key, value = snapshot,
//              plus a snapshotMarker field so an empty snapshot still exists
//              and an absentPrefix field per key that had no content)

const (
	snapshotMarker = "__snapshot_at"
	absentPrefix   = "__absent:"
)

// ArtifactKey returns the Redis key holding a tracked file's content.
func ArtifactKey(namespace string, key artifact.Key) string {
	return fmt.Sprintf("autorefine:%s:artifact:%s", namespace, key)
}

// BackupKey returns the Redis hash holding the backup snapshot.
func BackupKey(namespace string) string {
	return fmt.Sprintf("autorefine:%s:backup", namespace)
}

// ScaffoldKey returns the Redis key holding an untracked support file.
func ScaffoldKey(namespace, rel string) string {
	return fmt.Sprintf("autorefine:%s:scaffold:%s", namespace, rel)
}

// RedisStore keeps artifact content in Redis strings and the backup snapshot
// in a single hash. Backup and restore run in MULTI/EXEC transactions.
type RedisStore struct {
	rdb       *redis.Client
	namespace string
	layout    *artifact.Layout
	ratio     float64
	logger    *slog.Logger
}

// Compile-time check that RedisStore implements artifact.Store
var _ artifact.Store = (*RedisStore)(nil)

// NewRedisStore creates a store for the given namespace.
func NewRedisStore(opts *redis.Options, namespace string, layout *artifact.Layout, ratio float64, logger *slog.Logger) (*RedisStore, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}
	if layout == nil {
		return nil, fmt.Errorf("layout cannot be nil")
	}
	if ratio <= 0 {
		ratio = artifact.DefaultCorruptionGuardRatio
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{
		rdb:       redis.NewClient(opts),
		namespace: namespace,
		layout:    layout,
		ratio:     ratio,
		logger:    logger,
	}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// Ping verifies Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Keys() []artifact.Key {
	return s.layout.Keys()
}

func (s *RedisStore) Read(ctx context.Context, key artifact.Key) string {
	if !s.layout.Has(key) {
		s.logger.Warn("read of untracked key", "key", key)
		return ""
	}
	val, err := s.rdb.Get(ctx, ArtifactKey(s.namespace, key)).Result()
	if errors.Is(err, redis.Nil) {
		return ""
	}
	if err != nil {
		s.logger.Warn("read failed, treating as empty", "key", key, "error", err)
		return ""
	}
	return val
}

func (s *RedisStore) Write(ctx context.Context, key artifact.Key, text string) error {
	if !s.layout.Has(key) {
		return fmt.Errorf("untracked file key %q", key)
	}
	if err := s.rdb.Set(ctx, ArtifactKey(s.namespace, key), text, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s to Redis: %w", key, err)
	}
	return nil
}

func (s *RedisStore) SafeWrite(ctx context.Context, key artifact.Key, oldText, newText string) (bool, error) {
	if err := artifact.CheckReplacement(oldText, newText, s.ratio); err != nil {
		s.logger.Warn("skipped write", "key", key, "reason", err)
		return false, nil
	}
	if err := s.Write(ctx, key, newText); err != nil {
		return false, err
	}
	return true, nil
}

// WriteScaffold stores an untracked support file.
func (s *RedisStore) WriteScaffold(ctx context.Context, rel, content string) error {
	if rel == "" {
		return fmt.Errorf("scaffold path cannot be empty")
	}
	if err := s.rdb.Set(ctx, ScaffoldKey(s.namespace, rel), content, 0).Err(); err != nil {
		return fmt.Errorf("failed to write scaffold %s to Redis: %w", rel, err)
	}
	return nil
}

func (s *RedisStore) Backup(ctx context.Context, keys []artifact.Key) error {
	snapshot := map[string]interface{}{
		snapshotMarker: time.Now().UTC().Format(time.RFC3339Nano),
	}
	for _, key := range keys {
		if !s.layout.Has(key) {
			return fmt.Errorf("untracked file key %q", key)
		}
		val, err := s.rdb.Get(ctx, ArtifactKey(s.namespace, key)).Result()
		if errors.Is(err, redis.Nil) {
			snapshot[absentPrefix+string(key)] = "1"
			continue
		}
		if err != nil {
			return fmt.Errorf("backup %s: %w", key, err)
		}
		snapshot[string(key)] = val
	}

	backupKey := BackupKey(s.namespace)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, backupKey)
		pipe.HSet(ctx, backupKey, snapshot)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write backup to Redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Restore(ctx context.Context) error {
	backupKey := BackupKey(s.namespace)
	exists, err := s.rdb.Exists(ctx, backupKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read backup from Redis: %w", err)
	}
	if exists == 0 {
		return artifact.ErrNoBackup
	}

	snapshot, err := s.rdb.HGetAll(ctx, backupKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read backup from Redis: %w", err)
	}

	restored, removed := 0, 0
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range s.layout.Keys() {
			if _, ok := snapshot[absentPrefix+string(key)]; ok {
				pipe.Del(ctx, ArtifactKey(s.namespace, key))
				removed++
				continue
			}
			val, ok := snapshot[string(key)]
			if !ok {
				continue
			}
			pipe.Set(ctx, ArtifactKey(s.namespace, key), val, 0)
			restored++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to restore backup in Redis: %w", err)
	}

	s.logger.Info("restored last backup", "files", restored, "removed", removed)
	return nil
}
