package wiring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/felixgeelhaar/autorefine/internal/infrastructure/config"
	"github.com/felixgeelhaar/autorefine/pkg/application"
	"github.com/felixgeelhaar/autorefine/pkg/domain/artifact"
	"github.com/felixgeelhaar/autorefine/pkg/storage"
	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable is returned when the configured backend cannot be reached.
var ErrStoreUnavailable = errors.New("artifact store unavailable")

// ArtifactStore is a tracked-file store that can also lay down scaffold files.
type ArtifactStore interface {
	artifact.Store
	application.ScaffoldWriter
}

// ApplyEnvOverrides lets AUTOREFINE_STORE and AUTOREFINE_REDIS_ADDR replace
// the store settings of a loaded config.
func ApplyEnvOverrides(cfg *config.Config) {
	if backend := os.Getenv("AUTOREFINE_STORE"); backend != "" {
		cfg.Store.Backend = backend
	}
	if addr := os.Getenv("AUTOREFINE_REDIS_ADDR"); addr != "" {
		cfg.Store.Redis.Addr = addr
	}
}

// OpenStore builds the configured store backend. The returned close function
// is never nil.
func OpenStore(ctx context.Context, cfg *config.Config, root string, layout *artifact.Layout, logger *slog.Logger) (ArtifactStore, func() error, error) {
	switch cfg.Store.Backend {
	case "", config.BackendFilesystem:
		return storage.NewFilesystemStore(root, layout, cfg.CorruptionGuardRatio, logger), func() error { return nil }, nil

	case config.BackendRedis:
		rc := cfg.Store.Redis
		store, err := storage.NewRedisStore(&redis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		}, rc.Namespace, layout, cfg.CorruptionGuardRatio, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("%w: connect to redis at %s: %v", ErrStoreUnavailable, rc.Addr, err)
		}
		return store, store.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
