package artifact

import (
	"context"
	"errors"
)

// Store persists artifact content and its single backup snapshot. It is the
// single writer of record for tracked files.
type Store interface {
	// Read returns stored content, or "" when the key is absent or unreadable.
	Read(ctx context.Context, key Key) string
	// Write persists text unconditionally.
	Write(ctx context.Context, key Key, text string) error
	// SafeWrite writes newText only if it passes CheckReplacement against
	// oldText. It reports whether the write was applied.
	SafeWrite(ctx context.Context, key Key, oldText, newText string) (bool, error)
	// Backup replaces the backup area with the current content of keys.
	Backup(ctx context.Context, keys []Key) error
	// Restore overwrites every backed-up key with its snapshot.
	Restore(ctx context.Context) error
	// Keys returns the tracked keys in layout order.
	Keys() []Key
}

// Snapshot reads every tracked key into an Artifact.
func Snapshot(ctx context.Context, s Store) Artifact {
	out := make(Artifact)
	for _, k := range s.Keys() {
		out[k] = s.Read(ctx, k)
	}
	return out
}

// ErrNoBackup is returned by Restore when no snapshot has been taken.
var ErrNoBackup = errors.New("no backup snapshot available")
