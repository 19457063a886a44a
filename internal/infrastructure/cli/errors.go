package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/autorefine/internal/infrastructure/config"
	"github.com/felixgeelhaar/autorefine/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/autorefine/pkg/domain/artifact"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	switch {
	case errors.Is(err, config.ErrInvalidConfig):
		return NewCLIError("invalid configuration", "Fix .autorefine/config.yaml or run 'autorefine init --force' to rewrite the defaults", err)
	case errors.Is(err, artifact.ErrNoBackup):
		return NewCLIError("no backup to restore", "A backup is taken before every patch; run 'autorefine refine' first", err)
	case errors.Is(err, wiring.ErrStoreUnavailable):
		return NewCLIError("artifact store unavailable", "Check store.redis.addr or set AUTOREFINE_REDIS_ADDR", err)
	case errors.Is(err, context.Canceled):
		e := NewCLIError("interrupted", "Files may hold a partial patch; run 'autorefine restore' to roll back", err)
		e.ExitCode = 130
		return e
	}

	return err
}
