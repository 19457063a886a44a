package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/felixgeelhaar/autorefine/pkg/domain"
	"github.com/felixgeelhaar/autorefine/pkg/domain/refinement"
	"github.com/felixgeelhaar/fortify/retry"
)

func (r *FilesystemRepository) RecordEvent(event domain.Event) error {
	return r.appendLine(EventsFile, event)
}

func (r *FilesystemRepository) LoadEvents() ([]domain.Event, error) {
	var events []domain.Event
	err := r.readLines(EventsFile, func(line []byte) {
		var e domain.Event
		if err := json.Unmarshal(line, &e); err != nil {
			return // Skip malformed lines
		}
		events = append(events, e)
	})
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []domain.Event{}
	}
	return events, nil
}

// AppendRun persists a finished run for later inspection.
func (r *FilesystemRepository) AppendRun(result *refinement.Result) error {
	if result == nil {
		return fmt.Errorf("run result is nil")
	}
	return r.appendLine(RunsFile, result)
}

// LoadRuns returns every recorded run, oldest first.
func (r *FilesystemRepository) LoadRuns() ([]refinement.Result, error) {
	runs := []refinement.Result{}
	err := r.readLines(RunsFile, func(line []byte) {
		var res refinement.Result
		if err := json.Unmarshal(line, &res); err != nil {
			return
		}
		runs = append(runs, res)
	})
	return runs, err
}

func (r *FilesystemRepository) appendLine(filename string, v interface{}) error {
	if err := r.Initialize(); err != nil {
		return err
	}
	path, err := r.ResolvePath(filename)
	if err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s entry: %w", filename, err)
	}
	data = append(data, '\n')

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write %s entry: %w", filename, err)
	}

	return nil
}

func (r *FilesystemRepository) readLines(filename string, each func(line []byte)) error {
	path, err := r.ResolvePath(filename)
	if err != nil {
		return err
	}

	retryer := retry.New[[]byte](r.retryConfig)
	data, err := retryer.Do(context.Background(), func(ctx context.Context) ([]byte, error) {
		// #nosec G304 -- Path is resolved and validated via ResolvePath
		b, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil, nil
		}
		return b, err
	})
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		each(line)
	}
	return nil
}
