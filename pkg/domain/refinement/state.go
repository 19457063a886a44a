// Package refinement holds the state of a bounded refine-evaluate run.
package refinement

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/autorefine/pkg/domain/artifact"
	"github.com/felixgeelhaar/autorefine/pkg/domain/evaluation"
)

// Phase is the lifecycle position of a run.
type Phase string

const (
	PhaseRunning   Phase = "running"
	PhaseConverged Phase = "converged"
	PhaseRegressed Phase = "regressed_rolled_back"
	PhaseExhausted Phase = "exhausted"
)

// IsTerminal reports whether p ends a run.
func (p Phase) IsTerminal() bool {
	switch p {
	case PhaseConverged, PhaseRegressed, PhaseExhausted:
		return true
	}
	return false
}

// Config bounds a run.
type Config struct {
	TargetScore          float64
	MaxRounds            int
	CorruptionGuardRatio float64
}

// DefaultConfig returns target 36, five rounds and a 0.4 guard ratio.
func DefaultConfig() Config {
	return Config{
		TargetScore:          36,
		MaxRounds:            5,
		CorruptionGuardRatio: artifact.DefaultCorruptionGuardRatio,
	}
}

// Validate checks the bounds.
func (c Config) Validate() error {
	if c.MaxRounds <= 0 {
		return fmt.Errorf("max rounds must be positive, got %d", c.MaxRounds)
	}
	if c.TargetScore < 0 {
		return fmt.Errorf("target score must not be negative, got %g", c.TargetScore)
	}
	if c.CorruptionGuardRatio <= 0 || c.CorruptionGuardRatio > 1 {
		return fmt.Errorf("corruption guard ratio must be in (0,1], got %g", c.CorruptionGuardRatio)
	}
	return nil
}

// RoundRecord is the audit entry of one round.
type RoundRecord struct {
	Round     int               `json:"round"`
	Score     float64           `json:"score"`
	BestAfter float64           `json:"best_after"`
	Report    evaluation.Report `json:"report"`
	Applied   []artifact.Key    `json:"applied,omitempty"`
	Rejected  []artifact.Key    `json:"rejected,omitempty"`
}

// State is owned by a single controller run.
type State struct {
	RunID     string
	Round     int
	BestScore float64
	Backup    artifact.Artifact
	History   []RoundRecord

	machine *PhaseMachine
}

// NewState starts a run in the running phase with no best score.
func NewState(runID string) (*State, error) {
	m, err := NewPhaseMachine(runID)
	if err != nil {
		return nil, err
	}
	return &State{
		RunID:     runID,
		BestScore: evaluation.UnknownScore,
		machine:   m,
	}, nil
}

// Phase returns the current phase.
func (s *State) Phase() Phase {
	return s.machine.Current()
}

// HasBest reports whether a parsable score has been observed.
func (s *State) HasBest() bool {
	return s.BestScore != evaluation.UnknownScore
}

// IsRegression reports whether score falls below the best seen so far.
func (s *State) IsRegression(score float64) bool {
	return s.HasBest() && score < s.BestScore
}

// Observe folds score into the best-so-far.
func (s *State) Observe(score float64) {
	if score > s.BestScore {
		s.BestScore = score
	}
}

// Converge, Regress and Exhaust move the run to a terminal phase.
func (s *State) Converge() error { return s.machine.Transition(EventConverge) }
func (s *State) Regress() error  { return s.machine.Transition(EventRegress) }
func (s *State) Exhaust() error  { return s.machine.Transition(EventExhaust) }

// Result is what a caller sees once a run stops.
type Result struct {
	RunID      string        `json:"run_id"`
	Outcome    Phase         `json:"outcome"`
	Rounds     int           `json:"rounds"`
	BestScore  float64       `json:"best_score"`
	FinalScore float64       `json:"final_score"`
	History    []RoundRecord `json:"history"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Result snapshots the state.
func (s *State) Result(startedAt time.Time) *Result {
	final := evaluation.UnknownScore
	if n := len(s.History); n > 0 {
		final = s.History[n-1].Score
	}
	history := make([]RoundRecord, len(s.History))
	copy(history, s.History)
	return &Result{
		RunID:      s.RunID,
		Outcome:    s.Phase(),
		Rounds:     s.Round,
		BestScore:  s.BestScore,
		FinalScore: final,
		History:    history,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}
}
