package application

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/autorefine/pkg/domain"
	"github.com/google/uuid"
)

type AuditService struct {
	repo domain.AuditRepository
}

// Compile-time check that AuditService implements RunAuditLogger
var _ domain.RunAuditLogger = (*AuditService)(nil)

func NewAuditService(repo domain.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

func (s *AuditService) Log(action string, actor string, metadata map[string]interface{}) error {
	return s.LogRun("", action, actor, metadata)
}

// LogRun appends an event tied to a refinement run.
func (s *AuditService) LogRun(runID, action, actor string, metadata map[string]interface{}) error {
	// Get the latest event to continue the hash chain
	events, _ := s.repo.LoadEvents()
	prevHash := ""
	if len(events) > 0 {
		prevHash = events[len(events)-1].Hash
	}

	event := domain.Event{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Action:    action,
		Actor:     actor,
		RunID:     runID,
		Metadata:  metadata,
		PrevHash:  prevHash,
	}
	event.Hash = event.CalculateHash()

	return s.repo.RecordEvent(event)
}

func (s *AuditService) GetTimeline() ([]domain.Event, error) {
	return s.repo.LoadEvents()
}

// GetRunTimeline returns the events of one run in order.
func (s *AuditService) GetRunTimeline(runID string) ([]domain.Event, error) {
	events, err := s.repo.LoadEvents()
	if err != nil {
		return nil, err
	}
	var out []domain.Event
	for _, e := range events {
		if e.RunID == runID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *AuditService) VerifyIntegrity() ([]string, error) {
	events, err := s.repo.LoadEvents()
	if err != nil {
		return nil, err
	}

	var violations []string
	lastHash := ""

	for i, e := range events {
		if e.PrevHash != lastHash {
			violations = append(violations, fmt.Sprintf("Event %d (%s): PrevHash mismatch. Audit trail broken.", i, e.ID))
		}

		expected := e.CalculateHash()
		if e.Hash != expected {
			violations = append(violations, fmt.Sprintf("Event %d (%s): Content hash mismatch. Possible tampering.", i, e.ID))
		}

		lastHash = e.Hash
	}

	return violations, nil
}
