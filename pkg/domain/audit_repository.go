package domain

import "github.com/felixgeelhaar/autorefine/pkg/domain/refinement"

// AuditRepository handles persistence of events, usage statistics and
// finished run records.
type AuditRepository interface {
	RecordEvent(event Event) error
	LoadEvents() ([]Event, error)
	UpdateUsage(stats UsageStats) error
	LoadUsage() (*UsageStats, error)
	AppendRun(result *refinement.Result) error
	LoadRuns() ([]refinement.Result, error)
}
