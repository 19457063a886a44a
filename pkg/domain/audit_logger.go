package domain

// AuditLogger records auditable actions. Services depend on this interface
// rather than on a concrete store.
type AuditLogger interface {
	Log(action string, actor string, metadata map[string]interface{}) error
}

// RunAuditLogger scopes audit events to one refinement run.
type RunAuditLogger interface {
	AuditLogger
	LogRun(runID, action, actor string, metadata map[string]interface{}) error
}

// NopAuditLogger discards every event.
type NopAuditLogger struct{}

func (NopAuditLogger) Log(string, string, map[string]interface{}) error { return nil }

func (NopAuditLogger) LogRun(string, string, string, map[string]interface{}) error { return nil }
