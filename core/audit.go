package core

import "context"

// AuditEvent is a structured trace of a learner-facing action.
type AuditEvent struct {
	ActionCode string
	Category   string
	ActorID    string
	TargetID   string
	Message    string
	Params     map[string]interface{}
}

// AuditSink records audit events. Recording is best-effort: callers swallow
// the returned error after logging it locally.
type AuditSink interface {
	Record(ctx context.Context, evt AuditEvent) error
}
