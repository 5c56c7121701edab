package docgap

import (
	"context"
	"time"
)

// ProgressEventType names a step of a validation run.
type ProgressEventType string

const (
	ProgressStarted        ProgressEventType = "started"
	ProgressIssueValidated ProgressEventType = "issue-validated"
	ProgressHealthChecked  ProgressEventType = "health-checked"
	ProgressCompleted      ProgressEventType = "completed"
	ProgressFailed         ProgressEventType = "failed"
)

// ProgressEvent reports a step of a validation run to observers.
type ProgressEvent struct {
	Type      ProgressEventType `json:"type"`
	Message   string            `json:"message"`
	IssueID   string            `json:"issueId,omitempty"`
	Status    Status            `json:"status,omitempty"`
	Completed int               `json:"completed"`
	Total     int               `json:"total"`
	Timestamp time.Time         `json:"timestamp"`
}

// ProgressPublisher delivers progress events for a session.
// Delivery is best-effort; failures are handled by the implementation.
type ProgressPublisher interface {
	Publish(ctx context.Context, sessionID string, event ProgressEvent)
}
