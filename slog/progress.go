package slog

import (
	"context"
	"log/slog"

	"github.com/fwojciec/docgap"
)

var _ docgap.ProgressPublisher = (*ProgressLogger)(nil)

// ProgressLogger logs progress events and forwards them to next, if set.
type ProgressLogger struct {
	next   docgap.ProgressPublisher
	logger *slog.Logger
}

// NewProgressLogger creates a new ProgressLogger. next may be nil.
func NewProgressLogger(next docgap.ProgressPublisher, logger *slog.Logger) *ProgressLogger {
	return &ProgressLogger{next: next, logger: logger}
}

func (p *ProgressLogger) Publish(ctx context.Context, sessionID string, event docgap.ProgressEvent) {
	level := slog.LevelInfo
	if event.Type == docgap.ProgressFailed {
		level = slog.LevelError
	}
	attrs := []any{
		"session", sessionID,
		"type", string(event.Type),
		"completed", event.Completed,
		"total", event.Total,
	}
	if event.IssueID != "" {
		attrs = append(attrs, "issue", event.IssueID, "status", string(event.Status))
	}
	p.logger.Log(ctx, level, event.Message, attrs...)

	if p.next != nil {
		p.next.Publish(ctx, sessionID, event)
	}
}
