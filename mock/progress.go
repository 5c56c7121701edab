package mock

import (
	"context"

	"github.com/fwojciec/docgap"
)

var _ docgap.ProgressPublisher = (*ProgressPublisher)(nil)

// ProgressPublisher is a mock implementation of docgap.ProgressPublisher.
type ProgressPublisher struct {
	PublishFn func(ctx context.Context, sessionID string, event docgap.ProgressEvent)
}

func (p *ProgressPublisher) Publish(ctx context.Context, sessionID string, event docgap.ProgressEvent) {
	p.PublishFn(ctx, sessionID, event)
}
