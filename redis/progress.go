package redis

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/fwojciec/docgap"
	"github.com/redis/go-redis/v9"
)

// ChannelPrefix precedes the session ID in progress channel names.
const ChannelPrefix = "docgap:progress:"

// Channel returns the pub/sub channel carrying a session's progress events.
func Channel(sessionID string) string {
	return ChannelPrefix + sessionID
}

var _ docgap.ProgressPublisher = (*ProgressPublisher)(nil)

// ProgressPublisher publishes progress events as JSON on a per-session
// channel. Subscribers that are not listening miss the event.
type ProgressPublisher struct {
	client *redis.Client
	logger *slog.Logger
}

// NewProgressPublisher creates a new ProgressPublisher. A nil logger
// discards publish failures.
func NewProgressPublisher(client *redis.Client, logger *slog.Logger) *ProgressPublisher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ProgressPublisher{client: client, logger: logger}
}

func (p *ProgressPublisher) Publish(ctx context.Context, sessionID string, event docgap.ProgressEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("encode progress event", "session", sessionID, "err", err)
		return
	}
	if err := p.client.Publish(ctx, Channel(sessionID), data).Err(); err != nil {
		p.logger.Warn("publish progress event", "session", sessionID, "type", event.Type, "err", err)
	}
}

// Subscribe delivers the progress events of a session until ctx is done.
// The returned channel is closed when the subscription ends.
func Subscribe(ctx context.Context, client *redis.Client, sessionID string) (<-chan docgap.ProgressEvent, error) {
	sub := client.Subscribe(ctx, Channel(sessionID))
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}

	out := make(chan docgap.ProgressEvent)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event docgap.ProgressEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
