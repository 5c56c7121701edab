package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docgap"
)

var _ docgap.ObjectStore = (*LoggingObjectStore)(nil)

// LoggingObjectStore wraps an ObjectStore with logging. Misses are logged
// as hit=false rather than as errors.
type LoggingObjectStore struct {
	next   docgap.ObjectStore
	logger *slog.Logger
}

// NewLoggingObjectStore creates a new LoggingObjectStore.
func NewLoggingObjectStore(next docgap.ObjectStore, logger *slog.Logger) *LoggingObjectStore {
	return &LoggingObjectStore{next: next, logger: logger}
}

func (s *LoggingObjectStore) Get(ctx context.Context, key string) (data []byte, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"key", key,
			"hit", err == nil,
			"bytes", len(data),
			"duration", time.Since(begin),
		}
		if err != nil && docgap.ErrorCode(err) != docgap.ENOTFOUND {
			attrs = append(attrs, "err", err)
		}
		s.logger.Debug("store get", attrs...)
	}(time.Now())
	return s.next.Get(ctx, key)
}

func (s *LoggingObjectStore) Put(ctx context.Context, key string, data []byte) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("store put",
			"key", key,
			"bytes", len(data),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Put(ctx, key, data)
}

func (s *LoggingObjectStore) Delete(ctx context.Context, key string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("store delete",
			"key", key,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Delete(ctx, key)
}
