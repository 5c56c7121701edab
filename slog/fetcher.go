package slog

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/docgap"
)

var _ docgap.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher logs page fetches. Successful fetches are logged at debug
// level because a validation run fetches many pages; failures are warnings
// since callers degrade them to empty content without reporting them.
type LoggingFetcher struct {
	next   docgap.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next docgap.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, pageURL string) (html string, err error) {
	defer func(begin time.Time) {
		level := slog.LevelDebug
		attrs := []any{
			"host", host(pageURL),
			"url", pageURL,
			"bytes", len(html),
			"duration", time.Since(begin),
		}
		if err != nil {
			level = slog.LevelWarn
			attrs = append(attrs, "err", err)
		}
		f.logger.Log(ctx, level, "page fetched", attrs...)
	}(time.Now())
	return f.next.Fetch(ctx, pageURL)
}

// Close closes the wrapped fetcher and logs any failure.
func (f *LoggingFetcher) Close() error {
	err := f.next.Close()
	if err != nil {
		f.logger.Error("fetcher close failed", "err", err)
	}
	return err
}

func host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
