// Package slog decorates docgap services with structured logging.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docgap"
)

var _ docgap.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService logs every sitemap read with its URL count.
type LoggingSitemapService struct {
	next   docgap.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next docgap.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// FetchSitemap delegates to the wrapped service and logs the operation.
func (s *LoggingSitemapService) FetchSitemap(ctx context.Context, sitemapURL string) (urls []string, err error) {
	defer func(begin time.Time) {
		s.log(ctx, "sitemap fetched", sitemapURL, len(urls), begin, err)
	}(time.Now())
	return s.next.FetchSitemap(ctx, sitemapURL)
}

// DiscoverURLs delegates to the wrapped service and logs the operation.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, siteURL string) (urls []string, err error) {
	defer func(begin time.Time) {
		s.log(ctx, "sitemap discovered", siteURL, len(urls), begin, err)
	}(time.Now())
	return s.next.DiscoverURLs(ctx, siteURL)
}

// log reports failures at warn level; sitemap errors degrade retrieval
// rather than abort it.
func (s *LoggingSitemapService) log(ctx context.Context, msg, url string, count int, begin time.Time, err error) {
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, msg,
		"url", url,
		"count", count,
		"duration", time.Since(begin),
		"err", err,
	)
}
