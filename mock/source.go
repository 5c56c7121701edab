package mock

import (
	"context"

	"github.com/fwojciec/docgap"
)

var (
	_ docgap.Fetcher        = (*Fetcher)(nil)
	_ docgap.SitemapService = (*SitemapService)(nil)
	_ docgap.DomainLimiter  = (*DomainLimiter)(nil)
)

// Fetcher is a mock implementation of docgap.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)

	// CloseFn is optional.
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

// SitemapService is a mock implementation of docgap.SitemapService.
type SitemapService struct {
	FetchSitemapFn func(ctx context.Context, sitemapURL string) ([]string, error)
	DiscoverURLsFn func(ctx context.Context, siteURL string) ([]string, error)
}

func (s *SitemapService) FetchSitemap(ctx context.Context, sitemapURL string) ([]string, error) {
	return s.FetchSitemapFn(ctx, sitemapURL)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, siteURL string) ([]string, error) {
	return s.DiscoverURLsFn(ctx, siteURL)
}

// DomainLimiter is a mock implementation of docgap.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
