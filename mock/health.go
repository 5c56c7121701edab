package mock

import (
	"context"

	"github.com/fwojciec/docgap"
)

var _ docgap.SitemapDiscoverer = (*SitemapDiscoverer)(nil)

// SitemapDiscoverer is a mock implementation of docgap.SitemapDiscoverer.
type SitemapDiscoverer struct {
	DiscoverFn func(ctx context.Context, sitemapURL string) (*docgap.DiscoveryResult, error)
}

func (d *SitemapDiscoverer) Discover(ctx context.Context, sitemapURL string) (*docgap.DiscoveryResult, error) {
	return d.DiscoverFn(ctx, sitemapURL)
}

var _ docgap.HealthProber = (*HealthProber)(nil)

// HealthProber is a mock implementation of docgap.HealthProber.
type HealthProber struct {
	ProbeFn func(ctx context.Context, urls []string) (*docgap.ProbeResult, error)
}

func (p *HealthProber) Probe(ctx context.Context, urls []string) (*docgap.ProbeResult, error) {
	return p.ProbeFn(ctx, urls)
}
