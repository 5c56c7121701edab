package docgap

import "context"

// Fetcher returns the HTML of a documentation page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources such as a headless browser.
	Close() error
}

// SitemapService lists the pages a documentation site publishes.
type SitemapService interface {
	// FetchSitemap returns the deduplicated URLs of the sitemap at
	// sitemapURL, expanding sitemap indexes.
	FetchSitemap(ctx context.Context, sitemapURL string) ([]string, error)

	// DiscoverURLs locates the sitemaps of siteURL through robots.txt or
	// /sitemap.xml and returns their URLs, restricted to the path of
	// siteURL when it has one.
	DiscoverURLs(ctx context.Context, siteURL string) ([]string, error)
}

// DomainLimiter spaces out requests to the same host.
type DomainLimiter interface {
	// Wait blocks until a request to domain is allowed or ctx is done.
	Wait(ctx context.Context, domain string) error
}
