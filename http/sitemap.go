package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/docgap"
)

var _ docgap.SitemapService = (*SitemapService)(nil)

// SitemapService reads sitemaps over HTTP.
type SitemapService struct {
	client *http.Client
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, a client with DefaultFetchTimeout is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	return &SitemapService{client: client}
}

// FetchSitemap returns the deduplicated URLs listed in the sitemap at
// sitemapURL, following sitemap indexes.
func (s *SitemapService) FetchSitemap(ctx context.Context, sitemapURL string) ([]string, error) {
	urls, err := s.readSitemap(ctx, sitemapURL, make(map[string]bool))
	if err != nil {
		return nil, err
	}
	return dedupe(urls), nil
}

// DiscoverURLs finds the sitemaps of the site at siteURL through robots.txt,
// falling back to /sitemap.xml, and returns their URLs. A non-root path on
// siteURL restricts results to that path prefix. Returns an empty slice when
// the site publishes no sitemap.
func (s *SitemapService) DiscoverURLs(ctx context.Context, siteURL string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(siteURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	prefix := strings.TrimSuffix(base.Path, "/")
	root := &url.URL{Scheme: base.Scheme, Host: base.Host}

	sitemaps, err := s.locateSitemaps(ctx, root)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var all []string
	for _, sm := range sitemaps {
		urls, err := s.readSitemap(ctx, sm, seen)
		if err != nil {
			return nil, err
		}
		all = append(all, urls...)
	}

	out := []string{}
	for _, u := range dedupe(all) {
		if prefix == "" || underPath(u, prefix) {
			out = append(out, u)
		}
	}
	return out, nil
}

// underPath reports whether rawURL's path is prefix or lies below it.
// /docs matches /docs and /docs/intro but not /documentation.
func underPath(rawURL, prefix string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	p := strings.TrimSuffix(u.Path, "/")
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

func (s *SitemapService) locateSitemaps(ctx context.Context, root *url.URL) ([]string, error) {
	if found, err := s.robotsSitemaps(ctx, root.JoinPath("robots.txt").String()); err == nil && len(found) > 0 {
		return found, nil
	}

	fallback := root.JoinPath("sitemap.xml").String()
	ok, err := s.exists(ctx, fallback)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	return []string{fallback}, nil
}

// robotsSitemaps returns the Sitemap: directives of a robots.txt file.
func (s *SitemapService) robotsSitemaps(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.get(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	const directive = "sitemap:"
	var found []string
	sc := bufio.NewScanner(body)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if len(line) > len(directive) && strings.EqualFold(line[:len(directive)], directive) {
			if u := strings.TrimSpace(line[len(directive):]); u != "" {
				found = append(found, u)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}
	return found, nil
}

// readSitemap parses a urlset or recursively expands a sitemapindex.
// Sitemaps already in seen are skipped.
func (s *SitemapService) readSitemap(ctx context.Context, sitemapURL string, seen map[string]bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if seen[sitemapURL] {
		return nil, nil
	}
	seen[sitemapURL] = true

	body, err := s.get(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return nil, fmt.Errorf("parsing sitemap XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty sitemap XML at %s", sitemapURL)
	}

	if root.Tag != "sitemapindex" {
		return locs(root, "url"), nil
	}

	var urls []string
	for _, child := range locs(root, "sitemap") {
		found, err := s.readSitemap(ctx, child, seen)
		if err != nil {
			return nil, err
		}
		urls = append(urls, found...)
	}
	return urls, nil
}

// locs returns the trimmed <loc> text of every child element named tag.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func (s *SitemapService) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, target)
	}
	return resp.Body, nil
}

func (s *SitemapService) exists(ctx context.Context, target string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}
