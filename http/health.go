package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/docgap"
	"golang.org/x/sync/errgroup"
)

// DefaultProbeConcurrency is the number of URLs probed at once.
const DefaultProbeConcurrency = 10

var _ docgap.SitemapDiscoverer = (*Discoverer)(nil)

// Discoverer runs sitemap discovery in-process.
type Discoverer struct {
	Sitemaps docgap.SitemapService
}

// Discover lists the URLs of the sitemap. When the sitemap cannot be read,
// the sitemaps the site itself announces are tried instead. Failures are
// reported through the result, not the error.
func (d *Discoverer) Discover(ctx context.Context, sitemapURL string) (*docgap.DiscoveryResult, error) {
	urls, err := d.Sitemaps.FetchSitemap(ctx, sitemapURL)
	if err == nil {
		return &docgap.DiscoveryResult{Success: true, URLs: urls}, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	site, perr := url.Parse(sitemapURL)
	if perr != nil || site.Host == "" {
		return &docgap.DiscoveryResult{Success: false, Message: err.Error()}, nil
	}
	root := (&url.URL{Scheme: site.Scheme, Host: site.Host}).String()
	found, derr := d.Sitemaps.DiscoverURLs(ctx, root)
	if derr != nil || len(found) == 0 {
		return &docgap.DiscoveryResult{Success: false, Message: err.Error()}, nil
	}
	return &docgap.DiscoveryResult{
		Success: true,
		URLs:    found,
		Message: fmt.Sprintf("%s unavailable, used sitemaps announced by %s", sitemapURL, root),
	}, nil
}

var _ docgap.HealthProber = (*Prober)(nil)

// Prober checks URLs with HEAD requests, falling back to GET for servers
// that do not support HEAD.
type Prober struct {
	client      *http.Client
	concurrency int
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithProbeConcurrency sets how many URLs are probed at once.
func WithProbeConcurrency(n int) ProberOption {
	return func(p *Prober) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithProbeTimeout sets the per-request timeout.
func WithProbeTimeout(d time.Duration) ProberOption {
	return func(p *Prober) {
		p.client.Timeout = d
	}
}

// NewProber creates a Prober.
func NewProber(opts ...ProberOption) *Prober {
	p := &Prober{
		client:      &http.Client{Timeout: DefaultFetchTimeout},
		concurrency: DefaultProbeConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type probeOutcome struct {
	healthy bool
	issue   docgap.LinkIssue
}

// Probe checks every URL and returns the breakdown.
func (p *Prober) Probe(ctx context.Context, urls []string) (*docgap.ProbeResult, error) {
	begin := time.Now()
	outcomes := make([]probeOutcome, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, u := range urls {
		g.Go(func() error {
			outcomes[i] = p.probe(gctx, u)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := &docgap.SitemapHealthSummary{
		TotalURLs:  len(urls),
		LinkIssues: []docgap.LinkIssue{},
	}
	for _, o := range outcomes {
		if o.healthy {
			summary.HealthyURLs++
			continue
		}
		switch o.issue.IssueType {
		case docgap.LinkNotFound:
			summary.BrokenURLs++
		case docgap.LinkAccessDenied:
			summary.AccessDeniedURLs++
		case docgap.LinkTimeout:
			summary.TimeoutURLs++
		default:
			summary.OtherErrorURLs++
		}
		summary.LinkIssues = append(summary.LinkIssues, o.issue)
	}
	summary.ComputeHealthPercentage()
	summary.ProcessingTime = time.Since(begin).Milliseconds()
	summary.Timestamp = time.Now().UTC()

	return &docgap.ProbeResult{Success: true, Summary: summary}, nil
}

func (p *Prober) probe(ctx context.Context, url string) probeOutcome {
	status, err := p.status(ctx, http.MethodHead, url)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		status, err = p.status(ctx, http.MethodGet, url)
	}
	if err != nil {
		return probeOutcome{issue: classifyError(url, err)}
	}
	return classifyStatus(url, status)
}

func (p *Prober) status(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func classifyStatus(url string, status int) probeOutcome {
	switch {
	case status >= 200 && status < 400:
		return probeOutcome{healthy: true}
	case status == http.StatusNotFound || status == http.StatusGone:
		return probeOutcome{issue: docgap.LinkIssue{
			URL: url, Status: status, IssueType: docgap.LinkNotFound,
			Message: fmt.Sprintf("page not found (HTTP %d)", status),
		}}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return probeOutcome{issue: docgap.LinkIssue{
			URL: url, Status: status, IssueType: docgap.LinkAccessDenied,
			Message: fmt.Sprintf("access denied (HTTP %d)", status),
		}}
	default:
		return probeOutcome{issue: docgap.LinkIssue{
			URL: url, Status: status, IssueType: docgap.LinkError,
			Message: fmt.Sprintf("unexpected status (HTTP %d)", status),
		}}
	}
}

func classifyError(url string, err error) docgap.LinkIssue {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return docgap.LinkIssue{URL: url, IssueType: docgap.LinkTimeout, Message: "request timed out"}
	}
	return docgap.LinkIssue{URL: url, IssueType: docgap.LinkError, Message: err.Error()}
}
