// Package http implements docgap services over plain HTTP: static page
// fetching, sitemap reading, sitemap health jobs and a remote job client.
package http

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/docgap"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout matches rod.DefaultFetchTimeout.
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgent identifies docgap to documentation servers.
const DefaultUserAgent = "docgap/1.0 (+https://github.com/fwojciec/docgap)"

// maxBodySize caps how much of a page is read.
const maxBodySize = 10 << 20

var _ docgap.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves pages with plain GET requests and returns them as UTF-8.
// It does not execute JavaScript; use rod.Fetcher for client-rendered sites.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests. Defaults to DefaultFetchTimeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client = &http.Client{Timeout: f.timeout}
	return f
}

// Fetch returns the page at url decoded to UTF-8. Statuses other than 200
// and bodies that are not text, such as PDFs or images, are errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isText(contentType) {
		return "", docgap.Errorf(docgap.EINVALID, "unsupported content type %q for %s", contentType, url)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxBodySize), contentType)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", url, err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// isText accepts a missing content type, since many static hosts omit it.
func isText(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "text/") || mediaType == "application/xhtml+xml"
}

// Close is a no-op; http.Client needs no cleanup.
func (f *Fetcher) Close() error {
	return nil
}
