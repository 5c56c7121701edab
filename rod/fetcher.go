// Package rod fetches JavaScript-rendered documentation pages with a
// headless Chrome browser.
package rod

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/docgap"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds a single page render.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxPages is the number of pages rendered before the browser is
// relaunched. Chrome's memory baseline keeps growing under load otherwise.
const DefaultMaxPages = 75

var _ docgap.Fetcher = (*Fetcher)(nil)

// Fetcher renders pages in headless Chrome and returns their HTML.
// Fetcher is safe for concurrent use.
type Fetcher struct {
	timeout  time.Duration
	maxPages int

	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	pages    int
	closed   bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-page render timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxPages sets how many pages are rendered before the browser is relaunched.
func WithMaxPages(n int) Option {
	return func(f *Fetcher) {
		f.maxPages = n
	}
}

// NewFetcher launches a headless browser. Close must be called when the
// Fetcher is no longer needed. Returns an error if Chrome or Chromium
// cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:  DefaultFetchTimeout,
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(f)
	}
	if err := f.launch(); err != nil {
		return nil, err
	}
	return f, nil
}

// Fetch navigates to url, waits for the page to load and returns the
// rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	browser, err := f.acquire()
	if err != nil {
		return "", err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(f.timeout)
	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("navigating to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("loading %s: %w", url, err)
	}
	return page.HTML()
}

// Close shuts the browser down. It is safe to call more than once.
func (f *Fetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	return f.shutdown()
}

// acquire returns the current browser, relaunching it once maxPages pages
// have been rendered. A failed relaunch keeps the old browser.
func (f *Fetcher) acquire() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, docgap.Errorf(docgap.EINVALID, "fetcher is closed")
	}

	if f.maxPages > 0 && f.pages >= f.maxPages {
		oldBrowser, oldLauncher := f.browser, f.launcher
		if err := f.launch(); err == nil {
			_ = oldBrowser.Close()
			oldLauncher.Kill()
			f.pages = 0
		}
	}
	f.pages++
	return f.browser, nil
}

func (f *Fetcher) launch() error {
	l := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Leakless(true).
		Headless(true)

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	f.browser = browser
	f.launcher = l
	return nil
}

func (f *Fetcher) shutdown() error {
	var err error
	if f.browser != nil {
		err = f.browser.Close()
		f.browser = nil
	}
	if f.launcher != nil {
		f.launcher.Kill()
		f.launcher = nil
	}
	return err
}
