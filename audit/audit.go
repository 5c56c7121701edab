// Package audit validates developer issues against a documentation site.
//
// A run retrieves candidate pages for every issue, extracts evidence from
// each page, classifies the issue and asks a language model for
// recommendations. The health of the site's sitemap is checked alongside.
package audit

import (
	"io"
	"log/slog"
	"net/url"
)

// discard returns l, or a logger that drops everything when l is nil.
func discard(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// host returns the host of rawURL, used as the rate-limiting key.
func host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
