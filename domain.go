package docgap

import (
	"net/url"
	"strings"
	"sync"
)

// domainRewrites maps parent domains to the subdomain hosting their docs.
// No rewrite target may appear as a key.
var domainRewrites = map[string]string{
	"knock.app":         "docs.knock.app",
	"www.knock.app":     "docs.knock.app",
	"www.resend.com":    "resend.com",
	"www.liveblocks.io": "liveblocks.io",
}

// NormalizeDomain returns the canonical form of a domain used for cache keys
// and configuration lookup. It is idempotent.
func NormalizeDomain(raw string) string {
	d := strings.ToLower(raw)
	for {
		prev := d
		d = strings.TrimSpace(d)
		d = strings.TrimPrefix(d, "https://")
		d = strings.TrimPrefix(d, "http://")
		d = strings.TrimRight(d, "/")
		if d == prev {
			break
		}
	}
	if target, ok := domainRewrites[d]; ok {
		return target
	}
	return d
}

// DomainConfig tells the pipeline where a domain's documentation lives.
type DomainConfig struct {
	Domain     string `json:"domain" mapstructure:"domain"`
	SitemapURL string `json:"sitemapUrl" mapstructure:"sitemap_url"`

	// DocsPath marks documentation URLs. A URL whose path contains it is
	// treated as documentation. "/" accepts every URL on the domain.
	DocsPath string `json:"docsPath" mapstructure:"docs_path"`
}

// IsDocURL reports whether rawURL belongs to the domain's documentation.
func (c DomainConfig) IsDocURL(rawURL string) bool {
	if c.DocsPath == "" || c.DocsPath == "/" {
		return true
	}
	return strings.Contains(urlPath(rawURL), c.DocsPath)
}

var (
	domainsMu sync.RWMutex
	domains   = map[string]DomainConfig{
		"resend.com": {
			Domain:     "resend.com",
			SitemapURL: "https://resend.com/docs/sitemap.xml",
			DocsPath:   "/docs/",
		},
		"docs.knock.app": {
			Domain:     "docs.knock.app",
			SitemapURL: "https://docs.knock.app/sitemap.xml",
			DocsPath:   "/",
		},
		"liveblocks.io": {
			Domain:     "liveblocks.io",
			SitemapURL: "https://liveblocks.io/sitemap.xml",
			DocsPath:   "/docs",
		},
	}
)

// RegisterDomain adds or replaces the configuration for a domain.
// The domain is normalized before it is stored.
func RegisterDomain(cfg DomainConfig) {
	cfg.Domain = NormalizeDomain(cfg.Domain)
	domainsMu.Lock()
	defer domainsMu.Unlock()
	domains[cfg.Domain] = cfg
}

// LookupDomain returns the configuration for domain. Unconfigured domains
// get the conventional sitemap location and a generic docs marker.
func LookupDomain(domain string) DomainConfig {
	d := NormalizeDomain(domain)
	domainsMu.RLock()
	cfg, ok := domains[d]
	domainsMu.RUnlock()
	if ok {
		return cfg
	}

	docsPath := "/docs"
	if strings.HasPrefix(d, "docs.") {
		docsPath = "/"
	}
	return DomainConfig{
		Domain:     d,
		SitemapURL: "https://" + d + "/sitemap.xml",
		DocsPath:   docsPath,
	}
}

// EmbeddingsKey is the object-store key of a domain's embedding cache.
func EmbeddingsKey(domain string) string {
	return "embeddings/" + NormalizeDomain(domain) + ".json"
}

// SitemapHealthKey is the object-store key of a domain's sitemap health summary.
func SitemapHealthKey(domain string) string {
	return "sitemap-health/" + NormalizeDomain(domain) + ".json"
}

// ResultsKey is the object-store key of a session's validation output.
func ResultsKey(sessionID string) string {
	return "sessions/" + sessionID + "/validation-results.json"
}

// urlPath returns the path of rawURL, or rawURL itself when it does not parse.
func urlPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Path == "" && u.Host == "") {
		return rawURL
	}
	return u.Path
}
