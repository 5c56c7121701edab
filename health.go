package docgap

import (
	"context"
	"math"
	"time"
)

// LinkIssueType classifies a broken documentation link.
type LinkIssueType string

const (
	LinkNotFound     LinkIssueType = "404"
	LinkAccessDenied LinkIssueType = "access-denied"
	LinkTimeout      LinkIssueType = "timeout"
	LinkError        LinkIssueType = "error"
)

// LinkIssue is a documentation URL that failed its health probe.
type LinkIssue struct {
	URL       string        `json:"url"`
	Status    int           `json:"status"`
	Message   string        `json:"message"`
	IssueType LinkIssueType `json:"issueType"`
}

// SitemapHealthSummary aggregates the health of a domain's documentation URLs.
type SitemapHealthSummary struct {
	TotalURLs        int         `json:"totalUrls"`
	HealthyURLs      int         `json:"healthyUrls"`
	BrokenURLs       int         `json:"brokenUrls"`
	AccessDeniedURLs int         `json:"accessDeniedUrls"`
	TimeoutURLs      int         `json:"timeoutUrls"`
	OtherErrorURLs   int         `json:"otherErrorUrls"`
	HealthPercentage float64     `json:"healthPercentage"`
	LinkIssues       []LinkIssue `json:"linkIssues"`
	ProcessingTime   int64       `json:"processingTime"`
	Timestamp        time.Time   `json:"timestamp"`
}

// ComputeHealthPercentage sets HealthPercentage from the URL counts,
// rounded to two decimals. An empty sitemap is 0% healthy.
func (s *SitemapHealthSummary) ComputeHealthPercentage() {
	if s.TotalURLs == 0 {
		s.HealthPercentage = 0
		return
	}
	pct := float64(s.HealthyURLs) / float64(s.TotalURLs) * 100
	s.HealthPercentage = math.Round(pct*100) / 100
}

// DiscoveryResult is the outcome of a sitemap discovery job.
type DiscoveryResult struct {
	Success bool     `json:"success"`
	URLs    []string `json:"urls"`
	Message string   `json:"message,omitempty"`
}

// ProbeResult is the outcome of a health probe job.
type ProbeResult struct {
	Success bool                  `json:"success"`
	Summary *SitemapHealthSummary `json:"summary,omitempty"`
	Message string                `json:"message,omitempty"`
}

// SitemapDiscoverer lists the URLs published in a sitemap.
type SitemapDiscoverer interface {
	Discover(ctx context.Context, sitemapURL string) (*DiscoveryResult, error)
}

// HealthProber checks that URLs respond.
type HealthProber interface {
	// Probe checks exactly the given URLs and returns their breakdown.
	Probe(ctx context.Context, urls []string) (*ProbeResult, error)
}
