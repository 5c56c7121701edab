package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/fwojciec/docgap"
)

// HealthChecker summarizes the health of a domain's documentation links
// using remote discovery and probe jobs.
type HealthChecker struct {
	Store      docgap.ObjectStore
	Discoverer docgap.SitemapDiscoverer
	Prober     docgap.HealthProber

	// RetryDelays are the waits between job attempts. Nil means no retries.
	RetryDelays []time.Duration
	Logger      *slog.Logger
}

// Check returns the sitemap health of domain, or nil when it could not be
// determined. A cached summary is returned as stored.
func (h *HealthChecker) Check(ctx context.Context, domain string) *docgap.SitemapHealthSummary {
	log := discard(h.Logger)
	cfg := docgap.LookupDomain(domain)
	key := docgap.SitemapHealthKey(cfg.Domain)

	if data, err := h.Store.Get(ctx, key); err == nil {
		var cached docgap.SitemapHealthSummary
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached
		}
		log.Warn("corrupt health cache, recomputing", "key", key)
	} else if docgap.ErrorCode(err) != docgap.ENOTFOUND {
		log.Warn("health cache read failed", "key", key, "err", err)
	}

	begin := time.Now()
	onRetry := func(job string) func(int, error) {
		return func(attempt int, err error) {
			log.Warn("retrying job", "job", job, "domain", cfg.Domain, "attempt", attempt, "err", err)
		}
	}

	discovery, err := Retry(ctx, h.RetryDelays, func(ctx context.Context) (*docgap.DiscoveryResult, error) {
		return h.Discoverer.Discover(ctx, cfg.SitemapURL)
	}, onRetry("discover"))
	if err != nil {
		log.Error("sitemap discovery failed", "domain", cfg.Domain, "err", err)
		return nil
	}
	if discovery == nil || !discovery.Success {
		log.Warn("sitemap discovery unsuccessful", "domain", cfg.Domain, "message", message(discovery))
		return nil
	}

	urls := make([]string, 0, len(discovery.URLs))
	for _, u := range discovery.URLs {
		if cfg.IsDocURL(u) {
			urls = append(urls, u)
		}
	}

	probe, err := Retry(ctx, h.RetryDelays, func(ctx context.Context) (*docgap.ProbeResult, error) {
		return h.Prober.Probe(ctx, urls)
	}, onRetry("probe"))
	if err != nil {
		log.Error("health probe failed", "domain", cfg.Domain, "err", err)
		return nil
	}
	if probe == nil || !probe.Success || probe.Summary == nil {
		log.Warn("health probe unsuccessful", "domain", cfg.Domain, "message", probeMessage(probe))
		return nil
	}

	summary := *probe.Summary
	if summary.LinkIssues == nil {
		summary.LinkIssues = []docgap.LinkIssue{}
	}
	summary.ComputeHealthPercentage()
	summary.ProcessingTime = time.Since(begin).Milliseconds()
	summary.Timestamp = time.Now().UTC()

	if data, err := json.Marshal(&summary); err != nil {
		log.Error("encode health summary", "domain", cfg.Domain, "err", err)
	} else if err := h.Store.Put(ctx, key, data); err != nil {
		log.Error("cache health summary", "key", key, "err", err)
	}
	return &summary
}

func message(r *docgap.DiscoveryResult) string {
	if r == nil {
		return ""
	}
	return r.Message
}

func probeMessage(r *docgap.ProbeResult) string {
	if r == nil {
		return ""
	}
	return r.Message
}
