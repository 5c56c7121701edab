package audit

import (
	"context"
	"sync"

	"github.com/fwojciec/docgap"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond spaces requests to one host at least 100ms apart.
const DefaultRequestsPerSecond = 10

var _ docgap.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter rate limits requests per host with token buckets. Hosts are
// limited independently and no bursting is allowed.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter creates a new DomainLimiter. A non-positive rps selects
// DefaultRequestsPerSecond.
func NewDomainLimiter(rps float64) *DomainLimiter {
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until a request to domain is allowed or ctx is done.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	key := docgap.NormalizeDomain(domain)

	d.mu.Lock()
	limiter, ok := d.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[key] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// wait applies l to the host of rawURL. A nil limiter never waits.
func wait(ctx context.Context, l docgap.DomainLimiter, rawURL string) error {
	if l == nil {
		return nil
	}
	return l.Wait(ctx, host(rawURL))
}
