package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/docgap"
)

// DefaultJobTimeout bounds a single remote job invocation.
const DefaultJobTimeout = 5 * time.Minute

// Job endpoint paths relative to the job service base URL.
const (
	DiscoverPath = "/jobs/discover"
	ProbePath    = "/jobs/probe"
)

// DiscoverRequest is the payload of a remote discovery job.
type DiscoverRequest struct {
	SitemapURL string `json:"sitemapUrl"`
}

// ProbeRequest is the payload of a remote health probe job.
type ProbeRequest struct {
	URLs []string `json:"urls"`
}

var (
	_ docgap.SitemapDiscoverer = (*JobClient)(nil)
	_ docgap.HealthProber      = (*JobClient)(nil)
)

// JobClient invokes sitemap discovery and health probe jobs hosted by a
// remote service, such as "docgap serve" on another machine.
type JobClient struct {
	baseURL string
	client  *http.Client
}

// NewJobClient creates a JobClient for the service at baseURL.
// If client is nil, a client with DefaultJobTimeout is used.
func NewJobClient(baseURL string, client *http.Client) *JobClient {
	if client == nil {
		client = &http.Client{Timeout: DefaultJobTimeout}
	}
	return &JobClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Discover runs the remote discovery job.
func (c *JobClient) Discover(ctx context.Context, sitemapURL string) (*docgap.DiscoveryResult, error) {
	var result docgap.DiscoveryResult
	if err := c.invoke(ctx, DiscoverPath, DiscoverRequest{SitemapURL: sitemapURL}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Probe runs the remote health probe job.
func (c *JobClient) Probe(ctx context.Context, urls []string) (*docgap.ProbeResult, error) {
	var result docgap.ProbeResult
	if err := c.invoke(ctx, ProbePath, ProbeRequest{URLs: urls}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *JobClient) invoke(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding job payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("invoking %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, path, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
