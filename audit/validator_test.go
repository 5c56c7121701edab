package audit_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/fwojciec/docgap"
	"github.com/fwojciec/docgap/audit"
	"github.com/fwojciec/docgap/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_ValidateIssue(t *testing.T) {
	t.Parallel()

	t.Run("reports a critical gap when no pages are found", func(t *testing.T) {
		t.Parallel()

		v := newValidatorEnv(nil).validator
		issue := &docgap.Issue{ID: "1", Title: "Webhook retries"}

		r := v.ValidateIssue(context.Background(), issue, "example.com")

		assert.Equal(t, docgap.StatusCriticalGap, r.Status)
		assert.Equal(t, 95, r.Confidence)
		assert.NotNil(t, r.Evidence)
		assert.Empty(t, r.Evidence)
		assert.Equal(t, docgap.GenericRecommendations(issue), r.Recommendations)
	})

	t.Run("classifies evidence from related pages", func(t *testing.T) {
		t.Parallel()

		env := newValidatorEnv(map[string]string{
			"https://example.com/docs/webhooks": "<pre>retry()</pre> webhook retries error",
		})
		issue := &docgap.Issue{
			ID:           "1",
			Title:        "Webhook retries",
			RelatedPages: []string{"https://example.com/docs/webhooks"},
		}

		r := env.validator.ValidateIssue(context.Background(), issue, "example.com")

		assert.Equal(t, "1", r.IssueID)
		assert.Equal(t, "Webhook retries", r.IssueTitle)
		assert.Equal(t, docgap.StatusConfirmed, r.Status)
		assert.Equal(t, 70, r.Confidence)
		require.Len(t, r.Evidence, 1)
		assert.True(t, r.Evidence[0].HasRelevantContent)
		assert.NotNil(t, r.PotentialGaps)
		assert.NotNil(t, r.CriticalGaps)
		assert.Equal(t, docgap.GenericRecommendations(issue), r.Recommendations)
	})
}

func TestValidator_Run(t *testing.T) {
	t.Parallel()

	t.Run("rejects invalid requests", func(t *testing.T) {
		t.Parallel()

		v := newValidatorEnv(nil).validator

		_, err := v.Run(context.Background(), &docgap.ValidationRequest{SessionID: "s1"})
		assert.Equal(t, docgap.EINVALID, docgap.ErrorCode(err))

		_, err = v.Run(context.Background(), &docgap.ValidationRequest{Domain: "example.com"})
		assert.Equal(t, docgap.EINVALID, docgap.ErrorCode(err))

		_, err = v.Run(context.Background(), &docgap.ValidationRequest{
			Domain:    "example.com",
			SessionID: "s1",
			Issues:    []docgap.Issue{{ID: "1"}},
		})
		assert.Equal(t, docgap.EINVALID, docgap.ErrorCode(err))
	})

	t.Run("validates every issue and persists the output", func(t *testing.T) {
		t.Parallel()

		env := newValidatorEnv(map[string]string{
			"https://example.com/docs/webhooks": "<pre>retry()</pre> webhook retries error",
		})
		req := &docgap.ValidationRequest{
			Domain:    "example.com",
			SessionID: "s1",
			Issues: []docgap.Issue{
				{ID: "1", Title: "Webhook retries", RelatedPages: []string{"https://example.com/docs/webhooks"}},
				{ID: "2", Title: "Billing export"},
				{ID: "3", Title: "Team invites"},
			},
		}

		out, err := env.validator.Run(context.Background(), req)

		require.NoError(t, err)
		assert.Empty(t, out.Error)
		require.Len(t, out.ValidationResults, 3)
		assert.Equal(t, "1", out.ValidationResults[0].IssueID)
		assert.Equal(t, "2", out.ValidationResults[1].IssueID)
		assert.Equal(t, docgap.Summary{TotalIssues: 3, Confirmed: 1, CriticalGaps: 2}, out.Summary)
		require.NotNil(t, out.SitemapHealth)
		assert.Equal(t, 100.0, out.SitemapHealth.HealthPercentage)

		stored, err := audit.LoadResults(context.Background(), env.store(), "s1")
		require.NoError(t, err)
		assert.Equal(t, out.Summary, stored.Summary)
		assert.Len(t, stored.ValidationResults, 3)
	})

	t.Run("publishes progress for every step", func(t *testing.T) {
		t.Parallel()

		env := newValidatorEnv(nil)
		req := &docgap.ValidationRequest{
			Domain:    "example.com",
			SessionID: "s1",
			Issues:    []docgap.Issue{{ID: "1", Title: "a"}, {ID: "2", Title: "b"}},
		}

		_, err := env.validator.Run(context.Background(), req)
		require.NoError(t, err)

		events := env.events()
		require.Len(t, events, 5)
		assert.Equal(t, docgap.ProgressStarted, events[0].Type)
		assert.Equal(t, docgap.ProgressCompleted, events[4].Type)
		assert.Equal(t, 2, events[4].Completed)

		var middle []string
		var completed []int
		for _, e := range events[1:4] {
			middle = append(middle, string(e.Type))
			if e.Type == docgap.ProgressIssueValidated {
				completed = append(completed, e.Completed)
			}
			assert.False(t, e.Timestamp.IsZero())
		}
		sort.Strings(middle)
		sort.Ints(completed)
		assert.Equal(t, []string{"health-checked", "issue-validated", "issue-validated"}, middle)
		assert.Equal(t, []int{1, 2}, completed)
	})

	t.Run("runs without health checker or progress", func(t *testing.T) {
		t.Parallel()

		env := newValidatorEnv(nil)
		env.validator.Health = nil
		env.validator.Progress = nil

		out, err := env.validator.Run(context.Background(), &docgap.ValidationRequest{Domain: "example.com", SessionID: "s1"})

		require.NoError(t, err)
		assert.Nil(t, out.SitemapHealth)
		assert.NotNil(t, out.ValidationResults)
		assert.Equal(t, 0, out.Summary.TotalIssues)
	})

	t.Run("turns a panic into an error output", func(t *testing.T) {
		t.Parallel()

		env := newValidatorEnv(nil)
		env.validator.Health.Prober = &mock.HealthProber{
			ProbeFn: func(context.Context, []string) (*docgap.ProbeResult, error) {
				panic("prober exploded")
			},
		}

		out, err := env.validator.Run(context.Background(), &docgap.ValidationRequest{
			Domain:    "example.com",
			SessionID: "s1",
			Issues:    []docgap.Issue{{ID: "1", Title: "a"}},
		})

		require.NoError(t, err)
		assert.Contains(t, out.Error, "prober exploded")
		assert.NotNil(t, out.ValidationResults)
		assert.Empty(t, out.ValidationResults)
		assert.Equal(t, docgap.Summary{}, out.Summary)

		events := env.events()
		assert.Equal(t, docgap.ProgressFailed, events[len(events)-1].Type)
	})

	t.Run("keeps running after the caller cancels", func(t *testing.T) {
		t.Parallel()

		env := newValidatorEnv(nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		out, err := env.validator.Run(ctx, &docgap.ValidationRequest{
			Domain:    "example.com",
			SessionID: "s1",
			Issues:    []docgap.Issue{{ID: "1", Title: "a"}},
		})

		require.NoError(t, err)
		assert.Len(t, out.ValidationResults, 1)
		assert.NotNil(t, out.SitemapHealth)
	})
}

func TestLoadResults(t *testing.T) {
	t.Parallel()

	t.Run("returns not found for unknown sessions", func(t *testing.T) {
		t.Parallel()

		store := &mock.ObjectStore{
			GetFn: func(context.Context, string) ([]byte, error) {
				return nil, docgap.Errorf(docgap.ENOTFOUND, "missing")
			},
		}

		_, err := audit.LoadResults(context.Background(), store, "nope")

		assert.Equal(t, docgap.ENOTFOUND, docgap.ErrorCode(err))
	})

	t.Run("requires a session ID", func(t *testing.T) {
		t.Parallel()

		_, err := audit.LoadResults(context.Background(), &mock.ObjectStore{}, "")

		assert.Equal(t, docgap.EINVALID, docgap.ErrorCode(err))
	})
}

type validatorEnv struct {
	validator *audit.Validator

	mu       sync.Mutex
	stored   map[string][]byte
	progress []docgap.ProgressEvent
}

// newValidatorEnv wires a validator whose sitemap is empty, so only related
// pages produce candidates. pages maps URLs to their HTML.
func newValidatorEnv(pages map[string]string) *validatorEnv {
	env := &validatorEnv{stored: map[string][]byte{}}

	store := &mock.ObjectStore{
		GetFn: func(_ context.Context, key string) ([]byte, error) {
			env.mu.Lock()
			defer env.mu.Unlock()
			if data, ok := env.stored[key]; ok {
				return data, nil
			}
			return nil, docgap.Errorf(docgap.ENOTFOUND, "key %q not found", key)
		},
		PutFn: func(_ context.Context, key string, data []byte) error {
			env.mu.Lock()
			defer env.mu.Unlock()
			env.stored[key] = data
			return nil
		},
	}
	sitemaps := &mock.SitemapService{
		FetchSitemapFn: func(context.Context, string) ([]string, error) { return []string{}, nil },
	}
	fetcher := &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) { return pages[url], nil },
	}
	embedder := &mock.Embedder{
		EmbedFn: func(context.Context, string) ([]float32, error) { return []float32{1, 0}, nil },
	}

	env.validator = &audit.Validator{
		Retriever: &audit.Retriever{
			Index:    &audit.Index{Store: store, Sitemaps: sitemaps, Fetcher: fetcher, Embedder: embedder},
			Embedder: embedder,
			Sitemaps: sitemaps,
		},
		Evidence:    &audit.EvidenceExtractor{Fetcher: fetcher},
		Recommender: &audit.Recommender{Fetcher: fetcher},
		Health: &audit.HealthChecker{
			Store: store,
			Discoverer: &mock.SitemapDiscoverer{
				DiscoverFn: func(context.Context, string) (*docgap.DiscoveryResult, error) {
					return &docgap.DiscoveryResult{Success: true, URLs: []string{"https://example.com/docs/a"}}, nil
				},
			},
			Prober: &mock.HealthProber{
				ProbeFn: func(_ context.Context, urls []string) (*docgap.ProbeResult, error) {
					return &docgap.ProbeResult{Success: true, Summary: &docgap.SitemapHealthSummary{
						TotalURLs:   len(urls),
						HealthyURLs: len(urls),
					}}, nil
				},
			},
		},
		Store: store,
		Progress: &mock.ProgressPublisher{
			PublishFn: func(_ context.Context, _ string, event docgap.ProgressEvent) {
				env.mu.Lock()
				defer env.mu.Unlock()
				env.progress = append(env.progress, event)
			},
		},
	}
	return env
}

func (e *validatorEnv) store() docgap.ObjectStore {
	return e.validator.Store
}

func (e *validatorEnv) events() []docgap.ProgressEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]docgap.ProgressEvent(nil), e.progress...)
}
