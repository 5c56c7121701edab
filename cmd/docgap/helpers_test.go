package main_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/fwojciec/docgap"
	"github.com/fwojciec/docgap/audit"
	main "github.com/fwojciec/docgap/cmd/docgap"
	"github.com/fwojciec/docgap/mock"
)

// memStore is an in-memory object store for command tests.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.data[key]; ok {
		return v, nil
	}
	return nil, docgap.Errorf(docgap.ENOTFOUND, "key %q not found", key)
}

func (s *memStore) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = data
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *memStore) purge(_ context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			delete(s.data, k)
			n++
		}
	}
	return n, nil
}

func (s *memStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

// newTestDeps wires commands to an in-memory store, an empty sitemap and a
// health prober that reports every URL healthy.
func newTestDeps(store *memStore) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sitemaps := &mock.SitemapService{
		FetchSitemapFn: func(context.Context, string) ([]string, error) { return []string{}, nil },
	}
	fetcher := &mock.Fetcher{
		FetchFn: func(context.Context, string) (string, error) { return "", nil },
	}
	embedder := &mock.Embedder{
		EmbedFn: func(context.Context, string) ([]float32, error) { return []float32{1}, nil },
	}
	discoverer := &mock.SitemapDiscoverer{
		DiscoverFn: func(_ context.Context, sitemapURL string) (*docgap.DiscoveryResult, error) {
			return &docgap.DiscoveryResult{Success: true, URLs: []string{
				strings.TrimSuffix(sitemapURL, "sitemap.xml") + "docs/a",
			}}, nil
		},
	}
	prober := &mock.HealthProber{
		ProbeFn: func(_ context.Context, urls []string) (*docgap.ProbeResult, error) {
			return &docgap.ProbeResult{Success: true, Summary: &docgap.SitemapHealthSummary{
				TotalURLs:   len(urls),
				HealthyURLs: len(urls),
			}}, nil
		},
	}

	index := &audit.Index{Store: store, Sitemaps: sitemaps, Fetcher: fetcher, Embedder: embedder, Logger: logger}
	health := &audit.HealthChecker{Store: store, Discoverer: discoverer, Prober: prober, Logger: logger}

	deps := &main.Dependencies{
		Ctx:    context.Background(),
		Stdin:  strings.NewReader(""),
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
		Config: &main.Config{Store: main.StoreConfig{Backend: "fs"}},
		Store:  store,
		Purge:  store.purge,
		Index:  index,
		Health: health,
		Validator: &audit.Validator{
			Retriever:   &audit.Retriever{Index: index, Embedder: embedder, Sitemaps: sitemaps, Logger: logger},
			Evidence:    &audit.EvidenceExtractor{Fetcher: fetcher, Logger: logger},
			Recommender: &audit.Recommender{Fetcher: fetcher, Logger: logger},
			Health:      health,
			Store:       store,
			Logger:      logger,
		},
		Discoverer:   discoverer,
		Prober:       prober,
		NewSessionID: func() string { return "session-1" },
	}
	return deps, stdout, stderr
}
