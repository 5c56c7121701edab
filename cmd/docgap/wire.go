package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fwojciec/docgap"
	"github.com/fwojciec/docgap/audit"
	"github.com/fwojciec/docgap/fs"
	"github.com/fwojciec/docgap/gemini"
	"github.com/fwojciec/docgap/goquery"
	"github.com/fwojciec/docgap/htmltomarkdown"
	docgaphttp "github.com/fwojciec/docgap/http"
	"github.com/fwojciec/docgap/openai"
	"github.com/fwojciec/docgap/oss"
	docgapprom "github.com/fwojciec/docgap/prometheus"
	"github.com/fwojciec/docgap/readability"
	docgapredis "github.com/fwojciec/docgap/redis"
	"github.com/fwojciec/docgap/regexp"
	"github.com/fwojciec/docgap/rod"
	docgapslog "github.com/fwojciec/docgap/slog"
	"github.com/fwojciec/docgap/sqlite"
	"github.com/fwojciec/docgap/trafilatura"
	goredis "github.com/redis/go-redis/v9"
	"google.golang.org/genai"
)

// backend is an opened object store with its optional capabilities.
type backend struct {
	store docgap.ObjectStore
	purge PurgeFunc
	redis *goredis.Client
	close func() error
}

func openBackend(ctx context.Context, cfg StoreConfig) (*backend, error) {
	switch cfg.Backend {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		db := sqlite.NewDB(cfg.SQLitePath)
		if err := db.Open(); err != nil {
			return nil, fmt.Errorf("failed to open database at %q: %w", cfg.SQLitePath, err)
		}
		store := sqlite.NewObjectStore(db)
		return &backend{
			store: store,
			purge: sqlitePurge(store),
			close: db.Close,
		}, nil

	case "fs":
		return &backend{store: fs.NewObjectStore(cfg.Dir), close: noClose}, nil

	case "redis":
		client, err := docgapredis.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		store := docgapredis.NewObjectStore(client,
			docgapredis.WithPrefix(cfg.Redis.Prefix),
			docgapredis.WithTTL(cfg.Redis.TTL),
		)
		return &backend{
			store: store,
			purge: store.DeletePrefix,
			redis: client,
			close: client.Close,
		}, nil

	case "oss":
		store, err := oss.Open(cfg.OSS)
		if err != nil {
			return nil, err
		}
		return &backend{store: store, close: noClose}, nil
	}
	return nil, docgap.Errorf(docgap.EINVALID, "unknown store backend %q", cfg.Backend)
}

func noClose() error { return nil }

// sqlitePurge deletes keys found by listing the blobs table.
func sqlitePurge(store *sqlite.ObjectStore) PurgeFunc {
	return func(ctx context.Context, prefix string) (int, error) {
		infos, err := store.List(ctx, sqlite.BlobFilter{Prefix: prefix})
		if err != nil {
			return 0, err
		}
		for i, info := range infos {
			if err := store.Delete(ctx, info.Key); err != nil {
				return i, err
			}
		}
		return len(infos), nil
	}
}

// newLLM returns the generator and embedder of the configured provider.
func newLLM(ctx context.Context, cfg LLMConfig) (docgap.Generator, docgap.Embedder, error) {
	if cfg.APIKey == "" {
		return nil, nil, docgap.Errorf(docgap.EINVALID, "no API key for llm provider %q: set llm.api_key or DOCGAP_LLM_API_KEY", cfg.Provider)
	}

	switch cfg.Provider {
	case "gemini":
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		opts := []gemini.GeneratorOption{gemini.WithTemperature(cfg.Temperature)}
		if cfg.Model != "" {
			opts = append(opts, gemini.WithModel(cfg.Model))
		}
		return gemini.NewGenerator(client, opts...), gemini.NewEmbedder(client, cfg.EmbeddingModel), nil

	case "openai":
		client := openai.NewClient(cfg.APIKey, cfg.BaseURL)
		opts := []openai.GeneratorOption{openai.WithTemperature(cfg.Temperature)}
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		return openai.NewGenerator(client, opts...), openai.NewEmbedder(client, cfg.EmbeddingModel), nil
	}
	return nil, nil, docgap.Errorf(docgap.EINVALID, "unknown llm provider %q", cfg.Provider)
}

func newFetcher(cfg FetchConfig) (docgap.Fetcher, error) {
	if cfg.Renderer == "rod" {
		f, err := rod.NewFetcher(rod.WithTimeout(cfg.Timeout))
		if err != nil {
			return nil, fmt.Errorf("failed to start browser (Chrome or Chromium must be installed): %w", err)
		}
		return f, nil
	}
	return docgaphttp.NewFetcher(docgaphttp.WithTimeout(cfg.Timeout)), nil
}

func newContentExtractor(name string) docgap.ContentExtractor {
	switch name {
	case "regexp":
		return regexp.NewContentExtractor()
	case "trafilatura":
		return trafilatura.NewExtractor()
	case "readability":
		return readability.NewExtractor()
	}
	return goquery.NewContentExtractor()
}

// newSnippetExtractor pairs the regexp content extractor with its snippet
// counterpart. Every DOM-based choice uses goquery.
func newSnippetExtractor(name string) docgap.SnippetExtractor {
	if name == "regexp" {
		return regexp.NewSnippetExtractor()
	}
	return goquery.NewSnippetExtractor()
}

func newMainExtractor(name string) docgap.Extractor {
	if name == "readability" {
		return readability.NewExtractor()
	}
	return trafilatura.NewExtractor()
}

// newHealthJobs returns remote job clients when a jobs URL is configured
// and in-process implementations otherwise.
func newHealthJobs(cfg JobsConfig, sitemaps docgap.SitemapService, fetch FetchConfig) (docgap.SitemapDiscoverer, docgap.HealthProber) {
	if cfg.URL != "" {
		jobs := docgaphttp.NewJobClient(cfg.URL, nil)
		return jobs, jobs
	}
	prober := docgaphttp.NewProber(
		docgaphttp.WithProbeConcurrency(cfg.ProbeConcurrency),
		docgaphttp.WithProbeTimeout(fetch.Timeout),
	)
	return &docgaphttp.Discoverer{Sitemaps: sitemaps}, prober
}

// services are the long-lived components shared by commands.
type services struct {
	index      *audit.Index
	health     *audit.HealthChecker
	validator  *audit.Validator
	discoverer docgap.SitemapDiscoverer
	prober     docgap.HealthProber
	close      func() error
}

// wireOptions selects which parts of the pipeline a command needs.
type wireOptions struct {
	pipeline bool
}

func wireServices(ctx context.Context, cfg *Config, store docgap.ObjectStore, progress docgap.ProgressPublisher, metrics *docgapprom.Metrics, logger *slog.Logger, opts wireOptions) (*services, error) {
	sitemaps := docgapslog.NewLoggingSitemapService(docgaphttp.NewSitemapService(nil), logger)
	discoverer, prober := newHealthJobs(cfg.Jobs, sitemaps, cfg.Fetch)

	s := &services{
		discoverer: discoverer,
		prober:     prober,
		close:      noClose,
		health: &audit.HealthChecker{
			Store:       store,
			Discoverer:  discoverer,
			Prober:      prober,
			RetryDelays: audit.DefaultRetryDelays(),
			Logger:      logger,
		},
	}
	if !opts.pipeline {
		return s, nil
	}

	generator, embedder, err := newLLM(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	var counter docgap.TokenCounter
	if cfg.LLM.Provider == "gemini" {
		// Token counts are only logged; a missing tokenizer is not fatal.
		if tc, err := gemini.NewTokenCounter(gemini.DefaultModel); err == nil {
			counter = tc
		} else {
			logger.Warn("token counting disabled", "err", err)
		}
	}
	generator = docgapslog.NewLoggingGenerator(docgapprom.NewGenerator(generator, metrics), counter, logger)
	embedder = docgapslog.NewLoggingEmbedder(docgapprom.NewEmbedder(embedder, metrics), logger)

	rawFetcher, err := newFetcher(cfg.Fetch)
	if err != nil {
		return nil, err
	}
	fetcher := docgapslog.NewLoggingFetcher(rawFetcher, logger)
	s.close = fetcher.Close

	limiter := audit.NewDomainLimiter(cfg.Fetch.RequestsPerSecond)

	s.index = &audit.Index{
		Store:    store,
		Sitemaps: sitemaps,
		Fetcher:  fetcher,
		Content:  newContentExtractor(cfg.Fetch.Extractor),
		Embedder: embedder,
		Limiter:  limiter,
		Logger:   logger,
	}
	s.validator = &audit.Validator{
		Retriever: &audit.Retriever{
			Index:    s.index,
			Embedder: embedder,
			Sitemaps: sitemaps,
			Logger:   logger,
		},
		Evidence: &audit.EvidenceExtractor{
			Fetcher: fetcher,
			Limiter: limiter,
			Logger:  logger,
		},
		Recommender: &audit.Recommender{
			Generator: generator,
			Fetcher:   fetcher,
			Limiter:   limiter,
			Snippets:  newSnippetExtractor(cfg.Fetch.Extractor),
			Extractor: newMainExtractor(cfg.Fetch.Extractor),
			Converter: htmltomarkdown.NewConverter(),
			MaxTokens: cfg.LLM.MaxTokens,
			Logger:    logger,
		},
		Health:   s.health,
		Store:    store,
		Progress: progress,
		Logger:   logger,
	}
	return s, nil
}
