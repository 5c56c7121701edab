package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/docgap"
	"golang.org/x/sync/singleflight"
)

// minEmbeddedText is the shortest page text worth embedding.
const minEmbeddedText = 10

// Index builds and caches the page embeddings of documentation domains.
// Concurrent loads of the same normalized domain share one build.
type Index struct {
	Store    docgap.ObjectStore
	Sitemaps docgap.SitemapService
	Fetcher  docgap.Fetcher
	Content  docgap.ContentExtractor
	Embedder docgap.Embedder
	Limiter  docgap.DomainLimiter
	Logger   *slog.Logger

	group singleflight.Group
}

// Load returns the cached embeddings of domain, building and caching them
// on a miss. The returned slice is shared and must not be modified.
func (x *Index) Load(ctx context.Context, domain string) ([]docgap.PageEmbedding, error) {
	d := docgap.NormalizeDomain(domain)
	v, err, _ := x.group.Do(d, func() (any, error) {
		return x.load(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	return v.([]docgap.PageEmbedding), nil
}

func (x *Index) load(ctx context.Context, domain string) ([]docgap.PageEmbedding, error) {
	log := discard(x.Logger)
	key := docgap.EmbeddingsKey(domain)

	data, err := x.Store.Get(ctx, key)
	switch {
	case err == nil:
		var pages []docgap.PageEmbedding
		if err := json.Unmarshal(data, &pages); err == nil {
			return pages, nil
		}
		log.Warn("corrupt embedding cache, rebuilding", "key", key)
	case docgap.ErrorCode(err) != docgap.ENOTFOUND:
		log.Warn("embedding cache read failed, rebuilding", "key", key, "err", err)
	}

	pages, err := x.Build(ctx, domain)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(pages); err != nil {
		log.Error("encode embeddings", "domain", domain, "err", err)
	} else if err := x.Store.Put(ctx, key, data); err != nil {
		log.Error("cache embeddings", "key", key, "err", err)
	}
	return pages, nil
}

// Build fetches and embeds every documentation page in the domain's
// sitemap, one page at a time. Pages that fail to fetch, extract or embed
// are skipped.
func (x *Index) Build(ctx context.Context, domain string) ([]docgap.PageEmbedding, error) {
	log := discard(x.Logger)
	cfg := docgap.LookupDomain(domain)

	urls, err := x.Sitemaps.FetchSitemap(ctx, cfg.SitemapURL)
	if err != nil {
		return nil, fmt.Errorf("sitemap for %s: %w", cfg.Domain, err)
	}

	begin := time.Now()
	pages := []docgap.PageEmbedding{}
	for _, u := range urls {
		if !cfg.IsDocURL(u) {
			continue
		}
		page, err := x.embedPage(ctx, u)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("skip page", "url", u, "err", err)
			continue
		}
		if page != nil {
			pages = append(pages, *page)
		}
	}

	log.Info("embeddings built",
		"domain", cfg.Domain,
		"urls", len(urls),
		"pages", len(pages),
		"duration", time.Since(begin),
	)
	return pages, nil
}

// embedPage returns nil without error for pages with too little text.
func (x *Index) embedPage(ctx context.Context, pageURL string) (*docgap.PageEmbedding, error) {
	if err := wait(ctx, x.Limiter, pageURL); err != nil {
		return nil, err
	}
	html, err := x.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	content, err := x.Content.ExtractContent(html)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	page := &docgap.PageEmbedding{
		URL:         pageURL,
		Title:       content.Title,
		Description: content.Description,
		Content:     docgap.Truncate(content.Content, docgap.MaxEmbeddedContent),
	}
	if utf8.RuneCountInString(page.Title+page.Description+page.Content) < minEmbeddedText {
		return nil, nil
	}

	page.Embedding, err = x.Embedder.Embed(ctx, page.EmbeddingText())
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	return page, nil
}
