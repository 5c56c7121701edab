package audit

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/fwojciec/docgap"
)

// MaxCandidates caps the pages returned by each retrieval strategy.
const MaxCandidates = 5

// PageIndex provides the page embeddings of a domain.
type PageIndex interface {
	Load(ctx context.Context, domain string) ([]docgap.PageEmbedding, error)
}

// Retriever finds documentation pages that may address an issue.
type Retriever struct {
	Index    PageIndex
	Embedder docgap.Embedder
	Sitemaps docgap.SitemapService
	Logger   *slog.Logger
}

// Candidates tries the issue's related pages, then semantic search, then
// keyword search, and returns the first non-empty result.
func (r *Retriever) Candidates(ctx context.Context, issue *docgap.Issue, domain string) []docgap.CandidatePage {
	if len(issue.RelatedPages) > 0 {
		pages := make([]docgap.CandidatePage, 0, len(issue.RelatedPages))
		for _, u := range issue.RelatedPages {
			pages = append(pages, docgap.CandidatePage{URL: u, Title: docgap.TitleFromURL(u)})
		}
		return pages
	}
	if pages := r.SearchSemantic(ctx, issue, domain); len(pages) > 0 {
		return pages
	}
	return r.SearchKeywords(ctx, issue, domain)
}

// SemanticQuery builds the text embedded to search for an issue.
func SemanticQuery(issue *docgap.Issue) string {
	parts := []string{issue.Title, issue.Description, issue.Category}
	if issue.FullContent != "" {
		parts = append(parts, issue.FullContent)
	}
	if len(issue.CodeSnippets) > 0 {
		parts = append(parts, strings.Join(issue.CodeSnippets, " "))
	}
	if len(issue.ErrorMessages) > 0 {
		parts = append(parts, strings.Join(issue.ErrorMessages, " "))
	}
	if len(issue.Tags) > 0 {
		parts = append(parts, strings.Join(issue.Tags, " "))
	}
	if issue.StackTrace != "" {
		parts = append(parts, issue.StackTrace)
	}
	return strings.Join(parts, " ")
}

// SearchSemantic ranks the domain's embedded pages by cosine similarity to
// the issue. Failures are logged and yield no pages.
func (r *Retriever) SearchSemantic(ctx context.Context, issue *docgap.Issue, domain string) []docgap.CandidatePage {
	log := discard(r.Logger)
	if r.Index == nil || r.Embedder == nil {
		return nil
	}

	pages, err := r.Index.Load(ctx, domain)
	if err != nil {
		log.Warn("load embeddings", "domain", domain, "err", err)
		return nil
	}
	if len(pages) == 0 {
		return nil
	}

	query, err := r.Embedder.Embed(ctx, SemanticQuery(issue))
	if err != nil {
		log.Warn("embed issue", "issue", issue.ID, "err", err)
		return nil
	}

	type scored struct {
		page  *docgap.PageEmbedding
		score float64
	}
	ranked := make([]scored, 0, len(pages))
	for i := range pages {
		sim, err := docgap.CosineSimilarity(query, pages[i].Embedding)
		if err != nil {
			log.Debug("skip page", "url", pages[i].URL, "err", err)
			continue
		}
		ranked = append(ranked, scored{page: &pages[i], score: sim})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if len(ranked) > MaxCandidates {
		ranked = ranked[:MaxCandidates]
	}
	out := make([]docgap.CandidatePage, len(ranked))
	for i, s := range ranked {
		score := s.score
		title := s.page.Title
		if title == "" {
			title = docgap.TitleFromURL(s.page.URL)
		}
		out[i] = docgap.CandidatePage{URL: s.page.URL, Title: title, Similarity: &score}
	}
	return out
}

// SearchKeywords ranks the domain's sitemap URLs by keyword matches in
// their paths. Failures are logged and yield no pages.
func (r *Retriever) SearchKeywords(ctx context.Context, issue *docgap.Issue, domain string) []docgap.CandidatePage {
	log := discard(r.Logger)
	if r.Sitemaps == nil {
		return nil
	}

	cfg := docgap.LookupDomain(domain)
	urls, err := r.Sitemaps.FetchSitemap(ctx, cfg.SitemapURL)
	if err != nil {
		log.Warn("keyword search sitemap", "domain", cfg.Domain, "err", err)
		return nil
	}

	keywords := docgap.ExtractKeywords(issue)
	type scored struct {
		url   string
		score float64
	}
	var ranked []scored
	for _, u := range urls {
		if s := docgap.ScoreURL(u, keywords, cfg); s > 0 {
			ranked = append(ranked, scored{url: u, score: s})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if len(ranked) > MaxCandidates {
		ranked = ranked[:MaxCandidates]
	}
	out := make([]docgap.CandidatePage, len(ranked))
	for i, s := range ranked {
		out[i] = docgap.CandidatePage{URL: s.url, Title: docgap.TitleFromURL(s.url)}
	}
	return out
}
