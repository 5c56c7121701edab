package audit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fwojciec/docgap"
)

const (
	// DefaultMaxTokens bounds the output of one generator call.
	DefaultMaxTokens = 4096

	// minRecommendationScore is the semantic score below which no page is
	// close enough to tailor recommendations to.
	minRecommendationScore = 0.5

	maxPromptSnippets = 10
	maxExcerpt        = 4000
	maxOutlineLevel   = 3
)

// Recommender produces documentation recommendations for an issue.
type Recommender struct {
	Generator docgap.Generator
	Fetcher   docgap.Fetcher
	Limiter   docgap.DomainLimiter
	Snippets  docgap.SnippetExtractor

	// Extractor and Converter are optional. When both are set the prompt
	// carries a markdown excerpt and heading outline of the page.
	Extractor docgap.Extractor
	Converter docgap.Converter

	MaxTokens   int
	MaxAttempts int
	Logger      *slog.Logger
}

// PageContext is what the prompt knows about the best matching page.
type PageContext struct {
	Evidence docgap.Evidence
	Snippets []docgap.CodeSnippet
	Excerpt  string
	Outline  string
}

// Recommend returns at most docgap.MaxRecommendations recommendations.
// It never fails: without a close page it returns generic advice, and when
// generation fails it returns fallback advice.
func (r *Recommender) Recommend(ctx context.Context, issue *docgap.Issue, evidence []docgap.Evidence) []string {
	log := discard(r.Logger)

	best, ok := bestEvidence(evidence)
	if !ok || *best.SemanticScore < minRecommendationScore {
		return docgap.GenericRecommendations(issue)
	}

	pc, err := r.pageContext(ctx, best)
	if err != nil {
		log.Warn("recommendation page fetch failed", "issue", issue.ID, "url", best.PageURL, "err", err)
		return docgap.FallbackRecommendations(issue)
	}

	c, err := docgap.Continue(ctx, r.Generator, BuildPrompt(issue, pc), r.maxTokens(), r.maxAttempts())
	if err != nil {
		log.Warn("recommendation generation failed", "issue", issue.ID, "attempts", c.Attempts, "err", err)
		return docgap.FallbackRecommendations(issue)
	}
	if c.State == docgap.Exhausted {
		log.Warn("recommendations incomplete", "issue", issue.ID, "attempts", c.Attempts)
	}

	recs := docgap.ParseRecommendations(c.Text)
	if len(recs) == 0 {
		log.Warn("no recommendations parsed", "issue", issue.ID, "chars", len(c.Text))
		return docgap.FallbackRecommendations(issue)
	}
	return recs
}

func (r *Recommender) maxTokens() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return DefaultMaxTokens
}

func (r *Recommender) maxAttempts() int {
	if r.MaxAttempts > 0 {
		return r.MaxAttempts
	}
	return docgap.MaxContinuationAttempts
}

// bestEvidence returns the item with the highest semantic score. Items
// without a score are ignored.
func bestEvidence(evidence []docgap.Evidence) (docgap.Evidence, bool) {
	var (
		best  docgap.Evidence
		found bool
	)
	for _, e := range evidence {
		if e.SemanticScore == nil {
			continue
		}
		if !found || *e.SemanticScore > *best.SemanticScore {
			best, found = e, true
		}
	}
	return best, found
}

func (r *Recommender) pageContext(ctx context.Context, ev docgap.Evidence) (PageContext, error) {
	pc := PageContext{Evidence: ev}

	if err := wait(ctx, r.Limiter, ev.PageURL); err != nil {
		return pc, err
	}
	html, err := r.Fetcher.Fetch(ctx, ev.PageURL)
	if err != nil {
		return pc, err
	}

	if r.Snippets != nil {
		pc.Snippets = r.Snippets.ExtractSnippets(html)
	}
	if r.Extractor == nil || r.Converter == nil {
		return pc, nil
	}

	// The excerpt is optional; failures only shrink the prompt.
	extracted, err := r.Extractor.Extract(html)
	if err != nil {
		discard(r.Logger).Debug("excerpt extraction failed", "url", ev.PageURL, "err", err)
		return pc, nil
	}
	markdown, err := r.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		discard(r.Logger).Debug("excerpt conversion failed", "url", ev.PageURL, "err", err)
		return pc, nil
	}
	pc.Excerpt = docgap.Truncate(markdown, maxExcerpt)
	pc.Outline = docgap.FormatOutline(ev.PageURL, docgap.ExtractSections(markdown), maxOutlineLevel)
	return pc, nil
}

// BuildPrompt asks for surgical, numbered recommendations that improve the
// page described by pc so that it addresses issue.
func BuildPrompt(issue *docgap.Issue, pc PageContext) string {
	var sb strings.Builder

	sb.WriteString("You are a technical writer improving developer documentation.\n\n")

	sb.WriteString("## Developer issue\n")
	fmt.Fprintf(&sb, "Title: %s\n", issue.Title)
	fmt.Fprintf(&sb, "Category: %s\n", issue.Category)
	fmt.Fprintf(&sb, "Description: %s\n", issue.Description)
	if issue.Frequency > 0 {
		fmt.Fprintf(&sb, "Reported %d times", issue.Frequency)
		if len(issue.Sources) > 0 {
			fmt.Fprintf(&sb, " on %s", strings.Join(issue.Sources, ", "))
		}
		sb.WriteString("\n")
	}
	for _, msg := range issue.ErrorMessages {
		fmt.Fprintf(&sb, "Error: %s\n", msg)
	}

	sb.WriteString("\n## Documentation page\n")
	fmt.Fprintf(&sb, "URL: %s\n", pc.Evidence.PageURL)
	fmt.Fprintf(&sb, "Title: %s\n", pc.Evidence.PageTitle)
	if pc.Evidence.SemanticScore != nil {
		fmt.Fprintf(&sb, "Similarity to issue: %.2f\n", *pc.Evidence.SemanticScore)
	}
	if len(pc.Evidence.ContentGaps) > 0 {
		sb.WriteString("Known gaps:\n")
		for _, gap := range pc.Evidence.ContentGaps {
			fmt.Fprintf(&sb, "- %s\n", gap)
		}
	}

	if pc.Outline != "" {
		sb.WriteString("\n## Page outline\n")
		sb.WriteString(pc.Outline)
	}
	if pc.Excerpt != "" {
		sb.WriteString("\n## Page excerpt\n")
		sb.WriteString(pc.Excerpt)
		sb.WriteString("\n")
	}

	if len(pc.Snippets) > 0 {
		sb.WriteString("\n## Existing code on the page\n")
		snippets := pc.Snippets
		if len(snippets) > maxPromptSnippets {
			snippets = snippets[:maxPromptSnippets]
		}
		for i, s := range snippets {
			fmt.Fprintf(&sb, "Snippet %d:\n```%s\n%s\n```\n", i+1, s.Language, s.Code)
		}
	}

	fmt.Fprintf(&sb, `
## Task
Write at most %d numbered recommendations, one per line starting with "1.", "2.", and so on.
Each recommendation must be a surgical change to this page. Name the section it applies to.
When changing code, reference the snippet number and show the code before and after in fenced blocks.
Do not write an introduction or a conclusion.
`, docgap.MaxRecommendations)

	return sb.String()
}
