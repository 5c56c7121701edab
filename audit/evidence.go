package audit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fwojciec/docgap"
)

// minRelevantMatches is the number of issue keywords a page must contain to
// count as relevant.
const minRelevantMatches = 2

var productionKeywords = []string{
	"production",
	"deploy",
	"environment variable",
	"best practice",
	"scaling",
	"monitoring",
	"security",
}

var hostingPlatforms = []string{
	"vercel", "netlify", "heroku", "aws", "railway",
	"render", "fly.io", "cloudflare", "docker", "kubernetes",
}

var envVarTerms = []string{"environment variable", "env var", ".env", "process.env"}

// EvidenceExtractor inspects candidate pages for what they cover.
type EvidenceExtractor struct {
	Fetcher docgap.Fetcher
	Limiter docgap.DomainLimiter
	Logger  *slog.Logger
}

// Extract fetches page and assesses it against issue. A page that cannot
// be fetched is assessed as empty.
func (x *EvidenceExtractor) Extract(ctx context.Context, issue *docgap.Issue, page docgap.CandidatePage) docgap.Evidence {
	html, err := x.fetch(ctx, page.URL)
	if err != nil {
		discard(x.Logger).Warn("evidence fetch failed", "url", page.URL, "err", err)
	}
	return AssessPage(issue, page, html)
}

func (x *EvidenceExtractor) fetch(ctx context.Context, pageURL string) (string, error) {
	if err := wait(ctx, x.Limiter, pageURL); err != nil {
		return "", err
	}
	html, err := x.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return html, nil
}

// AssessPage derives evidence from the raw content of a page.
func AssessPage(issue *docgap.Issue, page docgap.CandidatePage, content string) docgap.Evidence {
	lower := strings.ToLower(content)

	ev := docgap.Evidence{
		PageURL:            page.URL,
		PageTitle:          page.Title,
		HasRelevantContent: docgap.CountKeywordMatches(docgap.ExtractKeywords(issue), lower) >= minRelevantMatches,
		CodeExamples:       strings.Count(lower, "<pre") + strings.Count(lower, "```")/2,
		ProductionGuidance: containsAny(lower, productionKeywords),
		SemanticScore:      page.Similarity,
	}
	ev.ContentGaps = contentGaps(issue, lower, ev)
	return ev
}

func contentGaps(issue *docgap.Issue, content string, ev docgap.Evidence) []string {
	category := strings.ToLower(issue.Category)
	gaps := []string{}

	if ev.CodeExamples == 0 {
		gaps = append(gaps, "Missing code examples")
	}
	if category == "deployment" && !ev.ProductionGuidance {
		gaps = append(gaps, "Missing production deployment guidance")
	}
	if !containsAny(content, []string{"error", "troubleshoot"}) {
		gaps = append(gaps, "Missing error handling and troubleshooting guidance")
	}
	if category == "email-delivery" {
		if !containsAny(content, []string{"spam", "deliverability"}) {
			gaps = append(gaps, "Missing email deliverability and spam prevention guidance")
		}
		if !containsAny(content, []string{"dns", "spf", "dkim"}) {
			gaps = append(gaps, "Missing DNS configuration (SPF/DKIM) guidance")
		}
	}
	if category == "deployment" {
		title := strings.ToLower(issue.Title)
		for _, p := range hostingPlatforms {
			if strings.Contains(title, p) && !strings.Contains(content, p) {
				gaps = append(gaps, fmt.Sprintf("Missing %s-specific deployment guidance", platformName(p)))
			}
		}
		if !containsAny(content, envVarTerms) {
			gaps = append(gaps, "Missing environment variable configuration guidance")
		}
	}
	return gaps
}

func platformName(p string) string {
	switch p {
	case "aws":
		return "AWS"
	case "fly.io":
		return "Fly.io"
	}
	return strings.ToUpper(p[:1]) + p[1:]
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
