package docgap

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

// minKeywordLength is the shortest token kept as a keyword.
const minKeywordLength = 3

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "any": true, "can": true,
	"had": true, "her": true, "was": true, "one": true, "our": true,
	"out": true, "has": true, "his": true, "how": true, "its": true,
	"may": true, "new": true, "now": true, "old": true, "see": true,
	"two": true, "way": true, "who": true, "did": true, "get": true,
	"got": true, "use": true, "using": true, "used": true, "with": true,
	"this": true, "that": true, "from": true, "have": true, "when": true,
	"what": true, "where": true, "which": true, "will": true, "would": true,
	"there": true, "their": true, "them": true, "then": true, "they": true,
	"been": true, "being": true, "into": true, "does": true, "doesn": true,
	"isn": true, "aren": true, "don": true, "cannot": true, "about": true,
	"after": true, "before": true, "also": true, "just": true, "some": true,
	"than": true, "very": true, "should": true, "could": true, "while": true,
	"your": true, "more": true, "most": true, "other": true, "such": true,
	"only": true, "even": true, "each": true, "like": true, "need": true,
	"needs": true, "want": true, "trying": true, "issue": true, "issues": true,
	"problem": true, "help": true, "please": true, "why": true,
}

// categoryKeywords extends an issue's keywords with terms documentation
// pages in that category are expected to use.
var categoryKeywords = map[string][]string{
	"deployment":     {"deploy", "deployment", "production", "hosting"},
	"email-delivery": {"email", "delivery", "deliverability", "domain"},
	"api-usage":      {"api", "request", "endpoint"},
	"authentication": {"auth", "authentication", "token", "key"},
	"webhooks":       {"webhook", "webhooks", "event"},
	"rate-limiting":  {"rate", "limit", "limits"},
	"configuration":  {"config", "configuration", "settings"},
	"integration":    {"integration", "sdk", "setup"},
}

// ExtractKeywords returns the deterministic keyword list of an issue:
// lower-case alphanumeric tokens of length three or more from the title,
// description and category, minus stop words, deduplicated in first-seen
// order, followed by the category's own keywords.
func ExtractKeywords(issue *Issue) []string {
	text := strings.ToLower(issue.Title + " " + issue.Description + " " + issue.Category)

	seen := make(map[string]bool)
	var keywords []string
	add := func(w string) {
		if len(w) < minKeywordLength || stopWords[w] || seen[w] {
			return
		}
		seen[w] = true
		keywords = append(keywords, w)
	}

	for _, tok := range tokenRe.FindAllString(text, -1) {
		add(tok)
	}
	for _, kw := range categoryKeywords[strings.ToLower(issue.Category)] {
		add(kw)
	}
	return keywords
}

// CountKeywordMatches returns how many keywords occur in content.
// Content is expected to be lower-cased already.
func CountKeywordMatches(keywords []string, content string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(content, kw) {
			n++
		}
	}
	return n
}

// ScoreURL scores a documentation URL against issue keywords: one point per
// keyword found in the URL path, plus half a point when the path is inside
// the domain's documentation.
func ScoreURL(rawURL string, keywords []string, cfg DomainConfig) float64 {
	path := strings.ToLower(urlPath(rawURL))
	var score float64
	for _, kw := range keywords {
		if strings.Contains(path, kw) {
			score++
		}
	}
	if cfg.DocsPath != "" && cfg.DocsPath != "/" && strings.Contains(path, strings.ToLower(cfg.DocsPath)) {
		score += 0.5
	}
	return score
}

// TitleFromURL derives a readable title from the last path segment of a URL.
func TitleFromURL(rawURL string) string {
	path := strings.Trim(urlPath(rawURL), "/")
	if path == "" {
		return rawURL
	}
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	words := strings.FieldsFunc(path, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
