package regexp

import (
	"html"
	"regexp"
	"strings"

	"github.com/fwojciec/docgap"
)

var (
	preRe        = regexp.MustCompile(`(?is)<pre([^>]*)>(.*?)</pre\s*>`)
	codeOpenRe   = regexp.MustCompile(`(?is)^\s*<code([^>]*)>`)
	langClassRe  = regexp.MustCompile(`(?i)\b(?:language|lang)-([a-z0-9_+#-]+)`)
	dataLangRe   = regexp.MustCompile(`(?i)data-language\s*=\s*["']([^"']+)["']`)
	fenceRe      = regexp.MustCompile("(?s)```([A-Za-z0-9_+#-]+)[ \t]*\r?\n(.*?)```")
	inlineCodeRe = regexp.MustCompile(`(?is)<code[^>]*>(.*?)</code\s*>`)
)

// minInlineCode is the length at which inline code counts as a snippet
// regardless of its characters.
const minInlineCode = 20

const codeSymbols = "(){}[]=;<>:/."

var _ docgap.SnippetExtractor = (*SnippetExtractor)(nil)

// SnippetExtractor finds code samples in HTML and embedded markdown fences.
type SnippetExtractor struct{}

// NewSnippetExtractor creates a new SnippetExtractor.
func NewSnippetExtractor() *SnippetExtractor {
	return &SnippetExtractor{}
}

// ExtractSnippets returns language-tagged <pre> blocks and markdown fences,
// then code-like inline code outside <pre> not covered by a block.
func (e *SnippetExtractor) ExtractSnippets(raw string) []docgap.CodeSnippet {
	var snippets []docgap.CodeSnippet
	seen := make(map[string]bool)
	add := func(lang, code string) {
		if code == "" || seen[code] {
			return
		}
		seen[code] = true
		snippets = append(snippets, docgap.CodeSnippet{Language: lang, Code: code})
	}

	for _, m := range preRe.FindAllStringSubmatch(raw, -1) {
		inner := m[2]
		var lang string
		if c := codeOpenRe.FindStringSubmatch(inner); c != nil {
			lang = language(c[1])
		}
		if lang == "" {
			lang = language(m[1])
		}
		if lang != "" {
			add(lang, text(inner))
		}
	}

	for _, m := range fenceRe.FindAllStringSubmatch(raw, -1) {
		add(strings.ToLower(m[1]), strings.TrimSpace(m[2]))
	}

	outside := preRe.ReplaceAllString(raw, " ")
	for _, m := range inlineCodeRe.FindAllStringSubmatch(outside, -1) {
		code := text(m[1])
		if !isCodeLike(code) || coveredBy(snippets, code) {
			continue
		}
		add("", code)
	}

	return snippets
}

func language(attrs string) string {
	if m := dataLangRe.FindStringSubmatch(attrs); m != nil {
		return strings.ToLower(m[1])
	}
	if m := langClassRe.FindStringSubmatch(attrs); m != nil {
		return strings.ToLower(m[1])
	}
	return ""
}

// text strips markup from a code fragment while keeping its line breaks.
func text(fragment string) string {
	return strings.TrimSpace(html.UnescapeString(tagRe.ReplaceAllString(fragment, "")))
}

func isCodeLike(code string) bool {
	if code == "" {
		return false
	}
	return len(code) >= minInlineCode || strings.ContainsAny(code, codeSymbols)
}

func coveredBy(snippets []docgap.CodeSnippet, code string) bool {
	for _, s := range snippets {
		if strings.Contains(s.Code, code) {
			return true
		}
	}
	return false
}
