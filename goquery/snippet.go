package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docgap"
)

// minInlineCode is the length at which inline code counts as a snippet
// regardless of its characters.
const minInlineCode = 20

// codeSymbols mark inline code as code-like when present.
const codeSymbols = "(){}[]=;<>:/."

var _ docgap.SnippetExtractor = (*SnippetExtractor)(nil)

// SnippetExtractor finds code samples with CSS selectors.
type SnippetExtractor struct{}

// NewSnippetExtractor creates a new SnippetExtractor.
func NewSnippetExtractor() *SnippetExtractor {
	return &SnippetExtractor{}
}

// ExtractSnippets returns language-tagged code blocks, then code-like inline
// code that does not repeat a block.
func (e *SnippetExtractor) ExtractSnippets(html string) []docgap.CodeSnippet {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var snippets []docgap.CodeSnippet
	seen := make(map[string]bool)

	doc.Find("pre").Each(func(_ int, pre *goquery.Selection) {
		code := pre.Find("code").First()
		if code.Length() == 0 {
			code = pre
		}
		lang := language(code)
		if lang == "" {
			lang = language(pre)
		}
		text := strings.TrimSpace(code.Text())
		if lang == "" || text == "" || seen[text] {
			return
		}
		seen[text] = true
		snippets = append(snippets, docgap.CodeSnippet{Language: lang, Code: text})
	})

	doc.Find("code").Each(func(_ int, code *goquery.Selection) {
		if code.ParentsFiltered("pre").Length() > 0 {
			return
		}
		text := strings.TrimSpace(code.Text())
		if !isCodeLike(text) || seen[text] || coveredBy(snippets, text) {
			return
		}
		seen[text] = true
		snippets = append(snippets, docgap.CodeSnippet{Code: text})
	})

	return snippets
}

// language reads the language from class="language-x", class="lang-x" or
// data-language.
func language(sel *goquery.Selection) string {
	if lang, ok := sel.Attr("data-language"); ok && lang != "" {
		return strings.ToLower(lang)
	}
	for _, class := range strings.Fields(sel.AttrOr("class", "")) {
		for _, prefix := range []string{"language-", "lang-"} {
			if strings.HasPrefix(class, prefix) && len(class) > len(prefix) {
				return strings.ToLower(strings.TrimPrefix(class, prefix))
			}
		}
	}
	return ""
}

func isCodeLike(text string) bool {
	if text == "" {
		return false
	}
	return len(text) >= minInlineCode || strings.ContainsAny(text, codeSymbols)
}

func coveredBy(snippets []docgap.CodeSnippet, text string) bool {
	for _, s := range snippets {
		if strings.Contains(s.Code, text) {
			return true
		}
	}
	return false
}
