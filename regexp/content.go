// Package regexp extracts page content and code samples with regular
// expressions. It tolerates malformed markup that a DOM parser would reject
// or restructure.
package regexp

import (
	"html"
	"regexp"
	"strings"

	"github.com/fwojciec/docgap"
)

var (
	commentRe      = regexp.MustCompile(`(?s)<!--.*?-->`)
	tagRe          = regexp.MustCompile(`(?s)<[^>]+>`)
	titleRe        = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title\s*>`)
	h1Re           = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1\s*>`)
	metaRe         = regexp.MustCompile(`(?is)<meta\s[^>]*>`)
	attrRe         = regexp.MustCompile(`(?is)([a-z:-]+)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	blockClosingRe = regexp.MustCompile(`(?i)</(p|div|li|h[1-6]|tr|pre|section|article|br)\s*>|<br\s*/?>`)
)

// chromeRes match elements that never carry documentation content, one
// expression per tag since RE2 has no backreferences.
var chromeRes = func() []*regexp.Regexp {
	tags := []string{"script", "style", "noscript", "template", "svg", "nav", "header", "footer", "aside"}
	out := make([]*regexp.Regexp, len(tags))
	for i, tag := range tags {
		out[i] = regexp.MustCompile(`(?is)<` + tag + `\b[^>]*>.*?</` + tag + `\s*>`)
	}
	return out
}()

var _ docgap.ContentExtractor = (*ContentExtractor)(nil)

// ContentExtractor extracts page text without building a DOM.
type ContentExtractor struct{}

// NewContentExtractor creates a new ContentExtractor.
func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

// ExtractContent returns the title, description and visible text of a page.
// Chrome elements are removed only when they are properly closed.
func (e *ContentExtractor) ExtractContent(raw string) (*docgap.PageContent, error) {
	metas := metaTags(raw)

	title := firstGroup(titleRe, raw)
	if title == "" {
		title = metas["og:title"]
	}
	if title == "" {
		title = firstGroup(h1Re, raw)
	}

	description := metas["description"]
	if description == "" {
		description = metas["og:description"]
	}

	body := raw
	if i := strings.Index(strings.ToLower(body), "</head>"); i >= 0 {
		body = body[i+len("</head>"):]
	}

	return &docgap.PageContent{
		Title:       title,
		Description: description,
		Content:     visibleText(body),
	}, nil
}

// visibleText strips chrome, comments and tags, decodes entities and
// collapses whitespace.
func visibleText(s string) string {
	s = commentRe.ReplaceAllString(s, " ")
	for _, re := range chromeRes {
		s = re.ReplaceAllString(s, " ")
	}
	s = blockClosingRe.ReplaceAllString(s, " ")
	s = tagRe.ReplaceAllString(s, "")
	return collapseSpace(html.UnescapeString(s))
}

// metaTags maps the name or property of each <meta> tag to its content.
// The first occurrence wins.
func metaTags(s string) map[string]string {
	out := make(map[string]string)
	for _, tag := range metaRe.FindAllString(s, -1) {
		attrs := make(map[string]string)
		for _, m := range attrRe.FindAllStringSubmatch(tag, -1) {
			attrs[strings.ToLower(m[1])] = m[2] + m[3]
		}
		key := attrs["name"]
		if key == "" {
			key = attrs["property"]
		}
		content := strings.TrimSpace(html.UnescapeString(attrs["content"]))
		if key == "" || content == "" {
			continue
		}
		key = strings.ToLower(key)
		if _, ok := out[key]; !ok {
			out[key] = content
		}
	}
	return out
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return collapseSpace(html.UnescapeString(tagRe.ReplaceAllString(m[1], "")))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
