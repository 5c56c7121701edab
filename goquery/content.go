package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docgap"
)

// chromeSelector matches elements that never carry documentation content.
const chromeSelector = "script, style, noscript, template, svg, nav, header, footer, aside, iframe, form"

var _ docgap.ContentExtractor = (*ContentExtractor)(nil)

// ContentExtractor extracts page text from the documentation framework's
// main content region.
type ContentExtractor struct{}

// NewContentExtractor creates a new ContentExtractor.
func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

// ExtractContent returns the title, description and visible main-content
// text of a page.
func (e *ContentExtractor) ExtractContent(html string) (*docgap.PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, docgap.Errorf(docgap.EINVALID, "failed to parse HTML: %v", err)
	}

	content := &docgap.PageContent{
		Title:       pageTitle(doc),
		Description: metaContent(doc, "meta[name='description']", "meta[property='og:description']"),
	}

	root := contentRoot(doc, DetectFramework(doc)).Clone()
	root.Find(chromeSelector).Remove()
	content.Content = collapseSpace(root.Text())
	return content, nil
}

func pageTitle(doc *goquery.Document) string {
	if t := collapseSpace(doc.Find("head title").First().Text()); t != "" {
		return t
	}
	if t := metaContent(doc, "meta[property='og:title']"); t != "" {
		return t
	}
	return collapseSpace(doc.Find("h1").First().Text())
}

// metaContent returns the first non-empty content attribute among selectors.
func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
