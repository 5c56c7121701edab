// Package readability extracts the main content of documentation pages with
// go-readability.
package readability

import (
	"strings"

	"github.com/fwojciec/docgap"
	"github.com/go-shiori/go-readability"
)

var (
	_ docgap.Extractor        = (*Extractor)(nil)
	_ docgap.ContentExtractor = (*Extractor)(nil)
)

// Extractor wraps go-readability.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

func parse(rawHTML string) (readability.Article, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return readability.Article{}, docgap.Errorf(docgap.EINVALID, "empty HTML input")
	}
	return readability.FromReader(strings.NewReader(rawHTML), nil)
}

// Extract returns the article title and its content as HTML.
func (e *Extractor) Extract(rawHTML string) (*docgap.ExtractResult, error) {
	article, err := parse(rawHTML)
	if err != nil {
		return nil, err
	}
	return &docgap.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}

// ExtractContent returns the article title, excerpt and text.
func (e *Extractor) ExtractContent(rawHTML string) (*docgap.PageContent, error) {
	article, err := parse(rawHTML)
	if err != nil {
		return nil, err
	}
	return &docgap.PageContent{
		Title:       article.Title,
		Description: article.Excerpt,
		Content:     strings.Join(strings.Fields(article.TextContent), " "),
	}, nil
}
