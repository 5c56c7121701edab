// Package trafilatura extracts the main content of documentation pages with
// go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/docgap"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var (
	_ docgap.Extractor        = (*Extractor)(nil)
	_ docgap.ContentExtractor = (*Extractor)(nil)
)

// Extractor wraps go-trafilatura.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor with fallback extractors enabled.
func NewExtractor() *Extractor {
	return &Extractor{opts: trafilatura.Options{EnableFallback: true}}
}

func (e *Extractor) extract(rawHTML string) (*trafilatura.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docgap.Errorf(docgap.EINVALID, "empty HTML input")
	}
	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Extract returns the page title and its main content as HTML.
func (e *Extractor) Extract(rawHTML string) (*docgap.ExtractResult, error) {
	result, err := e.extract(rawHTML)
	if err != nil {
		return nil, err
	}

	var contentHTML string
	if result.ContentNode != nil {
		var buf bytes.Buffer
		if err := html.Render(&buf, result.ContentNode); err != nil {
			return nil, err
		}
		contentHTML = buf.String()
	}

	return &docgap.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

// ExtractContent returns the page metadata and its main content as plain text.
func (e *Extractor) ExtractContent(rawHTML string) (*docgap.PageContent, error) {
	result, err := e.extract(rawHTML)
	if err != nil {
		return nil, err
	}
	return &docgap.PageContent{
		Title:       result.Metadata.Title,
		Description: result.Metadata.Description,
		Content:     strings.Join(strings.Fields(result.ContentText), " "),
	}, nil
}
