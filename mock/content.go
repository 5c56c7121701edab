package mock

import "github.com/fwojciec/docgap"

var (
	_ docgap.ContentExtractor = (*ContentExtractor)(nil)
	_ docgap.SnippetExtractor = (*SnippetExtractor)(nil)
	_ docgap.Extractor        = (*Extractor)(nil)
	_ docgap.Converter        = (*Converter)(nil)
)

// ContentExtractor is a mock implementation of docgap.ContentExtractor.
type ContentExtractor struct {
	ExtractContentFn func(html string) (*docgap.PageContent, error)
}

func (e *ContentExtractor) ExtractContent(html string) (*docgap.PageContent, error) {
	return e.ExtractContentFn(html)
}

// SnippetExtractor is a mock implementation of docgap.SnippetExtractor.
type SnippetExtractor struct {
	ExtractSnippetsFn func(html string) []docgap.CodeSnippet
}

func (e *SnippetExtractor) ExtractSnippets(html string) []docgap.CodeSnippet {
	return e.ExtractSnippetsFn(html)
}

// Extractor is a mock implementation of docgap.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*docgap.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*docgap.ExtractResult, error) {
	return e.ExtractFn(html)
}

// Converter is a mock implementation of docgap.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
