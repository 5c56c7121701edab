package docgap

// ExtractResult is the main article of a page as HTML.
type ExtractResult struct {
	Title       string
	ContentHTML string
}

// Extractor isolates the main article of a page. The recommendation prompt
// quotes it as a markdown excerpt.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

// Converter renders extracted HTML as markdown.
type Converter interface {
	Convert(html string) (string, error)
}

// PageContent is the plain-text view of a documentation page used for
// embedding.
type PageContent struct {
	Title       string
	Description string

	// Content is visible text with scripts, styles and page chrome removed
	// and whitespace collapsed.
	Content string
}

// ContentExtractor turns raw HTML into plain-text page content.
type ContentExtractor interface {
	ExtractContent(html string) (*PageContent, error)
}

// CodeSnippet is a code sample found on a documentation page.
type CodeSnippet struct {
	Language string
	Code     string
}

// SnippetExtractor finds code samples in raw HTML.
type SnippetExtractor interface {
	// ExtractSnippets returns language-tagged code blocks first, followed by
	// code-like inline code not already covered by a block.
	ExtractSnippets(html string) []CodeSnippet
}
