package docgap

// MaxEmbeddedContent caps the page content stored alongside an embedding.
const MaxEmbeddedContent = 8000

// PageEmbedding is a documentation page with its embedding vector.
// A domain's embeddings are cached as one JSON array and never mutated.
type PageEmbedding struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Embedding   []float32 `json:"embedding"`
}

// EmbeddingText returns the text that was embedded for the page.
func (p *PageEmbedding) EmbeddingText() string {
	return p.Title + " " + p.Description + " " + p.Content
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
