package gemini

import (
	"context"

	"github.com/fwojciec/docgap"
	"google.golang.org/genai"
)

// DefaultEmbeddingModel produces page and query embeddings.
const DefaultEmbeddingModel = "gemini-embedding-001"

var _ docgap.Embedder = (*Embedder)(nil)

// Embedder implements docgap.Embedder using the Gemini embedding API.
type Embedder struct {
	client *genai.Client
	model  string
}

// NewEmbedder creates a new Embedder. An empty model selects
// DefaultEmbeddingModel.
func NewEmbedder(client *genai.Client, model string) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{client: client, model: model}
}

// Embed returns the semantic-similarity embedding of text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, docgap.Errorf(docgap.EINVALID, "text required")
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{TaskType: "SEMANTIC_SIMILARITY"},
	)
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, docgap.Errorf(docgap.EINTERNAL, "gemini returned no embedding")
	}
	return result.Embeddings[0].Values, nil
}
