package mock

import (
	"context"

	"github.com/fwojciec/docgap"
)

var _ docgap.Generator = (*Generator)(nil)

// Generator is a mock implementation of docgap.Generator.
type Generator struct {
	GenerateFn func(ctx context.Context, conversation []docgap.Turn, maxTokens int) (*docgap.Generation, error)
}

func (g *Generator) Generate(ctx context.Context, conversation []docgap.Turn, maxTokens int) (*docgap.Generation, error) {
	return g.GenerateFn(ctx, conversation, maxTokens)
}

var _ docgap.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of docgap.Embedder.
type Embedder struct {
	EmbedFn func(ctx context.Context, text string) ([]float32, error)
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedFn(ctx, text)
}

var _ docgap.TokenCounter = (*TokenCounter)(nil)

// TokenCounter is a mock implementation of docgap.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, conversation []docgap.Turn) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, conversation []docgap.Turn) (int, error) {
	return tc.CountTokensFn(ctx, conversation)
}
