package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docgap"
)

var _ docgap.Embedder = (*LoggingEmbedder)(nil)

// LoggingEmbedder wraps an Embedder with logging.
type LoggingEmbedder struct {
	next   docgap.Embedder
	logger *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next docgap.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, logger: logger}
}

func (e *LoggingEmbedder) Embed(ctx context.Context, text string) (vec []float32, err error) {
	defer func(begin time.Time) {
		e.logger.Debug("embed",
			"chars", len(text),
			"dims", len(vec),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Embed(ctx, text)
}

var _ docgap.Generator = (*LoggingGenerator)(nil)

// LoggingGenerator wraps a Generator with logging. When a TokenCounter is
// set, the input size of the whole conversation is logged as well; it grows
// with every continuation.
type LoggingGenerator struct {
	next    docgap.Generator
	counter docgap.TokenCounter
	logger  *slog.Logger
}

// NewLoggingGenerator creates a new LoggingGenerator. counter may be nil.
func NewLoggingGenerator(next docgap.Generator, counter docgap.TokenCounter, logger *slog.Logger) *LoggingGenerator {
	return &LoggingGenerator{next: next, counter: counter, logger: logger}
}

func (g *LoggingGenerator) Generate(ctx context.Context, conversation []docgap.Turn, maxTokens int) (gen *docgap.Generation, err error) {
	attrs := []any{
		"turns", len(conversation),
		"max_tokens", maxTokens,
	}
	if g.counter != nil {
		if n, cerr := g.counter.CountTokens(ctx, conversation); cerr == nil {
			attrs = append(attrs, "prompt_tokens", n)
		}
	}

	defer func(begin time.Time) {
		if gen != nil {
			attrs = append(attrs, "chars", len(gen.Text), "stop", string(gen.StopReason))
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		g.logger.Info("generate", attrs...)
	}(time.Now())
	return g.next.Generate(ctx, conversation, maxTokens)
}
