// Package openai implements text generation and embeddings with the OpenAI
// API or any compatible endpoint.
package openai

import (
	"context"

	"github.com/fwojciec/docgap"
	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel          = "gpt-4o-mini"
	DefaultEmbeddingModel = string(openai.SmallEmbedding3)
)

// NewClient creates an API client. A non-empty baseURL points it at an
// OpenAI-compatible server.
func NewClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

var _ docgap.Generator = (*Generator)(nil)

// Generator implements docgap.Generator with chat completions.
type Generator struct {
	client      *openai.Client
	model       string
	system      string
	temperature float32
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithModel sets the chat model.
func WithModel(model string) GeneratorOption {
	return func(g *Generator) { g.model = model }
}

// WithSystemPrompt prepends a system message to every conversation.
func WithSystemPrompt(text string) GeneratorOption {
	return func(g *Generator) { g.system = text }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) GeneratorOption {
	return func(g *Generator) { g.temperature = t }
}

// NewGenerator creates a new Generator.
func NewGenerator(client *openai.Client, opts ...GeneratorOption) *Generator {
	g := &Generator{client: client, model: DefaultModel, temperature: 0.4}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate sends the conversation as chat messages and returns the first choice.
func (g *Generator) Generate(ctx context.Context, conversation []docgap.Turn, maxTokens int) (*docgap.Generation, error) {
	if len(conversation) == 0 {
		return nil, docgap.Errorf(docgap.EINVALID, "conversation required")
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    g.messages(conversation),
		Temperature: g.temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, docgap.Errorf(docgap.EINTERNAL, "openai returned no choices")
	}

	choice := resp.Choices[0]
	stop := docgap.StopEnd
	if choice.FinishReason == openai.FinishReasonLength {
		stop = docgap.StopLength
	}
	return &docgap.Generation{Text: choice.Message.Content, StopReason: stop}, nil
}

func (g *Generator) messages(conversation []docgap.Turn) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(conversation)+1)
	if g.system != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: g.system})
	}
	for _, turn := range conversation {
		role := openai.ChatMessageRoleUser
		if turn.Role == docgap.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}
	return msgs
}

var _ docgap.Embedder = (*Embedder)(nil)

// Embedder implements docgap.Embedder with the embeddings endpoint.
type Embedder struct {
	client *openai.Client
	model  string
}

// NewEmbedder creates a new Embedder. An empty model selects
// DefaultEmbeddingModel.
func NewEmbedder(client *openai.Client, model string) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{client: client, model: model}
}

// Embed returns the embedding of text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, docgap.Errorf(docgap.EINVALID, "text required")
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, docgap.Errorf(docgap.EINTERNAL, "openai returned no embedding")
	}
	return resp.Data[0].Embedding, nil
}
