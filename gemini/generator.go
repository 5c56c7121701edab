// Package gemini implements text generation, embeddings and token counting
// with Google Gemini.
package gemini

import (
	"context"

	"github.com/fwojciec/docgap"
	"google.golang.org/genai"
)

const (
	// DefaultModel generates recommendations.
	DefaultModel = "gemini-2.5-flash"

	// DefaultSystemInstruction frames every recommendation request.
	DefaultSystemInstruction = "You are a technical writer reviewing developer documentation. Recommend concrete, surgical edits to existing pages. Quote the current text or code and show the improved version."

	defaultTemperature = float32(0.4)
)

var _ docgap.Generator = (*Generator)(nil)

// Generator implements docgap.Generator using Google Gemini.
type Generator struct {
	client      *genai.Client
	model       string
	system      string
	temperature float32
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithModel sets the model used for generation.
func WithModel(model string) GeneratorOption {
	return func(g *Generator) { g.model = model }
}

// WithSystemInstruction replaces the system instruction.
func WithSystemInstruction(text string) GeneratorOption {
	return func(g *Generator) { g.system = text }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) GeneratorOption {
	return func(g *Generator) { g.temperature = t }
}

// NewGenerator creates a new Generator.
func NewGenerator(client *genai.Client, opts ...GeneratorOption) *Generator {
	g := &Generator{
		client:      client,
		model:       DefaultModel,
		system:      DefaultSystemInstruction,
		temperature: defaultTemperature,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate sends the conversation to Gemini and returns the next model turn.
func (g *Generator) Generate(ctx context.Context, conversation []docgap.Turn, maxTokens int) (*docgap.Generation, error) {
	if len(conversation) == 0 {
		return nil, docgap.Errorf(docgap.EINVALID, "conversation required")
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model,
		BuildContents(conversation),
		BuildConfig(g.system, g.temperature, maxTokens),
	)
	if err != nil {
		return nil, err
	}
	if result == nil || len(result.Candidates) == 0 {
		return nil, docgap.Errorf(docgap.EINTERNAL, "gemini returned no candidates")
	}

	return &docgap.Generation{
		Text:       result.Text(),
		StopReason: StopReason(result.Candidates[0].FinishReason),
	}, nil
}

// BuildContents maps conversation turns to Gemini contents. Assistant turns
// use the "model" role.
func BuildContents(conversation []docgap.Turn) []*genai.Content {
	contents := make([]*genai.Content, len(conversation))
	for i, turn := range conversation {
		role := genai.RoleUser
		if turn.Role == docgap.RoleAssistant {
			role = genai.RoleModel
		}
		contents[i] = genai.NewContentFromText(turn.Text, genai.Role(role))
	}
	return contents
}

// BuildConfig returns the GenerateContentConfig for a generation call.
// A non-positive maxTokens leaves the output length to the model default.
func BuildConfig(system string, temperature float32, maxTokens int) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens)
	}
	return cfg
}

// StopReason maps a Gemini finish reason onto docgap's stop reasons.
func StopReason(reason genai.FinishReason) docgap.StopReason {
	if reason == genai.FinishReasonMaxTokens {
		return docgap.StopLength
	}
	return docgap.StopEnd
}
