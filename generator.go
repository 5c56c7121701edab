package docgap

import "context"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in a conversation with a text generator.
type Turn struct {
	Role Role
	Text string
}

// StopReason tells why a generator stopped producing text.
type StopReason string

const (
	// StopEnd means the model finished on its own.
	StopEnd StopReason = "end"
	// StopLength means the output hit the token limit and was truncated.
	StopLength StopReason = "length"
)

// Generation is one response from a text generator.
type Generation struct {
	Text       string
	StopReason StopReason
}

// Generator produces text from a conversation.
type Generator interface {
	// Generate sends the whole conversation and returns the next assistant
	// message, capped at maxTokens output tokens.
	Generate(ctx context.Context, conversation []Turn, maxTokens int) (*Generation, error)
}

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
