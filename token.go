package docgap

import "context"

// TokenCounter reports how many input tokens a conversation costs a model.
type TokenCounter interface {
	CountTokens(ctx context.Context, conversation []Turn) (int, error)
}
