package gemini

import (
	"context"

	"github.com/fwojciec/docgap"
	"google.golang.org/genai/tokenizer"
)

var _ docgap.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts conversation tokens offline with the Gemini tokenizer,
// so logging prompt sizes costs no API call.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter fails for models the local tokenizer does not know.
func NewTokenCounter(model string) (*TokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, err
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens counts the conversation as Generate would send it.
func (tc *TokenCounter) CountTokens(_ context.Context, conversation []docgap.Turn) (int, error) {
	if len(conversation) == 0 {
		return 0, nil
	}
	result, err := tc.tok.CountTokens(BuildContents(conversation), nil)
	if err != nil {
		return 0, err
	}
	return int(result.TotalTokens), nil
}
