package audit_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fwojciec/docgap"
	"github.com/fwojciec/docgap/audit"
	"github.com/fwojciec/docgap/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(v float64) *float64 { return &v }

func TestRecommender_Recommend(t *testing.T) {
	t.Parallel()

	issue := &docgap.Issue{ID: "1", Title: "Webhook retries", Category: "webhooks", Description: "Retries are unclear"}

	t.Run("returns generic advice without a close page", func(t *testing.T) {
		t.Parallel()

		r := &audit.Recommender{
			Generator: &mock.Generator{
				GenerateFn: func(context.Context, []docgap.Turn, int) (*docgap.Generation, error) {
					t.Fatal("generator must not be called")
					return nil, nil
				},
			},
		}

		evidence := []docgap.Evidence{
			{PageURL: "a"},
			{PageURL: "b", SemanticScore: score(0.49)},
		}

		assert.Equal(t, docgap.GenericRecommendations(issue), r.Recommend(context.Background(), issue, evidence))
		assert.Equal(t, docgap.GenericRecommendations(issue), r.Recommend(context.Background(), issue, nil))
	})

	t.Run("continues truncated output until the model finishes", func(t *testing.T) {
		t.Parallel()

		parts := []string{"1. Add a ret", "ry table\n2. Document back", "off\n3. Show ", "a signature example", "\n4. Link the FAQ"}
		var calls int
		var lastConversation []docgap.Turn
		var fetched string

		r := &audit.Recommender{
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					fetched = url
					return `<pre><code class="language-js">retry()</code></pre>`, nil
				},
			},
			Snippets: &mock.SnippetExtractor{
				ExtractSnippetsFn: func(string) []docgap.CodeSnippet {
					return []docgap.CodeSnippet{{Language: "js", Code: "retry()"}}
				},
			},
			Generator: &mock.Generator{
				GenerateFn: func(_ context.Context, conv []docgap.Turn, maxTokens int) (*docgap.Generation, error) {
					assert.Equal(t, audit.DefaultMaxTokens, maxTokens)
					lastConversation = conv
					stop := docgap.StopLength
					if calls == len(parts)-1 {
						stop = docgap.StopEnd
					}
					gen := &docgap.Generation{Text: parts[calls], StopReason: stop}
					calls++
					return gen, nil
				},
			},
		}
		evidence := []docgap.Evidence{
			{PageURL: "https://example.com/docs/low", SemanticScore: score(0.55)},
			{PageURL: "https://example.com/docs/webhooks", PageTitle: "Webhooks", SemanticScore: score(0.8)},
		}

		recs := r.Recommend(context.Background(), issue, evidence)

		assert.Equal(t, 5, calls)
		assert.Equal(t, "https://example.com/docs/webhooks", fetched)
		assert.Len(t, lastConversation, 9)
		assert.Contains(t, lastConversation[0].Text, "Webhook retries")
		assert.Contains(t, lastConversation[0].Text, "retry()")
		assert.Equal(t, []string{
			"Add a retry table",
			"Document backoff",
			"Show a signature example",
			"Link the FAQ",
		}, recs)
	})

	t.Run("falls back when generation fails", func(t *testing.T) {
		t.Parallel()

		r := &audit.Recommender{
			Fetcher: &mock.Fetcher{
				FetchFn: func(context.Context, string) (string, error) { return "<p>page</p>", nil },
			},
			Generator: &mock.Generator{
				GenerateFn: func(context.Context, []docgap.Turn, int) (*docgap.Generation, error) {
					return nil, errors.New("quota exceeded")
				},
			},
		}

		recs := r.Recommend(context.Background(), issue, []docgap.Evidence{{PageURL: "u", SemanticScore: score(0.9)}})

		assert.Equal(t, docgap.FallbackRecommendations(issue), recs)
	})

	t.Run("falls back when the page cannot be fetched", func(t *testing.T) {
		t.Parallel()

		r := &audit.Recommender{
			Fetcher: &mock.Fetcher{
				FetchFn: func(context.Context, string) (string, error) { return "", errors.New("timeout") },
			},
		}

		recs := r.Recommend(context.Background(), issue, []docgap.Evidence{{PageURL: "u", SemanticScore: score(0.9)}})

		assert.Equal(t, docgap.FallbackRecommendations(issue), recs)
	})

	t.Run("falls back when output has no numbered lines", func(t *testing.T) {
		t.Parallel()

		r := &audit.Recommender{
			Fetcher: &mock.Fetcher{
				FetchFn: func(context.Context, string) (string, error) { return "<p>page</p>", nil },
			},
			Generator: &mock.Generator{
				GenerateFn: func(context.Context, []docgap.Turn, int) (*docgap.Generation, error) {
					return &docgap.Generation{Text: "I cannot help with that.", StopReason: docgap.StopEnd}, nil
				},
			},
		}

		recs := r.Recommend(context.Background(), issue, []docgap.Evidence{{PageURL: "u", SemanticScore: score(0.9)}})

		assert.Equal(t, docgap.FallbackRecommendations(issue), recs)
	})

	t.Run("uses exhausted output", func(t *testing.T) {
		t.Parallel()

		var calls int
		r := &audit.Recommender{
			MaxAttempts: 2,
			MaxTokens:   100,
			Fetcher: &mock.Fetcher{
				FetchFn: func(context.Context, string) (string, error) { return "<p>page</p>", nil },
			},
			Generator: &mock.Generator{
				GenerateFn: func(_ context.Context, _ []docgap.Turn, maxTokens int) (*docgap.Generation, error) {
					assert.Equal(t, 100, maxTokens)
					calls++
					return &docgap.Generation{Text: "1. Partial advice ", StopReason: docgap.StopLength}, nil
				},
			},
		}

		recs := r.Recommend(context.Background(), issue, []docgap.Evidence{{PageURL: "u", SemanticScore: score(0.9)}})

		assert.Equal(t, 2, calls)
		assert.Equal(t, []string{"Partial advice 1. Partial advice"}, recs)
	})
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	t.Run("includes issue, page context and instructions", func(t *testing.T) {
		t.Parallel()

		issue := &docgap.Issue{
			Title:         "Emails go to spam",
			Category:      "email-delivery",
			Description:   "Gmail marks messages as spam",
			Frequency:     12,
			Sources:       []string{"github", "discord"},
			ErrorMessages: []string{"550 rejected"},
		}
		pc := audit.PageContext{
			Evidence: docgap.Evidence{
				PageURL:       "https://example.com/docs/dns",
				PageTitle:     "DNS",
				ContentGaps:   []string{"Missing code examples"},
				SemanticScore: score(0.72),
			},
			Snippets: []docgap.CodeSnippet{{Language: "bash", Code: "dig TXT example.com"}},
			Outline:  "- DNS (https://example.com/docs/dns#dns)\n",
			Excerpt:  "# DNS\nAdd the records.",
		}

		prompt := audit.BuildPrompt(issue, pc)

		for _, want := range []string{
			"Title: Emails go to spam",
			"Reported 12 times on github, discord",
			"Error: 550 rejected",
			"URL: https://example.com/docs/dns",
			"Similarity to issue: 0.72",
			"- Missing code examples",
			"## Page outline",
			"# DNS\nAdd the records.",
			"Snippet 1:\n```bash\ndig TXT example.com\n```",
			"at most 5 numbered recommendations",
		} {
			assert.Contains(t, prompt, want)
		}
	})

	t.Run("omits empty sections", func(t *testing.T) {
		t.Parallel()

		prompt := audit.BuildPrompt(&docgap.Issue{Title: "x"}, audit.PageContext{})

		assert.NotContains(t, prompt, "## Page outline")
		assert.NotContains(t, prompt, "## Page excerpt")
		assert.NotContains(t, prompt, "## Existing code")
		require.True(t, strings.Contains(prompt, "## Task"))
	})
}

func TestRecommender_Excerpt(t *testing.T) {
	t.Parallel()

	t.Run("adds markdown excerpt and outline to the prompt", func(t *testing.T) {
		t.Parallel()

		var prompt string
		r := &audit.Recommender{
			Fetcher: &mock.Fetcher{
				FetchFn: func(context.Context, string) (string, error) { return "<main>page</main>", nil },
			},
			Extractor: &mock.Extractor{
				ExtractFn: func(html string) (*docgap.ExtractResult, error) {
					return &docgap.ExtractResult{ContentHTML: html}, nil
				},
			},
			Converter: &mock.Converter{
				ConvertFn: func(string) (string, error) { return "# Setup\n## Verify domain\nSteps", nil },
			},
			Generator: &mock.Generator{
				GenerateFn: func(_ context.Context, conv []docgap.Turn, _ int) (*docgap.Generation, error) {
					prompt = conv[0].Text
					return &docgap.Generation{Text: "1. Do it", StopReason: docgap.StopEnd}, nil
				},
			},
		}

		recs := r.Recommend(context.Background(), &docgap.Issue{Title: "x"}, []docgap.Evidence{
			{PageURL: "https://example.com/docs/setup", SemanticScore: score(0.7)},
		})

		assert.Equal(t, []string{"Do it"}, recs)
		assert.Contains(t, prompt, "- Setup (https://example.com/docs/setup#setup)")
		assert.Contains(t, prompt, "  - Verify domain (https://example.com/docs/setup#verify-domain)")
		assert.Contains(t, prompt, "## Verify domain\nSteps")
	})
}
