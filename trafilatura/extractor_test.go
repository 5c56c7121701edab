package trafilatura_test

import (
	"testing"

	"github.com/fwojciec/docgap"
	"github.com/fwojciec/docgap/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docsPage = `<!DOCTYPE html>
<html>
<head>
<title>Webhooks | Acme Docs</title>
<meta name="description" content="Receive events from Acme.">
</head>
<body>
<nav class="navbar"><a href="/">Acme</a><a href="/docs">Docs</a><a href="/blog">Blog</a></nav>
<main>
<article>
<h1>Webhooks</h1>
<p>Webhooks notify your application when an email is delivered, bounced or opened.</p>
<h2>Verifying signatures</h2>
<p>Every request carries a signature header that you should verify before trusting the payload.</p>
<pre><code>func verify(sig string) bool { return sig != "" }</code></pre>
</article>
</main>
<footer><p>Copyright 2026 Acme Corp</p></footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewExtractor().Extract("  ")

		require.Error(t, err)
		assert.Equal(t, docgap.EINVALID, docgap.ErrorCode(err))
	})

	t.Run("returns main content as HTML", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(docsPage)

		require.NoError(t, err)
		assert.NotEmpty(t, result.Title)
		assert.Contains(t, result.ContentHTML, "signature header")
		assert.NotContains(t, result.ContentHTML, "Copyright 2026 Acme Corp")
	})
}

func TestExtractor_ExtractContent(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewExtractor().ExtractContent("")

		assert.Equal(t, docgap.EINVALID, docgap.ErrorCode(err))
	})

	t.Run("returns plain text with metadata", func(t *testing.T) {
		t.Parallel()

		content, err := trafilatura.NewExtractor().ExtractContent(docsPage)

		require.NoError(t, err)
		assert.NotEmpty(t, content.Title)
		assert.Equal(t, "Receive events from Acme.", content.Description)
		assert.Contains(t, content.Content, "notify your application")
		assert.NotContains(t, content.Content, "<p>")
		assert.NotContains(t, content.Content, "\n")
	})
}
