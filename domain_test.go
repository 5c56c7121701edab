package docgap_test

import (
	"testing"

	"github.com/fwojciec/docgap"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeDomain(t *testing.T) {
	t.Parallel()

	t.Run("strips scheme case and trailing slash", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, docgap.NormalizeDomain("docs.example.com"), docgap.NormalizeDomain("https://Docs.Example.com/"))
		assert.Equal(t, "docs.example.com", docgap.NormalizeDomain("  http://DOCS.example.com//  "))
	})

	t.Run("rewrites parent domains to their docs subdomain", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "docs.knock.app", docgap.NormalizeDomain("https://knock.app"))
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		for _, raw := range []string{
			"https://Docs.Example.com/",
			"knock.app",
			"www.resend.com",
			"https://https://example.com/",
			" liveblocks.io ",
			"",
		} {
			once := docgap.NormalizeDomain(raw)
			assert.Equal(t, once, docgap.NormalizeDomain(once), raw)
		}
	})
}

func TestLookupDomain(t *testing.T) {
	t.Parallel()

	t.Run("returns configured domains", func(t *testing.T) {
		t.Parallel()

		cfg := docgap.LookupDomain("https://resend.com/")

		assert.Equal(t, "https://resend.com/docs/sitemap.xml", cfg.SitemapURL)
		assert.True(t, cfg.IsDocURL("https://resend.com/docs/send-with-nextjs"))
		assert.False(t, cfg.IsDocURL("https://resend.com/blog/launch"))
	})

	t.Run("falls back to the conventional sitemap", func(t *testing.T) {
		t.Parallel()

		cfg := docgap.LookupDomain("example.org")

		assert.Equal(t, "https://example.org/sitemap.xml", cfg.SitemapURL)
		assert.Equal(t, "/docs", cfg.DocsPath)
	})

	t.Run("accepts every URL on a docs subdomain", func(t *testing.T) {
		t.Parallel()

		cfg := docgap.LookupDomain("docs.unknown.dev")

		assert.True(t, cfg.IsDocURL("https://docs.unknown.dev/anything"))
	})

	t.Run("returns registered overrides", func(t *testing.T) {
		t.Parallel()

		docgap.RegisterDomain(docgap.DomainConfig{
			Domain:     "HTTPS://Registered.Example/",
			SitemapURL: "https://registered.example/custom.xml",
			DocsPath:   "/guides",
		})

		cfg := docgap.LookupDomain("registered.example")

		assert.Equal(t, "https://registered.example/custom.xml", cfg.SitemapURL)
		assert.Equal(t, "/guides", cfg.DocsPath)
	})
}

func TestCacheKeys(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "embeddings/docs.knock.app.json", docgap.EmbeddingsKey("https://knock.app/"))
	assert.Equal(t, "sitemap-health/resend.com.json", docgap.SitemapHealthKey("Resend.com"))
	assert.Equal(t, "sessions/abc/validation-results.json", docgap.ResultsKey("abc"))
}
