package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/docgap/mock"
	docgapslog "github.com/fwojciec/docgap/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingSitemapService_FetchSitemap(t *testing.T) {
	t.Parallel()

	t.Run("logs the sitemap URL and count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.SitemapService{
			FetchSitemapFn: func(context.Context, string) ([]string, error) {
				return []string{"https://resend.com/docs/a"}, nil
			},
		}

		svc := docgapslog.NewLoggingSitemapService(inner, slog.New(slog.NewTextHandler(&buf, nil)))
		urls, err := svc.FetchSitemap(context.Background(), "https://resend.com/docs/sitemap.xml")

		require.NoError(t, err)
		assert.Len(t, urls, 1)
		output := buf.String()
		assert.Contains(t, output, "level=INFO")
		assert.Contains(t, output, `msg="sitemap fetched"`)
		assert.Contains(t, output, "url=https://resend.com/docs/sitemap.xml")
		assert.Contains(t, output, "count=1")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs failures as warnings", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.SitemapService{
			FetchSitemapFn: func(context.Context, string) ([]string, error) {
				return nil, errors.New("HTTP 404")
			},
		}

		svc := docgapslog.NewLoggingSitemapService(inner, slog.New(slog.NewTextHandler(&buf, nil)))
		_, err := svc.FetchSitemap(context.Background(), "https://example.com/sitemap.xml")

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "level=WARN")
		assert.Contains(t, output, `err="HTTP 404"`)
		assert.Contains(t, output, "count=0")
	})
}

func TestLoggingSitemapService_DiscoverURLs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	inner := &mock.SitemapService{
		DiscoverURLsFn: func(_ context.Context, siteURL string) ([]string, error) {
			return []string{siteURL + "/docs/a", siteURL + "/docs/b"}, nil
		},
	}

	svc := docgapslog.NewLoggingSitemapService(inner, slog.New(slog.NewTextHandler(&buf, nil)))
	urls, err := svc.DiscoverURLs(context.Background(), "https://example.com")

	require.NoError(t, err)
	assert.Len(t, urls, 2)
	assert.Contains(t, buf.String(), `msg="sitemap discovered"`)
	assert.Contains(t, buf.String(), "count=2")
}
