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

func TestLoggingFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("logs successful fetches at debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				return "<main>Webhooks</main>", nil
			},
		}

		html, err := docgapslog.NewLoggingFetcher(inner, logger).Fetch(context.Background(), "https://resend.com/docs/webhooks")

		require.NoError(t, err)
		assert.Equal(t, "<main>Webhooks</main>", html)
		output := buf.String()
		assert.Contains(t, output, "level=DEBUG")
		assert.Contains(t, output, `msg="page fetched"`)
		assert.Contains(t, output, "host=resend.com")
		assert.Contains(t, output, "bytes=21")
		assert.NotContains(t, output, "err=")
	})

	t.Run("hides successful fetches at info level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) { return "ok", nil },
		}

		_, err := docgapslog.NewLoggingFetcher(inner, slog.New(slog.NewTextHandler(&buf, nil))).
			Fetch(context.Background(), "https://resend.com/docs")

		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})

	t.Run("logs failures as warnings", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				return "", errors.New("HTTP 503")
			},
		}

		_, err := docgapslog.NewLoggingFetcher(inner, slog.New(slog.NewTextHandler(&buf, nil))).
			Fetch(context.Background(), "https://resend.com/docs/domains")

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "level=WARN")
		assert.Contains(t, output, `err="HTTP 503"`)
	})
}

func TestLoggingFetcher_Close(t *testing.T) {
	t.Parallel()

	t.Run("passes close through", func(t *testing.T) {
		t.Parallel()

		closed := false
		inner := &mock.Fetcher{CloseFn: func() error { closed = true; return nil }}

		var buf bytes.Buffer
		err := docgapslog.NewLoggingFetcher(inner, slog.New(slog.NewTextHandler(&buf, nil))).Close()

		require.NoError(t, err)
		assert.True(t, closed)
		assert.Empty(t, buf.String())
	})

	t.Run("logs close errors", func(t *testing.T) {
		t.Parallel()

		inner := &mock.Fetcher{CloseFn: func() error { return errors.New("browser gone") }}

		var buf bytes.Buffer
		err := docgapslog.NewLoggingFetcher(inner, slog.New(slog.NewTextHandler(&buf, nil))).Close()

		require.Error(t, err)
		assert.Contains(t, buf.String(), "fetcher close failed")
	})
}
