package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/alecthomas/kong"
	main "github.com/fwojciec/docgap/cmd/docgap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var commands = []string{"validate", "health", "embed", "cache", "serve", "watch"}

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	parser, err := kong.New(cli,
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	for _, cmd := range commands {
		assert.Contains(t, stdout.String(), cmd, "Help should mention %s command", cmd)
	}
}

func TestCLI_Parse(t *testing.T) {
	t.Parallel()

	newParser := func(t *testing.T, cli *main.CLI) *kong.Kong {
		t.Helper()
		parser, err := kong.New(cli, kong.Exit(func(int) {}), kong.Writers(&bytes.Buffer{}, &bytes.Buffer{}))
		require.NoError(t, err)
		return parser
	}

	t.Run("parses validate flags", func(t *testing.T) {
		t.Parallel()

		cli := &main.CLI{}
		ctx, err := newParser(t, cli).Parse([]string{
			"--verbose", "--log-format", "json",
			"validate", "issues.json", "-d", "resend.com", "--session", "s1", "--refresh",
		})

		require.NoError(t, err)
		assert.Equal(t, "validate <issues>", ctx.Command())
		assert.True(t, cli.Verbose)
		assert.Equal(t, "json", cli.LogFormat)
		assert.Equal(t, "issues.json", cli.Validate.Issues)
		assert.Equal(t, "resend.com", cli.Validate.Domain)
		assert.Equal(t, "s1", cli.Validate.Session)
		assert.True(t, cli.Validate.Refresh)
	})

	t.Run("requires a domain for validate", func(t *testing.T) {
		t.Parallel()

		_, err := newParser(t, &main.CLI{}).Parse([]string{"validate", "issues.json"})

		assert.Error(t, err)
	})

	t.Run("rejects unknown log formats", func(t *testing.T) {
		t.Parallel()

		_, err := newParser(t, &main.CLI{}).Parse([]string{"--log-format", "xml", "health", "resend.com"})

		assert.Error(t, err)
	})

	t.Run("parses cache clear with optional domain", func(t *testing.T) {
		t.Parallel()

		cli := &main.CLI{}
		ctx, err := newParser(t, cli).Parse([]string{"cache", "clear", "--all"})

		require.NoError(t, err)
		assert.Equal(t, "cache clear", ctx.Command())
		assert.True(t, cli.Cache.Clear.All)
		assert.Empty(t, cli.Cache.Clear.Domain)
	})
}

func TestMain_Run_HelpShowsKongOutput(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := main.NewMain().Run(context.Background(), []string{"--help"}, stdout, stderr)
	require.NoError(t, err)

	for _, cmd := range commands {
		assert.Contains(t, stdout.String(), cmd)
	}
	assert.Contains(t, stdout.String(), "Usage:")
	assert.Contains(t, stdout.String(), "Flags:")
}

func TestMain_Run_NoArgs(t *testing.T) {
	t.Parallel()

	err := main.NewMain().Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
}
