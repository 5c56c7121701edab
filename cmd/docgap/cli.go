package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/docgap"
	"github.com/fwojciec/docgap/audit"
	"github.com/prometheus/client_golang/prometheus"
)

// PurgeFunc deletes every stored key that starts with prefix and returns
// how many were deleted.
type PurgeFunc func(ctx context.Context, prefix string) (int, error)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Config *Config

	Store docgap.ObjectStore
	// Purge is nil when the store backend cannot enumerate keys.
	Purge PurgeFunc

	Index      *audit.Index
	Health     *audit.HealthChecker
	Validator  *audit.Validator
	Discoverer docgap.SitemapDiscoverer
	Prober     docgap.HealthProber
	Gatherer   prometheus.Gatherer

	// Subscribe is nil unless progress events are published to a bus.
	Subscribe func(ctx context.Context, sessionID string) (<-chan docgap.ProgressEvent, error)

	NewSessionID func() string
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config    string `short:"c" type:"path" env:"DOCGAP_CONFIG" help:"Path to config file"`
	Verbose   bool   `short:"v" help:"Enable debug logging"`
	LogFormat string `enum:"text,json" default:"text" help:"Log format (text or json)"`

	Validate ValidateCmd `cmd:"" help:"Validate issues against a documentation site"`
	Health   HealthCmd   `cmd:"" help:"Check the health of a documentation sitemap"`
	Embed    EmbedCmd    `cmd:"" help:"Build the page embedding cache for a domain"`
	Cache    CacheCmd    `cmd:"" help:"Manage cached embeddings, health summaries and results"`
	Serve    ServeCmd    `cmd:"" help:"Serve the validation HTTP API"`
	Watch    WatchCmd    `cmd:"" help:"Print progress events of a running session (redis backend)"`
}

// ValidateCmd is the "validate" subcommand.
type ValidateCmd struct {
	Issues  string `arg:"" help:"Issues JSON file (- for stdin)"`
	Domain  string `short:"d" required:"" help:"Documentation domain, e.g. resend.com"`
	Session string `short:"s" help:"Session ID (generated when empty)"`
	Output  string `short:"o" type:"path" help:"Write results to file instead of stdout"`
	Refresh bool   `help:"Clear cached embeddings and health before running"`
}

// HealthCmd is the "health" subcommand.
type HealthCmd struct {
	Domain  string `arg:"" help:"Documentation domain"`
	Refresh bool   `help:"Ignore the cached summary"`
}

// EmbedCmd is the "embed" subcommand.
type EmbedCmd struct {
	Domain  string `arg:"" help:"Documentation domain"`
	Refresh bool   `help:"Rebuild even when embeddings are cached"`
}

// CacheCmd groups cache management subcommands.
type CacheCmd struct {
	Clear CacheClearCmd `cmd:"" help:"Delete cached data"`
}

// CacheClearCmd is the "cache clear" subcommand.
type CacheClearCmd struct {
	Domain  string `arg:"" optional:"" help:"Domain whose embeddings and health summary are deleted"`
	Session string `help:"Delete the results of a validation session"`
	All     bool   `help:"Delete everything (sqlite and redis backends only)"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `help:"Listen address (defaults to server.addr from config)"`
}

// WatchCmd is the "watch" subcommand.
type WatchCmd struct {
	Session string `arg:"" help:"Session ID"`
}
