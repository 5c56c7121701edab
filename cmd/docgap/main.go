package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docgap"
	docgapprom "github.com/fwojciec/docgap/prometheus"
	docgapredis "github.com/fwojciec/docgap/redis"
	docgapslog "github.com/fwojciec/docgap/slog"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Config is loaded during Run unless set beforehand.
	Config *Config

	closers []func() error
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close releases every resource opened by Run, most recent first.
func (m *Main) Close() error {
	var first error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	m.closers = nil
	return first
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:          ctx,
		Stdin:        os.Stdin,
		Stdout:       stdout,
		Stderr:       stderr,
		NewSessionID: func() string { return uuid.NewString() },
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docgap"),
		kong.Description("Validate developer issues against documentation sites."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docgap --help' to see available commands")
	}
	switch args[0] {
	case "help", "--help", "-h":
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.Logger = newLogger(stderr, cli.Verbose, cli.LogFormat)

	if m.Config == nil {
		if m.Config, err = LoadConfig(cli.Config); err != nil {
			return err
		}
	}
	m.Config.RegisterDomains()
	deps.Config = m.Config
	defer m.Close()

	be, err := openBackend(ctx, m.Config.Store)
	if err != nil {
		fmt.Fprintln(stderr, "Hint: check the store section of your config or set DOCGAP_STORE_BACKEND")
		return err
	}
	m.closers = append(m.closers, be.close)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := docgapprom.NewMetrics(reg)
	deps.Gatherer = reg

	deps.Store = docgapslog.NewLoggingObjectStore(docgapprom.NewObjectStore(be.store, metrics), deps.Logger)
	deps.Purge = be.purge

	var bus docgap.ProgressPublisher
	if be.redis != nil {
		bus = docgapredis.NewProgressPublisher(be.redis, deps.Logger)
		deps.Subscribe = func(ctx context.Context, sessionID string) (<-chan docgap.ProgressEvent, error) {
			return docgapredis.Subscribe(ctx, be.redis, sessionID)
		}
	}
	progress := docgapslog.NewProgressLogger(docgapprom.NewProgressPublisher(bus, metrics), deps.Logger)

	cmd := kongCtx.Command()
	pipeline := cmd == "validate <issues>" || cmd == "embed <domain>" || cmd == "serve"
	svc, err := wireServices(ctx, m.Config, deps.Store, progress, metrics, deps.Logger, wireOptions{pipeline: pipeline})
	if err != nil {
		return err
	}
	m.closers = append(m.closers, svc.close)

	deps.Index = svc.index
	deps.Health = svc.health
	deps.Validator = svc.validator
	deps.Discoverer = svc.discoverer
	deps.Prober = svc.prober

	return kongCtx.Run(deps)
}

func newLogger(w io.Writer, verbose bool, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
