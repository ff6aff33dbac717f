package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/rfielding/ctlcheck"

// app carries the state shared by every subcommand.
type app struct {
	out    io.Writer
	errOut io.Writer

	logLevel  string
	logFormat string
	trace     bool
	storePath string

	logger   *slog.Logger
	tracer   trace.Tracer
	shutdown func(context.Context) error
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		out:      out,
		errOut:   errOut,
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer(tracerName),
		shutdown: func(context.Context) error { return nil },
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ctlcheck",
		Short: "Verify CTL properties of Kripke models",
		Long: `ctlcheck evaluates Computation Tree Logic formulas over explicit
state graphs described in YAML model files.

Examples:
  ctlcheck init traffic
  ctlcheck check traffic.yaml
  ctlcheck eval traffic.yaml "AG EF go"
  ctlcheck diagram traffic.yaml --highlight "EF go"
  ctlcheck report traffic.yaml --html -o traffic.html
  ctlcheck examples labyrinth --yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.logLevel, "log-level", envOr("CTLCHECK_LOG_LEVEL", "warn"),
		"Log level: debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", envOr("CTLCHECK_LOG_FORMAT", "auto"),
		"Log format: text, json, or auto (text on a terminal)")
	pf.BoolVar(&a.trace, "trace", false,
		"Write OpenTelemetry spans for each check to stderr")
	pf.StringVar(&a.storePath, "store", os.Getenv("CTLCHECK_STORE"),
		"History database file (bbolt)")

	root.AddCommand(
		a.checkCmd(),
		a.evalCmd(),
		a.diagramCmd(),
		a.reportCmd(),
		a.initCmd(),
		a.examplesCmd(),
		a.historyCmd(),
	)
	return root
}

func (a *app) setup() error {
	logger, err := newLogger(a.errOut, a.logLevel, a.logFormat)
	if err != nil {
		return err
	}
	a.logger = logger

	if a.trace {
		tp, err := newTracerProvider(a.errOut)
		if err != nil {
			return err
		}
		a.tracer = tp.Tracer(tracerName)
		a.shutdown = tp.Shutdown
	}
	return nil
}

func (a *app) close(ctx context.Context) error {
	return a.shutdown(ctx)
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "auto":
		if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			return slog.New(slog.NewTextHandler(w, opts)), nil
		}
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("log format %q: want text, json or auto", format)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
