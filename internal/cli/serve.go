package cli

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/autocal/internal/api"
	"github.com/roach88/autocal/internal/calendar"
	"github.com/roach88/autocal/internal/config"
	"github.com/roach88/autocal/internal/conflict"
	"github.com/roach88/autocal/internal/store"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the HTTP API server.

Sessions are resolved from the X-Session-ID request header; requests
without one get a generated session key echoed back in the response.

Example:
  autocal serve --db autocal.db
  autocal serve --listen :8787`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")

	return cmd
}

func runServe(opts *RootOptions, listen string) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	if opts.DB != "" {
		cfg.DatabasePath = opts.DB
	}
	if listen != "" {
		cfg.Listen = listen
	}

	logger := newLogger(cfg.LogLevel, opts.Verbose)

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "open database", err)
	}
	defer st.Close()

	registry := calendar.NewRegistry(st,
		calendar.WithLogger(logger),
		calendar.WithDetector(conflict.New(
			conflict.WithBuffer(time.Duration(cfg.BufferMinutes)*time.Minute))),
	)
	server := api.NewServer(registry, logger)

	logger.Info("listening", "addr", cfg.Listen, "db", cfg.DatabasePath)
	if err := http.ListenAndServe(cfg.Listen, server.Handler()); err != nil {
		return WrapExitError(ExitCommandError, "serve", err)
	}
	return nil
}

// newLogger builds the process slog logger. --verbose wins over the
// configured level.
func newLogger(level string, verbose bool) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	if verbose {
		l = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
