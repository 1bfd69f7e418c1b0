// Package cli is the notehub command line. Without a subcommand it starts the
// interactive app; ls, add and rm run a single API call and exit.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/notehub/internal/config"
	"github.com/idilsaglam/notehub/internal/logging"
	"github.com/idilsaglam/notehub/internal/notehub"
	"github.com/idilsaglam/notehub/internal/query"
	"github.com/idilsaglam/notehub/internal/tui"
	"github.com/idilsaglam/notehub/internal/ui"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// usageError marks bad arguments, flags, configuration or input.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// Option customizes a Runner.
type Option func(*Runner)

// WithTUI replaces the function that runs the interactive app.
func WithTUI(run func(tui.Model) error) Option {
	return func(r *Runner) { r.runTUI = run }
}

// Runner holds the state of one invocation.
type Runner struct {
	stdout, stderr io.Writer
	runTUI         func(tui.Model) error

	apiURL   string
	theme    string
	logFile  string
	logLevel string
	verbose  bool

	cfg    *config.Config
	log    zerolog.Logger
	closer io.Closer
	client *notehub.Client
}

// NewRunner returns a Runner writing to stdout and stderr.
func NewRunner(stdout, stderr io.Writer, opts ...Option) *Runner {
	r := &Runner{
		stdout: stdout,
		stderr: stderr,
		runTUI: func(m tui.Model) error { return tui.Run(m) },
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes args and returns an exit code (0 ok, 1 error, 2 usage).
func (r *Runner) Run(ctx context.Context, args []string) int {
	root := r.rootCmd()
	root.SetArgs(args)
	root.SetOut(r.stdout)
	root.SetErr(r.stderr)

	err := root.ExecuteContext(ctx)
	if r.closer != nil {
		_ = r.closer.Close()
	}
	if err == nil {
		return ExitOK
	}

	ui.Fail(r.stderr, err.Error())
	var uerr *usageError
	var verr *config.ValidationError
	if errors.As(err, &uerr) || errors.As(err, &verr) {
		return ExitUsage
	}
	return ExitError
}

func (r *Runner) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "notehub",
		Short: "Browse, search, create and delete NoteHub notes",
		Long: `notehub is a terminal client for the NoteHub notes API.
Run it without a subcommand for the interactive app.`,
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return r.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.interactive(cmd.Context())
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&r.apiURL, "api-url", "", "API base URL (overrides NOTEHUB_API_URL)")
	pf.StringVar(&r.theme, "theme", "", "color theme: classic, neon or mono (overrides NOTEHUB_THEME)")
	pf.StringVar(&r.logFile, "log-file", "", "append logs to this file (overrides NOTEHUB_LOG_FILE)")
	pf.StringVar(&r.logLevel, "log-level", "", "log level (overrides NOTEHUB_LOG_LEVEL)")
	pf.BoolVarP(&r.verbose, "verbose", "v", false, "log at debug level")

	root.AddCommand(
		r.tuiCmd(),
		r.lsCmd(),
		r.addCmd(),
		r.rmCmd(),
	)
	return root
}

// setup loads configuration, applies flag overrides and builds the logger and
// API client shared by every subcommand.
func (r *Runner) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if r.apiURL != "" {
		cfg.APIURL = r.apiURL
	}
	if r.theme != "" {
		cfg.Theme = r.theme
	}
	if r.logFile != "" {
		cfg.LogFile = r.logFile
	}
	if r.logLevel != "" {
		cfg.LogLevel = r.logLevel
	}
	if r.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.cfg = cfg
	ui.SetTheme(cfg.Theme)

	// The interactive app owns the terminal; console logs only go to stderr
	// for one-shot commands.
	opts := logging.Options{Path: cfg.LogFile, Level: cfg.LogLevel}
	if r.verbose && !isInteractive(cmd) {
		opts.Console = r.stderr
	}
	log, closer, err := logging.New(opts)
	if err != nil {
		return &usageError{err: err}
	}
	r.log, r.closer = log, closer

	r.client = notehub.New(cfg.APIURL,
		notehub.WithToken(cfg.Token),
		notehub.WithTimeout(cfg.Timeout),
		notehub.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		notehub.WithLogger(log),
	)
	r.log.Debug().
		Str("api_url", cfg.APIURL).
		Bool("token", cfg.Token != "").
		Int("per_page", cfg.PerPage).
		Str("command", cmd.Name()).
		Msg("configured")
	return nil
}

func isInteractive(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == "tui"
}

// interactive runs the app. Fetches and mutations inherit ctx, so a signal
// aborts requests still in flight.
func (r *Runner) interactive(ctx context.Context) error {
	queries := query.New(tui.ListFetcher(r.client, r.cfg.PerPage),
		query.WithContext(ctx),
		query.WithLogger(r.log),
	)
	log := r.log
	m := tui.New(r.client, queries, tui.Options{PerPage: r.cfg.PerPage, Logger: &log})
	r.log.Info().Msg("starting interactive app")
	if err := r.runTUI(m); err != nil {
		return fmt.Errorf("interactive app: %w", err)
	}
	return nil
}

// usageArgs turns cobra's argument errors into usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}
