// Package cli wires the feedback commands: submit, list, import, health and
// the interactive ui.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/NomadCrew/feedback-client/config"
	"github.com/NomadCrew/feedback-client/internal/metrics"
	"github.com/NomadCrew/feedback-client/internal/transport"
	"github.com/NomadCrew/feedback-client/logger"
	"github.com/NomadCrew/feedback-client/pkg/feedbackapi"
	"github.com/spf13/cobra"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// errReported marks a failure whose message has already been printed.
var errReported = errors.New("failure already reported")

type rootOptions struct {
	apiURL  string
	verbose bool
	logFile string
}

// app carries what every subcommand needs once the root has run.
type app struct {
	opts rootOptions
	cfg  *config.Config
}

func (a *app) client(m *metrics.Metrics) *feedbackapi.Client {
	return feedbackapi.NewClientForURL(a.cfg.API.BaseURL,
		transport.WithMetrics(m),
		transport.WithUserAgent("feedback-cli/"+Version),
	)
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "feedback",
		Short: "Submit and browse user feedback",
		Long: `feedback talks to the feedback service REST API.

Submit an entry with "feedback submit", page through entries with
"feedback list", or run "feedback ui" for the interactive form and list.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.apiURL, "api-url", "", "feedback service origin (overrides FEEDBACK_API_URL)")
	flags.BoolVarP(&a.opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&a.opts.logFile, "log-file", "", "write logs to this file instead of stderr")

	root.AddCommand(
		newSubmitCmd(a),
		newListCmd(a),
		newImportCmd(a),
		newHealthCmd(a),
		newUICmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.opts.verbose {
		_ = os.Setenv("LOG_LEVEL", "debug")
	}

	switch {
	case a.opts.logFile != "":
		logger.InitLoggerWithOutput(a.opts.logFile)
	case cmd.Name() == "ui":
		// The interactive UI owns the terminal.
		logger.InitLoggerWithOutput(os.DevNull)
	default:
		logger.InitLogger()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if a.opts.apiURL != "" {
		base := strings.TrimRight(strings.TrimSpace(a.opts.apiURL), "/")
		if err := config.ValidateBaseURL(base); err != nil {
			return err
		}
		cfg.API.BaseURL = base
	}

	a.cfg = cfg
	logger.GetLogger().Debugw("Using feedback service", "baseURL", cfg.API.BaseURL, "command", cmd.Name())
	return nil
}

// Execute runs the root command with os.Args and returns the process exit code.
func Execute() int {
	return run(NewRootCmd(), os.Args[1:], os.Stderr)
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}
