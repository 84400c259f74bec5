package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/NomadCrew/feedback-client/internal/metrics"
	"github.com/NomadCrew/feedback-client/logger"
	"github.com/NomadCrew/feedback-client/router"
	"github.com/NomadCrew/feedback-client/services"
	"github.com/NomadCrew/feedback-client/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const metricsShutdownTimeout = 5 * time.Second

func newUICmd(a *app) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive feedback form and list",
		Long: `Runs the full-screen terminal UI. Press ctrl+t to switch between the form
and the list of recent feedback, ctrl+c to quit.

With --metrics-addr, Prometheus metrics and a health check are served on that
address while the UI runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("metrics-addr") {
				metricsAddr = a.cfg.Metrics.Addr
			}

			reg := prometheus.NewRegistry()
			m := metrics.New(reg)

			client := a.client(m)

			if metricsAddr != "" {
				stop, err := serveMetrics(metricsAddr, reg, services.NewHealthService(client, Version))
				if err != nil {
					return err
				}
				defer stop()
			}

			list := services.NewFeedbackListService(client,
				services.WithPageSize(a.cfg.API.PageSize),
				services.WithStaleAfter(time.Duration(a.cfg.UI.StaleSeconds)*time.Second),
				services.WithListMetrics(m),
			)
			submit := services.NewSubmissionService(client,
				services.WithSuccessDuration(time.Duration(a.cfg.UI.ToastSeconds)*time.Second),
			)

			p := tea.NewProgram(ui.New(list, submit),
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("ui exited: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics and /health on this address (e.g. :9091)")
	return cmd
}

// serveMetrics starts the observability listener and returns its shutdown
// func. Bind errors are reported before the UI takes over the terminal.
func serveMetrics(addr string, reg *prometheus.Registry, health router.HealthChecker) (func(), error) {
	log := logger.GetLogger().Named("metrics")

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Handler: router.SetupRouter(router.Dependencies{
			Gatherer: reg,
			Health:   health,
			Logger:   log,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Infow("Serving metrics", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("Metrics listener stopped", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warnw("Metrics listener shutdown failed", "error", err)
		}
		<-done
	}, nil
}
