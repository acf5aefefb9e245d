package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/notifier/internal/api"
	"github.com/shaharia-lab/notifier/internal/build"
	"github.com/shaharia-lab/notifier/internal/config"
	"github.com/shaharia-lab/notifier/internal/logger"
	"github.com/shaharia-lab/notifier/internal/scheduler"
	"github.com/shaharia-lab/notifier/internal/server"
	"github.com/shaharia-lab/notifier/internal/telemetry"
)

// NewServeCmd returns the "serve" subcommand that starts the HTTP server.
func NewServeCmd(cfg *config.AppConfig) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the notification API server",
		Long: `Start the HTTP server exposing the notification API under /api,
plus /health and /metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// CLI flags override env config.
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			logFile := filepath.Join(cfg.LogDir(), logger.LogFileName)
			printBanner(build.Version, fmt.Sprintf("http://localhost:%d", cfg.Port), logFile)

			if err := runServe(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "An error occurred. Please check the logs at: %s\n", logFile)
				return err
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", cfg.Port, "HTTP server port (overrides PORT env var)")
	return cmd
}

func runServe(cfg *config.AppConfig) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sysLogger, logCloser, err := logger.NewFileLogger(cfg.LogDir(), logger.Options{
		Level:  cfg.SlogLevel(),
		Format: cfg.LogFormat,
	})
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logCloser.Close() }()

	sysLogger.Info("notifier starting",
		slog.Int("port", cfg.Port),
		slog.String("data_dir", cfg.DataDir),
		slog.String("db_driver", cfg.DBDriver),
		slog.String("email_provider", cfg.EmailProvider),
		slog.String("version", build.Version),
		slog.String("commit", build.CommitSHA),
		slog.String("build_date", build.BuildDate),
	)

	telemetryCfg := telemetry.Config{
		ServiceName:    "notifier",
		ServiceVersion: build.Version,
		Endpoint:       cfg.OTLPEndpoint,
		Insecure:       true,
	}
	shutdownTelemetry, err := telemetry.Setup(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			sysLogger.Warn("telemetry shutdown failed", "error", err)
		}
	}()
	// Records keep going to the log file; with a collector they are also exported.
	sysLogger = logger.Tee(sysLogger, telemetry.LogHandler(telemetryCfg))

	a, err := newApp(ctx, cfg, sysLogger)
	if err != nil {
		sysLogger.Error("startup failed", "error", err)
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			sysLogger.Warn("closing resources failed", "error", err)
		}
	}()

	sweeper, err := scheduler.New(scheduler.Config{
		Lister:         a.svc,
		Logger:         sysLogger,
		StaleAfter:     cfg.StalePendingAfter,
		Interval:       cfg.StaleSweepInterval,
		EventPublisher: a.bus,
	})
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}
	if err := sweeper.Start(ctx); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer func() {
		if err := sweeper.Stop(); err != nil {
			sysLogger.Warn("stopping scheduler failed", "error", err)
		}
	}()

	srv := server.New(api.New(a.svc, sysLogger), server.Config{
		Port:               cfg.Port,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:            a.metrics,
		HealthCheck:        a.health,
	}, sysLogger)

	sysLogger.Info("server ready", "url", fmt.Sprintf("http://localhost:%d", cfg.Port))
	return srv.Run(ctx)
}

// printBanner writes the startup banner to stdout. All structured logs go
// to the log file instead.
func printBanner(version, serverURL, logFile string) {
	fmt.Println(bannerStyle.Render("notifier " + version))
	fmt.Printf("API:     %s/api/notifications\n", serverURL)
	fmt.Printf("Metrics: %s/metrics\n", serverURL)
	fmt.Printf("Logs:    %s\n\n", logFile)
}
