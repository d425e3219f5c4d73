package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/flocklens/flocklens/internal/config"
	errwrap "github.com/flocklens/flocklens/internal/errors"
	"github.com/flocklens/flocklens/internal/metrics"
	"github.com/flocklens/flocklens/internal/observability"
	"github.com/flocklens/flocklens/internal/server"
	"github.com/flocklens/flocklens/internal/server/handlers"
)

var (
	serverPort int
	serverHost string
)

// storeHealthChecker pings the database connection.
type storeHealthChecker struct {
	db interface {
		PingContext(ctx context.Context) error
	}
}

func (c storeHealthChecker) CheckHealth(ctx context.Context) error {
	if c.db == nil {
		return errwrap.NewDatabaseError("store not initialized")
	}
	return c.db.PingContext(ctx)
}

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

// schedulerHealthChecker reports whether the credential pool still serves
// requests.
type schedulerHealthChecker struct {
	sched interface{ TotalRequests() int }
}

func (c schedulerHealthChecker) CheckHealth(ctx context.Context) error {
	if c.sched == nil {
		return errwrap.NewOutOfCredentialsError("scheduler not initialized")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server with graceful shutdown support.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Config reload (placeholder - restart recommended)

The server will cleanly shut down the HTTP server and flush logs on shutdown.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logLevel := viper.GetString("logging.level")
	observability.InitServerLogger(config.AppName, logLevel)

	metricsPort := viper.GetInt("metrics.port")
	if metricsPort == 0 {
		metricsPort = 9090
	}

	if viper.GetBool("metrics.enabled") {
		if err := observability.InitMetrics(config.AppName, metricsPort); err != nil {
			observability.ServerLogger.Error("Failed to initialize metrics",
				zap.Error(err))
			return fmt.Errorf("metrics initialization failed: %w", err)
		}
	}

	observability.ServerLogger.Info("Initializing server",
		zap.String("service", config.AppName),
		zap.String("version", versionInfo.Version),
		zap.String("host", serverHost),
		zap.Int("port", serverPort),
		zap.Int("metrics_port", metricsPort))

	ctx := cmd.Context()
	db, err := openStore(ctx)
	if err != nil {
		return err
	}

	sched, err := buildScheduler(ctx, db)
	if err != nil {
		_ = db.Close()
		return err
	}
	sched.Logger = observability.ServerLogger

	// Initialize health manager
	handlers.InitHealthManager(versionInfo.Version)
	hm := handlers.GetHealthManager()
	hm.RegisterChecker("store", storeHealthChecker{db: db.DB})
	hm.RegisterChecker("telemetry", telemetryHealthChecker{})
	hm.RegisterChecker("scheduler", schedulerHealthChecker{sched: sched})

	srv := server.New(serverHost, serverPort, &handlers.API{
		Graph: sched,
		Runs:  db,
	})

	metrics.SetServerStartTime(time.Now().Unix())

	shutdownTimeout := viper.GetDuration("server.shutdown_timeout")
	if shutdownTimeout == 0 {
		shutdownTimeout = 10 * time.Second
	}

	// Register graceful shutdown handlers (LIFO order - last registered, first executed)
	// Handler 1: Flush logger (executed last)
	signals.OnShutdown(func(ctx context.Context) error {
		observability.ServerLogger.Info("Flushing logger...")
		if err := observability.ServerLogger.Sync(); err != nil {
			// Sync errors are often benign (stdout/stderr already closed)
			observability.ServerLogger.Warn("Logger sync returned error (may be benign)",
				zap.Error(err))
		}
		return nil
	})

	// Handler 2: Close the store
	signals.OnShutdown(func(ctx context.Context) error {
		observability.ServerLogger.Info("Closing store...")
		if err := db.Close(); err != nil {
			observability.ServerLogger.Warn("Store close returned error",
				zap.Error(err))
		}
		return nil
	})

	// Handler 3: Shutdown HTTP server (executed first)
	signals.OnShutdown(func(ctx context.Context) error {
		observability.ServerLogger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		observability.ServerLogger.Info("HTTP server stopped gracefully")
		return nil
	})

	// Register config reload handler (SIGHUP)
	signals.OnReload(func(ctx context.Context) error {
		observability.ServerLogger.Info("Received SIGHUP: attempting config reload")

		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				observability.ServerLogger.Info("No config file found - using defaults and environment variables")
				return nil
			}
			observability.ServerLogger.Error("Failed to reload config file",
				zap.String("file", viper.ConfigFileUsed()),
				zap.Error(err))
			return fmt.Errorf("config reload failed: %w", err)
		}

		observability.ServerLogger.Info("Configuration reloaded successfully",
			zap.String("file", viper.ConfigFileUsed()))

		return nil
	})

	// Enable double-tap force quit (Ctrl+C within 2 seconds)
	if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
		Window:  2 * time.Second,
		Message: "Press Ctrl+C again within 2 seconds to force quit",
	}); err != nil {
		observability.ServerLogger.Warn("Failed to enable double-tap force quit",
			zap.Error(err))
	}

	// Start server in background goroutine
	errChan := make(chan error, 1)
	go func() {
		observability.ServerLogger.Info("Starting HTTP server...",
			zap.String("host", serverHost),
			zap.Int("port", serverPort))
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Start signal listener in background
	go func() {
		if err := signals.Listen(cmd.Context()); err != nil {
			observability.ServerLogger.Error("Signal handler error", zap.Error(err))
			errChan <- err
		}
	}()

	// Wait for error or shutdown completion
	if err := <-errChan; err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
