package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"personal-budget/internal/httpserver"
	"personal-budget/internal/service"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	applicationContext, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, bootstrapError := bootstrap(applicationContext)
	if bootstrapError != nil {
		return bootstrapError
	}
	defer app.Close()

	server := httpserver.NewServer(app.operationService, app.balanceService, httpserver.ServerSettings{
		AllowedOrigin:  app.configuration.Server.AllowedOrigin,
		MetricsEnabled: app.configuration.Metrics.Enabled,
	}, app.logger)

	if app.configuration.Metrics.Enabled {
		gaugeRefreshService := service.NewGaugeRefreshService(app.operationService, app.balanceService, app.configuration.MetricsRefreshInterval(), app.logger)
		gaugeRefreshService.StartBackgroundJobs(applicationContext)
	}

	serverAddress := ":" + app.configuration.Server.Port
	httpServer := &http.Server{
		Addr:              serverAddress,
		Handler:           server.RegisterRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		app.logger.Info("server running",
			zap.String("address", serverAddress),
			zap.String("database_driver", app.configuration.Database.Driver),
			zap.String("allowed_origin", app.configuration.Server.AllowedOrigin),
		)
		startError := httpServer.ListenAndServe()
		if startError != nil && !errors.Is(startError, http.ErrServerClosed) {
			serverErrors <- startError
		}
		close(serverErrors)
	}()

	select {
	case startError := <-serverErrors:
		if startError != nil {
			return startError
		}
	case <-applicationContext.Done():
	}

	shutdownContext, shutdownCancel := context.WithTimeout(context.Background(), app.configuration.ShutdownTimeout())
	defer shutdownCancel()

	shutdownError := httpServer.Shutdown(shutdownContext)
	if shutdownError != nil {
		app.logger.Error("graceful shutdown failed", zap.Error(shutdownError))
		return shutdownError
	}

	app.logger.Info("application stopped")
	return nil
}
