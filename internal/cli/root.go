// Package cli wires configuration, storage and services behind the budget commands.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"personal-budget/internal/config"
	"personal-budget/internal/database"
	"personal-budget/internal/logging"
	"personal-budget/internal/repository"
	"personal-budget/internal/service"
)

var configurationPath string

var rootCmd = &cobra.Command{
	Use:   "budget",
	Short: "Personal budget tracker",
	Long: `Records income and expense operations and reports the net balance.
Configuration comes from an optional TOML file (--config) overridden by
environment variables such as API_PORT, DB_DRIVER, DATABASE_URL and SQLITE_PATH.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configurationPath, "config", "c", "", "Path to a TOML configuration file")
}

func Execute() error {
	return rootCmd.Execute()
}

type application struct {
	configuration    config.ApplicationConfiguration
	logger           *zap.Logger
	connector        *database.Connector
	operationService *service.OperationService
	balanceService   *service.BalanceService
}

// bootstrap loads configuration, connects to the database, brings the schema
// up to date and builds the services.
func bootstrap(ctx context.Context) (*application, error) {
	configuration, configurationError := config.LoadApplicationConfiguration(configurationPath)
	if configurationError != nil {
		return nil, configurationError
	}

	logger, loggerError := logging.New(configuration.Logging.Level, configuration.Logging.Format)
	if loggerError != nil {
		return nil, loggerError
	}
	for _, warning := range configuration.Warnings {
		logger.Warn(warning)
	}

	connector, connectionError := database.Connect(ctx, configuration.Database.Driver, configuration.DataSourceName(), logger)
	if connectionError != nil {
		logger.Sync()
		return nil, fmt.Errorf("could not connect to database: %w", connectionError)
	}

	migrationError := connector.Migrate()
	if migrationError != nil {
		connector.Close()
		logger.Sync()
		return nil, migrationError
	}

	operationRepository, repositoryError := repository.NewOperationRepository(configuration.Database.Driver, connector.Database, configuration.StatementTimeout())
	if repositoryError != nil {
		connector.Close()
		logger.Sync()
		return nil, repositoryError
	}

	return &application{
		configuration:    configuration,
		logger:           logger,
		connector:        connector,
		operationService: service.NewOperationService(operationRepository),
		balanceService:   service.NewBalanceService(operationRepository),
	}, nil
}

func (app *application) Close() {
	closeError := app.connector.Close()
	if closeError != nil {
		app.logger.Warn("could not close database", zap.Error(closeError))
	}
	app.logger.Sync()
}
