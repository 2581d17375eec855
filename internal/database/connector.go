package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratedatabase "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"personal-budget/internal/config"
)

//go:embed migrations
var migrationFiles embed.FS

const sqliteConnectionPragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

type Connector struct {
	Database *sql.DB
	Driver   string
	logger   *zap.Logger
}

// Connect opens and pings the database for the given driver. The schema is not
// touched; call Migrate for that.
func Connect(contextWithTimeout context.Context, driver string, dataSourceName string, logger *zap.Logger) (*Connector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	databaseConnection, connectionError := openDatabase(driver, dataSourceName)
	if connectionError != nil {
		return nil, connectionError
	}

	pingContext, pingCancel := context.WithTimeout(contextWithTimeout, 5*time.Second)
	defer pingCancel()

	pingError := databaseConnection.PingContext(pingContext)
	if pingError != nil {
		logConnectionTroubleshootingGuidance(logger, pingError)
		databaseConnection.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, pingError)
	}

	logger.Info("connected to database", zap.String("driver", driver))
	return &Connector{Database: databaseConnection, Driver: driver, logger: logger}, nil
}

func openDatabase(driver string, dataSourceName string) (*sql.DB, error) {
	switch driver {
	case config.DatabaseDriverPostgres:
		return sql.Open("postgres", dataSourceName)
	case config.DatabaseDriverSQLite:
		databaseConnection, openError := sql.Open("sqlite", withSQLitePragmas(dataSourceName))
		if openError != nil {
			return nil, openError
		}
		// A single connection serialises writers on the database file.
		databaseConnection.SetMaxOpenConns(1)
		return databaseConnection, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func withSQLitePragmas(dataSourceName string) string {
	if strings.Contains(dataSourceName, "_pragma=") {
		return dataSourceName
	}
	if strings.Contains(dataSourceName, "?") {
		return dataSourceName + "&" + sqliteConnectionPragmas
	}
	return dataSourceName + "?" + sqliteConnectionPragmas
}

// Migrate applies every embedded migration for the connector's driver.
func (connector *Connector) Migrate() error {
	migrationSource, sourceError := iofs.New(migrationFiles, "migrations/"+connector.Driver)
	if sourceError != nil {
		return fmt.Errorf("load %s migrations: %w", connector.Driver, sourceError)
	}

	migrationDriver, driverError := connector.migrationDriver()
	if driverError != nil {
		return fmt.Errorf("create %s migration driver: %w", connector.Driver, driverError)
	}

	migrator, migratorError := migrate.NewWithInstance("iofs", migrationSource, connector.Driver, migrationDriver)
	if migratorError != nil {
		return fmt.Errorf("create migrator: %w", migratorError)
	}

	upError := migrator.Up()
	if errors.Is(upError, migrate.ErrNoChange) {
		connector.logger.Info("schema already up to date")
		return nil
	}

	var dirtyError migrate.ErrDirty
	if errors.As(upError, &dirtyError) {
		return fmt.Errorf("migration failed: dirty database version %d", dirtyError.Version)
	}

	if upError != nil {
		return fmt.Errorf("migration failed: %w", upError)
	}

	connector.logger.Info("applied schema migrations", zap.String("driver", connector.Driver))
	return nil
}

func (connector *Connector) migrationDriver() (migratedatabase.Driver, error) {
	if connector.Driver == config.DatabaseDriverPostgres {
		return postgres.WithInstance(connector.Database, &postgres.Config{})
	}
	return sqlite.WithInstance(connector.Database, &sqlite.Config{})
}

func logConnectionTroubleshootingGuidance(logger *zap.Logger, connectionError error) {
	errorMessage := connectionError.Error()

	if strings.Contains(errorMessage, "role") && strings.Contains(errorMessage, "does not exist") {
		logger.Warn("the configured database user does not exist in the PostgreSQL data volume; align DB_USER and DB_PASSWORD with the original database owner or recreate the volume")
		return
	}

	if strings.Contains(errorMessage, "password authentication failed") {
		logger.Warn("PostgreSQL rejected the supplied credentials; confirm DB_USER and DB_PASSWORD match the initialized database")
		return
	}

	if strings.Contains(errorMessage, "connection refused") {
		logger.Warn("the database refused the connection; check DB_HOST and DB_PORT or that the server is running")
	}
}

func (connector *Connector) Close() error {
	return connector.Database.Close()
}
