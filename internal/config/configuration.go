package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DatabaseDriverPostgres = "postgres"
	DatabaseDriverSQLite   = "sqlite"
)

type ApplicationConfiguration struct {
	Server   ServerConfiguration   `toml:"server"`
	Database DatabaseConfiguration `toml:"database"`
	Logging  LoggingConfiguration  `toml:"logging"`
	Metrics  MetricsConfiguration  `toml:"metrics"`

	// Warnings collects environment values that were ignored because they could not be parsed.
	Warnings []string `toml:"-"`
}

type ServerConfiguration struct {
	Port                   string `toml:"port"`
	AllowedOrigin          string `toml:"allowed_origin"`
	ShutdownTimeoutSeconds int    `toml:"shutdown_timeout_seconds"`
}

type DatabaseConfiguration struct {
	Driver                  string `toml:"driver"`
	URL                     string `toml:"url"`
	SQLitePath              string `toml:"sqlite_path"`
	StatementTimeoutSeconds int    `toml:"statement_timeout_seconds"`
}

type LoggingConfiguration struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type MetricsConfiguration struct {
	Enabled bool `toml:"enabled"`
	// RefreshIntervalSeconds drives the background gauge refresh; zero disables it.
	RefreshIntervalSeconds int `toml:"refresh_interval_seconds"`
}

func DefaultApplicationConfiguration() ApplicationConfiguration {
	return ApplicationConfiguration{
		Server: ServerConfiguration{
			Port:                   "8000",
			AllowedOrigin:          "http://localhost:5173",
			ShutdownTimeoutSeconds: 5,
		},
		Database: DatabaseConfiguration{
			Driver:                  DatabaseDriverSQLite,
			SQLitePath:              "budget.db",
			StatementTimeoutSeconds: 5,
		},
		Logging: LoggingConfiguration{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfiguration{
			Enabled:                true,
			RefreshIntervalSeconds: 60,
		},
	}
}

// LoadApplicationConfiguration layers the optional TOML file at configurationPath
// over the defaults and then applies environment overrides.
func LoadApplicationConfiguration(configurationPath string) (ApplicationConfiguration, error) {
	configuration := DefaultApplicationConfiguration()

	if configurationPath != "" {
		_, decodeError := toml.DecodeFile(configurationPath, &configuration)
		if decodeError != nil {
			return ApplicationConfiguration{}, fmt.Errorf("read configuration file %s: %w", configurationPath, decodeError)
		}
	}

	configuration.applyEnvironmentOverrides()

	validationError := configuration.validate()
	if validationError != nil {
		return ApplicationConfiguration{}, validationError
	}

	return configuration, nil
}

func (configuration *ApplicationConfiguration) applyEnvironmentOverrides() {
	configuration.Server.Port = getEnvironmentValueWithDefault("API_PORT", configuration.Server.Port)
	configuration.Server.AllowedOrigin = getEnvironmentValueWithDefault("CORS_ORIGIN", configuration.Server.AllowedOrigin)
	configuration.Server.ShutdownTimeoutSeconds = configuration.parseIntegerWithDefault("SHUTDOWN_TIMEOUT_SECONDS", configuration.Server.ShutdownTimeoutSeconds)

	configuration.Database.Driver = strings.ToLower(getEnvironmentValueWithDefault("DB_DRIVER", configuration.Database.Driver))
	configuration.Database.SQLitePath = getEnvironmentValueWithDefault("SQLITE_PATH", configuration.Database.SQLitePath)
	configuration.Database.StatementTimeoutSeconds = configuration.parseIntegerWithDefault("DB_STATEMENT_TIMEOUT_SECONDS", configuration.Database.StatementTimeoutSeconds)
	configuration.Database.URL = getEnvironmentValueWithDefault("DATABASE_URL", configuration.Database.URL)
	if configuration.Database.URL == "" && configuration.Database.Driver == DatabaseDriverPostgres {
		configuration.Database.URL = buildDatabaseURL()
	}

	configuration.Logging.Level = getEnvironmentValueWithDefault("LOG_LEVEL", configuration.Logging.Level)
	configuration.Logging.Format = getEnvironmentValueWithDefault("LOG_FORMAT", configuration.Logging.Format)

	configuration.Metrics.Enabled = configuration.parseBooleanWithDefault("METRICS_ENABLED", configuration.Metrics.Enabled)
	configuration.Metrics.RefreshIntervalSeconds = configuration.parseIntegerWithDefault("METRICS_REFRESH_INTERVAL_SECONDS", configuration.Metrics.RefreshIntervalSeconds)
}

func (configuration ApplicationConfiguration) validate() error {
	switch configuration.Database.Driver {
	case DatabaseDriverPostgres:
		if configuration.Database.URL == "" {
			return fmt.Errorf("database url must be provided for the %s driver", DatabaseDriverPostgres)
		}
	case DatabaseDriverSQLite:
		if configuration.Database.SQLitePath == "" {
			return fmt.Errorf("sqlite path must be provided for the %s driver", DatabaseDriverSQLite)
		}
	default:
		return fmt.Errorf("unsupported database driver %q", configuration.Database.Driver)
	}

	if configuration.Database.StatementTimeoutSeconds <= 0 {
		return fmt.Errorf("statement timeout must be positive, got %d", configuration.Database.StatementTimeoutSeconds)
	}

	if configuration.Metrics.RefreshIntervalSeconds < 0 {
		return fmt.Errorf("metrics refresh interval must not be negative, got %d", configuration.Metrics.RefreshIntervalSeconds)
	}

	return nil
}

func (configuration ApplicationConfiguration) StatementTimeout() time.Duration {
	return time.Duration(configuration.Database.StatementTimeoutSeconds) * time.Second
}

func (configuration ApplicationConfiguration) ShutdownTimeout() time.Duration {
	return time.Duration(configuration.Server.ShutdownTimeoutSeconds) * time.Second
}

func (configuration ApplicationConfiguration) MetricsRefreshInterval() time.Duration {
	return time.Duration(configuration.Metrics.RefreshIntervalSeconds) * time.Second
}

// DataSourceName returns the connection string for the configured driver.
func (configuration ApplicationConfiguration) DataSourceName() string {
	if configuration.Database.Driver == DatabaseDriverPostgres {
		return configuration.Database.URL
	}
	return configuration.Database.SQLitePath
}

func buildDatabaseURL() string {
	databaseUser := getEnvironmentValueWithDefault("DB_USER", "postgres")
	databasePassword := getEnvironmentValueWithDefault("DB_PASSWORD", "postgres")
	databaseName := getEnvironmentValueWithDefault("DB_NAME", "budget")
	databaseHost := getEnvironmentValueWithDefault("DB_HOST", "localhost")
	databasePort := getEnvironmentValueWithDefault("DB_PORT", "5432")

	return "postgres://" + databaseUser + ":" + databasePassword + "@" + databaseHost + ":" + databasePort + "/" + databaseName + "?sslmode=disable"
}

func (configuration *ApplicationConfiguration) parseIntegerWithDefault(variableName string, defaultValue int) int {
	environmentValue := os.Getenv(variableName)
	if environmentValue == "" {
		return defaultValue
	}

	parsedInteger, parsingError := strconv.Atoi(environmentValue)
	if parsingError != nil {
		configuration.Warnings = append(configuration.Warnings, fmt.Sprintf("invalid integer for %s, using default %d", variableName, defaultValue))
		return defaultValue
	}

	return parsedInteger
}

func (configuration *ApplicationConfiguration) parseBooleanWithDefault(variableName string, defaultValue bool) bool {
	environmentValue := os.Getenv(variableName)
	if environmentValue == "" {
		return defaultValue
	}

	parsedBoolean, parsingError := strconv.ParseBool(environmentValue)
	if parsingError != nil {
		configuration.Warnings = append(configuration.Warnings, fmt.Sprintf("invalid boolean for %s, using default %t", variableName, defaultValue))
		return defaultValue
	}

	return parsedBoolean
}

func getEnvironmentValueWithDefault(variableName string, defaultValue string) string {
	environmentValue := os.Getenv(variableName)
	if environmentValue == "" {
		return defaultValue
	}

	return environmentValue
}
