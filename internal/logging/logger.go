package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New builds a zap logger writing to stderr. Format "console" selects the
// human readable development encoder; anything else logs JSON.
func New(level string, format string) (*zap.Logger, error) {
	atomicLevel, levelError := zap.ParseAtomicLevel(strings.ToLower(strings.TrimSpace(level)))
	if levelError != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, levelError)
	}

	loggerConfiguration := zap.NewProductionConfig()
	if strings.EqualFold(format, FormatConsole) {
		loggerConfiguration = zap.NewDevelopmentConfig()
		loggerConfiguration.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	loggerConfiguration.Level = atomicLevel
	loggerConfiguration.EncoderConfig.TimeKey = "timestamp"
	loggerConfiguration.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return loggerConfiguration.Build()
}
