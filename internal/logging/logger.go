package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the global logger instance. It is a no-op logger until
	// InitLogger runs, so packages can log safely from tests.
	Logger = zap.NewNop()
)

// InitLogger initializes the global logger
func InitLogger() error {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Set log level from environment
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(logLevel)); err == nil {
			config.Level = zap.NewAtomicLevelAt(level)
		}
	}

	logger, err := config.Build(
		zap.Fields(
			zap.String("service", "inscricao-eventos"),
			zap.String("version", "v1"),
		),
	)
	if err != nil {
		return err
	}

	Logger = logger
	return nil
}

// Sync flushes buffered log entries
func Sync() {
	_ = Logger.Sync()
}
