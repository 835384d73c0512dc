package config

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logger. It is a no-op until InitLogger runs.
var Logger = zap.NewNop()

// InitLogger builds the production zap logger, switching to debug level
// for development or when LOG_LEVEL=debug.
func InitLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	if os.Getenv("APP_ENV") == "development" || strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewExample()
		logger.Warn("falling back to example logger", zap.Error(err))
	}
	Logger = logger
	return logger
}

func SyncLogger() {
	_ = Logger.Sync()
}
