package utils

import (
	"strings"

	"go.uber.org/zap"
)

// Logger is the process-wide structured logger. It is a no-op until
// InitLogger runs so packages and tests can log unconditionally.
var Logger = zap.NewNop()

// InitLogger builds the zap logger for the given mode ("production" or
// anything else for development output)
func InitLogger(mode string) error {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	l, err := cfg.Build()
	if err != nil {
		return err
	}
	Logger = l
	return nil
}

// SyncLogger flushes buffered log entries
func SyncLogger() {
	_ = Logger.Sync()
}
