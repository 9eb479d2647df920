package kit

import (
	"os"

	"go.uber.org/zap"
)

// NewLogger builds the service-wide zap logger. LOG_LEVEL=debug lowers the
// level; anything else keeps the production default.
func NewLogger(service string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.InitialFields = map[string]any{"service": service}
	if os.Getenv("LOG_LEVEL") == "debug" {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	l, _ := cfg.Build()
	return l
}
