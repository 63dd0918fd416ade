package angzarr

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logging surface every component depends on.
//
// Unlike the angzarr example package's event_logger.go, which logs through
// package-level zap helpers, this module always takes a *zap.Logger as an
// explicit dependency (ServerOptions.Logger). A server started without one
// gets zap.NewNop(), never a package-global that every test in the process
// would share.
type Logger = *zap.Logger

// NopLogger discards everything. It is the default when ServerOptions.Logger
// is unset.
func NopLogger() Logger { return zap.NewNop() }

// NewProductionLogger builds the zap configuration components run with
// outside of tests: JSON encoding, ISO8601 timestamps, level from the
// LOG_LEVEL environment variable (GetTransportConfig-style env convention).
func NewProductionLogger(serviceName string) (Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.InitialFields = map[string]interface{}{"service": serviceName}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	level, err := parseLogLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.Level = level
	return cfg.Build()
}
