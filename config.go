package angzarr

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// envOr returns the environment variable's value, or def if unset/empty.
// GetTransportConfig (server.go) uses the same pattern inline; this is the
// one-off helper for the handful of callers outside that file.
func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func parseLogLevel(s string) (zap.AtomicLevel, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return zap.AtomicLevel{}, err
	}
	return zap.NewAtomicLevelAt(lvl), nil
}
