package ptv

import (
	"testing"

	"go.uber.org/zap"
)

// Light smoke tests ensuring exported logger APIs do not panic and remain
// callable with any key-value arity.
func TestSimpleLoggerLevels(t *testing.T) {
	logger := NewSimpleLogger()

	logger.Debug("debug message", "endpoint", "/v3/routes")
	logger.Info("info message")
	logger.Warn("warn message", "backoff", "1s")
	logger.Error("error message", "dangling-key")
}

func TestZapLoggerLevels(t *testing.T) {
	logger := NewZapLogger(zap.NewNop())

	logger.Debug("debug message", "endpoint", "/v3/routes")
	logger.Info("info message")
	logger.Warn("warn message", "wait", "200ms")
	logger.Error("error message")
}

func TestDefaultDebugConfigGeneratesIDs(t *testing.T) {
	cfg := DefaultDebugConfig()
	if cfg.RequestIDGen == nil {
		t.Fatal("RequestIDGen not set")
	}
	a, b := cfg.RequestIDGen(), cfg.RequestIDGen()
	if a == "" || a == b {
		t.Errorf("request ids not unique: %q %q", a, b)
	}
}
