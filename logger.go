package ptv

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Logger is the minimal structured logging interface the client emits debug
// output through. Key-value pairs follow the message.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// DebugConfig gates per-concern debug logging so enabling insight does not
// mean enabling noise.
type DebugConfig struct {
	Enabled      bool
	LogRequests  bool
	LogThrottle  bool
	LogBackoff   bool
	LogDedup     bool
	RequestIDGen func() string
}

// DefaultDebugConfig enables all categories with UUID request IDs.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		Enabled:      false,
		LogRequests:  true,
		LogThrottle:  true,
		LogBackoff:   true,
		LogDedup:     true,
		RequestIDGen: uuid.NewString,
	}
}

// SimpleLogger writes leveled lines to stderr. Suitable for examples and
// tests; production deployments should prefer NewZapLogger.
type SimpleLogger struct {
	l *log.Logger
}

// NewSimpleLogger creates a SimpleLogger on stderr.
func NewSimpleLogger() *SimpleLogger {
	return &SimpleLogger{l: log.New(os.Stderr, "ptv ", log.LstdFlags|log.Lmicroseconds)}
}

func (s *SimpleLogger) Debug(msg string, kv ...any) { s.print("DEBUG", msg, kv) }
func (s *SimpleLogger) Info(msg string, kv ...any)  { s.print("INFO", msg, kv) }
func (s *SimpleLogger) Warn(msg string, kv ...any)  { s.print("WARN", msg, kv) }
func (s *SimpleLogger) Error(msg string, kv ...any) { s.print("ERROR", msg, kv) }

func (s *SimpleLogger) print(level, msg string, kv []any) {
	var b strings.Builder
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(msg)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	if len(kv)%2 == 1 {
		fmt.Fprintf(&b, " %v", kv[len(kv)-1])
	}
	s.l.Print(b.String())
}

// ZapLogger adapts a *zap.Logger to the Logger interface.
type ZapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger wraps an existing zap logger.
func NewZapLogger(l *zap.Logger) *ZapLogger {
	return &ZapLogger{s: l.Sugar()}
}

func (z *ZapLogger) Debug(msg string, kv ...any) { z.s.Debugw(msg, kv...) }
func (z *ZapLogger) Info(msg string, kv ...any)  { z.s.Infow(msg, kv...) }
func (z *ZapLogger) Warn(msg string, kv ...any)  { z.s.Warnw(msg, kv...) }
func (z *ZapLogger) Error(msg string, kv ...any) { z.s.Errorw(msg, kv...) }
