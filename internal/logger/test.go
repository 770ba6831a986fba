package logger

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/arloliu/ntfysub/types"
)

// TestLogger implements types.Logger using testing.TB for output.
// This ensures log messages appear in test output.
//
// Listener goroutines may still log briefly after a test returns; such records are
// dropped instead of calling t.Logf on a finished test, which would panic.
type TestLogger struct {
	t        testing.TB
	mu       sync.Mutex
	finished bool
}

// Compile-time assertion that TestLogger implements Logger.
var _ types.Logger = (*TestLogger)(nil)

// NewTest creates a new test logger that writes to t.
//
// Parameters:
//   - t: The testing.TB instance to write logs to
//
// Returns:
//   - *TestLogger: A new logger instance that uses t.Logf()
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    logger := NewTest(t)
//	    logger.Info("listener started", "topic", "alerts")
//	}
func NewTest(t testing.TB) *TestLogger {
	l := &TestLogger{t: t}
	t.Cleanup(func() {
		l.mu.Lock()
		l.finished = true
		l.mu.Unlock()
	})

	return l
}

// Debug logs a debug-level message with optional key-value pairs.
func (l *TestLogger) Debug(msg string, keysAndValues ...any) {
	l.logf("DEBUG", msg, keysAndValues)
}

// Info logs an info-level message with optional key-value pairs.
func (l *TestLogger) Info(msg string, keysAndValues ...any) {
	l.logf("INFO", msg, keysAndValues)
}

// Warn logs a warning-level message with optional key-value pairs.
func (l *TestLogger) Warn(msg string, keysAndValues ...any) {
	l.logf("WARN", msg, keysAndValues)
}

// Error logs an error-level message with optional key-value pairs.
func (l *TestLogger) Error(msg string, keysAndValues ...any) {
	l.logf("ERROR", msg, keysAndValues)
}

// Fatal logs a fatal-level message and fails the test.
func (l *TestLogger) Fatal(msg string, keysAndValues ...any) {
	l.t.Fatalf("FATAL: %s %s", msg, formatKeyValues(keysAndValues))
}

func (l *TestLogger) logf(level string, msg string, keysAndValues []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.finished {
		return
	}
	l.t.Logf("%s: %s %s", level, msg, formatKeyValues(keysAndValues))
}

// formatKeyValues formats key-value pairs for logging.
func formatKeyValues(keysAndValues []any) string {
	if len(keysAndValues) == 0 {
		return ""
	}

	var b strings.Builder
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fmt.Fprintf(&b, "%v=%v ", keysAndValues[i], keysAndValues[i+1])
		} else {
			fmt.Fprintf(&b, "%v=<missing> ", keysAndValues[i])
		}
	}

	return strings.TrimSuffix(b.String(), " ")
}
