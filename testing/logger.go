package testing

import (
	"testing"

	"github.com/arloliu/ntfysub/internal/logger"
	"github.com/arloliu/ntfysub/types"
)

// NewTestLogger creates a logger that writes to the test log.
//
// Lines logged by listener goroutines after the test has finished are dropped instead
// of failing the run.
func NewTestLogger(t testing.TB) types.Logger {
	return logger.NewTest(t)
}
