package logger

import (
	"testing"

	"github.com/arloliu/ntfysub/types"
	"github.com/stretchr/testify/require"
)

func TestNopLogger(t *testing.T) {
	var logger types.Logger = NewNop()

	require.NotPanics(t, func() {
		logger.Debug("received keepalive", "id", "k1")
		logger.Info("connection established")
		logger.Warn("failed to send state")
		logger.Error("connection error", "error", nil)
		logger.Fatal("unreachable") // must not exit
		logger.Info("", nil)
		logger.Error("dangling", "key")
	})
}

func BenchmarkNopLogger(b *testing.B) {
	logger := NewNop()

	for b.Loop() {
		logger.Debug("forwarding message", "id", "m1", "since", 42)
	}
}
