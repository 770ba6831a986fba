// Package testing provides test utilities for ntfysub.
//
// It follows Go's convention of shipping test helpers in a dedicated package
// (similar to net/http/httptest).
//
// Key utilities:
//   - NewStreamServer: Scripted ntfy subscription endpoint streaming NDJSON lines
//   - OpenLine, MessageLine, KeepaliveLine: Server event line builders
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - CreateJetStreamKV: Convenience wrapper for KV bucket creation
//   - NewTestLogger: Logger writing to the test log
//
// Example usage:
//
//	import (
//	    "testing"
//	    ntfytest "github.com/arloliu/ntfysub/testing"
//	)
//
//	func TestMyConsumer(t *testing.T) {
//	    srv := ntfytest.NewStreamServer(t, ntfytest.Response{
//	        Lines: []string{ntfytest.OpenLine("1", 1, "alerts")},
//	        Hold:  true,
//	    })
//	    // point a listener at srv.URL()
//	}
package testing
