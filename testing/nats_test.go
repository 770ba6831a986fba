package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStartEmbeddedNATS(t *testing.T) {
	ns, nc := StartEmbeddedNATS(t)

	require.NotNil(t, ns)
	require.NotNil(t, nc)
	require.True(t, nc.IsConnected())
	require.True(t, ns.ReadyForConnections(1*time.Second))

	js, err := nc.JetStream()
	require.NoError(t, err)
	require.NotNil(t, js)
}

func TestStartEmbeddedNATS_ParallelTests(t *testing.T) {
	t.Parallel()

	for range 3 {
		t.Run("parallel", func(t *testing.T) {
			t.Parallel()

			_, nc := StartEmbeddedNATS(t)
			require.True(t, nc.IsConnected())
		})
	}
}

func TestCreateJetStreamKV(t *testing.T) {
	_, nc := StartEmbeddedNATS(t)
	kv := CreateJetStreamKV(t, nc, "test-bucket")
	require.Equal(t, "test-bucket", kv.Bucket())

	ctx := t.Context()
	_, err := kv.Put(ctx, "key", []byte("value"))
	require.NoError(t, err)

	entry, err := kv.Get(ctx, "key")
	require.NoError(t, err)
	require.Equal(t, "value", string(entry.Value()))
}
