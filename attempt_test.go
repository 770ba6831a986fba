package ntfysub

import (
	"context"
	"testing"

	"github.com/arloliu/ntfysub/credentials"
	"github.com/arloliu/ntfysub/internal/logger"
	"github.com/arloliu/ntfysub/internal/metrics"
	"github.com/arloliu/ntfysub/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newTestWorker(t *testing.T, since uint64) (*worker, chan Event) {
	t.Helper()

	cfg := TestConfig()
	cfg.Endpoint = "http://localhost"
	cfg.Topic = "test"
	SetDefaults(&cfg)

	events := make(chan Event, 16)
	w := &worker{
		cfg:     cfg,
		creds:   credentials.NewStatic(nil),
		metrics: metrics.NewNop(),
		logger:  logger.NewTest(t),
		events:  events,
		since:   since,
	}

	return w, events
}

func TestHandleLine(t *testing.T) {
	tests := []struct {
		name      string
		since     uint64
		line      string
		wantSince uint64
		forwarded bool
		wantErr   string
	}{
		{
			name:      "message is forwarded",
			since:     10,
			line:      `{"id":"m","time":20,"event":"message","topic":"test","message":"hi"}`,
			wantSince: 20,
			forwarded: true,
		},
		{
			name:      "older message keeps cursor",
			since:     30,
			line:      `{"id":"m","time":20,"event":"message","topic":"test"}`,
			wantSince: 30,
			forwarded: true,
		},
		{
			name:      "open is not forwarded",
			line:      `{"id":"o","time":5,"event":"open","topic":"test"}`,
			wantSince: 5,
		},
		{
			name:      "keepalive is not forwarded",
			since:     3,
			line:      `{"id":"k","time":4,"event":"keepalive","topic":"test"}`,
			wantSince: 4,
		},
		{
			name:      "not json",
			since:     7,
			line:      `invalid message`,
			wantSince: 7,
			wantErr:   "min",
		},
		{
			name:      "missing time",
			since:     7,
			line:      `{"id":"m","event":"message"}`,
			wantSince: 7,
			wantErr:   "min",
		},
		{
			name:      "unknown event advances cursor",
			since:     7,
			line:      `{"id":"x","time":9,"event":"poll_request"}`,
			wantSince: 9,
			wantErr:   "full",
		},
		{
			name:      "keepalive without topic advances cursor",
			since:     7,
			line:      `{"id":"k","time":8,"event":"keepalive"}`,
			wantSince: 8,
			wantErr:   "full",
		},
		{
			name:      "missing event tag advances cursor",
			line:      `{"id":"x","time":9}`,
			wantSince: 9,
			wantErr:   "full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, events := newTestWorker(t, tt.since)

			err := w.handleLine(context.Background(), []byte(tt.line))
			switch tt.wantErr {
			case "min":
				var minErr *types.InvalidMinMessageError
				require.ErrorAs(t, err, &minErr)
				require.Equal(t, tt.line, minErr.Line)
			case "full":
				var msgErr *types.InvalidMessageError
				require.ErrorAs(t, err, &msgErr)
				require.Equal(t, tt.line, msgErr.Line)
			default:
				require.NoError(t, err)
			}
			require.Equal(t, tt.wantSince, w.since)

			if tt.forwarded {
				require.Len(t, events, 1)
				ev := <-events
				require.Equal(t, EventMessage, ev.Kind)
			} else {
				require.Empty(t, events)
			}
		})
	}
}

func TestHandleLine_ErrorCarriesLine(t *testing.T) {
	w, _ := newTestWorker(t, 0)

	err := w.handleLine(context.Background(), []byte(`{"time":1,"event":"nope"}`))
	var msgErr *types.InvalidMessageError
	require.ErrorAs(t, err, &msgErr)
	require.Equal(t, `{"time":1,"event":"nope"}`, msgErr.Line)
	require.ErrorIs(t, err, types.ErrUnknownEventKind)
}

func TestHandleLine_CancelledForward(t *testing.T) {
	w, events := newTestWorker(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.handleLine(ctx, []byte(`{"id":"m","time":20,"event":"message","topic":"test"}`))
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, events)
	// the cursor still moved past the line
	require.Equal(t, uint64(20), w.since)
}

func TestHandleLine_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	w, _ := newTestWorker(t, 0)
	w.metrics = metrics.NewPrometheus(reg, "test")

	require.NoError(t, w.handleLine(context.Background(), []byte(`{"id":"o","time":5,"event":"open","topic":"test"}`)))
	require.NoError(t, w.handleLine(context.Background(), []byte(`{"id":"k","time":6,"event":"keepalive","topic":"test"}`)))
	require.Error(t, w.handleLine(context.Background(), []byte(`junk`)))

	count, err := testutil.GatherAndCount(reg, "test_stream_server_events_total")
	require.NoError(t, err)
	require.Equal(t, 2, count, "one series per event tag")

	count, err = testutil.GatherAndCount(reg, "test_stream_decode_errors_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestNewRequest(t *testing.T) {
	w, _ := newTestWorker(t, 42)
	w.cfg.UserAgent = "agent/1"

	req, err := w.newRequest(context.Background())
	require.NoError(t, err)
	require.Equal(t, "GET", req.Method)
	require.Equal(t, "http://localhost/test/json?since=42", req.URL.String())
	require.Equal(t, "application/x-ndjson", req.Header.Get("Content-Type"))
	require.Equal(t, "chunked", req.Header.Get("Transfer-Encoding"))
	require.Equal(t, "agent/1", req.Header.Get("User-Agent"))

	_, _, ok := req.BasicAuth()
	require.False(t, ok)
}

func TestNewRequest_Credentials(t *testing.T) {
	w, _ := newTestWorker(t, 0)
	w.creds = credentials.NewStatic(map[string]Credentials{
		"http://localhost/": {Username: "alice", Password: "secret"},
	})

	req, err := w.newRequest(context.Background())
	require.NoError(t, err)

	user, pass, ok := req.BasicAuth()
	require.True(t, ok)
	require.Equal(t, "alice", user)
	require.Equal(t, "secret", pass)
}

func TestNewRequest_InvalidTopic(t *testing.T) {
	w, _ := newTestWorker(t, 0)
	w.cfg.Topic = "bad/topic"

	_, err := w.newRequest(context.Background())
	var reqErr *types.RequestError
	require.ErrorAs(t, err, &reqErr)
}
