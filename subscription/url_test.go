package subscription

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		topic    string
		since    uint64
		want     string
	}{
		{"plain", "http://localhost", "test", 0, "http://localhost/test/json?since=0"},
		{"trailing slash", "https://ntfy.sh/", "alerts", 1635528757, "https://ntfy.sh/alerts/json?since=1635528757"},
		{"base path", "https://example.com/ntfy", "a_b-1", 5, "https://example.com/ntfy/a_b-1/json?since=5"},
		{"port", "http://127.0.0.1:8080", "t", 1, "http://127.0.0.1:8080/t/json?since=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildURL(tt.endpoint, tt.topic, tt.since)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestBuildURL_Errors(t *testing.T) {
	t.Run("invalid endpoints", func(t *testing.T) {
		for _, endpoint := range []string{"", "localhost", "ftp://host", "http://", "http://h/?x=1", "http://h/#f", "::::"} {
			_, err := BuildURL(endpoint, "topic", 0)
			require.ErrorIs(t, err, ErrInvalidEndpoint, endpoint)
		}
	})

	t.Run("invalid topics", func(t *testing.T) {
		long := make([]byte, 65)
		for i := range long {
			long[i] = 'a'
		}
		for _, topic := range []string{"", "a/b", "with space", "ü", string(long)} {
			_, err := BuildURL("https://ntfy.sh", topic, 0)
			require.ErrorIs(t, err, ErrInvalidTopic, topic)
		}
	})
}

func TestID(t *testing.T) {
	a := ID("https://ntfy.sh", "alerts")
	require.Len(t, a, 16)
	require.Equal(t, a, ID("HTTPS://NTFY.SH/", "alerts"), "normalized endpoints share an ID")
	require.NotEqual(t, a, ID("https://ntfy.sh", "other"))
	require.NotEqual(t, a, ID("https://example.com", "alerts"))
}
