package testing

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func get(t *testing.T, s *StreamServer, path string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, s.URL()+path, nil)
	require.NoError(t, err)
	req.SetBasicAuth("alice", "secret")

	resp, err := s.Client().Do(req)
	require.NoError(t, err)

	return resp
}

func TestStreamServer_ScriptedResponses(t *testing.T) {
	s := NewStreamServer(t,
		Response{Status: http.StatusInternalServerError},
		Response{Lines: []string{OpenLine("a", 1, "alerts"), MessageLine("b", 2, "alerts", "hi")}},
	)

	resp := get(t, s, "/alerts/json?since=0")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	resp.Body.Close()

	resp = get(t, s, "/alerts/json?since=7")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "application/x-ndjson")

	var lines []string
	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	resp.Body.Close()
	require.NoError(t, sc.Err())
	require.Len(t, lines, 2)
	require.JSONEq(t, `{"id":"a","time":1,"event":"open","topic":"alerts"}`, lines[0])
	require.JSONEq(t, `{"id":"b","time":2,"event":"message","topic":"alerts","message":"hi"}`, lines[1])

	reqs := s.Requests()
	require.Len(t, reqs, 2)
	require.Equal(t, "/alerts/json", reqs[1].Path)
	require.Equal(t, uint64(7), reqs[1].Since)
	require.Equal(t, "7", reqs[1].RawSince)
	require.True(t, reqs[1].BasicAuth)
	require.Equal(t, "alice", reqs[1].Username)
	require.Equal(t, "secret", reqs[1].Password)
}

func TestStreamServer_HoldsWhenExhausted(t *testing.T) {
	s := NewStreamServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL()+"/t/json?since=0", nil)
	require.NoError(t, err)

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	readDone := make(chan error, 1)
	go func() {
		_, err := io.ReadAll(resp.Body)
		readDone <- err
	}()

	select {
	case <-readDone:
		t.Fatal("held stream ended early")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-readDone:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("held stream did not end after cancel")
	}
	resp.Body.Close()
	require.Equal(t, 1, s.RequestCount())
}

func TestStreamServer_CloseReleasesHeldStreams(t *testing.T) {
	s := NewStreamServer(t, Response{Lines: []string{OpenLine("a", 1, "t")}, Hold: true})
	s.Enqueue(Response{Status: http.StatusTeapot})

	resp := get(t, s, "/t/json?since=0")
	defer resp.Body.Close()

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close blocked on a held stream")
	}
	s.Close()
}
