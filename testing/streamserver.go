package testing

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

// Response scripts one reply of a StreamServer.
type Response struct {
	// Status is the HTTP status code. Zero means 200.
	Status int

	// Lines are written one per line and flushed individually.
	Lines []string

	// Pause delays Tail after Lines have been written.
	Pause time.Duration

	// Tail lines are written after Pause.
	Tail []string

	// Hold keeps the stream open after Tail until the client disconnects.
	// Without Hold the response ends cleanly after the last line.
	Hold bool
}

// Request records one subscription request received by a StreamServer.
type Request struct {
	Path      string
	Since     uint64
	RawSince  string
	Username  string
	Password  string
	BasicAuth bool
	Header    http.Header
	Received  time.Time
}

// StreamServer is an httptest server that replays scripted NDJSON responses.
//
// Responses are served in order, one per request. Once the script is exhausted every
// further request is held open with no lines until the client disconnects.
type StreamServer struct {
	srv *httptest.Server

	mu        sync.Mutex
	responses []Response
	requests  []Request

	closed    chan struct{}
	closeOnce sync.Once
}

// NewStreamServer starts a StreamServer serving responses in order.
// The server is closed automatically when the test finishes.
func NewStreamServer(t testing.TB, responses ...Response) *StreamServer {
	t.Helper()

	s := &StreamServer{
		responses: responses,
		closed:    make(chan struct{}),
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)

	return s
}

// URL returns the server endpoint, suitable as a listener endpoint.
func (s *StreamServer) URL() string {
	return s.srv.URL
}

// Client returns an HTTP client configured for the server.
func (s *StreamServer) Client() *http.Client {
	return s.srv.Client()
}

// Enqueue appends responses to the script.
func (s *StreamServer) Enqueue(responses ...Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.responses = append(s.responses, responses...)
}

// Requests returns a copy of the requests received so far.
func (s *StreamServer) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Request, len(s.requests))
	copy(out, s.requests)

	return out
}

// RequestCount returns the number of requests received so far.
func (s *StreamServer) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.requests)
}

// Close releases held streams and shuts the server down. It is safe to call twice.
func (s *StreamServer) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.srv.CloseClientConnections()
		s.srv.Close()
	})
}

func (s *StreamServer) serve(w http.ResponseWriter, r *http.Request) {
	resp, scripted := s.record(r)
	if !scripted {
		resp = Response{Hold: true}
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}

	w.Header().Set("Content-Type", "application/x-ndjson; charset=utf-8")
	w.WriteHeader(status)

	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	if !writeLines(w, flusher, resp.Lines) {
		return
	}

	if resp.Pause > 0 {
		select {
		case <-time.After(resp.Pause):
		case <-r.Context().Done():
			return
		case <-s.closed:
			return
		}
	}

	if !writeLines(w, flusher, resp.Tail) {
		return
	}

	if resp.Hold {
		select {
		case <-r.Context().Done():
		case <-s.closed:
		}
	}
}

func writeLines(w http.ResponseWriter, flusher http.Flusher, lines []string) bool {
	for _, line := range lines {
		if _, err := w.Write([]byte(line + "\n")); err != nil {
			return false
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	return true
}

func (s *StreamServer) record(r *http.Request) (Response, bool) {
	req := Request{
		Path:     r.URL.Path,
		RawSince: r.URL.Query().Get("since"),
		Header:   r.Header.Clone(),
		Received: time.Now(),
	}
	req.Since, _ = strconv.ParseUint(req.RawSince, 10, 64)
	req.Username, req.Password, req.BasicAuth = r.BasicAuth()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	if len(s.responses) == 0 {
		return Response{}, false
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]

	return resp, true
}

// OpenLine returns an NDJSON "open" event line.
func OpenLine(id string, ts uint64, topic string) string {
	return eventLine(map[string]any{"id": id, "time": ts, "event": "open", "topic": topic})
}

// KeepaliveLine returns an NDJSON "keepalive" event line.
func KeepaliveLine(id string, ts uint64, topic string) string {
	return eventLine(map[string]any{"id": id, "time": ts, "event": "keepalive", "topic": topic})
}

// MessageLine returns an NDJSON "message" event line with the given body.
func MessageLine(id string, ts uint64, topic, message string) string {
	return eventLine(map[string]any{"id": id, "time": ts, "event": "message", "topic": topic, "message": message})
}

func eventLine(fields map[string]any) string {
	data, err := json.Marshal(fields)
	if err != nil {
		panic(err)
	}

	return strings.TrimSpace(string(data))
}
