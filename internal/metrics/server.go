package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/arloliu/ntfysub/internal/logger"
	"github.com/arloliu/ntfysub/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serverShutdownTimeout = 10 * time.Second

// Server serves Prometheus metrics and a liveness probe over HTTP.
type Server struct {
	addr     string
	gatherer prometheus.Gatherer
	logger   types.Logger
	server   *http.Server
}

// NewServer creates a metrics server.
//
// Parameters:
//   - addr: Address to listen on (e.g., ":9090")
//   - gatherer: Metrics source (uses prometheus.DefaultGatherer if nil)
//   - log: Logger (no-op if nil)
//
// Returns:
//   - *Server: Initialized server, not yet listening
func NewServer(addr string, gatherer prometheus.Gatherer, log types.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if log == nil {
		log = logger.NewNop()
	}

	s := &Server{addr: addr, gatherer: gatherer, logger: log}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler exposing /metrics and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", s.healthHandler)

	return mux
}

// Run serves until ctx is cancelled, then shuts the server down.
//
// Returns:
//   - error: Listen failure, or the shutdown error
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting metrics server", "address", s.addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("metrics server: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down metrics server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK\n")
}
