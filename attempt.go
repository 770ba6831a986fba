package ntfysub

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/arloliu/ntfysub/internal/metrics"
	"github.com/arloliu/ntfysub/subscription"
	"github.com/arloliu/ntfysub/types"
)

// maxDrainBytes bounds how much of an error response body is read before closing it.
const maxDrainBytes = 4 << 10

// attempt runs one connection attempt: request, then line-by-line forwarding until the
// stream ends.
//
// It returns nil only when the server closed the stream cleanly. Every other outcome is
// one of the connection attempt error types, or ctx.Err() after cancellation.
func (w *worker) attempt(ctx context.Context) error {
	req, err := w.newRequest(ctx)
	if err != nil {
		return err
	}

	w.logger.Debug("executing request", "since", w.since)
	resp, err := w.client.Do(req)
	if err != nil {
		return &types.StreamError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
		return &types.StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	w.metrics.RecordConnectionAttempt(w.cfg.Topic, metrics.ResultConnected)
	if !w.setState(ctx, types.Connected()) {
		return ctx.Err()
	}
	w.logger.Info("connection established", "since", w.since)

	lines := newLineReader(resp.Body, w.cfg.MaxLineSize)
	for {
		line, dropped, err := lines.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, errLineTooLong) {
			// no cursor can be read from it; failing would request the same line forever
			w.metrics.IncrementDecodeErrors(w.cfg.Topic, metrics.StageOversize)
			w.logger.Error("skipping oversized line", "bytes", dropped, "max", w.cfg.MaxLineSize, "since", w.since)
			continue
		}
		if err != nil {
			return &types.StreamError{Err: err}
		}

		if err := w.handleLine(ctx, line); err != nil {
			return err
		}
	}

	w.logger.Info("stream closed by server", "since", w.since)

	return nil
}

// newRequest builds the subscription request for the current cursor.
func (w *worker) newRequest(ctx context.Context) (*http.Request, error) {
	w.logger.Debug("creating request")

	url, err := subscription.BuildURL(w.cfg.Endpoint, w.cfg.Topic, w.since)
	if err != nil {
		return nil, &types.RequestError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &types.RequestError{URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	req.Header.Set("Transfer-Encoding", "chunked")
	req.Header.Set("User-Agent", w.cfg.UserAgent)

	if creds, ok := w.creds.Get(w.cfg.Endpoint); ok {
		req.SetBasicAuth(creds.Username, creds.Password)
	}

	return req, nil
}

// handleLine advances the cursor from one NDJSON line and forwards it if it is a message.
//
// The cursor moves before the full decode, so a line that only fails the full decode
// is not requested again after the reconnect.
func (w *worker) handleLine(ctx context.Context, line []byte) error {
	minMsg, err := types.DecodeMinMessage(line)
	if err != nil {
		w.metrics.IncrementDecodeErrors(w.cfg.Topic, metrics.StageMin)
		return &types.InvalidMinMessageError{Line: string(line), Err: err}
	}
	if minMsg.Time > w.since {
		w.since = minMsg.Time
		w.metrics.SetCursor(w.cfg.Topic, w.since)
	}

	ev, err := types.DecodeServerEvent(line)
	if err != nil {
		w.metrics.IncrementDecodeErrors(w.cfg.Topic, metrics.StageFull)
		return &types.InvalidMessageError{Line: string(line), Err: err}
	}
	w.metrics.IncrementServerEvents(w.cfg.Topic, ev.Tag())

	switch e := ev.(type) {
	case types.MessageEvent:
		w.logger.Debug("forwarding message", "id", e.Message.ID)
		if !w.emit(ctx, types.MessageReceived(e.Message)) {
			return ctx.Err()
		}
	case types.KeepaliveEvent:
		w.logger.Debug("received keepalive", "id", e.ID)
	case types.OpenEvent:
		w.logger.Debug("received open event", "id", e.ID)
	}

	return nil
}
