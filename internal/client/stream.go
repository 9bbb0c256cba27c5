package client

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"portalhub/internal/notification"
)

const (
	// AttemptTimeout bounds one connection attempt to a candidate endpoint.
	AttemptTimeout = 5 * time.Second

	// RetryInterval is the pause once every candidate endpoint has failed.
	RetryInterval = 30 * time.Second

	// watchdogMultiple of the heartbeat interval with no traffic tears the
	// connection down; silent stalls never surface as read errors.
	watchdogMultiple = 3
)

// StreamClient consumes the server's notification stream. Candidate
// endpoints are tried in sequence with a per-attempt timeout; once all are
// exhausted it falls back to periodic retry. Reconnection attempts stop
// scheduling themselves while a connection is live.
type StreamClient struct {
	endpoints []string
	handler   func(*notification.Envelope)
	client    *http.Client
	heartbeat time.Duration
	connected atomic.Bool
}

// NewStreamClient creates a client delivering envelopes to handler.
func NewStreamClient(endpoints []string, handler func(*notification.Envelope)) *StreamClient {
	return &StreamClient{
		endpoints: endpoints,
		handler:   handler,
		client:    &http.Client{},
		heartbeat: 30 * time.Second,
	}
}

// Connected reports whether a stream is currently live.
func (s *StreamClient) Connected() bool {
	return s.connected.Load()
}

// Run consumes the stream until ctx is done, reconnecting as needed.
// Reconnection is expected steady-state behavior, not an error path.
func (s *StreamClient) Run(ctx context.Context) {
	for {
		for _, endpoint := range s.endpoints {
			if ctx.Err() != nil {
				return
			}
			if err := s.consume(ctx, endpoint); err != nil {
				slog.Debug("stream connection ended", "endpoint", endpoint, "error", err)
			}
		}
		select {
		case <-time.After(RetryInterval):
		case <-ctx.Done():
			return
		}
	}
}

// consume connects to one endpoint and processes frames until the
// connection dies. The watchdog cancels the request when neither data nor
// heartbeats arrive for too long.
func (s *StreamClient) consume(ctx context.Context, endpoint string) error {
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// the same timer serves as connect timeout and liveness watchdog
	watchdog := time.AfterFunc(AttemptTimeout, cancel)
	defer watchdog.Stop()

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	slog.Info("connected to notification stream", "endpoint", endpoint)
	s.connected.Store(true)
	defer s.connected.Store(false)
	watchdog.Reset(watchdogMultiple * s.heartbeat)

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		watchdog.Reset(watchdogMultiple * s.heartbeat)

		env, err := notification.EnvelopeFromJSON([]byte(strings.TrimPrefix(line, "data: ")))
		if err != nil {
			slog.Warn("ignoring malformed stream frame", "error", err)
			continue
		}
		s.handler(env)
	}
	return scanner.Err()
}
