package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	defaultMaxBackoff = 30 * time.Second
	readTimeout       = 60 * time.Second
)

// WebSocket reads group records from the tuner's data socket. Every text or
// binary frame is one batch. Dropped connections are redialled with an
// exponential back-off until ctx is done.
type WebSocket struct {
	URL        string
	Header     http.Header
	MaxBackoff time.Duration
	Logger     *log.Logger

	dialer  *websocket.Dialer
	retries int
}

func NewWebSocket(url string, logger *log.Logger) *WebSocket {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &WebSocket{
		URL:        url,
		MaxBackoff: defaultMaxBackoff,
		Logger:     logger.With("url", url),
		dialer:     websocket.DefaultDialer,
	}
}

// backoff is 2^retries seconds, capped at MaxBackoff.
func (s *WebSocket) backoff() time.Duration {
	var d = s.MaxBackoff

	if s.retries < 16 {
		if b := time.Duration(1<<uint(s.retries)) * time.Second; b < d {
			d = b
		}
	}
	return d
}

// Run only returns when ctx is done or the sink fails.
func (s *WebSocket) Run(ctx context.Context, sink Sink) error {
	for {
		err := s.runOnce(ctx, sink)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var sinkErr *SinkError
		if errors.As(err, &sinkErr) {
			return sinkErr.Err
		}

		wait := s.backoff()
		s.retries++
		s.Logger.Warn("data socket lost, reconnecting", "err", err, "in", wait, "attempt", s.retries)

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// SinkError wraps a failure of the sink rather than of the connection.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string { return "sink: " + e.Err.Error() }
func (e *SinkError) Unwrap() error { return e.Err }

func (s *WebSocket) runOnce(ctx context.Context, sink Sink) error {
	conn, _, err := s.dialer.DialContext(ctx, s.URL, s.Header)
	if err != nil {
		return fmt.Errorf("dialing data socket: %w", err)
	}
	defer conn.Close()

	s.Logger.Info("data socket connected")
	s.retries = 0

	// unblock ReadMessage when the context ends
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return errors.New("data socket closed by server")
			}
			return fmt.Errorf("reading data socket: %w", err)
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}
		if err := sink.Parse(ctx, string(msg)); err != nil {
			return &SinkError{Err: err}
		}
	}
}
