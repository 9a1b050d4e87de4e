package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	batches []string
	err     error
	got     chan struct{}
}

func newRecorder() *recorder {
	return &recorder{got: make(chan struct{}, 100)}
}

func (r *recorder) Parse(ctx context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.batches = append(r.batches, text)
	r.got <- struct{}{}
	return r.err
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.batches...)
}

func TestReader(t *testing.T) {
	var rec = newRecorder()
	var in = strings.NewReader("3F7C06158B2C41A0\r\n3F7C----8B2C41A0\n\n")

	err := NewReader(in, 0, nil).Run(context.Background(), rec)

	require.NoError(t, err)
	assert.Equal(t, []string{"3F7C06158B2C41A0", "3F7C----8B2C41A0", ""}, rec.all())
}

func TestReaderSinkError(t *testing.T) {
	var rec = newRecorder()
	var boom = errors.New("boom")

	rec.err = boom
	err := NewReader(strings.NewReader("a\nb\n"), 0, nil).Run(context.Background(), rec)

	assert.ErrorIs(t, err, boom)
	assert.Len(t, rec.all(), 1)
}

func TestReaderDelayHonoursContext(t *testing.T) {
	var rec = newRecorder()
	var ctx, cancel = context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := NewReader(strings.NewReader("a\nb\nc\n"), time.Hour, nil).Run(ctx, rec)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, rec.all())
}

func TestWebSocketBackoff(t *testing.T) {
	var s = NewWebSocket("ws://localhost/", nil)

	for _, want := range []time.Duration{1, 2, 4, 8, 16, 30, 30} {
		assert.Equal(t, want*time.Second, s.backoff())
		s.retries++
	}
	s.retries = 100
	assert.Equal(t, 30*time.Second, s.backoff())
}

// dataServer sends the given frames to each connection and then closes it.
func dataServer(t *testing.T, frames ...string) *httptest.Server {
	var upgrader = websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWebSocketDeliversFramesAndReconnects(t *testing.T) {
	var srv = dataServer(t, "3F7C06158B2C41A0", "3F7C06168B2C4142")
	var rec = newRecorder()
	var ctx, cancel = context.WithCancel(context.Background())
	var done = make(chan error, 1)

	s := NewWebSocket("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	s.MaxBackoff = 10 * time.Millisecond
	go func() { done <- s.Run(ctx, rec) }()

	// two frames per connection, wait for a second connection
	for i := 0; i < 4; i++ {
		select {
		case <-rec.got:
		case <-time.After(5 * time.Second):
			t.Fatal("no frame received")
		}
	}
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	got := rec.all()
	assert.Equal(t, []string{"3F7C06158B2C41A0", "3F7C06168B2C4142"}, got[:2])
	assert.Equal(t, got[:2], got[2:4])
}

func TestWebSocketStopsOnSinkError(t *testing.T) {
	var srv = dataServer(t, "3F7C06158B2C41A0")
	var rec = newRecorder()
	var boom = errors.New("boom")

	rec.err = boom
	s := NewWebSocket("ws"+strings.TrimPrefix(srv.URL, "http"), nil)

	assert.ErrorIs(t, s.Run(context.Background(), rec), boom)
}
