package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartgrantham/gofm/rds"
)

// 0A groups for PI 1234 writing "AB" and "CD" at PS addresses 0 and 1
const psAB = "1234000000004142"
const psCD = "1234000100004344"

func startWorker(t *testing.T, opts Options) *Worker {
	t.Helper()

	var w = New(opts)
	var ctx, cancel = context.WithCancel(context.Background())
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	return w
}

func TestWorkerParseAndGetData(t *testing.T) {
	var w = startWorker(t, Options{})
	var ctx = context.Background()

	res, err := w.Ingest(ctx, psAB+"\n"+psCD+"\n1234----00004142\nshort")
	require.NoError(t, err)
	assert.Equal(t, rds.IngestResult{Groups: 2, BitErrors: 1, Ignored: 1}, res)

	snap, err := w.GetData(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1234", snap.PI)
	assert.Equal(t, "ABCD    ", snap.PS)
	assert.Equal(t, 2, snap.GroupTotal)
}

func TestWorkerReset(t *testing.T) {
	var w = startWorker(t, Options{})
	var ctx = context.Background()

	require.NoError(t, w.Parse(ctx, psAB))
	require.NoError(t, w.Reset(ctx))

	snap, err := w.GetData(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.PI)
	assert.Equal(t, "        ", snap.PS)
	assert.Zero(t, snap.GroupTotal)
}

func TestWorkerSerializesConcurrentCallers(t *testing.T) {
	var w = startWorker(t, Options{})
	var ctx = context.Background()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				assert.NoError(t, w.Parse(ctx, psAB))
				_, err := w.GetData(ctx)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	snap, err := w.GetData(ctx)
	require.NoError(t, err)
	assert.Equal(t, 200, snap.GroupTotal)
}

func TestWorkerStopped(t *testing.T) {
	var w = New(Options{})
	var ctx, cancel = context.WithCancel(context.Background())

	cancel()
	assert.ErrorIs(t, w.Run(ctx), context.Canceled)
	assert.ErrorIs(t, w.Parse(context.Background(), psAB), ErrStopped)
	_, err := w.GetData(context.Background())
	assert.ErrorIs(t, err, ErrStopped)
}

func TestWorkerCallerContext(t *testing.T) {
	// no Run: the command is never accepted
	var w = New(Options{})
	var ctx, cancel = context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, w.Reset(ctx), context.DeadlineExceeded)
}

func TestWorkerSessionID(t *testing.T) {
	var a, b = New(Options{}), New(Options{})

	_, err := uuid.Parse(a.ID())
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestWorkerMetrics(t *testing.T) {
	var now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var w = startWorker(t, Options{Now: func() time.Time { return now }})
	var ctx = context.Background()
	var m = w.metrics

	require.NoError(t, w.Parse(ctx, psAB+"\n"+psCD+"\n1234----00004142\n\n"))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.lines.WithLabelValues(outcomeGroup)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.lines.WithLabelValues(outcomeBitError)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.lines.WithLabelValues(outcomeIgnored)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.groups.WithLabelValues("0A")))
	assert.Equal(t, rds.BERUnknown, testutil.ToFloat64(m.ber))

	now = now.Add(rds.GracePeriod)
	require.NoError(t, w.Parse(ctx, psAB))
	assert.Equal(t, 25.0, testutil.ToFloat64(m.ber))

	// four consecutive groups of another station confirm the change
	for i := 0; i < 4; i++ {
		require.NoError(t, w.Parse(ctx, "5678000000004142"))
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.piChanges))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.groups.WithLabelValues("0A")))

	names, err := testutil.GatherAndCount(w.Registry())
	require.NoError(t, err)
	assert.Equal(t, 6, names)
}
