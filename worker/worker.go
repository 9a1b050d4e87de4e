// Package worker runs an rds.Decoder as an actor. Every command goes through
// one goroutine, so callers on any number of goroutines see the decoder as
// if it were used serially, in the order their commands were accepted.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bartgrantham/gofm/rds"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrStopped = errors.New("worker: stopped")
var ErrUnknownCommand = errors.New("worker: unknown command")

// Message types of the worker protocol.
const (
	TypeParse   = "parse"
	TypeParsed  = "parsed"
	TypeGetData = "getData"
	TypeData    = "data"
	TypeReset   = "reset"
)

// Options configure a Worker. The zero value is usable.
type Options struct {
	RBDS   bool
	Logger *log.Logger
	// Registry receives the worker's metrics. A private registry is
	// created when nil.
	Registry *prometheus.Registry
	Now      func() time.Time
}

type kind int

const (
	cmdParse kind = iota
	cmdGetData
	cmdReset
)

type command struct {
	kind  kind
	text  string
	reply chan result
}

type result struct {
	ingest rds.IngestResult
	snap   *rds.Snapshot
}

// Worker owns one Decoder. Run must be running for commands to complete.
type Worker struct {
	id       string
	logger   *log.Logger
	registry *prometheus.Registry
	metrics  *metrics
	dec      *rds.Decoder

	piChanges int
	cmds      chan command
	done      chan struct{}
}

// New creates a Worker with a fresh session id.
func New(opts Options) *Worker {
	var logger = opts.Logger
	var reg = opts.Registry

	if logger == nil {
		logger = log.New(io.Discard)
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	w := &Worker{
		id:       uuid.New().String(),
		registry: reg,
		metrics:  newMetrics(reg),
		cmds:     make(chan command),
		done:     make(chan struct{}),
	}
	w.logger = logger.With("session", w.id)
	w.dec = rds.New(rds.Options{
		RBDS:    opts.RBDS,
		Logger:  w.logger,
		Now:     opts.Now,
		OnGroup: w.metrics.group,
	})
	return w
}

// ID is the session id, also attached to every log line.
func (w *Worker) ID() string {
	return w.id
}

// Registry holds the worker's metrics.
func (w *Worker) Registry() *prometheus.Registry {
	return w.registry
}

// Run processes commands until ctx is done. It must be called once.
func (w *Worker) Run(ctx context.Context) error {
	defer close(w.done)

	w.logger.Info("decoder worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("decoder worker stopped")
			return ctx.Err()
		case cmd := <-w.cmds:
			cmd.reply <- w.exec(cmd)
		}
	}
}

func (w *Worker) exec(cmd command) result {
	var r result

	switch cmd.kind {
	case cmdParse:
		r.ingest = w.dec.Ingest(cmd.text)
		w.metrics.observe(r.ingest)
		w.metrics.ber.Set(w.dec.BER())
		if n := w.dec.PIChanges(); n != w.piChanges {
			w.metrics.piChanges.Add(float64(n - w.piChanges))
			w.piChanges = n
			pi, _ := w.dec.PI()
			w.logger.Info("station changed", "pi", fmt.Sprintf("%04X", pi))
		}
		if r.ingest.BitErrors > 0 || r.ingest.Ignored > 0 {
			w.logger.Debug("parsed", "groups", r.ingest.Groups, "bitErrors", r.ingest.BitErrors, "ignored", r.ingest.Ignored)
		}
	case cmdGetData:
		r.snap = w.dec.Snapshot()
	case cmdReset:
		w.dec.Reset()
		w.metrics.ber.Set(rds.BERUnknown)
		w.logger.Info("decoder reset")
	}
	return r
}

func (w *Worker) call(ctx context.Context, cmd command) (result, error) {
	cmd.reply = make(chan result, 1)

	select {
	case w.cmds <- cmd:
	case <-w.done:
		return result{}, ErrStopped
	case <-ctx.Done():
		return result{}, ctx.Err()
	}

	select {
	case r := <-cmd.reply:
		return r, nil
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
}

// Parse feeds a batch of newline separated group records to the decoder.
func (w *Worker) Parse(ctx context.Context, text string) error {
	_, err := w.Ingest(ctx, text)
	return err
}

// Ingest is Parse, also returning what became of the records.
func (w *Worker) Ingest(ctx context.Context, text string) (rds.IngestResult, error) {
	r, err := w.call(ctx, command{kind: cmdParse, text: text})
	return r.ingest, err
}

// GetData returns a snapshot of the decoded state.
func (w *Worker) GetData(ctx context.Context) (*rds.Snapshot, error) {
	r, err := w.call(ctx, command{kind: cmdGetData})
	return r.snap, err
}

// Reset drops all decoded state.
func (w *Worker) Reset(ctx context.Context) error {
	_, err := w.call(ctx, command{kind: cmdReset})
	return err
}
