package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Reader scans records from an io.Reader such as stdin or a capture file,
// one line per Parse call.
type Reader struct {
	r io.Reader
	// Delay paces a capture replay. Zero feeds as fast as the sink accepts.
	Delay  time.Duration
	Logger *log.Logger
}

func NewReader(r io.Reader, delay time.Duration, logger *log.Logger) *Reader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Reader{r: r, Delay: delay, Logger: logger}
}

// Run returns nil at end of input.
func (r *Reader) Run(ctx context.Context, sink Sink) error {
	var scanner = bufio.NewScanner(r.r)
	var lines int
	var tick <-chan time.Time

	if r.Delay > 0 {
		ticker := time.NewTicker(r.Delay)
		defer ticker.Stop()
		tick = ticker.C
	}

	for scanner.Scan() {
		if tick != nil {
			select {
			case <-tick:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := sink.Parse(ctx, scanner.Text()); err != nil {
			return err
		}
		lines++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading records: %w", err)
	}
	r.Logger.Info("end of input", "lines", lines)
	return nil
}
