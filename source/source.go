// Package source delivers raw group records to a decoder.
package source

import (
	"context"
)

// Sink consumes batches of newline separated group records, in order.
// *worker.Worker is a Sink.
type Sink interface {
	Parse(ctx context.Context, text string) error
}

// Source runs until its input ends or ctx is done.
type Source interface {
	Run(ctx context.Context, sink Sink) error
}
