package worker

import (
	"context"
	"fmt"

	"github.com/bartgrantham/gofm/rds"
)

/*
Requests and responses are JSON objects discriminated by "type":

    {"type":"parse","data":"<records>"}  ->  {"type":"parsed"}
    {"type":"getData"}                   ->  {"type":"data", ...snapshot fields}
    {"type":"reset"}                     ->  {"type":"reset"}
*/

type request struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
}

type ack struct {
	Type string `json:"type"`
}

// DataMessage is the response to getData.
type DataMessage struct {
	Type string `json:"type"`
	*rds.Snapshot
}

// Handle decodes one request message, runs it and encodes the response.
func (w *Worker) Handle(ctx context.Context, msg []byte) ([]byte, error) {
	var req request

	if err := json.Unmarshal(msg, &req); err != nil {
		return nil, fmt.Errorf("worker: decoding request: %w", err)
	}

	switch req.Type {
	case TypeParse:
		if err := w.Parse(ctx, req.Data); err != nil {
			return nil, err
		}
		return json.Marshal(ack{Type: TypeParsed})
	case TypeGetData:
		snap, err := w.GetData(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(DataMessage{Type: TypeData, Snapshot: snap})
	case TypeReset:
		if err := w.Reset(ctx); err != nil {
			return nil, err
		}
		return json.Marshal(ack{Type: TypeReset})
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, req.Type)
}
