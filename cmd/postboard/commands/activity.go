package commands

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/goliatone/go-postboard"
	"github.com/goliatone/go-postboard/activitymap"
)

// activityWriter streams normalized activity records as JSON lines.
type activityWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newActivityWriter(w io.Writer) *activityWriter {
	return &activityWriter{enc: json.NewEncoder(w)}
}

func (w *activityWriter) Record(_ context.Context, event postboard.ActivityEvent) error {
	record := activitymap.Normalize(event, activitymap.WithDefaultChannel("cli"))

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(record)
}
