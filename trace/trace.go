// Package trace records search spawn traces. A Recorder buffers events in
// memory; traces can be compared directly (reproducibility tests) or
// written out as s2-compressed JSON lines for offline inspection.
package trace

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/klauspost/compress/s2"

	"github.com/hupe1980/treesearch"
)

// Recorder is an in-memory Tracer implementation.
type Recorder struct {
	mu     sync.Mutex
	events []treesearch.TraceEvent
}

// Compile time check to ensure Recorder satisfies the Tracer interface.
var _ treesearch.Tracer = (*Recorder)(nil)

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record implements treesearch.Tracer.
func (r *Recorder) Record(ev treesearch.TraceEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events in arrival order.
func (r *Recorder) Events() []treesearch.TraceEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]treesearch.TraceEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = r.events[:0]
}

// Encode writes the trace as JSON lines and returns the number of events
// written.
func (r *Recorder) Encode(w io.Writer) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	enc := json.NewEncoder(w)
	for i, ev := range r.events {
		if err := enc.Encode(ev); err != nil {
			return i, err
		}
	}

	return len(r.events), nil
}

// WriteFile writes the trace to path as s2-compressed JSON lines.
func (r *Recorder) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	zw := s2.NewWriter(f)
	if _, err := r.Encode(zw); err != nil {
		_ = zw.Close()
		_ = f.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// ReadFile reads an s2-compressed JSONL trace written by WriteFile.
func ReadFile(path string) ([]treesearch.TraceEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []treesearch.TraceEvent
	dec := json.NewDecoder(s2.NewReader(f))
	for {
		var ev treesearch.TraceEvent
		if err := dec.Decode(&ev); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		events = append(events, ev)
	}

	return events, nil
}
