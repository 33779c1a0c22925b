package progress

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// ContentType is the media type of an encoded stream.
const ContentType = "application/x-ndjson"

var (
	// ErrStreamClosed is returned when emitting after a terminal event.
	ErrStreamClosed = errors.New("progress stream already terminated")
	// ErrOutOfOrder is returned when a start event follows other events.
	ErrOutOfOrder = errors.New("start event must be the first event")
)

// Sink receives stream events.
type Sink interface {
	Emit(Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event) error

// Emit calls f(event).
func (f SinkFunc) Emit(event Event) error { return f(event) }

// Writer encodes events as NDJSON onto an io.Writer.
type Writer struct {
	mu         sync.Mutex
	w          io.Writer
	flusher    http.Flusher
	emitted    int
	terminated bool
}

// NewWriter wraps w. When w implements http.Flusher each line is flushed
// immediately.
func NewWriter(w io.Writer) *Writer {
	writer := &Writer{w: w}
	if f, ok := w.(http.Flusher); ok {
		writer.flusher = f
	}
	return writer
}

// Emit writes one event line.
func (w *Writer) Emit(event Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.terminated {
		return ErrStreamClosed
	}
	if event.Kind() == KindStart && w.emitted > 0 {
		return ErrOutOfOrder
	}
	line, err := Encode(event)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	// Count the event even if the write fails so a broken transport cannot
	// be handed a second terminal event.
	w.emitted++
	if event.Terminal() {
		w.terminated = true
	}
	if _, err := w.w.Write(line); err != nil {
		return fmt.Errorf("write %s event: %w", event.Kind(), err)
	}
	if w.flusher != nil {
		w.flusher.Flush()
	}
	return nil
}

// Terminated reports whether a terminal event has been emitted.
func (w *Writer) Terminated() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.terminated
}
