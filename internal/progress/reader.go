package progress

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrIncomplete is returned when a stream ends without a terminal event.
var ErrIncomplete = errors.New("progress stream ended without a terminal event")

const maxLineBytes = 16 << 20

// Read consumes an NDJSON stream, calling fn for each event in order. It stops
// after the terminal event. Blank lines are skipped.
func Read(r io.Reader, fn func(Event) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for scanner.Scan() {
		line++
		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		event, err := Decode(data)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(event); err != nil {
			return err
		}
		if event.Terminal() {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return ErrIncomplete
}

// Collect reads a whole stream into a slice.
func Collect(r io.Reader) ([]Event, error) {
	var events []Event
	err := Read(r, func(e Event) error {
		events = append(events, e)
		return nil
	})
	return events, err
}
