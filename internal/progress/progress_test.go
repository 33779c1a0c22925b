package progress_test

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"cutmark/internal/progress"
)

func TestEncodeWireShapes(t *testing.T) {
	tests := []struct {
		name  string
		event progress.Event
		want  string
	}{
		{"start", progress.Start{TotalFrames: 120}, `{"type":"start","total_frames":120}`},
		{"start zero", progress.Start{}, `{"type":"start","total_frames":0}`},
		{"progress", progress.Progress{Value: 35}, `{"type":"progress","value":35}`},
		{"empty result", progress.Result{}, `{"type":"result","total_cuts":0,"bookmarks":[]}`},
		{
			"result",
			progress.Result{Bookmarks: []progress.Bookmark{{ID: "a", Time: 1.5}, {ID: "b", Time: 3.033}}},
			`{"type":"result","total_cuts":2,"bookmarks":[{"id":"a","time":1.5},{"id":"b","time":3.033}]}`,
		},
		{"error", progress.Failure{Message: "Could not open video file"}, `{"type":"error","message":"Could not open video file"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := progress.Encode(tt.event)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("Encode = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	_, err := progress.Decode([]byte(`{"type":"bogus"}`))
	if !errors.Is(err, progress.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestWriterEnforcesOrdering(t *testing.T) {
	var buf bytes.Buffer
	w := progress.NewWriter(&buf)

	if err := w.Emit(progress.Start{TotalFrames: 10}); err != nil {
		t.Fatalf("emit start: %v", err)
	}
	if err := w.Emit(progress.Start{TotalFrames: 10}); !errors.Is(err, progress.ErrOutOfOrder) {
		t.Fatalf("expected ErrOutOfOrder for second start, got %v", err)
	}
	if err := w.Emit(progress.Progress{Value: 50}); err != nil {
		t.Fatalf("emit progress: %v", err)
	}
	if w.Terminated() {
		t.Fatal("writer terminated before terminal event")
	}
	if err := w.Emit(progress.Result{}); err != nil {
		t.Fatalf("emit result: %v", err)
	}
	if !w.Terminated() {
		t.Fatal("expected writer to be terminated")
	}
	if err := w.Emit(progress.Failure{Message: "late"}); !errors.Is(err, progress.ErrStreamClosed) {
		t.Fatalf("expected ErrStreamClosed, got %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
}

func TestWriterFlushesHTTPResponses(t *testing.T) {
	rec := httptest.NewRecorder()
	w := progress.NewWriter(rec)
	if err := w.Emit(progress.Failure{Message: "boom"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if !rec.Flushed {
		t.Fatal("expected recorder to be flushed")
	}
}

func TestReadRoundTripsWriterOutput(t *testing.T) {
	var buf bytes.Buffer
	w := progress.NewWriter(&buf)
	events := []progress.Event{
		progress.Start{TotalFrames: 4},
		progress.Progress{Value: 50},
		progress.Progress{Value: 100},
		progress.Result{Bookmarks: []progress.Bookmark{{ID: "x", Time: 0.033}}},
	}
	for _, e := range events {
		if err := w.Emit(e); err != nil {
			t.Fatalf("emit: %v", err)
		}
	}

	got, err := progress.Collect(&buf)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got) != len(events) {
		t.Fatalf("got %d events, want %d", len(got), len(events))
	}
	result, ok := got[3].(progress.Result)
	if !ok {
		t.Fatalf("expected result event, got %T", got[3])
	}
	if result.TotalCuts() != 1 || result.Bookmarks[0].Time != 0.033 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestReadReportsIncompleteStream(t *testing.T) {
	stream := "{\"type\":\"start\",\"total_frames\":10}\n{\"type\":\"progress\",\"value\":10}\n"
	var seen int
	err := progress.Read(strings.NewReader(stream), func(progress.Event) error {
		seen++
		return nil
	})
	if !errors.Is(err, progress.ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	if seen != 2 {
		t.Fatalf("expected 2 events before drop, got %d", seen)
	}
}

func TestReadStopsAtTerminalEvent(t *testing.T) {
	stream := "{\"type\":\"error\",\"message\":\"Could not open video file\"}\n\n{\"type\":\"progress\",\"value\":10}\n"
	events, err := progress.Collect(strings.NewReader(stream))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(events) != 1 || events[0].Kind() != progress.KindError {
		t.Fatalf("unexpected events: %#v", events)
	}
}
