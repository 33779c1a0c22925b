package progress

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind tags an event on the wire.
type Kind string

const (
	KindStart    Kind = "start"
	KindProgress Kind = "progress"
	KindResult   Kind = "result"
	KindError    Kind = "error"
)

// Event is one record of a detection stream.
type Event interface {
	Kind() Kind
	// Terminal reports whether the event closes the stream.
	Terminal() bool
}

// Bookmark is one detected cut.
type Bookmark struct {
	ID   string  `json:"id"`
	Time float64 `json:"time"`
}

// Start announces the number of frames the source reports.
type Start struct {
	TotalFrames int
}

// Progress reports integer percent completion.
type Progress struct {
	Value int
}

// Result carries the detected cuts.
type Result struct {
	Bookmarks []Bookmark
}

// Failure carries a scan error message.
type Failure struct {
	Message string
}

func (Start) Kind() Kind    { return KindStart }
func (Progress) Kind() Kind { return KindProgress }
func (Result) Kind() Kind   { return KindResult }
func (Failure) Kind() Kind  { return KindError }

func (Start) Terminal() bool    { return false }
func (Progress) Terminal() bool { return false }
func (Result) Terminal() bool   { return true }
func (Failure) Terminal() bool  { return true }

// TotalCuts returns the number of bookmarks.
func (r Result) TotalCuts() int { return len(r.Bookmarks) }

// ErrUnknownKind is returned when decoding a record with an unrecognized type tag.
var ErrUnknownKind = errors.New("unknown event type")

type startWire struct {
	Type        Kind `json:"type"`
	TotalFrames int  `json:"total_frames"`
}

type progressWire struct {
	Type  Kind `json:"type"`
	Value int  `json:"value"`
}

type resultWire struct {
	Type      Kind       `json:"type"`
	TotalCuts int        `json:"total_cuts"`
	Bookmarks []Bookmark `json:"bookmarks"`
}

type failureWire struct {
	Type    Kind   `json:"type"`
	Message string `json:"message"`
}

// Encode renders an event as a single JSON object without a trailing newline.
func Encode(event Event) ([]byte, error) {
	var payload any
	switch e := event.(type) {
	case Start:
		payload = startWire{Type: KindStart, TotalFrames: e.TotalFrames}
	case Progress:
		payload = progressWire{Type: KindProgress, Value: e.Value}
	case Result:
		bookmarks := e.Bookmarks
		if bookmarks == nil {
			bookmarks = []Bookmark{}
		}
		payload = resultWire{Type: KindResult, TotalCuts: len(bookmarks), Bookmarks: bookmarks}
	case Failure:
		payload = failureWire{Type: KindError, Message: e.Message}
	default:
		return nil, fmt.Errorf("encode event %T: %w", event, ErrUnknownKind)
	}
	return json.Marshal(payload)
}

// Decode parses one JSON record into its concrete event type.
func Decode(data []byte) (Event, error) {
	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	switch head.Type {
	case KindStart:
		var w startWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode start event: %w", err)
		}
		return Start{TotalFrames: w.TotalFrames}, nil
	case KindProgress:
		var w progressWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode progress event: %w", err)
		}
		return Progress{Value: w.Value}, nil
	case KindResult:
		var w resultWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode result event: %w", err)
		}
		if w.Bookmarks == nil {
			w.Bookmarks = []Bookmark{}
		}
		return Result{Bookmarks: w.Bookmarks}, nil
	case KindError:
		var w failureWire
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("decode error event: %w", err)
		}
		return Failure{Message: w.Message}, nil
	default:
		return nil, fmt.Errorf("decode event type %q: %w", head.Type, ErrUnknownKind)
	}
}
