package history

import (
	"time"

	"cutmark/internal/progress"
)

// Status is the terminal outcome of an analysis.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Analysis is one recorded cut detection run.
type Analysis struct {
	ID           string
	FileName     string
	Threshold    float64
	MinInterval  float64
	TotalFrames  int
	Decoded      int
	FPS          float64
	Duration     float64
	Status       Status
	ErrorMessage string
	// TotalCuts is populated on read; Record derives it from Bookmarks.
	TotalCuts int
	// Bookmarks is nil for List results.
	Bookmarks []progress.Bookmark
	CreatedAt time.Time
	Elapsed   time.Duration
}
