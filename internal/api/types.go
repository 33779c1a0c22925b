package api

import (
	"time"

	"cutmark/internal/history"
	"cutmark/internal/progress"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status string `json:"status"`
}

// AnalysisSummary describes a recorded analysis without its bookmarks.
type AnalysisSummary struct {
	ID           string  `json:"id"`
	FileName     string  `json:"fileName"`
	Status       string  `json:"status"`
	Threshold    float64 `json:"threshold"`
	MinInterval  float64 `json:"minInterval"`
	TotalFrames  int     `json:"totalFrames"`
	Decoded      int     `json:"decodedFrames"`
	FPS          float64 `json:"fps"`
	Duration     float64 `json:"durationSeconds"`
	TotalCuts    int     `json:"totalCuts"`
	ErrorMessage string  `json:"errorMessage,omitempty"`
	CreatedAt    string  `json:"createdAt,omitempty"`
	ElapsedMS    int64   `json:"elapsedMs"`
}

// AnalysisDetail adds the bookmark list to a summary.
type AnalysisDetail struct {
	AnalysisSummary
	Bookmarks []progress.Bookmark `json:"bookmarks"`
}

// AnalysisListResponse wraps GET /api/analyses.
type AnalysisListResponse struct {
	Items []AnalysisSummary `json:"items"`
}

// AnalysisResponse wraps GET /api/analyses/{id}.
type AnalysisResponse struct {
	Item AnalysisDetail `json:"item"`
}

// ErrorResponse is the body of every non-streaming failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FromAnalysis converts a history record into its transport summary.
func FromAnalysis(a history.Analysis) AnalysisSummary {
	summary := AnalysisSummary{
		ID:           a.ID,
		FileName:     a.FileName,
		Status:       string(a.Status),
		Threshold:    a.Threshold,
		MinInterval:  a.MinInterval,
		TotalFrames:  a.TotalFrames,
		Decoded:      a.Decoded,
		FPS:          a.FPS,
		Duration:     a.Duration,
		TotalCuts:    a.TotalCuts,
		ErrorMessage: a.ErrorMessage,
		ElapsedMS:    a.Elapsed.Milliseconds(),
	}
	if !a.CreatedAt.IsZero() {
		summary.CreatedAt = a.CreatedAt.UTC().Format(dateTimeFormat)
	}
	return summary
}

// FromAnalysisDetail converts a history record including bookmarks.
func FromAnalysisDetail(a history.Analysis) AnalysisDetail {
	bookmarks := a.Bookmarks
	if bookmarks == nil {
		bookmarks = []progress.Bookmark{}
	}
	return AnalysisDetail{AnalysisSummary: FromAnalysis(a), Bookmarks: bookmarks}
}

// CreatedTime parses CreatedAt back into a time.
func (s AnalysisSummary) CreatedTime() time.Time {
	ts, err := time.Parse(dateTimeFormat, s.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return ts
}
