package testsupport

import (
	"context"
	"testing"

	"cutmark/internal/config"
	"cutmark/internal/history"
	"cutmark/internal/progress"
)

// MustOpenStore opens a history.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// RecordAnalysis inserts a completed analysis with one bookmark per time.
func RecordAnalysis(t testing.TB, store *history.Store, id, fileName string, times ...float64) history.Analysis {
	t.Helper()

	analysis := history.Analysis{
		ID:          id,
		FileName:    fileName,
		Threshold:   50,
		MinInterval: 0.5,
		Status:      history.StatusCompleted,
		Bookmarks:   []progress.Bookmark{},
	}
	for i, ts := range times {
		analysis.Bookmarks = append(analysis.Bookmarks, progress.Bookmark{ID: id + "-" + string(rune('a'+i)), Time: ts})
	}
	if err := store.Record(context.Background(), analysis); err != nil {
		t.Fatalf("store.Record: %v", err)
	}
	return analysis
}
