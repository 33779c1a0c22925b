package annotation

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cutmark/internal/progress"
)

func newTestTimeline() *Timeline {
	t := NewTimeline()
	n := 0
	t.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return t
}

func times(bookmarks []progress.Bookmark) []float64 {
	out := make([]float64, len(bookmarks))
	for i, b := range bookmarks {
		out[i] = b.Time
	}
	return out
}

func TestAddBookmarkKeepsOrderAndIgnoresNearDuplicates(t *testing.T) {
	tl := newTestTimeline()
	for _, ts := range []float64{5, 1, 3, 5.4, 0.6, 2.9999} {
		tl.AddBookmark(ts)
	}
	got := times(tl.Bookmarks())
	want := []float64{1, 3, 5}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("bookmarks = %v, want %v", got, want)
	}
	if _, ok := tl.AddBookmark(1.5); !ok {
		t.Fatal("expected a bookmark exactly 0.5s away to be accepted")
	}
	if _, ok := tl.AddBookmark(-1); ok {
		t.Fatal("negative times must be rejected")
	}
}

func TestAddBookmarksKeepsDetectedIDs(t *testing.T) {
	tl := newTestTimeline()
	added := tl.AddBookmarks([]progress.Bookmark{{ID: "a", Time: 2}, {ID: "b", Time: 2.2}, {Time: 4}})
	if added != 2 {
		t.Fatalf("added = %d, want 2", added)
	}
	got := tl.Bookmarks()
	if got[0].ID != "a" || got[1].ID != "id-1" {
		t.Fatalf("unexpected ids %+v", got)
	}
}

func TestRemoveAndUndo(t *testing.T) {
	tl := newTestTimeline()
	first, _ := tl.AddBookmark(1)
	second, _ := tl.AddBookmark(2)

	if !tl.RemoveBookmark(first.ID) || !tl.RemoveBookmark(second.ID) {
		t.Fatal("expected removals to succeed")
	}
	if tl.RemoveBookmark("missing") {
		t.Fatal("removing an unknown id must report false")
	}
	restored, ok := tl.Undo()
	if !ok || restored.ID != second.ID {
		t.Fatalf("expected most recent removal restored first, got %+v", restored)
	}
	restored, ok = tl.Undo()
	if !ok || restored.ID != first.ID {
		t.Fatalf("expected first removal restored, got %+v", restored)
	}
	if _, ok := tl.Undo(); ok {
		t.Fatal("expected empty undo history")
	}
	if got := times(tl.Bookmarks()); fmt.Sprint(got) != "[1 2]" {
		t.Fatalf("unexpected bookmarks after undo %v", got)
	}
}

func TestUndoHistoryIsCapped(t *testing.T) {
	tl := newTestTimeline()
	for i := 0; i < UndoDepth+10; i++ {
		b, _ := tl.AddBookmark(float64(i))
		tl.RemoveBookmark(b.ID)
	}
	if tl.UndoDepthUsed() != UndoDepth {
		t.Fatalf("undo depth = %d, want %d", tl.UndoDepthUsed(), UndoDepth)
	}
}

func TestRegenerateChunksTilesDuration(t *testing.T) {
	tl := newTestTimeline()
	tl.AddBookmark(2)
	tl.AddBookmark(5)
	tl.AddBookmark(12) // beyond the video

	chunks := tl.RegenerateChunks(10)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %+v", chunks)
	}
	if chunks[0].StartTime != 0 || chunks[len(chunks)-1].EndTime != 10 {
		t.Fatalf("chunks do not span [0, 10]: %+v", chunks)
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].StartTime != chunks[i-1].EndTime {
			t.Fatalf("gap between chunks %d and %d: %+v", i-1, i, chunks)
		}
	}

	empty := newTestTimeline().RegenerateChunks(7)
	if len(empty) != 1 || empty[0].StartTime != 0 || empty[0].EndTime != 7 {
		t.Fatalf("expected one chunk for an unbookmarked video, got %+v", empty)
	}
}

func TestRegenerateChunksPreservesTags(t *testing.T) {
	tl := newTestTimeline()
	tl.AddBookmark(4)
	chunks := tl.RegenerateChunks(10)
	tag := tl.NewTag("curveball", CategoryChunk)
	if err := tl.AddTagToChunk(chunks[1].ID, tag); err != nil {
		t.Fatalf("AddTagToChunk: %v", err)
	}
	if err := tl.AddTagToChunk(chunks[1].ID, tag); err != nil {
		t.Fatalf("duplicate AddTagToChunk: %v", err)
	}

	tl.AddBookmark(7)
	regenerated := tl.RegenerateChunks(10)
	if len(regenerated) != 3 {
		t.Fatalf("expected 3 chunks, got %+v", regenerated)
	}
	if regenerated[1].ID != chunks[1].ID || len(regenerated[1].Tags) != 1 {
		t.Fatalf("expected chunk starting at 4 to keep its tag, got %+v", regenerated[1])
	}
	if len(regenerated[2].Tags) != 0 {
		t.Fatalf("new chunk should start untagged, got %+v", regenerated[2])
	}

	found, ok := tl.ChunkAt(4.5)
	if !ok || found.ID != chunks[1].ID {
		t.Fatalf("ChunkAt(4.5) = %+v %v", found, ok)
	}
	if err := tl.RemoveTagFromChunk(found.ID, tag.ID); err != nil {
		t.Fatalf("RemoveTagFromChunk: %v", err)
	}
	if err := tl.AddTagToChunk("nope", tag); !errors.Is(err, ErrChunkNotFound) {
		t.Fatalf("expected ErrChunkNotFound, got %v", err)
	}
	if err := tl.AddTagToChunk(found.ID, Tag{ID: "x"}); !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag, got %v", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	tl := newTestTimeline()
	tl.AddBookmarks([]progress.Bookmark{{ID: "b1", Time: 1.5}, {ID: "b2", Time: 3.25}})
	chunks := tl.RegenerateChunks(6)
	if err := tl.AddTagToChunk(chunks[0].ID, Tag{ID: "t1", Name: "strike", Category: CategoryChunk, Color: "#ff0000"}); err != nil {
		t.Fatalf("AddTagToChunk: %v", err)
	}
	if err := tl.AddGlobalTag(Tag{ID: "g1", Name: "day game", Category: CategoryGlobal}); err != nil {
		t.Fatalf("AddGlobalTag: %v", err)
	}

	now := time.Date(2026, 3, 4, 5, 6, 7, 890_000_000, time.UTC)
	doc := tl.Export(now)
	if doc.Version != "1.0" || doc.Timestamp != "2026-03-04T05:06:07.890Z" {
		t.Fatalf("unexpected header %+v", doc)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for _, key := range []string{`"globalTags"`, `"sectionTags": []`, `"startTime"`, `"endTime"`, `"color": "#ff0000"`} {
		if !strings.Contains(buf.String(), key) {
			t.Fatalf("encoded document missing %s:\n%s", key, buf.String())
		}
	}

	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	imported, err := Import(decoded)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got := times(imported.Bookmarks()); fmt.Sprint(got) != "[1.5 3.25]" {
		t.Fatalf("unexpected bookmarks %v", got)
	}
	importedChunks := imported.Chunks()
	if len(importedChunks) != 3 || importedChunks[0].Tags[0].Name != "strike" {
		t.Fatalf("unexpected chunks %+v", importedChunks)
	}

	decoded.Version = "2.0"
	if _, err := Import(decoded); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestWriteAndReadFile(t *testing.T) {
	tl := newTestTimeline()
	tl.AddBookmark(2)
	tl.RegenerateChunks(4)
	path := filepath.Join(t.TempDir(), "out", ExportFileName(time.UnixMilli(1700000000000)))
	if filepath.Base(path) != "baseball_annotations_1700000000000.json" {
		t.Fatalf("unexpected file name %s", filepath.Base(path))
	}
	if err := WriteFile(path, tl.Export(time.Now())); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	loaded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(loaded.Chunks()) != 2 {
		t.Fatalf("unexpected chunks %+v", loaded.Chunks())
	}
}
