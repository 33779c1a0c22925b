package annotation

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"

	"cutmark/internal/progress"
)

const (
	// DuplicateWindow is the distance in seconds under which a new bookmark
	// is treated as a duplicate of an existing one.
	DuplicateWindow = 0.5
	// UndoDepth caps the number of removals that can be undone.
	UndoDepth = 50
	// chunkMatchWindow keeps a chunk's id and tags when its start time moves
	// by less than this.
	chunkMatchWindow = 0.1
)

var (
	// ErrChunkNotFound is returned for tag operations on an unknown chunk.
	ErrChunkNotFound = errors.New("chunk not found")
	// ErrInvalidTag is returned for tags without an id or name.
	ErrInvalidTag = errors.New("invalid tag")
)

// Timeline holds the bookmarks and chunks for one video.
type Timeline struct {
	bookmarks  []progress.Bookmark
	chunks     []Chunk
	undo       []progress.Bookmark
	globalTags []Tag
	sections   []Section
	newID      func() string
}

// NewTimeline returns an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{newID: uuid.NewString}
}

// AddBookmark inserts a bookmark at seconds unless one already exists within
// DuplicateWindow. It reports whether the bookmark was added.
func (t *Timeline) AddBookmark(seconds float64) (progress.Bookmark, bool) {
	return t.insert(progress.Bookmark{ID: t.newID(), Time: seconds})
}

// AddBookmarks merges detected bookmarks, keeping their ids, and returns how
// many were added.
func (t *Timeline) AddBookmarks(bookmarks []progress.Bookmark) int {
	added := 0
	for _, b := range bookmarks {
		if b.ID == "" {
			b.ID = t.newID()
		}
		if _, ok := t.insert(b); ok {
			added++
		}
	}
	return added
}

func (t *Timeline) insert(b progress.Bookmark) (progress.Bookmark, bool) {
	if math.IsNaN(b.Time) || math.IsInf(b.Time, 0) || b.Time < 0 {
		return progress.Bookmark{}, false
	}
	for _, existing := range t.bookmarks {
		if math.Abs(existing.Time-b.Time) < DuplicateWindow {
			return existing, false
		}
	}
	t.bookmarks = append(t.bookmarks, b)
	t.sortBookmarks()
	return b, true
}

func (t *Timeline) sortBookmarks() {
	slices.SortStableFunc(t.bookmarks, func(a, b progress.Bookmark) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})
}

// RemoveBookmark deletes the bookmark with id and remembers it for Undo.
func (t *Timeline) RemoveBookmark(id string) bool {
	idx := slices.IndexFunc(t.bookmarks, func(b progress.Bookmark) bool { return b.ID == id })
	if idx < 0 {
		return false
	}
	removed := t.bookmarks[idx]
	t.bookmarks = slices.Delete(t.bookmarks, idx, idx+1)
	t.undo = append([]progress.Bookmark{removed}, t.undo...)
	if len(t.undo) > UndoDepth {
		t.undo = t.undo[:UndoDepth]
	}
	return true
}

// Undo restores the most recently removed bookmark. The duplicate guard is
// not applied to restored bookmarks.
func (t *Timeline) Undo() (progress.Bookmark, bool) {
	if len(t.undo) == 0 {
		return progress.Bookmark{}, false
	}
	restored := t.undo[0]
	t.undo = t.undo[1:]
	t.bookmarks = append(t.bookmarks, restored)
	t.sortBookmarks()
	return restored, true
}

// UndoDepthUsed returns the number of removals that can be undone.
func (t *Timeline) UndoDepthUsed() int { return len(t.undo) }

// Bookmarks returns a copy of the bookmarks sorted by time.
func (t *Timeline) Bookmarks() []progress.Bookmark {
	return append([]progress.Bookmark{}, t.bookmarks...)
}

// RegenerateChunks rebuilds the chunk list so it tiles [0, duration] at the
// bookmark boundaries. A chunk whose start time moved by less than 0.1s
// keeps its id and tags. Bookmarks at or beyond duration end the tiling.
func (t *Timeline) RegenerateChunks(duration float64) []Chunk {
	previous := t.chunks
	next := make([]Chunk, 0, len(t.bookmarks)+1)
	last := 0.0

	build := func(start, end float64) Chunk {
		chunk := Chunk{ID: t.newID(), StartTime: start, EndTime: end, Tags: []Tag{}}
		for _, old := range previous {
			if math.Abs(old.StartTime-start) < chunkMatchWindow {
				chunk.ID = old.ID
				chunk.Tags = append([]Tag{}, old.Tags...)
				break
			}
		}
		return chunk
	}

	for _, b := range t.bookmarks {
		if b.Time <= last {
			continue
		}
		if duration > 0 && b.Time >= duration {
			break
		}
		next = append(next, build(last, b.Time))
		last = b.Time
	}
	if last < duration {
		next = append(next, build(last, duration))
	}
	t.chunks = next
	return t.Chunks()
}

// Chunks returns a copy of the current chunks.
func (t *Timeline) Chunks() []Chunk {
	out := make([]Chunk, len(t.chunks))
	for i, c := range t.chunks {
		c.Tags = append([]Tag{}, c.Tags...)
		out[i] = c
	}
	return out
}

// ChunkAt returns the chunk containing seconds.
func (t *Timeline) ChunkAt(seconds float64) (Chunk, bool) {
	for i, c := range t.chunks {
		lastChunk := i == len(t.chunks)-1
		if seconds >= c.StartTime && (seconds < c.EndTime || (lastChunk && seconds == c.EndTime)) {
			c.Tags = append([]Tag{}, c.Tags...)
			return c, true
		}
	}
	return Chunk{}, false
}

// AddTagToChunk attaches tag to a chunk. A tag id already present is ignored.
func (t *Timeline) AddTagToChunk(chunkID string, tag Tag) error {
	if err := validateTag(tag); err != nil {
		return err
	}
	for i := range t.chunks {
		if t.chunks[i].ID != chunkID {
			continue
		}
		if slices.ContainsFunc(t.chunks[i].Tags, func(existing Tag) bool { return existing.ID == tag.ID }) {
			return nil
		}
		t.chunks[i].Tags = append(t.chunks[i].Tags, tag)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrChunkNotFound, chunkID)
}

// RemoveTagFromChunk detaches a tag by id.
func (t *Timeline) RemoveTagFromChunk(chunkID, tagID string) error {
	for i := range t.chunks {
		if t.chunks[i].ID != chunkID {
			continue
		}
		t.chunks[i].Tags = slices.DeleteFunc(t.chunks[i].Tags, func(existing Tag) bool { return existing.ID == tagID })
		return nil
	}
	return fmt.Errorf("%w: %s", ErrChunkNotFound, chunkID)
}

// AddGlobalTag labels the whole video.
func (t *Timeline) AddGlobalTag(tag Tag) error {
	if err := validateTag(tag); err != nil {
		return err
	}
	if slices.ContainsFunc(t.globalTags, func(existing Tag) bool { return existing.ID == tag.ID }) {
		return nil
	}
	t.globalTags = append(t.globalTags, tag)
	return nil
}

// NewTag builds a tag with a fresh id.
func (t *Timeline) NewTag(name string, category Category) Tag {
	return Tag{ID: t.newID(), Name: strings.TrimSpace(name), Category: category}
}

func validateTag(tag Tag) error {
	if strings.TrimSpace(tag.ID) == "" || strings.TrimSpace(tag.Name) == "" {
		return fmt.Errorf("%w: id and name are required", ErrInvalidTag)
	}
	if tag.Category != "" && !tag.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidTag, tag.Category)
	}
	return nil
}
