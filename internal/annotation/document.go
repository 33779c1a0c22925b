package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"cutmark/internal/fileutil"
	"cutmark/internal/progress"
)

// DocumentVersion is the only document version this package reads and writes.
const DocumentVersion = "1.0"

// isoMillis matches JavaScript's Date.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z"

// ErrUnsupportedVersion is returned when importing a document of another version.
var ErrUnsupportedVersion = errors.New("unsupported annotation document version")

// Document is the exported form of a timeline.
type Document struct {
	Version     string      `json:"version"`
	Timestamp   string      `json:"timestamp"`
	Annotations Annotations `json:"annotations"`
}

// ExportFileName returns the default download name for a document written at now.
func ExportFileName(now time.Time) string {
	return "baseball_annotations_" + strconv.FormatInt(now.UnixMilli(), 10) + ".json"
}

// Export snapshots the timeline. Empty collections encode as [].
func (t *Timeline) Export(now time.Time) Document {
	doc := Document{
		Version:   DocumentVersion,
		Timestamp: now.UTC().Format(isoMillis),
		Annotations: Annotations{
			GlobalTags:  append([]Tag{}, t.globalTags...),
			SectionTags: make([]Section, 0, len(t.sections)),
			Bookmarks:   t.Bookmarks(),
			Chunks:      t.Chunks(),
		},
	}
	for _, section := range t.sections {
		section.Tags = append([]Tag{}, section.Tags...)
		doc.Annotations.SectionTags = append(doc.Annotations.SectionTags, section)
	}
	return doc
}

// Import builds a timeline from a document. Bookmarks are re-sorted; the
// duplicate guard is not applied so a document round-trips unchanged.
func Import(doc Document) (*Timeline, error) {
	if doc.Version != DocumentVersion {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, doc.Version)
	}
	t := NewTimeline()
	t.globalTags = append([]Tag{}, doc.Annotations.GlobalTags...)
	t.sections = append([]Section{}, doc.Annotations.SectionTags...)
	for _, b := range doc.Annotations.Bookmarks {
		if b.ID == "" {
			return nil, errors.New("import bookmark: empty id")
		}
		t.bookmarks = append(t.bookmarks, progress.Bookmark{ID: b.ID, Time: b.Time})
	}
	t.sortBookmarks()
	for _, c := range doc.Annotations.Chunks {
		if c.EndTime < c.StartTime {
			return nil, fmt.Errorf("import chunk %s: end %.3f before start %.3f", c.ID, c.EndTime, c.StartTime)
		}
		if c.Tags == nil {
			c.Tags = []Tag{}
		}
		t.chunks = append(t.chunks, c)
	}
	return t, nil
}

// Encode writes doc as indented JSON.
func Encode(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode annotation document: %w", err)
	}
	return nil
}

// Decode reads one document.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode annotation document: %w", err)
	}
	return doc, nil
}

// WriteFile atomically writes doc to path.
func WriteFile(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode annotation document: %w", err)
	}
	if err := fileutil.EnsureParent(path); err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, append(data, '\n'), 0o644)
}

// ReadFile loads and imports the document at path.
func ReadFile(path string) (*Timeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open annotation document: %w", err)
	}
	defer f.Close()
	doc, err := Decode(f)
	if err != nil {
		return nil, err
	}
	return Import(doc)
}
