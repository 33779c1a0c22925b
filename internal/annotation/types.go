package annotation

import "cutmark/internal/progress"

// Category scopes a tag.
type Category string

const (
	CategoryGlobal  Category = "global"
	CategorySection Category = "section"
	CategoryChunk   Category = "chunk"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryGlobal, CategorySection, CategoryChunk:
		return true
	}
	return false
}

// Tag labels a chunk, a section or the whole video.
type Tag struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Color    string   `json:"color,omitempty"`
}

// Chunk is the span between two consecutive bookmarks, or between the last
// bookmark and the end of the video.
type Chunk struct {
	ID        string  `json:"id"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Tags      []Tag   `json:"tags"`
}

// Section tags an arbitrary span independent of the bookmarks.
type Section struct {
	ID        string  `json:"id"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Tags      []Tag   `json:"tags"`
}

// Annotations is the payload of an exported document.
type Annotations struct {
	GlobalTags  []Tag               `json:"globalTags"`
	SectionTags []Section           `json:"sectionTags"`
	Bookmarks   []progress.Bookmark `json:"bookmarks"`
	Chunks      []Chunk             `json:"chunks"`
}
