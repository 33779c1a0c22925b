// Package annotation keeps a cut timeline for one video: a sorted bookmark
// set, the chunks between consecutive bookmarks and the tags attached to
// them. Timelines round-trip through a versioned JSON document that the
// browser annotator exports and imports.
//
// A Timeline is not safe for concurrent use.
package annotation
