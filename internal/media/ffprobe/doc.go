// Package ffprobe wraps the ffprobe CLI to extract container and stream
// metadata.
//
// Inspect returns the decoded JSON document; helpers derive the frame rate
// and frame count the cut scanner needs to timestamp frames and pace
// progress reports.
package ffprobe
