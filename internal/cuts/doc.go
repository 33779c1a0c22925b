// Package cuts detects abrupt frame changes in a video.
//
// Scanner walks a frame source once, comparing each grayscale frame to its
// predecessor by mean absolute pixel difference. A difference above the
// threshold marks a cut unless the previous cut is closer than the minimum
// interval. Stream wraps a scan in the progress event protocol so a transport
// can relay start, progress and terminal events as they happen.
package cuts
