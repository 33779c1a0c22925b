// Package frames yields decoded video frames as grayscale rasters.
//
// Open probes a container with ffprobe and streams raw 8-bit luma frames out
// of an ffmpeg subprocess. SliceSource serves pre-built images, which keeps
// scanner tests independent of the ffmpeg binaries.
package frames
