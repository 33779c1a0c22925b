package frames

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"
	"sync"

	"cutmark/internal/media/ffprobe"
)

// Binaries names the decoder executables.
type Binaries struct {
	FFmpeg  string
	FFprobe string
}

type ffmpegSource struct {
	info    Info
	cmd     *exec.Cmd
	stdout  io.ReadCloser
	stderr  *bytes.Buffer
	bufs    [2]*image.Gray
	flip    int
	decoded int
	done    bool

	closeOnce sync.Once
	waitErr   error
}

// Open probes path and starts an ffmpeg subprocess decoding its first video
// stream to raw grayscale frames. Failures to probe or start are wrapped in
// ErrUnopenable. The subprocess is bound to ctx.
func Open(ctx context.Context, bin Binaries, path string) (Source, error) {
	probe, err := ffprobe.Inspect(ctx, bin.FFprobe, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnopenable, err)
	}
	stream, err := probe.VideoStream()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnopenable, err)
	}
	if stream.Width <= 0 || stream.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrUnopenable, stream.Width, stream.Height)
	}

	binary := strings.TrimSpace(bin.FFmpeg)
	if binary == "" {
		binary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, binary,
		"-v", "error", "-nostdin",
		"-i", path,
		"-map", "0:v:0",
		"-f", "rawvideo", "-pix_fmt", "gray",
		"-",
	)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: ffmpeg stdout: %w", ErrUnopenable, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start ffmpeg: %w", ErrUnopenable, err)
	}

	src := &ffmpegSource{
		info: Info{
			Width:       stream.Width,
			Height:      stream.Height,
			TotalFrames: stream.FrameCount(probe.DurationSeconds()),
			FPS:         stream.FrameRate(),
			Duration:    probe.DurationSeconds(),
		},
		cmd:    cmd,
		stdout: stdout,
		stderr: stderr,
	}
	rect := image.Rect(0, 0, stream.Width, stream.Height)
	src.bufs[0] = image.NewGray(rect)
	src.bufs[1] = image.NewGray(rect)
	return src, nil
}

func (s *ffmpegSource) Info() Info { return s.info }

func (s *ffmpegSource) Next() (*image.Gray, error) {
	if s.done {
		return nil, io.EOF
	}
	frame := s.bufs[s.flip]
	_, err := io.ReadFull(s.stdout, frame.Pix)
	switch {
	case err == nil:
		s.flip ^= 1
		s.decoded++
		return frame, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		// A truncated trailing frame is dropped.
		s.done = true
		if waitErr := s.wait(); waitErr != nil {
			return nil, fmt.Errorf("ffmpeg decode after %d frames: %w: %s", s.decoded, waitErr, strings.TrimSpace(s.stderr.String()))
		}
		return nil, io.EOF
	default:
		s.done = true
		return nil, fmt.Errorf("read frame %d: %w", s.decoded, err)
	}
}

func (s *ffmpegSource) wait() error {
	s.closeOnce.Do(func() {
		s.waitErr = s.cmd.Wait()
	})
	return s.waitErr
}

func (s *ffmpegSource) Close() error {
	if !s.done {
		s.done = true
		_ = s.stdout.Close()
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		_ = s.wait()
		return nil
	}
	_ = s.wait()
	return nil
}
