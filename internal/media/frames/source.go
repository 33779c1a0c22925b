package frames

import (
	"errors"
	"image"
	"image/draw"
	"io"
)

// ErrUnopenable marks sources that could not be opened for decoding.
var ErrUnopenable = errors.New("could not open video file")

// Info describes a frame source.
type Info struct {
	Width  int
	Height int
	// TotalFrames is the frame count the container reports (or an estimate).
	TotalFrames int
	// FPS is zero when the container does not report a usable rate.
	FPS      float64
	Duration float64
}

// Source is an ordered, finite, non-restartable frame sequence. Next returns
// io.EOF after the last frame. A returned image stays valid until the second
// following call to Next.
type Source interface {
	Info() Info
	Next() (*image.Gray, error)
	Close() error
}

// Gray converts img to an 8-bit grayscale raster using the ITU-R 601 luma
// weights. Images that are already *image.Gray are returned as is.
func Gray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

// Uniform returns a w x h frame filled with value.
func Uniform(w, h int, value uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = value
	}
	return img
}

// SliceSource serves frames from memory.
type SliceSource struct {
	info   Info
	frames []*image.Gray
	next   int
	closed bool
}

// NewSliceSource builds a source over imgs at the given rate. The reported
// frame count equals len(imgs).
func NewSliceSource(fps float64, imgs ...image.Image) *SliceSource {
	src := &SliceSource{frames: make([]*image.Gray, 0, len(imgs))}
	for _, img := range imgs {
		src.frames = append(src.frames, Gray(img))
	}
	src.info = Info{TotalFrames: len(imgs), FPS: fps}
	if len(src.frames) > 0 {
		b := src.frames[0].Bounds()
		src.info.Width, src.info.Height = b.Dx(), b.Dy()
	}
	if fps > 0 {
		src.info.Duration = float64(len(imgs)) / fps
	}
	return src
}

// WithTotalFrames overrides the reported frame count.
func (s *SliceSource) WithTotalFrames(n int) *SliceSource {
	s.info.TotalFrames = n
	return s
}

func (s *SliceSource) Info() Info { return s.info }

func (s *SliceSource) Next() (*image.Gray, error) {
	if s.closed || s.next >= len(s.frames) {
		return nil, io.EOF
	}
	frame := s.frames[s.next]
	s.next++
	return frame, nil
}

func (s *SliceSource) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *SliceSource) Closed() bool { return s.closed }
