package cuts

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"cutmark/internal/logging"
	"cutmark/internal/media/frames"
	"cutmark/internal/progress"
)

// Scanner runs cut detection with fixed options.
type Scanner struct {
	opts   Options
	logger *slog.Logger
	newID  func() string
}

// NewScanner builds a scanner. A nil logger discards output.
func NewScanner(opts Options, logger *slog.Logger) *Scanner {
	return &Scanner{
		opts:   opts.Normalize(),
		logger: logging.NewComponentLogger(logger, "cuts"),
		newID:  uuid.NewString,
	}
}

// Options returns the normalized scan options.
func (s *Scanner) Options() Options { return s.opts }

// WithOptions returns a scanner sharing the logger but using opts.
func (s *Scanner) WithOptions(opts Options) *Scanner {
	clone := *s
	clone.opts = opts.Normalize()
	return &clone
}

// Detect scans src once and returns the detected cuts with the number of
// decoded frames. report, when non-nil, receives percent completion at the
// configured cadence. Detect does not close src.
func (s *Scanner) Detect(ctx context.Context, src frames.Source, report func(percent int)) ([]progress.Bookmark, int, error) {
	info := src.Info()
	fps := s.effectiveFPS(info.FPS)
	total := info.TotalFrames
	step := s.opts.ReportStep(total)

	bookmarks := []progress.Bookmark{}
	var prev *image.Gray
	lastCut := -s.opts.MinInterval
	idx := 0

	for {
		if err := ctx.Err(); err != nil {
			return bookmarks, idx, err
		}
		frame, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return bookmarks, idx, err
		}

		current := float64(idx) / fps
		if prev != nil {
			diff, err := MeanAbsDiff(prev, frame)
			if err != nil {
				return bookmarks, idx, fmt.Errorf("frame %d: %w", idx, err)
			}
			if diff > s.opts.Threshold && current-lastCut >= s.opts.MinInterval {
				bookmarks = append(bookmarks, progress.Bookmark{ID: s.newID(), Time: roundMillis(current)})
				lastCut = current
				s.logger.Debug("cut detected",
					logging.Int("frame", idx),
					logging.Float64("time", roundMillis(current)),
					logging.Float64("diff", diff),
				)
			}
		}
		prev = frame
		idx++

		if total > 0 && idx%step == 0 && report != nil {
			report(percentOf(idx, total))
			if err := s.yield(ctx); err != nil {
				return bookmarks, idx, err
			}
		}
	}
	return bookmarks, idx, nil
}

func (s *Scanner) yield(ctx context.Context) error {
	if s.opts.YieldDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.opts.YieldDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// percentOf returns int(done/total*100) clamped to 100; container frame
// counts can undercount.
func percentOf(done, total int) int {
	if total <= 0 {
		return 0
	}
	return min(100, int(float64(done)/float64(total)*100))
}
