package cuts

import (
	"context"
	"errors"
	"math"
	"time"

	"cutmark/internal/logging"
	"cutmark/internal/media/frames"
	"cutmark/internal/metrics"
	"cutmark/internal/progress"
)

// MessageUnopenable is the error event text for sources that cannot be opened.
const MessageUnopenable = "Could not open video file"

// Opener opens the frame source for one scan.
type Opener func(ctx context.Context) (frames.Source, error)

// Finisher receives the completed summary before the terminal event is
// emitted, so anything it persists is visible once the client sees the end
// of the stream.
type Finisher func(Summary)

// Summary describes a finished stream.
type Summary struct {
	TotalFrames int
	FPS         float64
	Duration    float64
	Decoded     int
	Bookmarks   []progress.Bookmark
	Err         error
	Elapsed     time.Duration
}

// Failed reports whether the stream ended with an error event.
func (s Summary) Failed() bool { return s.Err != nil }

// Stream opens a source and relays the scan as progress events: an optional
// start, progress at the configured cadence, then exactly one result or
// error. Emit failures (for example a client that went away) are logged once
// and do not stop the scan.
func (s *Scanner) Stream(ctx context.Context, open Opener, sink progress.Sink, finishers ...Finisher) Summary {
	started := time.Now()
	logger := logging.WithContext(ctx, s.logger)
	sampler := logging.NewProgressSampler(25)

	var summary Summary
	sinkBroken := false
	emit := func(event progress.Event) {
		if err := sink.Emit(event); err != nil && !sinkBroken {
			sinkBroken = true
			logging.WarnWithContext(logger, "progress delivery failed", "stream_write_failed",
				logging.String("event", string(event.Kind())),
				logging.Error(err),
				logging.String(logging.FieldImpact, "client will not receive the remaining events"),
			)
		}
	}
	finish := func(terminal progress.Event) Summary {
		summary.Elapsed = time.Since(started)
		metrics.ObserveScan(summary.Decoded, summary.Elapsed, summary.Err == nil)
		for _, fn := range finishers {
			fn(summary)
		}
		emit(terminal)
		return summary
	}

	src, err := open(ctx)
	if err != nil {
		summary.Err = err
		message := err.Error()
		if errors.Is(err, frames.ErrUnopenable) {
			message = MessageUnopenable
		}
		logger.Warn("open video failed", logging.Error(err))
		return finish(progress.Failure{Message: message})
	}
	defer src.Close()

	info := src.Info()
	summary.TotalFrames = info.TotalFrames
	summary.FPS = s.effectiveFPS(info.FPS)
	summary.Duration = info.Duration
	emit(progress.Start{TotalFrames: info.TotalFrames})
	logger.Info("scan started",
		logging.Int("total_frames", info.TotalFrames),
		logging.Float64("fps", summary.FPS),
		logging.Float64("threshold", s.opts.Threshold),
		logging.Float64("min_interval", s.opts.MinInterval),
	)

	if info.TotalFrames <= 0 {
		summary.Bookmarks = []progress.Bookmark{}
		return finish(progress.Result{Bookmarks: summary.Bookmarks})
	}

	bookmarks, decoded, err := s.Detect(ctx, src, func(percent int) {
		emit(progress.Progress{Value: percent})
		if sampler.ShouldLog(percent) {
			logger.Debug("scan progress", logging.Int("percent", percent))
		}
	})
	summary.Decoded = decoded
	if err != nil {
		summary.Err = err
		logger.Warn("scan failed", logging.Int("decoded", decoded), logging.Error(err))
		return finish(progress.Failure{Message: err.Error()})
	}

	summary.Bookmarks = bookmarks
	done := finish(progress.Result{Bookmarks: bookmarks})
	logger.Info("scan finished",
		logging.Int("decoded", decoded),
		logging.Int("total_cuts", len(bookmarks)),
		logging.Duration("elapsed", done.Elapsed),
	)
	return done
}

func (s *Scanner) effectiveFPS(fps float64) float64 {
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return s.opts.FallbackFPS
	}
	return fps
}
