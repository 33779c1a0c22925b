package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cutmark/internal/annotation"
	"cutmark/internal/api"
	"cutmark/internal/config"
	"cutmark/internal/cuts"
	"cutmark/internal/logging"
	"cutmark/internal/media/ffprobe"
	"cutmark/internal/media/frames"
	"cutmark/internal/progress"
)

type detectFlags struct {
	threshold   float64
	minInterval float64
	jsonOutput  bool
	exportPath  string
	remote      string
}

// detectOutcome is what the local and remote scans have in common.
type detectOutcome struct {
	TotalFrames int
	Duration    float64
	Bookmarks   []progress.Bookmark
	Elapsed     time.Duration
}

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var flags detectFlags

	cmd := &cobra.Command{
		Use:   "detect <video>",
		Short: "Detect camera cuts in a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.configAndLogger()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if info, err := os.Stat(path); err != nil {
				return fmt.Errorf("inspect video: %w", err)
			} else if info.IsDir() {
				return fmt.Errorf("inspect video: %s is a directory", path)
			}

			opts := cuts.OptionsFromConfig(cfg)
			if cmd.Flags().Changed("threshold") {
				opts.Threshold = flags.threshold
			}
			if cmd.Flags().Changed("min-interval") {
				opts.MinInterval = flags.minInterval
			}
			if opts.Threshold < 0 || opts.MinInterval < 0 {
				return errors.New("threshold and min-interval must be non-negative")
			}

			sink := newDetectSink(cmd, flags.jsonOutput)
			var outcome detectOutcome
			if strings.TrimSpace(flags.remote) != "" {
				outcome, err = detectRemote(cmd.Context(), cfg, flags.remote, path, opts, sink)
			} else {
				outcome, err = detectLocal(cmd.Context(), cfg, logger, path, opts, sink)
			}
			sink.finish()
			if err != nil {
				return err
			}

			if !flags.jsonOutput {
				printDetectResult(cmd.OutOrStdout(), path, outcome)
			}
			if strings.TrimSpace(flags.exportPath) != "" {
				written, kept, err := exportAnnotations(flags.exportPath, outcome)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote annotations to %s\n", written)
				if dropped := len(outcome.Bookmarks) - kept; dropped > 0 {
					logger.Warn("near-duplicate cuts left out of export",
						logging.String("path", written),
						logging.Int("detected", len(outcome.Bookmarks)),
						logging.Int("dropped", dropped),
					)
					fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d cuts were within %gs of a previous cut and were not exported\n",
						dropped, len(outcome.Bookmarks), annotation.DuplicateWindow)
				}
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&flags.threshold, "threshold", cuts.DefaultThreshold, "Mean grayscale difference (0-255) that counts as a cut")
	cmd.Flags().Float64Var(&flags.minInterval, "min-interval", cuts.DefaultMinInterval, "Minimum seconds between two cuts")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "Echo the NDJSON event stream instead of a table")
	cmd.Flags().StringVar(&flags.exportPath, "export", "", "Write an annotation document to this file or directory")
	cmd.Flags().StringVar(&flags.remote, "remote", "", "Scan on a running cutmark server at this base URL")
	return cmd
}

func detectLocal(ctx context.Context, cfg *config.Config, logger *slog.Logger, path string, opts cuts.Options, sink *detectSink) (detectOutcome, error) {
	bin := frames.Binaries{FFmpeg: cfg.FFmpeg.FFmpegBinary, FFprobe: cfg.FFmpeg.FFprobeBinary}
	scanner := cuts.NewScanner(opts, logger)
	summary := scanner.Stream(ctx, func(ctx context.Context) (frames.Source, error) {
		return frames.Open(ctx, bin, path)
	}, sink)
	if summary.Failed() {
		return detectOutcome{}, fmt.Errorf("detect: %w", summary.Err)
	}
	return detectOutcome{
		TotalFrames: summary.TotalFrames,
		Duration:    summary.Duration,
		Bookmarks:   summary.Bookmarks,
		Elapsed:     summary.Elapsed,
	}, nil
}

func detectRemote(ctx context.Context, cfg *config.Config, baseURL, path string, opts cuts.Options, sink *detectSink) (detectOutcome, error) {
	client, err := api.NewClient(baseURL)
	if err != nil {
		return detectOutcome{}, err
	}
	started := time.Now()
	var outcome detectOutcome
	var failure string
	err = client.DetectCuts(ctx, api.DetectRequest{
		Path:        path,
		Threshold:   opts.Threshold,
		MinInterval: opts.MinInterval,
	}, func(event progress.Event) error {
		switch e := event.(type) {
		case progress.Start:
			outcome.TotalFrames = e.TotalFrames
		case progress.Result:
			outcome.Bookmarks = e.Bookmarks
		case progress.Failure:
			failure = e.Message
		}
		return sink.Emit(event)
	})
	if err != nil {
		return detectOutcome{}, fmt.Errorf("detect: %w", err)
	}
	if failure != "" {
		return detectOutcome{}, fmt.Errorf("detect: server reported: %s", failure)
	}
	outcome.Elapsed = time.Since(started)
	outcome.Duration = probeDuration(ctx, cfg, path, outcome.Bookmarks)
	return outcome, nil
}

// probeDuration asks ffprobe for the container duration, falling back to the
// last bookmark when the local binary is unavailable.
func probeDuration(ctx context.Context, cfg *config.Config, path string, bookmarks []progress.Bookmark) float64 {
	if result, err := ffprobe.Inspect(ctx, cfg.FFmpeg.FFprobeBinary, path); err == nil {
		if d := result.DurationSeconds(); d > 0 {
			return d
		}
	}
	if n := len(bookmarks); n > 0 {
		return bookmarks[n-1].Time
	}
	return 0
}

func printDetectResult(out io.Writer, path string, outcome detectOutcome) {
	if len(outcome.Bookmarks) > 0 {
		rows := make([][]string, 0, len(outcome.Bookmarks))
		for i, b := range outcome.Bookmarks {
			rows = append(rows, []string{fmt.Sprintf("%d", i+1), fmt.Sprintf("%.3f", b.Time), formatTimecode(b.Time)})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"#", "Seconds", "Timecode"},
			rows,
			[]columnAlignment{alignRight, alignRight, alignRight},
		))
	}
	fmt.Fprintln(out, numbers.Sprintf("%s: %d cuts in %d frames (%s, scanned in %s)",
		filepath.Base(path),
		len(outcome.Bookmarks),
		outcome.TotalFrames,
		formatTimecode(outcome.Duration),
		outcome.Elapsed.Round(time.Millisecond),
	))
}

// exportAnnotations writes the annotation document and returns its path and
// how many bookmarks survived the near-duplicate guard.
func exportAnnotations(target string, outcome detectOutcome) (string, int, error) {
	path, err := config.ExpandPath(target)
	if err != nil {
		return "", 0, err
	}
	now := time.Now()
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, annotation.ExportFileName(now))
	}

	timeline := annotation.NewTimeline()
	kept := timeline.AddBookmarks(outcome.Bookmarks)
	timeline.RegenerateChunks(outcome.Duration)
	if err := annotation.WriteFile(path, timeline.Export(now)); err != nil {
		return "", 0, fmt.Errorf("export annotations: %w", err)
	}
	return path, kept, nil
}

// detectSink echoes events as NDJSON or draws a progress line on a terminal.
type detectSink struct {
	json     *progress.Writer
	progress io.Writer
	drawn    bool
}

func newDetectSink(cmd *cobra.Command, jsonOutput bool) *detectSink {
	sink := &detectSink{}
	if jsonOutput {
		sink.json = progress.NewWriter(cmd.OutOrStdout())
		return sink
	}
	if errOut := cmd.ErrOrStderr(); shouldColorize(errOut) {
		sink.progress = errOut
	}
	return sink
}

func (s *detectSink) Emit(event progress.Event) error {
	if s.json != nil {
		return s.json.Emit(event)
	}
	if s.progress == nil {
		return nil
	}
	switch e := event.(type) {
	case progress.Start:
		fmt.Fprint(s.progress, numbers.Sprintf("\rScanning %d frames...", e.TotalFrames))
		s.drawn = true
	case progress.Progress:
		fmt.Fprintf(s.progress, "\rScanning... %3d%%    ", e.Value)
		s.drawn = true
	}
	return nil
}

func (s *detectSink) finish() {
	if s.drawn && s.progress != nil {
		fmt.Fprintln(s.progress)
		s.drawn = false
	}
}
