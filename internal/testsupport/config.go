package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cutmark/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Progress yielding is disabled so scans finish without sleeping.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Server.TempDir = filepath.Join(base, "tmp")
	cfgVal.History.Path = filepath.Join(base, "data", "history.db")
	cfgVal.Plots.ResultsDir = filepath.Join(base, "results")
	cfgVal.Logging.Dir = ""
	cfgVal.Detection.YieldMillis = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure test directories: %v", err)
	}
	return builder.cfg
}

// WithoutHistory disables the history database.
func WithoutHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithDetection overrides the detection defaults.
func WithDetection(threshold, minInterval float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Detection.Threshold = threshold
		b.cfg.Detection.MinInterval = minInterval
	}
}

// WithStubbedBinaries writes stub executables that exit 0 and points the
// FFmpeg section at them.
func WithStubbedBinaries() ConfigOption {
	return func(b *configBuilder) {
		binDir := b.binDir()
		b.cfg.FFmpeg.FFmpegBinary = writeScript(b.t, binDir, "ffmpeg", "#!/bin/sh\nexit 0\n")
		b.cfg.FFmpeg.FFprobeBinary = writeScript(b.t, binDir, "ffprobe", "#!/bin/sh\necho '{\"streams\":[],\"format\":{}}'\n")
	}
}

// FakeVideo describes the stream produced by WithFakeDecoder. Each entry in
// Levels becomes one uniform grayscale frame.
type FakeVideo struct {
	Width  int
	Height int
	FPS    float64
	Levels []byte
	// NBFrames overrides the frame count ffprobe reports. Zero reports
	// len(Levels).
	NBFrames int
}

// WithFakeDecoder installs ffprobe and ffmpeg stubs that describe and emit
// the given video regardless of the input path.
func WithFakeDecoder(video FakeVideo) ConfigOption {
	return func(b *configBuilder) {
		if video.Width <= 0 {
			video.Width = 4
		}
		if video.Height <= 0 {
			video.Height = 4
		}
		if video.FPS <= 0 {
			video.FPS = 10
		}
		reported := video.NBFrames
		if reported == 0 {
			reported = len(video.Levels)
		}

		binDir := b.binDir()
		raw := filepath.Join(binDir, "frames.raw")
		if err := os.WriteFile(raw, UniformFrames(video.Width, video.Height, video.Levels...), 0o644); err != nil {
			b.t.Fatalf("write raw frames: %v", err)
		}

		probe := fmt.Sprintf(`{"streams":[{"codec_type":"video","width":%d,"height":%d,"r_frame_rate":"%g/1","avg_frame_rate":"%g/1","nb_frames":"%d"}],"format":{"duration":"%g"}}`,
			video.Width, video.Height, video.FPS, video.FPS, reported, float64(len(video.Levels))/video.FPS)
		b.cfg.FFmpeg.FFprobeBinary = writeScript(b.t, binDir, "ffprobe", "#!/bin/sh\ncat <<'JSON'\n"+probe+"\nJSON\n")
		b.cfg.FFmpeg.FFmpegBinary = writeScript(b.t, binDir, "ffmpeg", "#!/bin/sh\ncat '"+raw+"'\n")
	}
}

// WithBrokenDecoder installs an ffprobe stub that always fails.
func WithBrokenDecoder() ConfigOption {
	return func(b *configBuilder) {
		binDir := b.binDir()
		b.cfg.FFmpeg.FFprobeBinary = writeScript(b.t, binDir, "ffprobe", "#!/bin/sh\necho 'Invalid data found when processing input' >&2\nexit 1\n")
		b.cfg.FFmpeg.FFmpegBinary = writeScript(b.t, binDir, "ffmpeg", "#!/bin/sh\nexit 1\n")
	}
}

func (b *configBuilder) binDir() string {
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	return binDir
}

func writeScript(t testing.TB, dir, name, body string) string {
	t.Helper()
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte(body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Server.TempDir)
}

// WriteConfigFile marshals cfg to cutmark.toml under the config's base
// directory and returns the path.
func WriteConfigFile(t testing.TB, cfg *config.Config) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal test config: %v", err)
	}
	path := filepath.Join(BaseDir(cfg), "cutmark.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}
