package cuts

import (
	"time"

	"cutmark/internal/config"
)

const (
	DefaultThreshold     = 50.0
	DefaultMinInterval   = 0.5
	DefaultFallbackFPS   = 30.0
	DefaultProgressSteps = 20
	DefaultYieldDelay    = 10 * time.Millisecond
)

// Options tunes a scan.
type Options struct {
	// Threshold is the mean absolute grayscale difference (0-255) a frame
	// pair must exceed to count as a cut.
	Threshold float64
	// MinInterval is the minimum number of seconds between two cuts.
	MinInterval float64
	// FallbackFPS timestamps frames when the source reports no rate.
	FallbackFPS float64
	// ProgressSteps is the number of progress reports per scan.
	ProgressSteps int
	// YieldDelay is the pause after each progress report.
	YieldDelay time.Duration
}

// DefaultOptions returns the stock detection settings.
func DefaultOptions() Options {
	return Options{
		Threshold:     DefaultThreshold,
		MinInterval:   DefaultMinInterval,
		FallbackFPS:   DefaultFallbackFPS,
		ProgressSteps: DefaultProgressSteps,
		YieldDelay:    DefaultYieldDelay,
	}
}

// OptionsFromConfig maps the [detection] section onto scan options.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return DefaultOptions()
	}
	return Options{
		Threshold:     cfg.Detection.Threshold,
		MinInterval:   cfg.Detection.MinInterval,
		FallbackFPS:   cfg.Detection.FallbackFPS,
		ProgressSteps: cfg.Detection.ProgressSteps,
		YieldDelay:    cfg.YieldDelay(),
	}.Normalize()
}

// Normalize replaces unusable values with defaults. Threshold and
// MinInterval may legitimately be zero and are only reset when negative.
func (o Options) Normalize() Options {
	if o.Threshold < 0 {
		o.Threshold = DefaultThreshold
	}
	if o.MinInterval < 0 {
		o.MinInterval = DefaultMinInterval
	}
	if o.FallbackFPS <= 0 {
		o.FallbackFPS = DefaultFallbackFPS
	}
	if o.ProgressSteps <= 0 {
		o.ProgressSteps = DefaultProgressSteps
	}
	if o.YieldDelay < 0 {
		o.YieldDelay = 0
	}
	return o
}

// ReportStep returns how many frames pass between progress reports.
func (o Options) ReportStep(totalFrames int) int {
	steps := o.ProgressSteps
	if steps <= 0 {
		steps = DefaultProgressSteps
	}
	return max(1, totalFrames/steps)
}
