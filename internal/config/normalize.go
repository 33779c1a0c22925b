package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeServer(); err != nil {
		return err
	}
	c.normalizeDetection()
	c.normalizeFFmpeg()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	if err := c.normalizePlots(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeServer() error {
	if value, ok := os.LookupEnv("CUTMARK_BIND"); ok && strings.TrimSpace(value) != "" {
		c.Server.Bind = value
	}
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}

	origins := make([]string, 0, len(c.Server.AllowedOrigins))
	seen := make(map[string]struct{}, len(c.Server.AllowedOrigins))
	for _, origin := range c.Server.AllowedOrigins {
		normalized := strings.TrimRight(strings.TrimSpace(origin), "/")
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		origins = append(origins, normalized)
	}
	c.Server.AllowedOrigins = origins

	if strings.TrimSpace(c.Server.TempDir) == "" {
		c.Server.TempDir = os.TempDir()
	}
	var err error
	if c.Server.TempDir, err = expandPath(c.Server.TempDir); err != nil {
		return fmt.Errorf("server.temp_dir: %w", err)
	}
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = defaultMaxUploadMB
	}
	return nil
}

func (c *Config) normalizeDetection() {
	if c.Detection.ProgressSteps <= 0 {
		c.Detection.ProgressSteps = defaultProgressSteps
	}
	if c.Detection.YieldMillis < 0 {
		c.Detection.YieldMillis = 0
	}
}

func (c *Config) normalizeFFmpeg() {
	c.FFmpeg.FFmpegBinary = strings.TrimSpace(c.FFmpeg.FFmpegBinary)
	if c.FFmpeg.FFmpegBinary == "" {
		c.FFmpeg.FFmpegBinary = defaultFFmpegBinary
	}
	c.FFmpeg.FFprobeBinary = strings.TrimSpace(c.FFmpeg.FFprobeBinary)
	if c.FFmpeg.FFprobeBinary == "" {
		c.FFmpeg.FFprobeBinary = defaultFFprobeBinary
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	var err error
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizePlots() error {
	if strings.TrimSpace(c.Plots.ResultsDir) == "" {
		c.Plots.ResultsDir = defaultResultsDir
	}
	var err error
	if c.Plots.ResultsDir, err = expandPath(c.Plots.ResultsDir); err != nil {
		return fmt.Errorf("plots.results_dir: %w", err)
	}
	c.Plots.AssetsHost = strings.TrimSpace(c.Plots.AssetsHost)
	if c.Plots.AssetsHost != "" && !strings.HasSuffix(c.Plots.AssetsHost, "/") {
		c.Plots.AssetsHost += "/"
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := os.LookupEnv("CUTMARK_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		var err error
		if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
	}
	return nil
}
