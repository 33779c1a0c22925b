package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Server contains HTTP listener and upload handling configuration.
type Server struct {
	Bind           string   `toml:"bind"`
	AllowedOrigins []string `toml:"allowed_origins"`
	TempDir        string   `toml:"temp_dir"`
	MaxUploadMB    int      `toml:"max_upload_mb"`
}

// Detection contains the cut detection defaults applied when a request
// does not override them.
type Detection struct {
	Threshold     float64 `toml:"threshold"`
	MinInterval   float64 `toml:"min_interval"`
	FallbackFPS   float64 `toml:"fallback_fps"`
	ProgressSteps int     `toml:"progress_steps"`
	YieldMillis   int     `toml:"yield_ms"`
}

// FFmpeg names the decoder executables.
type FFmpeg struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// History contains configuration for the analysis history database.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // Default: ~/.local/share/cutmark/history.db
}

// Plots contains configuration for figure rendering.
type Plots struct {
	ResultsDir string `toml:"results_dir"`
	AssetsHost string `toml:"assets_host"`
}

// Metrics toggles the Prometheus endpoint.
type Metrics struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for cutmark.
//
// Configuration sections by subsystem:
//   - Server: API bind address, CORS allow-list, upload handling
//   - Detection: cut detection threshold, debounce and progress cadence
//   - FFmpeg: decoder executables
//   - History: SQLite record of finished analyses
//   - Plots: figure output directory and chart assets host
//   - Metrics: Prometheus endpoint
//   - Logging: log format, level, and optional file directory
type Config struct {
	Server    Server    `toml:"server"`
	Detection Detection `toml:"detection"`
	FFmpeg    FFmpeg    `toml:"ffmpeg"`
	History   History   `toml:"history"`
	Plots     Plots     `toml:"plots"`
	Metrics   Metrics   `toml:"metrics"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads the configuration at path, or the first existing candidate when
// path is empty, and returns the normalized and validated result together with
// the file it came from and whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	source, err := locate(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if source.exists {
		data, err := os.ReadFile(source.path)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config %s: %w", source.path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			var decodeErr *toml.DecodeError
			if errors.As(err, &decodeErr) {
				row, col := decodeErr.Position()
				return nil, "", false, fmt.Errorf("parse config %s:%d:%d: %w", source.path, row, col, err)
			}
			return nil, "", false, fmt.Errorf("parse config %s: %w", source.path, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, source.path, source.exists, nil
}

type configSource struct {
	path   string
	exists bool
}

// locate resolves the config file. An explicit path wins, then CUTMARK_CONFIG,
// then the user config directory and finally ./cutmark.toml. When nothing
// exists the user config path is reported as absent.
func locate(explicit string) (configSource, error) {
	if explicit == "" {
		explicit = strings.TrimSpace(os.Getenv("CUTMARK_CONFIG"))
	}
	if explicit != "" {
		expanded, err := expandPath(explicit)
		if err != nil {
			return configSource{}, err
		}
		exists, err := isFile(expanded)
		if err != nil {
			return configSource{}, err
		}
		return configSource{path: expanded, exists: exists}, nil
	}

	candidates := []string{defaultConfigPath, "cutmark.toml"}
	resolved := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		expanded, err := expandPath(candidate)
		if err != nil {
			return configSource{}, err
		}
		if exists, _ := isFile(expanded); exists {
			return configSource{path: expanded, exists: true}, nil
		}
		resolved = append(resolved, expanded)
	}
	return configSource{path: resolved[0]}, nil
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat config: %w", err)
	default:
		return !info.IsDir(), nil
	}
}

// EnsureDirectories creates the directories the server writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Server.TempDir, c.Plots.ResultsDir}
	if c.History.Enabled {
		dirs = append(dirs, filepath.Dir(c.History.Path))
	}
	if c.Logging.Dir != "" {
		dirs = append(dirs, c.Logging.Dir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// YieldDelay returns the pause taken after each progress emission.
func (c *Config) YieldDelay() time.Duration {
	return time.Duration(c.Detection.YieldMillis) * time.Millisecond
}

// MaxUploadBytes returns the request body limit for uploads.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
