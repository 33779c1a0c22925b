package config

const (
	defaultConfigPath    = "~/.config/cutmark/config.toml"
	defaultBind          = "127.0.0.1:8000"
	defaultMaxUploadMB   = 4096
	defaultThreshold     = 50.0
	defaultMinInterval   = 0.5
	defaultFallbackFPS   = 30.0
	defaultProgressSteps = 20
	defaultYieldMillis   = 10
	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultHistoryPath   = "~/.local/share/cutmark/history.db"
	defaultResultsDir    = "results"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// DefaultAllowedOrigins lists the browser origins permitted to call the API.
func DefaultAllowedOrigins() []string {
	return []string{
		"http://localhost:5173",
		"http://localhost:4173",
		"https://tajmahal.mond.jp",
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Bind:           defaultBind,
			AllowedOrigins: DefaultAllowedOrigins(),
			MaxUploadMB:    defaultMaxUploadMB,
		},
		Detection: Detection{
			Threshold:     defaultThreshold,
			MinInterval:   defaultMinInterval,
			FallbackFPS:   defaultFallbackFPS,
			ProgressSteps: defaultProgressSteps,
			YieldMillis:   defaultYieldMillis,
		},
		FFmpeg: FFmpeg{
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Plots: Plots{
			ResultsDir: defaultResultsDir,
		},
		Metrics: Metrics{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
