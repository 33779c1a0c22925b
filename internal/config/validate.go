package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDetection(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	if _, _, err := net.SplitHostPort(c.Server.Bind); err != nil {
		return fmt.Errorf("server.bind %q must be host:port: %w", c.Server.Bind, err)
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return errors.New("server.allowed_origins must include at least one origin")
	}
	for _, origin := range c.Server.AllowedOrigins {
		parsed, err := url.Parse(origin)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("server.allowed_origins entry %q must be scheme://host[:port]", origin)
		}
	}
	return nil
}

func (c *Config) validateDetection() error {
	if err := ensureFinite(map[string]float64{
		"detection.threshold":    c.Detection.Threshold,
		"detection.min_interval": c.Detection.MinInterval,
		"detection.fallback_fps": c.Detection.FallbackFPS,
	}); err != nil {
		return err
	}
	if c.Detection.Threshold < 0 {
		return errors.New("detection.threshold must be >= 0")
	}
	if c.Detection.MinInterval < 0 {
		return errors.New("detection.min_interval must be >= 0")
	}
	if c.Detection.FallbackFPS <= 0 {
		return errors.New("detection.fallback_fps must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}

func ensureFinite(values map[string]float64) error {
	for key, value := range values {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("%s must be a finite number", key)
		}
	}
	return nil
}
