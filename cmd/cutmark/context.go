package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"cutmark/internal/config"
	"cutmark/internal/logging"
)

const skipConfigAnnotation = "skipConfigLoad"

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// commandContext loads the configuration and logger at most once per
// invocation, on first use by a subcommand.
type commandContext struct {
	flags *globalFlags

	once   sync.Once
	cfg    *config.Config
	logger *slog.Logger
	err    error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) configPath() string {
	return strings.TrimSpace(c.flags.configPath)
}

func (c *commandContext) load() {
	cfg, _, _, err := config.Load(c.configPath())
	if err != nil {
		c.err = fmt.Errorf("load config: %w", err)
		return
	}
	if level := strings.TrimSpace(c.flags.logLevel); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
	if format := strings.TrimSpace(c.flags.logFormat); format != "" {
		cfg.Logging.Format = strings.ToLower(format)
	}
	if err := cfg.Validate(); err != nil {
		c.err = err
		return
	}
	if err := cfg.EnsureDirectories(); err != nil {
		c.err = err
		return
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		c.err = fmt.Errorf("init logger: %w", err)
		return
	}
	c.cfg, c.logger = cfg, logger
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.once.Do(c.load)
	return c.cfg, c.err
}

func (c *commandContext) configAndLogger() (*config.Config, *slog.Logger, error) {
	c.once.Do(c.load)
	return c.cfg, c.logger, c.err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for ; cmd != nil; cmd = cmd.Parent() {
		if cmd.Annotations[skipConfigAnnotation] == "true" {
			return true
		}
	}
	return false
}
