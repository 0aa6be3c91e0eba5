package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/mozilla-ai/gqltz/internal/config"
	"github.com/mozilla-ai/gqltz/internal/datetime"
	"github.com/mozilla-ai/gqltz/internal/flags"
	"github.com/mozilla-ai/gqltz/internal/perms"
)

type BaseCmd struct {
	logger hclog.Logger
}

// SetLogger updates the command's logger
func (c *BaseCmd) SetLogger(logger hclog.Logger) {
	c.logger = logger
}

// Logger returns the current logger for the command
func (c *BaseCmd) Logger() hclog.Logger {
	if c.logger != nil {
		return c.logger
	}

	// Get log level from flags first, then environment, then default
	logLevel := flags.LogLevel
	if logLevel == "" {
		logLevel = strings.ToLower(os.Getenv(flags.EnvVarLogLevel))
		if logLevel == "" {
			logLevel = flags.DefaultLogLevel
		}
	}

	// Get log path from flags first, then environment
	logPath := flags.LogPath
	if logPath == "" {
		logPath = strings.TrimSpace(os.Getenv(flags.EnvVarLogPath))
	}

	var output io.Writer = io.Discard
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, perms.RegularFile)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to open log file (%s): %v, logging disabled\n", logPath, err)
		} else {
			output = f
		}
	}

	c.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "gqltz-default",
		Level:  hclog.LevelFromString(logLevel),
		Output: output,
	})

	return c.logger
}

// LoadConfig loads the configuration file named by the config-file flag.
func (c *BaseCmd) LoadConfig(loader config.Loader) (*config.Config, error) {
	modifier, err := loader.Load(flags.ConfigFile)
	if err != nil {
		return nil, err
	}

	cfg, ok := modifier.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("configuration loader returned unexpected type %T", modifier)
	}

	return cfg, nil
}

// LoadOptionalConfig loads the configuration file like LoadConfig,
// but returns an empty configuration when the file does not exist.
func (c *BaseCmd) LoadOptionalConfig(loader config.Loader) (*config.Config, error) {
	if _, err := os.Stat(flags.ConfigFile); errors.Is(err, os.ErrNotExist) {
		c.Logger().Debug("No configuration file found, using defaults", "path", flags.ConfigFile)
		return &config.Config{}, nil
	}

	return c.LoadConfig(loader)
}

// ResolveLocation returns the client wall-clock location.
// The timezone flag takes precedence over the configured timezone, the host's local time is used when neither is set.
func (c *BaseCmd) ResolveLocation(cfg *config.Config) (*time.Location, error) {
	tz := strings.TrimSpace(flags.Timezone)
	if tz == "" && cfg != nil && cfg.Daemon != nil && cfg.Daemon.Timezone != nil {
		tz = *cfg.Daemon.Timezone
	}

	if !datetime.IsValidLocation(tz) {
		return nil, fmt.Errorf("unknown timezone '%s'", tz)
	}

	return datetime.ResolveLocation(tz, time.Local), nil
}
