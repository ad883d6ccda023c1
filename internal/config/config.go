package config

import (
	"fmt"
	"strings"

	"github.com/macadam-build/macadam/pkg/engine"
)

// Config is the full runtime configuration surface. Nothing here is
// hard-coded in the core: the name prefix, shell directive, and default
// engine parameters all flow in from this layer.
type Config struct {
	NamePrefix string `mapstructure:"name_prefix"`
	Shell      string `mapstructure:"shell"`
	Engine     string `mapstructure:"engine"`

	Logging    LoggingConfig     `mapstructure:"logging"`
	Submit     SubmitConfig      `mapstructure:"submit"`
	Parameters map[string]string `mapstructure:"parameters"`
	Variables  map[string]string `mapstructure:"variables"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SubmitConfig paces scheduler submissions. A rate of 0 disables pacing.
type SubmitConfig struct {
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.NamePrefix) == "" {
		return fmt.Errorf("name_prefix must not be empty")
	}
	if !strings.HasPrefix(strings.TrimSpace(c.Shell), "#!") {
		return fmt.Errorf("shell must be a #! directive line, got %q", c.Shell)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported logging level %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported logging format %q", c.Logging.Format)
	}

	for name := range c.Parameters {
		if !engine.Recognized(name) {
			return fmt.Errorf("unrecognized engine parameter %q", name)
		}
	}

	if c.Submit.RatePerSecond < 0 {
		return fmt.Errorf("submit.rate_per_second must be >= 0")
	}
	if c.Submit.Burst < 1 {
		return fmt.Errorf("submit.burst must be >= 1")
	}
	return nil
}
