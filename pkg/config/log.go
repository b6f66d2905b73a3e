package config

import (
	"fmt"
	"strings"
)

type LogConfig struct {
	Level string `koanf:"level"`
}

const defaultLogLevel = "info"

func (c *LogConfig) String() string {
	return fmt.Sprintf("\n--- Logging ---\n  level: %s\n", c.Level)
}

// Validate normalizes the level to lower case and defaults it to info.
func (c *LogConfig) Validate() error {
	level := strings.ToLower(strings.TrimSpace(c.Level))
	switch level {
	case "":
		c.Level = defaultLogLevel
	case "debug", "info", "warn", "error":
		c.Level = level
	default:
		return fmt.Errorf("unknown log level: %s", c.Level)
	}
	return nil
}
