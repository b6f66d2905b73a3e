package config

import (
	"fmt"
	"net"
)

// PProfConfig controls the profiling listener. It is off unless enabled explicitly.
type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

const defaultPProfAddr = "localhost:6060"

func (c *PProfConfig) String() string {
	if !c.Enabled {
		return "\n--- Profiling ---\n  disabled\n"
	}
	return fmt.Sprintf("\n--- Profiling ---\n  listening on: %s\n", c.Addr)
}

// Validate falls back to a loopback address when profiling is enabled without one.
func (c *PProfConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Addr == "" {
		c.Addr = defaultPProfAddr
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("invalid pprof address %q: %w", c.Addr, err)
	}
	return nil
}
