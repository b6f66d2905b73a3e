package config

import (
	"fmt"
	"time"
)

// ShutdownConfig bounds how long servers, telemetry exporters and the NATS connection
// get to drain once a termination signal arrives.
type ShutdownConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

const maxShutdownTimeout = time.Minute

func (c *ShutdownConfig) String() string {
	return fmt.Sprintf("\n--- Graceful shutdown ---\n  drain timeout: %s\n", c.Timeout)
}

func (c *ShutdownConfig) Validate() error {
	switch {
	case c.Timeout <= 0:
		return fmt.Errorf("shutdown timeout is not configured")
	case c.Timeout > maxShutdownTimeout:
		return fmt.Errorf("shutdown timeout %s exceeds %s", c.Timeout, maxShutdownTimeout)
	}
	return nil
}
