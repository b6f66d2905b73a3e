package config

import (
	"fmt"
	"log"
	"strings"
)

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"origins"`
	AllowCredentials bool     `koanf:"credentials"`
	MaxAge           int      `koanf:"maxage"`
}

// DefaultAllowedOrigins are the known front-end origins: local dev server and the hosted dashboard.
var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"https://kiranapulse.netlify.app",
}

// String returns a string representation of the CORS configuration.
func (c *CORSConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- CORS ---\n")
	b.WriteString(fmt.Sprintf("  origins: %s\n", strings.Join(c.AllowedOrigins, ", ")))
	b.WriteString(fmt.Sprintf("  credentials: %t\n", c.AllowCredentials))
	b.WriteString(fmt.Sprintf("  maxage: %d\n", c.MaxAge))
	return b.String()
}

func (c *CORSConfig) Validate() error {
	if len(c.AllowedOrigins) == 0 {
		log.Println("Using default value for cors.origins")
		c.AllowedOrigins = DefaultAllowedOrigins
	}
	for _, origin := range c.AllowedOrigins {
		if origin == "*" && c.AllowCredentials {
			return fmt.Errorf("cors: wildcard origin cannot be combined with credentials")
		}
	}
	if c.MaxAge < 0 {
		return fmt.Errorf("cors: maxage must not be negative")
	}
	return nil
}
