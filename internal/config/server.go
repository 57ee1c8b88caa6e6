package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost              = "CANDOR_SERVER_HOST"
	EnvServerPort              = "CANDOR_SERVER_PORT"
	EnvServerReadHeaderTimeout = "CANDOR_SERVER_READ_HEADER_TIMEOUT"
	EnvServerReadTimeout       = "CANDOR_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout      = "CANDOR_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout       = "CANDOR_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout   = "CANDOR_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP listener parameters. Durations are Go duration
// strings. ReadTimeout bounds recording uploads and WriteTimeout bounds
// long-polling await requests, so both default well above typical API limits.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	ReadTimeout       string `toml:"read_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadHeaderTimeoutDuration() time.Duration {
	return mustDuration(c.ReadHeaderTimeout)
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	return mustDuration(c.ReadTimeout)
}

func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	return mustDuration(c.WriteTimeout)
}

func (c *ServerConfig) IdleTimeoutDuration() time.Duration {
	return mustDuration(c.IdleTimeout)
}

// ShutdownTimeoutDuration bounds http.Server.Shutdown.
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return mustDuration(c.ShutdownTimeout)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	mergeString(&c.Host, overlay.Host)
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	mergeString(&c.ReadHeaderTimeout, overlay.ReadHeaderTimeout)
	mergeString(&c.ReadTimeout, overlay.ReadTimeout)
	mergeString(&c.WriteTimeout, overlay.WriteTimeout)
	mergeString(&c.IdleTimeout, overlay.IdleTimeout)
	mergeString(&c.ShutdownTimeout, overlay.ShutdownTimeout)
}

func (c *ServerConfig) loadDefaults() {
	defaultString(&c.Host, "0.0.0.0")
	if c.Port == 0 {
		c.Port = 8080
	}
	defaultString(&c.ReadHeaderTimeout, "10s")
	defaultString(&c.ReadTimeout, "5m")
	defaultString(&c.WriteTimeout, "10m")
	defaultString(&c.IdleTimeout, "2m")
	defaultString(&c.ShutdownTimeout, "30s")
}

func (c *ServerConfig) loadEnv() {
	envString(EnvServerHost, &c.Host)
	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	envString(EnvServerReadHeaderTimeout, &c.ReadHeaderTimeout)
	envString(EnvServerReadTimeout, &c.ReadTimeout)
	envString(EnvServerWriteTimeout, &c.WriteTimeout)
	envString(EnvServerIdleTimeout, &c.IdleTimeout)
	envString(EnvServerShutdownTimeout, &c.ShutdownTimeout)
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	durations := []struct {
		name  string
		value string
	}{
		{"read_header_timeout", c.ReadHeaderTimeout},
		{"read_timeout", c.ReadTimeout},
		{"write_timeout", c.WriteTimeout},
		{"idle_timeout", c.IdleTimeout},
		{"shutdown_timeout", c.ShutdownTimeout},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.name, err)
		}
		if v <= 0 {
			return fmt.Errorf("%s must be positive: %s", d.name, d.value)
		}
	}
	return nil
}

func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func defaultString(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func envString(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}
