package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/candor/pkg/formatting"
	"github.com/JaimeStill/candor/pkg/middleware"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "CANDOR_CORS_ENABLED",
	Origins:          "CANDOR_CORS_ORIGINS",
	AllowedMethods:   "CANDOR_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "CANDOR_CORS_ALLOWED_HEADERS",
	ExposedHeaders:   "CANDOR_CORS_EXPOSED_HEADERS",
	AllowCredentials: "CANDOR_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "CANDOR_CORS_MAX_AGE",
}

// APIConfig holds API routing, upload, and CORS settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
}

// MaxUploadSizeBytes returns the recording upload limit in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxUploadSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS config.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive: %s", c.MaxUploadSize)
	}

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "100MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("CANDOR_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("CANDOR_API_MAX_UPLOAD_SIZE"); v != "" {
		c.MaxUploadSize = v
	}
}
