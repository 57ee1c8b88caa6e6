package ai

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Supported provider names.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds AI provider connection and model parameters.
//
// The openai provider sends chat through a go-agents agent. AgentProvider
// names the go-agents provider (empty keeps the library default), and
// Deployment, APIVersion, and AuthType become its provider options.
// Temperature applies to gemini only.
type Config struct {
	Provider           string  `toml:"provider"`
	APIKey             string  `toml:"api_key"`
	BaseURL            string  `toml:"base_url"`
	Model              string  `toml:"model"`
	TranscriptionModel string  `toml:"transcription_model"`
	Temperature        float64 `toml:"temperature"`
	Timeout            string  `toml:"timeout"`
	AgentProvider      string  `toml:"agent_provider"`
	Deployment         string  `toml:"deployment"`
	APIVersion         string  `toml:"api_version"`
	AuthType           string  `toml:"auth_type"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider           string
	APIKey             string
	BaseURL            string
	Model              string
	TranscriptionModel string
	Temperature        string
	Timeout            string
	AgentProvider      string
	Deployment         string
	APIVersion         string
	AuthType           string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
// Model defaults depend on the provider, so they are applied after env overrides.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	c.loadModelDefaults()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.TranscriptionModel != "" {
		c.TranscriptionModel = overlay.TranscriptionModel
	}
	if overlay.Temperature != 0 {
		c.Temperature = overlay.Temperature
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.AgentProvider != "" {
		c.AgentProvider = overlay.AgentProvider
	}
	if overlay.Deployment != "" {
		c.Deployment = overlay.Deployment
	}
	if overlay.APIVersion != "" {
		c.APIVersion = overlay.APIVersion
	}
	if overlay.AuthType != "" {
		c.AuthType = overlay.AuthType
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderGemini
	}
	if c.Timeout == "" {
		c.Timeout = "2m"
	}
}

func (c *Config) loadModelDefaults() {
	switch c.Provider {
	case ProviderGemini:
		if c.Model == "" {
			c.Model = "gemini-2.5-flash"
		}
		if c.TranscriptionModel == "" {
			c.TranscriptionModel = c.Model
		}
	case ProviderOpenAI:
		if c.Model == "" {
			c.Model = "gpt-4o-mini"
		}
		if c.TranscriptionModel == "" {
			c.TranscriptionModel = "whisper-1"
		}
		if c.BaseURL == "" {
			c.BaseURL = "https://api.openai.com/v1"
		}
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Provider != "" {
		if v := os.Getenv(env.Provider); v != "" {
			c.Provider = v
		}
	}
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.Model != "" {
		if v := os.Getenv(env.Model); v != "" {
			c.Model = v
		}
	}
	if env.TranscriptionModel != "" {
		if v := os.Getenv(env.TranscriptionModel); v != "" {
			c.TranscriptionModel = v
		}
	}
	if env.Temperature != "" {
		if v := os.Getenv(env.Temperature); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				c.Temperature = f
			}
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}

	setString := func(name string, field *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}
	setString(env.AgentProvider, &c.AgentProvider)
	setString(env.Deployment, &c.Deployment)
	setString(env.APIVersion, &c.APIVersion)
	setString(env.AuthType, &c.AuthType)
}

func (c *Config) validate() error {
	if c.Provider != ProviderGemini && c.Provider != ProviderOpenAI {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, c.Provider)
	}
	if c.APIKey == "" {
		return fmt.Errorf("api_key required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2: %v", c.Temperature)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
