// Package config loads the service configuration from TOML files and
// CANDOR_ environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/candor/internal/interview"
	"github.com/JaimeStill/candor/pkg/ai"
	"github.com/JaimeStill/candor/pkg/database"
	"github.com/JaimeStill/candor/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvCandorEnv             = "CANDOR_ENV"
	EnvCandorShutdownTimeout = "CANDOR_SHUTDOWN_TIMEOUT"
	EnvCandorVersion         = "CANDOR_VERSION"
	EnvCacheSessionSize      = "CANDOR_CACHE_SESSION_SIZE"
)

// DatabaseEnv names the CANDOR_DB_ variables shared by the server and the
// migrate command.
var DatabaseEnv = &database.Env{
	Host:            "CANDOR_DB_HOST",
	Port:            "CANDOR_DB_PORT",
	Name:            "CANDOR_DB_NAME",
	User:            "CANDOR_DB_USER",
	Password:        "CANDOR_DB_PASSWORD",
	SSLMode:         "CANDOR_DB_SSL_MODE",
	MaxOpenConns:    "CANDOR_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "CANDOR_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "CANDOR_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "CANDOR_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "CANDOR_STORAGE_PROVIDER",
	Container:        "CANDOR_STORAGE_CONTAINER",
	ConnectionString: "CANDOR_STORAGE_CONNECTION_STRING",
	Endpoint:         "CANDOR_STORAGE_ENDPOINT",
	AccessKey:        "CANDOR_STORAGE_ACCESS_KEY",
	SecretKey:        "CANDOR_STORAGE_SECRET_KEY",
	Region:           "CANDOR_STORAGE_REGION",
	UseSSL:           "CANDOR_STORAGE_USE_SSL",
}

var aiEnv = &ai.Env{
	Provider:           "CANDOR_AI_PROVIDER",
	APIKey:             "CANDOR_AI_API_KEY",
	BaseURL:            "CANDOR_AI_BASE_URL",
	Model:              "CANDOR_AI_MODEL",
	TranscriptionModel: "CANDOR_AI_TRANSCRIPTION_MODEL",
	Temperature:        "CANDOR_AI_TEMPERATURE",
	Timeout:            "CANDOR_AI_TIMEOUT",
	AgentProvider:      "CANDOR_AI_AGENT_PROVIDER",
	Deployment:         "CANDOR_AI_DEPLOYMENT",
	APIVersion:         "CANDOR_AI_API_VERSION",
	AuthType:           "CANDOR_AI_AUTH_TYPE",
}

var interviewEnv = &interview.Env{
	SlotCount:         "CANDOR_INTERVIEW_SLOT_COUNT",
	SeniorThreshold:   "CANDOR_INTERVIEW_SENIOR_THRESHOLD",
	MinCompensation:   "CANDOR_INTERVIEW_MIN_COMPENSATION",
	MinRecordingSize:  "CANDOR_INTERVIEW_MIN_RECORDING_SIZE",
	TakeMode:          "CANDOR_INTERVIEW_TAKE_MODE",
	EvaluationWorkers: "CANDOR_INTERVIEW_EVALUATION_WORKERS",
	ArchetypesFile:    "CANDOR_INTERVIEW_ARCHETYPES_FILE",
	AwaitTimeout:      "CANDOR_INTERVIEW_AWAIT_TIMEOUT",
	PollInterval:      "CANDOR_INTERVIEW_POLL_INTERVAL",
	PollMaxInterval:   "CANDOR_INTERVIEW_POLL_MAX_INTERVAL",
}

// CacheConfig sizes in-process caches. A size of zero disables the cache.
type CacheConfig struct {
	SessionSize *int `toml:"session_size"`
}

// Sessions returns the session cache size.
func (c *CacheConfig) Sessions() int {
	if c.SessionSize == nil {
		return 0
	}
	return *c.SessionSize
}

// Config is the root configuration for the candor service.
type Config struct {
	Server          ServerConfig     `toml:"server"`
	Database        database.Config  `toml:"database"`
	Storage         storage.Config   `toml:"storage"`
	AI              ai.Config        `toml:"ai"`
	Interview       interview.Config `toml:"interview"`
	API             APIConfig        `toml:"api"`
	Cache           CacheConfig      `toml:"cache"`
	ShutdownTimeout string           `toml:"shutdown_timeout"`
	Version         string           `toml:"version"`
}

// Env returns the CANDOR_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvCandorEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.Cache.SessionSize != nil {
		c.Cache.SessionSize = overlay.Cache.SessionSize
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.AI.Merge(&overlay.AI)
	c.Interview.Merge(&overlay.Interview)
	c.API.Merge(&overlay.API)
}

// Finalize applies defaults, environment overrides, and validation to every section.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(DatabaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.AI.Finalize(aiEnv); err != nil {
		return fmt.Errorf("ai: %w", err)
	}
	if err := c.Interview.Finalize(interviewEnv); err != nil {
		return fmt.Errorf("interview: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	if await, write := c.Interview.AwaitTimeoutDuration(), c.Server.WriteTimeoutDuration(); await >= write {
		return fmt.Errorf(
			"interview await_timeout (%v) must be shorter than server write_timeout (%v)",
			await, write,
		)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.Cache.SessionSize == nil {
		size := 256
		c.Cache.SessionSize = &size
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvCandorShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvCandorVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvCacheSessionSize); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			c.Cache.SessionSize = &size
		}
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	if c.Cache.Sessions() < 0 {
		return fmt.Errorf("cache session_size must not be negative: %d", c.Cache.Sessions())
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvCandorEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
