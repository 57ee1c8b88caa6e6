package interview

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/JaimeStill/candor/pkg/formatting"
)

// Config holds interview workflow parameters.
type Config struct {
	SlotCount         int     `toml:"slot_count"`
	SeniorThreshold   float64 `toml:"senior_threshold"`
	MinCompensation   float64 `toml:"min_compensation"`
	MinRecordingSize  string  `toml:"min_recording_size"`
	TakeMode          string  `toml:"take_mode"`
	EvaluationWorkers int     `toml:"evaluation_workers"`
	ArchetypesFile    string  `toml:"archetypes_file"`
	AwaitTimeout      string  `toml:"await_timeout"`
	PollInterval      string  `toml:"poll_interval"`
	PollMaxInterval   string  `toml:"poll_max_interval"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	SlotCount         string
	SeniorThreshold   string
	MinCompensation   string
	MinRecordingSize  string
	TakeMode          string
	EvaluationWorkers string
	ArchetypesFile    string
	AwaitTimeout      string
	PollInterval      string
	PollMaxInterval   string
}

// MinRecordingBytes returns MinRecordingSize in bytes.
func (c *Config) MinRecordingBytes() int64 {
	n, _ := formatting.ParseBytes(c.MinRecordingSize)
	return n
}

// AwaitTimeoutDuration returns AwaitTimeout as a time.Duration.
func (c *Config) AwaitTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.AwaitTimeout)
	return d
}

// PollIntervalDuration returns PollInterval as a time.Duration.
func (c *Config) PollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollInterval)
	return d
}

// PollMaxIntervalDuration returns PollMaxInterval as a time.Duration.
func (c *Config) PollMaxIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollMaxInterval)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.SlotCount != 0 {
		c.SlotCount = overlay.SlotCount
	}
	if overlay.SeniorThreshold != 0 {
		c.SeniorThreshold = overlay.SeniorThreshold
	}
	if overlay.MinCompensation != 0 {
		c.MinCompensation = overlay.MinCompensation
	}
	if overlay.MinRecordingSize != "" {
		c.MinRecordingSize = overlay.MinRecordingSize
	}
	if overlay.TakeMode != "" {
		c.TakeMode = overlay.TakeMode
	}
	if overlay.EvaluationWorkers != 0 {
		c.EvaluationWorkers = overlay.EvaluationWorkers
	}
	if overlay.ArchetypesFile != "" {
		c.ArchetypesFile = overlay.ArchetypesFile
	}
	if overlay.AwaitTimeout != "" {
		c.AwaitTimeout = overlay.AwaitTimeout
	}
	if overlay.PollInterval != "" {
		c.PollInterval = overlay.PollInterval
	}
	if overlay.PollMaxInterval != "" {
		c.PollMaxInterval = overlay.PollMaxInterval
	}
}

func (c *Config) loadDefaults() {
	if c.SlotCount == 0 {
		c.SlotCount = 4
	}
	if c.SeniorThreshold == 0 {
		c.SeniorThreshold = 35
	}
	if c.MinCompensation == 0 {
		c.MinCompensation = 10
	}
	if c.MinRecordingSize == "" {
		c.MinRecordingSize = "1KB"
	}
	if c.TakeMode == "" {
		c.TakeMode = string(TakeSingle)
	}
	if c.EvaluationWorkers == 0 {
		c.EvaluationWorkers = 1
	}
	if c.AwaitTimeout == "" {
		c.AwaitTimeout = "5m"
	}
	if c.PollInterval == "" {
		c.PollInterval = "250ms"
	}
	if c.PollMaxInterval == "" {
		c.PollMaxInterval = "5s"
	}
}

func (c *Config) loadEnv(env *Env) {
	setInt(env.SlotCount, &c.SlotCount)
	setFloat(env.SeniorThreshold, &c.SeniorThreshold)
	setFloat(env.MinCompensation, &c.MinCompensation)
	setString(env.MinRecordingSize, &c.MinRecordingSize)
	setString(env.TakeMode, &c.TakeMode)
	setInt(env.EvaluationWorkers, &c.EvaluationWorkers)
	setString(env.ArchetypesFile, &c.ArchetypesFile)
	setString(env.AwaitTimeout, &c.AwaitTimeout)
	setString(env.PollInterval, &c.PollInterval)
	setString(env.PollMaxInterval, &c.PollMaxInterval)
}

func setString(name string, dst *string) {
	if name == "" {
		return
	}
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func setInt(name string, dst *int) {
	if name == "" {
		return
	}
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(name string, dst *float64) {
	if name == "" {
		return
	}
	if v := os.Getenv(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func (c *Config) validate() error {
	if c.SlotCount < 1 {
		return fmt.Errorf("slot_count must be positive: %d", c.SlotCount)
	}
	if c.MinCompensation < 0 {
		return fmt.Errorf("min_compensation must not be negative: %v", c.MinCompensation)
	}
	if c.SeniorThreshold < c.MinCompensation {
		return fmt.Errorf(
			"senior_threshold %v below min_compensation %v",
			c.SeniorThreshold, c.MinCompensation,
		)
	}
	if _, err := formatting.ParseBytes(c.MinRecordingSize); err != nil {
		return fmt.Errorf("invalid min_recording_size: %w", err)
	}
	if c.TakeMode != string(TakeSingle) && c.TakeMode != string(TakeSegmented) {
		return fmt.Errorf("take_mode must be %s or %s: %s", TakeSingle, TakeSegmented, c.TakeMode)
	}
	if c.EvaluationWorkers < 1 {
		return fmt.Errorf("evaluation_workers must be positive: %d", c.EvaluationWorkers)
	}
	for name, v := range map[string]string{
		"await_timeout":     c.AwaitTimeout,
		"poll_interval":     c.PollInterval,
		"poll_max_interval": c.PollMaxInterval,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive: %s", name, v)
		}
	}
	return nil
}
