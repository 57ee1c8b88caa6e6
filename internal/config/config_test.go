package config_test

import (
	"os"
	"strings"
	"testing"

	"github.com/JaimeStill/candor/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("CANDOR_DB_NAME", "candor")
	t.Setenv("CANDOR_DB_USER", "candor")
	t.Setenv("CANDOR_STORAGE_CONNECTION_STRING", "UseDevelopmentStorage=true")
	t.Setenv("CANDOR_AI_API_KEY", "test-key")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"env", cfg.Env(), "local"},
		{"shutdown_timeout", cfg.ShutdownTimeout, "30s"},
		{"server_port", cfg.Server.Port, 8080},
		{"server_addr", cfg.Server.Addr(), "0.0.0.0:8080"},
		{"write_timeout", cfg.Server.WriteTimeout, "10m"},
		{"base_path", cfg.API.BasePath, "/api"},
		{"max_upload", cfg.API.MaxUploadSizeBytes(), int64(100 * 1024 * 1024)},
		{"cache_sessions", cfg.Cache.Sessions(), 256},
		{"ai_provider", cfg.AI.Provider, "gemini"},
		{"storage_provider", cfg.Storage.Provider, "azure"},
		{"slot_count", cfg.Interview.SlotCount, 4},
		{"senior_threshold", cfg.Interview.SeniorThreshold, 35.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestLoadFileOverlayAndEnv(t *testing.T) {
	setRequired(t)

	base := `
version = "1.2.0"

[interview]
slot_count = 3
take_mode = "segmented"

[cache]
session_size = 0
`
	overlay := `
[interview]
evaluation_workers = 3
`
	if err := os.WriteFile(config.BaseConfigFile, []byte(base), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile("config.test.toml", []byte(overlay), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvCandorEnv, "test")
	t.Setenv("CANDOR_INTERVIEW_SENIOR_THRESHOLD", "50")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Version != "1.2.0" {
		t.Errorf("version = %s", cfg.Version)
	}
	if cfg.Interview.SlotCount != 3 || cfg.Interview.TakeMode != "segmented" {
		t.Errorf("interview = %+v", cfg.Interview)
	}
	if cfg.Interview.EvaluationWorkers != 3 {
		t.Errorf("evaluation_workers = %d, want 3 from overlay", cfg.Interview.EvaluationWorkers)
	}
	if cfg.Interview.SeniorThreshold != 50 {
		t.Errorf("senior_threshold = %v, want 50 from env", cfg.Interview.SeniorThreshold)
	}
	if cfg.Cache.Sessions() != 0 {
		t.Errorf("cache sessions = %d, want 0", cfg.Cache.Sessions())
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing api key", map[string]string{"CANDOR_AI_API_KEY": ""}, "ai"},
		{"bad take mode", map[string]string{"CANDOR_INTERVIEW_TAKE_MODE": "stream"}, "interview"},
		{"bad upload size", map[string]string{"CANDOR_API_MAX_UPLOAD_SIZE": "huge"}, "api"},
		{"negative cache", map[string]string{"CANDOR_CACHE_SESSION_SIZE": "-1"}, "session_size"},
		{"await outlives write timeout", map[string]string{
			"CANDOR_INTERVIEW_AWAIT_TIMEOUT": "15m",
		}, "write_timeout"},
		{"zero idle timeout", map[string]string{"CANDOR_SERVER_IDLE_TIMEOUT": "0s"}, "idle_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}
