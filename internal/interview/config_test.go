package interview_test

import (
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/candor/internal/interview"
)

func TestConfigDefaults(t *testing.T) {
	cfg := &interview.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize error: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"slot_count", cfg.SlotCount, 4},
		{"senior_threshold", cfg.SeniorThreshold, 35.0},
		{"min_compensation", cfg.MinCompensation, 10.0},
		{"min_recording_bytes", cfg.MinRecordingBytes(), int64(1024)},
		{"take_mode", cfg.TakeMode, "single"},
		{"evaluation_workers", cfg.EvaluationWorkers, 1},
		{"await_timeout", cfg.AwaitTimeoutDuration(), 5 * time.Minute},
		{"poll_interval", cfg.PollIntervalDuration(), 250 * time.Millisecond},
		{"poll_max_interval", cfg.PollMaxIntervalDuration(), 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("TEST_SLOTS", "3")
	t.Setenv("TEST_THRESHOLD", "50")
	t.Setenv("TEST_TAKE_MODE", "segmented")
	t.Setenv("TEST_WORKERS", "2")

	cfg := &interview.Config{}
	err := cfg.Finalize(&interview.Env{
		SlotCount:         "TEST_SLOTS",
		SeniorThreshold:   "TEST_THRESHOLD",
		TakeMode:          "TEST_TAKE_MODE",
		EvaluationWorkers: "TEST_WORKERS",
	})
	if err != nil {
		t.Fatalf("Finalize error: %v", err)
	}

	if cfg.SlotCount != 3 || cfg.SeniorThreshold != 50 || cfg.TakeMode != "segmented" || cfg.EvaluationWorkers != 2 {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     interview.Config
		wantErr string
	}{
		{"negative slots", interview.Config{SlotCount: -1}, "slot_count"},
		{"threshold below floor", interview.Config{SeniorThreshold: 5, MinCompensation: 10}, "senior_threshold"},
		{"bad recording size", interview.Config{MinRecordingSize: "lots"}, "min_recording_size"},
		{"bad take mode", interview.Config{TakeMode: "stream"}, "take_mode"},
		{"bad workers", interview.Config{EvaluationWorkers: -2}, "evaluation_workers"},
		{"bad await timeout", interview.Config{AwaitTimeout: "soon"}, "await_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	base := interview.Config{SlotCount: 4, TakeMode: "single", AwaitTimeout: "5m"}
	base.Merge(&interview.Config{SlotCount: 3, ArchetypesFile: "archetypes.yaml"})

	if base.SlotCount != 3 || base.TakeMode != "single" || base.ArchetypesFile != "archetypes.yaml" || base.AwaitTimeout != "5m" {
		t.Errorf("Merge result = %+v", base)
	}
}
