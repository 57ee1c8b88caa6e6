// Package ai provides a provider-neutral gateway for speech-to-text and
// text generation. The gateway owns per-call timeouts, structured response
// parsing and schema validation, and normalizes every failure into
// ErrRequestFailed. It never retries and never caches.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Audio is an opaque recording handed to speech-to-text.
// Filename and ContentType are hints; the gateway performs no decoding.
type Audio struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Request is a single generation call.
// A non-nil Schema selects structured mode.
type Request struct {
	// Name identifies the call in logs (e.g. "score_answer").
	Name   string
	System string
	Prompt string
	Schema *Schema
}

// Response carries the raw text and, in structured mode, the validated JSON object.
type Response struct {
	Text       string          `json:"text"`
	Structured json.RawMessage `json:"structured,omitempty"`
}

// Gateway is the contract consumed by the interview workflow.
type Gateway interface {
	Transcribe(ctx context.Context, audio Audio) (string, error)
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Provider is a thin adapter over a concrete AI service.
// Providers return raw results and errors; the gateway normalizes them.
type Provider interface {
	Name() string
	Transcribe(ctx context.Context, audio Audio) (string, error)
	Generate(ctx context.Context, req Request) (string, error)
}

// New creates a Gateway backed by the provider named in cfg.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (Gateway, error) {
	var (
		p   Provider
		err error
	)

	switch cfg.Provider {
	case ProviderGemini:
		p, err = NewGemini(ctx, cfg)
	case ProviderOpenAI:
		p = NewOpenAI(cfg, nil, nil)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("create %s provider: %w", cfg.Provider, err)
	}

	return NewGateway(p, cfg.TimeoutDuration(), logger), nil
}

// Decode unmarshals a structured response into T.
// Returns ErrMalformedResponse when the response carries no structured payload.
func Decode[T any](resp *Response) (T, error) {
	var v T
	if resp == nil || len(resp.Structured) == 0 {
		return v, fmt.Errorf("%w: no structured payload", ErrMalformedResponse)
	}
	if err := json.Unmarshal(resp.Structured, &v); err != nil {
		return v, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return v, nil
}
