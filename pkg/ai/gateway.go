package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/candor/pkg/formatting"
)

type gateway struct {
	provider Provider
	timeout  time.Duration
	logger   *slog.Logger
}

// NewGateway wraps a provider with timeout handling, structured parsing,
// and error normalization. A zero timeout disables the per-call deadline.
func NewGateway(p Provider, timeout time.Duration, logger *slog.Logger) Gateway {
	return &gateway{
		provider: p,
		timeout:  timeout,
		logger:   logger.With("system", "ai", "provider", p.Name()),
	}
}

func (g *gateway) Transcribe(ctx context.Context, audio Audio) (string, error) {
	if len(audio.Data) == 0 {
		return "", fmt.Errorf("%w: transcribe: empty audio", ErrRequestFailed)
	}

	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	text, err := g.provider.Transcribe(ctx, audio)
	if err != nil {
		g.logger.WarnContext(ctx, "transcription failed", "error", err, "duration", time.Since(start))
		return "", fmt.Errorf("%w: transcribe: %w", ErrRequestFailed, err)
	}

	g.logger.InfoContext(
		ctx, "transcription complete",
		"bytes", len(audio.Data),
		"chars", len(text),
		"duration", time.Since(start),
	)

	return strings.TrimSpace(text), nil
}

func (g *gateway) Complete(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	text, err := g.provider.Generate(ctx, req)
	if err != nil {
		g.logger.WarnContext(ctx, "completion failed", "call", req.Name, "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("%w: %s: %w", ErrRequestFailed, req.Name, err)
	}

	resp := &Response{Text: strings.TrimSpace(text)}

	if req.Schema != nil {
		structured, err := parseStructured(resp.Text, req.Schema)
		if err != nil {
			g.logger.WarnContext(ctx, "structured response rejected", "call", req.Name, "error", err)
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedResponse, req.Name, err)
		}
		resp.Structured = structured
	}

	g.logger.InfoContext(
		ctx, "completion complete",
		"call", req.Name,
		"structured", req.Schema != nil,
		"duration", time.Since(start),
	)

	return resp, nil
}

func (g *gateway) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

func parseStructured(text string, schema *Schema) (json.RawMessage, error) {
	value, err := formatting.Parse[any](text)
	if err != nil {
		return nil, err
	}

	if err := schema.Validate(value); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
