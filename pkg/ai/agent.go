package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// ChatFunc sends one prompt to a chat model and returns the reply text.
type ChatFunc func(ctx context.Context, prompt string) (string, error)

// AgentConfig layers c over the go-agents defaults. The API key travels as
// the provider's token option; empty fields keep the library defaults.
func (c *Config) AgentConfig() *gaconfig.AgentConfig {
	ac := gaconfig.DefaultAgentConfig()
	ac.Name = "candor"

	provider := gaconfig.ProviderConfig{}
	if ac.Provider != nil {
		provider = *ac.Provider
	}
	provider.Options = maps.Clone(provider.Options)
	if provider.Options == nil {
		provider.Options = make(map[string]any)
	}
	if c.AgentProvider != "" {
		provider.Name = c.AgentProvider
	}
	if c.BaseURL != "" {
		provider.BaseURL = c.BaseURL
	}

	setOption := func(key, v string) {
		if v != "" {
			provider.Options[key] = v
		}
	}
	setOption("token", c.APIKey)
	setOption("deployment", c.Deployment)
	setOption("api_version", c.APIVersion)
	setOption("auth_type", c.AuthType)
	ac.Provider = &provider

	model := gaconfig.ModelConfig{}
	if ac.Model != nil {
		model = *ac.Model
	}
	if c.Model != "" {
		model.Name = c.Model
	}
	ac.Model = &model

	return &ac
}

// AgentChat returns a ChatFunc backed by go-agents. Each call creates its
// own agent from cfg.
func AgentChat(cfg *gaconfig.AgentConfig) ChatFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		a, err := agent.New(cfg)
		if err != nil {
			return "", fmt.Errorf("create agent: %w", err)
		}

		resp, err := a.Chat(ctx, prompt)
		if err != nil {
			return "", fmt.Errorf("chat call: %w", err)
		}
		return resp.Content(), nil
	}
}

// ChatPrompt folds a request into the single prompt an agent chat accepts:
// the system text, then the user prompt, then in structured mode the
// response schema.
func ChatPrompt(r Request) (string, error) {
	var sb strings.Builder
	if r.System != "" {
		sb.WriteString(r.System)
		sb.WriteString("\n\n")
	}
	sb.WriteString(r.Prompt)

	if r.Schema != nil {
		schema, err := json.MarshalIndent(r.Schema, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode schema: %w", err)
		}
		sb.WriteString("\n\nRespond with a single JSON object matching this schema:\n\n")
		sb.Write(schema)
	}
	return sb.String(), nil
}
