package interview

import (
	"log/slog"

	"github.com/JaimeStill/candor/internal/prompts"
	"github.com/JaimeStill/candor/pkg/ai"
)

// Runtime bundles the dependencies the session machine requires.
// It is constructed by higher-level composition code from Infrastructure.
type Runtime struct {
	Config  *Config
	Gateway ai.Gateway
	Catalog *prompts.Catalog
	// Prompts resolves stage instruction overrides. Nil uses the built-in text.
	Prompts prompts.Source
	Store   Store
	Blobs   Blobs
	Logger  *slog.Logger
}
