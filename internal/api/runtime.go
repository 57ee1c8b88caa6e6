package api

import (
	"github.com/JaimeStill/candor/internal/config"
	"github.com/JaimeStill/candor/internal/infrastructure"
	"github.com/JaimeStill/candor/internal/interview"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Interview    *interview.Config
	SessionCache int
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			AI:        infra.AI,
		},
		Interview:    &cfg.Interview,
		SessionCache: cfg.Cache.Sessions(),
	}
}
