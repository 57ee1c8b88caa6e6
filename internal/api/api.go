// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/candor/internal/config"
	"github.com/JaimeStill/candor/internal/infrastructure"
	"github.com/JaimeStill/candor/pkg/middleware"
	"github.com/JaimeStill/candor/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// The session runner is registered with the lifecycle here so sessions left
// busy by a previous run resume during startup.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(runtime)
	if err != nil {
		return nil, err
	}

	if err := domain.Runner.Start(runtime.Lifecycle); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg, runtime); err != nil {
		return nil, err
	}

	m, err := module.New(cfg.API.BasePath, mux)
	if err != nil {
		return nil, err
	}
	m.Use(
		middleware.Recover(runtime.Logger),
		middleware.CORS(&cfg.API.CORS),
		middleware.Logger(runtime.Logger),
	)

	return m, nil
}
