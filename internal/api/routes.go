package api

import (
	"net/http"

	"github.com/JaimeStill/candor/internal/config"
	"github.com/JaimeStill/candor/internal/prompts"
	"github.com/JaimeStill/candor/internal/sessions"
	"github.com/JaimeStill/candor/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	patterns, err := routes.Register(
		mux,
		sessions.NewHandler(
			domain.Sessions,
			domain.Runner,
			runtime.Logger,
			cfg.API.MaxUploadSizeBytes(),
		).Routes(),
		prompts.NewHandler(domain.Prompts, runtime.Logger).Routes(),
	)
	if err != nil {
		return err
	}

	runtime.Logger.Info("routes registered", "base_path", cfg.API.BasePath, "count", len(patterns))
	return nil
}
