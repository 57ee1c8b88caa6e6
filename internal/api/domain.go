package api

import (
	"fmt"

	"github.com/JaimeStill/candor/internal/interview"
	"github.com/JaimeStill/candor/internal/prompts"
	"github.com/JaimeStill/candor/internal/sessions"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Sessions interview.System
	Prompts  prompts.System
	Runner   *interview.Runner
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) (*Domain, error) {
	overrides := prompts.New(runtime.Database.Connection(), runtime.Logger)

	store, err := sessions.NewCache(
		sessions.NewRepository(runtime.Database.Connection(), runtime.Logger),
		runtime.SessionCache,
	)
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}

	sys, err := interview.New(&interview.Runtime{
		Config:  runtime.Interview,
		Gateway: runtime.AI,
		Prompts: overrides,
		Store:   store,
		Blobs:   runtime.Storage,
		Logger:  runtime.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("interview system: %w", err)
	}

	return &Domain{
		Sessions: sys,
		Prompts:  overrides,
		Runner:   interview.NewRunner(sys, runtime.Logger),
	}, nil
}
