package prompts

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/candor/pkg/handlers"
	"github.com/JaimeStill/candor/pkg/routes"
)

var errInvalidID = errors.New("invalid prompt id")

// Handler provides HTTP endpoints for instruction overrides.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler over sys.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "prompts"),
	}
}

// Routes returns the route group definition for prompt endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/prompts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "GET", Pattern: "/stages", Handler: h.Stages},
			{Method: "GET", Pattern: "/stages/{stage}", Handler: h.Effective},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "POST", Pattern: "/{id}/activate", Handler: h.Activate},
			{Method: "POST", Pattern: "/{id}/deactivate", Handler: h.Deactivate},
		},
	}
}

// List returns stored prompts, optionally filtered by the stage and active
// query parameters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var filter Filter
	q := r.URL.Query()

	if v := q.Get("stage"); v != "" {
		stage, err := ParseStage(v)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
		filter.Stage = &stage
	}
	if v := q.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
		filter.Active = &active
	}

	result, err := h.sys.List(r.Context(), filter)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Stages lists every stage that accepts an instruction override.
func (h *Handler) Stages(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, Stages())
}

// Effective returns the instructions and output spec a stage currently composes.
func (h *Handler) Effective(w http.ResponseWriter, r *http.Request) {
	stage, err := ParseStage(r.PathValue("stage"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	text, err := h.sys.Effective(r.Context(), stage)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, text)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	p, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, p)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[Command](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	p, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	cmd, err := handlers.DecodeJSON[Command](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	p, err := h.sys.Update(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.sys.Activate)
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.sys.Deactivate)
}

func (h *Handler) toggle(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id uuid.UUID) (*Prompt, error),
) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	p, err := op(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, p)
}

func (h *Handler) id(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
