package sessions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/candor/internal/interview"
	"github.com/JaimeStill/candor/internal/report"
	"github.com/JaimeStill/candor/pkg/formatting"
	"github.com/JaimeStill/candor/pkg/handlers"
	"github.com/JaimeStill/candor/pkg/routes"
	"github.com/JaimeStill/candor/pkg/storage"
)

var errInvalidID = errors.New("invalid session id")

type operation func(context.Context, uuid.UUID) (*interview.Session, error)

// Dispatcher runs a session's automatic block in the background.
type Dispatcher interface {
	Dispatch(id uuid.UUID)
}

// NotesRequest is the body of PUT /sessions/{id}/notes.
type NotesRequest struct {
	Notes string `json:"notes"`
}

// TranscriptRequest is the body of PUT /sessions/{id}/transcript.
type TranscriptRequest struct {
	Text string `json:"text"`
}

// Handler provides HTTP endpoints for interview sessions.
type Handler struct {
	sys           interview.System
	runner        Dispatcher
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler over sys. Confirm endpoints hand the session
// to runner and return 202 without waiting for the automatic block.
func NewHandler(
	sys interview.System,
	runner Dispatcher,
	logger *slog.Logger,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		runner:        runner,
		logger:        logger.With("handler", "sessions"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for session endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/sessions",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Create},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Discard},
			{Method: "GET", Pattern: "/{id}/await", Handler: h.Await},
			{Method: "POST", Pattern: "/{id}/start", Handler: h.Start},
			{Method: "POST", Pattern: "/{id}/questions", Handler: h.RequestQuestion},
			{Method: "POST", Pattern: "/{id}/questions/rephrase", Handler: h.RephraseQuestion},
			{Method: "PUT", Pattern: "/{id}/notes", Handler: h.UpdateNotes},
			{Method: "POST", Pattern: "/{id}/proceed", Handler: h.Proceed},
			{Method: "POST", Pattern: "/{id}/recordings", Handler: h.Capture},
			{Method: "GET", Pattern: "/{id}/recordings/{index}", Handler: h.Recording},
			{Method: "POST", Pattern: "/{id}/recordings/confirm", Handler: h.ConfirmRecording},
			{Method: "PUT", Pattern: "/{id}/transcript", Handler: h.EditTranscript},
			{Method: "POST", Pattern: "/{id}/transcript/confirm", Handler: h.ConfirmTranscript},
			{Method: "POST", Pattern: "/{id}/advance", Handler: h.Advance},
			{Method: "GET", Pattern: "/{id}/report", Handler: h.Report},
		},
	}
}

// List returns stored sessions, optionally filtered by the state query parameter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var filter *interview.State
	if v := r.URL.Query().Get("state"); v != "" {
		state, err := interview.ParseState(v)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
		filter = &state
	}

	result, err := h.sys.List(r.Context(), filter)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Create starts a new session in setup.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	s, err := h.sys.Create(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, interview.MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, s)
}

// Find returns a single session by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, http.StatusOK, h.sys.Find)
}

// Discard deletes the session and responds with its fresh replacement.
func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, http.StatusCreated, h.sys.Discard)
}

// Await blocks until the session leaves processing or evaluating.
// The optional timeout query parameter is a Go duration string.
func (h *Handler) Await(w http.ResponseWriter, r *http.Request) {
	var timeout time.Duration
	if v := r.URL.Query().Get("timeout"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			handlers.RespondError(
				w, h.logger,
				http.StatusBadRequest,
				fmt.Errorf("%w: timeout: %w", interview.ErrValidation, err),
			)
			return
		}
		timeout = d
	}

	id, ok := h.id(w, r)
	if !ok {
		return
	}

	s, err := h.sys.Await(r.Context(), id, timeout)
	if err != nil {
		handlers.RespondError(w, h.logger, interview.MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, s)
}

// Start records the candidate profile from a JSON StartCommand body.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	cmd, err := handlers.DecodeJSON[interview.StartCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	h.do(w, r, http.StatusOK, func(ctx context.Context, id uuid.UUID) (*interview.Session, error) {
		return h.sys.Start(ctx, id, cmd)
	})
}

// RequestQuestion generates the next question slot.
func (h *Handler) RequestQuestion(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, http.StatusOK, h.sys.RequestNextQuestion)
}

// RephraseQuestion rewrites the most recent question slot.
func (h *Handler) RephraseQuestion(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, http.StatusOK, h.sys.RephraseLastQuestion)
}

// UpdateNotes replaces the interviewer notes.
func (h *Handler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[NotesRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	h.do(w, r, http.StatusOK, func(ctx context.Context, id uuid.UUID) (*interview.Session, error) {
		return h.sys.UpdateNotes(ctx, id, req.Notes)
	})
}

// Proceed moves the session from question preparation to recording.
func (h *Handler) Proceed(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, http.StatusOK, h.sys.Proceed)
}

// Capture stores the multipart "file" field as a recording take.
func (h *Handler) Capture(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxUploadSize {
		handlers.RespondError(
			w, h.logger,
			http.StatusRequestEntityTooLarge,
			fmt.Errorf(
				"upload of %s exceeds the %s limit",
				formatting.FormatBytes(r.ContentLength, 1),
				formatting.FormatBytes(h.maxUploadSize, 0),
			),
		)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, err)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			http.StatusBadRequest,
			fmt.Errorf("%w: file field required", interview.ErrValidation),
		)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	take := interview.Take{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}

	h.do(w, r, http.StatusCreated, func(ctx context.Context, id uuid.UUID) (*interview.Session, error) {
		return h.sys.Capture(ctx, id, take)
	})
}

// Recording streams a captured take. The index path parameter is 1-based.
func (h *Handler) Recording(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			http.StatusBadRequest,
			fmt.Errorf("%w: recording index", interview.ErrValidation),
		)
		return
	}

	rec, body, err := h.sys.Recording(r.Context(), id, index)
	if err != nil {
		status := interview.MapHTTPStatus(err)
		if status == http.StatusInternalServerError {
			status = storage.MapHTTPStatus(err)
		}
		handlers.RespondError(w, h.logger, status, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", rec.ContentType)
	if rec.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(rec.Size, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.Filename))
	w.WriteHeader(http.StatusOK)
	io.Copy(w, body)
}

// ConfirmRecording moves the session to processing and transcribes in the background.
func (h *Handler) ConfirmRecording(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, h.sys.ConfirmRecording)
}

// EditTranscript overwrites the labeled transcript text.
func (h *Handler) EditTranscript(w http.ResponseWriter, r *http.Request) {
	req, err := handlers.DecodeJSON[TranscriptRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	h.do(w, r, http.StatusOK, func(ctx context.Context, id uuid.UUID) (*interview.Session, error) {
		return h.sys.EditTranscript(ctx, id, req.Text)
	})
}

// ConfirmTranscript freezes the transcript and evaluates in the background.
func (h *Handler) ConfirmTranscript(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, h.sys.ConfirmTranscript)
}

// Advance runs the current automatic block within the request.
func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, http.StatusOK, h.sys.Advance)
}

// Report exports the finished session as JSON or CSV (format query parameter).
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	id, ok := h.id(w, r)
	if !ok {
		return
	}

	rpt, err := h.sys.Report(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, interview.MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	if format == report.FormatCSV {
		w.Header().Set(
			"Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", "interview-"+id.String()+".csv"),
		)
	}
	w.WriteHeader(http.StatusOK)

	if err := report.Write(w, format, rpt); err != nil {
		h.logger.Error("report write failed", "id", id, "error", err)
	}
}

func (h *Handler) id(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, errInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) do(w http.ResponseWriter, r *http.Request, status int, op operation) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	s, err := op(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, interview.MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, status, s)
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, op operation) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}

	s, err := op(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, interview.MapHTTPStatus(err), err)
		return
	}

	h.runner.Dispatch(id)
	handlers.RespondJSON(w, http.StatusAccepted, s)
}
