package interview

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/candor/pkg/ai"
)

// Domain errors for interview session operations.
var (
	ErrNotFound          = errors.New("session not found")
	ErrConflict          = errors.New("session was modified concurrently")
	ErrValidation        = errors.New("validation failed")
	ErrEmptyRecording    = errors.New("recording is below the minimum size")
	ErrInvalidTransition = errors.New("action not allowed in current state")
	ErrBusy              = errors.New("session is busy")
	ErrSlotLimit         = errors.New("question slot limit reached")
	ErrNoQuestions       = errors.New("no questions prepared")
	ErrNoRecording       = errors.New("no recording captured")
	ErrReportNotReady    = errors.New("report is not ready")
	ErrAwaitTimeout      = errors.New("timed out waiting for session")
	ErrNoAnswer          = errors.New("no answer found")
	ErrInvalidSession    = errors.New("session invariant violated")
)

// MapHTTPStatus maps interview domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrEmptyRecording):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrConflict),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrBusy),
		errors.Is(err, ErrSlotLimit),
		errors.Is(err, ErrNoQuestions),
		errors.Is(err, ErrNoRecording),
		errors.Is(err, ErrReportNotReady):
		return http.StatusConflict
	case errors.Is(err, ErrAwaitTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ai.ErrRequestFailed):
		return ai.MapHTTPStatus(err)
	}
	return http.StatusInternalServerError
}
