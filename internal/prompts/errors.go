package prompts

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidStage     = errors.New("unknown prompt stage")
	ErrUnknownArchetype = errors.New("no question archetype for stage index")
	ErrInvalidCatalog   = errors.New("invalid archetype catalog")

	ErrNotFound      = errors.New("prompt not found")
	ErrDuplicate     = errors.New("prompt name already exists")
	ErrConflict      = errors.New("prompt was modified concurrently")
	ErrInvalidPrompt = errors.New("invalid prompt")
)

// MapHTTPStatus maps prompt override errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidStage), errors.Is(err, ErrInvalidPrompt):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
