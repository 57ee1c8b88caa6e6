package ai

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRequestFailed covers every transport, service, and parse failure of a gateway call.
	ErrRequestFailed = errors.New("ai request failed")
	// ErrMalformedResponse indicates a structured response that did not match its schema.
	// It always matches ErrRequestFailed under errors.Is.
	ErrMalformedResponse = fmt.Errorf("%w: malformed structured response", ErrRequestFailed)
	// ErrUnknownProvider indicates a provider name with no adapter.
	ErrUnknownProvider = errors.New("unknown ai provider")
)

// MapHTTPStatus maps gateway errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrRequestFailed) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
