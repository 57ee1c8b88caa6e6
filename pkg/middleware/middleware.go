// Package middleware provides the HTTP middleware stack and the request
// logging, panic recovery, and CORS layers used by API modules.
package middleware

import (
	"net/http"
	"slices"
)

// Func wraps a handler.
type Func = func(http.Handler) http.Handler

// System is an ordered middleware stack. The first middleware added is the
// outermost at request time.
type System interface {
	Use(mw ...Func)
	Apply(handler http.Handler) http.Handler
}

type stack []Func

// New creates an empty middleware System.
func New() System {
	return &stack{}
}

func (s *stack) Use(mw ...Func) {
	*s = append(*s, mw...)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	for _, mw := range slices.Backward(*s) {
		handler = mw(handler)
	}
	return handler
}
