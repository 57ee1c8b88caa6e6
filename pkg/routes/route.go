// Package routes declares HTTP routes as nested prefix groups and registers
// them on a method-aware ServeMux.
package routes

import (
	"fmt"
	"net/http"
)

var methods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
}

// Route binds a method and a pattern, relative to its group, to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

func (r Route) full(prefix string) (string, error) {
	if !methods[r.Method] {
		return "", fmt.Errorf("route %s%s: unsupported method %q", prefix, r.Pattern, r.Method)
	}
	if r.Handler == nil {
		return "", fmt.Errorf("route %s %s%s: nil handler", r.Method, prefix, r.Pattern)
	}
	return r.Method + " " + prefix + r.Pattern, nil
}
