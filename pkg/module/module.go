// Package module mounts prefixed HTTP sub-applications, each with its own
// middleware stack, under a single top-level router.
package module

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/JaimeStill/candor/pkg/middleware"
)

// Module serves every request under a single-level prefix. The prefix is
// stripped before the request reaches the inner router.
type Module struct {
	prefix     string
	router     http.Handler
	middleware middleware.System

	once    sync.Once
	handler http.Handler
}

// New creates a Module for prefix (e.g. "/api").
func New(prefix string, router http.Handler) (*Module, error) {
	if err := validatePrefix(prefix); err != nil {
		return nil, err
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}, nil
}

// Prefix returns the module's path prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Use appends middleware. The chain is frozen on the first request.
func (m *Module) Use(mw ...middleware.Func) {
	m.middleware.Use(mw...)
}

// Handler returns the inner router wrapped with the module's middleware.
func (m *Module) Handler() http.Handler {
	m.once.Do(func() {
		m.handler = m.middleware.Apply(m.router)
	})
	return m.handler
}

// ServeHTTP strips the prefix and dispatches to the wrapped router.
func (m *Module) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	path := strings.TrimPrefix(req.URL.Path, m.prefix)
	if path == "" {
		path = "/"
	}
	m.Handler().ServeHTTP(w, withPath(req, path))
}

func withPath(req *http.Request, path string) *http.Request {
	u := new(url.URL)
	*u = *req.URL
	u.Path = path
	u.RawPath = ""

	out := req.Clone(req.Context())
	out.URL = u
	return out
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("module prefix cannot be empty")
	case !strings.HasPrefix(prefix, "/"):
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	case strings.Count(prefix, "/") != 1 || len(prefix) == 1:
		return fmt.Errorf("module prefix must be a single-level sub-path: %s", prefix)
	}
	return nil
}
