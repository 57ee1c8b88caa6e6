package module

import (
	"fmt"
	"net/http"
	"strings"
)

// Router dispatches on the first path segment to a mounted Module and
// falls back to a plain ServeMux for everything else (health probes).
type Router struct {
	modules map[string]*Module
	native  *http.ServeMux
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{
		modules: make(map[string]*Module),
		native:  http.NewServeMux(),
	}
}

// HandleNative registers a handler on the fallback mux.
func (r *Router) HandleNative(pattern string, handler http.HandlerFunc) {
	r.native.HandleFunc(pattern, handler)
}

// Mount registers m under its prefix. Mounting two modules on the same
// prefix is an error.
func (r *Router) Mount(m *Module) error {
	if _, ok := r.modules[m.prefix]; ok {
		return fmt.Errorf("module prefix already mounted: %s", m.prefix)
	}
	r.modules[m.prefix] = m
	return nil
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Path
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
		req = withPath(req, path)
	}

	if m, ok := r.modules[firstSegment(path)]; ok {
		m.ServeHTTP(w, req)
		return
	}
	r.native.ServeHTTP(w, req)
}

func firstSegment(path string) string {
	rest := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return "/" + rest
}
