package routes

import (
	"fmt"
	"net/http"
)

// Group nests routes and child groups under a shared prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds every route in groups to mux and returns the full patterns
// in registration order. Nothing is registered when a route is invalid or a
// pattern repeats.
func Register(mux *http.ServeMux, groups ...Group) ([]string, error) {
	var (
		patterns []string
		handlers []http.HandlerFunc
	)
	seen := make(map[string]bool)

	var walk func(prefix string, g Group) error
	walk = func(prefix string, g Group) error {
		prefix += g.Prefix
		for _, r := range g.Routes {
			p, err := r.full(prefix)
			if err != nil {
				return err
			}
			if seen[p] {
				return fmt.Errorf("duplicate route: %s", p)
			}
			seen[p] = true
			patterns = append(patterns, p)
			handlers = append(handlers, r.Handler)
		}
		for _, child := range g.Children {
			if err := walk(prefix, child); err != nil {
				return err
			}
		}
		return nil
	}

	for _, g := range groups {
		if err := walk("", g); err != nil {
			return nil, err
		}
	}

	for i, p := range patterns {
		mux.HandleFunc(p, handlers[i])
	}
	return patterns, nil
}
