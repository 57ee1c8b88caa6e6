package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/candor/pkg/routes"
)

func TestRegisterNestedGroups(t *testing.T) {
	hit := func(name string, got *string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			*got = name
		}
	}

	var called string
	mux := http.NewServeMux()

	patterns, err := routes.Register(mux, routes.Group{
		Prefix: "/sessions",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: hit("create", &called)},
			{Method: "GET", Pattern: "/{id}", Handler: hit("find", &called)},
		},
		Children: []routes.Group{{
			Prefix: "/{id}/transcript",
			Routes: []routes.Route{
				{Method: "PUT", Pattern: "", Handler: hit("edit", &called)},
				{Method: "POST", Pattern: "/confirm", Handler: hit("confirm", &called)},
			},
		}},
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if len(patterns) != 4 || patterns[3] != "POST /sessions/{id}/transcript/confirm" {
		t.Errorf("patterns = %v", patterns)
	}

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{"POST", "/sessions", "create"},
		{"GET", "/sessions/abc", "find"},
		{"PUT", "/sessions/abc/transcript", "edit"},
		{"POST", "/sessions/abc/transcript/confirm", "confirm"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			called = ""
			mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.path, nil))
			if called != tt.want {
				t.Errorf("%s %s: got %q, want %q", tt.method, tt.path, called, tt.want)
			}
		})
	}
}

func TestRegisterRejectsInvalidRoutes(t *testing.T) {
	ok := func(http.ResponseWriter, *http.Request) {}

	tests := []struct {
		name  string
		group routes.Group
	}{
		{"duplicate", routes.Group{Prefix: "/sessions", Routes: []routes.Route{
			{Method: "GET", Pattern: "/{id}", Handler: ok},
			{Method: "GET", Pattern: "/{id}", Handler: ok},
		}}},
		{"duplicate across children", routes.Group{
			Prefix: "/sessions",
			Routes: []routes.Route{{Method: "POST", Pattern: "/{id}/advance", Handler: ok}},
			Children: []routes.Group{{Prefix: "/{id}", Routes: []routes.Route{
				{Method: "POST", Pattern: "/advance", Handler: ok},
			}}},
		}},
		{"lowercase method", routes.Group{Routes: []routes.Route{{Method: "get", Pattern: "/x", Handler: ok}}}},
		{"nil handler", routes.Group{Routes: []routes.Route{{Method: "GET", Pattern: "/x"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			if _, err := routes.Register(mux, tt.group); err == nil {
				t.Fatal("expected error")
			}

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", "/x", nil))
			if rec.Code != http.StatusNotFound {
				t.Errorf("mux was partially populated: status %d", rec.Code)
			}
		})
	}
}
