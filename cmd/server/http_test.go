package main

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/candor/internal/config"
	"github.com/JaimeStill/candor/pkg/lifecycle"
)

func TestHTTPServerStart(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	})
	cfg := &config.ServerConfig{Host: "127.0.0.1", Port: 0, ShutdownTimeout: "1s"}

	lc := lifecycle.New()
	srv := newHTTPServer(cfg, handler, logger)
	if err := srv.Start(lc); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	resp, err := http.Get("http://" + srv.addr)
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q", body)
	}

	taken := newHTTPServer(cfg, handler, logger)
	taken.http.Addr = srv.addr
	err = taken.Start(lifecycle.New())
	if err == nil || !strings.Contains(err.Error(), "listen") {
		t.Errorf("Start on a bound address err = %v, want listen error", err)
	}

	if err := lc.Shutdown(time.Second); err != nil {
		t.Errorf("Shutdown error: %v", err)
	}
	if _, err := http.Get("http://" + srv.addr); err == nil {
		t.Error("server still accepting after shutdown")
	}
}
