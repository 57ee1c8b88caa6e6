// Package lifecycle coordinates startup and shutdown hooks across subsystems.
package lifecycle

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ReadinessChecker reports whether a subsystem is ready to serve traffic.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator runs named startup hooks immediately and named shutdown hooks
// until they observe cancellation of its context.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc

	startup  sync.WaitGroup
	shutdown sync.WaitGroup
	ready    atomic.Bool

	mu      sync.Mutex
	pending map[string]int
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[string]int),
	}
}

// Context returns the coordinator's context, cancelled on shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn concurrently; WaitForStartup blocks until it returns.
func (c *Coordinator) OnStartup(name string, fn func()) {
	c.startup.Go(c.track("startup "+name, fn))
}

// OnShutdown runs fn concurrently. The hook should block on
// <-c.Context().Done() before cleaning up.
func (c *Coordinator) OnShutdown(name string, fn func()) {
	c.shutdown.Go(c.track(name, fn))
}

// Ready reports whether every startup hook has completed.
func (c *Coordinator) Ready() bool {
	return c.ready.Load()
}

// WaitForStartup blocks until all startup hooks have completed and marks the
// coordinator ready.
func (c *Coordinator) WaitForStartup() {
	c.startup.Wait()
	c.ready.Store(true)
}

// Shutdown cancels the context and waits up to timeout for shutdown hooks.
// On timeout the error names the hooks that are still running.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.ready.Store(false)
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdown.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("shutdown timeout after %v: waiting on %s", timeout, c.running())
	}
}

func (c *Coordinator) track(name string, fn func()) func() {
	c.mu.Lock()
	c.pending[name]++
	c.mu.Unlock()

	return func() {
		defer func() {
			c.mu.Lock()
			if c.pending[name]--; c.pending[name] == 0 {
				delete(c.pending, name)
			}
			c.mu.Unlock()
		}()
		fn()
	}
}

func (c *Coordinator) running() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.pending))
	for name := range c.pending {
		if !strings.HasPrefix(name, "startup ") {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}
