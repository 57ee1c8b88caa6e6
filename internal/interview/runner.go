package interview

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/candor/pkg/lifecycle"
)

// Runner executes automatic blocks in the background. Runs are bound to the
// lifecycle context, so shutdown interrupts them and leaves their sessions
// busy; Start resumes such sessions on the next boot.
type Runner struct {
	sys    System
	logger *slog.Logger
	ctx    context.Context
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewRunner creates a runner for sys.
func NewRunner(sys System, logger *slog.Logger) *Runner {
	return &Runner{
		sys:    sys,
		logger: logger.With("system", "runner"),
		ctx:    context.Background(),
	}
}

// Start registers resume-on-startup and wait-on-shutdown hooks.
func (r *Runner) Start(lc *lifecycle.Coordinator) error {
	r.ctx = lc.Context()

	lc.OnStartup("session resume", func() {
		ids, err := r.sys.Pending(r.ctx)
		if err != nil {
			r.logger.Error("list pending sessions failed", "error", err)
			return
		}
		for _, id := range ids {
			r.Dispatch(id)
		}
		if len(ids) > 0 {
			r.logger.Info("resuming sessions", "count", len(ids))
		}
	})

	lc.OnShutdown("session runner", func() {
		<-lc.Context().Done()
		r.Close()
		r.logger.Info("runner stopped")
	})

	return nil
}

// Dispatch advances a session in the background. After Close, or once the
// lifecycle context is cancelled, it does nothing and the session stays busy
// until the next Start resumes it.
func (r *Runner) Dispatch(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.ctx.Err() != nil {
		r.logger.Warn("dispatch skipped, runner stopping", "id", id)
		return
	}

	r.wg.Go(func() {
		s, err := r.sys.Advance(r.ctx, id)
		if err != nil {
			r.logger.Warn("advance failed", "id", id, "error", err)
			return
		}
		r.logger.Info("advance finished", "id", id, "state", s.State)
	})
}

// Wait blocks until every dispatched run returns.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Close rejects further dispatches and waits for running ones.
func (r *Runner) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.wg.Wait()
}
