package interview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (m *machine) Await(ctx context.Context, id uuid.UUID, timeout time.Duration) (*Session, error) {
	if timeout <= 0 {
		timeout = m.cfg.AwaitTimeoutDuration()
	}

	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	interval := m.cfg.PollIntervalDuration()
	maxInterval := m.cfg.PollMaxIntervalDuration()

	for {
		s, err := m.store.Find(wctx, id)
		if err != nil {
			if wctx.Err() != nil && ctx.Err() == nil {
				return nil, fmt.Errorf("%w: %s after %v", ErrAwaitTimeout, id, timeout)
			}
			return nil, err
		}
		if !s.State.Busy() {
			return s, nil
		}

		timer := time.NewTimer(interval)
		select {
		case <-wctx.Done():
			timer.Stop()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(wctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s still %s after %v", ErrAwaitTimeout, id, s.State, timeout)
			}
			return nil, wctx.Err()
		case <-timer.C:
		}

		interval = min(interval*2, maxInterval)
	}
}
