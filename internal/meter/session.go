package meter

import (
	"context"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
)

// Activity is a long-running loop driven by the session context.
type Activity interface {
	Run(ctx context.Context) error
}

// Session owns the run flag shared by the polling and keyboard
// activities. The flag is a context: it starts live and is cancelled at
// most once.
type Session struct {
	ctx     context.Context
	cancel  context.CancelFunc
	stopped atomic.Bool
}

func NewSession(parent context.Context) *Session {
	ctx, cancel := context.WithCancel(parent)

	return &Session{ctx: ctx, cancel: cancel}
}

// Context is cancelled when the session stops.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Running reports whether the activities should keep going.
func (s *Session) Running() bool {
	return s.ctx.Err() == nil
}

// Stop requests shutdown. Only the first call has an effect; it returns
// true for that call.
func (s *Session) Stop() bool {
	if !s.stopped.CompareAndSwap(false, true) {
		return false
	}
	s.cancel()

	return true
}

// Run starts every activity and waits for all of them to return. An
// activity that fails stops the session so the others wind down too.
func (s *Session) Run(activities ...Activity) error {
	errs := make([]error, len(activities))

	var wg conc.WaitGroup
	for i, a := range activities {
		wg.Go(func() {
			if err := a.Run(s.ctx); err != nil {
				errs[i] = err
				s.Stop()
			}
		})
	}
	wg.Wait()
	s.cancel()

	return multierr.Combine(errs...)
}

// wait blocks for d or until ctx is done, reporting whether ctx is still
// live.
func wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
