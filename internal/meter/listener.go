package meter

import (
	"context"
	"time"

	"codeberg.org/mutker/rigsnr/internal/errors"
	"codeberg.org/mutker/rigsnr/internal/logger"
	"github.com/eiannone/keyboard"
)

// Resetter starts a new measurement window.
type Resetter interface {
	Reset()
}

// Stopper clears the run flag.
type Stopper interface {
	Stop() bool
}

// LineBreaker ends the readout line so the next one starts fresh.
type LineBreaker interface {
	Newline() error
}

// Listener turns raw key events into control actions: Enter resets the
// extremes, Ctrl-C stops the session. Other keys are ignored.
type Listener struct {
	events   <-chan keyboard.KeyEvent
	resetter Resetter
	stopper  Stopper
	out      LineBreaker
	interval time.Duration
	logger   logger.Logger
}

// NewListener reads from events. A nil channel never delivers, leaving
// shutdown to the session context.
func NewListener(
	events <-chan keyboard.KeyEvent,
	resetter Resetter,
	stopper Stopper,
	out LineBreaker,
	interval time.Duration,
	log logger.Logger,
) *Listener {
	return &Listener{
		events:   events,
		resetter: resetter,
		stopper:  stopper,
		out:      out,
		interval: interval,
		logger:   log,
	}
}

// Run handles key events until the session stops, the cancel key is
// pressed, or the event source fails.
func (l *Listener) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-l.events:
			if !ok {
				return nil
			}

			if ev.Err != nil {
				return errors.New().Wrap(errors.ErrKeyboard, ev.Err)
			}

			if l.handle(ev) {
				return nil
			}
		}

		if !wait(ctx, l.interval) {
			return nil
		}
	}
}

// handle reports whether the listener should exit.
func (l *Listener) handle(ev keyboard.KeyEvent) bool {
	switch ev.Key {
	case keyboard.KeyEnter:
		l.newline()
		l.resetter.Reset()
		l.logger.Debug().Msg("Extremes reset")
	case keyboard.KeyCtrlC:
		l.newline()
		if l.stopper.Stop() {
			l.logger.Info().Msg("Shutdown requested")
		}

		return true
	}

	return false
}

func (l *Listener) newline() {
	if err := l.out.Newline(); err != nil {
		l.logger.Warn().Err(err).Msg("Failed to end readout line")
	}
}
