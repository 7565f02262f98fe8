package console

import (
	"os"

	"codeberg.org/mutker/rigsnr/internal/errors"
	"github.com/charmbracelet/x/term"
	"github.com/eiannone/keyboard"
)

const keyBuffer = 8

// Keyboard puts the terminal in raw mode and delivers key events.
type Keyboard struct {
	events <-chan keyboard.KeyEvent
}

// OpenKeyboard starts reading keys from the controlling terminal.
func OpenKeyboard() (*Keyboard, error) {
	events, err := keyboard.GetKeys(keyBuffer)
	if err != nil {
		return nil, errors.New().Wrap(errors.ErrKeyboard, err)
	}

	return &Keyboard{events: events}, nil
}

// Events returns the key event stream. It is nil for a nil Keyboard.
func (k *Keyboard) Events() <-chan keyboard.KeyEvent {
	if k == nil {
		return nil
	}

	return k.events
}

// Close restores the terminal.
func (k *Keyboard) Close() error {
	if k == nil {
		return nil
	}

	if err := keyboard.Close(); err != nil {
		return errors.New().Wrap(errors.ErrKeyboard, err)
	}

	return nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(f.Fd())
}
