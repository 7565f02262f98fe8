// Package console draws the readout line and supplies raw key events.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"codeberg.org/mutker/rigsnr/internal/errors"
	"codeberg.org/mutker/rigsnr/internal/meter"
)

// FormatLine renders metrics as the fixed-width readout text.
func FormatLine(m meter.Metrics) string {
	return fmt.Sprintf("SNR: %7.2f DNR: %7.2f", m.SNR, m.DNR)
}

// LineRenderer writes the readout to out. In place mode rewrites a single
// line with backspaces; otherwise every update is its own line.
type LineRenderer struct {
	mu      sync.Mutex
	out     io.Writer
	inPlace bool
	width   int
}

func NewLineRenderer(out io.Writer, inPlace bool) *LineRenderer {
	return &LineRenderer{out: out, inPlace: inPlace}
}

// Render replaces the current readout with m.
func (r *LineRenderer) Render(m meter.Metrics) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := FormatLine(m)
	if !r.inPlace {
		return r.write(line + "\n")
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("\b", r.width))
	b.WriteString(line)
	if pad := r.width - len(line); pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
		b.WriteString(strings.Repeat("\b", pad))
	}

	if err := r.write(b.String()); err != nil {
		return err
	}
	r.width = len(line)

	return nil
}

// Newline ends the current readout line. The next Render starts below it.
// In line mode every update is already terminated, so nothing is written.
func (r *LineRenderer) Newline() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.inPlace {
		return nil
	}
	r.width = 0

	return r.write("\n")
}

// Close ends a readout line left open by in place rendering.
func (r *LineRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.width == 0 {
		return nil
	}
	r.width = 0

	return r.write("\n")
}

func (r *LineRenderer) write(s string) error {
	if _, err := io.WriteString(r.out, s); err != nil {
		return errors.New().Wrap(errors.ErrRender, err)
	}

	return nil
}
