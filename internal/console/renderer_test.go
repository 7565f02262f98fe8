package console_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"codeberg.org/mutker/rigsnr/internal/console"
	"codeberg.org/mutker/rigsnr/internal/errors"
	"codeberg.org/mutker/rigsnr/internal/meter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	assert.Equal(t, "SNR:   15.04 DNR:   35.00", console.FormatLine(meter.Metrics{SNR: 15.0408, DNR: 35}))
	assert.Equal(t, "SNR:    0.00 DNR:    0.00", console.FormatLine(meter.Metrics{}))
}

func TestRenderInPlace(t *testing.T) {
	var buf bytes.Buffer
	r := console.NewLineRenderer(&buf, true)

	require.NoError(t, r.Render(meter.Metrics{}))
	first := buf.String()
	assert.Equal(t, "SNR:    0.00 DNR:    0.00", first)
	buf.Reset()

	require.NoError(t, r.Render(meter.Metrics{SNR: 15.0408, DNR: 35}))
	width := len(first)
	assert.Equal(t, strings.Repeat("\b", width)+"SNR:   15.04 DNR:   35.00", buf.String())
}

func TestRenderInPlaceErasesLongerLine(t *testing.T) {
	var buf bytes.Buffer
	r := console.NewLineRenderer(&buf, true)

	require.NoError(t, r.Render(meter.Metrics{SNR: 123456.78, DNR: 1}))
	long := buf.Len()
	buf.Reset()

	require.NoError(t, r.Render(meter.Metrics{SNR: 1, DNR: 1}))
	short := len(console.FormatLine(meter.Metrics{SNR: 1, DNR: 1}))
	pad := long - short
	require.Positive(t, pad)

	want := strings.Repeat("\b", long) + console.FormatLine(meter.Metrics{SNR: 1, DNR: 1}) +
		strings.Repeat(" ", pad) + strings.Repeat("\b", pad)
	assert.Equal(t, want, buf.String())
}

func TestRenderLineMode(t *testing.T) {
	var buf bytes.Buffer
	r := console.NewLineRenderer(&buf, false)

	require.NoError(t, r.Render(meter.Metrics{}))
	require.NoError(t, r.Render(meter.Metrics{SNR: 1, DNR: 2}))
	require.NoError(t, r.Close())

	assert.Equal(t, "SNR:    0.00 DNR:    0.00\nSNR:    1.00 DNR:    2.00\n", buf.String())
}

func TestNewlineStartsFreshLine(t *testing.T) {
	var buf bytes.Buffer
	r := console.NewLineRenderer(&buf, true)

	require.NoError(t, r.Render(meter.Metrics{}))
	require.NoError(t, r.Newline())
	buf.Reset()

	require.NoError(t, r.Render(meter.Metrics{SNR: 1, DNR: 2}))
	assert.Equal(t, "SNR:    1.00 DNR:    2.00", buf.String(), "no backspaces after a newline")
}

func TestCloseEndsOpenLine(t *testing.T) {
	var buf bytes.Buffer
	r := console.NewLineRenderer(&buf, true)

	require.NoError(t, r.Close())
	assert.Empty(t, buf.String())

	require.NoError(t, r.Render(meter.Metrics{}))
	require.NoError(t, r.Close())
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))

	buf.Reset()
	require.NoError(t, r.Close())
	assert.Empty(t, buf.String(), "already closed")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestRenderWriteError(t *testing.T) {
	r := console.NewLineRenderer(failingWriter{}, true)

	err := r.Render(meter.Metrics{})
	require.Error(t, err)

	code, ok := errors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrRender, code)
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestNewlineInLineModeAddsNoBlankLine(t *testing.T) {
	var buf bytes.Buffer
	r := console.NewLineRenderer(&buf, false)

	require.NoError(t, r.Render(meter.Metrics{}))
	require.NoError(t, r.Newline())
	require.NoError(t, r.Render(meter.Metrics{SNR: 1, DNR: 2}))
	require.NoError(t, r.Close())

	assert.Equal(t, "SNR:    0.00 DNR:    0.00\nSNR:    1.00 DNR:    2.00\n", buf.String())
}
