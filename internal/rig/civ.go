package rig

import (
	"context"
	"fmt"
	"io"
	"time"

	"codeberg.org/mutker/rigsnr/internal/errors"
	"codeberg.org/mutker/rigsnr/internal/logger"
	"go.bug.st/serial"
)

const (
	civPreamble   = 0xFE
	civEnd        = 0xFD
	civController = 0xE0
	civNG         = 0xFA

	civCmdMeter  = 0x15
	civSubSMeter = 0x02

	civPortReadTimeout = 20 * time.Millisecond
	civReplyTimeout    = 250 * time.Millisecond
)

type civFrame struct {
	to, from byte
	cmd      byte
	data     []byte
}

func (f civFrame) bytes() []byte {
	b := make([]byte, 0, 6+len(f.data))
	b = append(b, civPreamble, civPreamble, f.to, f.from, f.cmd)
	b = append(b, f.data...)

	return append(b, civEnd)
}

// civ talks to Icom radios over the CI-V bus.
type civ struct {
	addr     byte
	cal      calTable
	timeout  time.Duration
	port     io.ReadWriteCloser
	pending  []byte
	openPort func(name string, baud int) (io.ReadWriteCloser, error)
	logger   logger.Logger
}

func newCIV(addr byte, log logger.Logger) *civ {
	return &civ{
		addr:     addr,
		cal:      icomMeterCal,
		timeout:  civReplyTimeout,
		openPort: openSerial,
		logger:   log,
	}
}

func openSerial(name string, baud int) (io.ReadWriteCloser, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		Parity:   serial.NoParity,
		DataBits: 8,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}

	if err := port.SetReadTimeout(civPortReadTimeout); err != nil {
		port.Close()
		return nil, err
	}

	if err := port.ResetInputBuffer(); err != nil {
		port.Close()
		return nil, err
	}

	return port, nil
}

func (c *civ) open(port string, baud int) error {
	p, err := c.openPort(port, baud)
	if err != nil {
		return err
	}
	c.port = p

	c.logger.Debug().
		Str("port", port).
		Int("baud", baud).
		Str("address", hexByte(c.addr)).
		Msg("CI-V port opened")

	return nil
}

func (c *civ) strength(ctx context.Context) (int, error) {
	errFactory := errors.New()

	if c.port == nil {
		return 0, errFactory.New(ErrNotOpen)
	}

	// Anything buffered belongs to an earlier, abandoned exchange.
	c.pending = c.pending[:0]

	req := civFrame{to: c.addr, from: civController, cmd: civCmdMeter, data: []byte{civSubSMeter}}
	if _, err := c.port.Write(req.bytes()); err != nil {
		return 0, err
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	for {
		frame, err := c.readFrame(deadline)
		if err != nil {
			return 0, err
		}

		if frame.to != civController || frame.from != c.addr {
			// Echo of our own request, or traffic for another controller.
			continue
		}

		if frame.cmd == civNG {
			return 0, errFactory.New(ErrRejected)
		}

		if frame.cmd != civCmdMeter || len(frame.data) < 3 || frame.data[0] != civSubSMeter {
			c.logger.Debug().Str("cmd", hexByte(frame.cmd)).Msg("Skipping unsolicited CI-V frame")
			continue
		}

		raw, err := decodeBCD(frame.data[1:3])
		if err != nil {
			return 0, err
		}

		db := c.cal.interpolate(raw)
		c.logger.Debug().Int("raw", raw).Int("db", db).Msg("S-meter reading")

		return db, nil
	}
}

func (c *civ) readFrame(deadline time.Time) (civFrame, error) {
	buf := make([]byte, 64)
	for {
		if frame, ok := c.nextFrame(); ok {
			return frame, nil
		}

		if !time.Now().Before(deadline) {
			return civFrame{}, errors.New().New(ErrTimeout)
		}

		n, err := c.port.Read(buf)
		if err != nil {
			return civFrame{}, err
		}
		c.pending = append(c.pending, buf[:n]...)
	}
}

// nextFrame extracts the first complete frame from pending, dropping any
// leading garbage and malformed frames.
func (c *civ) nextFrame() (civFrame, bool) {
	for {
		start := -1
		for i := 0; i+1 < len(c.pending); i++ {
			if c.pending[i] == civPreamble && c.pending[i+1] == civPreamble {
				start = i
				break
			}
		}
		if start < 0 {
			return civFrame{}, false
		}

		body := start + 2
		for body < len(c.pending) && c.pending[body] == civPreamble {
			body++
		}

		end := -1
		for i := body; i < len(c.pending); i++ {
			if c.pending[i] == civEnd {
				end = i
				break
			}
		}
		if end < 0 {
			c.pending = c.pending[start:]
			return civFrame{}, false
		}

		payload := c.pending[body:end]
		c.pending = c.pending[end+1:]

		if len(payload) < 3 {
			continue
		}

		return civFrame{
			to:   payload[0],
			from: payload[1],
			cmd:  payload[2],
			data: append([]byte(nil), payload[3:]...),
		}, true
	}
}

func (c *civ) close() error {
	if c.port == nil {
		return nil
	}

	err := c.port.Close()
	c.port = nil

	return err
}

func decodeBCD(b []byte) (int, error) {
	value := 0
	for _, v := range b {
		hi, lo := int(v>>4), int(v&0x0F)
		if hi > 9 || lo > 9 {
			return 0, errors.New().WithData(ErrBadReply, hexByte(v))
		}
		value = value*100 + hi*10 + lo
	}

	return value, nil
}

func hexByte(b byte) string {
	return fmt.Sprintf("0x%02X", b)
}
