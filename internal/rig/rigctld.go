package rig

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"codeberg.org/mutker/rigsnr/internal/errors"
	"codeberg.org/mutker/rigsnr/internal/logger"
)

const (
	rigctldDefaultHost = "localhost"
	rigctldDefaultPort = "4532"
	rigctldDialTimeout = 2 * time.Second
	rigctldTimeout     = 250 * time.Millisecond
)

// rigctld reads the S-meter through a hamlib rigctld daemon.
type rigctld struct {
	addr    string
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration
	logger  logger.Logger
}

func newRigctld(log logger.Logger) *rigctld {
	return &rigctld{
		timeout: rigctldTimeout,
		logger:  log,
	}
}

func rigctldAddress(port string) string {
	if port == "" {
		return net.JoinHostPort(rigctldDefaultHost, rigctldDefaultPort)
	}

	if _, _, err := net.SplitHostPort(port); err != nil {
		return net.JoinHostPort(port, rigctldDefaultPort)
	}

	return port
}

func (r *rigctld) open(port string, _ int) error {
	r.addr = rigctldAddress(port)

	return r.dial()
}

func (r *rigctld) dial() error {
	conn, err := net.DialTimeout("tcp", r.addr, rigctldDialTimeout)
	if err != nil {
		return err
	}

	r.conn = conn
	r.reader = bufio.NewReader(conn)
	r.logger.Debug().Str("address", r.addr).Msg("Connected to rigctld")

	return nil
}

func (r *rigctld) strength(ctx context.Context) (int, error) {
	errFactory := errors.New()

	if r.addr == "" {
		return 0, errFactory.New(ErrNotOpen)
	}

	// A failed exchange may leave a late reply on the wire; start over on
	// a fresh connection instead.
	if r.conn == nil {
		if err := r.dial(); err != nil {
			return 0, err
		}
	}

	deadline := time.Now().Add(r.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	value, err := r.query(deadline)
	if err != nil {
		r.drop()
		return 0, err
	}

	return value, nil
}

func (r *rigctld) query(deadline time.Time) (int, error) {
	errFactory := errors.New()

	if err := r.conn.SetDeadline(deadline); err != nil {
		return 0, err
	}

	if _, err := r.conn.Write([]byte("l STRENGTH\n")); err != nil {
		return 0, err
	}

	line, err := r.reader.ReadString('\n')
	if err != nil {
		return 0, err
	}
	line = strings.TrimSpace(line)

	if strings.HasPrefix(line, "RPRT") {
		return 0, errFactory.WithData(ErrRejected, line)
	}

	value, err := strconv.Atoi(line)
	if err != nil {
		return 0, errFactory.Wrap(ErrBadReply, err)
	}

	r.logger.Debug().Int("db", value).Msg("S-meter reading")

	return value, nil
}

func (r *rigctld) drop() {
	if r.conn != nil {
		r.conn.Close()
	}
	r.conn = nil
	r.reader = nil
}

func (r *rigctld) close() error {
	if r.conn == nil {
		return nil
	}

	err := r.conn.Close()
	r.conn = nil
	r.reader = nil
	r.addr = ""

	return err
}
