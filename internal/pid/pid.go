// Package pid guards a device against concurrent use by two meter processes.
package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"codeberg.org/mutker/rigsnr/internal/errors"
)

const prefix = "rigsnr-"

// Lock is a held pid file.
type Lock struct {
	path string
}

// FileName returns the pid file name for a device path.
func FileName(device string) string {
	name := strings.Trim(strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, device), "_")
	if name == "" {
		name = "default"
	}

	return prefix + name + ".pid"
}

// Acquire writes the current process ID to the device's pid file in the
// system temp directory.
func Acquire(device string) (*Lock, error) {
	return AcquireIn(os.TempDir(), device)
}

// AcquireIn is Acquire with an explicit directory. The file appears
// atomically with its content; a pid file left behind by a process that is
// no longer running is removed and creation is tried once more.
func AcquireIn(dir, device string) (*Lock, error) {
	errFactory := errors.New()
	path := filepath.Join(dir, FileName(device))

	for attempt := 0; ; attempt++ {
		err := create(path)
		if err == nil {
			return &Lock{path: path}, nil
		}
		if !os.IsExist(err) {
			return nil, errFactory.Wrap(errors.ErrInternal, err)
		}

		held, err := heldByLiveProcess(path)
		if err != nil {
			return nil, err
		}
		if held != 0 || attempt > 0 {
			return nil, errFactory.WithData(errors.ErrResourceBusy, map[string]any{
				"device": device,
				"pid":    held,
			})
		}

		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, errFactory.Wrap(errors.ErrInternal, err)
		}
	}
}

// create publishes a complete pid file at path, failing with an
// os.ErrExist error when one is already there.
func create(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".rigsnr-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Link(tmp.Name(), path)
}

// heldByLiveProcess returns the pid recorded in path when that process is
// still running, or 0.
func heldByLiveProcess(path string) (int, error) {
	bytes, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.New().Wrap(errors.ErrInternal, err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(bytes)))
	if err != nil || pid <= 0 {
		// Unreadable content is treated as stale.
		return 0, nil
	}
	if pid == os.Getpid() {
		return pid, nil
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return 0, nil
	}
	if err := process.Signal(syscall.Signal(0)); err != nil {
		return 0, nil
	}

	return pid, nil
}

// Path returns the pid file location.
func (l *Lock) Path() string {
	return l.path
}

// Release removes the pid file. Releasing a nil Lock is a no-op.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}

	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return errors.New().Wrap(errors.ErrInternal, err)
	}

	return nil
}
