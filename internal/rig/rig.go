// Package rig reads the S-meter of a radio through one of several
// transports, following hamlib's init/open/read lifecycle.
package rig

import (
	"context"
	"fmt"
	"sync"

	"codeberg.org/mutker/rigsnr/internal/errors"
	"codeberg.org/mutker/rigsnr/internal/logger"
	"github.com/rs/zerolog"
)

var (
	debugMu    sync.Mutex
	debugLevel = zerolog.Disabled
)

// SetDebug sets the verbosity of backend diagnostics for rigs created
// afterwards. "none" silences them.
func SetDebug(level string) error {
	lvl, err := logger.ParseLevel(level)
	if err != nil {
		return err
	}

	debugMu.Lock()
	debugLevel = lvl
	debugMu.Unlock()

	return nil
}

func debugLogger() logger.Logger {
	debugMu.Lock()
	defer debugMu.Unlock()

	return logger.Component("rig", debugLevel)
}

// Rig is an initialized radio handle.
type Rig struct {
	model  Model
	be     backend
	opened bool
	mu     sync.Mutex
	logger logger.Logger
}

// Init creates a handle for the given model ID.
func Init(modelID int) (*Rig, error) {
	errFactory := errors.New()

	model, ok := Lookup(modelID)
	if !ok {
		return nil, errFactory.WithData(ErrInitFailed, fmt.Sprintf("unknown model %d", modelID))
	}

	log := debugLogger()

	var be backend
	switch model.Backend {
	case BackendDummy:
		be = newDummy(dummySeed())
	case BackendRigctld:
		be = newRigctld(log)
	case BackendCIV:
		be = newCIV(model.CIVAddress, log)
	default:
		return nil, errFactory.WithData(ErrInitFailed, fmt.Sprintf("model %d has no backend", modelID))
	}

	log.Debug().Int("model", model.ID).Str("name", model.Name).Msg("Rig initialized")

	return &Rig{model: model, be: be, logger: log}, nil
}

// Model returns the model the rig was initialized with.
func (r *Rig) Model() Model {
	return r.model
}

// Open connects to the radio. A zero baud selects the model default.
func (r *Rig) Open(port string, baud int) error {
	errFactory := errors.New()
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.opened {
		return errFactory.New(ErrAlreadyOpen)
	}

	if baud == 0 {
		baud = r.model.DefaultBaud
	}

	if err := r.be.open(port, baud); err != nil {
		return errFactory.Wrap(ErrOpenFailed, fmt.Errorf("%s: %w", port, err))
	}
	r.opened = true

	return nil
}

// Strength reads the S-meter once. Every failure is reported as
// ErrReadFailed and may be retried.
func (r *Rig) Strength(ctx context.Context) (int, error) {
	errFactory := errors.New()
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.opened {
		return 0, errFactory.Wrap(ErrReadFailed, errFactory.New(ErrNotOpen))
	}

	value, err := r.be.strength(ctx)
	if err != nil {
		r.logger.Debug().Err(err).Msg("Strength read failed")
		return 0, errFactory.Wrap(ErrReadFailed, err)
	}

	return value, nil
}

// Close releases the transport. Closing an unopened rig is a no-op.
func (r *Rig) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.opened {
		return nil
	}
	r.opened = false

	if err := r.be.close(); err != nil {
		return errors.New().Wrap(ErrCloseFailed, err)
	}

	return nil
}
