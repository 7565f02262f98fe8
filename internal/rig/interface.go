package rig

import "context"

// backend is the transport behind a Rig.
type backend interface {
	open(port string, baud int) error
	strength(ctx context.Context) (int, error)
	close() error
}

// BackendKind names how a model is reached.
type BackendKind string

const (
	BackendDummy   BackendKind = "dummy"
	BackendRigctld BackendKind = "rigctld"
	BackendCIV     BackendKind = "civ"
)

// Model describes a supported radio.
type Model struct {
	ID           int
	Manufacturer string
	Name         string
	Backend      BackendKind
	// CIVAddress is the default CI-V bus address for Icom radios.
	CIVAddress  byte
	DefaultBaud int
}

// UsesSerialPort reports whether the model's port is a local serial device.
func (m Model) UsesSerialPort() bool {
	return m.Backend == BackendCIV
}
