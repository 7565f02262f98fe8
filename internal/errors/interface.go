// Package errors provides coded errors. Each package declares its codes as
// ErrorCode constants; callers branch on codes, not on message text.
package errors

// ErrorCode identifies a failure kind, e.g. "rig_open_failed".
type ErrorCode string

// Error is a coded error. Data is attached context such as a device path
// or a rejected value and is rendered between the message and the cause.
type Error interface {
	error
	Code() ErrorCode
	WithMessage(msg string) Error
	WithData(data any) Error
	GetData() any
	Unwrap() error
}

// Factory builds coded errors.
type Factory interface {
	New(code ErrorCode) Error
	Wrap(code ErrorCode, err error) Error
	WithMessage(code ErrorCode, msg string) Error
	WithData(code ErrorCode, data any) Error
}
