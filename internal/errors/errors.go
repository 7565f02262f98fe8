package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

type appError struct {
	code    ErrorCode
	message string
	err     error
	data    any
}

// Error renders "message[: data][: cause]". The message falls back to the
// code's table entry.
func (e *appError) Error() string {
	parts := make([]string, 0, 3)

	if e.message != "" {
		parts = append(parts, e.message)
	} else {
		parts = append(parts, GetErrorMessage(e.code))
	}
	if e.data != nil {
		parts = append(parts, fmt.Sprint(e.data))
	}
	if e.err != nil {
		parts = append(parts, e.err.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *appError) Code() ErrorCode {
	return e.code
}

// Is matches by code, so New().New(code) works as a sentinel.
func (e *appError) Is(target error) bool {
	t, ok := target.(*appError)

	return ok && t.code == e.code
}

func (e *appError) WithMessage(msg string) Error {
	c := *e
	c.message = msg

	return &c
}

func (e *appError) WithData(data any) Error {
	c := *e
	c.data = data

	return &c
}

func (e *appError) GetData() any {
	return e.data
}

func (e *appError) Unwrap() error {
	return e.err
}

type factory struct{}

func (factory) New(code ErrorCode) Error {
	return &appError{code: code}
}

func (factory) Wrap(code ErrorCode, err error) Error {
	return &appError{code: code, err: err}
}

func (factory) WithMessage(code ErrorCode, msg string) Error {
	return &appError{code: code, message: msg}
}

func (factory) WithData(code ErrorCode, data any) Error {
	return &appError{code: code, data: data}
}

// New returns the error factory.
func New() Factory {
	return factory{}
}
