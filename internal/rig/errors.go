package rig

import "codeberg.org/mutker/rigsnr/internal/errors"

const (
	// Lifecycle Errors
	ErrInitFailed  = errors.ErrorCode("rig_init_failed")
	ErrOpenFailed  = errors.ErrorCode("rig_open_failed")
	ErrNotOpen     = errors.ErrorCode("rig_not_open")
	ErrAlreadyOpen = errors.ErrorCode("rig_already_open")
	ErrCloseFailed = errors.ErrorCode("rig_close_failed")

	// Read Errors
	ErrReadFailed = errors.ErrorCode("rig_read_failed")
	ErrTimeout    = errors.ErrorCode("rig_timeout")
	ErrRejected   = errors.ErrorCode("rig_command_rejected")
	ErrBadReply   = errors.ErrorCode("rig_bad_reply")
)
