package protocol

import "errors"

var (
	ErrInvalidPayload = errors.New("invalid payload size")
	ErrInvalidFrame   = errors.New("invalid frame")
	ErrBadChecksum    = errors.New("frame checksum mismatch")
	ErrUnknownType    = errors.New("unknown packet type")
	ErrInvalidAddress = errors.New("invalid node address (1 is reserved for the coordinator)")
	ErrTimeout        = errors.New("operation timed out")
	ErrInvalidChannel = errors.New("invalid channel (valid range: 0-125)")
)
