//go:build !ios && !android && (amd64 || arm64)

package freenect

import (
	"errors"
	"fmt"
)

// Kind classifies a driver failure by the operation that produced it.
type Kind int

// One kind per failing driver operation.
const (
	KindInit Kind = iota + 1
	KindShutdown
	KindDeviceCount
	KindDeviceOpen
	KindDeviceClose
	KindStreamControl
	KindTilt
	KindLED
	KindAccelRead
	KindEventProcessing
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindInit:
		return "init"
	case KindShutdown:
		return "shutdown"
	case KindDeviceCount:
		return "device count"
	case KindDeviceOpen:
		return "device open"
	case KindDeviceClose:
		return "device close"
	case KindStreamControl:
		return "stream control"
	case KindTilt:
		return "tilt"
	case KindLED:
		return "led"
	case KindAccelRead:
		return "accelerometer read"
	case KindEventProcessing:
		return "event processing"
	default:
		return "unknown"
	}
}

// Common errors
var (
	// ErrContextClosed indicates the context has been torn down.
	ErrContextClosed = errors.New("freenect: context is closed")

	// ErrDeviceClosed indicates the device handle has been closed.
	ErrDeviceClosed = errors.New("freenect: device is closed")
)

// Error is a driver failure. It carries the failing driver call, the raw
// status code, and the device index where one applies (-1 otherwise).
type Error struct {
	Kind  Kind   // Failure classification
	Op    string // Driver call that failed
	Index int    // Device index, or -1 for context-level failures
	Code  int32  // Raw driver status code
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("freenect %s: %s failed on device %d (code %d)", e.Op, e.Kind, e.Index, e.Code)
	}
	return fmt.Sprintf("freenect %s: %s failed (code %d)", e.Op, e.Kind, e.Code)
}

// newError creates a driver error from a status code.
// Returns nil if code >= 0.
func newError(kind Kind, op string, index int, code int32) error {
	if code >= 0 {
		return nil
	}
	return &Error{
		Kind:  kind,
		Op:    op,
		Index: index,
		Code:  code,
	}
}

// ErrorKind returns the kind of a driver error, or 0 if err is not one.
func ErrorKind(err error) Kind {
	var fErr *Error
	if errors.As(err, &fErr) {
		return fErr.Kind
	}
	return 0
}

// Code returns the driver status code from an error, or 0 if err is not a
// driver error.
func Code(err error) int32 {
	var fErr *Error
	if errors.As(err, &fErr) {
		return fErr.Code
	}
	return 0
}
