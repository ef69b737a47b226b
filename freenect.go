//go:build !ios && !android && (amd64 || arm64)

// Package freenect provides Go bindings to the libfreenect driver for
// Kinect-class motion-sensing devices: RGB camera, depth sensor,
// accelerometer, tilt motor and LED. It uses purego, so no CGO is required.
//
// A Context owns the driver and a single background goroutine that pumps the
// driver's event queue; frame callbacks are delivered on that goroutine
// through a FrameHandler. Devices are opened and closed through the Context:
//
//	ctx, err := freenect.NewContext()
//	...
//	dev, err := ctx.OpenDevice(0, freenect.HandlerFuncs{
//		Depth: func(depth []uint16, timestamp uint32) {
//			// Borrowed buffer: copy before the callback returns.
//		},
//	})
//	...
//	err = dev.StartDepth()
//	...
//	defer ctx.Close()
package freenect

import (
	"github.com/jamesdouma/libfreenect/internal/bindings"
)

// Init loads the libfreenect shared library. It is called automatically by
// NewContext, but can be called explicitly to check for errors up front.
// Safe to call multiple times.
func Init() error {
	return bindings.Load()
}

// IsLoaded returns true if the libfreenect library has been successfully
// loaded.
func IsLoaded() bool {
	return bindings.IsLoaded()
}
