//go:build !ios && !android && (amd64 || arm64)

package freenect

import (
	"github.com/jamesdouma/libfreenect/internal/bindings"
)

// driver is the surface this package consumes from the native libfreenect
// library. Each method mirrors one driver call and returns its raw status
// code; negative means failure. Factoring the surface out keeps the
// lifecycle and threading contract testable without hardware attached.
type driver interface {
	init() (ctx uintptr, code int32)
	shutdown(ctx uintptr) int32
	setLogLevel(ctx uintptr, level LogLevel)
	installLogCallback(ctx uintptr)
	processEvents(ctx uintptr) int32
	numDevices(ctx uintptr) int32
	openDevice(ctx uintptr, index int) (dev uintptr, code int32)
	closeDevice(dev uintptr) int32
	setUser(dev uintptr, handle uintptr)
	getUser(dev uintptr) uintptr
	installCallbacks(dev uintptr)
	setRGBFormat(dev uintptr, format RGBFormat) int32
	setDepthFormat(dev uintptr, format DepthFormat) int32
	startRGB(dev uintptr) int32
	stopRGB(dev uintptr) int32
	startDepth(dev uintptr) int32
	stopDepth(dev uintptr) int32
	setTiltDegrees(dev uintptr, angle float64) int32
	setLED(dev uintptr, option LEDOption) int32
	mksAccel(dev uintptr) (x, y, z float64, code int32)
	rawAccel(dev uintptr) (x, y, z int16, code int32)
}

// usbDriver is the production driver, backed by the loaded libfreenect
// shared library.
type usbDriver struct{}

func (usbDriver) init() (uintptr, int32) {
	return bindings.Init()
}

func (usbDriver) shutdown(ctx uintptr) int32 {
	return bindings.Shutdown(ctx)
}

func (usbDriver) setLogLevel(ctx uintptr, level LogLevel) {
	bindings.SetLogLevel(ctx, int32(level))
}

func (usbDriver) installLogCallback(ctx uintptr) {
	bindings.SetLogCallback(ctx, logCallbackPointer())
}

func (usbDriver) processEvents(ctx uintptr) int32 {
	return bindings.ProcessEvents(ctx)
}

func (usbDriver) numDevices(ctx uintptr) int32 {
	return bindings.NumDevices(ctx)
}

func (usbDriver) openDevice(ctx uintptr, index int) (uintptr, int32) {
	return bindings.OpenDevice(ctx, int32(index))
}

func (usbDriver) closeDevice(dev uintptr) int32 {
	return bindings.CloseDevice(dev)
}

func (usbDriver) setUser(dev uintptr, handle uintptr) {
	bindings.SetUser(dev, handle)
}

func (usbDriver) getUser(dev uintptr) uintptr {
	return bindings.GetUser(dev)
}

func (usbDriver) installCallbacks(dev uintptr) {
	depthCB, rgbCB := frameCallbackPointers()
	bindings.SetDepthCallback(dev, depthCB)
	bindings.SetRGBCallback(dev, rgbCB)
}

func (usbDriver) setRGBFormat(dev uintptr, format RGBFormat) int32 {
	return bindings.SetRGBFormat(dev, int32(format))
}

func (usbDriver) setDepthFormat(dev uintptr, format DepthFormat) int32 {
	return bindings.SetDepthFormat(dev, int32(format))
}

func (usbDriver) startRGB(dev uintptr) int32 {
	return bindings.StartRGB(dev)
}

func (usbDriver) stopRGB(dev uintptr) int32 {
	return bindings.StopRGB(dev)
}

func (usbDriver) startDepth(dev uintptr) int32 {
	return bindings.StartDepth(dev)
}

func (usbDriver) stopDepth(dev uintptr) int32 {
	return bindings.StopDepth(dev)
}

func (usbDriver) setTiltDegrees(dev uintptr, angle float64) int32 {
	return bindings.SetTiltDegs(dev, angle)
}

func (usbDriver) setLED(dev uintptr, option LEDOption) int32 {
	return bindings.SetLed(dev, int32(option))
}

func (usbDriver) mksAccel(dev uintptr) (x, y, z float64, code int32) {
	return bindings.GetMKSAccel(dev)
}

func (usbDriver) rawAccel(dev uintptr) (x, y, z int16, code int32) {
	return bindings.GetRawAccel(dev)
}
