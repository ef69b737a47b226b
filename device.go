//go:build !ios && !android && (amd64 || arm64)

package freenect

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/jamesdouma/libfreenect/internal/bindings"
	"github.com/jamesdouma/libfreenect/internal/handles"
)

// FrameHandler receives frame callbacks for one device.
//
// Both methods are invoked synchronously on the context's event pump
// goroutine, in device delivery order. The buffer is a borrowed view over
// driver memory and is valid only for the duration of the call; copy it if
// you need it afterwards. Handler code must be safe to run from the pump
// goroutine: blocking here stalls frame delivery for every device on the
// context.
type FrameHandler interface {
	// RGBFrame delivers one packed RGB frame (RGBFrameLen bytes) and the
	// device timestamp.
	RGBFrame(rgb []byte, timestamp uint32)

	// DepthFrame delivers one depth frame (DepthFrameLen uint16 samples)
	// and the device timestamp.
	DepthFrame(depth []uint16, timestamp uint32)
}

// HandlerFuncs adapts plain functions to FrameHandler. A nil field means
// frames of that type are dropped.
type HandlerFuncs struct {
	RGB   func(rgb []byte, timestamp uint32)
	Depth func(depth []uint16, timestamp uint32)
}

// RGBFrame implements FrameHandler.
func (h HandlerFuncs) RGBFrame(rgb []byte, timestamp uint32) {
	if h.RGB != nil {
		h.RGB(rgb, timestamp)
	}
}

// DepthFrame implements FrameHandler.
func (h HandlerFuncs) DepthFrame(depth []uint16, timestamp uint32) {
	if h.Depth != nil {
		h.Depth(depth, timestamp)
	}
}

// Device is one opened sensing unit: RGB camera, depth sensor, accelerometer
// and tilt motor. Devices are created through Context.OpenDevice and closed
// through Context.CloseDevice or Context.Close; the context owns them.
//
// Control methods may be called from any goroutine. Frame callbacks arrive
// on the context's pump goroutine via the configured FrameHandler.
type Device struct {
	drv     driver
	dev     uintptr // driver-side device handle
	index   int
	handle  uintptr // handles registry ID, mirrored to the driver via setUser
	handler FrameHandler

	// mu serializes close against control calls and in-flight frame
	// dispatch: dispatch and control take the read side, close takes the
	// write side, so a device is never freed under a running callback.
	mu     sync.RWMutex
	closed bool
}

// openDevice opens the driver device at index and wires its callbacks.
func openDevice(drv driver, ctx uintptr, index int, handler FrameHandler) (*Device, error) {
	dev, code := drv.openDevice(ctx, index)
	if err := newError(KindDeviceOpen, "freenect_open_device", index, code); err != nil {
		return nil, err
	}

	d := &Device{
		drv:     drv,
		dev:     dev,
		index:   index,
		handler: handler,
	}

	// The driver-side user pointer carries the registry handle for the
	// whole life of the device; the frame trampolines resolve it back to d.
	d.handle = handles.Register(d)
	drv.setUser(dev, d.handle)

	_ = drv.setRGBFormat(dev, RGBFormatRGB)
	_ = drv.setDepthFormat(dev, DepthFormat11Bit)
	drv.installCallbacks(dev)

	return d, nil
}

// Index returns the device index this handle was opened at.
func (d *Device) Index() int {
	return d.index
}

// StartRGB enables the RGB stream.
func (d *Device) StartRGB() error {
	return d.control(KindStreamControl, "freenect_start_rgb", d.drv.startRGB)
}

// StopRGB disables the RGB stream.
func (d *Device) StopRGB() error {
	return d.control(KindStreamControl, "freenect_stop_rgb", d.drv.stopRGB)
}

// StartDepth enables the depth stream.
func (d *Device) StartDepth() error {
	return d.control(KindStreamControl, "freenect_start_depth", d.drv.startDepth)
}

// StopDepth disables the depth stream.
func (d *Device) StopDepth() error {
	return d.control(KindStreamControl, "freenect_stop_depth", d.drv.stopDepth)
}

// SetTiltDegrees commands the tilt motor to the given angle in degrees.
// The call returns once the driver accepts the command; it does not wait
// for the physical motion to complete.
func (d *Device) SetTiltDegrees(angle float64) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDeviceClosed
	}
	return newError(KindTilt, "freenect_set_tilt_degs", d.index, d.drv.setTiltDegrees(d.dev, angle))
}

// SetLED sets the device LED state.
func (d *Device) SetLED(option LEDOption) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDeviceClosed
	}
	return newError(KindLED, "freenect_set_led", d.index, d.drv.setLED(d.dev, option))
}

// Accelerometers reads the accelerometer in meters per second squared.
func (d *Device) Accelerometers() (x, y, z float64, err error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return 0, 0, 0, ErrDeviceClosed
	}
	x, y, z, code := d.drv.mksAccel(d.dev)
	if err := newError(KindAccelRead, "freenect_get_mks_accel", d.index, code); err != nil {
		return 0, 0, 0, err
	}
	return x, y, z, nil
}

// RawAccelerometers reads the accelerometer in raw sensor counts
// (CountsPerG counts per standard gravity).
func (d *Device) RawAccelerometers() (x, y, z int16, err error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return 0, 0, 0, ErrDeviceClosed
	}
	x, y, z, code := d.drv.rawAccel(d.dev)
	if err := newError(KindAccelRead, "freenect_get_raw_accel", d.index, code); err != nil {
		return 0, 0, 0, err
	}
	return x, y, z, nil
}

func (d *Device) control(kind Kind, op string, call func(uintptr) int32) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDeviceClosed
	}
	return newError(kind, op, d.index, call(d.dev))
}

// close shuts the driver device down. The write lock waits out any frame
// dispatch in flight, so the handle is never freed under a running callback.
// Streams should be stopped first; the driver rejects the close otherwise.
func (d *Device) close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	handles.Unregister(d.handle)
	return newError(KindDeviceClose, "freenect_close_device", d.index, d.drv.closeDevice(d.dev))
}

// dispatchDepth forwards one depth frame to the handler. Runs on the pump
// goroutine. Frames arriving after close are dropped.
func (d *Device) dispatchDepth(depth []uint16, timestamp uint32) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	d.handler.DepthFrame(depth, timestamp)
}

// dispatchRGB forwards one RGB frame to the handler. Runs on the pump
// goroutine. Frames arriving after close are dropped.
func (d *Device) dispatchRGB(rgb []byte, timestamp uint32) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	d.handler.RGBFrame(rgb, timestamp)
}

// deviceForHandle resolves a registry handle back to the owning device.
func deviceForHandle(h uintptr) *Device {
	d, _ := handles.Lookup(h).(*Device)
	return d
}

// Frame trampolines. The driver's callback signature carries only the raw
// device pointer, so the trampoline asks the driver for the user handle it
// stored at open time and resolves it through the handles registry. Created
// once per process; shared by every device.
var (
	frameCBOnce sync.Once
	depthCBPtr  uintptr
	rgbCBPtr    uintptr
)

func frameCallbackPointers() (depth, rgb uintptr) {
	frameCBOnce.Do(func() {
		depthCBPtr = purego.NewCallback(func(_ purego.CDecl, dev unsafe.Pointer, data *uint16, timestamp uint32) {
			d := deviceForHandle(bindings.GetUser(uintptr(dev)))
			if d == nil || data == nil {
				return
			}
			d.dispatchDepth(unsafe.Slice(data, DepthFrameLen), timestamp)
		})
		rgbCBPtr = purego.NewCallback(func(_ purego.CDecl, dev unsafe.Pointer, data *byte, timestamp uint32) {
			d := deviceForHandle(bindings.GetUser(uintptr(dev)))
			if d == nil || data == nil {
				return
			}
			d.dispatchRGB(unsafe.Slice(data, RGBFrameLen), timestamp)
		})
	})
	return depthCBPtr, rgbCBPtr
}
