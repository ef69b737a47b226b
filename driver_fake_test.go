//go:build !ios && !android && (amd64 || arm64)

package freenect

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// frameEvent is one pending frame delivery queued on the fake driver.
type frameEvent struct {
	dev       uintptr
	rgb       []byte
	depth     []uint16
	timestamp uint32
}

// fakeDriver implements the driver surface in memory. processEvents blocks
// briefly waiting for queued frames and delivers them synchronously, exactly
// like the native driver's event loop, so the pump goroutine contract can be
// tested without hardware.
type fakeDriver struct {
	mu          sync.Mutex
	attached    int32
	failOpen    map[int]int32
	tiltCode    int32
	ledCode     int32
	accelCode   int32
	closeCode   int32
	shutdownOut int32

	nextDev  uintptr
	openDevs map[uintptr]int
	users    map[uintptr]uintptr
	rgbOn    map[uintptr]bool
	depthOn  map[uintptr]bool
	tilt     map[uintptr]float64
	led      map[uintptr]LEDOption

	rawX, rawY, rawZ int16

	// teardown order as seen by the driver: "close <index>", "shutdown"
	calls []string

	processCode atomic.Int32
	inPump      atomic.Bool
	events      chan frameEvent
}

func newFakeDriver(attached int32) *fakeDriver {
	return &fakeDriver{
		attached: attached,
		failOpen: make(map[int]int32),
		nextDev:  0x1000,
		openDevs: make(map[uintptr]int),
		users:    make(map[uintptr]uintptr),
		rgbOn:    make(map[uintptr]bool),
		depthOn:  make(map[uintptr]bool),
		tilt:     make(map[uintptr]float64),
		led:      make(map[uintptr]LEDOption),
		events:   make(chan frameEvent, 16),
	}
}

func (f *fakeDriver) init() (uintptr, int32) {
	return 0xC0, 0
}

func (f *fakeDriver) shutdown(ctx uintptr) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "shutdown")
	return f.shutdownOut
}

func (f *fakeDriver) setLogLevel(ctx uintptr, level LogLevel) {}

func (f *fakeDriver) installLogCallback(ctx uintptr) {}

func (f *fakeDriver) processEvents(ctx uintptr) int32 {
	if code := f.processCode.Load(); code < 0 {
		return code
	}
	select {
	case ev := <-f.events:
		f.inPump.Store(true)
		defer f.inPump.Store(false)
		d := deviceForHandle(f.getUser(ev.dev))
		if d == nil {
			return 0
		}
		if ev.depth != nil {
			d.dispatchDepth(ev.depth, ev.timestamp)
		}
		if ev.rgb != nil {
			d.dispatchRGB(ev.rgb, ev.timestamp)
		}
	case <-time.After(time.Millisecond):
	}
	return 0
}

func (f *fakeDriver) numDevices(ctx uintptr) int32 {
	return f.attached
}

func (f *fakeDriver) openDevice(ctx uintptr, index int) (uintptr, int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if code, ok := f.failOpen[index]; ok {
		return 0, code
	}
	dev := f.nextDev
	f.nextDev++
	f.openDevs[dev] = index
	return dev, 0
}

func (f *fakeDriver) closeDevice(dev uintptr) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("close %d", f.openDevs[dev]))
	delete(f.openDevs, dev)
	delete(f.users, dev)
	return f.closeCode
}

func (f *fakeDriver) setUser(dev uintptr, handle uintptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[dev] = handle
}

func (f *fakeDriver) getUser(dev uintptr) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[dev]
}

func (f *fakeDriver) installCallbacks(dev uintptr) {}

func (f *fakeDriver) setRGBFormat(dev uintptr, format RGBFormat) int32 {
	return 0
}

func (f *fakeDriver) setDepthFormat(dev uintptr, format DepthFormat) int32 {
	return 0
}

func (f *fakeDriver) startRGB(dev uintptr) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rgbOn[dev] {
		return -1
	}
	f.rgbOn[dev] = true
	return 0
}

func (f *fakeDriver) stopRGB(dev uintptr) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.rgbOn[dev] {
		return -1
	}
	f.rgbOn[dev] = false
	return 0
}

func (f *fakeDriver) startDepth(dev uintptr) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.depthOn[dev] {
		return -1
	}
	f.depthOn[dev] = true
	return 0
}

func (f *fakeDriver) stopDepth(dev uintptr) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.depthOn[dev] {
		return -1
	}
	f.depthOn[dev] = false
	return 0
}

func (f *fakeDriver) setTiltDegrees(dev uintptr, angle float64) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tiltCode < 0 {
		return f.tiltCode
	}
	f.tilt[dev] = angle
	return 0
}

func (f *fakeDriver) setLED(dev uintptr, option LEDOption) int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ledCode < 0 {
		return f.ledCode
	}
	f.led[dev] = option
	return 0
}

func (f *fakeDriver) mksAccel(dev uintptr) (x, y, z float64, code int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.accelCode < 0 {
		return 0, 0, 0, f.accelCode
	}
	scale := GravityMKS / CountsPerG
	return float64(f.rawX) * scale, float64(f.rawY) * scale, float64(f.rawZ) * scale, 0
}

func (f *fakeDriver) rawAccel(dev uintptr) (x, y, z int16, code int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.accelCode < 0 {
		return 0, 0, 0, f.accelCode
	}
	return f.rawX, f.rawY, f.rawZ, 0
}

// queueDepth queues one depth frame for delivery by the pump goroutine.
func (f *fakeDriver) queueDepth(d *Device, depth []uint16, timestamp uint32) {
	f.events <- frameEvent{dev: d.dev, depth: depth, timestamp: timestamp}
}

// queueRGB queues one RGB frame for delivery by the pump goroutine.
func (f *fakeDriver) queueRGB(d *Device, rgb []byte, timestamp uint32) {
	f.events <- frameEvent{dev: d.dev, rgb: rgb, timestamp: timestamp}
}

// teardownCalls returns the close/shutdown order the driver observed.
func (f *fakeDriver) teardownCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}
