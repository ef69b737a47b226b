//go:build !ios && !android && (amd64 || arm64)

package freenect

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/edaniels/golog"
	"go.uber.org/multierr"

	"github.com/jamesdouma/libfreenect/internal/bindings"
)

// Context owns the driver context, the registry of open devices, and the
// single event pump goroutine that drives frame delivery.
//
// One pump goroutine exists per Context for its entire lifetime. It is the
// only goroutine that calls the driver's event processing, and therefore the
// only goroutine frame callbacks ever run on. Everything else (opening and
// closing devices, stream control, teardown) happens on the caller's
// goroutine as a synchronous round-trip into the driver.
type Context struct {
	drv      driver
	logger   golog.Logger
	logLevel LogLevel

	ctx uintptr // driver context handle

	mu      sync.Mutex
	devices map[int]*Device
	closed  bool

	stop    atomic.Bool
	done    chan struct{}
	pumpErr error // written by the pump goroutine before done is closed
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger used for pump failures, teardown, and driver
// log messages. Defaults to golog.Global.
func WithLogger(logger golog.Logger) Option {
	return func(c *Context) {
		c.logger = logger
	}
}

// WithLogLevel sets the driver's internal log verbosity.
// Defaults to LogInfo.
func WithLogLevel(level LogLevel) Option {
	return func(c *Context) {
		c.logLevel = level
	}
}

// NewContext loads the driver library if needed, initializes a driver
// context, and starts its event pump goroutine. Callers must Close the
// returned context to stop the pump and release the driver.
func NewContext(opts ...Option) (*Context, error) {
	if err := bindings.Load(); err != nil {
		return nil, err
	}
	return newContext(usbDriver{}, opts...)
}

func newContext(drv driver, opts ...Option) (*Context, error) {
	c := &Context{
		drv:      drv,
		logger:   golog.Global,
		logLevel: LogInfo,
		devices:  make(map[int]*Device),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	ctx, code := drv.init()
	if err := newError(KindInit, "freenect_init", -1, code); err != nil {
		return nil, err
	}
	c.ctx = ctx

	drv.setLogLevel(ctx, c.logLevel)
	registerLogSink(ctx, c.logger)
	drv.installLogCallback(ctx)

	go c.pump()
	return c, nil
}

// DeviceCount returns the number of devices attached to the system.
// Safe to call concurrently with the pump goroutine.
func (c *Context) DeviceCount() (int, error) {
	n := c.drv.numDevices(c.ctx)
	if err := newError(KindDeviceCount, "freenect_num_devices", -1, n); err != nil {
		return 0, err
	}
	return int(n), nil
}

// OpenDevice opens the device at index, registers it, and returns its
// handle. The handler receives that device's frame callbacks on the pump
// goroutine. The context owns the returned device: it stays valid until
// CloseDevice(index) or Close.
func (c *Context) OpenDevice(index int, handler FrameHandler) (*Device, error) {
	if handler == nil {
		return nil, fmt.Errorf("freenect: device %d: handler must not be nil", index)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrContextClosed
	}
	if _, ok := c.devices[index]; ok {
		return nil, fmt.Errorf("freenect: device %d is already open", index)
	}

	d, err := openDevice(c.drv, c.ctx, index, handler)
	if err != nil {
		return nil, err
	}
	c.devices[index] = d
	return d, nil
}

// CloseDevice closes and removes the device at index. A no-op if no device
// is open at that index. If a frame callback for the device is in flight on
// the pump goroutine, the close waits for it to return.
func (c *Context) CloseDevice(index int) error {
	c.mu.Lock()
	d, ok := c.devices[index]
	if ok {
		delete(c.devices, index)
	}
	c.mu.Unlock()

	if !ok {
		return nil
	}
	return d.close()
}

// Close tears the context down: closes every open device, stops and joins
// the pump goroutine, then releases the driver context. Cleanup is
// best-effort; every failure along the way (including a pump failure that
// terminated the event loop early) is combined into the returned error.
// Idempotent. Must not be called from a frame callback.
func (c *Context) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	remaining := make([]*Device, 0, len(c.devices))
	for _, d := range c.devices {
		remaining = append(remaining, d)
	}
	c.devices = nil
	c.mu.Unlock()

	var err error
	for _, d := range remaining {
		err = multierr.Append(err, d.close())
	}

	c.stop.Store(true)
	<-c.done
	err = multierr.Append(err, c.pumpErr)

	unregisterLogSink(c.ctx)
	err = multierr.Append(err, newError(KindShutdown, "freenect_shutdown", -1, c.drv.shutdown(c.ctx)))

	if err != nil {
		c.logger.Errorw("freenect context teardown reported errors", "error", err)
	}
	return err
}

// pump runs on the dedicated event goroutine. Each iteration is one
// blocking round of driver event processing; the driver invokes frame
// callbacks from inside that call. A driver failure ends the loop and is
// surfaced at Close (join) time.
func (c *Context) pump() {
	defer close(c.done)
	for !c.stop.Load() {
		if code := c.drv.processEvents(c.ctx); code < 0 {
			c.pumpErr = newError(KindEventProcessing, "freenect_process_events", -1, code)
			c.logger.Errorw("freenect event pump terminated", "error", c.pumpErr)
			return
		}
	}
}
