//go:build !ios && !android && (amd64 || arm64)

// Package bindings handles loading the libfreenect shared library and
// registering function bindings using purego.
package bindings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"

	"github.com/jamesdouma/libfreenect/internal/platform"
)

// ErrNotLoaded is returned when driver functions are called before Load().
var ErrNotLoaded = errors.New("freenect: libfreenect not loaded; call freenect.Init() first")

// ErrLibraryNotFound is returned when the libfreenect library cannot be found.
var ErrLibraryNotFound = errors.New("freenect: libfreenect library not found")

// SO versions to try, newest first. -1 means the unversioned name.
var soVersions = []int{0}

var (
	libFreenect uintptr

	loaded   bool
	loadOnce sync.Once
	loadErr  error
)

// Function bindings, registered by Load.
var (
	freenectInit             func(ctx *uintptr, usbCtx uintptr) int32
	freenectShutdown         func(ctx uintptr) int32
	freenectSetLogLevel      func(ctx uintptr, level int32)
	freenectSetLogCb         func(ctx uintptr, cb uintptr)
	freenectProcessEvents    func(ctx uintptr) int32
	freenectNumDevices       func(ctx uintptr) int32
	freenectOpenDevice       func(ctx uintptr, dev *uintptr, index int32) int32
	freenectCloseDevice      func(dev uintptr) int32
	freenectSetUser          func(dev uintptr, user uintptr)
	freenectGetUser          func(dev uintptr) uintptr
	freenectSetDepthCallback func(dev uintptr, cb uintptr)
	freenectSetRGBCallback   func(dev uintptr, cb uintptr)
	freenectSetRGBFormat     func(dev uintptr, format int32) int32
	freenectSetDepthFormat   func(dev uintptr, format int32) int32
	freenectStartDepth       func(dev uintptr) int32
	freenectStartRGB         func(dev uintptr) int32
	freenectStopDepth        func(dev uintptr) int32
	freenectStopRGB          func(dev uintptr) int32
	freenectGetRawAccel      func(dev uintptr, x, y, z *int16) int32
	freenectGetMKSAccel      func(dev uintptr, x, y, z *float64) int32
	freenectSetTiltDegs      func(dev uintptr, angle float64) int32
	freenectSetLed           func(dev uintptr, option int32) int32
)

// IsLoaded returns true if libfreenect has been successfully loaded.
func IsLoaded() bool {
	return loaded
}

// Load loads libfreenect and registers all function bindings.
// It is safe to call multiple times; subsequent calls are no-ops.
// Returns an error if the library cannot be found or loaded.
func Load() error {
	loadOnce.Do(func() {
		loadErr = doLoad()
		if loadErr == nil {
			loaded = true
		}
	})
	return loadErr
}

func doLoad() error {
	lib, err := loadLibrary("freenect", soVersions)
	if err != nil {
		return fmt.Errorf("loading libfreenect: %w", err)
	}
	libFreenect = lib

	purego.RegisterLibFunc(&freenectInit, lib, "freenect_init")
	purego.RegisterLibFunc(&freenectShutdown, lib, "freenect_shutdown")
	purego.RegisterLibFunc(&freenectSetLogLevel, lib, "freenect_set_log_level")
	purego.RegisterLibFunc(&freenectSetLogCb, lib, "freenect_set_log_cb")
	purego.RegisterLibFunc(&freenectProcessEvents, lib, "freenect_process_events")
	purego.RegisterLibFunc(&freenectNumDevices, lib, "freenect_num_devices")
	purego.RegisterLibFunc(&freenectOpenDevice, lib, "freenect_open_device")
	purego.RegisterLibFunc(&freenectCloseDevice, lib, "freenect_close_device")
	purego.RegisterLibFunc(&freenectSetUser, lib, "freenect_set_user")
	purego.RegisterLibFunc(&freenectGetUser, lib, "freenect_get_user")
	purego.RegisterLibFunc(&freenectSetDepthCallback, lib, "freenect_set_depth_callback")
	purego.RegisterLibFunc(&freenectSetRGBCallback, lib, "freenect_set_rgb_callback")
	purego.RegisterLibFunc(&freenectSetRGBFormat, lib, "freenect_set_rgb_format")
	purego.RegisterLibFunc(&freenectSetDepthFormat, lib, "freenect_set_depth_format")
	purego.RegisterLibFunc(&freenectStartDepth, lib, "freenect_start_depth")
	purego.RegisterLibFunc(&freenectStartRGB, lib, "freenect_start_rgb")
	purego.RegisterLibFunc(&freenectStopDepth, lib, "freenect_stop_depth")
	purego.RegisterLibFunc(&freenectStopRGB, lib, "freenect_stop_rgb")
	purego.RegisterLibFunc(&freenectGetRawAccel, lib, "freenect_get_raw_accel")
	purego.RegisterLibFunc(&freenectGetMKSAccel, lib, "freenect_get_mks_accel")
	purego.RegisterLibFunc(&freenectSetTiltDegs, lib, "freenect_set_tilt_degs")
	purego.RegisterLibFunc(&freenectSetLed, lib, "freenect_set_led")

	return nil
}

// loadLibrary attempts to load a library by trying versioned names.
func loadLibrary(name string, versions []int) (uintptr, error) {
	// Try each search path
	for _, searchPath := range LibrarySearchPaths() {
		// Try versioned names first (more specific)
		for _, ver := range versions {
			libName := platform.FormatLibraryName(name, ver)
			fullPath := filepath.Join(searchPath, libName)

			lib, err := tryOpen(fullPath)
			if err == nil {
				return lib, nil
			}
		}

		// Try unversioned name
		libName := platform.FormatLibraryName(name, -1)
		fullPath := filepath.Join(searchPath, libName)
		lib, err := tryOpen(fullPath)
		if err == nil {
			return lib, nil
		}
	}

	// Try just the library name (let the system find it)
	for _, ver := range versions {
		libName := platform.FormatLibraryName(name, ver)
		lib, err := tryOpen(libName)
		if err == nil {
			return lib, nil
		}
	}

	// Try unversioned
	libName := platform.FormatLibraryName(name, -1)
	lib, err := tryOpen(libName)
	if err == nil {
		return lib, nil
	}

	return 0, fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// tryOpen attempts to open a library with RTLD_NOW | RTLD_GLOBAL.
// RTLD_GLOBAL so libfreenect's own libusb references resolve.
func tryOpen(path string) (uintptr, error) {
	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, err
	}
	return lib, nil
}

// FindLibrary searches for the library and returns its full path.
// This is useful for diagnostics.
func FindLibrary(name string, versions []int) (string, error) {
	for _, searchPath := range LibrarySearchPaths() {
		for _, ver := range versions {
			libName := platform.FormatLibraryName(name, ver)
			fullPath := filepath.Join(searchPath, libName)
			if _, err := os.Stat(fullPath); err == nil {
				return fullPath, nil
			}
		}
		// Try unversioned
		libName := platform.FormatLibraryName(name, -1)
		fullPath := filepath.Join(searchPath, libName)
		if _, err := os.Stat(fullPath); err == nil {
			return fullPath, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// LibrarySearchPaths returns platform-specific library search paths.
func LibrarySearchPaths() []string {
	var paths []string

	switch runtime.GOOS {
	case "linux":
		// Check LD_LIBRARY_PATH first
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		// Standard paths
		paths = append(paths,
			"/usr/lib/x86_64-linux-gnu",
			"/usr/lib/aarch64-linux-gnu",
			"/usr/local/lib",
			"/usr/lib",
			"/lib/x86_64-linux-gnu",
			"/lib",
		)

	case "darwin":
		// Check DYLD_LIBRARY_PATH first
		if dyldPath := os.Getenv("DYLD_LIBRARY_PATH"); dyldPath != "" {
			paths = append(paths, filepath.SplitList(dyldPath)...)
		}
		// Homebrew paths
		paths = append(paths,
			"/opt/homebrew/lib", // Apple Silicon
			"/usr/local/lib",    // Intel
			"/opt/homebrew/opt/libfreenect/lib",
			"/usr/local/opt/libfreenect/lib",
		)

	case "windows":
		// Check PATH
		if winPath := os.Getenv("PATH"); winPath != "" {
			paths = append(paths, filepath.SplitList(winPath)...)
		}
		// Executable directory
		if exe, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Dir(exe))
		}
		paths = append(paths,
			"C:\\Program Files\\libfreenect\\bin",
		)

	case "freebsd":
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		paths = append(paths,
			"/usr/local/lib",
			"/usr/lib",
		)
	}

	return paths
}

// LibFreenect returns the libfreenect library handle.
func LibFreenect() uintptr {
	return libFreenect
}

// Init calls freenect_init and returns the driver context handle.
// Load must have succeeded before any of the wrappers below are used.
func Init() (uintptr, int32) {
	if freenectInit == nil {
		return 0, -1
	}
	var ctx uintptr
	code := freenectInit(&ctx, 0)
	return ctx, code
}

// Shutdown calls freenect_shutdown on the driver context.
func Shutdown(ctx uintptr) int32 {
	if freenectShutdown == nil {
		return -1
	}
	return freenectShutdown(ctx)
}

// SetLogLevel sets the driver's internal log verbosity.
func SetLogLevel(ctx uintptr, level int32) {
	if freenectSetLogLevel == nil {
		return
	}
	freenectSetLogLevel(ctx, level)
}

// SetLogCallback installs a driver log callback. cb is a purego callback
// pointer with signature void (*)(freenect_context*, freenect_loglevel, const char*).
func SetLogCallback(ctx uintptr, cb uintptr) {
	if freenectSetLogCb == nil {
		return
	}
	freenectSetLogCb(ctx, cb)
}

// ProcessEvents runs one blocking iteration of the driver's event loop.
func ProcessEvents(ctx uintptr) int32 {
	if freenectProcessEvents == nil {
		return -1
	}
	return freenectProcessEvents(ctx)
}

// NumDevices returns the number of attached devices, or a negative status.
func NumDevices(ctx uintptr) int32 {
	if freenectNumDevices == nil {
		return -1
	}
	return freenectNumDevices(ctx)
}

// OpenDevice opens the device at index and returns its handle.
func OpenDevice(ctx uintptr, index int32) (uintptr, int32) {
	if freenectOpenDevice == nil {
		return 0, -1
	}
	var dev uintptr
	code := freenectOpenDevice(ctx, &dev, index)
	return dev, code
}

// CloseDevice closes an open device handle.
func CloseDevice(dev uintptr) int32 {
	if freenectCloseDevice == nil {
		return -1
	}
	return freenectCloseDevice(dev)
}

// SetUser stores an opaque user value on the driver-side device handle.
func SetUser(dev uintptr, user uintptr) {
	if freenectSetUser == nil {
		return
	}
	freenectSetUser(dev, user)
}

// GetUser returns the opaque user value stored on the device handle.
func GetUser(dev uintptr) uintptr {
	if freenectGetUser == nil {
		return 0
	}
	return freenectGetUser(dev)
}

// SetDepthCallback installs the depth frame callback. cb is a purego
// callback pointer with signature
// void (*)(freenect_device*, void *depth, uint32_t timestamp).
func SetDepthCallback(dev uintptr, cb uintptr) {
	if freenectSetDepthCallback == nil {
		return
	}
	freenectSetDepthCallback(dev, cb)
}

// SetRGBCallback installs the RGB frame callback, same shape as the depth one.
func SetRGBCallback(dev uintptr, cb uintptr) {
	if freenectSetRGBCallback == nil {
		return
	}
	freenectSetRGBCallback(dev, cb)
}

// SetRGBFormat selects the video pixel format.
func SetRGBFormat(dev uintptr, format int32) int32 {
	if freenectSetRGBFormat == nil {
		return -1
	}
	return freenectSetRGBFormat(dev, format)
}

// SetDepthFormat selects the depth bit format.
func SetDepthFormat(dev uintptr, format int32) int32 {
	if freenectSetDepthFormat == nil {
		return -1
	}
	return freenectSetDepthFormat(dev, format)
}

// StartDepth enables the depth stream.
func StartDepth(dev uintptr) int32 {
	if freenectStartDepth == nil {
		return -1
	}
	return freenectStartDepth(dev)
}

// StartRGB enables the RGB stream.
func StartRGB(dev uintptr) int32 {
	if freenectStartRGB == nil {
		return -1
	}
	return freenectStartRGB(dev)
}

// StopDepth disables the depth stream.
func StopDepth(dev uintptr) int32 {
	if freenectStopDepth == nil {
		return -1
	}
	return freenectStopDepth(dev)
}

// StopRGB disables the RGB stream.
func StopRGB(dev uintptr) int32 {
	if freenectStopRGB == nil {
		return -1
	}
	return freenectStopRGB(dev)
}

// GetRawAccel reads the accelerometer in raw sensor counts.
func GetRawAccel(dev uintptr) (x, y, z int16, code int32) {
	if freenectGetRawAccel == nil {
		return 0, 0, 0, -1
	}
	code = freenectGetRawAccel(dev, &x, &y, &z)
	return x, y, z, code
}

// GetMKSAccel reads the accelerometer in meters per second squared.
func GetMKSAccel(dev uintptr) (x, y, z float64, code int32) {
	if freenectGetMKSAccel == nil {
		return 0, 0, 0, -1
	}
	code = freenectGetMKSAccel(dev, &x, &y, &z)
	return x, y, z, code
}

// SetTiltDegs commands the tilt motor to the given angle in degrees.
func SetTiltDegs(dev uintptr, angle float64) int32 {
	if freenectSetTiltDegs == nil {
		return -1
	}
	return freenectSetTiltDegs(dev, angle)
}

// SetLed sets the LED state.
func SetLed(dev uintptr, option int32) int32 {
	if freenectSetLed == nil {
		return -1
	}
	return freenectSetLed(dev, option)
}
