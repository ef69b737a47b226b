//go:build !ios && !android && (amd64 || arm64)

package freenect

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/edaniels/golog"
)

// LogLevel represents the driver's log verbosity levels.
type LogLevel int32

// Log levels matching the driver's freenect_loglevel values.
const (
	LogFatal   LogLevel = 0 // Crashing or unusable
	LogError   LogLevel = 1 // Serious errors
	LogWarning LogLevel = 2 // Problems the driver works around
	LogNotice  LogLevel = 3 // Notable events
	LogInfo    LogLevel = 4 // Standard information
	LogDebug   LogLevel = 5 // Useful while debugging
	LogSpew    LogLevel = 6 // Very verbose
	LogFlood   LogLevel = 7 // Everything
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogFatal:
		return "fatal"
	case LogError:
		return "error"
	case LogWarning:
		return "warning"
	case LogNotice:
		return "notice"
	case LogInfo:
		return "info"
	case LogDebug:
		return "debug"
	case LogSpew:
		return "spew"
	case LogFlood:
		return "flood"
	default:
		return "unknown"
	}
}

// Driver log lines carry the raw context pointer, so each Context registers
// its logger here and the shared trampoline routes by that pointer.
var (
	logSinkMu   sync.Mutex
	logSinks    = make(map[uintptr]golog.Logger)
	logCBOnce   sync.Once
	logCBHandle uintptr
)

func registerLogSink(ctx uintptr, logger golog.Logger) {
	logSinkMu.Lock()
	defer logSinkMu.Unlock()
	logSinks[ctx] = logger
}

func unregisterLogSink(ctx uintptr) {
	logSinkMu.Lock()
	defer logSinkMu.Unlock()
	delete(logSinks, ctx)
}

// logCallbackPointer returns the shared driver log trampoline, creating it
// on first use. Signature: void (*)(freenect_context*, freenect_loglevel,
// const char *msg).
func logCallbackPointer() uintptr {
	logCBOnce.Do(func() {
		logCBHandle = purego.NewCallback(logTrampoline)
	})
	return logCBHandle
}

func logTrampoline(_ purego.CDecl, ctx uintptr, level int32, msg *byte) {
	logSinkMu.Lock()
	logger := logSinks[ctx]
	logSinkMu.Unlock()

	if logger == nil {
		return
	}
	logDriverMessage(logger, LogLevel(level), goString(msg))
}

func logDriverMessage(logger golog.Logger, level LogLevel, msg string) {
	switch {
	case level <= LogError:
		logger.Errorw(msg, "source", "libfreenect", "level", level.String())
	case level <= LogNotice:
		logger.Warnw(msg, "source", "libfreenect", "level", level.String())
	case level <= LogInfo:
		logger.Infow(msg, "source", "libfreenect", "level", level.String())
	default:
		logger.Debugw(msg, "source", "libfreenect", "level", level.String())
	}
}

// goString converts a NUL-terminated C string to a Go string.
func goString(msg *byte) string {
	if msg == nil {
		return ""
	}
	ptr := unsafe.Pointer(msg)
	for i := 0; ; i++ {
		b := *(*byte)(unsafe.Pointer(uintptr(ptr) + uintptr(i)))
		if b == 0 {
			return string(unsafe.Slice(msg, i))
		}
		if i > 4096 { // Safety limit
			return string(unsafe.Slice(msg, i))
		}
	}
}
