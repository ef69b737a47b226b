// Package handles provides a thread-safe handle system for storing Go objects
// that the native driver references through opaque user pointers.
//
// libfreenect lets callers attach a void* to each device (freenect_set_user)
// and hands that pointer back in frame callbacks. Go pointers cannot be stored
// in C memory, so a device registers itself here and stores the returned
// uintptr handle on the driver side instead. The frame trampolines resolve
// that handle back to the owning object.
package handles

import (
	"sync"
)

var (
	mu      sync.RWMutex
	handles = make(map[uintptr]any)
	nextID  uintptr = 1
)

// Register stores a Go object and returns a handle ID.
// The handle can be safely stored in C memory (as uintptr or void*).
// The object will remain accessible until Unregister is called.
//
// Thread-safe.
func Register(v any) uintptr {
	mu.Lock()
	defer mu.Unlock()
	id := nextID
	nextID++
	handles[id] = v
	return id
}

// Lookup retrieves a Go object by its handle ID.
// Returns nil if the handle is not registered.
//
// Thread-safe.
func Lookup(id uintptr) any {
	mu.RLock()
	defer mu.RUnlock()
	return handles[id]
}

// Unregister removes a handle and allows the Go object to be garbage collected.
// Must be called when the driver no longer holds the handle (device close).
//
// Thread-safe.
func Unregister(id uintptr) {
	mu.Lock()
	defer mu.Unlock()
	delete(handles, id)
}

// Count returns the number of currently registered handles.
// Useful for debugging and testing for leaked device registrations.
//
// Thread-safe.
func Count() int {
	mu.RLock()
	defer mu.RUnlock()
	return len(handles)
}
