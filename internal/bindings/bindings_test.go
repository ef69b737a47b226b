//go:build !ios && !android && (amd64 || arm64)

package bindings

import (
	"testing"
)

func TestLibrarySearchPaths(t *testing.T) {
	paths := LibrarySearchPaths()
	if len(paths) == 0 {
		t.Error("LibrarySearchPaths should return at least one path")
	}
}

func TestFindLibrary(t *testing.T) {
	// This test may fail if libfreenect is not installed.
	// We just test that the function doesn't panic.
	_, err := FindLibrary("freenect", soVersions)
	if err != nil {
		t.Logf("libfreenect not found (expected if not installed): %v", err)
	}
}

// Integration test - only runs if libfreenect is available.
func TestLoadFreenect(t *testing.T) {
	if testing.Short() {
		t.Log("Skipping libfreenect load test in short mode")
		return
	}

	if err := Load(); err != nil {
		t.Skipf("libfreenect not available: %v", err)
	}

	if !IsLoaded() {
		t.Error("IsLoaded should be true after successful Load")
	}
	if LibFreenect() == 0 {
		t.Error("library handle should be non-zero after Load")
	}
}
