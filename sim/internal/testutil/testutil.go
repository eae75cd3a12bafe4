// Package testutil provides shared test infrastructure for the supply-chain simulator:
// locating the repository's defaults.yaml and float assertions used across sim/ and
// its sub-packages.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// DefaultsPath returns the absolute path of the repository's defaults.yaml.
// The path is resolved relative to this source file: sim/internal/testutil/ → repo root.
func DefaultsPath(t *testing.T) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "defaults.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Skipf("defaults.yaml not found at %s: %v", path, err)
	}
	return path
}

// ReadDefaults returns the raw bytes of defaults.yaml.
func ReadDefaults(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(DefaultsPath(t))
	if err != nil {
		t.Fatalf("Failed to read defaults.yaml: %v", err)
	}
	return data
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
