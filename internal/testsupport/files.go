package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x42}, int(size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// UniformFrames returns raw 8-bit grayscale frames, one per level, each
// width*height bytes of that level.
func UniformFrames(width, height int, levels ...byte) []byte {
	size := width * height
	out := make([]byte, 0, size*len(levels))
	for _, level := range levels {
		out = append(out, bytes.Repeat([]byte{level}, size)...)
	}
	return out
}
