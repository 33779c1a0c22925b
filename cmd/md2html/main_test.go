package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunWithoutArgumentsPrintsUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(nil, &stdout, &stderr); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stdout.String(), "Usage: md2html") {
		t.Fatalf("expected usage, got %q", stdout.String())
	}
}

func TestRunConvertsAndToleratesFailures(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "guide.md")
	if err := os.WriteFile(input, []byte("# Guide\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var stdout, stderr bytes.Buffer
	code := run([]string{input, filepath.Join(dir, "absent.md")}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0 (stderr %q)", code, stderr.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "guide.html")); err != nil {
		t.Fatalf("expected guide.html: %v", err)
	}
	if !strings.Contains(stdout.String(), "Error converting") {
		t.Fatalf("expected error line, got %q", stdout.String())
	}
}
