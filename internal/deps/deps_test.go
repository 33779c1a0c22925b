package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cutmark/internal/config"
)

func writeStub(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	present := writeStub(t, t.TempDir(), "present", "exit 0\n")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("expected blank command to be reported as unconfigured, got %#v", results[2])
	}
}

func TestRequirementsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.FFmpeg.FFmpegBinary = "/opt/ffmpeg/bin/ffmpeg"
	cfg.FFmpeg.FFprobeBinary = "/opt/ffmpeg/bin/ffprobe"

	reqs := Requirements(&cfg)
	if len(reqs) != 2 {
		t.Fatalf("expected two requirements, got %d", len(reqs))
	}
	if reqs[0].Command != "/opt/ffmpeg/bin/ffmpeg" || reqs[1].Command != "/opt/ffmpeg/bin/ffprobe" {
		t.Fatalf("unexpected commands: %#v", reqs)
	}
	if Requirements(nil) != nil {
		t.Fatal("expected nil requirements for nil config")
	}
}

func TestVersionReadsFirstLine(t *testing.T) {
	stub := writeStub(t, t.TempDir(), "ffmpeg", "echo 'ffmpeg version 7.1 Copyright'\necho 'built with gcc'\n")

	version, err := Version(context.Background(), stub)
	if err != nil {
		t.Fatalf("Version returned error: %v", err)
	}
	if version != "ffmpeg version 7.1 Copyright" {
		t.Fatalf("unexpected version line %q", version)
	}
}

func TestVersionFailures(t *testing.T) {
	if _, err := Version(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty command")
	}
	failing := writeStub(t, t.TempDir(), "broken", "exit 3\n")
	if _, err := Version(context.Background(), failing); err == nil {
		t.Fatal("expected error for failing binary")
	}
	silent := writeStub(t, t.TempDir(), "silent", "exit 0\n")
	if _, err := Version(context.Background(), silent); err == nil {
		t.Fatal("expected error for empty output")
	}
}
