package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cutmark/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckHistory_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	result := CheckHistory(context.Background(), path)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected database file: %v", err)
	}
}

func TestCheckHistory_MissingDirectory(t *testing.T) {
	result := CheckHistory(context.Background(), filepath.Join(t.TempDir(), "gone", "history.db"))
	if result.Passed {
		t.Fatal("expected failure when parent directory is missing")
	}
}

func TestCheckServer_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	result := CheckServer(context.Background(), srv.URL)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckServer_Unhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	result := CheckServer(context.Background(), srv.URL)
	if result.Passed {
		t.Fatal("expected failure for 500 response")
	}
}

func TestCheckServer_BadURL(t *testing.T) {
	result := CheckServer(context.Background(), "not a url")
	if result.Passed {
		t.Fatal("expected failure for invalid url")
	}
}

func TestCheckServerFromConfig_InvalidBind(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Bind = "nonsense"
	result := CheckServerFromConfig(context.Background(), &cfg)
	if result.Passed || !strings.Contains(result.Detail, "invalid bind") {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Server.TempDir = t.TempDir()
	cfg.Plots.ResultsDir = t.TempDir()
	cfg.History.Enabled = false
	cfg.Logging.Dir = ""

	results := RunAll(context.Background(), &cfg)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %#v", failed)
	}
}

func TestRunAll_IncludesHistoryWhenEnabled(t *testing.T) {
	cfg := config.Default()
	cfg.Server.TempDir = t.TempDir()
	cfg.Plots.ResultsDir = filepath.Join(t.TempDir(), "missing")
	cfg.History.Enabled = true
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")
	cfg.Logging.Dir = ""

	results := RunAll(context.Background(), &cfg)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "Results directory" {
		t.Fatalf("expected only results directory to fail, got %#v", failed)
	}
}
