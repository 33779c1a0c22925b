package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cutmark/internal/annotation"
	"cutmark/internal/config"
	"cutmark/internal/progress"
	"cutmark/internal/testsupport"
)

// twoCutVideo yields cuts at 0.3s and 0.6s with min_interval 0.2.
var twoCutVideo = testsupport.FakeVideo{
	FPS:    10,
	Levels: []byte{10, 10, 10, 200, 200, 200, 10, 10, 10, 10},
}

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	videoPath  string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cfg := testsupport.NewConfig(t, opts...)
	cfg.Logging.Level = "error"
	base := testsupport.BaseDir(cfg)
	video := filepath.Join(base, "game.mp4")
	testsupport.WriteFile(t, video, 64)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: testsupport.WriteConfigFile(t, cfg),
		baseDir:    base,
		videoPath:  video,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestDetectPrintsBookmarkTable(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithFakeDecoder(twoCutVideo))

	stdout, _, err := runCLI(t, []string{"detect", env.videoPath, "--min-interval", "0.2"}, env.configPath)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	for _, want := range []string{"0.300", "0.600", "00:00.300", "game.mp4: 2 cuts in 10 frames"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestDetectThresholdFlagSuppressesCuts(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithFakeDecoder(twoCutVideo))

	stdout, _, err := runCLI(t, []string{"detect", env.videoPath, "--threshold", "250"}, env.configPath)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if !strings.Contains(stdout, "0 cuts in 10 frames") {
		t.Fatalf("expected no cuts, got:\n%s", stdout)
	}
}

func TestDetectJSONEchoesStream(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithFakeDecoder(twoCutVideo))

	stdout, _, err := runCLI(t, []string{"detect", env.videoPath, "--min-interval", "0.2", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	events, err := progress.Collect(strings.NewReader(stdout))
	if err != nil {
		t.Fatalf("collect events: %v", err)
	}
	start, ok := events[0].(progress.Start)
	if !ok || start.TotalFrames != 10 {
		t.Fatalf("expected start event with 10 frames, got %#v", events[0])
	}
	result, ok := events[len(events)-1].(progress.Result)
	if !ok {
		t.Fatalf("expected result event last, got %#v", events[len(events)-1])
	}
	if result.TotalCuts() != 2 || result.Bookmarks[0].Time != 0.3 || result.Bookmarks[1].Time != 0.6 {
		t.Fatalf("unexpected bookmarks %#v", result.Bookmarks)
	}
}

// spacedCutVideo yields cuts at 0.3s and 1.0s, far enough apart to both
// survive the annotation near-duplicate guard.
var spacedCutVideo = testsupport.FakeVideo{
	FPS:    10,
	Levels: []byte{10, 10, 10, 200, 200, 200, 200, 200, 200, 200, 10, 10, 10, 10, 10, 10, 10, 10, 10, 10},
}

func readSingleExport(t *testing.T, dir string) (string, *annotation.Timeline) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "baseball_annotations_*.json"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one export file, got %v (%v)", matches, err)
	}
	timeline, err := annotation.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	return matches[0], timeline
}

func TestDetectExportWritesAnnotationDocument(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithFakeDecoder(spacedCutVideo))
	exportDir := filepath.Join(env.baseDir, "exports")
	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := runCLI(t, []string{"detect", env.videoPath, "--export", exportDir}, env.configPath)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	path, timeline := readSingleExport(t, exportDir)
	if !strings.Contains(stderr, path) {
		t.Fatalf("expected export path in stderr, got %q", stderr)
	}
	if strings.Contains(stderr, "not exported") {
		t.Fatalf("unexpected dropped-cut notice: %q", stderr)
	}
	if got := len(timeline.Bookmarks()); got != 2 {
		t.Fatalf("expected 2 bookmarks, got %d", got)
	}
	chunks := timeline.Chunks()
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %#v", chunks)
	}
	if chunks[0].StartTime != 0 || chunks[1].StartTime != 0.3 || chunks[2].StartTime != 1 || chunks[2].EndTime != 2 {
		t.Fatalf("chunks do not tile [0, 2]: %#v", chunks)
	}
}

func TestDetectExportReportsNearDuplicateCuts(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithFakeDecoder(twoCutVideo))
	exportDir := filepath.Join(env.baseDir, "exports")
	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, err := runCLI(t, []string{"detect", env.videoPath, "--min-interval", "0.2", "--export", exportDir}, env.configPath)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if !strings.Contains(stdout, "2 cuts") {
		t.Fatalf("expected both detected cuts in the table, got:\n%s", stdout)
	}
	if !strings.Contains(stderr, "1 of 2 cuts were within 0.5s") {
		t.Fatalf("expected dropped-cut notice, got %q", stderr)
	}
	_, timeline := readSingleExport(t, exportDir)
	bookmarks := timeline.Bookmarks()
	if len(bookmarks) != 1 || bookmarks[0].Time != 0.3 {
		t.Fatalf("expected only the 0.3s bookmark, got %+v", bookmarks)
	}
	if chunks := timeline.Chunks(); len(chunks) != 2 || chunks[1].EndTime != 1 {
		t.Fatalf("expected 2 chunks tiling [0, 1], got %#v", chunks)
	}
}

func TestDetectUnopenableVideoFails(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithBrokenDecoder())

	_, _, err := runCLI(t, []string{"detect", env.videoPath}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unopenable video")
	}
}

func TestDetectMissingFile(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries())

	_, _, err := runCLI(t, []string{"detect", filepath.Join(env.baseDir, "absent.mp4")}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "inspect video") {
		t.Fatalf("expected inspect error, got %v", err)
	}
}

func TestDetectRejectsNegativeThreshold(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries())

	_, _, err := runCLI(t, []string{"detect", env.videoPath, "--threshold", "-1"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for negative threshold")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "cutmark.toml")

	stdout, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(stdout, target) {
		t.Fatalf("expected target path in output, got %q", stdout)
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite failed: %v", err)
	}

	stdout, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("config validate failed: %v", err)
	}
	if !strings.Contains(stdout, "Configuration valid") || !strings.Contains(stdout, "https://tajmahal.mond.jp") {
		t.Fatalf("unexpected validate output:\n%s", stdout)
	}
}

func TestDocsConvert(t *testing.T) {
	env := setupCLITestEnv(t)
	input := filepath.Join(env.baseDir, "RULES.md")
	if err := os.WriteFile(input, []byte("# Rules\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := runCLI(t, []string{"docs", "convert", input, filepath.Join(env.baseDir, "missing.md")}, env.configPath)
	if err != nil {
		t.Fatalf("docs convert failed: %v", err)
	}
	if !strings.Contains(stdout, "Converting "+input) || !strings.Contains(stdout, "Error converting") {
		t.Fatalf("unexpected output:\n%s", stdout)
	}
	html, err := os.ReadFile(filepath.Join(env.baseDir, "RULES.html"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(html), "<table>") {
		t.Fatalf("expected table in output html")
	}

	if _, _, err := runCLI(t, []string{"docs", "convert", "--strict", filepath.Join(env.baseDir, "missing.md")}, env.configPath); err == nil {
		t.Fatal("expected --strict to fail on missing input")
	}
}

func TestLogLevelFlagIsValidated(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"--log-level", "verbose", "history", "list"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "logging.level") {
		t.Fatalf("expected logging.level error, got %v", err)
	}
}
