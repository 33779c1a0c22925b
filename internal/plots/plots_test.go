package plots

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"cutmark/internal/config"
	"cutmark/internal/logging"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	return NewRenderer(config.Plots{ResultsDir: t.TempDir()}, logging.NewNop())
}

func constant(rows, cols int, v float64) Field {
	f := make(Field, rows)
	for i := range f {
		f[i] = make([]float64, cols)
		for j := range f[i] {
			f[i][j] = v
		}
	}
	return f
}

func TestFieldShapeRejectsBadInput(t *testing.T) {
	cases := map[string]Field{
		"empty":  {},
		"no-col": {{}},
		"ragged": {{1, 2}, {3}},
	}
	for name, f := range cases {
		if _, _, err := f.Shape(); !errors.Is(err, ErrShape) {
			t.Fatalf("%s: expected ErrShape, got %v", name, err)
		}
	}
	mismatch := Vector{X: constant(2, 2, 1), Y: constant(2, 3, 1)}
	if _, _, err := mismatch.Shape(); !errors.Is(err, ErrShape) {
		t.Fatalf("expected ErrShape for mismatched components, got %v", err)
	}
}

func TestVelocityFieldWritesDefaultPath(t *testing.T) {
	r := newTestRenderer(t)
	fig, err := r.VelocityField(TaylorGreen(16, 16, 100, 0), Options{})
	if err != nil {
		t.Fatalf("VelocityField: %v", err)
	}
	want := filepath.Join(r.ResultsDir(), "figures", "comparisons", "velocity_field.html")
	if fig.Path != want {
		t.Fatalf("path = %q, want %q", fig.Path, want)
	}
	if len(fig.Charts) != 3 {
		t.Fatalf("expected three panels, got %d", len(fig.Charts))
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read figure: %v", err)
	}
	if !strings.Contains(string(data), "echarts") {
		t.Fatal("expected an echarts page")
	}
}

func TestSampleStep(t *testing.T) {
	for rows, want := range map[int]int{1: 1, 19: 1, 20: 1, 40: 2, 64: 3} {
		if got := sampleStep(rows); got != want {
			t.Fatalf("sampleStep(%d) = %d, want %d", rows, got, want)
		}
	}
}

func TestArrowRotation(t *testing.T) {
	cases := []struct {
		vx, vy float64
		want   int
	}{
		{0, 1, 0},
		{1, 0, -90},
		{-1, 0, 90},
		{0, 0, 0},
	}
	for _, tc := range cases {
		if got := arrowRotation(tc.vx, tc.vy); got != tc.want {
			t.Fatalf("arrowRotation(%v, %v) = %d, want %d", tc.vx, tc.vy, got, tc.want)
		}
	}
}

func TestErrorComparisonL2(t *testing.T) {
	r := newTestRenderer(t)
	truth := Vector{X: constant(4, 4, 3), Y: constant(4, 4, 4)}
	pred := Vector{X: constant(4, 4, 3.3), Y: constant(4, 4, 4.4)}

	out := filepath.Join(t.TempDir(), "nested", "cmp.html")
	fig, l2, err := r.ErrorComparison(truth, pred, Options{Output: out})
	if err != nil {
		t.Fatalf("ErrorComparison: %v", err)
	}
	if math.Abs(l2-0.1) > 1e-9 {
		t.Fatalf("l2 = %v, want 0.1", l2)
	}
	if fig.Path != out || len(fig.Charts) != 4 {
		t.Fatalf("unexpected figure %+v", fig)
	}
	data, _ := os.ReadFile(out)
	if !strings.Contains(string(data), "L2=0.1000") {
		t.Fatal("expected the L2 value in a panel title")
	}

	zero := Vector{X: constant(2, 2, 0), Y: constant(2, 2, 0)}
	_, l2, err = r.ErrorComparison(zero, zero, Options{})
	if err != nil {
		t.Fatalf("ErrorComparison zero: %v", err)
	}
	if !math.IsNaN(l2) {
		t.Fatalf("expected NaN for 0/0, got %v", l2)
	}
	_, l2, _ = r.ErrorComparison(zero, pred.sliced(2), Options{})
	if !math.IsInf(l2, 1) {
		t.Fatalf("expected +Inf for x/0, got %v", l2)
	}

	if _, _, err := r.ErrorComparison(truth, zero, Options{}); !errors.Is(err, ErrShape) {
		t.Fatalf("expected ErrShape for mismatched fields, got %v", err)
	}
}

func (v Vector) sliced(n int) Vector {
	cut := func(f Field) Field {
		out := make(Field, n)
		for i := range out {
			out[i] = append([]float64{}, f[i][:n]...)
		}
		return out
	}
	return Vector{X: cut(v.X), Y: cut(v.Y)}
}

func TestHistogramCountsEveryCell(t *testing.T) {
	f := Field{{0, 1, 2}, {3, 4, 5}}
	edges, counts := Histogram(f, 5)
	if len(edges) != 5 || edges[0] != 0 {
		t.Fatalf("unexpected edges %v", edges)
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	if total != 6 || counts[4] != 2 {
		t.Fatalf("unexpected counts %v", counts)
	}
	_, flat := Histogram(constant(2, 2, 7), 3)
	if flat[0] != 4 {
		t.Fatalf("constant field should land in the first bin, got %v", flat)
	}
}

func TestBinaryImageCoverage(t *testing.T) {
	r := newTestRenderer(t)
	b := Field{{1, 0, 0, 0}, {1, 1, 0, 0}, {0, 0, 0, 0}}
	fig, coverage, err := r.BinaryImage(b, Options{Title: "PIT"})
	if err != nil {
		t.Fatalf("BinaryImage: %v", err)
	}
	if coverage != 0.25 {
		t.Fatalf("coverage = %v, want 0.25", coverage)
	}
	if fig.Title != "PIT (カバレッジ: 25.00%)" {
		t.Fatalf("unexpected title %q", fig.Title)
	}
	if !strings.HasSuffix(fig.Path, filepath.Join("figures", "pit", "binary_image.html")) {
		t.Fatalf("unexpected path %q", fig.Path)
	}
}

func TestPheromoneFieldWithAnalysis(t *testing.T) {
	r := newTestRenderer(t)
	fig, err := r.PheromoneField(Normalize(TaylorGreen(8, 8, 100, 0).Magnitude()), Options{
		Analysis: &Analysis{Purpose: "check trail build-up"},
	})
	if err != nil {
		t.Fatalf("PheromoneField: %v", err)
	}
	data, err := os.ReadFile(fig.Path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	html := string(data)
	if !strings.Contains(html, "check trail build-up") || strings.Count(html, notAvailable) != 2 {
		t.Fatalf("expected purpose and two N/A fields in the analysis block")
	}
}

func TestInsertAnalysisAfterFirstBody(t *testing.T) {
	doc := "<html><body><p>a</p><body></html>"
	got := InsertAnalysis(doc, "[X]")
	if got != "<html><body>[X]<p>a</p><body></html>" {
		t.Fatalf("unexpected insertion %q", got)
	}
	if got := InsertAnalysis("<p>no body</p>", "[X]"); got != "[X]<p>no body</p>" {
		t.Fatalf("expected prepend, got %q", got)
	}
}

func TestRenderAnalysisEscapesAndOmitsEmptySections(t *testing.T) {
	block, err := RenderAnalysis(Analysis{Purpose: "<script>", Highlights: []string{"fast", "stable"}})
	if err != nil {
		t.Fatalf("RenderAnalysis: %v", err)
	}
	if strings.Contains(block, "<script>") || !strings.Contains(block, "&lt;script&gt;") {
		t.Fatal("expected purpose to be escaped")
	}
	if strings.Count(block, "<li") != 2 {
		t.Fatal("expected two highlight items")
	}
	if strings.Contains(block, "🏷️") {
		t.Fatal("summary title block should be omitted")
	}
	titled, _ := RenderAnalysis(Analysis{SummaryTitle: "Run 7"})
	if !strings.Contains(titled, "🏷️ Run 7") || strings.Contains(titled, "Highlights") {
		t.Fatalf("unexpected titled block %q", titled)
	}
}

func TestAddAnalysisMissingFileIsNoop(t *testing.T) {
	r := newTestRenderer(t)
	path := filepath.Join(t.TempDir(), "absent.html")
	if err := r.AddAnalysis(path, Analysis{}); err != nil {
		t.Fatalf("AddAnalysis: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file must not be created, stat err = %v", err)
	}
}

func TestAddAnalysisAppendsAndSerializes(t *testing.T) {
	r := newTestRenderer(t)
	path := filepath.Join(t.TempDir(), "page.html")
	original := "<html><head></head><body><div id=chart></div></body></html>"
	if err := os.WriteFile(path, []byte(original), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	const writers = 4
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.AddAnalysis(path, Analysis{Purpose: "p"}); err != nil {
				t.Errorf("AddAnalysis: %v", err)
			}
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	html := string(data)
	if got := strings.Count(html, "分析レポート"); got != writers {
		t.Fatalf("expected %d blocks, got %d", writers, got)
	}
	if !strings.HasPrefix(html, "<html><head></head><body>") || !strings.HasSuffix(html, "<div id=chart></div></body></html>") {
		t.Fatalf("document outside the insertion point changed: %q", html)
	}
}

func TestPerturbIsDeterministic(t *testing.T) {
	base := TaylorGreen(4, 4, 100, 0)
	a := Perturb(base, 0.1, 42)
	b := Perturb(base, 0.1, 42)
	if a.X[1][2] != b.X[1][2] || a.Y[3][0] != b.Y[3][0] {
		t.Fatal("expected identical noise for the same seed")
	}
	if Coverage(Threshold(Field{{0.2, 0.8}}, 0.5)) != 0.5 {
		t.Fatal("unexpected threshold coverage")
	}
}
