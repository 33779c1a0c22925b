package plots

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"cutmark/internal/config"
	"cutmark/internal/fileutil"
	"cutmark/internal/logging"
	"cutmark/internal/metrics"
)

// Default output locations relative to the results directory.
const (
	DefaultVelocityPath   = "figures/comparisons/velocity_field.html"
	DefaultErrorPath      = "figures/comparisons/error_comparison.html"
	DefaultPheromonePath  = "figures/pheromone/pheromone_field.html"
	DefaultBinaryPath     = "figures/pit/binary_image.html"
	defaultResultsDirName = "results"
)

var (
	viridis = []string{"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"}
	hot     = []string{"#0b0000", "#b00000", "#ff4500", "#ffd700", "#ffffff"}
	mono    = []string{"#ffffff", "#000000"}
)

// Options controls one rendering call.
type Options struct {
	// Title overrides the renderer's default title.
	Title string
	// Output is the destination file; empty selects the default path.
	Output string
	// Analysis, when set, is appended to the written page.
	Analysis *Analysis
}

// Figure is a rendered page.
type Figure struct {
	Kind   string
	Title  string
	Path   string
	Page   *components.Page
	Charts []components.Charter
}

// Renderer writes figures under a results directory.
type Renderer struct {
	resultsDir string
	assetsHost string
	logger     *slog.Logger
}

// NewRenderer builds a renderer from the [plots] section.
func NewRenderer(cfg config.Plots, logger *slog.Logger) *Renderer {
	dir := strings.TrimSpace(cfg.ResultsDir)
	if dir == "" {
		dir = defaultResultsDirName
	}
	return &Renderer{
		resultsDir: dir,
		assetsHost: strings.TrimSpace(cfg.AssetsHost),
		logger:     logging.NewComponentLogger(logger, "plots"),
	}
}

// ResultsDir returns the directory default paths are resolved against.
func (r *Renderer) ResultsDir() string { return r.resultsDir }

func (r *Renderer) resolve(output, fallback string) string {
	if strings.TrimSpace(output) != "" {
		return output
	}
	return filepath.Join(r.resultsDir, filepath.FromSlash(fallback))
}

func titleOr(title, fallback string) string {
	if strings.TrimSpace(title) != "" {
		return title
	}
	return fallback
}

// write renders the charts onto one page at path and applies the optional
// analysis block.
func (r *Renderer) write(kind, title, path string, analysis *Analysis, chartList ...components.Charter) (*Figure, error) {
	page := components.NewPage()
	page.PageTitle = title
	if r.assetsHost != "" {
		page.AssetsHost = r.assetsHost
	}
	page.AddCharts(chartList...)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", kind, err)
	}
	if err := fileutil.EnsureParent(path); err != nil {
		return nil, err
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", kind, err)
	}
	metrics.FiguresRenderedTotal.WithLabelValues(kind).Inc()
	r.logger.Info("figure written",
		logging.String("kind", kind),
		logging.String("path", path),
		logging.Int("bytes", buf.Len()),
	)

	if analysis != nil {
		if err := r.AddAnalysis(path, *analysis); err != nil {
			return nil, err
		}
	}
	return &Figure{Kind: kind, Title: title, Path: path, Page: page, Charts: chartList}, nil
}

func (r *Renderer) initOpts(title string) charts.GlobalOpts {
	init := opts.Initialization{PageTitle: title}
	if r.assetsHost != "" {
		init.AssetsHost = r.assetsHost
	}
	return charts.WithInitializationOpts(init)
}

func axis(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// heatmap draws f with a continuous colour scale. label names the scale.
func (r *Renderer) heatmap(title, label string, f Field, colors []string) *charts.HeatMap {
	lo, hi := f.Range()
	return r.heatmapRange(title, label, f, colors, lo, hi)
}

func (r *Renderer) heatmapRange(title, label string, f Field, colors []string, lo, hi float64) *charts.HeatMap {
	rows, cols := len(f), len(f[0])
	if hi <= lo {
		hi = lo + 1
	}

	data := make([]opts.HeatMapData, 0, rows*cols)
	for y := range f {
		for x, v := range f[y] {
			data = append(data, opts.HeatMapData{Value: [3]interface{}{x, y, v}})
		}
	}

	visual := opts.VisualMap{
		Min:     float32(lo),
		Max:     float32(hi),
		InRange: &opts.VisualMapInRange{Color: colors},
	}
	if label != "" {
		visual.Text = []string{label}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		r.initOpts(title),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x", Type: "category", Data: axis(cols)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y", Type: "category", Data: axis(rows)}),
		charts.WithVisualMapOpts(visual),
	)
	hm.SetXAxis(axis(cols)).AddSeries(titleOr(label, title), data)
	return hm
}
