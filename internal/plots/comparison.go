package plots

import (
	"fmt"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"cutmark/internal/logging"
)

const (
	defaultErrorTitle = "速度場の誤差比較"
	histogramBins     = 50
)

// ErrorComparison draws the true and predicted magnitudes, the error
// magnitude and its histogram. It returns the relative L2 error
// ||error magnitude|| / ||true magnitude||; a zero true field gives NaN or
// +Inf.
func (r *Renderer) ErrorComparison(truth, pred Vector, o Options) (*Figure, float64, error) {
	rows, cols, err := truth.Shape()
	if err != nil {
		return nil, 0, fmt.Errorf("truth: %w", err)
	}
	pr, pc, err := pred.Shape()
	if err != nil {
		return nil, 0, fmt.Errorf("prediction: %w", err)
	}
	if pr != rows || pc != cols {
		return nil, 0, fmt.Errorf("%w: truth is %dx%d, prediction is %dx%d", ErrShape, rows, cols, pr, pc)
	}

	trueMag := truth.Magnitude()
	errMag := pred.Sub(truth).Magnitude()
	l2 := RelativeL2(errMag, trueMag)
	title := titleOr(o.Title, defaultErrorTitle)

	fig, err := r.write("error", title, r.resolve(o.Output, DefaultErrorPath), o.Analysis,
		r.heatmap(title+": 真の速度", "真値", trueMag, viridis),
		r.heatmap(title+": 予測速度", "予測", pred.Magnitude(), viridis),
		r.heatmap(fmt.Sprintf("%s: 誤差の大きさ (L2=%.4f)", title, l2), "誤差", errMag, hot),
		r.histogram(title+": 誤差分布", errMag, histogramBins),
	)
	if err != nil {
		return nil, 0, err
	}
	r.logger.Info("error comparison", logging.String("path", fig.Path), logging.Float64("l2", l2))
	return fig, l2, nil
}

// RelativeL2 returns ||errMag||_F / ||trueMag||_F.
func RelativeL2(errMag, trueMag Field) float64 {
	return errMag.Norm() / trueMag.Norm()
}

// Histogram counts f into bins equal-width buckets over its range. It
// returns the lower edge of each bin and the counts.
func Histogram(f Field, bins int) ([]float64, []int) {
	lo, hi := f.Range()
	width := (hi - lo) / float64(bins)
	if width <= 0 {
		width = 1
	}
	edges := make([]float64, bins)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	counts := make([]int, bins)
	for _, row := range f {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			idx := int((v - lo) / width)
			counts[min(max(idx, 0), bins-1)]++
		}
	}
	return edges, counts
}

func (r *Renderer) histogram(title string, f Field, bins int) *charts.Bar {
	edges, counts := Histogram(f, bins)
	labels := make([]string, len(edges))
	data := make([]opts.BarData, len(counts))
	for i := range edges {
		labels[i] = strconv.FormatFloat(edges[i], 'g', 3, 64)
		data[i] = opts.BarData{Value: counts[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		r.initOpts(title),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "誤差", Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "count", Type: "value"}),
	)
	bar.SetXAxis(labels).AddSeries("分布", data)
	return bar
}
