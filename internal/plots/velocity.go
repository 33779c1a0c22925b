package plots

import (
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const defaultVelocityTitle = "速度場"

// VelocityField draws the magnitude heatmap of (vx, vy), a down-sampled
// scatter coloured by magnitude and a down-sampled arrow overlay.
func (r *Renderer) VelocityField(v Vector, o Options) (*Figure, error) {
	rows, _, err := v.Shape()
	if err != nil {
		return nil, err
	}
	title := titleOr(o.Title, defaultVelocityTitle)
	mag := v.Magnitude()
	step := sampleStep(rows)

	return r.write("velocity", title, r.resolve(o.Output, DefaultVelocityPath), o.Analysis,
		r.heatmap(title+": 速度の大きさ", "大きさ", mag, viridis),
		r.streamScatter(title+": 流線", mag, step),
		r.arrowScatter(title+": ベクトル場", v, mag, step),
	)
}

// streamScatter approximates streamlines with magnitude-coloured markers.
func (r *Renderer) streamScatter(title string, mag Field, step int) *charts.Scatter {
	lo, hi := mag.Range()
	if hi <= lo {
		hi = lo + 1
	}
	var data []opts.ScatterData
	for y := 0; y < len(mag); y += step {
		for x := 0; x < len(mag[y]); x += step {
			data = append(data, opts.ScatterData{Value: []interface{}{x, y, mag[y][x]}, SymbolSize: 5})
		}
	}

	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		r.initOpts(title),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y", Type: "value"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Min:     float32(lo),
			Max:     float32(hi),
			InRange: &opts.VisualMapInRange{Color: viridis},
		}),
	)
	sc.AddSeries("流線", data)
	return sc
}

// arrowScatter draws one rotated arrow per sample. Rotation follows the
// vector direction; symbol size scales with magnitude.
func (r *Renderer) arrowScatter(title string, v Vector, mag Field, step int) *charts.Scatter {
	_, hi := mag.Range()
	var data []opts.ScatterData
	for y := 0; y < len(mag); y += step {
		for x := 0; x < len(mag[y]); x += step {
			data = append(data, opts.ScatterData{
				Value:        []interface{}{x, y},
				Symbol:       "arrow",
				SymbolSize:   arrowSize(mag[y][x], hi),
				SymbolRotate: arrowRotation(v.X[y][x], v.Y[y][x]),
			})
		}
	}

	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		r.initOpts(title),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y", Type: "value"}),
	)
	sc.AddSeries("ベクトル", data)
	return sc
}

// arrowRotation converts a vector into symbol rotation degrees. The arrow
// symbol points up, and rotation is counter-clockwise.
func arrowRotation(vx, vy float64) int {
	if vx == 0 && vy == 0 {
		return 0
	}
	deg := math.Atan2(vy, vx)*180/math.Pi - 90
	return int(math.Round(deg))
}

func arrowSize(magnitude, peak float64) int {
	const minSize, maxSize = 4.0, 16.0
	if peak <= 0 || math.IsNaN(magnitude) {
		return int(minSize)
	}
	return int(math.Round(minSize + (maxSize-minSize)*math.Min(1, magnitude/peak)))
}
