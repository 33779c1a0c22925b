package plots

import "fmt"

const (
	defaultPheromoneTitle = "フェロモン場"
	defaultBinaryTitle    = "バイナリPIT画像"
)

// PheromoneField draws tau as a single heatmap with a labelled scale.
func (r *Renderer) PheromoneField(tau Field, o Options) (*Figure, error) {
	if _, _, err := tau.Shape(); err != nil {
		return nil, err
	}
	title := titleOr(o.Title, defaultPheromoneTitle)
	return r.write("pheromone", title, r.resolve(o.Output, DefaultPheromonePath), o.Analysis,
		r.heatmap(title, "フェロモン濃度", tau, viridis),
	)
}

// Coverage returns sum(b)/size(b).
func Coverage(b Field) float64 {
	return b.Sum() / float64(b.Size())
}

// BinaryImage draws b in white (0) and black (1) and returns its coverage.
// The title carries the coverage as a percentage with two decimals.
func (r *Renderer) BinaryImage(b Field, o Options) (*Figure, float64, error) {
	if _, _, err := b.Shape(); err != nil {
		return nil, 0, err
	}
	coverage := Coverage(b)
	title := fmt.Sprintf("%s (カバレッジ: %.2f%%)", titleOr(o.Title, defaultBinaryTitle), coverage*100)

	display := make(Field, len(b))
	for y, row := range b {
		display[y] = make([]float64, len(row))
		for x, v := range row {
			display[y][x] = float64(int(v))
		}
	}
	hm := r.heatmapRange(title, "", display, mono, 0, 1)
	fig, err := r.write("binary", title, r.resolve(o.Output, DefaultBinaryPath), o.Analysis, hm)
	if err != nil {
		return nil, 0, err
	}
	return fig, coverage, nil
}
