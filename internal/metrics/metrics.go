package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cutmark_scans_total",
		Help: "Total number of cut detection scans, by outcome",
	}, []string{"outcome"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cutmark_scan_duration_seconds",
		Help:    "Wall time of cut detection scans",
		Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
	})

	FramesScannedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cutmark_frames_scanned_total",
		Help: "Total number of frames decoded across all scans",
	})

	ActiveScans = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cutmark_active_scans",
		Help: "Number of scans currently streaming",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cutmark_http_requests_total",
		Help: "Total number of HTTP requests, by route and status code",
	}, []string{"route", "code"})

	DocumentsConvertedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cutmark_documents_converted_total",
		Help: "Total number of markdown documents converted, by result",
	}, []string{"result"})

	FiguresRenderedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cutmark_figures_rendered_total",
		Help: "Total number of figures written, by kind",
	}, []string{"kind"})
)

// ObserveScan records one finished scan.
func ObserveScan(frames int, elapsed time.Duration, ok bool) {
	outcome := "completed"
	if !ok {
		outcome = "failed"
	}
	ScansTotal.WithLabelValues(outcome).Inc()
	ScanDuration.Observe(elapsed.Seconds())
	if frames > 0 {
		FramesScannedTotal.Add(float64(frames))
	}
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
