package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestObserveScanCountsOutcome(t *testing.T) {
	before := counterValue(t, ScansTotal.WithLabelValues("failed"))
	framesBefore := counterValue(t, FramesScannedTotal)

	ObserveScan(12, 250*time.Millisecond, false)

	if got := counterValue(t, ScansTotal.WithLabelValues("failed")); got != before+1 {
		t.Fatalf("failed scans = %v, want %v", got, before+1)
	}
	if got := counterValue(t, FramesScannedTotal); got != framesBefore+12 {
		t.Fatalf("frames scanned = %v, want %v", got, framesBefore+12)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveScan(1, time.Millisecond, true)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "cutmark_scans_total") {
		t.Fatalf("expected scan counter in exposition")
	}
}
