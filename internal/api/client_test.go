package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"cutmark/internal/api"
	"cutmark/internal/progress"
	"cutmark/internal/testsupport"
)

func TestClientDetectCutsRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	srv := newTestServer(t, cfg, api.WithHistory(store), api.WithSourceOpener(sliceOpener(20, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 200, 200)))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client, err := api.NewClient(ts.URL + "/")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health: %v", err)
	}

	video := filepath.Join(t.TempDir(), "clip.mkv")
	testsupport.WriteFile(t, video, 1024)

	var kinds []progress.Kind
	var result progress.Result
	err = client.DetectCuts(context.Background(), api.DetectRequest{Path: video, Threshold: 50, MinInterval: 0.5}, func(event progress.Event) error {
		kinds = append(kinds, event.Kind())
		if r, ok := event.(progress.Result); ok {
			result = r
		}
		return nil
	})
	if err != nil {
		t.Fatalf("DetectCuts: %v", err)
	}
	if kinds[0] != progress.KindStart || kinds[len(kinds)-1] != progress.KindResult {
		t.Fatalf("unexpected event order %v", kinds)
	}
	if result.TotalCuts() != 1 || result.Bookmarks[0].Time != 0.6 {
		t.Fatalf("unexpected result %+v", result)
	}

	items, err := client.ListAnalyses(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListAnalyses: %v", err)
	}
	if len(items) != 1 || items[0].FileName != "clip.mkv" {
		t.Fatalf("unexpected items %+v", items)
	}
	detail, err := client.GetAnalysis(context.Background(), items[0].ID)
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if len(detail.Bookmarks) != 1 {
		t.Fatalf("unexpected detail %+v", detail)
	}
	if _, err := client.GetAnalysis(context.Background(), "nope"); !api.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected 404 status error, got %v", err)
	}
}

func TestClientReportsIncompleteStream(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", progress.ContentType)
		_, _ = w.Write([]byte("{\"type\":\"start\",\"total_frames\":100}\n{\"type\":\"progress\",\"value\":5}\n"))
	}))
	defer ts.Close()

	client, err := api.NewClient(ts.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	video := filepath.Join(t.TempDir(), "clip.mp4")
	testsupport.WriteFile(t, video, 16)
	err = client.DetectCuts(context.Background(), api.DetectRequest{Path: video}, func(progress.Event) error { return nil })
	if !errors.Is(err, progress.ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
}

func TestNewClientRejectsBadURL(t *testing.T) {
	if _, err := api.NewClient("localhost:8000"); err == nil {
		t.Fatal("expected error for url without scheme")
	}
}
