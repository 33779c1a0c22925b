package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"cutmark/internal/cuts"
	"cutmark/internal/fileutil"
	"cutmark/internal/history"
	"cutmark/internal/logging"
	"cutmark/internal/media/frames"
	"cutmark/internal/metrics"
	"cutmark/internal/progress"
	"cutmark/internal/textutil"
)

const (
	// MessageNotVideo rejects uploads whose part content type is not video/*.
	MessageNotVideo = "Uploaded file must be a video."

	// multipartMemory is the in-memory budget before parts spill to disk.
	multipartMemory = 32 << 20
	defaultListSize = 50
	maxListSize     = 500
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleDetectCuts(w http.ResponseWriter, r *http.Request) {
	if limit := s.cfg.MaxUploadBytes(); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d MB", s.cfg.Server.MaxUploadMB))
			return
		}
		s.writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "video/") {
		s.writeError(w, http.StatusBadRequest, MessageNotVideo)
		return
	}

	opts := s.scanner.Options()
	if opts.Threshold, err = formFloat(r, "threshold", opts.Threshold); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if opts.MinInterval, err = formFloat(r, "min_interval", opts.MinInterval); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	analysisID := uuid.NewString()
	ctx := logging.WithAnalysisID(r.Context(), analysisID)
	logger := logging.WithContext(ctx, s.logger)
	logger.Info("cut detection requested",
		logging.String("file_name", header.Filename),
		logging.Int64("size_bytes", header.Size),
		logging.Float64("threshold", opts.Threshold),
		logging.Float64("min_interval", opts.MinInterval),
	)

	w.Header().Set("Content-Type", progress.ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	metrics.ActiveScans.Inc()
	defer metrics.ActiveScans.Dec()

	// History is recorded before the terminal event is written.
	s.scanner.WithOptions(opts).Stream(ctx, s.uploadOpener(file, header), progress.NewWriter(w),
		func(summary cuts.Summary) {
			s.record(ctx, analysisID, header.Filename, opts, summary)
		})
}

// uploadOpener spools the upload to a temp file and opens it. The temp file
// is removed when the returned source is closed, or immediately when opening
// fails.
func (s *Server) uploadOpener(file multipart.File, header *multipart.FileHeader) cuts.Opener {
	return func(ctx context.Context) (frames.Source, error) {
		path, cleanup, err := fileutil.SpoolTemp(s.cfg.Server.TempDir, textutil.UploadSuffix(header.Filename), file)
		if err != nil {
			return nil, fmt.Errorf("store upload: %w", err)
		}
		src, err := s.open(ctx, path)
		if err != nil {
			cleanup()
			return nil, err
		}
		return &cleanupSource{Source: src, cleanup: cleanup}, nil
	}
}

type cleanupSource struct {
	frames.Source
	cleanup func()
}

func (c *cleanupSource) Close() error {
	err := c.Source.Close()
	c.cleanup()
	return err
}

func (s *Server) record(ctx context.Context, id, fileName string, opts cuts.Options, summary cuts.Summary) {
	if s.history == nil {
		return
	}
	analysis := history.Analysis{
		ID:          id,
		FileName:    textutil.SanitizeFileName(fileName),
		Threshold:   opts.Threshold,
		MinInterval: opts.MinInterval,
		TotalFrames: summary.TotalFrames,
		Decoded:     summary.Decoded,
		FPS:         summary.FPS,
		Duration:    summary.Duration,
		Status:      history.StatusCompleted,
		Bookmarks:   summary.Bookmarks,
		CreatedAt:   time.Now(),
		Elapsed:     summary.Elapsed,
	}
	if summary.Failed() {
		analysis.Status = history.StatusFailed
		analysis.ErrorMessage = summary.Err.Error()
	}
	// The client may already be gone; the record is still written.
	if err := s.history.Record(context.WithoutCancel(ctx), analysis); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "history write failed", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "analysis will not appear in history"),
		)
	}
}

func (s *Server) handleAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeJSON(w, http.StatusOK, AnalysisListResponse{Items: []AnalysisSummary{}})
		return
	}
	limit := defaultListSize
	if value := strings.TrimSpace(r.URL.Query().Get("limit")); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(parsed, maxListSize)
	}
	records, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	items := make([]AnalysisSummary, 0, len(records))
	for _, rec := range records {
		items = append(items, FromAnalysis(rec))
	}
	s.writeJSON(w, http.StatusOK, AnalysisListResponse{Items: items})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	rec, err := s.history.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, history.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, AnalysisResponse{Item: FromAnalysisDetail(*rec)})
}

// formFloat reads an optional non-negative float form field.
func formFloat(r *http.Request, name string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%s must be a number, got %q", name, raw)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s must not be negative", name)
	}
	return value, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
