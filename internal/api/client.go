package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cutmark/internal/progress"
)

const defaultHealthTimeout = 5 * time.Second

// Client talks to a running cutmark server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption customizes the client.
type ClientOption func(*Client)

// WithHTTPClient overrides the default HTTP client. Detection streams can
// run for minutes, so the default client has no overall timeout.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds a client for baseURL (for example http://127.0.0.1:8000).
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", baseURL)
	}
	client := &Client{baseURL: baseURL, httpClient: &http.Client{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// DetectRequest describes one remote scan.
type DetectRequest struct {
	Path        string
	Threshold   float64
	MinInterval float64
	// ContentType defaults to the type registered for the file extension,
	// then video/mp4.
	ContentType string
}

// Health checks GET /api/health.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultHealthTimeout)
	defer cancel()
	var payload HealthResponse
	if err := c.getJSON(ctx, "/api/health", &payload); err != nil {
		return err
	}
	if payload.Status != "ok" {
		return fmt.Errorf("server health: status %q", payload.Status)
	}
	return nil
}

// DetectCuts uploads a video and relays each stream event to fn. It returns
// progress.ErrIncomplete when the connection drops before a terminal event.
func (c *Client) DetectCuts(ctx context.Context, req DetectRequest, fn func(progress.Event) error) error {
	file, err := os.Open(req.Path)
	if err != nil {
		return fmt.Errorf("open video: %w", err)
	}
	defer file.Close()

	contentType := strings.TrimSpace(req.ContentType)
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(req.Path)))
	}
	if !strings.HasPrefix(contentType, "video/") {
		contentType = "video/mp4"
	}

	body, writer := io.Pipe()
	form := multipart.NewWriter(writer)
	go func() {
		writer.CloseWithError(writeDetectForm(form, file, filepath.Base(req.Path), contentType, req))
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/detect-cuts", body)
	if err != nil {
		_ = body.Close()
		return fmt.Errorf("build detect request: %w", err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	httpReq.Header.Set("Accept", progress.ContentType)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("detect request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if err := progress.Read(resp.Body, fn); err != nil {
		return err
	}
	// Drain the rest so the connection is reused and the handler has finished.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func writeDetectForm(form *multipart.Writer, file io.Reader, name, contentType string, req DetectRequest) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{"name": "file", "filename": name}))
	header.Set("Content-Type", contentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}
	fields := map[string]float64{"threshold": req.Threshold, "min_interval": req.MinInterval}
	for _, key := range []string{"threshold", "min_interval"} {
		if err := form.WriteField(key, strconv.FormatFloat(fields[key], 'f', -1, 64)); err != nil {
			return err
		}
	}
	return form.Close()
}

// ListAnalyses fetches recent analyses.
func (c *Client) ListAnalyses(ctx context.Context, limit int) ([]AnalysisSummary, error) {
	path := "/api/analyses"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var payload AnalysisListResponse
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// GetAnalysis fetches one analysis with bookmarks.
func (c *Client) GetAnalysis(ctx context.Context, id string) (*AnalysisDetail, error) {
	var payload AnalysisResponse
	if err := c.getJSON(ctx, "/api/analyses/"+url.PathEscape(id), &payload); err != nil {
		return nil, err
	}
	return &payload.Item, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// StatusError is returned for non-200 responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == code
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload ErrorResponse
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return &StatusError{Code: resp.StatusCode, Message: payload.Error}
	}
	return &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(data))}
}
