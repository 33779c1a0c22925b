package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"cutmark/internal/progress"
)

// ErrNotFound is returned when no analysis matches an id.
var ErrNotFound = errors.New("analysis not found")

const defaultListLimit = 50

// Store persists analyses in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect sqlite db: %w", err)
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// connectionPragmas are applied by the driver to every pooled connection.
var connectionPragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

func dsn(path string) string {
	params := make([]string, len(connectionPragmas))
	for i, pragma := range connectionPragmas {
		params[i] = "_pragma=" + pragma
	}
	return "file:" + path + "?" + strings.Join(params, "&")
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts a finished analysis and its bookmarks in one transaction.
func (s *Store) Record(ctx context.Context, a Analysis) error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("record analysis: empty id")
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if a.Status == "" {
		a.Status = StatusCompleted
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO analyses (
            id, file_name, threshold, min_interval, total_frames, decoded_frames,
            fps, duration_seconds, status, error_message, total_cuts, created_at, elapsed_ms
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.FileName,
		a.Threshold,
		a.MinInterval,
		a.TotalFrames,
		a.Decoded,
		a.FPS,
		a.Duration,
		string(a.Status),
		nullableString(a.ErrorMessage),
		len(a.Bookmarks),
		a.CreatedAt.UTC().Format(time.RFC3339Nano),
		a.Elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}

	for i, b := range a.Bookmarks {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO bookmarks (analysis_id, ordinal, id, time_seconds) VALUES (?, ?, ?, ?)",
			a.ID, i, b.ID, b.Time,
		); err != nil {
			return fmt.Errorf("insert bookmark %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit analysis: %w", err)
	}
	return nil
}

const analysisColumns = `id, file_name, threshold, min_interval, total_frames, decoded_frames,
    fps, duration_seconds, status, error_message, total_cuts, created_at, elapsed_ms`

// List returns the most recent analyses, newest first, without bookmarks.
func (s *Store) List(ctx context.Context, limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+analysisColumns+" FROM analyses ORDER BY created_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return out, nil
}

// Get fetches one analysis with its bookmarks. An id prefix is accepted when
// it matches exactly one analysis.
func (s *Store) Get(ctx context.Context, id string) (*Analysis, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+analysisColumns+" FROM analyses WHERE id = ? OR id LIKE ? ESCAPE '\\' ORDER BY id = ? DESC LIMIT 2",
		id, escapeLike(id)+"%", id)
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	var matches []Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		matches = append(matches, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	switch {
	case len(matches) == 0:
		return nil, ErrNotFound
	case len(matches) > 1 && matches[0].ID != id:
		return nil, fmt.Errorf("id prefix %q is ambiguous", id)
	}

	a := matches[0]
	bookmarks, err := s.bookmarks(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.Bookmarks = bookmarks
	return &a, nil
}

func (s *Store) bookmarks(ctx context.Context, analysisID string) ([]progress.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, time_seconds FROM bookmarks WHERE analysis_id = ? ORDER BY ordinal", analysisID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	out := []progress.Bookmark{}
	for rows.Next() {
		var b progress.Bookmark
		if err := rows.Scan(&b.ID, &b.Time); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookmarks: %w", err)
	}
	return out, nil
}

// Delete removes an analysis and its bookmarks.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM analyses WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var (
		a         Analysis
		status    string
		errMsg    sql.NullString
		createdAt string
		elapsedMS int64
	)
	if err := row.Scan(
		&a.ID, &a.FileName, &a.Threshold, &a.MinInterval, &a.TotalFrames, &a.Decoded,
		&a.FPS, &a.Duration, &status, &errMsg, &a.TotalCuts, &createdAt, &elapsedMS,
	); err != nil {
		return Analysis{}, fmt.Errorf("scan analysis: %w", err)
	}
	a.Status = Status(status)
	a.ErrorMessage = errMsg.String
	a.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		a.CreatedAt = ts
	}
	return a, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

// escapeLike escapes LIKE wildcards for use with ESCAPE '\'.
func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(value)
}
