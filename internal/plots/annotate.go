package plots

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"strings"

	"github.com/gofrs/flock"

	"cutmark/internal/logging"
)

const (
	notAvailable = "N/A"
	bodyMarker   = "<body>"
)

// Analysis is the note appended to a rendered page.
type Analysis struct {
	Purpose      string   `json:"purpose"`
	Expectation  string   `json:"expectation"`
	Evaluation   string   `json:"evaluation"`
	Highlights   []string `json:"highlights,omitempty"`
	SummaryTitle string   `json:"summary_title,omitempty"`
}

var analysisBlock = template.Must(template.New("analysis").Parse(`
    <div style="margin: 20px; padding: 20px; background-color: #f8f9fa; border-left: 5px solid #007bff; border-radius: 4px; font-family: sans-serif;">
        {{- if .SummaryTitle}}
        <div style="margin-bottom: 20px; padding-bottom: 10px; border-bottom: 2px solid #007bff;">
            <h2 style="margin: 0; color: #333;">🏷️ {{.SummaryTitle}}</h2>
        </div>
        {{- end}}
        <h3 style="margin-top: 0; color: #007bff;">📊 分析レポート</h3>
        <div style="margin-bottom: 15px;">
            <strong>🎯 目的 (Purpose):</strong>
            <p style="margin: 5px 0 0 10px; color: #333;">{{.Purpose}}</p>
        </div>
        <div style="margin-bottom: 15px;">
            <strong>🔭 期待 (Expectation):</strong>
            <p style="margin: 5px 0 0 10px; color: #333;">{{.Expectation}}</p>
        </div>
        <div>
            <strong>🧐 評価基準 (Evaluation Criteria):</strong>
            <p style="margin: 5px 0 0 10px; color: #333;">{{.Evaluation}}</p>
        </div>
        {{- if .Highlights}}
        <div style="margin-top: 15px; padding-top: 15px; border-top: 1px dashed #ccc;">
            <strong>✨ 結果のハイライト (Highlights):</strong>
            <ul style="margin: 5px 0 0 20px; color: #333; padding-left: 20px;">
                {{range .Highlights}}<li style='margin-bottom: 5px;'>{{.}}</li>{{end}}
            </ul>
        </div>
        {{- end}}
        <div style="margin-top: 15px; font-size: 0.8em; color: #888;">
            ※ 不明な点はオーナーに確認すること
        </div>
    </div>
`))

func orNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return notAvailable
	}
	return value
}

// RenderAnalysis returns the HTML block for a. Missing fields read N/A.
func RenderAnalysis(a Analysis) (string, error) {
	a.Purpose = orNA(a.Purpose)
	a.Expectation = orNA(a.Expectation)
	a.Evaluation = orNA(a.Evaluation)
	var buf bytes.Buffer
	if err := analysisBlock.Execute(&buf, a); err != nil {
		return "", fmt.Errorf("render analysis: %w", err)
	}
	return buf.String(), nil
}

// InsertAnalysis places block right after the first <body>, or before the
// whole document when there is none.
func InsertAnalysis(content, block string) string {
	idx := strings.Index(content, bodyMarker)
	if idx < 0 {
		return block + content
	}
	cut := idx + len(bodyMarker)
	return content[:cut] + block + content[cut:]
}

// AddAnalysis appends an analysis block to the page at path. A missing page
// is logged and left alone. Repeated calls append repeated blocks.
func (r *Renderer) AddAnalysis(path string, a Analysis) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		logging.WarnWithContext(r.logger, "html file not found", "analysis_target_missing",
			logging.String("path", path),
			logging.String(logging.FieldImpact, "analysis metadata not written"),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat html: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("add analysis: %s is a directory", path)
	}

	block, err := RenderAnalysis(a)
	if err != nil {
		return err
	}

	// The lock is taken on the page itself; it is rewritten in place so every
	// waiter sees the previous writer's content.
	lock := flock.New(path)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock html: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read html: %w", err)
	}
	updated := InsertAnalysis(string(content), block)
	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	r.logger.Info("analysis metadata added", logging.String("path", path))
	return nil
}
