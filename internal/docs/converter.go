package docs

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"cutmark/internal/fileutil"
	"cutmark/internal/logging"
	"cutmark/internal/metrics"
)

//go:embed page.html.tmpl
var pageTemplate string

var page = template.Must(template.New("page").Parse(pageTemplate))

// NavLink is one entry of the navigation bar.
type NavLink struct {
	Href  string
	Label string
}

// DefaultNav links the documentation pages back to the published site.
var DefaultNav = []NavLink{
	{Href: "http://tajmahal.mond.jp/aco02/index.html", Label: "🏠 ホーム (Home)"},
	{Href: "http://tajmahal.mond.jp/aco02/results/index.html", Label: "📊 結果一覧 (Results)"},
	{Href: "http://tajmahal.mond.jp/aco02/docs/RULES_HTML.html", Label: "📂 ドキュメント (Docs)"},
}

// Converter renders markdown files into standalone HTML pages.
type Converter struct {
	md     goldmark.Markdown
	nav    []NavLink
	logger *slog.Logger
}

// NewConverter builds a converter with table support. Fenced code blocks are
// part of CommonMark; raw HTML in the source is passed through.
func NewConverter(logger *slog.Logger) *Converter {
	return &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		nav:    DefaultNav,
		logger: logging.NewComponentLogger(logger, "docs"),
	}
}

// Render converts markdown into a full HTML document titled title.
func (c *Converter) Render(title string, markdown []byte) ([]byte, error) {
	var body bytes.Buffer
	if err := c.md.Convert(markdown, &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	var out bytes.Buffer
	err := page.Execute(&out, struct {
		Title string
		Nav   []NavLink
		Body  template.HTML
	}{
		Title: title,
		Nav:   c.nav,
		Body:  template.HTML(body.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return out.Bytes(), nil
}

// OutputPath returns output, or input with its extension replaced by .html.
func OutputPath(input, output string) string {
	if strings.TrimSpace(output) != "" {
		return output
	}
	return fileutil.ReplaceExt(input, ".html")
}

// ConvertFile converts input to output (see OutputPath) and returns the
// path written.
func (c *Converter) ConvertFile(input, output string) (string, error) {
	output = OutputPath(input, output)
	source, err := os.ReadFile(input)
	if err != nil {
		return output, fmt.Errorf("read markdown: %w", err)
	}
	rendered, err := c.Render(fileutil.Stem(input), source)
	if err != nil {
		return output, err
	}
	if err := os.WriteFile(output, rendered, 0o644); err != nil {
		return output, fmt.Errorf("write html: %w", err)
	}
	c.logger.Debug("document converted",
		logging.String("input", input),
		logging.String("output", output),
		logging.Int("bytes", len(rendered)),
	)
	return output, nil
}

// ConvertAll converts each path next to its source, printing progress to
// out. A failure is reported and the remaining paths are still processed.
// It returns the number of failures.
func (c *Converter) ConvertAll(paths []string, out io.Writer) int {
	failures := 0
	for _, path := range paths {
		fmt.Fprintf(out, "Converting %s -> %s\n", path, OutputPath(path, ""))
		if _, err := c.ConvertFile(path, ""); err != nil {
			failures++
			metrics.DocumentsConvertedTotal.WithLabelValues("failed").Inc()
			fmt.Fprintf(out, "Error converting %s: %v\n", path, err)
			c.logger.Warn("document conversion failed", logging.String("input", path), logging.Error(err))
			continue
		}
		metrics.DocumentsConvertedTotal.WithLabelValues("converted").Inc()
	}
	return failures
}
