package logging

import (
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
)

// newJSONHandler emits one object per line with time, level, msg and, when
// enabled, caller keys ahead of the record attributes.
func newJSONHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return attr
			}
			switch attr.Key {
			case slog.TimeKey:
				return slog.String("time", attr.Value.Time().UTC().Format(timeLayout))
			case slog.LevelKey:
				return slog.String("level", strings.ToLower(attr.Value.String()))
			case slog.SourceKey:
				src, ok := attr.Value.Any().(*slog.Source)
				if !ok || src == nil {
					return slog.Attr{}
				}
				return slog.String("caller", filepath.Base(src.File)+":"+strconv.Itoa(src.Line))
			}
			return attr
		},
	})
}
