package textutil

import (
	"path/filepath"
	"strings"
)

// DefaultVideoSuffix is used when an upload name carries no extension.
const DefaultVideoSuffix = ".mp4"

const maxSuffixLen = 16

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// UploadSuffix returns the extension of a client-supplied file name for use
// as a temp file suffix, or DefaultVideoSuffix when there is none. Dotfiles
// such as ".mp4" alone have no extension. Characters outside [A-Za-z0-9] are
// dropped so the suffix cannot escape the temp directory.
func UploadSuffix(name string) string {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	trimmed := strings.TrimLeft(base, ".")
	ext := filepath.Ext(trimmed)
	if ext == "" {
		return DefaultVideoSuffix
	}
	var b strings.Builder
	b.WriteByte('.')
	for _, r := range ext[1:] {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() >= maxSuffixLen {
			break
		}
	}
	if b.Len() == 1 {
		return DefaultVideoSuffix
	}
	return b.String()
}
