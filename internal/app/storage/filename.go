package storage

import (
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"lanshare/internal/pkg/errs"
	"lanshare/internal/pkg/randx"
)

// blockedExtensions lists executable file extensions that are never accepted,
// compared case-insensitively against the original filename.
var blockedExtensions = map[string]struct{}{
	".exe": {},
	".bat": {},
	".cmd": {},
	".scr": {},
	".pif": {},
	".com": {},
	".jar": {},
	".js":  {},
	".vbs": {},
	".ps1": {},
}

// ValidateExtension rejects filenames with an executable extension. The check
// runs before any bytes are written, so a forbidden file is never stored.
func ValidateExtension(originalName string) *errs.CustomError {
	ext := strings.ToLower(filepath.Ext(originalName))
	if _, blocked := blockedExtensions[ext]; blocked {
		return errs.NewError(errs.ErrFileTypeForbidden)
	}
	return nil
}

// IsImageMIME reports whether the declared content type is an image type.
func IsImageMIME(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(mimeType), "image/")
}

// SanitizeFilename reduces a client-supplied filename to a safe single path
// element: directory components from either separator convention are stripped,
// and control characters are replaced. An empty result falls back to "file".
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(name)

	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return '_'
		}
		return r
	}, name)

	name = strings.Trim(name, " .")
	if name == "" || name == "/" {
		return "file"
	}

	return name
}

// StoredName derives the unique on-storage filename for an upload: the
// sanitized base name with a random suffix inserted before the extension.
func StoredName(originalName string) (string, error) {
	clean := SanitizeFilename(originalName)

	suffix, err := randx.FileSuffix()
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(clean)
	base := strings.TrimSuffix(clean, ext)

	return base + "-" + suffix + ext, nil
}

// DecodeLegacyFilename repairs filenames that arrived Latin-1 mangled: UTF-8
// bytes read as Latin-1 turn multi-byte characters into runs of single-byte
// runes. Re-encoding those runes as Latin-1 bytes recovers the original UTF-8
// sequence. Names that do not survive the round trip are returned unchanged.
func DecodeLegacyFilename(name string) string {
	for _, r := range name {
		if r > 0xFF {
			// Real non-Latin-1 text was never mangled.
			return name
		}
	}

	raw, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(name))
	if err != nil {
		return name
	}

	if !utf8.Valid(raw) {
		return name
	}

	return string(raw)
}
