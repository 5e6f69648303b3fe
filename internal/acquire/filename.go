package acquire

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PlaceholderPrefix starts generated names for titles that sanitize to nothing
const PlaceholderPrefix = "untitled-"

// InvalidFilenameChars is the union of characters rejected in file names on
// the platforms we support. Control characters are rejected separately.
const InvalidFilenameChars = `<>:"/\|?*`

// SanitizeFilename deletes every invalid character from name. Characters are
// removed rather than substituted, so distinct titles may collide.
func SanitizeFilename(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(InvalidFilenameChars, r) {
			return -1
		}
		return r
	}, name)

	// Windows drops trailing dots and spaces silently
	cleaned = strings.TrimSpace(cleaned)
	return strings.TrimRight(cleaned, ". ")
}

// BuildFileName returns "title.container" with the title sanitized. A title
// left empty by sanitization gets a generated placeholder name.
func BuildFileName(title, container string) string {
	base := SanitizeFilename(title)
	if base == "" {
		base = PlaceholderPrefix + newPlaceholderID()
	}
	ext := SanitizeFilename(strings.TrimPrefix(container, "."))
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// SiblingPath swaps the final extension of path for ext. Only the last
// extension boundary is touched, never other occurrences in the path.
func SiblingPath(path, ext string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	return base + "." + strings.TrimPrefix(ext, ".")
}

func newPlaceholderID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
