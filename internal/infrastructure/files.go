package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultMaxFilenameLength bounds sanitized filenames
const DefaultMaxFilenameLength = 200

var (
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	repeatedUnderscores  = regexp.MustCompile(`_+`)
)

// SanitizeFilename strips filesystem-illegal characters from a filename,
// collapses repeated underscores, trims leading/trailing spaces and dots
// and truncates to maxLength while preserving the extension. An empty
// result falls back to "video".
func SanitizeFilename(filename string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultMaxFilenameLength
	}

	sanitized := invalidFilenameChars.ReplaceAllString(filename, "_")
	sanitized = strings.Trim(sanitized, " .")
	sanitized = repeatedUnderscores.ReplaceAllString(sanitized, "_")

	if len(sanitized) > maxLength {
		ext := filepath.Ext(sanitized)
		if len(ext) >= maxLength {
			ext = ""
		}
		name := strings.TrimSuffix(sanitized, ext)
		sanitized = name[:maxLength-len(ext)] + ext
	}

	if sanitized == "" {
		sanitized = "video"
	}

	return sanitized
}

// SafePath joins a sanitized filename onto a directory, appending _1, _2,
// ... before the extension when the file already exists.
func SafePath(dir, filename string) string {
	name := SanitizeFilename(filename, DefaultMaxFilenameLength)
	path := filepath.Join(dir, name)

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for counter := 1; fileExists(path); counter++ {
		path = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, counter, ext))
	}
	return path
}

// FormatBytes formats a byte count into a human-readable string
func FormatBytes(size int64) string {
	value := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if value < 1024 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.1f PB", value)
}

// fileExists checks whether the path exists and is a regular file
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
