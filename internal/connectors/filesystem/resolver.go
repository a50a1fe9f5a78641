package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath converts a user-supplied location to a local path.
// Handles file:// URIs, a leading ~ and bare paths.
func ResolvePath(uri string) string {
	path := strings.TrimPrefix(uri, "file://")

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}

	return path
}

// SourceName names a single file for the index: its path relative to the
// working directory when it lies below it, otherwise its absolute path.
// Separators are always forward slashes.
func SourceName(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(filepath.Clean(path))
	}
	if wd, err := os.Getwd(); err == nil {
		rel, err := filepath.Rel(wd, abs)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(abs)
}
