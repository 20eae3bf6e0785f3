// Package paths holds the filename sanitizer and the directory
// provisioner. Every name it returns is safe to use directly as a path
// segment.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FallbackName is returned when sanitizing leaves nothing usable.
const FallbackName = "unknown"

// maxNameLength bounds sanitized names, leaving headroom for the extension
// and parent-path length limits on common filesystems.
const maxNameLength = 200

const invalidChars = `<>:"/\|?*`

// PermissionError reports a directory that cannot be created or written.
type PermissionError struct {
	Dir      string
	Original error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("no write access to directory %s: %v", e.Dir, e.Original)
}

func (e *PermissionError) Unwrap() error {
	return e.Original
}

// SanitizeFilename turns an arbitrary title into a filesystem-safe,
// length-bounded name. The result is idempotent under re-sanitizing.
func SanitizeFilename(name string) string {
	if name == "" {
		return FallbackName
	}

	var b strings.Builder
	for _, r := range name {
		if !strings.ContainsRune(invalidChars, r) {
			b.WriteRune(r)
		}
	}

	// Collapse whitespace runs to single spaces.
	name = strings.Join(strings.Fields(b.String()), " ")

	if runes := []rune(name); len(runes) > maxNameLength {
		name = string(runes[:maxNameLength])
	}

	name = strings.Trim(name, ". ")
	if name == "" {
		return FallbackName
	}
	return name
}

// SanitizeID restricts an opaque source id to alphanumerics, hyphen, and
// underscore. Ids end up in on-disk paths, so anything else is dropped.
func SanitizeID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EnsureWritable creates dir (and parents) if absent and probes write
// access with a marker file, so permission problems surface before any
// download work starts.
func EnsureWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &PermissionError{Dir: dir, Original: err}
	}

	probe := filepath.Join(dir, ".permission_probe")
	f, err := os.Create(probe)
	if err != nil {
		return &PermissionError{Dir: dir, Original: err}
	}
	f.Close()
	if err := os.Remove(probe); err != nil {
		return &PermissionError{Dir: dir, Original: err}
	}
	return nil
}
