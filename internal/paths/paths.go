// Package paths handles archive paths that may come from either platform.
// Hosts hand us paths with forward or backward slashes, so layout checks
// normalize separators before matching and convert back only when a path
// is handed to the filesystem.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// Normalize converts backslashes to forward slashes.
func Normalize(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}

// ContainsSegment reports whether path contains the slash-delimited
// signature, regardless of the separator style used by path.
// A signature such as "/frameworks/libs/" matches a directory sequence.
func ContainsSegment(path, signature string) bool {
	if signature == "" {
		return false
	}
	return strings.Contains(Normalize(path), Normalize(signature))
}

// Base returns the last element of path for either separator style.
func Base(path string) string {
	normalized := strings.TrimRight(Normalize(path), "/")
	if i := strings.LastIndex(normalized, "/"); i >= 0 {
		return normalized[i+1:]
	}
	return normalized
}

// FindAncestor walks upward from the parent directory of path and returns
// the first ancestor whose final element equals name. The result keeps the
// separator style of the input.
func FindAncestor(path, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	normalized := Normalize(path)
	dir := normalized
	for {
		i := strings.LastIndex(dir, "/")
		if i < 0 {
			return "", false
		}
		dir = dir[:i]
		if Base(dir) == name {
			// Slice the original string so backslashes survive.
			return path[:len(dir)], true
		}
	}
}

// Join appends slash-separated elements to base and converts the result to
// the separator style of base.
func Join(base string, elem ...string) string {
	joined := strings.Join(append([]string{strings.TrimRight(Normalize(base), "/")}, elem...), "/")
	if strings.Contains(base, "\\") && !strings.Contains(base, "/") {
		return strings.ReplaceAll(joined, "/", "\\")
	}
	return filepath.FromSlash(joined)
}

// TrimExt removes the final extension from name, if any.
func TrimExt(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}

// Canonicalize returns an absolute, symlink-resolved path. A path that does
// not exist yet is returned absolute but otherwise unchanged.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return abs, nil
		}
		return "", err
	}
	return resolved, nil
}
