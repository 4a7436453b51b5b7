package slogutil

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// RotatingFile implements io.WriteCloser with size-based rotation.
// It rotates log files when they exceed maxSize bytes, keeping up to
// maxBackups rotated files (e.g., log.1, log.2, log.3).
type RotatingFile struct {
	path       string
	maxSize    int64
	maxBackups int
	file       *os.File
	size       int64
	mu         sync.Mutex
}

// OpenRotatingFile opens a file with rotation support.
// If maxSize is 0, rotation is disabled.
// If maxBackups is 0, old rotated files are deleted immediately.
func OpenRotatingFile(path string, maxSize int64, maxBackups int) (*RotatingFile, error) {
	rf := &RotatingFile{
		path:       path,
		maxSize:    maxSize,
		maxBackups: maxBackups,
	}

	if err := rf.openFile(); err != nil {
		return nil, err
	}

	return rf, nil
}

// openFile opens or creates the log file and gets its current size
func (r *RotatingFile) openFile() error {
	// Ensure parent directory exists
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	// Get current file size
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}

	r.file = f
	r.size = info.Size()
	return nil
}

// Write implements io.Writer. A write that would overflow maxSize rotates
// first, unless the current file is still empty.
func (r *RotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return 0, os.ErrClosed
	}
	if r.maxSize > 0 && r.size > 0 && r.size+int64(len(p)) > r.maxSize {
		// A failed rotation keeps writing to whatever file is open.
		_ = r.rotate()
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// Close implements io.Closer
func (r *RotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// rotate shifts log -> log.1 -> log.2 ... and drops backups past maxBackups.
func (r *RotatingFile) rotate() error {
	if err := r.file.Close(); err != nil {
		return err
	}

	if r.maxBackups > 0 {
		_ = os.Remove(r.backupPath(r.maxBackups))
	}
	for i := r.maxBackups - 1; i >= 1; i-- {
		_ = os.Rename(r.backupPath(i), r.backupPath(i+1))
	}
	if r.maxBackups > 0 {
		_ = os.Rename(r.path, r.backupPath(1))
	} else {
		_ = os.Remove(r.path)
	}

	r.size = 0
	return r.openFile()
}

func (r *RotatingFile) backupPath(n int) string {
	return fmt.Sprintf("%s.%d", r.path, n)
}

var sizePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(B|KB|MB|GB)?$`)

var sizeUnits = map[string]float64{
	"":   1,
	"B":  1,
	"KB": 1 << 10,
	"MB": 1 << 20,
	"GB": 1 << 30,
}

// ParseSize parses a size string like "10MB", "1GB", "500KB" into bytes.
// Returns 0 for empty or invalid strings.
func ParseSize(s string) int64 {
	matches := sizePattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if matches == nil {
		return 0
	}
	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0
	}
	return int64(value * sizeUnits[matches[2]])
}

// NewFileLoggerWithRotation creates a rotating file logger for the
// logging.file setting. An empty or invalid maxSize disables rotation.
func NewFileLoggerWithRotation(path string, level slog.Level, maxSize string, maxBackups int) (*slog.Logger, io.Closer, error) {
	size := ParseSize(maxSize)
	if size <= 0 {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, nil, err
		}
		return NewFileLogger(path, level)
	}

	rf, err := OpenRotatingFile(path, size, maxBackups)
	if err != nil {
		return nil, nil, err
	}

	return NewLogger(rf, level), rf, nil
}
