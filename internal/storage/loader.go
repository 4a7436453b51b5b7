package storage

import (
	"log/slog"
	"os"

	"asdocs/internal/archive"
	"asdocs/internal/dita"
	"asdocs/internal/errors"
	"asdocs/internal/slogutil"
)

// CachedLoader serves archive loads from an ArchiveCache and falls back to
// the wrapped Loader on a miss. Cache failures are logged and never change
// the documentation outcome.
type CachedLoader struct {
	next   archive.Loader
	cache  *ArchiveCache
	logger *slog.Logger
}

// NewCachedLoader wraps next with cache.
func NewCachedLoader(next archive.Loader, cache *ArchiveCache, logger *slog.Logger) *CachedLoader {
	if next == nil {
		next = archive.SWCLoader{}
	}
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &CachedLoader{next: next, cache: cache, logger: logger}
}

// Load implements archive.Loader.
func (l *CachedLoader) Load(path string) (*dita.List, error) {
	info, err := os.Stat(path)
	if err != nil {
		return l.next.Load(path)
	}
	fp := FingerprintOf(info)

	rec, hit, err := l.cache.Get(path, fp)
	if err != nil {
		l.logger.Warn("Archive cache read failed", "path", path, "error", err.Error())
	} else if hit {
		l.logger.Debug("Archive cache hit", "path", path, "entries", len(rec.Entries))
		switch {
		case rec.LoadError != "":
			return nil, errors.MalformedErr(path, rec.LoadError, nil)
		case !rec.Documented:
			return nil, nil
		default:
			return dita.NewList(rec.Entries), nil
		}
	}

	list, loadErr := l.next.Load(path)

	rec = &Record{}
	switch {
	case loadErr != nil:
		rec.LoadError = loadErr.Error()
	case list != nil:
		rec.Documented = true
		rec.Entries = list.Entries()
	}
	if err := l.cache.Put(path, fp, rec); err != nil {
		l.logger.Warn("Archive cache write failed", "path", path, "error", err.Error())
	}
	return list, loadErr
}
