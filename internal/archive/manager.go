package archive

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"asdocs/internal/asdoc"
	"asdocs/internal/dita"
	"asdocs/internal/errors"
	"asdocs/internal/slogutil"
)

// Archive is the cached view of one library archive.
type Archive struct {
	Path    string     `json:"path"`
	Name    string     `json:"name"`
	Size    int64      `json:"size"`
	ModTime time.Time  `json:"modTime"`
	Docs    *dita.List `json:"-"`
}

// Documented reports whether the archive carries a metadata list.
func (a *Archive) Documented() bool {
	return a != nil && a.Docs != nil
}

type entry struct {
	once    sync.Once
	archive *Archive
	err     error

	// guarded by Manager.mu
	loaded bool
	stamp  stamp
}

// stamp is the on-disk state an entry was loaded from.
type stamp struct {
	size    int64
	modTime time.Time
}

func stampOf(info os.FileInfo) stamp {
	return stamp{size: info.Size(), modTime: info.ModTime()}
}

func (s stamp) same(o stamp) bool {
	return s.size == o.size && s.modTime.Equal(o.modTime)
}

// Manager is a per-workspace cache of archive metadata, keyed by absolute
// archive path. It is safe for concurrent use.
type Manager struct {
	loader Loader
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

// NewManager creates a Manager reading archives through loader.
// A nil loader reads .swc files from disk; a nil logger discards output.
func NewManager(loader Loader, logger *slog.Logger) *Manager {
	if loader == nil {
		loader = SWCLoader{}
	}
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Manager{
		loader:  loader,
		logger:  logger,
		entries: make(map[string]*entry),
	}
}

// Open returns the cached archive for path, loading it on first access.
//
// A missing file yields NOT_FOUND and is not remembered, so an archive that
// appears later is picked up. Every other outcome, including load failures
// and archives without metadata, is cached until Invalidate.
func (m *Manager) Open(path string) (*Archive, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.MalformedErr(path, "invalid archive path", err)
	}

	info, err := os.Stat(key)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf(key, "archive does not exist")
		}
		return nil, errors.MalformedErr(key, "cannot stat archive", err)
	}
	if info.IsDir() {
		return nil, errors.MalformedErr(key, "archive path is a directory", nil)
	}

	e := m.entry(key)
	e.once.Do(func() {
		e.archive, e.err = m.load(key, info)
		m.mu.Lock()
		e.loaded, e.stamp = true, stampOf(info)
		m.mu.Unlock()
	})
	return e.archive, e.err
}

func (m *Manager) entry(key string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		e = &entry{}
		m.entries[key] = e
	}
	return e
}

func (m *Manager) load(key string, info os.FileInfo) (*Archive, error) {
	list, err := m.loader.Load(key)
	if err != nil {
		m.logger.Debug("Archive load failed", "path", key, "error", err.Error())
		if errors.CodeOf(err) != errors.InternalError {
			return nil, err
		}
		return nil, errors.MalformedErr(key, "unreadable archive", err)
	}

	a := &Archive{
		Path:    key,
		Name:    filepath.Base(key),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Docs:    list,
	}
	m.logger.Debug("Archive loaded",
		"path", key,
		"documented", a.Documented(),
		"entries", list.Len(),
	)
	return a, nil
}

// Get returns a fresh comment for qualifiedName from the archive's own
// metadata list.
func (m *Manager) Get(path, qualifiedName string) (*asdoc.Comment, error) {
	a, err := m.Open(path)
	if err != nil {
		return nil, err
	}
	if !a.Documented() {
		return nil, errors.NotFoundf(a.Path, "archive carries no documentation metadata")
	}
	c, ok := a.Docs.Comment(qualifiedName)
	if !ok {
		return nil, errors.NotFoundf(a.Path, "%s is not documented", qualifiedName)
	}
	return c, nil
}

// Invalidate drops the cached entry for path. The next access reloads it.
func (m *Manager) Invalidate(path string) {
	key, err := filepath.Abs(path)
	if err != nil {
		return
	}
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// Refresh drops the cached entries among paths whose file was replaced,
// changed or removed since it was loaded, and returns those paths as given.
// Paths that were never loaded are skipped.
func (m *Manager) Refresh(paths []string) []string {
	var stale []string
	for _, p := range paths {
		key, err := filepath.Abs(p)
		if err != nil {
			continue
		}

		m.mu.Lock()
		e, ok := m.entries[key]
		if !ok || !e.loaded {
			m.mu.Unlock()
			continue
		}
		loaded := e.stamp
		m.mu.Unlock()

		info, err := os.Stat(key)
		if err == nil && stampOf(info).same(loaded) {
			continue
		}

		m.mu.Lock()
		if m.entries[key] == e {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		stale = append(stale, p)
	}
	return stale
}

// Len returns the number of cached entries.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// WarmReport summarizes a Warm run.
type WarmReport struct {
	Archives   int `json:"archives"`
	Documented int `json:"documented"`
	Failed     int `json:"failed"`
}

// Warm loads the given archives concurrently, at most concurrency at a time.
// Individual failures are counted, not returned; the only error is the
// context's.
func (m *Manager) Warm(ctx context.Context, paths []string, concurrency int) (WarmReport, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	var documented, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, p := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a, err := m.Open(p)
			if err != nil {
				failed.Add(1)
				m.logger.Debug("Warm skipped archive", "path", p, "code", string(errors.CodeOf(err)))
				return nil
			}
			if a.Documented() {
				documented.Add(1)
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	report := WarmReport{
		Archives:   len(paths),
		Documented: int(documented.Load()),
		Failed:     int(failed.Load()),
	}
	m.logger.Info("Archive cache warmed",
		"archives", report.Archives,
		"documented", report.Documented,
		"failed", report.Failed,
	)
	return report, err
}
