// Package workspace owns the documentation caches for one host session.
// Every cache lives on a Workspace value; there is no package-level state,
// so two workspaces never observe each other's entries.
package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"asdocs/internal/archive"
	"asdocs/internal/config"
	"asdocs/internal/fallback"
	"asdocs/internal/slogutil"
	"asdocs/internal/storage"
	"asdocs/internal/watcher"
)

// Workspace holds the archive index, the bundled reference and the
// fallback locator built from one configuration.
type Workspace struct {
	ID     string
	Root   string
	Config *config.Config

	Archives  *archive.Manager
	Reference *fallback.Reference
	Locator   *fallback.Locator

	logger *slog.Logger
	db     *storage.DB
	cache  *storage.ArchiveCache
}

type options struct {
	loader  archive.Loader
	install fallback.InstallLocator
	logger  *slog.Logger
}

// Option customizes New.
type Option func(*options)

// WithLoader replaces the on-disk .swc loader.
func WithLoader(loader archive.Loader) Option {
	return func(o *options) { o.loader = loader }
}

// WithInstallLocator replaces the executable-relative install root lookup.
func WithInstallLocator(locate fallback.InstallLocator) Option {
	return func(o *options) { o.install = locate }
}

// WithLogger sets the logger; the default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New creates a Workspace for the project at root. A nil cfg uses the
// defaults. When cfg.Cache.Persist is set, archive loads go through the
// SQLite cache at cfg.CachePath(root).
func New(root string, cfg *config.Config, opts ...Option) (*Workspace, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slogutil.NewDiscardLogger()
	}
	if o.install == nil {
		if cfg.Bundled.InstallRoot != "" {
			o.install = fallback.StaticInstallRoot(cfg.Bundled.InstallRoot)
		} else {
			o.install = fallback.ExecutableInstallRoot
		}
	}
	if o.loader == nil {
		o.loader = archive.SWCLoader{}
	}

	id := uuid.NewString()
	logger := o.logger.With("workspace", id[:8])
	w := &Workspace{
		ID:     id,
		Root:   root,
		Config: cfg,
		logger: logger,
	}

	loader := o.loader
	if cfg.Cache.Persist {
		if err := w.openCache(root); err != nil {
			return nil, err
		}
		loader = storage.NewCachedLoader(loader, w.cache, logger)
	}

	fopts := FallbackOptions(cfg)
	w.Archives = archive.NewManager(loader, logger)
	w.Reference = fallback.NewReference(o.install, fopts.BundledDir, fopts.BundledFile, logger)
	w.Locator = fallback.NewLocator(fopts, w.Archives, w.Reference, logger)

	logger.Debug("Workspace created",
		"root", root,
		"locale", fopts.Locale,
		"persist", cfg.Cache.Persist,
	)
	return w, nil
}

func (w *Workspace) openCache(root string) error {
	db, err := storage.Open(w.Config.CachePath(root), w.logger)
	if err != nil {
		return fmt.Errorf("open archive cache: %w", err)
	}
	cache, err := storage.NewArchiveCache(db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("open archive cache: %w", err)
	}
	w.db, w.cache = db, cache
	return nil
}

// FallbackOptions maps the configuration onto the locator's layout options.
func FallbackOptions(cfg *config.Config) fallback.Options {
	return fallback.Options{
		Locale:           cfg.LocaleDirectory(),
		LibrarySignature: cfg.Frameworks.LibrarySignature,
		FrameworksDir:    cfg.Frameworks.DirectoryName,
		LocaleDir:        cfg.Frameworks.LocaleDirectory,
		ResourceSuffix:   cfg.Frameworks.ResourceSuffix,
		PlatformGlobals:  cfg.Bundled.PlatformGlobals,
		BundledDir:       cfg.Bundled.Directory,
		BundledFile:      cfg.Bundled.File,
	}
}

// WatchArchives polls paths and drops their cached metadata when they are
// replaced, created or removed. Entries loaded from a file that changed
// before the call are invalidated immediately. onChange, if not nil,
// receives the changed paths after their entries were invalidated; the
// first call may happen before WatchArchives returns. The watcher runs until ctx is
// done or it is stopped.
func (w *Workspace) WatchArchives(ctx context.Context, paths []string, onChange func(paths []string)) *watcher.Watcher {
	wcfg := watcher.Config{
		PollInterval: time.Duration(w.Config.Watch.PollIntervalMs) * time.Millisecond,
		Debounce:     time.Duration(w.Config.Watch.DebounceMs) * time.Millisecond,
	}

	wt := watcher.New(wcfg, w.logger, func(events []watcher.Event) {
		changed := watcher.ChangedPaths(events)
		for _, path := range changed {
			w.Archives.Invalidate(path)
		}
		w.reportChanged(changed, onChange)
	})

	// The watcher's baseline is taken now, but entries may have been loaded
	// from an older file. Anything replaced in between is reloaded here;
	// later changes are reported by polling.
	wt.Add(paths...)
	if stale := w.Archives.Refresh(paths); len(stale) > 0 {
		w.reportChanged(stale, onChange)
	}
	wt.Start(ctx)
	return wt
}

func (w *Workspace) reportChanged(paths []string, onChange func(paths []string)) {
	for _, path := range paths {
		w.logger.Info("Archive changed", "path", path)
	}
	if onChange != nil {
		onChange(paths)
	}
}

// Logger returns the workspace logger.
func (w *Workspace) Logger() *slog.Logger {
	return w.logger
}

// CacheStats reports the persistent cache contents. ok is false when the
// workspace runs without one.
func (w *Workspace) CacheStats() (stats storage.CacheStats, ok bool, err error) {
	if w.cache == nil {
		return storage.CacheStats{}, false, nil
	}
	stats, err = w.cache.Stats()
	return stats, true, err
}

// Close releases the persistent cache, if any. In-memory caches are
// dropped with the Workspace.
func (w *Workspace) Close() error {
	if w.cache == nil {
		return nil
	}
	cacheErr := w.cache.Close()
	dbErr := w.db.Close()
	w.cache, w.db = nil, nil
	if cacheErr != nil {
		return cacheErr
	}
	return dbErr
}
