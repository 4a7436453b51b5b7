package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"asdocs/internal/config"
	"asdocs/internal/fallback"
	"asdocs/internal/testutil"
)

func TestNew_Defaults(t *testing.T) {
	ws, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer ws.Close()

	if ws.ID == "" {
		t.Error("workspace should have an ID")
	}
	if ws.Archives == nil || ws.Reference == nil || ws.Locator == nil {
		t.Fatal("workspace components should be initialized")
	}
	if _, ok, _ := ws.CacheStats(); ok {
		t.Error("persistent cache should be off by default")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Locale = "en_US!"
	if _, err := New(t.TempDir(), cfg); err == nil {
		t.Error("expected a validation error")
	}
}

func TestNew_IsolatedCaches(t *testing.T) {
	path := testutil.WriteDocumentedSWC(t, filepath.Join(t.TempDir(), "lib.swc"), testutil.DITAPackage("a",
		testutil.DITAClass("B", "Docs."),
	))

	first, _ := New(t.TempDir(), nil)
	second, _ := New(t.TempDir(), nil)
	if first.ID == second.ID {
		t.Error("workspaces should have distinct IDs")
	}

	if _, err := first.Archives.Open(path); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if first.Archives.Len() != 1 || second.Archives.Len() != 0 {
		t.Errorf("caches leaked across workspaces: %d, %d", first.Archives.Len(), second.Archives.Len())
	}
}

func TestNew_InstallRootFromConfig(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "playerglobal_docs", "packages.dita"), testutil.DITAMap())

	cfg := config.DefaultConfig()
	cfg.Bundled.InstallRoot = root
	ws, err := New(t.TempDir(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if got := ws.Reference.Path(); got != filepath.Join(root, "playerglobal_docs", "packages.dita") {
		t.Errorf("Reference.Path = %q", got)
	}
}

func TestNew_InstallLocatorOption(t *testing.T) {
	root := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Bundled.InstallRoot = "/ignored"

	ws, err := New(t.TempDir(), cfg, WithInstallLocator(fallback.StaticInstallRoot(root)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := ws.Reference.Path(); got != filepath.Join(root, "playerglobal_docs", "packages.dita") {
		t.Errorf("option should win over config, Reference.Path = %q", got)
	}
}

func TestNew_PersistentCache(t *testing.T) {
	projectRoot := t.TempDir()
	path := testutil.WriteDocumentedSWC(t, filepath.Join(t.TempDir(), "lib.swc"), testutil.DITAPackage("a",
		testutil.DITAClass("B", "Docs."),
	))

	cfg := config.DefaultConfig()
	cfg.Cache.Persist = true
	ws, err := New(projectRoot, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := ws.Archives.Get(path, "a.B"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	stats, ok, err := ws.CacheStats()
	if err != nil || !ok {
		t.Fatalf("CacheStats = (%v, %v)", ok, err)
	}
	if stats.Archives != 1 || stats.Documented != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if err := ws.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(projectRoot, ".asdocs", "cache.db")); err != nil {
		t.Errorf("cache database should exist: %v", err)
	}
}

func TestFallbackOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Locale = "fr-fr"

	opts := FallbackOptions(cfg)
	if opts.Locale != "fr_FR" {
		t.Errorf("Locale = %q, want fr_FR", opts.Locale)
	}
	def := fallback.DefaultOptions()
	if opts.LibrarySignature != def.LibrarySignature || opts.BundledDir != def.BundledDir || opts.BundledFile != def.BundledFile {
		t.Errorf("default config should map to default layout: %+v", opts)
	}
}

func TestWatchArchives(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteDocumentedSWC(t, filepath.Join(dir, "lib.swc"), testutil.DITAPackage("a",
		testutil.DITAClass("B", "Old."),
	))

	cfg := config.DefaultConfig()
	cfg.Watch.PollIntervalMs = 10
	cfg.Watch.DebounceMs = 10
	ws, err := New(t.TempDir(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer ws.Close()

	if _, err := ws.Archives.Get(path, "a.B"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	changed := make(chan []string, 1)
	wt := ws.WatchArchives(context.Background(), []string{path}, func(paths []string) {
		select {
		case changed <- paths:
		default:
		}
	})
	defer wt.Stop()

	replacement := testutil.WriteDocumentedSWC(t, filepath.Join(t.TempDir(), "lib.swc"), testutil.DITAPackage("a",
		testutil.DITAClass("B", "New and longer description."),
		testutil.DITAClass("C", "Added."),
	))
	if err := os.Rename(replacement, path); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	select {
	case paths := <-changed:
		if len(paths) != 1 || paths[0] != path {
			t.Errorf("changed = %v", paths)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("archive change was not reported")
	}

	if _, err := ws.Archives.Get(path, "a.C"); err != nil {
		t.Errorf("replaced archive should be re-read: %v", err)
	}
}

func TestWatchArchives_ReplacedBeforeWatch(t *testing.T) {
	path := testutil.WriteDocumentedSWC(t, filepath.Join(t.TempDir(), "lib.swc"), testutil.DITAPackage("a",
		testutil.DITAClass("B", "Old."),
	))

	cfg := config.DefaultConfig()
	cfg.Watch.PollIntervalMs = int(time.Hour / time.Millisecond)
	ws, err := New(t.TempDir(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer ws.Close()

	if _, err := ws.Archives.Get(path, "a.B"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	replacement := testutil.WriteDocumentedSWC(t, filepath.Join(t.TempDir(), "lib.swc"), testutil.DITAPackage("a",
		testutil.DITAClass("B", "Replaced before the watcher started."),
	))
	if err := os.Rename(replacement, path); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	var changed []string
	wt := ws.WatchArchives(context.Background(), []string{path}, func(paths []string) {
		changed = append(changed, paths...)
	})
	defer wt.Stop()

	if len(changed) != 1 || changed[0] != path {
		t.Errorf("changed = %v, want [%s]", changed, path)
	}
	c, err := ws.Archives.Get(path, "a.B")
	if err != nil {
		t.Fatalf("Get after watch failed: %v", err)
	}
	c.Compile(false)
	if desc, _ := c.Description(); desc != "Replaced before the watcher started." {
		t.Errorf("Description = %q, want the replaced text", desc)
	}
}

func TestWatchArchives_UnchangedArchiveKeepsEntry(t *testing.T) {
	path := testutil.WriteDocumentedSWC(t, filepath.Join(t.TempDir(), "lib.swc"), testutil.DITAPackage("a",
		testutil.DITAClass("B", "Stable."),
	))

	cfg := config.DefaultConfig()
	cfg.Watch.PollIntervalMs = int(time.Hour / time.Millisecond)
	ws, err := New(t.TempDir(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer ws.Close()

	first, err := ws.Archives.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	called := false
	wt := ws.WatchArchives(context.Background(), []string{path}, func([]string) { called = true })
	defer wt.Stop()

	if called {
		t.Error("unchanged archive was reported as changed")
	}
	if again, _ := ws.Archives.Open(path); again != first {
		t.Error("unchanged archive was reloaded")
	}
}
