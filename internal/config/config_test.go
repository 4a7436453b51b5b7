package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if cfg.Locale != "en_US" {
		t.Errorf("Locale = %q, want en_US", cfg.Locale)
	}
	if cfg.Frameworks.LibrarySignature != "/frameworks/libs/" {
		t.Errorf("LibrarySignature = %q", cfg.Frameworks.LibrarySignature)
	}
	if !reflect.DeepEqual(cfg.Bundled.PlatformGlobals, []string{"playerglobal", "airglobal"}) {
		t.Errorf("PlatformGlobals = %v", cfg.Bundled.PlatformGlobals)
	}
	if cfg.Cache.Persist {
		t.Error("persistent cache should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("missing config should load defaults, got %+v", cfg)
	}
}

func TestLoadConfig_JSON(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.json", `{
  "version": 1,
  "locale": "fr_FR",
  "bundled": {"installRoot": "/opt/asdocs"},
  "cache": {"persist": true, "warmConcurrency": 8}
}`)

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Locale != "fr_FR" {
		t.Errorf("Locale = %q, want fr_FR", cfg.Locale)
	}
	if cfg.Bundled.InstallRoot != "/opt/asdocs" {
		t.Errorf("InstallRoot = %q", cfg.Bundled.InstallRoot)
	}
	if !cfg.Cache.Persist || cfg.Cache.WarmConcurrency != 8 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	// Unset keys keep their defaults.
	if cfg.Bundled.Directory != "playerglobal_docs" {
		t.Errorf("Bundled.Directory = %q, want default", cfg.Bundled.Directory)
	}
	if cfg.Logging.Format != "human" {
		t.Errorf("Logging.Format = %q, want default", cfg.Logging.Format)
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.yaml", "version: 1\nlogging:\n  format: json\n  level: debug\n")

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.json", `{"version": 1, "locale": "fr_FR"}`)
	t.Setenv("ASDOCS_LOCALE", "de_DE")
	t.Setenv("ASDOCS_CACHE_PERSIST", "true")

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Locale != "de_DE" {
		t.Errorf("Locale = %q, env should win", cfg.Locale)
	}
	if !cfg.Cache.Persist {
		t.Error("ASDOCS_CACHE_PERSIST should enable the persistent cache")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.json", `{"version": `)

	if _, err := LoadConfig(root); err == nil {
		t.Error("expected an error for unparseable config")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		save func(*Config, string) (string, error)
		file string
	}{
		{"json", (*Config).Save, "config.json"},
		{"toml", (*Config).SaveTOML, "config.toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			cfg := DefaultConfig()
			cfg.Locale = "ja_JP"
			cfg.Bundled.PlatformGlobals = []string{"playerglobal"}

			path, err := tt.save(cfg, root)
			if err != nil {
				t.Fatalf("save failed: %v", err)
			}
			if filepath.Base(path) != tt.file {
				t.Errorf("wrote %s, want %s", path, tt.file)
			}

			loaded, err := LoadConfig(root)
			if err != nil {
				t.Fatalf("LoadConfig failed: %v", err)
			}
			if !reflect.DeepEqual(loaded, cfg) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"version", func(c *Config) { c.Version = 9 }, "version"},
		{"locale", func(c *Config) { c.Locale = "en_US!" }, "locale"},
		{"signature", func(c *Config) { c.Frameworks.LibrarySignature = "" }, "frameworks.librarySignature"},
		{"bundled file", func(c *Config) { c.Bundled.File = " " }, "bundled.file"},
		{"cache path", func(c *Config) { c.Cache.Persist = true; c.Cache.Path = "" }, "cache.path"},
		{"concurrency", func(c *Config) { c.Cache.WarmConcurrency = 0 }, "cache.warmConcurrency"},
		{"format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"poll interval", func(c *Config) { c.Watch.PollIntervalMs = 0 }, "watch.pollIntervalMs"},
		{"debounce", func(c *Config) { c.Watch.DebounceMs = -1 }, "watch.debounceMs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			ce, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("Validate = %v, want *ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestLocaleDirectory(t *testing.T) {
	tests := map[string]string{
		"en_US": "en_US",
		"en-us": "en_US",
		"fr_FR": "fr_FR",
		"ja":    "ja",
	}
	for in, want := range tests {
		cfg := DefaultConfig()
		cfg.Locale = in
		if got := cfg.LocaleDirectory(); got != want {
			t.Errorf("LocaleDirectory(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCachePath(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.CachePath("/proj"); got != filepath.Join("/proj", ".asdocs", "cache.db") {
		t.Errorf("CachePath = %q", got)
	}
	cfg.Cache.Path = "/var/cache/asdocs.db"
	if got := cfg.CachePath("/proj"); got != "/var/cache/asdocs.db" {
		t.Errorf("absolute CachePath = %q", got)
	}
}

func writeConfig(t *testing.T, root, name, content string) {
	t.Helper()
	dir := filepath.Join(root, ConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
}
