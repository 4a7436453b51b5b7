package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// ConfigDir is the per-project directory holding config and cache files.
const ConfigDir = ".asdocs"

// CurrentVersion is the config schema version written by Save.
const CurrentVersion = 1

// EnvPrefix prefixes environment overrides, e.g. ASDOCS_LOCALE.
const EnvPrefix = "ASDOCS"

// Config represents the complete asdocs configuration (v1 schema)
type Config struct {
	Version    int              `json:"version" toml:"version" yaml:"version" mapstructure:"version"`
	Locale     string           `json:"locale" toml:"locale" yaml:"locale" mapstructure:"locale"`
	Frameworks FrameworksConfig `json:"frameworks" toml:"frameworks" yaml:"frameworks" mapstructure:"frameworks"`
	Bundled    BundledConfig    `json:"bundled" toml:"bundled" yaml:"bundled" mapstructure:"bundled"`
	Cache      CacheConfig      `json:"cache" toml:"cache" yaml:"cache" mapstructure:"cache"`
	Logging    LoggingConfig    `json:"logging" toml:"logging" yaml:"logging" mapstructure:"logging"`
	Watch      WatchConfig      `json:"watch" toml:"watch" yaml:"watch" mapstructure:"watch"`
}

// FrameworksConfig describes the framework SDK layout
type FrameworksConfig struct {
	LibrarySignature string `json:"librarySignature" toml:"librarySignature" yaml:"librarySignature" mapstructure:"librarySignature"`
	DirectoryName    string `json:"directoryName" toml:"directoryName" yaml:"directoryName" mapstructure:"directoryName"`
	LocaleDirectory  string `json:"localeDirectory" toml:"localeDirectory" yaml:"localeDirectory" mapstructure:"localeDirectory"`
	ResourceSuffix   string `json:"resourceSuffix" toml:"resourceSuffix" yaml:"resourceSuffix" mapstructure:"resourceSuffix"`
}

// BundledConfig locates the reference document installed with the tool
type BundledConfig struct {
	PlatformGlobals []string `json:"platformGlobals" toml:"platformGlobals" yaml:"platformGlobals" mapstructure:"platformGlobals"`
	Directory       string   `json:"directory" toml:"directory" yaml:"directory" mapstructure:"directory"`
	File            string   `json:"file" toml:"file" yaml:"file" mapstructure:"file"`
	// InstallRoot overrides the executable-relative install location.
	InstallRoot string `json:"installRoot,omitempty" toml:"installRoot,omitempty" yaml:"installRoot,omitempty" mapstructure:"installRoot"`
}

// CacheConfig contains archive cache settings
type CacheConfig struct {
	Persist         bool   `json:"persist" toml:"persist" yaml:"persist" mapstructure:"persist"`
	Path            string `json:"path" toml:"path" yaml:"path" mapstructure:"path"`
	WarmConcurrency int    `json:"warmConcurrency" toml:"warmConcurrency" yaml:"warmConcurrency" mapstructure:"warmConcurrency"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" toml:"format" yaml:"format" mapstructure:"format"`
	Level  string `json:"level" toml:"level" yaml:"level" mapstructure:"level"`
	// File additionally writes logs to a size-rotated file.
	File       string `json:"file,omitempty" toml:"file,omitempty" yaml:"file,omitempty" mapstructure:"file"`
	MaxSize    string `json:"maxSize" toml:"maxSize" yaml:"maxSize" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups" toml:"maxBackups" yaml:"maxBackups" mapstructure:"maxBackups"`
}

// WatchConfig controls polling of archives for replacement
type WatchConfig struct {
	PollIntervalMs int `json:"pollIntervalMs" toml:"pollIntervalMs" yaml:"pollIntervalMs" mapstructure:"pollIntervalMs"`
	DebounceMs     int `json:"debounceMs" toml:"debounceMs" yaml:"debounceMs" mapstructure:"debounceMs"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Locale:  "en_US",
		Frameworks: FrameworksConfig{
			LibrarySignature: "/frameworks/libs/",
			DirectoryName:    "frameworks",
			LocaleDirectory:  "locale",
			ResourceSuffix:   "_rb",
		},
		Bundled: BundledConfig{
			PlatformGlobals: []string{"playerglobal", "airglobal"},
			Directory:       "playerglobal_docs",
			File:            "packages.dita",
		},
		Cache: CacheConfig{
			Persist:         false,
			Path:            filepath.Join(ConfigDir, "cache.db"),
			WarmConcurrency: 4,
		},
		Logging: LoggingConfig{
			Format:     "human",
			Level:      "info",
			MaxSize:    "10MB",
			MaxBackups: 3,
		},
		Watch: WatchConfig{
			PollIntervalMs: 2000,
			DebounceMs:     500,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("locale", d.Locale)
	v.SetDefault("frameworks.librarySignature", d.Frameworks.LibrarySignature)
	v.SetDefault("frameworks.directoryName", d.Frameworks.DirectoryName)
	v.SetDefault("frameworks.localeDirectory", d.Frameworks.LocaleDirectory)
	v.SetDefault("frameworks.resourceSuffix", d.Frameworks.ResourceSuffix)
	v.SetDefault("bundled.platformGlobals", d.Bundled.PlatformGlobals)
	v.SetDefault("bundled.directory", d.Bundled.Directory)
	v.SetDefault("bundled.file", d.Bundled.File)
	v.SetDefault("bundled.installRoot", d.Bundled.InstallRoot)
	v.SetDefault("cache.persist", d.Cache.Persist)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("cache.warmConcurrency", d.Cache.WarmConcurrency)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
	v.SetDefault("watch.pollIntervalMs", d.Watch.PollIntervalMs)
	v.SetDefault("watch.debounceMs", d.Watch.DebounceMs)
}

// LoadConfig loads configuration from .asdocs/config.{json,toml,yaml} under
// root. Missing files yield the defaults; ASDOCS_* environment variables
// override both (ASDOCS_CACHE_PERSIST=true, ASDOCS_LOCALE=fr_FR, ...).
func LoadConfig(root string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.AddConfigPath(filepath.Join(root, ConfigDir))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to .asdocs/config.json
func (c *Config) Save(root string) (string, error) {
	configPath := filepath.Join(root, ConfigDir, "config.json")
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	return configPath, os.WriteFile(configPath, append(data, '\n'), 0644)
}

// SaveTOML writes the configuration to .asdocs/config.toml
func (c *Config) SaveTOML(root string) (string, error) {
	configPath := filepath.Join(root, ConfigDir, "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return "", err
	}

	f, err := os.Create(configPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return "", err
	}
	return configPath, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if _, err := parseLocale(c.Locale); err != nil {
		return &ConfigError{Field: "locale", Message: err.Error()}
	}

	required := []struct {
		field string
		value string
	}{
		{"frameworks.librarySignature", c.Frameworks.LibrarySignature},
		{"frameworks.directoryName", c.Frameworks.DirectoryName},
		{"frameworks.localeDirectory", c.Frameworks.LocaleDirectory},
		{"bundled.directory", c.Bundled.Directory},
		{"bundled.file", c.Bundled.File},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ConfigError{Field: r.field, Message: "must not be empty"}
		}
	}

	if c.Cache.Persist && c.Cache.Path == "" {
		return &ConfigError{Field: "cache.path", Message: "required when cache.persist is set"}
	}
	if c.Cache.WarmConcurrency < 1 {
		return &ConfigError{Field: "cache.warmConcurrency", Message: "must be at least 1"}
	}

	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be human or json"}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ConfigError{Field: "logging.level", Message: "must be debug, info, warn or error"}
	}
	if c.Logging.MaxBackups < 0 {
		return &ConfigError{Field: "logging.maxBackups", Message: "must not be negative"}
	}
	if c.Watch.PollIntervalMs < 1 {
		return &ConfigError{Field: "watch.pollIntervalMs", Message: "must be positive"}
	}
	if c.Watch.DebounceMs < 0 {
		return &ConfigError{Field: "watch.debounceMs", Message: "must not be negative"}
	}
	return nil
}

// LocaleDirectory returns the locale in SDK directory form ("en_US"),
// accepting BCP 47 input such as "en-us".
func (c *Config) LocaleDirectory() string {
	tag, err := parseLocale(c.Locale)
	if err != nil {
		return c.Locale
	}
	base, _ := tag.Base()
	region, confidence := tag.Region()
	if confidence != language.Exact {
		return base.String()
	}
	return base.String() + "_" + region.String()
}

func parseLocale(locale string) (language.Tag, error) {
	return language.Parse(strings.ReplaceAll(locale, "_", "-"))
}

// CachePath resolves the persistent cache location against root.
func (c *Config) CachePath(root string) string {
	if filepath.IsAbs(c.Cache.Path) {
		return c.Cache.Path
	}
	return filepath.Join(root, c.Cache.Path)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
