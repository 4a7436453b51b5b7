// Package fallback finds documentation for framework and platform archives
// whose own metadata is missing. Framework SDKs ship descriptions in a locale
// companion archive next to the library; platform globals are documented by
// a reference document installed with the tool.
package fallback

import (
	"log/slog"
	"strings"

	"asdocs/internal/archive"
	"asdocs/internal/dita"
	"asdocs/internal/errors"
	"asdocs/internal/paths"
	"asdocs/internal/slogutil"
)

// Options describes the SDK layout the Locator expects.
type Options struct {
	Locale           string   // locale directory name, e.g. "en_US"
	LibrarySignature string   // path fragment marking framework libraries
	FrameworksDir    string   // ancestor holding libs/ and locale/
	LocaleDir        string   // locale root under FrameworksDir
	ResourceSuffix   string   // appended to the library name, e.g. "_rb"
	PlatformGlobals  []string // file name fragments of platform libraries
	BundledDir       string
	BundledFile      string
}

// DefaultOptions returns the layout of the Flex and AIR SDKs.
func DefaultOptions() Options {
	return Options{
		Locale:           "en_US",
		LibrarySignature: "/frameworks/libs/",
		FrameworksDir:    "frameworks",
		LocaleDir:        "locale",
		ResourceSuffix:   "_rb",
		PlatformGlobals:  []string{"playerglobal", "airglobal"},
		BundledDir:       "playerglobal_docs",
		BundledFile:      dita.PackagesFile,
	}
}

// Tier names the source a metadata list came from.
type Tier string

const (
	TierNone     Tier = ""
	TierExplicit Tier = "explicit"
	TierArchive  Tier = "archive"
	TierLocale   Tier = "locale"
	TierBundled  Tier = "bundled"
)

// Origin records where a fallback list was found.
type Origin struct {
	Tier Tier   `json:"tier"`
	Path string `json:"path,omitempty"`
}

// Locator resolves the fallback metadata list for an archive.
type Locator struct {
	opts      Options
	archives  *archive.Manager
	reference *Reference
	logger    *slog.Logger
}

// NewLocator creates a Locator. Locale companion archives are read through
// archives, so they share its cache.
func NewLocator(opts Options, archives *archive.Manager, reference *Reference, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Locator{opts: opts, archives: archives, reference: reference, logger: logger}
}

// IsFrameworkLibrary reports whether path lies in a framework libs directory.
func (l *Locator) IsFrameworkLibrary(path string) bool {
	return paths.ContainsSegment(path, l.opts.LibrarySignature)
}

// IsPlatformGlobal reports whether the archive's file name contains one of
// the platform-global names.
func (l *Locator) IsPlatformGlobal(path string) bool {
	name := paths.Base(path)
	for _, global := range l.opts.PlatformGlobals {
		if global != "" && strings.Contains(name, global) {
			return true
		}
	}
	return false
}

// Applies reports whether any fallback tier is relevant for path.
func (l *Locator) Applies(path string) bool {
	return l.IsFrameworkLibrary(path) || l.IsPlatformGlobal(path)
}

// LocaleArchivePath returns the locale companion of a framework library:
// <frameworks>/<locale dir>/<locale>/<name><suffix>.swc.
func (l *Locator) LocaleArchivePath(path string) (string, error) {
	frameworks, ok := paths.FindAncestor(path, l.opts.FrameworksDir)
	if !ok {
		return "", errors.LayoutErr(path, "no "+l.opts.FrameworksDir+" ancestor directory", nil)
	}
	name := paths.TrimExt(paths.Base(path)) + l.opts.ResourceSuffix + archive.Suffix
	return paths.Join(frameworks, l.opts.LocaleDir, l.opts.Locale, name), nil
}

// List returns the first fallback metadata list found for path.
func (l *Locator) List(path string) (*dita.List, error) {
	list, _, err := l.Find(path)
	return list, err
}

// Find returns the first fallback metadata list for path and where it was
// found. Tiers are tried in order and the first one that carries a list is
// authoritative. Layout and read errors stop the search.
func (l *Locator) Find(path string) (*dita.List, Origin, error) {
	if l.IsFrameworkLibrary(path) {
		list, origin, err := l.fromLocale(path)
		if err != nil || list != nil {
			return list, origin, err
		}
	}

	if l.IsPlatformGlobal(path) && l.reference != nil {
		list, err := l.reference.List()
		if err != nil {
			return nil, Origin{}, err
		}
		if list != nil {
			return list, Origin{Tier: TierBundled, Path: l.reference.Path()}, nil
		}
	}

	return nil, Origin{}, errors.NotFoundf(path, "no fallback documentation")
}

func (l *Locator) fromLocale(path string) (*dita.List, Origin, error) {
	companion, err := l.LocaleArchivePath(path)
	if err != nil {
		return nil, Origin{}, err
	}

	a, err := l.archives.Open(companion)
	if err != nil {
		if errors.IsNotFound(err) {
			l.logger.Debug("No locale companion archive", "path", companion)
			return nil, Origin{}, nil
		}
		return nil, Origin{}, err
	}
	if !a.Documented() {
		return nil, Origin{}, nil
	}
	return a.Docs, Origin{Tier: TierLocale, Path: a.Path}, nil
}
