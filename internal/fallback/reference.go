package fallback

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"asdocs/internal/dita"
	"asdocs/internal/errors"
	"asdocs/internal/paths"
	"asdocs/internal/slogutil"
)

// InstallLocator reports the directory the tool is installed in.
type InstallLocator func() (string, error)

// ExecutableInstallRoot is the default InstallLocator: two directory levels
// above the running executable (<root>/bin/asdocs), symlinks resolved.
func ExecutableInstallRoot() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	resolved, err := paths.Canonicalize(exe)
	if err != nil {
		return "", err
	}
	return filepath.Dir(filepath.Dir(resolved)), nil
}

// StaticInstallRoot returns an InstallLocator that always reports root.
func StaticInstallRoot(root string) InstallLocator {
	return func() (string, error) {
		return root, nil
	}
}

// Reference is the bundled platform reference document. It is parsed at
// most once; failures are remembered for the lifetime of the Reference.
type Reference struct {
	locate InstallLocator
	dir    string
	file   string
	logger *slog.Logger

	once sync.Once
	path string
	list *dita.List
	err  error
}

// NewReference creates a Reference stored at <install root>/<dir>/<file>.
func NewReference(locate InstallLocator, dir, file string, logger *slog.Logger) *Reference {
	if locate == nil {
		locate = ExecutableInstallRoot
	}
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Reference{locate: locate, dir: dir, file: file, logger: logger}
}

// List returns the parsed reference document.
func (r *Reference) List() (*dita.List, error) {
	r.once.Do(r.load)
	return r.list, r.err
}

// Path returns the resolved document path, or "" if it is not known yet or
// the install root could not be determined.
func (r *Reference) Path() string {
	r.once.Do(r.load)
	return r.path
}

func (r *Reference) load() {
	root, err := r.locate()
	if err != nil {
		r.err = errors.LayoutErr("", "cannot determine install root", err)
		return
	}
	r.path = filepath.Join(root, r.dir, r.file)

	if _, err := os.Stat(r.path); err != nil {
		if os.IsNotExist(err) {
			r.err = errors.NotFoundf(r.path, "bundled reference is not installed")
		} else {
			r.err = errors.MalformedErr(r.path, "cannot stat bundled reference", err)
		}
		r.logger.Debug("Bundled reference unavailable", "path", r.path, "error", r.err.Error())
		return
	}

	list, err := dita.Parse(os.DirFS(filepath.Dir(r.path)), filepath.Base(r.path))
	if err != nil {
		r.err = errors.MalformedErr(r.path, "unreadable bundled reference", err)
		r.logger.Debug("Bundled reference unreadable", "path", r.path, "error", err.Error())
		return
	}
	r.list = list
	r.logger.Debug("Bundled reference loaded", "path", r.path, "entries", list.Len())
}
