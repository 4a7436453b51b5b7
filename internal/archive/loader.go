// Package archive caches the documentation metadata embedded in compiled
// library archives (.swc files).
//
// A .swc is a ZIP container; ASDoc stores its DITA map at docs/packages.dita.
// The Manager opens each archive at most once per key and remembers negative
// outcomes, so repeated hover queries never reopen the same file.
package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"

	"asdocs/internal/dita"
)

// Suffix is the file extension of compiled library archives.
const Suffix = ".swc"

// DocsPath is the location of the DITA map inside an archive.
var DocsPath = path.Join("docs", dita.PackagesFile)

// Loader reads the documentation metadata of one archive.
// A nil list with a nil error means the archive carries no metadata.
type Loader interface {
	Load(path string) (*dita.List, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(path string) (*dita.List, error)

// Load calls f(path).
func (f LoaderFunc) Load(path string) (*dita.List, error) {
	return f(path)
}

// SWCLoader reads docs/packages.dita from a .swc file on disk.
type SWCLoader struct{}

// Load opens the archive and parses its DITA map, following topic
// references into other entries of the same archive.
func (SWCLoader) Load(path string) (*dita.List, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	if _, err := fs.Stat(&r.Reader, DocsPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", DocsPath, err)
	}
	return dita.Parse(&r.Reader, DocsPath)
}

// IsArchive reports whether path names a compiled library archive.
// The extension check ignores case.
func IsArchive(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), Suffix)
}
