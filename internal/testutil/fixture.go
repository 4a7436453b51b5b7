// Package testutil provides fixture builders for archive and SDK layout tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
)

// SWCDocsPath is where ASDoc places the DITA map inside a .swc archive.
const SWCDocsPath = "docs/packages.dita"

// WriteSWC writes a .swc (ZIP) archive at path with the given entries.
// A catalog.xml and library.swf are always added so the archive looks real.
func WriteSWC(t *testing.T, path string, files map[string]string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create archive directory: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	all := map[string]string{
		"catalog.xml": `<?xml version="1.0" encoding="utf-8"?><swc xmlns="http://www.adobe.com/flash/swccatalog/9"/>`,
		"library.swf": "FWS",
	}
	for name, content := range files {
		all[name] = content
	}
	for name, content := range all {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to add %s: %v", name, err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to finish archive: %v", err)
	}
	return path
}

// WriteDocumentedSWC writes an archive whose docs/packages.dita holds the
// given DITA packages inline.
func WriteDocumentedSWC(t *testing.T, path string, packages ...string) string {
	t.Helper()
	return WriteSWC(t, path, map[string]string{SWCDocsPath: DITAMap(packages...)})
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// SDK is a throwaway framework SDK layout:
//
//	<Root>/frameworks/libs/...
//	<Root>/frameworks/locale/en_US/...
type SDK struct {
	Root       string
	Frameworks string
}

// NewSDK creates an empty SDK layout under t.TempDir().
func NewSDK(t *testing.T) *SDK {
	t.Helper()

	root := t.TempDir()
	frameworks := filepath.Join(root, "frameworks")
	for _, dir := range []string{"libs", filepath.Join("locale", "en_US")} {
		if err := os.MkdirAll(filepath.Join(frameworks, dir), 0o755); err != nil {
			t.Fatalf("Failed to create SDK layout: %v", err)
		}
	}
	return &SDK{Root: root, Frameworks: frameworks}
}

// Lib returns the path of a library archive under frameworks/libs.
func (s *SDK) Lib(parts ...string) string {
	return filepath.Join(append([]string{s.Frameworks, "libs"}, parts...)...)
}

// Locale returns the path of a resource archive under frameworks/locale/en_US.
func (s *SDK) Locale(name string) string {
	return filepath.Join(s.Frameworks, "locale", "en_US", name)
}

// DITAMap wraps packages in the <apiMap> root used by packages.dita.
func DITAMap(packages ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>` + "\n<apiMap>\n" + strings.Join(packages, "\n") + "\n</apiMap>\n"
}

// DITATopicMap returns a packages.dita that only references topic files.
func DITATopicMap(hrefs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n<apiMap>\n")
	for _, href := range hrefs {
		fmt.Fprintf(&b, "  <topicref href=%q/>\n", href)
	}
	b.WriteString("</apiMap>\n")
	return b.String()
}

// DITAPackage returns an <apiPackage> element holding members.
func DITAPackage(name string, members ...string) string {
	id := name
	if name == "" {
		id, name = "globalClassifier", "Top Level"
	}
	return fmt.Sprintf("<apiPackage id=%q><apiName>%s</apiName>\n%s\n</apiPackage>", id, name, strings.Join(members, "\n"))
}

// DITAClass returns an <apiClassifier> element.
func DITAClass(name, desc string, members ...string) string {
	return fmt.Sprintf("<apiClassifier id=%q><apiName>%s</apiName><shortdesc>%s</shortdesc>"+
		"<apiClassifierDetail><apiDesc>%s</apiDesc></apiClassifierDetail>\n%s\n</apiClassifier>",
		name, name, firstSentence(desc), desc, strings.Join(members, "\n"))
}

// DITAMethod returns an <apiOperation> element. params alternate name, desc.
func DITAMethod(name, desc string, params ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(params); i += 2 {
		fmt.Fprintf(&b, "<apiParam><apiItemName>%s</apiItemName><apiType value=\"Object\"/><apiDesc>%s</apiDesc></apiParam>",
			params[i], params[i+1])
	}
	return fmt.Sprintf("<apiOperation id=%q><apiName>%s</apiName><shortdesc/>"+
		"<apiOperationDetail><apiOperationDef>%s</apiOperationDef><apiDesc>%s</apiDesc></apiOperationDetail></apiOperation>",
		name, name, b.String(), desc)
}

// DITAValue returns an <apiValue> element (property or constant).
func DITAValue(name, desc string) string {
	return fmt.Sprintf("<apiValue id=%q><apiName>%s</apiName><shortdesc/>"+
		"<apiValueDetail><apiValueDef/><apiDesc>%s</apiDesc></apiValueDetail></apiValue>", name, name, desc)
}

func firstSentence(s string) string {
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	return s
}
