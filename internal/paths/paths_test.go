package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestContainsSegment(t *testing.T) {
	tests := []struct {
		path      string
		signature string
		want      bool
	}{
		{"/sdk/frameworks/libs/framework.swc", "/frameworks/libs/", true},
		{`C:\sdk\frameworks\libs\framework.swc`, "/frameworks/libs/", true},
		{`C:\sdk\frameworks\libs\framework.swc`, `\frameworks\libs\`, true},
		{"/sdk/myframeworks/libs/x.swc", "/frameworks/libs/", false},
		{"/sdk/frameworks/libsx/x.swc", "/frameworks/libs/", false},
		{"/sdk/frameworks/libs/x.swc", "", false},
	}

	for _, tt := range tests {
		if got := ContainsSegment(tt.path, tt.signature); got != tt.want {
			t.Errorf("ContainsSegment(%q, %q) = %v, want %v", tt.path, tt.signature, got, tt.want)
		}
	}
}

func TestBase(t *testing.T) {
	tests := map[string]string{
		"/sdk/libs/player/playerglobal.swc": "playerglobal.swc",
		`C:\sdk\libs\airglobal.swc`:         "airglobal.swc",
		"plain.swc":                         "plain.swc",
		"/sdk/libs/":                        "libs",
	}
	for in, want := range tests {
		if got := Base(in); got != want {
			t.Errorf("Base(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFindAncestor(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		want   string
		wantOK bool
	}{
		{"unix", "/sdk/frameworks/libs/framework.swc", "/sdk/frameworks", true},
		{"windows", `C:\sdk\frameworks\libs\framework.swc`, `C:\sdk\frameworks`, true},
		{"nested libs", "/sdk/frameworks/libs/mx/mx.swc", "/sdk/frameworks", true},
		{"nearest wins", "/a/frameworks/b/frameworks/libs/x.swc", "/a/frameworks/b/frameworks", true},
		{"file itself is not an ancestor", "/sdk/frameworks", "", false},
		{"absent", "/opt/libs/framework.swc", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindAncestor(tt.path, "frameworks")
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("FindAncestor(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	if got := Join(`C:\sdk\frameworks`, "locale", "en_US", "framework_rb.swc"); got != `C:\sdk\frameworks\locale\en_US\framework_rb.swc` {
		t.Errorf("windows Join = %q", got)
	}
	want := filepath.Join("/sdk/frameworks", "locale", "en_US", "framework_rb.swc")
	if got := Join("/sdk/frameworks/", "locale", "en_US", "framework_rb.swc"); got != want {
		t.Errorf("Join = %q, want %q", got, want)
	}
}

func TestTrimExt(t *testing.T) {
	tests := map[string]string{
		"framework.swc": "framework",
		"a.b.swc":       "a.b",
		"noext":         "noext",
		".swc":          ".swc",
	}
	for in, want := range tests {
		if got := TrimExt(in); got != want {
			t.Errorf("TrimExt(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCanonicalize(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real")
	if err := os.Mkdir(target, 0o755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got, err := Canonicalize(link)
	if err != nil {
		t.Fatalf("Canonicalize failed: %v", err)
	}
	want, _ := filepath.EvalSymlinks(target)
	if got != want {
		t.Errorf("Canonicalize(link) = %q, want %q", got, want)
	}

	missing := filepath.Join(dir, "missing")
	got, err = Canonicalize(missing)
	if err != nil {
		t.Fatalf("Canonicalize(missing) failed: %v", err)
	}
	if got != missing {
		t.Errorf("Canonicalize(missing) = %q, want %q", got, missing)
	}
}
