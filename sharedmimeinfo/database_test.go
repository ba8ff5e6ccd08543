package sharedmimeinfo_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/MatthiasKunnen/xdgmime/sharedmimeinfo"
	"github.com/google/go-cmp/cmp"
)

func TestLoadFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"home/mime/globs2":  {Data: []byte("50:text/x-home:*.home\n50:image/png:__NOGLOBS__\n")},
		"home/mime/aliases": {Data: []byte("application/x-pdf application/pdf\n")},
		"sys/mime/globs2":   {Data: []byte("50:image/png:*.png\n50:application/pdf:*.pdf\n")},
		"sys/mime/magic": {Data: []byte(magicFile(
			magicSection(50, "image/png", magicRule(0, 0, pngSignature, "")),
		))},
		"sys/mime/subclasses": {Data: []byte("image/png application/octet-stream\n")},
		"legacy/mime/globs":   {Data: []byte("text/x-legacy:*.legacy\n")},
	}

	db, err := sharedmimeinfo.LoadFromFS(fsys, []string{"home", "missing", "sys", "legacy"})
	if err != nil {
		t.Fatal(err)
	}

	if db.Empty() {
		t.Fatalf("Empty() = true for a database with globs and magic")
	}

	lookups := map[string]string{
		"a.home":   "text/x-home",
		"a.pdf":    "application/pdf",
		"a.legacy": "text/x-legacy",
	}
	for name, want := range lookups {
		if got, _ := db.Globs.Lookup(name); got != want {
			t.Errorf("Globs.Lookup(%s) = %s, want %s", name, got, want)
		}
	}

	if _, ok := db.Globs.Lookup("a.png"); ok {
		t.Errorf("*.png should be removed by __NOGLOBS__ in the home directory")
	}

	if got, _ := db.Magic.Lookup([]byte(pngSignature)); got != "image/png" {
		t.Errorf("Magic.Lookup() = %s, want image/png", got)
	}

	if got := db.Aliases.Unalias("application/x-pdf"); got != "application/pdf" {
		t.Errorf("Unalias() = %s, want application/pdf", got)
	}

	want := []string{"application/octet-stream"}
	if diff := cmp.Diff(want, db.Subclass.BroaderDfs("image/png")); diff != "" {
		t.Errorf("BroaderDfs() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromFS_empty(t *testing.T) {
	db, err := sharedmimeinfo.LoadFromFS(fstest.MapFS{}, []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}

	if !db.Empty() {
		t.Errorf("Empty() = false for a database without files")
	}
	if _, ok := db.Globs.Lookup("report.pdf"); ok {
		t.Errorf("an empty database should not match anything")
	}
}

func TestLoadFromDirs_malformedNamesFile(t *testing.T) {
	good := t.TempDir()
	bad := t.TempDir()
	writeMimeFile(t, good, "globs2", "50:image/png:*.png\n")
	badPath := writeMimeFile(t, bad, "globs2", "not a glob line\n")

	_, err := sharedmimeinfo.LoadFromDirs([]string{good, bad})
	if err == nil {
		t.Fatal("LoadFromDirs() returned no error for a malformed globs2 file")
	}

	if !strings.Contains(err.Error(), badPath) {
		t.Errorf("error %q does not name the malformed file %s", err, badPath)
	}

	var malformed sharedmimeinfo.MalformedGlobError
	if !errors.As(err, &malformed) {
		t.Errorf("error %v does not wrap MalformedGlobError", err)
	}
}

func TestLoadFromDirs(t *testing.T) {
	dir := t.TempDir()
	writeMimeFile(t, dir, "globs2", "50:application/pdf:*.pdf\n")
	writeMimeFile(t, dir, "magic", magicFile(
		magicSection(50, "application/pdf", magicRule(0, 0, "%PDF-", "")),
	))

	db, err := sharedmimeinfo.LoadFromDirs([]string{dir})
	if err != nil {
		t.Fatal(err)
	}

	if got, _ := db.Globs.Lookup("report.pdf"); got != "application/pdf" {
		t.Errorf("Globs.Lookup() = %s, want application/pdf", got)
	}
	if got, _ := db.Magic.Lookup([]byte("%PDF-1.5")); got != "application/pdf" {
		t.Errorf("Magic.Lookup() = %s, want application/pdf", got)
	}
}

func TestLoadAliasesFromReaders(t *testing.T) {
	a, err := sharedmimeinfo.LoadAliasesFromReaders([]io.Reader{
		strings.NewReader("application/x-gzip application/gzip\n"),
		strings.NewReader("application/x-gzip application/x-other\ntext/xml application/xml\n"),
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := map[string]string{
		"application/x-gzip": "application/gzip",
		"text/xml":           "application/xml",
		"image/png":          "image/png",
	}
	for alias, want := range tests {
		if got := a.Unalias(alias); got != want {
			t.Errorf("Unalias(%s) = %s, want %s", alias, got, want)
		}
	}
}

func TestLoadAliasesFromReaders_malformed(t *testing.T) {
	_, err := sharedmimeinfo.LoadAliasesFromReaders([]io.Reader{
		strings.NewReader("application/x-gzip\n"),
	})

	want := sharedmimeinfo.MalformedAliasError{FileIndex: 0, LineIndex: 0}
	var malformed sharedmimeinfo.MalformedAliasError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedAliasError, got %v", err)
	}
	if diff := cmp.Diff(want, malformed); diff != "" {
		t.Errorf("error mismatch (-want +got):\n%s", diff)
	}
}

func writeMimeFile(t *testing.T, dataDir string, name string, content string) string {
	t.Helper()
	dir := filepath.Join(dataDir, "mime")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}
