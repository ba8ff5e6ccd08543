package sharedmimeinfo_test

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/MatthiasKunnen/xdgmime/sharedmimeinfo"
	"github.com/google/go-cmp/cmp"
)

func loadGlobs(t *testing.T, files ...string) *sharedmimeinfo.Globs {
	t.Helper()
	readers := make([]io.Reader, len(files))
	for i, f := range files {
		readers[i] = strings.NewReader(f)
	}

	g, err := sharedmimeinfo.LoadGlobsFromReaders(readers)
	if err != nil {
		t.Fatal(err)
	}

	return g
}

func ExampleGlobs_Lookup() {
	g, err := sharedmimeinfo.LoadGlobsFromReaders([]io.Reader{
		strings.NewReader(`# This file was automatically generated
50:application/x-compressed-tar:*.tar.gz
50:application/gzip:*.gz
`),
	})
	if err != nil {
		log.Fatalf("Failed to load globs: %v\n", err)
	}

	mime, _ := g.Lookup("backup/archive.tar.gz")
	fmt.Println(mime)
	// Output: application/x-compressed-tar
}

func TestGlobs_Lookup(t *testing.T) {
	g := loadGlobs(t, `50:application/pdf:*.pdf
50:application/gzip:*.gz
50:application/x-compressed-tar:*.tar.gz
50:text/x-csrc:*.c
50:text/x-c++src:*.C:cs
50:text/x-makefile:makefile
50:text/x-makefile:gnumakefile
10:text/x-readme:README*
50:text/markdown:*.md
50:text/x-log:*.[0-9]
`)

	tests := []struct {
		filename string
		want     string
	}{
		{"report.pdf", "application/pdf"},
		{"REPORT.PDF", "application/pdf"},
		{"/tmp/some dir/report.pdf", "application/pdf"},
		{"archive.tar.gz", "application/x-compressed-tar"},
		{"archive.TAR.GZ", "application/x-compressed-tar"},
		{"data.gz", "application/gzip"},
		{"main.c", "text/x-csrc"},
		{"main.C", "text/x-c++src"},
		{"Makefile", "text/x-makefile"},
		{"README", "text/x-readme"},
		{"README.md", "text/markdown"},
		{"syslog.1", "text/x-log"},
		{".gz", "application/gzip"},
	}

	for _, tt := range tests {
		got, ok := g.Lookup(tt.filename)
		if !ok {
			t.Errorf("Lookup(%q) found no match, want %s", tt.filename, tt.want)
			continue
		}
		if got != tt.want {
			t.Errorf("Lookup(%q) = %s, want %s", tt.filename, got, tt.want)
		}
	}
}

func TestGlobs_LookupNoMatch(t *testing.T) {
	g := loadGlobs(t, "50:application/pdf:*.pdf\n")

	for _, name := range []string{"README", "report.pdf.bak", "pdf", "/", "."} {
		if got, ok := g.Lookup(name); ok {
			t.Errorf("Lookup(%q) = %s, want no match", name, got)
		}
	}
}

func TestGlobs_Match_order(t *testing.T) {
	g := loadGlobs(t, `40:text/x-low:*.foo
60:text/x-high:*.foo
50:text/x-long:*.o.foo
50:text/x-literal:a.o.foo
`)

	got := g.Match("a.o.foo")
	want := []sharedmimeinfo.GlobRule{
		{Weight: 50, MimeType: "text/x-literal", Pattern: "a.o.foo"},
		{Weight: 50, MimeType: "text/x-long", Pattern: "*.o.foo"},
		{Weight: 60, MimeType: "text/x-high", Pattern: "*.foo"},
		{Weight: 40, MimeType: "text/x-low", Pattern: "*.foo"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Match() mismatch (-want +got):\n%s", diff)
	}
}

func TestGlobs_Match_isDeterministic(t *testing.T) {
	g := loadGlobs(t, `50:text/x-a:*.foo
50:text/x-b:*.foo
50:text/x-c:*.FOO:cs
`)

	first := g.Match("x.FOO")
	for range 10 {
		if diff := cmp.Diff(first, g.Match("x.FOO")); diff != "" {
			t.Fatalf("Match() is not deterministic (-first +got):\n%s", diff)
		}
	}

	if first[0].MimeType != "text/x-c" {
		t.Errorf("case-sensitive match should rank first, got %s", first[0].MimeType)
	}
}

func TestLoadGlobsFromReaders_noGlobs(t *testing.T) {
	g := loadGlobs(t,
		`50:text/x-custom:*.custom
50:application/x-foo:__NOGLOBS__
50:application/x-foo:*.foo2
`,
		`50:application/x-foo:*.foo
50:text/x-custom:*.cust
`,
	)

	if _, ok := g.Lookup("a.foo"); ok {
		t.Errorf("*.foo from a lower precedence file should be cleared by __NOGLOBS__")
	}
	if got, _ := g.Lookup("a.foo2"); got != "application/x-foo" {
		t.Errorf("Lookup(a.foo2) = %s, want application/x-foo", got)
	}
	if got, _ := g.Lookup("a.cust"); got != "text/x-custom" {
		t.Errorf("Lookup(a.cust) = %s, want text/x-custom", got)
	}
}

func TestGlobs_Match_bareStar(t *testing.T) {
	g := loadGlobs(t, "10:application/x-any:*\n50:application/pdf:*.pdf\n")

	if got, _ := g.Lookup("anything"); got != "application/x-any" {
		t.Errorf("Lookup(anything) = %s, want application/x-any", got)
	}

	want := []sharedmimeinfo.GlobRule{
		{Weight: 50, MimeType: "application/pdf", Pattern: "*.pdf"},
		{Weight: 10, MimeType: "application/x-any", Pattern: "*"},
	}
	if diff := cmp.Diff(want, g.Match("a.pdf")); diff != "" {
		t.Errorf("Match(a.pdf) mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadGlobsFromReaders_legacyFormat(t *testing.T) {
	g := loadGlobs(t, "image/png:*.png\n")

	want := []sharedmimeinfo.GlobRule{{Weight: 50, MimeType: "image/png", Pattern: "*.png"}}
	if diff := cmp.Diff(want, g.Match("a.png")); diff != "" {
		t.Errorf("Match() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadGlobsFromReaders_duplicates(t *testing.T) {
	g := loadGlobs(t, "50:image/png:*.png\n", "80:image/png:*.png\n")

	if g.Len() != 1 {
		t.Errorf("Len() = %d, want 1", g.Len())
	}
}

func TestLoadGlobsFromReaders_malformed(t *testing.T) {
	_, err := sharedmimeinfo.LoadGlobsFromReaders([]io.Reader{
		strings.NewReader("50:image/png:*.png\n"),
		strings.NewReader("# comment\n\nabc:image/png:*.png\n"),
	})

	var malformed sharedmimeinfo.MalformedGlobError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedGlobError, got %v", err)
	}

	want := sharedmimeinfo.MalformedGlobError{
		FileIndex: 1,
		LineIndex: 2,
		Line:      "abc:image/png:*.png",
	}
	if diff := cmp.Diff(want, malformed); diff != "" {
		t.Errorf("error mismatch (-want +got):\n%s", diff)
	}
}
