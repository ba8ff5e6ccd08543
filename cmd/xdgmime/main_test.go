package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/MatthiasKunnen/xdgmime/basedir"
)

// isolate makes commands use the builtin database and ignore any user configuration.
func isolate(t *testing.T) {
	t.Helper()
	t.Cleanup(basedir.Reinit)

	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("XDG_CONFIG_DIRS", filepath.Join(configHome, "none"))
	t.Setenv("XDGMIME_CONFIG", "")
	_ = os.Unsetenv("XDGMIME_CONFIG")
	t.Setenv("XDGMIME_BUILTIN", "true")
	basedir.Reinit()
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func TestNameCommand(t *testing.T) {
	isolate(t)

	got, err := execute(t, "name", "report.pdf", "archive.tar.gz", "README")
	if err != nil {
		t.Fatal(err)
	}

	want := "report.pdf: application/pdf\n" +
		"archive.tar.gz: application/x-compressed-tar\n" +
		"README: (unknown)\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestFileCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	png := filepath.Join(dir, "photo.txt")
	if err := os.WriteFile(png, []byte("\x89PNG\r\n\x1a\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := execute(t, "file", png)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(png+": image/png\n", got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestFileCommand_missing(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	pdf := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(pdf, []byte("%PDF-1.7\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := execute(t, "file", filepath.Join(dir, "missing"), pdf)
	if !errors.Is(err, errInaccessible) {
		t.Errorf("error = %v, want errInaccessible", err)
	}

	if diff := cmp.Diff(pdf+": application/pdf\n", got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDatabase_dataDirs(t *testing.T) {
	isolate(t)
	t.Setenv("XDGMIME_BUILTIN", "false")

	dataDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dataDir, "mime"), 0o700); err != nil {
		t.Fatal(err)
	}
	globs := "50:text/x-custom:*.custom\n"
	if err := os.WriteFile(filepath.Join(dataDir, "mime", "globs2"), []byte(globs), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("XDGMIME_DATA_DIRS", dataDir)

	got, err := execute(t, "name", "a.custom", "a.pdf")
	if err != nil {
		t.Fatal(err)
	}

	want := "a.custom: text/x-custom\na.pdf: (unknown)\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestVersionCommand(t *testing.T) {
	got, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}

	if got != "xdgmime dev\n" {
		t.Errorf("version output = %q", got)
	}
}
