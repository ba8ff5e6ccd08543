package sharedmimeinfo

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/MatthiasKunnen/xdgmime/basedir"
)

// fileIndexer is implemented by the Malformed*Error types.
type fileIndexer interface {
	error
	fileIndex() int
}

// Database combines all parts of the shared MIME-info database.
// It is read-only once loaded and can be shared between goroutines.
type Database struct {
	Globs    *Globs
	Magic    *Magic
	Aliases  *Aliases
	Subclass *Subclass
}

// LoadFromOs loads the MIME database from the mime subdirectory of every XDG data directory.
// Files in $XDG_DATA_HOME/mime take precedence over those in $XDG_DATA_DIRS.
// XDG_DATA_HOME and XDG_DATA_DIRS are retrieved from the environment.
func LoadFromOs() (*Database, error) {
	return LoadFromDirs(basedir.DataSearchPath())
}

// LoadFromDirs loads the MIME database from the mime subdirectory of each of the given data
// directories. Earlier directories have higher precedence. Missing files are skipped.
func LoadFromDirs(dirs []string) (*Database, error) {
	open := func(name string) (fs.File, error) {
		return os.Open(name)
	}

	return load(dirs, open, filepath.Join)
}

// LoadFromFS is like LoadFromDirs but reads from fsys. dirs are slash-separated paths in fsys.
func LoadFromFS(fsys fs.FS, dirs []string) (*Database, error) {
	return load(dirs, fsys.Open, path.Join)
}

type (
	openFunc func(name string) (fs.File, error)
	joinFunc func(elem ...string) string
)

func load(dirs []string, open openFunc, join joinFunc) (*Database, error) {
	globs, err := loadFiles(dirs, open, join, []string{"globs2", "globs"}, LoadGlobsFromReaders)
	if err != nil {
		return nil, err
	}

	magic, err := loadFiles(dirs, open, join, []string{"magic"}, LoadMagicFromReaders)
	if err != nil {
		return nil, err
	}

	aliases, err := loadFiles(dirs, open, join, []string{"aliases"}, LoadAliasesFromReaders)
	if err != nil {
		return nil, err
	}

	subclasses, err := loadFiles(dirs, open, join, []string{"subclasses"}, LoadSubclassesFromReaders)
	if err != nil {
		return nil, err
	}

	return &Database{
		Globs:    globs,
		Magic:    magic,
		Aliases:  aliases,
		Subclass: subclasses,
	}, nil
}

// loadFiles opens, for each dir, the first existing file out of names in $dir/mime and parses
// all of them with parse.
func loadFiles[T any](
	dirs []string,
	open openFunc,
	join joinFunc,
	names []string,
	parse func([]io.Reader) (T, error),
) (T, error) {
	var zero T
	var files []fs.File
	var paths []string
	var readers []io.Reader

	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()

	for _, dir := range dirs {
		f, fPath, err := openFirst(dir, open, join, names)
		switch {
		case err != nil:
			return zero, err
		case f == nil:
			continue
		}

		files = append(files, f)
		paths = append(paths, fPath)
		readers = append(readers, f)
	}

	result, err := parse(readers)
	if err == nil {
		return result, nil
	}

	var x fileIndexer
	if errors.As(err, &x) && x.fileIndex() >= 0 && x.fileIndex() < len(paths) {
		return zero, fmt.Errorf("failed to load %s: %w", paths[x.fileIndex()], err)
	}

	return zero, err
}

func openFirst(dir string, open openFunc, join joinFunc, names []string) (fs.File, string, error) {
	for _, name := range names {
		fPath := join(dir, "mime", name)
		f, err := open(fPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			continue
		case err != nil:
			return nil, "", fmt.Errorf("failed to open %s: %w", fPath, err)
		}

		return f, fPath, nil
	}

	return nil, "", nil
}

// Empty returns true if the database contains neither name patterns nor magic.
// This is the case on systems without shared-mime-info installed.
func (db *Database) Empty() bool {
	return db.Globs.Len() == 0 && db.Magic.Len() == 0
}
