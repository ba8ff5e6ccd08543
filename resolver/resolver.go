// Package resolver determines the MIME type of a file from its name and, optionally, its
// content using the shared MIME-info database.
//
// Name lookups are purely lexical, the file does not need to exist. Content lookups read a
// bounded prefix of the file and match it against the magic signatures of the database. When
// the content and the name disagree, the content wins unless the name refines it, e.g. a gzip
// stream named archive.tar.gz is reported as application/x-compressed-tar.
//
// A Resolver is immutable and can be used from multiple goroutines.
package resolver

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/MatthiasKunnen/xdgmime/sharedmimeinfo"
)

// Resolver looks up MIME types in a shared MIME-info database.
type Resolver struct {
	db         *sharedmimeinfo.Database
	sniffLimit int
	// detectors run, in order, when the magic database has no match.
	detectors []Detector
	observer  Observer
}

// New creates a Resolver for db. db must not be modified afterward.
func New(db *sharedmimeinfo.Database, opts ...Option) *Resolver {
	r := &Resolver{
		db:         db,
		sniffLimit: DefaultSniffLimit,
		detectors:  []Detector{desktopDetector{}},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// ByName returns the MIME type for filename based on its name alone. The file does not need
// to exist and is never accessed.
// ok is false if no pattern matches, this is not an error.
// ErrInvalidInput is returned if filename is empty.
func (r *Resolver) ByName(filename string) (mime string, ok bool, err error) {
	if filename == "" {
		r.observe(MethodName, OutcomeInvalidInput)
		return "", false, ErrInvalidInput
	}

	mime, ok = r.byName(filename)
	r.observeResult(MethodName, ok)
	return mime, ok, nil
}

func (r *Resolver) byName(filename string) (string, bool) {
	mime, ok := r.db.Globs.Lookup(filename)
	if !ok {
		return "", false
	}

	return r.db.Aliases.Unalias(mime), true
}

// ForFile returns the MIME type for the file at filename by sniffing its content, using the
// name as secondary signal.
// ok is false if neither the content nor the name are recognized, this is not an error.
// Files that are not regular files, such as directories, yield no match.
//
// ErrInvalidInput is returned if filename is empty. An error wrapping ErrNotFound is returned
// if the file can not be opened.
func (r *Resolver) ForFile(filename string) (mime string, ok bool, err error) {
	if filename == "" {
		r.observe(MethodContent, OutcomeInvalidInput)
		return "", false, ErrInvalidInput
	}

	// Stat before opening so FIFOs and devices are never opened.
	info, err := os.Stat(filename)
	if err != nil {
		r.observe(MethodContent, OutcomeNotFound)
		return "", false, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	if !info.Mode().IsRegular() {
		r.observe(MethodContent, OutcomeNoMatch)
		return "", false, nil
	}

	f, err := os.Open(filename)
	if err != nil {
		r.observe(MethodContent, OutcomeNotFound)
		return "", false, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	defer f.Close()

	mime, ok, err = r.detect(f, filename)
	if err != nil {
		r.observe(MethodContent, OutcomeError)
		return "", false, err
	}

	r.observeResult(MethodContent, ok)
	return mime, ok, nil
}

// Detect is like ForFile but sniffs the content of reader. At most the sniff limit is read
// from reader. filename is optional and only used as secondary signal.
func (r *Resolver) Detect(reader io.Reader, filename string) (mime string, ok bool, err error) {
	mime, ok, err = r.detect(reader, filename)
	if err != nil {
		r.observe(MethodContent, OutcomeError)
		return "", false, err
	}

	r.observeResult(MethodContent, ok)
	return mime, ok, nil
}

func (r *Resolver) detect(reader io.Reader, filename string) (string, bool, error) {
	buf := make([]byte, r.readLimit())
	n, err := io.ReadFull(reader, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", false, fmt.Errorf("failed to read content of %q: %w", filename, err)
	}

	var candidates []sharedmimeinfo.GlobRule
	if filename != "" {
		candidates = r.db.Globs.Match(filename)
	}

	sniffed, ok := r.sniff(buf[:n])
	if !ok {
		if len(candidates) == 0 {
			return "", false, nil
		}
		return r.db.Aliases.Unalias(candidates[0].MimeType), true, nil
	}

	// A name match that is a subclass of the sniffed type refines it rather than contradicting
	// it, e.g. a ZIP archive named report.odt.
	for _, c := range candidates {
		candidate := r.db.Aliases.Unalias(c.MimeType)
		if r.db.Subclass.IsSubclass(candidate, sniffed) {
			return candidate, true, nil
		}
	}

	return sniffed, true, nil
}

func (r *Resolver) sniff(data []byte) (string, bool) {
	if mime, ok := r.db.Magic.Lookup(data); ok {
		return r.db.Aliases.Unalias(mime), true
	}

	for _, d := range r.detectors {
		if mime, ok := d.Detect(data); ok {
			return r.db.Aliases.Unalias(mime), true
		}
	}

	return "", false
}

// readLimit returns the amount of bytes to read: the extent of the magic database, bounded by
// minSniff and the sniff limit.
func (r *Resolver) readLimit() int {
	extent := r.db.Magic.Extent()
	if extent == 0 {
		return r.sniffLimit
	}

	return min(max(extent, minSniff), r.sniffLimit)
}

func (r *Resolver) observeResult(method Method, ok bool) {
	if ok {
		r.observe(method, OutcomeMatch)
	} else {
		r.observe(method, OutcomeNoMatch)
	}
}

func (r *Resolver) observe(method Method, outcome Outcome) {
	if r.observer != nil {
		r.observer.ObserveLookup(method, outcome)
	}
}
