// Package sharedmimeinfo implements the [Shared MIME-info specification].
// It reads the MIME database that is installed under $XDG_DATA_DIRS/mime and allows looking up
// the MIME type of a file by its name (globs2), by its content (magic), resolving aliases and
// getting the parent types of a MIME type (subclasses).
// For example; application/ld+json is a subclass of application/json, which, in turn, is a
// subclass of application/json5.
//
// All types in this package are read-only once loaded and safe for concurrent use.
//
// [Shared MIME-info specification]: https://specifications.freedesktop.org/shared-mime-info-spec/0.22/
package sharedmimeinfo
