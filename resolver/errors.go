package resolver

import "errors"

var (
	// ErrInvalidInput is returned when the file name is empty. It indicates a programming error
	// in the caller.
	ErrInvalidInput = errors.New("invalid input: file name must not be empty")

	// ErrNotFound is returned when a file can not be opened for content sniffing.
	// The underlying error, e.g. [fs.ErrNotExist] or [fs.ErrPermission], is wrapped as well.
	ErrNotFound = errors.New("file not found")
)
