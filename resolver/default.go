package resolver

import (
	"sync"

	"github.com/MatthiasKunnen/xdgmime/sharedmimeinfo"
)

var loadDefault = sync.OnceValues(func() (*Resolver, error) {
	db, err := sharedmimeinfo.LoadFromOs()
	if err != nil {
		return nil, err
	}

	if db.Empty() {
		db = Builtin()
	}

	return New(db), nil
})

// Default returns the process-wide Resolver. The MIME database is loaded from the operating
// system on the first call, using the embedded database if none is installed. Later calls
// return the same Resolver, or the same error.
func Default() (*Resolver, error) {
	return loadDefault()
}

// GetMimeTypeFromFileName returns the MIME type of filename based on its name using the
// Default resolver. See [Resolver.ByName].
func GetMimeTypeFromFileName(filename string) (string, bool, error) {
	if filename == "" {
		return "", false, ErrInvalidInput
	}

	r, err := Default()
	if err != nil {
		return "", false, err
	}

	return r.ByName(filename)
}

// GetMimeTypeForFile returns the MIME type of the file at filename based on its content and
// name using the Default resolver. See [Resolver.ForFile].
func GetMimeTypeForFile(filename string) (string, bool, error) {
	if filename == "" {
		return "", false, ErrInvalidInput
	}

	r, err := Default()
	if err != nil {
		return "", false, err
	}

	return r.ForFile(filename)
}
