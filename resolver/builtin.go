package resolver

import (
	"embed"
	"fmt"
	"sync"

	"github.com/MatthiasKunnen/xdgmime/sharedmimeinfo"
)

// builtinFS is a small MIME database covering common document, archive, image, audio, video
// and source formats. It is laid out like a data directory: builtin/mime/globs2 etc.
//
//go:embed builtin/mime
var builtinFS embed.FS

var loadBuiltin = sync.OnceValue(func() *sharedmimeinfo.Database {
	db, err := sharedmimeinfo.LoadFromFS(builtinFS, []string{"builtin"})
	if err != nil {
		panic(fmt.Sprintf("builtin MIME database is invalid: %v", err))
	}

	return db
})

// Builtin returns the MIME database embedded in this package. It is used when the operating
// system has no shared MIME-info database installed.
func Builtin() *sharedmimeinfo.Database {
	return loadBuiltin()
}
