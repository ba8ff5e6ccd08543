// Package fallback adapts third-party content sniffers to resolver.Detector. They are
// consulted when the shared MIME-info database does not recognize the content.
package fallback

import (
	"fmt"
	"mime"

	"github.com/gabriel-vasile/mimetype"
	"github.com/h2non/filetype"

	"github.com/MatthiasKunnen/xdgmime/internal/config"
	"github.com/MatthiasKunnen/xdgmime/resolver"
)

const (
	octetStream = "application/octet-stream"
	textPlain   = "text/plain"
)

// Mimetype detects content with github.com/gabriel-vasile/mimetype.
// The generic application/octet-stream and text/plain results are not reported as a match.
type Mimetype struct{}

func (Mimetype) Detect(data []byte) (string, bool) {
	if len(data) == 0 {
		return "", false
	}

	detected := mimetype.Detect(data)
	if detected.Is(octetStream) || detected.Is(textPlain) {
		return "", false
	}

	return stripParams(detected.String()), true
}

// Filetype detects content with github.com/h2non/filetype.
type Filetype struct{}

func (Filetype) Detect(data []byte) (string, bool) {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown || kind.MIME.Value == "" {
		return "", false
	}

	return kind.MIME.Value, true
}

// New returns the detector for the given config.Fallback* name. nil is returned for
// config.FallbackNone.
func New(name string) (resolver.Detector, error) {
	switch name {
	case "", config.FallbackNone:
		return nil, nil
	case config.FallbackMimetype:
		return Mimetype{}, nil
	case config.FallbackFiletype:
		return Filetype{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown fallback %q", config.ErrInvalidConfig, name)
	}
}

// stripParams removes parameters such as charset from a media type.
func stripParams(mediaType string) string {
	base, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return mediaType
	}

	return base
}
