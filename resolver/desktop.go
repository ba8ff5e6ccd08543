package resolver

import (
	"bufio"
	"bytes"
	"io"
	"unicode"
)

const mimeDesktop = "application/x-desktop"

const desktopGroupName = "Desktop Entry]"

const (
	desktopScanDefault = iota
	desktopScanToCommentEnd
)

// IsDesktopEntry returns true if data is likely the start of a desktop file.
// Blank lines and comments may precede the [Desktop Entry] group header, as allowed by the
// [desktop entry format]. Comments may contain invalid UTF-8, the rest may not.
//
// [desktop entry format]: https://specifications.freedesktop.org/desktop-entry-spec/1.5/basic-format.html
func IsDesktopEntry(data []byte) bool {
	r := bufio.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})))
	status := desktopScanDefault

	for {
		readRune, _, err := r.ReadRune()
		switch {
		case err != nil:
			return false
		case readRune == unicode.ReplacementChar:
			if status == desktopScanToCommentEnd {
				continue
			}
			return false
		}

		switch status {
		case desktopScanDefault:
			switch readRune {
			case '#':
				status = desktopScanToCommentEnd
			case '\n':
			case '[':
				group := make([]byte, len(desktopGroupName))
				if _, err := io.ReadFull(r, group); err != nil {
					return false
				}
				return string(group) == desktopGroupName
			default:
				return false
			}
		case desktopScanToCommentEnd:
			if readRune == '\n' {
				status = desktopScanDefault
			}
		}
	}
}

// desktopDetector adapts IsDesktopEntry to the Detector interface.
type desktopDetector struct{}

func (desktopDetector) Detect(data []byte) (string, bool) {
	if IsDesktopEntry(data) {
		return mimeDesktop, true
	}

	return "", false
}
