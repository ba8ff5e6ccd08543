package sharedmimeinfo

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"
)

const (
	mimeTextPlain = "text/plain"
	mimeOctet     = "application/octet-stream"
)

type MalformedSubclassError struct {
	FileIndex int
	LineIndex int
}

func (e MalformedSubclassError) Error() string {
	return fmt.Sprintf(
		"malformed subclass line at %d",
		e.LineIndex,
	)
}

func (e MalformedSubclassError) fileIndex() int { return e.FileIndex }

// Subclass holds the parent types of MIME types, e.g. image/svg+xml is a subclass of
// application/xml.
type Subclass struct {
	dict map[string][]string
}

// LoadSubclassesFromReaders loads the subclasses based on the given [io.Reader] slice.
// Order is important as earlier readers have higher precedence.
func LoadSubclassesFromReaders(readers []io.Reader) (*Subclass, error) {
	mimeSubclass := &Subclass{
		dict: make(map[string][]string),
	}

	for fileIndex, f := range readers {
		scanner := bufio.NewScanner(f)
		lineIndex := -1
		for scanner.Scan() {
			lineIndex++
			line := scanner.Text()
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			specific, broad, found := strings.Cut(line, " ")
			if !found {
				return nil, MalformedSubclassError{
					FileIndex: fileIndex,
					LineIndex: lineIndex,
				}
			}

			if broadList, ok := mimeSubclass.dict[specific]; ok {
				if !slices.Contains(broadList, broad) {
					mimeSubclass.dict[specific] = append(broadList, broad)
				}
			} else {
				mimeSubclass.dict[specific] = []string{broad}
			}
		}

		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	return mimeSubclass, nil
}

// BroaderOnce returns the direct parent types of the given MIME type.
// For example, text/javascript returns application/x-executable.
func (s *Subclass) BroaderOnce(mime string) []string {
	broad := s.dict[mime]
	if len(broad) > 0 {
		return broad
	}

	switch {
	case mime == mimeOctet:
		return nil
	case mime == mimeTextPlain:
		return []string{mimeOctet}
	case strings.HasPrefix(mime, "text/"):
		return []string{mimeTextPlain}
	case !strings.HasPrefix(mime, "inode/"):
		return []string{mimeOctet}
	default:
		return nil
	}
}

// BroaderDfs returns all parent types of the given MIME type.
// The order of the parents is priority first and is determined by a depth first,
// pre-order (NLR), search.
// For example, text/javascript returns application/x-executable, text/plain,
// application/octet-stream.
func (s *Subclass) BroaderDfs(mime string) []string {
	visited := make(map[string]struct{})
	// Cloned, the walk below rewrites toVisit in place and s must stay read-only.
	toVisit := slices.Clone(s.dict[mime])
	result := make([]string, 0, len(toVisit))

	for len(toVisit) > 0 {
		broad := toVisit[0]
		if _, ok := visited[broad]; ok {
			toVisit = toVisit[1:]
			continue
		}

		visited[broad] = struct{}{}
		result = append(result, broad)
		broader := s.dict[broad]
		switch len(broader) {
		case 0:
			toVisit = toVisit[1:]
		case 1:
			toVisit[0] = broader[0]
		default:
			toVisit = append(slices.Clone(broader), toVisit[1:]...)
		}
	}

	// The implicit parents also apply to mime itself, which is not part of result.
	self := []string{mime}
	if _, ok := visited[mimeTextPlain]; !ok && mime != mimeTextPlain {
		for _, item := range slices.Concat(self, result) {
			if strings.HasPrefix(item, "text/") {
				result = append(result, mimeTextPlain)
				break
			}
		}
	}
	if _, ok := visited[mimeOctet]; !ok && mime != mimeOctet {
		for _, item := range slices.Concat(self, result) {
			if !strings.HasPrefix(item, "inode/") {
				result = append(result, mimeOctet)
				break
			}
		}
	}

	return result
}

// IsSubclass reports whether mime is parent or a, possibly indirect, subclass of parent.
// The implicit parents text/plain and application/octet-stream are taken into account.
func (s *Subclass) IsSubclass(mime string, parent string) bool {
	if mime == parent {
		return true
	}

	return slices.Contains(s.BroaderDfs(mime), parent)
}
