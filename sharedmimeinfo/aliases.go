package sharedmimeinfo

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

type MalformedAliasError struct {
	FileIndex int
	LineIndex int
}

func (e MalformedAliasError) Error() string {
	return fmt.Sprintf("malformed alias line at %d", e.LineIndex)
}

func (e MalformedAliasError) fileIndex() int { return e.FileIndex }

// Aliases maps alternative names of MIME types to their canonical name.
// For example, application/x-pdf is an alias of application/pdf.
type Aliases struct {
	dict map[string]string
}

// LoadAliasesFromReaders loads the aliases files from the given readers.
// Order is important as earlier readers have higher precedence.
func LoadAliasesFromReaders(readers []io.Reader) (*Aliases, error) {
	a := &Aliases{
		dict: make(map[string]string),
	}

	for fileIndex, r := range readers {
		scanner := bufio.NewScanner(r)
		lineIndex := -1
		for scanner.Scan() {
			lineIndex++
			line := scanner.Text()
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			alias, canonical, found := strings.Cut(line, " ")
			if !found || alias == "" || canonical == "" {
				return nil, MalformedAliasError{
					FileIndex: fileIndex,
					LineIndex: lineIndex,
				}
			}

			if _, exists := a.dict[alias]; !exists {
				a.dict[alias] = canonical
			}
		}

		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// Unalias returns the canonical name of mime. If mime is not an alias, it is returned as-is.
func (a *Aliases) Unalias(mime string) string {
	if canonical, ok := a.dict[mime]; ok {
		return canonical
	}

	return mime
}
