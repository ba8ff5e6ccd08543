package sharedmimeinfo

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	defaultGlobWeight = 50
	noGlobs           = "__NOGLOBS__"
)

type MalformedGlobError struct {
	FileIndex int
	LineIndex int
	Line      string
}

func (e MalformedGlobError) Error() string {
	return fmt.Sprintf("malformed glob line at %d: %q", e.LineIndex, e.Line)
}

func (e MalformedGlobError) fileIndex() int { return e.FileIndex }

// GlobRule is a single line of a globs2 file.
type GlobRule struct {
	Weight        int
	MimeType      string
	Pattern       string
	CaseSensitive bool
}

type globKind int

const (
	globLiteral globKind = iota
	globSuffix
	globWildcard
)

type glob struct {
	GlobRule
	kind globKind
	// match is the pattern as it is compared. Lowercase unless CaseSensitive.
	match string
	// literalLen is the amount of non-wildcard characters. Longer means more specific.
	literalLen int
	order      int
}

// Globs holds the name patterns of the shared MIME-info database.
// A Globs is read-only after loading and can be used from multiple goroutines.
type Globs struct {
	literals map[string][]*glob
	// suffixes is keyed on the part after the "*" of simple "*.ext" style patterns.
	suffixes  map[string][]*glob
	wildcards []*glob
	size      int
}

// LoadGlobsFromReaders loads globs2 files, or legacy globs files, from the given readers.
// Order is important as earlier readers have higher precedence: a __NOGLOBS__ entry for a
// MIME type discards the patterns for that type in all later readers.
//
// Patterns that are not valid glob patterns are skipped.
func LoadGlobsFromReaders(readers []io.Reader) (*Globs, error) {
	g := &Globs{
		literals: make(map[string][]*glob),
		suffixes: make(map[string][]*glob),
	}
	cleared := make(map[string]bool)
	seen := make(map[GlobRule]bool)

	for fileIndex, r := range readers {
		clearedHere := make(map[string]bool)
		scanner := bufio.NewScanner(r)
		lineIndex := -1
		for scanner.Scan() {
			lineIndex++
			line := scanner.Text()
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			rule, ok := parseGlobLine(line)
			if !ok {
				return nil, MalformedGlobError{
					FileIndex: fileIndex,
					LineIndex: lineIndex,
					Line:      line,
				}
			}

			if cleared[rule.MimeType] {
				continue
			}

			if rule.Pattern == noGlobs {
				clearedHere[rule.MimeType] = true
				continue
			}

			key := rule
			key.Weight = 0
			if seen[key] {
				continue
			}
			seen[key] = true

			g.add(rule)
		}

		if err := scanner.Err(); err != nil {
			return nil, err
		}

		for mime := range clearedHere {
			cleared[mime] = true
		}
	}

	return g, nil
}

// parseGlobLine parses weight:mime/type:pattern[:flags] or the legacy mime/type:pattern.
func parseGlobLine(line string) (GlobRule, bool) {
	fields := strings.Split(line, ":")
	if len(fields) == 2 {
		if fields[0] == "" || fields[1] == "" {
			return GlobRule{}, false
		}
		return GlobRule{Weight: defaultGlobWeight, MimeType: fields[0], Pattern: fields[1]}, true
	}

	if len(fields) < 3 {
		return GlobRule{}, false
	}

	weight, err := strconv.Atoi(fields[0])
	if err != nil || weight < 0 || fields[1] == "" || fields[2] == "" {
		return GlobRule{}, false
	}

	rule := GlobRule{
		Weight:   weight,
		MimeType: fields[1],
		Pattern:  fields[2],
	}

	if len(fields) > 3 {
		for _, flag := range strings.Split(fields[3], ",") {
			if flag == "cs" {
				rule.CaseSensitive = true
			}
		}
	}

	return rule, true
}

func (g *Globs) add(rule GlobRule) {
	item := &glob{
		GlobRule: rule,
		match:    rule.Pattern,
		order:    g.size,
	}
	if !rule.CaseSensitive {
		item.match = strings.ToLower(rule.Pattern)
	}
	item.literalLen = len(item.match) - strings.Count(item.match, "*") - strings.Count(item.match, "?")

	rest, isStar := strings.CutPrefix(item.match, "*")
	switch {
	case !strings.ContainsAny(item.match, "*?["):
		item.kind = globLiteral
		g.literals[item.match] = append(g.literals[item.match], item)
	case isStar && rest != "" && !strings.ContainsAny(rest, "*?[\\"):
		item.kind = globSuffix
		g.suffixes[rest] = append(g.suffixes[rest], item)
	default:
		if !doublestar.ValidatePattern(item.match) {
			return
		}
		item.kind = globWildcard
		g.wildcards = append(g.wildcards, item)
	}

	g.size++
}

// Len returns the amount of patterns.
func (g *Globs) Len() int {
	return g.size
}

// Match returns all rules matching the base name of filename, best match first.
// The filename is only inspected lexically, the file does not need to exist.
//
// Rules are ranked as follows:
//  1. Patterns without wildcards, e.g. Makefile.
//  2. Suffix patterns such as *.pdf, the longest suffix first so *.tar.gz is preferred over
//     *.gz. Then case-sensitive before case-insensitive, then by weight.
//  3. Other patterns, e.g. README*, by weight and then by length.
//
// Remaining ties are broken by the order in which the rules were loaded.
func (g *Globs) Match(filename string) []GlobRule {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		return nil
	}
	lower := strings.ToLower(name)

	var matches []*glob
	for _, c := range g.literals[lower] {
		if !c.CaseSensitive {
			matches = append(matches, c)
		}
	}
	for _, c := range g.literals[name] {
		if c.CaseSensitive {
			matches = append(matches, c)
		}
	}

	for i := range len(lower) {
		for _, c := range g.suffixes[lower[i:]] {
			if !c.CaseSensitive {
				matches = append(matches, c)
			}
		}
	}
	for i := range len(name) {
		for _, c := range g.suffixes[name[i:]] {
			if c.CaseSensitive {
				matches = append(matches, c)
			}
		}
	}

	for _, w := range g.wildcards {
		subject := lower
		if w.CaseSensitive {
			subject = name
		}
		ok, err := doublestar.Match(w.match, subject)
		if err == nil && ok {
			matches = append(matches, w)
		}
	}

	if len(matches) == 0 {
		return nil
	}

	slices.SortStableFunc(matches, compareGlobs)

	result := make([]GlobRule, len(matches))
	for i, m := range matches {
		result[i] = m.GlobRule
	}

	return result
}

// Lookup returns the MIME type of the best matching rule for filename.
func (g *Globs) Lookup(filename string) (string, bool) {
	matches := g.Match(filename)
	if len(matches) == 0 {
		return "", false
	}

	return matches[0].MimeType, true
}

func compareGlobs(a, b *glob) int {
	if a.kind != b.kind {
		return int(a.kind) - int(b.kind)
	}

	if a.kind == globWildcard && a.Weight != b.Weight {
		return b.Weight - a.Weight
	}
	if a.literalLen != b.literalLen {
		return b.literalLen - a.literalLen
	}
	if a.CaseSensitive != b.CaseSensitive {
		if a.CaseSensitive {
			return -1
		}
		return 1
	}
	if a.Weight != b.Weight {
		return b.Weight - a.Weight
	}

	return a.order - b.order
}
