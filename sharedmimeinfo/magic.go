package sharedmimeinfo

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
)

var magicHeader = []byte("MIME-Magic\x00\n")

// maxMagicOffset bounds the offsets a rule may inspect.
const maxMagicOffset = math.MaxInt32

type MalformedMagicError struct {
	FileIndex int
	// Offset is the byte offset in the file at which parsing failed.
	Offset int
	Reason string
}

func (e MalformedMagicError) Error() string {
	return fmt.Sprintf("malformed magic at byte %d: %s", e.Offset, e.Reason)
}

func (e MalformedMagicError) fileIndex() int { return e.FileIndex }

// MagicRule is a single rule line of a magic section.
type MagicRule struct {
	// Indent is the nesting level. A rule only matches if one of its children, the rules
	// directly below it with Indent+1, matches as well.
	Indent int
	Offset int
	Value  []byte
	// Mask is nil or of the same length as Value.
	Mask     []byte
	WordSize int
	// Range is the amount of offsets, starting at Offset, at which Value is tried.
	Range int
}

// MagicMatch is a section of the magic file, all rules for a single MIME type.
type MagicMatch struct {
	Priority int
	MimeType string
	Rules    []MagicRule
}

// Magic holds the content signatures of the shared MIME-info database.
// A Magic is read-only after loading and can be used from multiple goroutines.
type Magic struct {
	matches []MagicMatch
	extent  int
}

// LoadMagicFromReaders loads magic files from the given readers.
// Order is important as earlier readers have higher precedence: a MIME type defined in an
// earlier reader ignores the sections for that type in later readers.
func LoadMagicFromReaders(readers []io.Reader) (*Magic, error) {
	m := &Magic{}
	defined := make(map[string]bool)

	for fileIndex, r := range readers {
		matches, err := parseMagic(r)
		if err != nil {
			var malformed MalformedMagicError
			if errors.As(err, &malformed) {
				malformed.FileIndex = fileIndex
				return nil, malformed
			}
			return nil, err
		}

		definedHere := make(map[string]bool)
		for _, match := range matches {
			if defined[match.MimeType] {
				continue
			}
			definedHere[match.MimeType] = true
			m.matches = append(m.matches, match)
		}

		for mime := range definedHere {
			defined[mime] = true
		}
	}

	slices.SortStableFunc(m.matches, func(a, b MagicMatch) int {
		return b.Priority - a.Priority
	})

	for _, match := range m.matches {
		for _, rule := range match.Rules {
			m.extent = max(m.extent, rule.Offset+rule.Range-1+len(rule.Value))
		}
	}

	return m, nil
}

// Extent returns the amount of leading bytes needed to evaluate every rule.
func (m *Magic) Extent() int {
	return m.extent
}

// Len returns the amount of magic sections.
func (m *Magic) Len() int {
	return len(m.matches)
}

// Lookup returns the MIME type of the highest priority section that matches data.
func (m *Magic) Lookup(data []byte) (string, bool) {
	for _, match := range m.matches {
		if matchRules(match.Rules, data) {
			return match.MimeType, true
		}
	}

	return "", false
}

func matchRules(rules []MagicRule, data []byte) bool {
	for i := 0; i < len(rules); {
		end := subtreeEnd(rules, i)
		if matchSubtree(rules[i:end], data) {
			return true
		}
		i = end
	}

	return false
}

// matchSubtree matches tree[0] and, if it has any, at least one of its children.
func matchSubtree(tree []MagicRule, data []byte) bool {
	if !tree[0].matches(data) {
		return false
	}

	if len(tree) == 1 {
		return true
	}

	return matchRules(tree[1:], data)
}

func subtreeEnd(rules []MagicRule, i int) int {
	end := i + 1
	for end < len(rules) && rules[end].Indent > rules[i].Indent {
		end++
	}

	return end
}

func (r MagicRule) matches(data []byte) bool {
	for start := r.Offset; start < r.Offset+r.Range; start++ {
		if start > len(data)-len(r.Value) {
			return false
		}

		window := data[start : start+len(r.Value)]
		if r.Mask == nil {
			if bytes.Equal(window, r.Value) {
				return true
			}
			continue
		}

		equal := true
		for i, b := range window {
			if b&r.Mask[i] != r.Value[i]&r.Mask[i] {
				equal = false
				break
			}
		}
		if equal {
			return true
		}
	}

	return false
}

// magicParser reads the binary magic format while tracking the offset for error reporting.
type magicParser struct {
	r      *bufio.Reader
	offset int
}

func (p *magicParser) readByte() (byte, error) {
	b, err := p.r.ReadByte()
	if err == nil {
		p.offset++
	}
	return b, err
}

func (p *magicParser) unreadByte() {
	_ = p.r.UnreadByte()
	p.offset--
}

func (p *magicParser) readFull(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(p.r, buf)
	p.offset += read
	return buf, err
}

func (p *magicParser) fail(reason string) error {
	return MalformedMagicError{Offset: p.offset, Reason: reason}
}

// readNumber reads a decimal number. ok is false if no digit was found.
func (p *magicParser) readNumber() (int, bool, error) {
	var digits []byte
	for {
		b, err := p.readByte()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, false, err
		}
		if b < '0' || b > '9' {
			p.unreadByte()
			break
		}
		digits = append(digits, b)
	}

	if len(digits) == 0 {
		return 0, false, nil
	}

	n, err := strconv.Atoi(string(digits))
	if err != nil {
		return 0, false, p.fail("number out of range")
	}

	return n, true, nil
}

func parseMagic(r io.Reader) ([]MagicMatch, error) {
	p := &magicParser{r: bufio.NewReader(r)}

	header, err := p.readFull(len(magicHeader))
	if err != nil || !bytes.Equal(header, magicHeader) {
		return nil, MalformedMagicError{Reason: "missing MIME-Magic header"}
	}

	var result []MagicMatch
	var current *MagicMatch
	// skipIndent is the indent of the last dropped rule, its children are dropped as well.
	skipIndent := -1

	for {
		b, err := p.readByte()
		switch {
		case errors.Is(err, io.EOF):
			if current != nil {
				result = append(result, *current)
			}
			return result, nil
		case err != nil:
			return nil, err
		}

		if b == '[' {
			if current != nil {
				result = append(result, *current)
			}
			match, err := p.parseSection()
			if err != nil {
				return nil, err
			}
			current = &match
			skipIndent = -1
			continue
		}

		if current == nil {
			return nil, p.fail("rule outside of section")
		}

		p.unreadByte()
		rule, keep, err := p.parseRule()
		if err != nil {
			return nil, err
		}
		switch {
		case skipIndent >= 0 && rule.Indent > skipIndent:
		case !keep:
			skipIndent = rule.Indent
		default:
			skipIndent = -1
			current.Rules = append(current.Rules, rule)
		}
	}
}

// parseSection parses priority:mime/type]\n, the opening bracket has been consumed.
func (p *magicParser) parseSection() (MagicMatch, error) {
	line, err := p.r.ReadString('\n')
	p.offset += len(line)
	if err != nil {
		return MagicMatch{}, p.fail("unterminated section header")
	}

	header, ok := strings.CutSuffix(line, "]\n")
	if !ok {
		return MagicMatch{}, p.fail("section header does not end in ]")
	}

	priority, mime, found := strings.Cut(header, ":")
	if !found || mime == "" {
		return MagicMatch{}, p.fail("section header is not priority:type")
	}

	n, err := strconv.Atoi(priority)
	if err != nil {
		return MagicMatch{}, p.fail("invalid section priority")
	}

	return MagicMatch{Priority: n, MimeType: mime}, nil
}

// parseRule parses [indent]>offset=value[&mask][~word-size][+range-length]\n.
// keep is false when the line ends in an unknown extension, such lines are ignored.
func (p *magicParser) parseRule() (MagicRule, bool, error) {
	rule := MagicRule{WordSize: 1, Range: 1}

	indent, _, err := p.readNumber()
	if err != nil {
		return rule, false, err
	}
	rule.Indent = indent

	if b, err := p.readByte(); err != nil || b != '>' {
		return rule, false, p.fail("expected >")
	}

	offset, ok, err := p.readNumber()
	if err != nil {
		return rule, false, err
	}
	if !ok {
		return rule, false, p.fail("missing start offset")
	}
	if offset > maxMagicOffset {
		return rule, false, p.fail("offset out of range")
	}
	rule.Offset = offset

	if b, err := p.readByte(); err != nil || b != '=' {
		return rule, false, p.fail("expected =")
	}

	lengthBytes, err := p.readFull(2)
	if err != nil {
		return rule, false, p.fail("truncated value length")
	}
	valueLength := int(binary.BigEndian.Uint16(lengthBytes))

	rule.Value, err = p.readFull(valueLength)
	if err != nil {
		return rule, false, p.fail("truncated value")
	}

	for {
		b, err := p.readByte()
		if err != nil {
			return rule, false, p.fail("unterminated rule")
		}

		switch b {
		case '\n':
			if rule.Range < 1 {
				return rule, false, p.fail("range length must be positive")
			}
			if rule.Offset+rule.Range+len(rule.Value) > maxMagicOffset {
				return rule, false, p.fail("offset out of range")
			}
			swapWords(&rule)
			return rule, true, nil
		case '&':
			rule.Mask, err = p.readFull(valueLength)
			if err != nil {
				return rule, false, p.fail("truncated mask")
			}
		case '~':
			n, ok, err := p.readNumber()
			if err != nil {
				return rule, false, err
			}
			if !ok {
				return rule, false, p.fail("missing word size")
			}
			rule.WordSize = n
		case '+':
			n, ok, err := p.readNumber()
			if err != nil {
				return rule, false, err
			}
			if !ok {
				return rule, false, p.fail("missing range length")
			}
			if n > maxMagicOffset {
				return rule, false, p.fail("offset out of range")
			}
			rule.Range = n
		default:
			// Unknown extension, there is no binary data after this point.
			rest, err := p.r.ReadString('\n')
			p.offset += len(rest)
			if err != nil {
				return rule, false, p.fail("unterminated rule")
			}
			return rule, false, nil
		}
	}
}

var littleEndian = binary.NativeEndian.Uint16([]byte{1, 0}) == 1

// swapWords converts values with a word size of 2 or 4 from big-endian to host byte order.
func swapWords(rule *MagicRule) {
	size := rule.WordSize
	if !littleEndian || (size != 2 && size != 4) || len(rule.Value)%size != 0 {
		return
	}

	for _, b := range [][]byte{rule.Value, rule.Mask} {
		for i := 0; i+size <= len(b); i += size {
			slices.Reverse(b[i : i+size])
		}
	}
}
