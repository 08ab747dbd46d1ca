package content

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"campaignkit/internal/domain"
)

var (
	ordinalPrefix = regexp.MustCompile(`^\d+\.\s*`)
	headingLine   = regexp.MustCompile(`^\s*#{1,6}\s+\S`)
	inlineHeading = regexp.MustCompile(`\s#{1,6}\s+\S`)
)

// ParseDelimitedText splits a marker-delimited blob into categories. markers
// must line up with OrderedCategoryIDs; nil selects the catalogue markers.
// A missing section resolves to an empty list. Only blank input is fatal.
func ParseDelimitedText(text string, markers []string) (ParsedContent, error) {
	if strings.TrimSpace(text) == "" {
		return ParsedContent{}, fmt.Errorf("%w: empty delimited text", domain.ErrMalformedResponse)
	}
	if markers == nil {
		markers = Markers()
	}
	if len(markers) != len(catalogue.ordered) {
		return ParsedContent{}, fmt.Errorf("%w: %d markers for %d categories", domain.ErrInvalidInput, len(markers), len(catalogue.ordered))
	}

	scanner := newSectionScanner(markers)
	for _, line := range strings.Split(normalizeNewlines(text), "\n") {
		scanner.feed(line)
	}

	partial := make(map[CategoryID]any, len(catalogue.ordered))
	for i, c := range catalogue.ordered {
		if !scanner.seen[i] {
			continue
		}
		partial[c.ID] = tokenize(c, strings.Join(scanner.bodies[i], "\n"))
	}
	return Coerce(partial), nil
}

// sectionScanner is a line-driven state machine: a recognised marker switches
// the current section, every other line is appended to it. A marker may also
// appear after other text on the same line.
type sectionScanner struct {
	lookup  map[string]int
	keys    []string
	bodies  [][]string
	seen    []bool
	current int
}

func newSectionScanner(markers []string) *sectionScanner {
	s := &sectionScanner{
		lookup:  make(map[string]int, len(markers)),
		bodies:  make([][]string, len(markers)),
		seen:    make([]bool, len(markers)),
		current: -1,
	}
	for i, m := range markers {
		key := headingKey(m)
		if key == "" {
			continue
		}
		if _, dup := s.lookup[key]; !dup {
			s.lookup[key] = i
			s.keys = append(s.keys, key)
		}
	}
	// longest key first
	sort.SliceStable(s.keys, func(i, j int) bool { return len(s.keys[i]) > len(s.keys[j]) })
	return s
}

func (s *sectionScanner) feed(line string) {
	if idx, ok := s.match(line); ok {
		s.enter(idx)
		return
	}
	for _, loc := range inlineHeading.FindAllStringIndex(line, -1) {
		if idx, ok := s.match(line[loc[0]+1:]); ok {
			s.add(line[:loc[0]])
			s.enter(idx)
			return
		}
	}
	s.add(line)
}

func (s *sectionScanner) enter(idx int) {
	s.current = idx
	s.seen[idx] = true
}

func (s *sectionScanner) add(line string) {
	if s.current < 0 {
		return
	}
	s.bodies[s.current] = append(s.bodies[s.current], line)
}

// match resolves a heading line to a section. Annotated headings such as
// "### Titles (15)" match on the title prefix; the prefix must end on a word
// boundary so "### Welcome Email 1" does not open "Welcome Emails".
func (s *sectionScanner) match(line string) (int, bool) {
	if !isHeading(line) {
		return 0, false
	}
	key := headingKey(line)
	if idx, ok := s.lookup[key]; ok {
		return idx, true
	}
	for _, k := range s.keys {
		if !strings.HasPrefix(key, k) {
			continue
		}
		next, _ := utf8.DecodeRuneInString(key[len(k):])
		if unicode.IsLetter(next) || unicode.IsDigit(next) {
			continue
		}
		return s.lookup[k], true
	}
	return 0, false
}

func isHeading(line string) bool {
	return headingLine.MatchString(line)
}

// headingKey reduces "### Titles:" or "## **titles**" to "titles".
func headingKey(line string) string {
	key := strings.TrimSpace(line)
	key = strings.TrimLeft(key, "#")
	key = strings.TrimSpace(key)
	key = strings.Trim(key, "*_")
	key = strings.TrimSpace(key)
	key = strings.TrimRight(key, ":")
	key = strings.Trim(key, "*_")
	return strings.ToLower(strings.TrimSpace(key))
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func tokenize(c Category, body string) []string {
	switch c.Shape {
	case CommaList:
		return commaTokens(body)
	case HashtagList:
		return hashtagTokens(body)
	case MultiBlock:
		return blockTokens(c, body)
	case QaPairList:
		return qaPairTokens(body)
	default:
		return flatTokens(body)
	}
}

func flatTokens(body string) []string {
	out := []string{}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(ordinalPrefix.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

func commaTokens(body string) []string {
	out := []string{}
	for _, tok := range strings.Split(strings.ReplaceAll(body, "\n", ","), ",") {
		tok = strings.TrimSpace(tok)
		tok = strings.TrimSpace(strings.TrimRight(tok, "."))
		if tok == "" {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func hashtagTokens(body string) []string {
	tokens := commaTokens(body)
	for i, tok := range tokens {
		if !strings.HasPrefix(tok, "#") {
			tokens[i] = "#" + tok
		}
	}
	return tokens
}

func blockTokens(c Category, body string) []string {
	out := []string{}
	parts := []string{body}
	if c.block != nil {
		parts = c.block.Split(body, -1)
	}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func qaPairTokens(body string) []string {
	var pairs [][]string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isQuestion(line) {
			pairs = append(pairs, []string{line})
			continue
		}
		if len(pairs) == 0 {
			continue
		}
		last := len(pairs) - 1
		pairs[last] = append(pairs[last], line)
	}
	out := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		out = append(out, strings.Join(pair, "\n"))
	}
	return out
}

// isQuestion reports whether line opens a FAQ pair. Bullets, quote marks,
// ordinals and bold or italic markers in front of the prefix are ignored, so
// "- **Q:** ..." and "1. P: ..." both count.
func isQuestion(line string) bool {
	return questionPrefix.MatchString(questionDecoration.ReplaceAllString(line, ""))
}
