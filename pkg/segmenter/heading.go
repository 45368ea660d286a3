package segmenter

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultMaxHeadingRunes = 80
	DefaultMaxHeadingWords = 10
)

// headingLabels are converter labels that always mark a heading.
var headingLabels = map[string]bool{
	"title":          true,
	"section_header": true,
	"heading":        true,
}

// minorWords may stay lower case inside a title-case heading.
var minorWords = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "of": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "with": true, "by": true, "or": true, "per": true,
	"from": true, "&": true, "-": true,
}

var markdownHeading = regexp.MustCompile(`^#{1,6}\s+`)

// heading reports whether a block opens a new section and returns its
// title plus any remaining lines, which belong to the body.
func (s *Segmenter) heading(content, label string) (title string, rest string, ok bool) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", "", false
	}
	first, rest, _ := strings.Cut(content, "\n")
	first = strings.TrimSpace(first)
	rest = strings.TrimSpace(rest)

	switch {
	case headingLabels[strings.ToLower(label)], markdownHeading.MatchString(first):
		title = cleanTitle(markdownHeading.ReplaceAllString(first, ""))
	case rest == "" && s.looksLikeHeading(first):
		title = cleanTitle(first)
	}
	if title == "" {
		return "", "", false
	}
	return title, rest, true
}

func (s *Segmenter) looksLikeHeading(line string) bool {
	if utf8.RuneCountInString(line) > s.maxRunes {
		return false
	}
	words := strings.Fields(line)
	if len(words) == 0 || len(words) > s.maxWords {
		return false
	}
	if strings.ContainsAny(line[len(line)-1:], ".,;!?") {
		return false
	}
	if !strings.ContainsFunc(line, unicode.IsLetter) {
		return false
	}
	return isAllCaps(line) || isTitleCase(words)
}

func isAllCaps(line string) bool {
	for _, r := range line {
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func isTitleCase(words []string) bool {
	for i, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		if !unicode.IsLetter(r) {
			continue
		}
		if unicode.IsUpper(r) {
			continue
		}
		if i > 0 && minorWords[strings.ToLower(w)] {
			continue
		}
		return false
	}
	return true
}

// cleanTitle drops a trailing colon and surrounding space.
func cleanTitle(t string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), ":"))
}
