package segmenter

import (
	"regexp"
	"strings"
)

var (
	spaceAroundNewline = regexp.MustCompile(`[ \t]*\n[ \t]*`)
	extraNewlines      = regexp.MustCompile(`\n{3,}`)
)

// FormatText tidies a section body: escaped "\n" sequences become real
// newlines, blanks around newlines are dropped and runs of three or more
// newlines collapse to one empty line.
func FormatText(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = spaceAroundNewline.ReplaceAllString(s, "\n")
	s = extraNewlines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
