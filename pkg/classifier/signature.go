package classifier

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Signature is a named keyword set. Lists of signatures are evaluated in
// declaration order, so earlier entries take precedence.
type Signature struct {
	Name     string
	Keywords []string
}

// Match is a signature that hit, with the first of its keywords found.
type Match struct {
	Name    string
	Keyword string
}

// MatchAll returns every signature with at least one keyword contained in
// text, in declaration order. text must already be normalised.
func MatchAll(signatures []Signature, text string) []Match {
	if text == "" {
		return nil
	}
	var matches []Match
	for _, sig := range signatures {
		for _, kw := range sig.Keywords {
			kw = Normalize(kw)
			if kw == "" {
				continue
			}
			if strings.Contains(text, kw) {
				matches = append(matches, Match{Name: sig.Name, Keyword: kw})
				break
			}
		}
	}
	return matches
}

// First returns the winning match, if any.
func First(signatures []Signature, text string) (Match, bool) {
	matches := MatchAll(signatures, text)
	if len(matches) == 0 {
		return Match{}, false
	}
	return matches[0], true
}

// Normalize folds text into the form keywords are compared against:
// NFKC, lower case, runs of whitespace collapsed to one space.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
