// Package normalize turns free-text queries and place labels into comparable forms.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Safety bounds applied before any normalization work, so a hostile input
// cannot blow up cost or output size.
const (
	MaxQueryLength = 140
	MaxLabelLength = 220
)

var reSpaces = regexp.MustCompile(`\s+`)

// Match is the comparable form of a query or label: the cleaned text, its
// tokens, and the tokens concatenated without separators for whole-word
// containment checks.
type Match struct {
	Joined  string   // Joined is the normalized text with single spaces between tokens.
	Tokens  []string // Tokens are the individual lowercase, diacritic-free words.
	Compact string   // Compact is all tokens concatenated with no separator.
}

// QueryText cleans raw query text for display and for sending upstream.
// It composes to NFC, replaces anything that is not a letter, digit,
// whitespace, hyphen or apostrophe with a space, and collapses whitespace.
// Case and diacritics are preserved.
func QueryText(text string) string {
	text = truncateRunes(text, MaxQueryLength)
	text = norm.NFC.String(text)

	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '-' || r == '\'' {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}

	return CollapseSpaces(sb.String())
}

// ForMatch produces the diacritic-insensitive, lowercase comparable form of a
// query or label used by the scorer.
func ForMatch(text string) Match {
	text = truncateRunes(text, MaxLabelLength)
	text = stripDiacritics(text)
	text = strings.ToLower(text)

	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}

	joined := CollapseSpaces(sb.String())
	tokens := strings.Fields(joined)

	return Match{
		Joined:  joined,
		Tokens:  tokens,
		Compact: strings.Join(tokens, ""),
	}
}

// CollapseSpaces folds runs of whitespace into single spaces and trims the ends.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// stripDiacritics decomposes to NFD, removes combining marks and recomposes,
// so "Hämeentie" compares equal to "Hameentie".
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
