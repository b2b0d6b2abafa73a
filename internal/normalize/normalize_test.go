package normalize_test

import (
	"strings"
	"testing"

	"github.com/fheinonen/stopfinder/internal/normalize"
	"github.com/stretchr/testify/assert"
)

func TestQueryText(t *testing.T) {
	t.Run("strips punctuation and collapses whitespace", func(t *testing.T) {
		assert.Equal(t, "Kamppi Helsinki", normalize.QueryText("  Kamppi,   Helsinki! "))
	})

	t.Run("keeps hyphens and apostrophes", func(t *testing.T) {
		assert.Equal(t, "Martin-laakso d'Angelo", normalize.QueryText("Martin-laakso d'Angelo"))
	})

	t.Run("keeps case and diacritics", func(t *testing.T) {
		assert.Equal(t, "Hämeentie 15", normalize.QueryText("Hämeentie 15?"))
	})

	t.Run("truncates long input before normalization", func(t *testing.T) {
		long := strings.Repeat("a", 400)
		assert.Len(t, normalize.QueryText(long), normalize.MaxQueryLength)
	})

	t.Run("empty and symbol-only input", func(t *testing.T) {
		assert.Empty(t, normalize.QueryText("   "))
		assert.Empty(t, normalize.QueryText("!?%&"))
	})
}

func TestForMatch(t *testing.T) {
	t.Run("lowercases and strips diacritics", func(t *testing.T) {
		match := normalize.ForMatch("Hämeentie 15, Helsinki")

		assert.Equal(t, "hameentie 15 helsinki", match.Joined)
		assert.Equal(t, []string{"hameentie", "15", "helsinki"}, match.Tokens)
		assert.Equal(t, "hameentie15helsinki", match.Compact)
	})

	t.Run("tokens rejoined reproduce joined text", func(t *testing.T) {
		inputs := []string{
			"Kamppi, Helsinki",
			"  Töölön   tulli  ",
			"Itä-Pasila (asema)",
			"Esplanadin puisto 1 A",
		}
		for _, in := range inputs {
			match := normalize.ForMatch(in)
			assert.Equal(t, match.Joined, strings.Join(match.Tokens, " "), "input %q", in)
		}
	})

	t.Run("tokens are lowercase without diacritics", func(t *testing.T) {
		match := normalize.ForMatch("ÖSTERSUNDOM Råholmen")
		for _, tok := range match.Tokens {
			assert.Equal(t, strings.ToLower(tok), tok)
			assert.NotContains(t, tok, "ö")
			assert.NotContains(t, tok, "å")
		}
	})

	t.Run("hyphens split into separate tokens", func(t *testing.T) {
		match := normalize.ForMatch("Itä-Pasila")
		assert.Equal(t, []string{"ita", "pasila"}, match.Tokens)
	})

	t.Run("truncates long labels", func(t *testing.T) {
		long := strings.Repeat("b", 500)
		match := normalize.ForMatch(long)
		assert.Len(t, match.Joined, normalize.MaxLabelLength)
	})

	t.Run("empty input yields empty match", func(t *testing.T) {
		match := normalize.ForMatch("")
		assert.Empty(t, match.Joined)
		assert.Empty(t, match.Tokens)
		assert.Empty(t, match.Compact)
	})
}
