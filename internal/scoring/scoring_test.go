package scoring_test

import (
	"testing"

	"github.com/fheinonen/stopfinder/internal/models"
	"github.com/fheinonen/stopfinder/internal/normalize"
	"github.com/fheinonen/stopfinder/internal/scoring"
	"github.com/stretchr/testify/assert"
)

var hslMunicipalities = []string{"helsinki", "espoo", "vantaa", "kauniainen"}

func floatPtr(f float64) *float64 { return &f }

func candidate(label string, variantIndex int, variantText string, conf *float64) models.GeocodeCandidate {
	return models.GeocodeCandidate{
		Place:        models.Place{Lat: 60.17, Lon: 24.94, Label: label, Confidence: conf},
		VariantIndex: variantIndex,
		VariantText:  variantText,
	}
}

func TestTokenMatches(t *testing.T) {
	t.Run("equal tokens match", func(t *testing.T) {
		assert.True(t, scoring.TokenMatches("helsinki", "helsinki"))
	})

	t.Run("short tokens only match exactly", func(t *testing.T) {
		assert.False(t, scoring.TokenMatches("ab", "abcdef"))
		assert.True(t, scoring.TokenMatches("ab", "ab"))
	})

	t.Run("prefix matches from length 3", func(t *testing.T) {
		assert.True(t, scoring.TokenMatches("kamppi", "kamppitalo"))
		assert.True(t, scoring.TokenMatches("abc", "abcdef"))
	})

	t.Run("substring containment requires length 5", func(t *testing.T) {
		assert.False(t, scoring.TokenMatches("ppi", "kamppi"))
		assert.True(t, scoring.TokenMatches("amppi", "kamppi"))
	})

	t.Run("order of arguments does not matter", func(t *testing.T) {
		assert.True(t, scoring.TokenMatches("kamppitalo", "kamppi"))
		assert.False(t, scoring.TokenMatches("abcdef", "ab"))
	})
}

func TestScorer_Score(t *testing.T) {
	scorer := scoring.NewScorer(hslMunicipalities)

	t.Run("exact label gets full compact and coverage scores", func(t *testing.T) {
		queryMatch := normalize.ForMatch("kamppi helsinki")
		cand := candidate("Kamppi, Helsinki", 0, "kamppi helsinki", nil)

		// 100 compact + 60 unordered + 20 ordered + 10 variant trust.
		assert.InDelta(t, 190.0, scorer.Score(queryMatch, cand), 0.001)
	})

	t.Run("confidence bonus is clamped", func(t *testing.T) {
		queryMatch := normalize.ForMatch("kamppi helsinki")
		cand := candidate("Kamppi, Helsinki", 0, "kamppi helsinki", floatPtr(3.0))

		assert.InDelta(t, 200.0, scorer.Score(queryMatch, cand), 0.001)
	})

	t.Run("missing strong token is penalized", func(t *testing.T) {
		queryMatch := normalize.ForMatch("ruoholahti tower")
		cand := candidate("Ruoholahti, Helsinki", 0, "ruoholahti tower", nil)

		// 0 compact + 30 unordered + 10 ordered + 10 variant trust
		// - (8 + 2*1) length penalty - 8 flat penalty.
		assert.InDelta(t, 32.0, scorer.Score(queryMatch, cand), 0.001)
	})

	t.Run("variant-sourced candidate scores against its variant with a bonus", func(t *testing.T) {
		queryMatch := normalize.ForMatch("kamppi")
		cand := candidate("Kamppi, Helsinki", 1, "kamppi helsinki", nil)

		// Against the original query: 65 compact + 60 + 20 + 8 variant trust = 153.
		// Against the source variant: 100 + 60 + 20 + 8 + 4 bonus = 192. Max wins.
		assert.InDelta(t, 192.0, scorer.Score(queryMatch, cand), 0.001)
	})

	t.Run("scoring is deterministic", func(t *testing.T) {
		queryMatch := normalize.ForMatch("itä-pasila asema")
		cand := candidate("Itä-Pasila, Helsinki", 2, "ita pasila helsinki", floatPtr(0.7))

		first := scorer.Score(queryMatch, cand)
		for i := 0; i < 10; i++ {
			assert.InDelta(t, first, scorer.Score(queryMatch, cand), 0.0001)
		}
	})

	t.Run("variant trust bonus decays with index", func(t *testing.T) {
		queryMatch := normalize.ForMatch("kamppi helsinki")
		trusted := candidate("Kamppi, Helsinki", 0, "kamppi helsinki", nil)
		later := candidate("Kamppi, Helsinki", 4, "kamppi helsinki", nil)

		assert.Greater(t, scorer.Score(queryMatch, trusted), scorer.Score(queryMatch, later))
	})
}

func TestScorer_StrongTokenMatches(t *testing.T) {
	scorer := scoring.NewScorer(hslMunicipalities)

	t.Run("municipality names are weak", func(t *testing.T) {
		queryMatch := normalize.ForMatch("kamppi helsinki")
		assert.Equal(t, 1, scorer.StrongTokenMatches(queryMatch, "Kamppi, Helsinki"))
	})

	t.Run("short tokens are weak", func(t *testing.T) {
		queryMatch := normalize.ForMatch("ala kamppi")
		assert.Equal(t, 1, scorer.StrongTokenMatches(queryMatch, "Kamppi, Helsinki"))
	})

	t.Run("unmatched strong tokens do not count", func(t *testing.T) {
		queryMatch := normalize.ForMatch("ruoholahti tower")
		assert.Equal(t, 1, scorer.StrongTokenMatches(queryMatch, "Ruoholahti, Helsinki"))
	})

	t.Run("no strong tokens at all", func(t *testing.T) {
		queryMatch := normalize.ForMatch("iso av")
		assert.Equal(t, 0, scorer.StrongTokenMatches(queryMatch, "Kamppi, Helsinki"))
	})
}
