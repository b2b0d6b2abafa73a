package variants_test

import (
	"strings"
	"testing"

	"github.com/fheinonen/stopfinder/internal/variants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hslMunicipalities = []string{"helsinki", "espoo", "vantaa", "kauniainen"}

func TestGenerator_Build(t *testing.T) {
	gen := variants.NewGenerator(hslMunicipalities)

	t.Run("single token yields only the canonical variant", func(t *testing.T) {
		assert.Equal(t, []string{"Kamppi"}, gen.Build("Kamppi"))
	})

	t.Run("hyphenated compound", func(t *testing.T) {
		got := gen.Build("Martin-laakso")

		assert.Equal(t, []string{
			"Martin-laakso",
			"Martin laakso",
			"Martinlaakso",
			"Martin laaksohelsinki",
			"Martin laakso helsinki",
		}, got)
	})

	t.Run("municipality already present suppresses suffix variants", func(t *testing.T) {
		got := gen.Build("kamppi helsinki")

		assert.Equal(t, []string{"kamppi helsinki", "kamppihelsinki"}, got)
	})

	t.Run("never exceeds the cap", func(t *testing.T) {
		got := gen.Build("yksi kaksi kolme nelja viisi kuusi")
		assert.LessOrEqual(t, len(got), variants.MaxVariants)
	})

	t.Run("merged pair variants are generated left to right", func(t *testing.T) {
		got := gen.Build("yksi kaksi kolme nelja viisi")

		require.Len(t, got, variants.MaxVariants)
		assert.Equal(t, "yksi kaksi kolme nelja viisi", got[0])
		assert.Equal(t, "yksikaksi kolme nelja viisi", got[1])
		assert.Equal(t, "yksi kaksikolme nelja viisi", got[2])
		assert.Equal(t, "yksi kaksi kolmenelja viisi", got[3])
		assert.Equal(t, "yksi kaksi kolme neljaviisi", got[4])
	})

	t.Run("no case-insensitive duplicates", func(t *testing.T) {
		inputs := []string{"Kamppi", "Itä-Pasila", "kamppi KAMPPI", "rautatientori asema"}
		for _, in := range inputs {
			got := gen.Build(in)
			seen := map[string]bool{}
			for _, v := range got {
				key := strings.ToLower(v)
				assert.False(t, seen[key], "duplicate variant %q for input %q", v, in)
				seen[key] = true
			}
		}
	})

	t.Run("empty and unusable input", func(t *testing.T) {
		assert.Empty(t, gen.Build(""))
		assert.Empty(t, gen.Build("  !?  "))
	})
}
