// Package variants expands one raw query into alternative spellings that
// compensate for common speech-to-text artifacts: hyphens inserted into
// compound words, compound place names split or fully merged, and queries
// that omit the municipality.
package variants

import (
	"strings"

	"github.com/fheinonen/stopfinder/internal/normalize"
)

// MaxVariants is the hard cap on variants generated for one query.
const MaxVariants = 5

// Generator builds query variants for one service area.
type Generator struct {
	municipalities []string
	muniSet        map[string]bool
}

// NewGenerator creates a Generator for the given municipality names.
// Order matters: municipality-suffixed variants are generated in list order.
func NewGenerator(municipalities []string) *Generator {
	gen := &Generator{
		municipalities: make([]string, 0, len(municipalities)),
		muniSet:        make(map[string]bool, len(municipalities)),
	}
	for _, muni := range municipalities {
		muni = strings.ToLower(strings.TrimSpace(muni))
		if muni == "" || gen.muniSet[muni] {
			continue
		}
		gen.municipalities = append(gen.municipalities, muni)
		gen.muniSet[muni] = true
	}
	return gen
}

// Build returns up to MaxVariants distinct variant strings for the raw query,
// earlier entries being higher trust. An empty result means the query held no
// usable text and must be rejected by the caller.
func (g *Generator) Build(raw string) []string {
	canonical := normalize.QueryText(raw)
	if canonical == "" {
		return nil
	}

	seen := make(map[string]bool, MaxVariants)
	variants := make([]string, 0, MaxVariants)
	add := func(v string) {
		if len(variants) >= MaxVariants {
			return
		}
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		key := strings.ToLower(v)
		if seen[key] {
			return
		}
		seen[key] = true
		variants = append(variants, v)
	}

	add(canonical)

	// Speech engines tend to hyphenate compounds ("Martin-laakso").
	unhyphenated := normalize.CollapseSpaces(strings.ReplaceAll(canonical, "-", " "))
	add(unhyphenated)

	// Compound place names split into two tokens ("Martin laakso").
	tokens := strings.Fields(unhyphenated)
	for i := 0; i+1 < len(tokens) && len(variants) < MaxVariants; i++ {
		merged := make([]string, 0, len(tokens)-1)
		merged = append(merged, tokens[:i]...)
		merged = append(merged, tokens[i]+tokens[i+1])
		merged = append(merged, tokens[i+2:]...)
		add(strings.Join(merged, " "))
	}

	// Fully merged transcription.
	if len(tokens) > 1 {
		add(strings.Join(tokens, ""))
	}

	add(strings.ReplaceAll(canonical, "-", ""))

	// Queries that never name a municipality often geocode outside the
	// service area; try gluing one on.
	if len(tokens) >= 2 && !g.mentionsMunicipality(tokens) {
		for _, muni := range g.municipalities {
			if len(variants) >= MaxVariants {
				break
			}
			add(unhyphenated + muni)
			add(unhyphenated + " " + muni)
		}
	}

	return variants
}

func (g *Generator) mentionsMunicipality(tokens []string) bool {
	for _, tok := range tokens {
		if g.muniSet[strings.ToLower(tok)] {
			return true
		}
	}
	return false
}
